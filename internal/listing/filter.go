// Package listing holds the list-filter schema and pagination math shared by
// every admin and affiliate listing endpoint.
package listing

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/apperr"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/validate"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	MaxPage      = 1000000
)

// Filter is the status-agnostic part of a list query. Entity packages embed
// it next to their own status enum.
type Filter struct {
	Search    string `json:"search" validate:"omitempty,max=100"`
	StartDate string `json:"startDate" validate:"omitempty,isodate"`
	EndDate   string `json:"endDate" validate:"omitempty,isodate"`
	Page      int    `json:"page" validate:"gte=1,lte=1000000"`
	Limit     int    `json:"limit" validate:"gte=1,lte=100"`
}

// Decode reads the shared fields from query values, applying defaults for
// absent paging values. Non-numeric paging values come back as field errors.
func Decode(q url.Values) (Filter, validate.FieldErrors) {
	errs := validate.FieldErrors{}
	f := Filter{
		Search:    strings.TrimSpace(q.Get("search")),
		StartDate: strings.TrimSpace(q.Get("startDate")),
		EndDate:   strings.TrimSpace(q.Get("endDate")),
		Page:      intParam(q, "page", DefaultPage, errs),
		Limit:     intParam(q, "limit", DefaultLimit, errs),
	}
	return f, errs
}

func intParam(q url.Values, key string, def int, errs validate.FieldErrors) int {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs[key] = "must be an integer"
		return def
	}
	return n
}

// Check validates dst (a struct embedding f) and f's date range, merging in
// decode errors. It returns an apperr.Invalid or nil.
func Check(dst any, f Filter, decodeErrs validate.FieldErrors) error {
	errs := validate.FieldErrors{}
	for k, m := range validate.Fields(dst) {
		errs[k] = m
	}
	for k, m := range decodeErrs {
		errs[k] = m
	}
	if _, ok := errs["startDate"]; !ok {
		if _, ok := errs["endDate"]; !ok {
			if r := f.Range(); r.From != nil && r.To != nil && r.To.Before(*r.From) {
				errs["endDate"] = "must not be before startDate"
			}
		}
	}
	if len(errs) > 0 {
		return apperr.InvalidErr("invalid input", errs)
	}
	return nil
}

func (f Filter) Pagination() Pagination {
	return Pagination{Page: f.Page, Limit: f.Limit}
}

// Range is an inclusive created-at window; nil ends are open.
type Range struct {
	From *time.Time
	To   *time.Time
}

// Range converts the date strings. A calendar-date end bound covers the
// whole day.
func (f Filter) Range() Range {
	var r Range
	if t, ok := validate.ParseISODate(f.StartDate); ok && f.StartDate != "" {
		r.From = &t
	}
	if t, ok := validate.ParseISODate(f.EndDate); ok && f.EndDate != "" {
		if len(f.EndDate) == len(time.DateOnly) {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		r.To = &t
	}
	return r
}

// Contains reports whether t falls inside the window.
func (r Range) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}
