package orders

import (
	"net/url"
	"strings"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/listing"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/validate"
)

type StatusUpdate struct {
	Status         Status  `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled refunded"`
	TrackingNumber *string `json:"trackingNumber" validate:"omitempty,max=100"`
	Carrier        *string `json:"carrier" validate:"omitempty,max=50"`
	Notes          *string `json:"notes" validate:"omitempty,max=1000"`
}

func (u StatusUpdate) Validate() error {
	return validate.Struct(u)
}

type ListFilter struct {
	listing.Filter
	Status Status `json:"status" validate:"omitempty,oneof=pending processing shipped delivered cancelled refunded"`
}

func ParseListFilter(q url.Values) (ListFilter, error) {
	f, errs := listing.Decode(q)
	lf := ListFilter{Filter: f, Status: Status(strings.TrimSpace(q.Get("status")))}
	if err := listing.Check(lf, f, errs); err != nil {
		return ListFilter{}, err
	}
	return lf, nil
}

// Query selects orders; an empty UserID means every user.
type Query struct {
	UserID string
	ListFilter
}

// Matches applies the query predicate in memory.
func (q Query) Matches(r Record) bool {
	if q.UserID != "" && listing.Text(r.UserID) != q.UserID {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	if s := strings.ToLower(q.Search); s != "" &&
		!strings.Contains(strings.ToLower(r.OrderNumber), s) &&
		!strings.Contains(strings.ToLower(listing.Text(r.TrackingNumber)), s) {
		return false
	}
	return q.Range().Contains(r.CreatedAt)
}
