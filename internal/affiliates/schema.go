package affiliates

import (
	"net/url"
	"strings"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/listing"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/validate"
)

type CommissionUpdate struct {
	Status Status  `json:"status" validate:"required,oneof=pending approved paid cancelled"`
	Notes  *string `json:"notes" validate:"omitempty,max=1000"`
}

func (u CommissionUpdate) Validate() error {
	return validate.Struct(u)
}

type ListFilter struct {
	listing.Filter
	Status Status `json:"status" validate:"omitempty,oneof=pending approved paid cancelled"`
}

func ParseListFilter(q url.Values) (ListFilter, error) {
	f, errs := listing.Decode(q)
	lf := ListFilter{Filter: f, Status: Status(strings.TrimSpace(q.Get("status")))}
	if err := listing.Check(lf, f, errs); err != nil {
		return ListFilter{}, err
	}
	return lf, nil
}

// Query selects commissions; an empty AffiliateCodeID means all affiliates.
type Query struct {
	AffiliateCodeID string
	ListFilter
}

func (q Query) Matches(c Commission) bool {
	if q.AffiliateCodeID != "" && c.AffiliateCodeID != q.AffiliateCodeID {
		return false
	}
	if q.Status != "" && c.Status != q.Status {
		return false
	}
	if s := strings.ToLower(q.Search); s != "" &&
		!strings.Contains(strings.ToLower(listing.Text(c.OrderID)), s) &&
		!strings.Contains(strings.ToLower(listing.Text(c.Notes)), s) {
		return false
	}
	return q.Range().Contains(c.CreatedAt)
}

// NewCode is the operator input for registering an affiliate code.
type NewCode struct {
	Code  string `json:"code" validate:"required,max=32,alphanum"`
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,max=100"`
}

func (n NewCode) Validate() error {
	return validate.Struct(n)
}
