package affiliates

import (
	"errors"
	"time"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/listing"
)

var ErrNotFound = errors.New("affiliate record not found")

// Code is a discount code; IsAffiliate marks it as attributing commission
// to the named affiliate.
type Code struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	AffiliateEmail string `json:"affiliateEmail"`
	AffiliateName  string `json:"affiliateName"`
	IsAffiliate    bool   `json:"isAffiliate"`
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

var Statuses = []Status{StatusPending, StatusApproved, StatusPaid, StatusCancelled}

// Commission mirrors the commissions table.
type Commission struct {
	ID              string    `json:"id"`
	AffiliateCodeID string    `json:"affiliate_code_id"`
	OrderID         *string   `json:"order_id"`
	Revenue         *float64  `json:"revenue"`
	Amount          *float64  `json:"commission"`
	Status          Status    `json:"status"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CommissionView struct {
	ID              string    `json:"id"`
	AffiliateCodeID string    `json:"affiliateCodeId"`
	OrderID         string    `json:"orderId"`
	Revenue         float64   `json:"revenue"`
	Commission      float64   `json:"commission"`
	Status          Status    `json:"status"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (c Commission) View() CommissionView {
	return CommissionView{
		ID:              c.ID,
		AffiliateCodeID: c.AffiliateCodeID,
		OrderID:         listing.Text(c.OrderID),
		Revenue:         listing.Amount(c.Revenue),
		Commission:      listing.Amount(c.Amount),
		Status:          c.Status,
		Notes:           listing.Text(c.Notes),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (c Commission) Apply(u CommissionUpdate, now time.Time) Commission {
	c.Status = u.Status
	if u.Notes != nil {
		c.Notes = u.Notes
	}
	c.UpdatedAt = now
	return c
}

// Summary totals one affiliate's commissions by status.
type Summary struct {
	TotalRevenue       float64 `json:"totalRevenue"`
	TotalCommission    float64 `json:"totalCommission"`
	PendingCommission  float64 `json:"pendingCommission"`
	ApprovedCommission float64 `json:"approvedCommission"`
	PaidCommission     float64 `json:"paidCommission"`
}

// Add folds c into s. Cancelled commissions count toward revenue only.
func (s Summary) Add(c Commission) Summary {
	rev, amt := listing.Amount(c.Revenue), listing.Amount(c.Amount)
	s.TotalRevenue += rev
	switch c.Status {
	case StatusPending:
		s.PendingCommission += amt
	case StatusApproved:
		s.ApprovedCommission += amt
	case StatusPaid:
		s.PaidCommission += amt
	default:
		return s
	}
	s.TotalCommission += amt
	return s
}
