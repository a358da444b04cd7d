package orders

import (
	"errors"
	"time"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/listing"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// Record mirrors the orders table; nullable columns stay pointers.
type Record struct {
	ID              string    `json:"id"`
	OrderNumber     string    `json:"order_number"`
	UserID          *string   `json:"user_id"`
	Total           *float64  `json:"total"`
	Status          Status    `json:"status"`
	PaymentStatus   *string   `json:"payment_status"`
	TrackingNumber  *string   `json:"tracking_number"`
	TrackingCarrier *string   `json:"tracking_carrier"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Summary is the list-row shape returned by the API.
type Summary struct {
	ID            string    `json:"id"`
	OrderNumber   string    `json:"orderNumber"`
	Total         float64   `json:"total"`
	Status        Status    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Detail struct {
	Summary
	UserID          string    `json:"userId"`
	TrackingNumber  string    `json:"trackingNumber,omitempty"`
	TrackingCarrier string    `json:"trackingCarrier,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (r Record) Summary() Summary {
	return Summary{
		ID:            r.ID,
		OrderNumber:   r.OrderNumber,
		Total:         listing.Amount(r.Total),
		Status:        r.Status,
		PaymentStatus: listing.Text(r.PaymentStatus),
		CreatedAt:     r.CreatedAt,
	}
}

func (r Record) Detail() Detail {
	return Detail{
		Summary:         r.Summary(),
		UserID:          listing.Text(r.UserID),
		TrackingNumber:  listing.Text(r.TrackingNumber),
		TrackingCarrier: listing.Text(r.TrackingCarrier),
		Notes:           listing.Text(r.Notes),
		UpdatedAt:       r.UpdatedAt,
	}
}

// Apply returns r with u written over it. Absent optional fields keep their
// stored value.
func (r Record) Apply(u StatusUpdate, now time.Time) Record {
	r.Status = u.Status
	if u.TrackingNumber != nil {
		r.TrackingNumber = u.TrackingNumber
	}
	if u.Carrier != nil {
		r.TrackingCarrier = u.Carrier
	}
	if u.Notes != nil {
		r.Notes = u.Notes
	}
	r.UpdatedAt = now
	return r
}
