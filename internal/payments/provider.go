package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/validate"
)

var ErrNotConfigured = errors.New("payment provider not configured")

// Item is one cart line as sent by the storefront. Prices are looked up
// server-side.
type Item struct {
	ID       string `json:"id" validate:"required,max=64"`
	Quantity int    `json:"quantity" validate:"gte=1,lte=100"`
}

type CheckoutRequest struct {
	Items []Item `json:"items" validate:"required,min=1,max=50,dive"`
}

func (c CheckoutRequest) Validate() error {
	return validate.Struct(c)
}

// IDs lists the distinct product ids in the cart.
func (c CheckoutRequest) IDs() []string {
	seen := make(map[string]bool, len(c.Items))
	out := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		if !seen[it.ID] {
			seen[it.ID] = true
			out = append(out, it.ID)
		}
	}
	return out
}

// Quantities totals the requested units per product id; a product may span
// several cart lines.
func (c CheckoutRequest) Quantities() map[string]int {
	out := make(map[string]int, len(c.Items))
	for _, it := range c.Items {
		out[it.ID] += it.Quantity
	}
	return out
}

// Fingerprint identifies the cart's contents independent of line order and
// splitting.
func (c CheckoutRequest) Fingerprint() string {
	qty := c.Quantities()
	ids := lo.Keys(qty)
	slices.Sort(ids)
	h := sha256.New()
	for _, id := range ids {
		fmt.Fprintf(h, "%s:%d\n", id, qty[id])
	}
	return hex.EncodeToString(h.Sum(nil))
}

type LineItem struct {
	SKU       string
	Name      string
	Quantity  int
	UnitCents int
}

type OrderRequest struct {
	Currency       string
	Items          []LineItem
	IdempotencyKey string
}

func (o OrderRequest) TotalCents() int {
	total := 0
	for _, it := range o.Items {
		total += it.UnitCents * it.Quantity
	}
	return total
}

// Provider creates a payment order and returns the provider's order id.
type Provider interface {
	CreateOrder(ctx context.Context, req OrderRequest) (string, error)
}

// Unconfigured rejects every order; wired when credentials are missing.
type Unconfigured struct{}

func (Unconfigured) CreateOrder(context.Context, OrderRequest) (string, error) {
	return "", ErrNotConfigured
}

// FormatCents renders minor units as a decimal string ("12.05").
func FormatCents(c int) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
