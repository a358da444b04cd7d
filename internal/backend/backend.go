// Package backend is the single seam between HTTP handlers and the hosted
// auth/database provider.
package backend

import (
	"context"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/affiliates"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/catalog"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/listing"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/orders"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/users"
)

// Auth is the identity half of the provider.
type Auth interface {
	GetUser(ctx context.Context, accessToken string) (users.Identity, error)
	SendMagicLink(ctx context.Context, email, redirectTo string) error
}

// Store is the persistence half of the provider.
type Store interface {
	GetProfileByID(ctx context.Context, id string) (users.Profile, error)
	FindAffiliateCode(ctx context.Context, email string) (affiliates.Code, error)
	GetAffiliateCode(ctx context.Context, id string) (affiliates.Code, error)

	QueryOrders(ctx context.Context, q orders.Query) (listing.Page[orders.Record], error)
	GetOrder(ctx context.Context, id string) (orders.Record, error)
	UpdateOrderStatus(ctx context.Context, id string, u orders.StatusUpdate) (orders.Record, error)
	OrderStatusCounts(ctx context.Context) (map[orders.Status]int, error)

	QueryCommissions(ctx context.Context, q affiliates.Query) (listing.Page[affiliates.Commission], error)
	UpdateCommissionStatus(ctx context.Context, id string, u affiliates.CommissionUpdate) (affiliates.Commission, error)
	CommissionSummary(ctx context.Context, affiliateCodeID string) (affiliates.Summary, error)

	ListProducts(ctx context.Context) ([]catalog.Product, error)
	ProductsByID(ctx context.Context, ids []string) (map[string]catalog.Product, error)
}

type Backend interface {
	Auth
	Store
}
