package backend

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/affiliates"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/catalog"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/gotrue"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/listing"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/orders"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/users"
)

// ErrUnavailable is returned by Offline for every auth call.
var ErrUnavailable = errors.New("auth backend not configured")

// Live adapts the provider's auth API and its Postgres database.
type Live struct {
	Auth       Auth
	Profiles   *users.Repo
	Orders     *orders.Repo
	Affiliates *affiliates.Repo
	Catalog    *catalog.Repo
}

func NewLive(auth *gotrue.Client, db *pgxpool.Pool) *Live {
	return &Live{
		Auth:       auth,
		Profiles:   &users.Repo{DB: db},
		Orders:     &orders.Repo{DB: db},
		Affiliates: &affiliates.Repo{DB: db},
		Catalog:    &catalog.Repo{DB: db},
	}
}

func (l *Live) GetUser(ctx context.Context, token string) (users.Identity, error) {
	return l.Auth.GetUser(ctx, token)
}

func (l *Live) SendMagicLink(ctx context.Context, email, redirectTo string) error {
	return l.Auth.SendMagicLink(ctx, email, redirectTo)
}

func (l *Live) GetProfileByID(ctx context.Context, id string) (users.Profile, error) {
	return l.Profiles.GetProfileByID(ctx, id)
}

func (l *Live) FindAffiliateCode(ctx context.Context, email string) (affiliates.Code, error) {
	return l.Affiliates.FindByEmail(ctx, email)
}

func (l *Live) GetAffiliateCode(ctx context.Context, id string) (affiliates.Code, error) {
	return l.Affiliates.GetCode(ctx, id)
}

func (l *Live) QueryOrders(ctx context.Context, q orders.Query) (listing.Page[orders.Record], error) {
	return l.Orders.Query(ctx, q)
}

func (l *Live) GetOrder(ctx context.Context, id string) (orders.Record, error) {
	return l.Orders.Get(ctx, id)
}

func (l *Live) UpdateOrderStatus(ctx context.Context, id string, u orders.StatusUpdate) (orders.Record, error) {
	return l.Orders.UpdateStatus(ctx, id, u)
}

func (l *Live) OrderStatusCounts(ctx context.Context) (map[orders.Status]int, error) {
	return l.Orders.StatusCounts(ctx)
}

func (l *Live) QueryCommissions(ctx context.Context, q affiliates.Query) (listing.Page[affiliates.Commission], error) {
	return l.Affiliates.QueryCommissions(ctx, q)
}

func (l *Live) UpdateCommissionStatus(ctx context.Context, id string, u affiliates.CommissionUpdate) (affiliates.Commission, error) {
	return l.Affiliates.UpdateCommissionStatus(ctx, id, u)
}

func (l *Live) CommissionSummary(ctx context.Context, affiliateCodeID string) (affiliates.Summary, error) {
	return l.Affiliates.Summary(ctx, affiliateCodeID)
}

func (l *Live) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return l.Catalog.ListProducts(ctx)
}

func (l *Live) ProductsByID(ctx context.Context, ids []string) (map[string]catalog.Product, error) {
	return l.Catalog.ProductsByID(ctx, ids)
}

// Offline stands in for the auth API in degraded mode.
type Offline struct{}

func (Offline) GetUser(context.Context, string) (users.Identity, error) {
	return users.Identity{}, ErrUnavailable
}

func (Offline) SendMagicLink(context.Context, string, string) error { return ErrUnavailable }
