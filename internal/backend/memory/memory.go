// Package memory is an in-process backend.Backend used by tests and by the
// API when no provider is configured.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/affiliates"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/catalog"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/gotrue"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/listing"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/orders"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/users"
)

// Op names used by Calls and Fail.
const (
	OpGetUser                = "GetUser"
	OpSendMagicLink          = "SendMagicLink"
	OpGetProfileByID         = "GetProfileByID"
	OpFindAffiliateCode      = "FindAffiliateCode"
	OpGetAffiliateCode       = "GetAffiliateCode"
	OpQueryOrders            = "QueryOrders"
	OpGetOrder               = "GetOrder"
	OpUpdateOrderStatus      = "UpdateOrderStatus"
	OpOrderStatusCounts      = "OrderStatusCounts"
	OpQueryCommissions       = "QueryCommissions"
	OpUpdateCommissionStatus = "UpdateCommissionStatus"
	OpCommissionSummary      = "CommissionSummary"
	OpListProducts           = "ListProducts"
	OpProductsByID           = "ProductsByID"
)

type MagicLink struct {
	Email      string
	RedirectTo string
}

type Backend struct {
	mu sync.Mutex

	tokens      map[string]users.Identity
	profiles    map[string]users.Profile
	codes       []affiliates.Code
	orders      []orders.Record
	commissions []affiliates.Commission
	products    []catalog.Product

	calls map[string]int
	fail  map[string]error

	MagicLinks []MagicLink
	Now        func() time.Time
}

func New() *Backend {
	return &Backend{
		tokens:   map[string]users.Identity{},
		profiles: map[string]users.Profile{},
		calls:    map[string]int{},
		fail:     map[string]error{},
		Now:      time.Now,
	}
}

// Seeding.

func (b *Backend) AddSession(token string, id users.Identity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = id
}

func (b *Backend) AddProfile(p users.Profile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.profiles[p.ID] = p
}

func (b *Backend) AddAffiliateCode(c affiliates.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.codes = append(b.codes, c)
}

func (b *Backend) AddOrder(r orders.Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders = append(b.orders, r)
}

func (b *Backend) AddCommission(c affiliates.Commission) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commissions = append(b.commissions, c)
}

func (b *Backend) AddProduct(p catalog.Product) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.products = append(b.products, p)
}

// Fail makes op return err until cleared with a nil err.
func (b *Backend) Fail(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.fail, op)
		return
	}
	b.fail[op] = err
}

// Calls reports how many times op was invoked.
func (b *Backend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// enter records the call and returns the injected error, if any. Callers
// hold b.mu.
func (b *Backend) enter(op string) error {
	b.calls[op]++
	return b.fail[op]
}

// Auth.

func (b *Backend) GetUser(_ context.Context, token string) (users.Identity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpGetUser); err != nil {
		return users.Identity{}, err
	}
	id, ok := b.tokens[token]
	if !ok {
		return users.Identity{}, gotrue.ErrInvalidSession
	}
	return id, nil
}

func (b *Backend) SendMagicLink(_ context.Context, email, redirectTo string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpSendMagicLink); err != nil {
		return err
	}
	b.MagicLinks = append(b.MagicLinks, MagicLink{Email: email, RedirectTo: redirectTo})
	return nil
}

// Store.

func (b *Backend) GetProfileByID(_ context.Context, id string) (users.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpGetProfileByID); err != nil {
		return users.Profile{}, err
	}
	p, ok := b.profiles[id]
	if !ok {
		return users.Profile{}, users.ErrNotFound
	}
	return p, nil
}

func (b *Backend) FindAffiliateCode(_ context.Context, email string) (affiliates.Code, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpFindAffiliateCode); err != nil {
		return affiliates.Code{}, err
	}
	email = strings.TrimSpace(email)
	for _, c := range b.codes {
		if c.IsAffiliate && strings.EqualFold(c.AffiliateEmail, email) {
			return c, nil
		}
	}
	return affiliates.Code{}, affiliates.ErrNotFound
}

func (b *Backend) GetAffiliateCode(_ context.Context, id string) (affiliates.Code, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpGetAffiliateCode); err != nil {
		return affiliates.Code{}, err
	}
	for _, c := range b.codes {
		if c.ID == id {
			return c, nil
		}
	}
	return affiliates.Code{}, affiliates.ErrNotFound
}

func newestFirst[T any](created func(T) time.Time) func(a, b T) int {
	return func(a, b T) int { return created(b).Compare(created(a)) }
}

func (b *Backend) QueryOrders(_ context.Context, q orders.Query) (listing.Page[orders.Record], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpQueryOrders); err != nil {
		return listing.Page[orders.Record]{}, err
	}
	var hits []orders.Record
	for _, r := range b.orders {
		if q.Matches(r) {
			hits = append(hits, r)
		}
	}
	slices.SortStableFunc(hits, newestFirst(func(r orders.Record) time.Time { return r.CreatedAt }))
	return listing.Slice(hits, q.Pagination()), nil
}

func (b *Backend) GetOrder(_ context.Context, id string) (orders.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpGetOrder); err != nil {
		return orders.Record{}, err
	}
	for _, r := range b.orders {
		if r.ID == id {
			return r, nil
		}
	}
	return orders.Record{}, orders.ErrNotFound
}

func (b *Backend) UpdateOrderStatus(_ context.Context, id string, u orders.StatusUpdate) (orders.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpUpdateOrderStatus); err != nil {
		return orders.Record{}, err
	}
	for i, r := range b.orders {
		if r.ID == id {
			b.orders[i] = r.Apply(u, b.Now())
			return b.orders[i], nil
		}
	}
	return orders.Record{}, orders.ErrNotFound
}

func (b *Backend) OrderStatusCounts(_ context.Context) (map[orders.Status]int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpOrderStatusCounts); err != nil {
		return nil, err
	}
	out := make(map[orders.Status]int, len(orders.Statuses))
	for _, s := range orders.Statuses {
		out[s] = 0
	}
	for _, r := range b.orders {
		out[r.Status]++
	}
	return out, nil
}

func (b *Backend) QueryCommissions(_ context.Context, q affiliates.Query) (listing.Page[affiliates.Commission], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpQueryCommissions); err != nil {
		return listing.Page[affiliates.Commission]{}, err
	}
	var hits []affiliates.Commission
	for _, c := range b.commissions {
		if q.Matches(c) {
			hits = append(hits, c)
		}
	}
	slices.SortStableFunc(hits, newestFirst(func(c affiliates.Commission) time.Time { return c.CreatedAt }))
	return listing.Slice(hits, q.Pagination()), nil
}

func (b *Backend) UpdateCommissionStatus(_ context.Context, id string, u affiliates.CommissionUpdate) (affiliates.Commission, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpUpdateCommissionStatus); err != nil {
		return affiliates.Commission{}, err
	}
	for i, c := range b.commissions {
		if c.ID == id {
			b.commissions[i] = c.Apply(u, b.Now())
			return b.commissions[i], nil
		}
	}
	return affiliates.Commission{}, affiliates.ErrNotFound
}

func (b *Backend) CommissionSummary(_ context.Context, affiliateCodeID string) (affiliates.Summary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpCommissionSummary); err != nil {
		return affiliates.Summary{}, err
	}
	var s affiliates.Summary
	for _, c := range b.commissions {
		if c.AffiliateCodeID == affiliateCodeID {
			s = s.Add(c)
		}
	}
	return s, nil
}

func (b *Backend) ListProducts(_ context.Context) ([]catalog.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpListProducts); err != nil {
		return nil, err
	}
	out := slices.Clone(b.products)
	slices.SortFunc(out, func(x, y catalog.Product) int { return strings.Compare(x.SKU, y.SKU) })
	if out == nil {
		out = []catalog.Product{}
	}
	return out, nil
}

func (b *Backend) ProductsByID(_ context.Context, ids []string) (map[string]catalog.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpProductsByID); err != nil {
		return nil, err
	}
	out := make(map[string]catalog.Product, len(ids))
	for _, p := range b.products {
		if slices.Contains(ids, p.ID) {
			out[p.ID] = p
		}
	}
	return out, nil
}
