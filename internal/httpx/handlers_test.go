package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/affiliates"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/auth"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/backend/memory"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/catalog"
	kafkax "github.com/handshakeadmin/DYOROfficial-sub002/internal/kafka"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/orders"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/payments"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/redisx"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/users"
)

const cookieName = "sb-access-token"

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafkax.Envelope
}

func (p *recordingPublisher) PublishEvent(_ []byte, env kafkax.Envelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, env)
}

type fakeProvider struct {
	calls []payments.OrderRequest
	id    string
	err   error
}

func (f *fakeProvider) CreateOrder(_ context.Context, req payments.OrderRequest) (string, error) {
	f.calls = append(f.calls, req)
	return f.id, f.err
}

type fixture struct {
	be       *memory.Backend
	events   *recordingPublisher
	provider *fakeProvider
	cache    *redisx.Memory
	admin    *AdminHandler
	router   *chi.Mux
}

func fp(v float64) *float64 { return &v }
func sp(v string) *string   { return &v }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zap.NewNop()
	be := memory.New()
	be.AddSession("admin-tok", users.Identity{ID: "u-admin", Email: "admin@shop.test"})
	be.AddSession("user-tok", users.Identity{ID: "u-plain", Email: "plain@shop.test"})
	be.AddSession("aff-tok", users.Identity{ID: "u-aff", Email: "aff@shop.test"})
	be.AddProfile(users.Profile{ID: "u-admin", Email: "admin@shop.test", IsAdmin: true})
	be.AddProfile(users.Profile{ID: "u-plain", Email: "plain@shop.test"})
	be.AddAffiliateCode(affiliates.Code{ID: "c1", Code: "AFF10", AffiliateEmail: "aff@shop.test", AffiliateName: "Ann", IsAffiliate: true})

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		be.AddOrder(orders.Record{
			ID:          "o" + string(rune('a'+i)),
			OrderNumber: "ORD-" + string(rune('A'+i)),
			UserID:      sp("u-plain"),
			Total:       fp(10),
			Status:      orders.StatusPending,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
	}
	be.AddOrder(orders.Record{ID: "o-null", OrderNumber: "ORD-NULL", UserID: sp("u-other"), Status: orders.StatusShipped, CreatedAt: base})
	be.AddCommission(affiliates.Commission{ID: "cm1", AffiliateCodeID: "c1", Revenue: fp(100), Amount: fp(10), Status: affiliates.StatusPending, CreatedAt: base})
	be.AddCommission(affiliates.Commission{ID: "cm2", AffiliateCodeID: "c1", Status: affiliates.StatusApproved, CreatedAt: base.Add(time.Hour)})
	be.AddProduct(catalog.Product{ID: "p1", SKU: "TEE", Name: "Tee", Stock: 3, PriceCents: 1999})
	be.AddProduct(catalog.Product{ID: "p2", SKU: "CAP", Name: "Cap", Stock: 0, PriceCents: 1500})

	cache := redisx.NewMemory()
	guard := &auth.Guard{Sessions: auth.NewResolver(be, nil, cookieName, log), Store: be, Log: log}
	f := &fixture{
		be:       be,
		events:   &recordingPublisher{},
		provider: &fakeProvider{id: "PP-1"},
		cache:    cache,
	}
	f.admin = &AdminHandler{Store: be, Guard: guard, OrderEvents: f.events, CommissionEvents: f.events, Log: log, Service: "test"}
	f.router = NewRouter(log)
	f.admin.Register(f.router)
	(&AffiliateHandler{Auth: be, Store: be, Guard: guard, Cache: cache, Log: log, SiteURL: "https://shop.test"}).Register(f.router)
	(&CheckoutHandler{Store: be, Provider: f.provider, Cache: cache, Log: log, Currency: "USD"}).Register(f.router)
	(&CatalogHandler{Store: be, Log: log}).Register(f.router)
	return f
}

func (f *fixture) do(method, target, token, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestAdminAPIRejectsWithoutTouchingStore(t *testing.T) {
	cases := []struct {
		name, method, path, token, body string
	}{
		{"anonymous list", http.MethodGet, "/api/admin/users/u-plain/orders", "", ""},
		{"non-admin list", http.MethodGet, "/api/admin/orders", "user-tok", ""},
		{"anonymous patch", http.MethodPatch, "/api/admin/orders/oa/status", "", `{"status":"shipped"}`},
		{"bad token", http.MethodGet, "/api/admin/commissions", "nope", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			w := f.do(tc.method, tc.path, tc.token, tc.body)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
			assert.Zero(t, f.be.Calls(memory.OpQueryOrders))
			assert.Zero(t, f.be.Calls(memory.OpUpdateOrderStatus))
			assert.Zero(t, f.be.Calls(memory.OpQueryCommissions))
		})
	}
}

func TestAdminPageRedirectsToLogin(t *testing.T) {
	f := newFixture(t)
	for _, tok := range []string{"", "user-tok", "aff-tok"} {
		w := f.do(http.MethodGet, "/admin", tok, "")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, auth.AdminLoginPath, w.Header().Get("Location"))
	}

	w := f.do(http.MethodGet, "/admin", "admin-tok", "")
	require.Equal(t, http.StatusOK, w.Code)
	counts := decode(t, w)["orderCounts"].(map[string]any)
	assert.EqualValues(t, 25, counts["pending"])
	assert.EqualValues(t, 1, counts["shipped"])
}

func TestAffiliatePageRedirectsToLogin(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/affiliate", "admin-tok", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, auth.AffiliateLoginPath, w.Header().Get("Location"))

	w = f.do(http.MethodGet, "/affiliate", "aff-tok", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "AFF10", body["affiliate"].(map[string]any)["code"])
}

func TestUserOrdersPagination(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/admin/users/u-plain/orders?page=2&limit=10", "admin-tok", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 25, body["total"])
	assert.EqualValues(t, 2, body["page"])
	assert.EqualValues(t, 10, body["limit"])
	assert.EqualValues(t, 3, body["totalPages"])
	rows := body["orders"].([]any)
	require.Len(t, rows, 10)
	first := rows[0].(map[string]any)
	assert.Equal(t, "ORD-O", first["orderNumber"])
	assert.ElementsMatch(t, []string{"id", "orderNumber", "total", "status", "paymentStatus", "createdAt"}, keys(first))

	w = f.do(http.MethodGet, "/api/admin/users/u-plain/orders?page=9", "admin-tok", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Empty(t, body["orders"])
	assert.EqualValues(t, 25, body["total"])
	assert.EqualValues(t, 20, body["limit"])
}

func TestUserOrdersRejectsBadFilter(t *testing.T) {
	f := newFixture(t)
	for _, q := range []string{"limit=0", "limit=101", "page=0", "page=x", "page=4611686018427387904&limit=4", "startDate=yesterday", "status=lost"} {
		w := f.do(http.MethodGet, "/api/admin/users/u-plain/orders?"+q, "admin-tok", "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Equal(t, "invalid input", decode(t, w)["error"], q)
	}
	assert.Zero(t, f.be.Calls(memory.OpQueryOrders))
}

func TestNullMoneyRendersAsZero(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/api/admin/users/u-other/orders", "admin-tok", "")
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode(t, w)["orders"].([]any)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 0, rows[0].(map[string]any)["total"])
	assert.Equal(t, "", rows[0].(map[string]any)["paymentStatus"])
}

func TestStoreFailureIsGeneric500(t *testing.T) {
	f := newFixture(t)
	f.be.Fail(memory.OpQueryOrders, errors.New("relation orders does not exist"))
	w := f.do(http.MethodGet, "/api/admin/orders", "admin-tok", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPatch, "/api/admin/orders/oa/status", "admin-tok", `{"status":"lost"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["fields"], "status")
	assert.Zero(t, f.be.Calls(memory.OpUpdateOrderStatus))

	w = f.do(http.MethodPatch, "/api/admin/orders/oa/status", "admin-tok", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPatch, "/api/admin/orders/missing/status", "admin-tok", `{"status":"shipped"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodPatch, "/api/admin/orders/oa/status", "admin-tok", `{"status":"shipped","trackingNumber":"1Z999","carrier":"UPS"}`)
	require.Equal(t, http.StatusOK, w.Code)
	order := decode(t, w)["order"].(map[string]any)
	assert.Equal(t, "shipped", order["status"])
	assert.Equal(t, "1Z999", order["trackingNumber"])

	w = f.do(http.MethodPatch, "/api/admin/orders/oa/status", "admin-tok", `{"status":"delivered"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1Z999", decode(t, w)["order"].(map[string]any)["trackingNumber"])

	require.Len(t, f.events.events, 2)
	assert.Equal(t, orders.EventOrderStatusUpdated, f.events.events[0].EventType)
	assert.Equal(t, "oa", f.events.events[0].CorrelationID)
}

func TestStrictTransitions(t *testing.T) {
	f := newFixture(t)
	f.admin.StrictTransitions = true

	w := f.do(http.MethodPatch, "/api/admin/orders/o-null/status", "admin-tok", `{"status":"pending"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, f.be.Calls(memory.OpUpdateOrderStatus))

	w = f.do(http.MethodPatch, "/api/admin/orders/o-null/status", "admin-tok", `{"status":"delivered"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCommissionsAdminAndAffiliate(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/admin/commissions?affiliateId=c1&status=approved", "admin-tok", "")
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode(t, w)["commissions"].([]any)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 0, rows[0].(map[string]any)["commission"])

	w = f.do(http.MethodPatch, "/api/admin/commissions/cm1", "admin-tok", `{"status":"paid","notes":"batch 7"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "paid", decode(t, w)["commission"].(map[string]any)["status"])
	require.Len(t, f.events.events, 1)
	assert.Equal(t, affiliates.EventCommissionStatusUpdated, f.events.events[0].EventType)

	w = f.do(http.MethodPatch, "/api/admin/commissions/nope", "admin-tok", `{"status":"paid"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodGet, "/api/affiliate/commissions", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodGet, "/api/affiliate/commissions", "aff-tok", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 2, body["total"])
	summary := body["summary"].(map[string]any)
	assert.EqualValues(t, 10, summary["paidCommission"])
	assert.EqualValues(t, 100, summary["totalRevenue"])
}

func TestMagicLink(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/affiliate/magic-link", "", `{"email":"stranger@shop.test"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, f.be.MagicLinks)

	w = f.do(http.MethodPost, "/api/affiliate/magic-link", "", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(http.MethodPost, "/api/affiliate/magic-link", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, f.be.Calls(memory.OpSendMagicLink))

	w = f.do(http.MethodPost, "/api/affiliate/magic-link", "", `{"email":" AFF@shop.test "}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	require.Len(t, f.be.MagicLinks, 1)
	assert.Equal(t, memory.MagicLink{Email: "aff@shop.test", RedirectTo: "https://shop.test/affiliate"}, f.be.MagicLinks[0])

	w = f.do(http.MethodPost, "/api/affiliate/magic-link", "", `{"email":"aff@shop.test"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Len(t, f.be.MagicLinks, 1)
}

func TestMagicLinkBackendErrors(t *testing.T) {
	f := newFixture(t)
	f.be.Fail(memory.OpFindAffiliateCode, errors.New("timeout"))
	w := f.do(http.MethodPost, "/api/affiliate/magic-link", "", `{"email":"aff@shop.test"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	f = newFixture(t)
	f.be.Fail(memory.OpSendMagicLink, errors.New("smtp down"))
	w = f.do(http.MethodPost, "/api/affiliate/magic-link", "", `{"email":"aff@shop.test"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())

	f.be.Fail(memory.OpSendMagicLink, nil)
	w = f.do(http.MethodPost, "/api/affiliate/magic-link", "", `{"email":"aff@shop.test"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, f.be.MagicLinks, 1)
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)

	for _, body := range []string{`{"items":[]}`, `{}`} {
		w := f.do(http.MethodPost, "/api/paypal/create-order", "", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	w := f.do(http.MethodPost, "/api/paypal/create-order", "", `{"items":[{"id":"p1","quantity":0}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(http.MethodPost, "/api/paypal/create-order", "", `{"items":[{"id":"ghost","quantity":1}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(http.MethodPost, "/api/paypal/create-order", "", `{"items":[{"id":"p2","quantity":1}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.provider.calls)

	r := httptest.NewRequest(http.MethodPost, "/api/paypal/create-order", strings.NewReader(`{"items":[{"id":"p1","quantity":2}]}`))
	r.Header.Set("Idempotency-Key", "cart-42")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"PP-1"}`, rec.Body.String())
	require.Len(t, f.provider.calls, 1)
	assert.Equal(t, 3998, f.provider.calls[0].TotalCents())
	assert.Equal(t, "cart-42", f.provider.calls[0].IdempotencyKey)

	r = httptest.NewRequest(http.MethodPost, "/api/paypal/create-order", strings.NewReader(`{"items":[{"id":"p1","quantity":2}]}`))
	r.Header.Set("Idempotency-Key", "cart-42")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, f.provider.calls, 1)
}

func postCart(f *fixture, key, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/paypal/create-order", strings.NewReader(body))
	if key != "" {
		r.Header.Set("Idempotency-Key", key)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, r)
	return w
}

func TestCreateOrderChecksStockAcrossSplitLines(t *testing.T) {
	f := newFixture(t)

	w := postCart(f, "", `{"items":[{"id":"p1","quantity":2},{"id":"p1","quantity":2}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["fields"], "items[0].quantity")
	assert.Empty(t, f.provider.calls)

	w = postCart(f, "", `{"items":[{"id":"p1","quantity":1},{"id":"p1","quantity":2}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, f.provider.calls, 1)
	assert.Equal(t, 5997, f.provider.calls[0].TotalCents())
}

func TestCreateOrderIdempotencyKeyBoundToCart(t *testing.T) {
	f := newFixture(t)

	w := postCart(f, "cart-7", `{"items":[{"id":"p1","quantity":1}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = postCart(f, "cart-7", `{"items":[{"id":"p1","quantity":3}]}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postCart(f, "cart-7", `{"items":[{"id":"p1","quantity":1}]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"PP-1"}`, w.Body.String())
	assert.Len(t, f.provider.calls, 1)
}

func TestCreateOrderProviderFailure(t *testing.T) {
	f := newFixture(t)
	f.provider.err = payments.ErrNotConfigured
	w := f.do(http.MethodPost, "/api/paypal/create-order", "", `{"items":[{"id":"p1","quantity":1}]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestProducts(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/api/products", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	products := decode(t, w)["products"].([]any)
	require.Len(t, products, 2)
	tee := products[1].(map[string]any)
	assert.Equal(t, "TEE", tee["sku"])
	assert.EqualValues(t, 19.99, tee["price"])
	assert.Equal(t, true, tee["inStock"])
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
