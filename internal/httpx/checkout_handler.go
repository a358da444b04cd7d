package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/apperr"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/backend"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/payments"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/redisx"
)

type CheckoutHandler struct {
	Store    backend.Store
	Provider payments.Provider
	Cache    redisx.Cache
	Log      *zap.Logger
	Currency string
}

func (h *CheckoutHandler) Register(r chi.Router) {
	r.Post("/api/paypal/create-order", h.createOrder)
}

func (h *CheckoutHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req payments.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, h.Log, err)
		return
	}
	if len(req.Items) == 0 {
		fail(w, h.Log, apperr.InvalidErr("cart is empty", map[string]string{"items": "is required"}))
		return
	}
	if err := req.Validate(); err != nil {
		fail(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	cart := req.Fingerprint()
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" {
		prev, ok, err := h.replay(ctx, key)
		if err != nil {
			h.Log.Warn("idempotency lookup failed", zap.Error(err))
		}
		if ok {
			if prev.Cart != cart {
				fail(w, h.Log, apperr.ConflictErr("idempotency key was already used for a different cart"))
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"id": prev.ID})
			return
		}
	} else {
		key = uuid.NewString()
	}

	order, err := h.price(ctx, req)
	if err != nil {
		fail(w, h.Log, err)
		return
	}
	order.IdempotencyKey = key

	id, err := h.Provider.CreateOrder(ctx, order)
	if err != nil {
		fail(w, h.Log, apperr.Wrap(err))
		return
	}
	b, _ := json.Marshal(idempotentOrder{ID: id, Cart: cart})
	if err := h.Cache.Set(ctx, fmt.Sprintf(redisx.KeyIdemPayPalOrder, key), string(b), redisx.TTLIdempotency); err != nil {
		h.Log.Warn("idempotency store failed", zap.Error(err))
	}

	h.Log.Info("payment order created", zap.String("provider_order_id", id), zap.Int("total_cents", order.TotalCents()))
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// idempotentOrder is what an Idempotency-Key remembers.
type idempotentOrder struct {
	ID   string `json:"id"`
	Cart string `json:"cart"`
}

func (h *CheckoutHandler) replay(ctx context.Context, key string) (idempotentOrder, bool, error) {
	v, err := h.Cache.Get(ctx, fmt.Sprintf(redisx.KeyIdemPayPalOrder, key))
	if errors.Is(err, redisx.ErrMiss) {
		return idempotentOrder{}, false, nil
	}
	if err != nil {
		return idempotentOrder{}, false, err
	}
	var prev idempotentOrder
	if err := json.Unmarshal([]byte(v), &prev); err != nil || prev.ID == "" {
		return idempotentOrder{}, false, fmt.Errorf("decode idempotency record: %q", v)
	}
	return prev, true, nil
}

// price resolves cart lines against the catalog; client-sent prices are never trusted.
func (h *CheckoutHandler) price(ctx context.Context, req payments.CheckoutRequest) (payments.OrderRequest, error) {
	products, err := h.Store.ProductsByID(ctx, req.IDs())
	if err != nil {
		return payments.OrderRequest{}, apperr.Wrap(err)
	}

	out := payments.OrderRequest{Currency: h.Currency, Items: make([]payments.LineItem, 0, len(req.Items))}
	fields := map[string]string{}
	wanted := req.Quantities()
	for i, it := range req.Items {
		p, ok := products[it.ID]
		switch {
		case !ok:
			fields[fmt.Sprintf("items[%d].id", i)] = "unknown product"
		case p.Stock < wanted[it.ID]:
			fields[fmt.Sprintf("items[%d].quantity", i)] = "insufficient stock"
		default:
			out.Items = append(out.Items, payments.LineItem{SKU: p.SKU, Name: p.Name, Quantity: it.Quantity, UnitCents: p.PriceCents})
		}
	}
	if len(fields) > 0 {
		return payments.OrderRequest{}, apperr.InvalidErr("invalid input", fields)
	}
	return out, nil
}
