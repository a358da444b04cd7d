package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/affiliates"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/apperr"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/backend"
	kafkax "github.com/handshakeadmin/DYOROfficial-sub002/internal/kafka"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/orders"
)

// EventPublisher is satisfied by *kafka.Producer and kafka.Discard.
type EventPublisher interface {
	PublishEvent(key []byte, env kafkax.Envelope)
}

type AdminHandler struct {
	Store            backend.Store
	Guard            Guard
	OrderEvents      EventPublisher
	CommissionEvents EventPublisher
	Log              *zap.Logger
	Service          string

	// StrictTransitions rejects order status changes orders.CanTransition
	// does not allow. Off by default: any status may follow any other.
	StrictTransitions bool
}

type orderPage struct {
	Orders     []orders.Summary `json:"orders"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}

type orderDetailPage struct {
	Orders     []orders.Detail `json:"orders"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
}

type commissionPage struct {
	Commissions []affiliates.CommissionView `json:"commissions"`
	Total       int                         `json:"total"`
	Page        int                         `json:"page"`
	Limit       int                         `json:"limit"`
	TotalPages  int                         `json:"totalPages"`
	Summary     *affiliates.Summary         `json:"summary,omitempty"`
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(guarded(h.Guard.RequireAdmin, adminKey, reject))
		r.Get("/users/{id}/orders", h.userOrders)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.getOrder)
		r.Patch("/orders/{id}/status", h.updateOrderStatus)
		r.Get("/commissions", h.listCommissions)
		r.Patch("/commissions/{id}", h.updateCommission)
	})
	r.With(guarded(h.Guard.RequireAdmin, adminKey, redirect)).Get("/admin", h.dashboard)
}

func (h *AdminHandler) userOrders(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	lf, err := orders.ParseListFilter(r.URL.Query())
	if err != nil {
		fail(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, err := h.Store.QueryOrders(ctx, orders.Query{UserID: userID, ListFilter: lf})
	if err != nil {
		fail(w, h.Log, apperr.Wrap(err))
		return
	}
	writeJSON(w, http.StatusOK, orderPage{
		Orders:     lo.Map(page.Items, func(rec orders.Record, _ int) orders.Summary { return rec.Summary() }),
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(page.Total),
	})
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	lf, err := orders.ParseListFilter(r.URL.Query())
	if err != nil {
		fail(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, err := h.Store.QueryOrders(ctx, orders.Query{ListFilter: lf})
	if err != nil {
		fail(w, h.Log, apperr.Wrap(err))
		return
	}
	writeJSON(w, http.StatusOK, orderDetailPage{
		Orders:     lo.Map(page.Items, func(rec orders.Record, _ int) orders.Detail { return rec.Detail() }),
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(page.Total),
	})
}

func (h *AdminHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rec, err := h.Store.GetOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		fail(w, h.Log, orderErr(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": rec.Detail()})
}

func (h *AdminHandler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	var u orders.StatusUpdate
	if err := decodeJSON(r, &u); err != nil {
		fail(w, h.Log, err)
		return
	}
	if err := u.Validate(); err != nil {
		fail(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.StrictTransitions {
		cur, err := h.Store.GetOrder(ctx, orderID)
		if err != nil {
			fail(w, h.Log, orderErr(err))
			return
		}
		if !orders.CanTransition(cur.Status, u.Status) {
			fail(w, h.Log, apperr.ConflictErr("cannot move order from "+string(cur.Status)+" to "+string(u.Status)))
			return
		}
	}

	rec, err := h.Store.UpdateOrderStatus(ctx, orderID, u)
	if err != nil {
		fail(w, h.Log, orderErr(err))
		return
	}

	admin := adminFrom(r.Context())
	h.OrderEvents.PublishEvent(orders.PartitionKey(rec.ID), kafkax.NewEnvelope(
		orders.EventOrderStatusUpdated, h.Service, middleware.GetReqID(r.Context()), rec.ID,
		rec.StatusUpdatedPayload(admin.ID),
	))
	h.Log.Info("order status updated",
		zap.String("order_id", rec.ID), zap.String("status", string(rec.Status)), zap.String("admin_id", admin.ID))

	writeJSON(w, http.StatusOK, map[string]any{"order": rec.Detail()})
}

func (h *AdminHandler) listCommissions(w http.ResponseWriter, r *http.Request) {
	lf, err := affiliates.ParseListFilter(r.URL.Query())
	if err != nil {
		fail(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, err := h.Store.QueryCommissions(ctx, affiliates.Query{
		AffiliateCodeID: r.URL.Query().Get("affiliateId"),
		ListFilter:      lf,
	})
	if err != nil {
		fail(w, h.Log, apperr.Wrap(err))
		return
	}
	writeJSON(w, http.StatusOK, toCommissionPage(page.Items, page.Total, page.Pagination.Page, page.Limit, page.TotalPages(page.Total)))
}

func (h *AdminHandler) updateCommission(w http.ResponseWriter, r *http.Request) {
	var u affiliates.CommissionUpdate
	if err := decodeJSON(r, &u); err != nil {
		fail(w, h.Log, err)
		return
	}
	if err := u.Validate(); err != nil {
		fail(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Store.UpdateCommissionStatus(ctx, chi.URLParam(r, "id"), u)
	if errors.Is(err, affiliates.ErrNotFound) {
		fail(w, h.Log, apperr.NotFoundErr("commission not found"))
		return
	}
	if err != nil {
		fail(w, h.Log, apperr.Wrap(err))
		return
	}

	admin := adminFrom(r.Context())
	h.CommissionEvents.PublishEvent(affiliates.PartitionKey(c.AffiliateCodeID), kafkax.NewEnvelope(
		affiliates.EventCommissionStatusUpdated, h.Service, middleware.GetReqID(r.Context()), c.ID,
		c.UpdatedPayload(admin.ID),
	))
	writeJSON(w, http.StatusOK, map[string]any{"commission": c.View()})
}

func (h *AdminHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	counts, err := h.Store.OrderStatusCounts(ctx)
	if err != nil {
		fail(w, h.Log, apperr.Wrap(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"admin":       adminFrom(r.Context()),
		"orderCounts": counts,
	})
}

func toCommissionPage(items []affiliates.Commission, total, page, limit, totalPages int) commissionPage {
	return commissionPage{
		Commissions: lo.Map(items, func(c affiliates.Commission, _ int) affiliates.CommissionView { return c.View() }),
		Total:       total,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
	}
}

func orderErr(err error) error {
	if errors.Is(err, orders.ErrNotFound) {
		return apperr.NotFoundErr("order not found")
	}
	return apperr.Wrap(err)
}
