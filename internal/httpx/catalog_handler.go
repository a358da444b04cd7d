package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/apperr"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/backend"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/catalog"
)

type CatalogHandler struct {
	Store backend.Store
	Log   *zap.Logger
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/api/products", h.list)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	products, err := h.Store.ListProducts(ctx)
	if err != nil {
		fail(w, h.Log, apperr.Wrap(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products": lo.Map(products, func(p catalog.Product, _ int) catalog.View { return p.View() }),
	})
}
