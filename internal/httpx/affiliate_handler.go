package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/affiliates"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/apperr"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/backend"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/listing"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/redisx"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/validate"
)

type AffiliateHandler struct {
	Auth    backend.Auth
	Store   backend.Store
	Guard   Guard
	Cache   redisx.Cache
	Log     *zap.Logger
	SiteURL string
}

type magicLinkRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

func (h *AffiliateHandler) Register(r chi.Router) {
	r.Post("/api/affiliate/magic-link", h.magicLink)
	r.With(guarded(h.Guard.RequireAffiliate, affiliateKey, reject)).Get("/api/affiliate/commissions", h.commissions)
	r.With(guarded(h.Guard.RequireAffiliate, affiliateKey, redirect)).Get("/affiliate", h.dashboard)
}

// magicLink emails a sign-in link, but only to addresses that own an
// affiliate code.
func (h *AffiliateHandler) magicLink(w http.ResponseWriter, r *http.Request) {
	var req magicLinkRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, h.Log, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		fail(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Store.FindAffiliateCode(ctx, req.Email); err != nil {
		if errors.Is(err, affiliates.ErrNotFound) {
			fail(w, h.Log, apperr.NotFoundErr("no affiliate account for this email"))
			return
		}
		fail(w, h.Log, apperr.Wrap(err))
		return
	}

	throttle := fmt.Sprintf(redisx.KeyMagicLink, req.Email)
	ok, err := h.Cache.SetNX(ctx, throttle, "1", redisx.TTLMagicLink)
	if err != nil {
		h.Log.Warn("magic link throttle unavailable", zap.Error(err))
	} else if !ok {
		fail(w, h.Log, apperr.RateLimitedErr("please wait before requesting another link"))
		return
	}

	if err := h.Auth.SendMagicLink(ctx, req.Email, h.SiteURL+"/affiliate"); err != nil {
		// Nothing was sent, so the caller may retry straight away.
		if derr := h.Cache.Del(context.WithoutCancel(ctx), throttle); derr != nil {
			h.Log.Warn("magic link throttle release failed", zap.Error(derr))
		}
		fail(w, h.Log, apperr.Wrap(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AffiliateHandler) commissions(w http.ResponseWriter, r *http.Request) {
	lf, err := affiliates.ParseListFilter(r.URL.Query())
	if err != nil {
		fail(w, h.Log, err)
		return
	}
	code := affiliateFrom(r.Context()).Code

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var (
		page    listing.Page[affiliates.Commission]
		summary affiliates.Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = h.Store.QueryCommissions(gctx, affiliates.Query{AffiliateCodeID: code.ID, ListFilter: lf})
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = h.Store.CommissionSummary(gctx, code.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		fail(w, h.Log, apperr.Wrap(err))
		return
	}

	out := toCommissionPage(page.Items, page.Total, page.Page, page.Limit, page.TotalPages(page.Total))
	out.Summary = &summary
	writeJSON(w, http.StatusOK, out)
}

func (h *AffiliateHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	a := affiliateFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	summary, err := h.Store.CommissionSummary(ctx, a.Code.ID)
	if err != nil {
		fail(w, h.Log, apperr.Wrap(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"affiliate": map[string]string{
			"email": a.Identity.Email,
			"name":  a.Code.AffiliateName,
			"code":  a.Code.Code,
		},
		"summary": summary,
	})
}
