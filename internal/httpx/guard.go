package httpx

import (
	"context"
	"net/http"

	"github.com/samber/mo"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/apperr"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/auth"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/users"
)

// Guard is the role check surface handlers depend on; *auth.Guard implements it.
type Guard interface {
	RequireAdmin(r *http.Request) mo.Either[auth.Denial, users.Profile]
	RequireAffiliate(r *http.Request) mo.Either[auth.Denial, auth.Affiliate]
}

type ctxKey int

const (
	adminKey ctxKey = iota
	affiliateKey
)

type denyFunc func(w http.ResponseWriter, r *http.Request, d auth.Denial)

// reject answers API callers with a bare 401.
func reject(w http.ResponseWriter, _ *http.Request, _ auth.Denial) {
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: apperr.PublicMessage(apperr.UnauthorizedErr())})
}

// redirect sends page callers to the login path named by the denial.
func redirect(w http.ResponseWriter, r *http.Request, d auth.Denial) {
	http.Redirect(w, r, d.Location, http.StatusFound)
}

// guarded runs next only when decide grants access, stashing the granted
// value in the request context. On denial the response is terminated here.
func guarded[T any](decide func(*http.Request) mo.Either[auth.Denial, T], key ctxKey, deny denyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := decide(r)
			if d, denied := res.Left(); denied {
				deny(w, r, d)
				return
			}
			v := res.MustRight()
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), key, v)))
		})
	}
}

func adminFrom(ctx context.Context) users.Profile {
	p, _ := ctx.Value(adminKey).(users.Profile)
	return p
}

func affiliateFrom(ctx context.Context) auth.Affiliate {
	a, _ := ctx.Value(affiliateKey).(auth.Affiliate)
	return a
}
