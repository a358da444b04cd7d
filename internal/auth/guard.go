package auth

import (
	"net/http"

	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/affiliates"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/backend"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/users"
)

const (
	AdminLoginPath     = "/admin/login"
	AffiliateLoginPath = "/affiliate/login"
)

// Denial says where an unauthorized caller should be sent. Why access was
// refused is deliberately not carried.
type Denial struct {
	Location string
}

// Affiliate is a signed-in user with a matching affiliate code.
type Affiliate struct {
	Identity users.Identity
	Code     affiliates.Code
}

type Guard struct {
	Sessions SessionResolver
	Store    backend.Store
	Log      *zap.Logger
}

// RequireAdmin yields the caller's profile when it carries the admin flag.
// Lookup errors deny access exactly like a missing flag.
func (g *Guard) RequireAdmin(r *http.Request) mo.Either[Denial, users.Profile] {
	deny := mo.Left[Denial, users.Profile](Denial{Location: AdminLoginPath})

	id, ok := g.Sessions.Resolve(r).Get()
	if !ok {
		return deny
	}
	p, err := g.Store.GetProfileByID(r.Context(), id.ID)
	if err != nil {
		g.Log.Info("admin guard: profile lookup failed", zap.String("user_id", id.ID), zap.Error(err))
		return deny
	}
	if !p.IsAdmin {
		return deny
	}
	return mo.Right[Denial](p)
}

// RequireAffiliate yields the caller's affiliate code when one is registered
// to their email.
func (g *Guard) RequireAffiliate(r *http.Request) mo.Either[Denial, Affiliate] {
	deny := mo.Left[Denial, Affiliate](Denial{Location: AffiliateLoginPath})

	id, ok := g.Sessions.Resolve(r).Get()
	if !ok || id.Email == "" {
		return deny
	}
	code, err := g.Store.FindAffiliateCode(r.Context(), id.Email)
	if err != nil {
		g.Log.Info("affiliate guard: code lookup failed", zap.String("user_id", id.ID), zap.Error(err))
		return deny
	}
	return mo.Right[Denial](Affiliate{Identity: id, Code: code})
}
