// Package auth resolves sessions and enforces role guards.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/backend"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/gotrue"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/redisx"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/users"
)

// SessionResolver turns request credentials into an identity. It never
// fails: anything short of a confirmed identity is None.
type SessionResolver interface {
	Resolve(r *http.Request) mo.Option[users.Identity]
}

// Unauthenticated is the degraded-mode resolver.
type Unauthenticated struct{}

func (Unauthenticated) Resolve(*http.Request) mo.Option[users.Identity] {
	return mo.None[users.Identity]()
}

type Resolver struct {
	Auth       backend.Auth
	Cache      redisx.Cache // optional
	CookieName string
	TTL        time.Duration
	Log        *zap.Logger
}

func NewResolver(a backend.Auth, cache redisx.Cache, cookieName string, log *zap.Logger) *Resolver {
	return &Resolver{Auth: a, Cache: cache, CookieName: cookieName, TTL: redisx.TTLSession, Log: log}
}

func (s *Resolver) Resolve(r *http.Request) mo.Option[users.Identity] {
	token := s.token(r)
	if token == "" {
		return mo.None[users.Identity]()
	}
	ctx := r.Context()
	key := cacheKey(token)

	if id, ok := s.cached(ctx, key); ok {
		return mo.Some(id)
	}

	id, err := s.Auth.GetUser(ctx, token)
	if err != nil {
		if !errors.Is(err, gotrue.ErrInvalidSession) {
			s.Log.Warn("session lookup failed", zap.Error(err))
		}
		return mo.None[users.Identity]()
	}

	if s.Cache != nil {
		b, _ := json.Marshal(id)
		if err := s.Cache.Set(ctx, key, string(b), s.TTL); err != nil {
			s.Log.Debug("session cache write failed", zap.Error(err))
		}
	}
	return mo.Some(id)
}

func (s *Resolver) cached(ctx context.Context, key string) (users.Identity, bool) {
	if s.Cache == nil {
		return users.Identity{}, false
	}
	v, err := s.Cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redisx.ErrMiss) {
			s.Log.Debug("session cache read failed", zap.Error(err))
		}
		return users.Identity{}, false
	}
	var id users.Identity
	if json.Unmarshal([]byte(v), &id) != nil || id.ID == "" {
		return users.Identity{}, false
	}
	return id, true
}

// token prefers the session cookie and falls back to a bearer header.
func (s *Resolver) token(r *http.Request) string {
	if c, err := r.Cookie(s.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if t, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(t)
	}
	return ""
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf(redisx.KeySession, hex.EncodeToString(sum[:]))
}
