// Package gate authenticates bearer access tokens independently of the
// transport. HTTP middleware and the gRPC interceptor both delegate here.
package gate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/dmitrijs2005/gophmarket/internal/server/auth"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/blacklist"
	"github.com/dmitrijs2005/gophmarket/internal/timex"
	"github.com/patrickmn/go-cache"
)

// ErrNoToken means the request carried no usable bearer credential.
var ErrNoToken = errors.New("no token provided")

// TokenParser is the part of auth.TokenCodec the gate needs.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// verifiedCacheTTL bounds how long a signature check is reused.
const verifiedCacheTTL = 5 * time.Minute

type verified struct {
	userID    string
	expiresAt time.Time
}

type Gate struct {
	codec     TokenParser
	blacklist blacklist.Repository
	now       timex.Clock
	verified  *cache.Cache
}

type Option func(*Gate)

func WithClock(now timex.Clock) Option {
	return func(g *Gate) { g.now = now }
}

func New(codec TokenParser, bl blacklist.Repository, opts ...Option) *Gate {
	g := &Gate{
		codec:     codec,
		blacklist: bl,
		now:       timex.SystemClock,
		verified:  cache.New(verifiedCacheTTL, 2*verifiedCacheTTL),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len(common.BearerPrefix) || !strings.EqualFold(header[:len(common.BearerPrefix)], common.BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(common.BearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}

// Authenticate admits a request carrying authorization header value.
//
// Errors: ErrNoToken, common.ErrTokenExpired, common.ErrInvalidToken,
// common.ErrTokenRevoked, or a wrapped registry failure.
func (g *Gate) Authenticate(ctx context.Context, header string) (userID, token string, err error) {
	token, ok := BearerToken(header)
	if !ok {
		return "", "", ErrNoToken
	}

	now := g.now()

	userID, err = g.verify(token, now)
	if err != nil {
		return "", "", err
	}

	revoked, err := g.blacklist.IsBlacklisted(ctx, token, now)
	if err != nil {
		return "", "", err
	}
	if revoked {
		return "", "", common.ErrTokenRevoked
	}

	return userID, token, nil
}

// verify checks the signature once per token and caches the outcome until
// the earlier of the cache TTL and the token's own expiry.
func (g *Gate) verify(token string, now time.Time) (string, error) {
	if v, ok := g.verified.Get(token); ok {
		e := v.(verified)
		if !now.Before(e.expiresAt) {
			g.verified.Delete(token)
			return "", common.ErrTokenExpired
		}
		return e.userID, nil
	}

	claims, err := g.codec.Parse(token)
	if err != nil {
		return "", err
	}

	exp := claims.ExpiresAt.Time
	ttl := exp.Sub(now)
	if ttl > verifiedCacheTTL {
		ttl = verifiedCacheTTL
	}
	if ttl > 0 {
		g.verified.Set(token, verified{userID: claims.UserID, expiresAt: exp}, ttl)
	}
	return claims.UserID, nil
}
