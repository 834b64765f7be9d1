package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/dmitrijs2005/gophmarket/internal/timex"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered JWT claims plus the bound user identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// TokenCodec issues and verifies HS256 access tokens with a fixed TTL.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    timex.Clock
}

// Option customizes a TokenCodec.
type Option func(*TokenCodec)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now timex.Clock) Option {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec returns a codec signing with secret. An empty secret is
// refused so the process cannot start with unsigned or guessable tokens.
func NewTokenCodec(secret []byte, ttl time.Duration, opts ...Option) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, common.ErrMissingSigningSecret
	}
	if ttl <= 0 {
		return nil, errors.New("access token ttl must be positive")
	}
	c := &TokenCodec{secret: secret, ttl: ttl, now: timex.SystemClock}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// TTL is the lifetime of every issued token.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Issue signs a token for userID expiring at now+TTL.
func (c *TokenCodec) Issue(userID string) (string, time.Time, error) {
	now := c.now()
	expiresAt := now.Add(c.ttl)

	jti, err := common.MakeRandHexString(16)
	if err != nil {
		return "", time.Time{}, err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify checks the signature and expiry of tokenString and returns the bound
// user id. It returns common.ErrTokenExpired for a correctly signed token whose
// exp has passed and common.ErrInvalidToken for anything else.
func (c *TokenCodec) Verify(tokenString string) (string, error) {
	claims, err := c.Parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// Parse is Verify returning the full claims. On error no claims are returned.
func (c *TokenCodec) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" || claims.UserID != claims.Subject {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
