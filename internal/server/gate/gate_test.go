package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/dmitrijs2005/gophmarket/internal/server/auth"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/blacklist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingBlacklist struct{ blacklist.Repository }

func (failingBlacklist) IsBlacklisted(context.Context, string, time.Time) (bool, error) {
	return false, errors.New("registry down")
}

func setup(t *testing.T) (*Gate, *auth.TokenCodec, *blacklist.MemoryRepository, *time.Time) {
	t.Helper()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	codec, err := auth.NewTokenCodec([]byte("secret"), time.Hour, auth.WithClock(clock))
	require.NoError(t, err)
	bl := blacklist.NewMemoryRepository()
	return New(codec, bl, WithClock(clock)), codec, bl, &now
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		in   string
		tok  string
		ok   bool
		name string
	}{
		{name: "valid", in: "Bearer abc", tok: "abc", ok: true},
		{name: "lowercase scheme", in: "bearer abc", tok: "abc", ok: true},
		{name: "padded", in: "  Bearer   abc  ", tok: "abc", ok: true},
		{name: "empty", in: ""},
		{name: "scheme only", in: "Bearer "},
		{name: "basic", in: "Basic dXNlcjpwYXNz"},
		{name: "raw token", in: "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok, ok := BearerToken(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.tok, tok)
		})
	}
}

func TestAuthenticate_Admits(t *testing.T) {
	g, codec, _, _ := setup(t)

	tok, _, err := codec.Issue("u1")
	require.NoError(t, err)

	uid, got, err := g.Authenticate(context.Background(), "Bearer "+tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)
	assert.Equal(t, tok, got)

	// Second call is served from the verification cache.
	uid, _, err = g.Authenticate(context.Background(), "Bearer "+tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)
}

func TestAuthenticate_NoToken(t *testing.T) {
	g, _, _, _ := setup(t)

	_, _, err := g.Authenticate(context.Background(), "")
	require.ErrorIs(t, err, ErrNoToken)
	_, _, err = g.Authenticate(context.Background(), "Token abc")
	require.ErrorIs(t, err, ErrNoToken)
}

func TestAuthenticate_Invalid(t *testing.T) {
	g, _, _, _ := setup(t)

	_, _, err := g.Authenticate(context.Background(), "Bearer not.a.jwt")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestAuthenticate_Expired(t *testing.T) {
	g, codec, _, now := setup(t)

	tok, _, err := codec.Issue("u1")
	require.NoError(t, err)

	_, _, err = g.Authenticate(context.Background(), "Bearer "+tok)
	require.NoError(t, err)

	*now = now.Add(time.Hour + time.Second)

	_, _, err = g.Authenticate(context.Background(), "Bearer "+tok)
	require.ErrorIs(t, err, common.ErrTokenExpired)

	// And again once the cache entry is gone.
	_, _, err = g.Authenticate(context.Background(), "Bearer "+tok)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestAuthenticate_RevokedEvenWhenCached(t *testing.T) {
	g, codec, bl, now := setup(t)

	tok, _, err := codec.Issue("u1")
	require.NoError(t, err)

	_, _, err = g.Authenticate(context.Background(), "Bearer "+tok)
	require.NoError(t, err)

	require.NoError(t, bl.Add(context.Background(), tok, now.Add(time.Hour)))

	_, _, err = g.Authenticate(context.Background(), "Bearer "+tok)
	require.ErrorIs(t, err, common.ErrTokenRevoked)
}

func TestAuthenticate_RegistryError(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	codec, err := auth.NewTokenCodec([]byte("secret"), time.Hour, auth.WithClock(clock))
	require.NoError(t, err)
	g := New(codec, failingBlacklist{}, WithClock(clock))

	tok, _, err := codec.Issue("u1")
	require.NoError(t, err)

	_, _, err = g.Authenticate(context.Background(), "Bearer "+tok)
	require.EqualError(t, err, "registry down")
}

func TestContextBinding(t *testing.T) {
	ctx := context.Background()

	_, ok := UserIDFrom(ctx)
	assert.False(t, ok)
	_, ok = TokenFrom(ctx)
	assert.False(t, ok)

	ctx = WithUser(ctx, "u1", "tok")
	uid, ok := UserIDFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", uid)
	tok, ok := TokenFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "tok", tok)
}
