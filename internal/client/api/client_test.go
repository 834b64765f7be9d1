package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, v map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func success(data any) map[string]any {
	return map[string]any{"status": "success", "data": data}
}

func TestLoginAndMe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "right" {
			writeEnvelope(w, http.StatusUnauthorized, map[string]any{"status": "error", "code": "INVALID_CREDENTIALS", "message": "Invalid credentials"})
			return
		}
		writeEnvelope(w, http.StatusOK, success(map[string]any{
			"accessToken": "a1", "refreshToken": "r1", "user": map[string]any{"id": "u1", "email": body["email"]},
		}))
	})
	mux.HandleFunc("GET /api/users/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer a1", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, success(map[string]any{"id": "u1", "email": "ada@example.com"}))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, time.Second)
	ctx := context.Background()

	_, err := c.Me(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = c.Login(ctx, "ada@example.com", "wrong")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.False(t, c.LoggedIn())

	s, err := c.Login(ctx, "ada@example.com", "right")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.User.ID)
	assert.True(t, c.LoggedIn())

	u, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
}

func TestExpiredAccessTokenIsRefreshedOnce(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		writeEnvelope(w, http.StatusOK, success(map[string]any{"accessToken": "a2", "refreshToken": "r2"}))
	})
	mux.HandleFunc("GET /api/favorites", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer a2" {
			writeEnvelope(w, http.StatusUnauthorized, map[string]any{"status": "error", "code": "AUTH_003", "message": "Token expired"})
			return
		}
		writeEnvelope(w, http.StatusOK, success([]map[string]any{{"id": "l1", "title": "Lamp"}}))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, time.Second)
	c.setTokens("a1", "r1")

	favs, err := c.Favorites(context.Background())
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "Lamp", favs[0].Title)
	assert.Equal(t, int32(1), refreshes.Load())

	access, refresh := c.tokens()
	assert.Equal(t, "a2", access)
	assert.Equal(t, "r2", refresh)
}

func TestRefreshFailureDropsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, map[string]any{"status": "error", "code": "INVALID_REFRESH_TOKEN", "message": "Invalid refresh token"})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	c.setTokens("a1", "r1")

	_, err := c.Refresh(context.Background())
	require.Error(t, err)
	assert.False(t, c.LoggedIn())
}

func TestLogoutForgetsTokens(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/logout", r.URL.Path)
		assert.Equal(t, "Bearer a1", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeEnvelope(w, http.StatusOK, map[string]any{"status": "success", "message": "Logged out successfully"})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	c.setTokens("a1", "r1")

	require.NoError(t, c.Logout(context.Background()))
	assert.Equal(t, "r1", got["refreshToken"])
	assert.False(t, c.LoggedIn())
	assert.ErrorIs(t, c.Logout(context.Background()), ErrNotLoggedIn)
}

func TestListingsQuery(t *testing.T) {
	assert.Equal(t, "", listingsQuery(0, 0, ""))
	assert.Equal(t, "?limit=5&offset=10&sellerId=u1", listingsQuery(5, 10, "u1"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		writeEnvelope(w, http.StatusOK, success([]map[string]any{}))
	}))
	defer srv.Close()

	out, err := New(srv.URL, time.Second).Listings(context.Background(), 5, 0, "")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestUploadToPresignedURL(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		body, _ = io.ReadAll(r.Body)
		if string(body) == "bad" {
			http.Error(w, "denied", http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New("http://unused", time.Second)
	require.NoError(t, c.UploadToPresignedURL(context.Background(), srv.URL+"/obj", []byte("png-bytes"), "image/png"))
	assert.Equal(t, "png-bytes", string(body))

	err := c.UploadToPresignedURL(context.Background(), srv.URL+"/obj", []byte("bad"), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}
