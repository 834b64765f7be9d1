// Package api is a small HTTP client for the GophMarket JSON API. It keeps
// the current token pair in memory and refreshes the access token once when
// the server reports it expired.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/common"
)

// ErrNotLoggedIn is returned by calls that need a session when none is held.
var ErrNotLoggedIn = errors.New("not logged in")

const codeTokenExpired = "AUTH_003"

// Error is a non-2xx API response.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

type envelope struct {
	Status  string          `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL string
	http    *http.Client

	mu      sync.Mutex
	access  string
	refresh string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// LoggedIn reports whether a token pair is held.
func (c *Client) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.access != ""
}

func (c *Client) setTokens(access, refresh string) {
	c.mu.Lock()
	c.access, c.refresh = access, refresh
	c.mu.Unlock()
}

func (c *Client) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.access, c.refresh
}

// do sends one request and decodes the envelope's data into out (if non-nil).
// It returns the success message, if any.
func (c *Client) do(ctx context.Context, method, path string, bearer string, body, out any) (string, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return "", err
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return "", err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 300 || env.Status == "error" {
		return "", &Error{StatusCode: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("decode data: %w", err)
		}
	}
	return env.Message, nil
}

// doAuth is do with the held access token, retried once after a refresh if
// the token expired.
func (c *Client) doAuth(ctx context.Context, method, path string, body, out any) (string, error) {
	access, _ := c.tokens()
	if access == "" {
		return "", ErrNotLoggedIn
	}

	msg, err := c.do(ctx, method, path, access, body, out)
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Code != codeTokenExpired {
		return msg, err
	}

	if _, err := c.Refresh(ctx); err != nil {
		return "", err
	}
	access, _ = c.tokens()
	return c.do(ctx, method, path, access, body, out)
}

func listingsQuery(limit, offset int, sellerID string) string {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if sellerID != "" {
		q.Set("sellerId", sellerID)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
