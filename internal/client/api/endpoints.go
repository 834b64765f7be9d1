package api

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) Register(ctx context.Context, email, password, firstName, lastName string) (*Session, error) {
	var s Session
	body := map[string]string{"email": email, "password": password, "firstName": firstName, "lastName": lastName}
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/register", "", body, &s); err != nil {
		return nil, err
	}
	c.setTokens(s.AccessToken, s.RefreshToken)
	return &s, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	body := map[string]string{"email": email, "password": password}
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &s); err != nil {
		return nil, err
	}
	c.setTokens(s.AccessToken, s.RefreshToken)
	return &s, nil
}

// Refresh rotates the held refresh token. On failure the session is dropped.
func (c *Client) Refresh(ctx context.Context) (*TokenPair, error) {
	_, refresh := c.tokens()
	if refresh == "" {
		return nil, ErrNotLoggedIn
	}

	var p TokenPair
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": refresh}, &p); err != nil {
		c.setTokens("", "")
		return nil, err
	}
	c.setTokens(p.AccessToken, p.RefreshToken)
	return &p, nil
}

// Logout revokes the session on the server and forgets it locally, even if
// the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	access, refresh := c.tokens()
	if access == "" {
		return ErrNotLoggedIn
	}
	defer c.setTokens("", "")
	_, err := c.do(ctx, http.MethodPost, "/api/auth/logout", access, map[string]string{"refreshToken": refresh}, nil)
	return err
}

func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/verify-email", "", map[string]string{"token": token}, nil)
	return err
}

func (c *Client) ResendVerification(ctx context.Context, email string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/resend-verification", "", map[string]string{"email": email}, nil)
	return err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": email}, nil)
	return err
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/reset-password", "", map[string]string{"token": token, "newPassword": newPassword}, nil)
	return err
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if _, err := c.doAuth(ctx, http.MethodGet, "/api/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	_, err := c.doAuth(ctx, http.MethodPut, "/api/users/me/password", map[string]string{"currentPassword": current, "newPassword": next}, nil)
	return err
}

func (c *Client) Listings(ctx context.Context, limit, offset int, sellerID string) ([]Listing, error) {
	var out []Listing
	if _, err := c.do(ctx, http.MethodGet, "/api/listings"+listingsQuery(limit, offset, sellerID), "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Listing(ctx context.Context, id string) (*Listing, error) {
	var l Listing
	if _, err := c.do(ctx, http.MethodGet, "/api/listings/"+url.PathEscape(id), "", nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) CreateListing(ctx context.Context, in NewListing) (*Listing, error) {
	var l Listing
	if _, err := c.doAuth(ctx, http.MethodPost, "/api/listings", in, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) DeleteListing(ctx context.Context, id string) error {
	_, err := c.doAuth(ctx, http.MethodDelete, "/api/listings/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *Client) ImageUploadURL(ctx context.Context, id, contentType string) (*ImageUpload, error) {
	var u ImageUpload
	if _, err := c.doAuth(ctx, http.MethodPost, "/api/listings/"+url.PathEscape(id)+"/image", map[string]string{"contentType": contentType}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Favorites(ctx context.Context) ([]Listing, error) {
	var out []Listing
	if _, err := c.doAuth(ctx, http.MethodGet, "/api/favorites", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddFavorite(ctx context.Context, listingID string) error {
	_, err := c.doAuth(ctx, http.MethodPost, "/api/favorites/"+url.PathEscape(listingID), nil, nil)
	return err
}

func (c *Client) RemoveFavorite(ctx context.Context, listingID string) error {
	_, err := c.doAuth(ctx, http.MethodDelete, "/api/favorites/"+url.PathEscape(listingID), nil, nil)
	return err
}
