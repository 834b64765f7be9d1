package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophmarket/internal/client/api"
)

// getSimpleText and getPassword are indirections swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

var errUsage = errors.New("usage")

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	first, err := getSimpleText(a.reader, "First name (optional)", a.out)
	if err != nil {
		return err
	}
	last, err := getSimpleText(a.reader, "Last name (optional)", a.out)
	if err != nil {
		return err
	}

	if _, err := a.api.Register(ctx, email, password, first, last); err != nil {
		return err
	}
	a.email = email
	printlnFn(a.out, "Registered. Check your inbox and run: verify <token>")
	return nil
}

func (a *App) Verify(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("verify <token>")
	}
	if err := a.api.VerifyEmail(ctx, args[0]); err != nil {
		return err
	}
	printlnFn(a.out, "Email verified. You can log in now.")
	return nil
}

func (a *App) Resend(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.api.ResendVerification(ctx, email); err != nil {
		return err
	}
	printlnFn(a.out, "Verification email sent.")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}

	s, err := a.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	a.email = s.User.Email
	printlnFn(a.out, "Welcome,", displayName(s.User))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	a.email = ""
	if err != nil {
		return err
	}
	printlnFn(a.out, "Logged out.")
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if _, err := a.api.Refresh(ctx); err != nil {
		return err
	}
	printlnFn(a.out, "Session refreshed.")
	return nil
}

func (a *App) Me(ctx context.Context) error {
	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	printlnFn(a.out, fmt.Sprintf("%s <%s> verified=%t id=%s", displayName(*u), u.Email, u.IsVerified, u.ID))
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	current, err := getPassword(a.reader, "Current password", a.out)
	if err != nil {
		return err
	}
	next, err := getPassword(a.reader, "New password", a.out)
	if err != nil {
		return err
	}
	if err := a.api.ChangePassword(ctx, current, next); err != nil {
		return err
	}
	printlnFn(a.out, "Password changed. Other sessions were signed out.")
	return nil
}

func (a *App) Forgot(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.api.ForgotPassword(ctx, email); err != nil {
		return err
	}
	printlnFn(a.out, "If the email is registered, a reset token is on its way.")
	return nil
}

func (a *App) Reset(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Reset token", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "New password", a.out)
	if err != nil {
		return err
	}
	if err := a.api.ResetPassword(ctx, token, password); err != nil {
		return err
	}
	printlnFn(a.out, "Password reset. You can log in now.")
	return nil
}

func (a *App) Listings(ctx context.Context, args []string) error {
	var limit, offset int
	var err error
	if len(args) > 0 {
		if limit, err = strconv.Atoi(args[0]); err != nil {
			return usage("listings [limit] [offset]")
		}
	}
	if len(args) > 1 {
		if offset, err = strconv.Atoi(args[1]); err != nil {
			return usage("listings [limit] [offset]")
		}
	}

	items, err := a.api.Listings(ctx, limit, offset, "")
	if err != nil {
		return err
	}
	a.printListings(items)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("show <id>")
	}
	l, err := a.api.Listing(ctx, args[0])
	if err != nil {
		return err
	}
	printlnFn(a.out, formatListing(*l))
	if l.Description != "" {
		printlnFn(a.out, l.Description)
	}
	if l.ImageURL != "" {
		printlnFn(a.out, "Image:", l.ImageURL)
	}
	return nil
}

func (a *App) Sell(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	description, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}
	rawPrice, err := getSimpleText(a.reader, "Price (e.g. 12.50)", a.out)
	if err != nil {
		return err
	}
	price, err := parsePrice(rawPrice)
	if err != nil {
		return err
	}
	currency, err := getSimpleText(a.reader, "Currency (default USD)", a.out)
	if err != nil {
		return err
	}

	l, err := a.api.CreateListing(ctx, api.NewListing{Title: title, Description: description, PriceCents: price, Currency: currency})
	if err != nil {
		return err
	}
	printlnFn(a.out, "Listed:", formatListing(*l))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delete <id>")
	}
	if err := a.api.DeleteListing(ctx, args[0]); err != nil {
		return err
	}
	printlnFn(a.out, "Listing deleted.")
	return nil
}

// Upload attaches an image file to one of the user's listings.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("upload <id> <file>")
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	contentType := http.DetectContentType(data)

	u, err := a.api.ImageUploadURL(ctx, args[0], contentType)
	if err != nil {
		return err
	}
	if err := a.api.UploadToPresignedURL(ctx, u.UploadURL, data, contentType); err != nil {
		return err
	}
	printlnFn(a.out, "Uploaded", filepath.Base(args[1]), "as", u.ImageKey)
	return nil
}

func (a *App) Favorites(ctx context.Context) error {
	items, err := a.api.Favorites(ctx)
	if err != nil {
		return err
	}
	a.printListings(items)
	return nil
}

func (a *App) Fav(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("fav <id>")
	}
	if err := a.api.AddFavorite(ctx, args[0]); err != nil {
		return err
	}
	printlnFn(a.out, "Added to favorites.")
	return nil
}

func (a *App) Unfav(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("unfav <id>")
	}
	if err := a.api.RemoveFavorite(ctx, args[0]); err != nil {
		return err
	}
	printlnFn(a.out, "Removed from favorites.")
	return nil
}

func (a *App) printListings(items []api.Listing) {
	if len(items) == 0 {
		printlnFn(a.out, "Nothing here.")
		return
	}
	for _, l := range items {
		printlnFn(a.out, formatListing(l))
	}
}

func displayName(u api.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

func formatListing(l api.Listing) string {
	return fmt.Sprintf("%s  %-30s %s %s", l.ID, l.Title, formatPrice(l.PriceCents), l.Currency)
}

func formatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// parsePrice turns "12", "12.5" or "12.50" into cents.
func parsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 2 {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w < 0 {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	var f int64
	if frac != "" {
		f, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || f < 0 {
			return 0, fmt.Errorf("invalid price %q", s)
		}
		if len(frac) == 1 {
			f *= 10
		}
	}
	return w*100 + f, nil
}
