// Package services contains server-side business logic. UserService owns the
// session lifecycle: registration, login, logout, refresh token rotation,
// email verification, password reset and account management.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/dmitrijs2005/gophmarket/internal/dbx"
	"github.com/dmitrijs2005/gophmarket/internal/logging"
	"github.com/dmitrijs2005/gophmarket/internal/server/auth"
	"github.com/dmitrijs2005/gophmarket/internal/server/config"
	"github.com/dmitrijs2005/gophmarket/internal/server/mailer"
	"github.com/dmitrijs2005/gophmarket/internal/server/models"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/listings"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophmarket/internal/timex"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
	User         models.PublicUser `json:"user"`
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type ProfileUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

const refreshTokenBytes = 32

type UserService struct {
	repomanager     repomanager.RepositoryManager
	codec           *auth.TokenCodec
	hasher          *auth.Hasher
	mailer          mailer.Mailer
	log             logging.Logger
	now             timex.Clock
	refreshTokenTTL time.Duration
	resetTokenTTL   time.Duration
}

type UserOption func(*UserService)

func WithUserClock(now timex.Clock) UserOption {
	return func(s *UserService) { s.now = now }
}

func NewUserService(
	m repomanager.RepositoryManager,
	codec *auth.TokenCodec,
	hasher *auth.Hasher,
	mail mailer.Mailer,
	cfg *config.Config,
	log logging.Logger,
	opts ...UserOption,
) *UserService {
	s := &UserService{
		repomanager:     m,
		codec:           codec,
		hasher:          hasher,
		mailer:          mail,
		log:             log.With("module", "users"),
		now:             timex.SystemClock,
		refreshTokenTTL: cfg.RefreshTokenTTL,
		resetTokenTTL:   cfg.ResetTokenTTL,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register creates an unverified account, mails its verification token and
// signs the user in.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if err := ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validateName("firstName", in.FirstName); err != nil {
		return nil, err
	}
	if err := validateName("lastName", in.LastName); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	verification, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var result *AuthResult
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, &models.User{
			Email:             in.Email,
			PasswordHash:      hash,
			VerificationToken: &verification,
			FirstName:         in.FirstName,
			LastName:          in.LastName,
		})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return common.ErrEmailExists
			}
			return fmt.Errorf("error creating user: %w", err)
		}

		pair, err := s.generateTokenPair(ctx, u.ID, tx)
		if err != nil {
			return err
		}
		result = &AuthResult{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, User: models.Public(u)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendVerification(ctx, in.Email, verification); err != nil {
		s.log.Warn(ctx, "verification email failed", "user_id", result.User.ID, "error", err)
	}
	s.log.Info(ctx, "user registered", "user_id", result.User.ID)
	return result, nil
}

// Login checks credentials and then the verified flag. Unknown email and
// wrong password are indistinguishable to the caller, including in timing.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.repomanager.Users(s.repomanager.Conn()).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.DummyCompare(password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !s.hasher.Compare(password, u.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	if !u.IsVerified {
		return nil, common.ErrEmailNotVerified
	}

	pair, err := s.generateTokenPair(ctx, u.ID, s.repomanager.Conn())
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user logged in", "user_id", u.ID)
	return &AuthResult{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, User: models.Public(u)}, nil
}

// Logout revokes accessToken for the rest of its lifetime and deletes the
// refresh token. Both steps are attempted even if one fails.
func (s *UserService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	db := s.repomanager.Conn()
	var errs []error

	if accessToken != "" {
		if err := s.revoke(ctx, accessToken); err != nil {
			errs = append(errs, err)
		}
	}
	if refreshToken != "" {
		if err := s.repomanager.RefreshTokens(db).Delete(ctx, refreshToken); err != nil {
			errs = append(errs, fmt.Errorf("error deleting refresh token: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	s.log.Info(ctx, "user logged out")
	return nil
}

// RefreshToken consumes refreshToken and returns a new pair. An expired token
// is still consumed, so it cannot be retried.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, common.ErrInvalidRefreshToken
	}

	var pair *TokenPair
	expired := false

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		rt, err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidRefreshToken
			}
			return fmt.Errorf("error consuming refresh token: %w", err)
		}
		if rt.Expired(s.now()) {
			// Commit the delete.
			expired = true
			return nil
		}

		pair, err = s.generateTokenPair(ctx, rt.UserID, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, common.ErrRefreshTokenExpired
	}

	s.log.Debug(ctx, "refresh token rotated")
	return pair, nil
}

// VerifyEmail marks the owner of token as verified and clears the token.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return common.ErrInvalidVerificationToken
	}
	users := s.repomanager.Users(s.repomanager.Conn())

	u, err := users.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidVerificationToken
		}
		return fmt.Errorf("error searching user: %w", err)
	}

	verified := true
	if _, err := users.Update(ctx, u.ID, models.UserUpdate{IsVerified: &verified, ClearVerificationToken: true}); err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}

	s.log.Info(ctx, "email verified", "user_id", u.ID)
	return nil
}

// ResendVerification replaces the pending verification token and mails it.
func (s *UserService) ResendVerification(ctx context.Context, email string) error {
	users := s.repomanager.Users(s.repomanager.Conn())

	u, err := users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error searching user: %w", err)
	}
	if u.IsVerified {
		return common.ErrEmailAlreadyVerified
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return common.ErrorInternal
	}
	if _, err := users.Update(ctx, u.ID, models.UserUpdate{VerificationToken: &token}); err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}

	return s.mailer.SendVerification(ctx, u.Email, token)
}

// ForgotPassword mails a reset token if email belongs to a user. It reports
// success either way so callers cannot probe for accounts.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.repomanager.Users(s.repomanager.Conn()).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("error searching user: %w", err)
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return common.ErrorInternal
	}

	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		resets := s.repomanager.ResetTokens(tx)
		if err := resets.DeleteByUser(ctx, u.ID); err != nil {
			return err
		}
		return resets.Create(ctx, u.ID, token, s.now().Add(s.resetTokenTTL))
	})
	if err != nil {
		return fmt.Errorf("error storing reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, u.Email, token); err != nil {
		s.log.Warn(ctx, "password reset email failed", "user_id", u.ID, "error", err)
	}
	return nil
}

// ResetPassword consumes token, sets the new password and signs the user out
// of every session by dropping their refresh tokens.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return common.ErrInvalidResetToken
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	expired := false
	var userID string

	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		pr, err := s.repomanager.ResetTokens(tx).Consume(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidResetToken
			}
			return fmt.Errorf("error consuming reset token: %w", err)
		}
		if pr.Expired(s.now()) {
			expired = true
			return nil
		}
		userID = pr.UserID

		if _, err := s.repomanager.Users(tx).Update(ctx, pr.UserID, models.UserUpdate{PasswordHash: &hash}); err != nil {
			return fmt.Errorf("error updating user: %w", err)
		}
		if err := s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, pr.UserID); err != nil {
			return fmt.Errorf("error deleting refresh tokens: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if expired {
		return common.ErrInvalidResetToken
	}

	s.log.Info(ctx, "password reset", "user_id", userID)
	return nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.PublicUser, error) {
	u, err := s.repomanager.Users(s.repomanager.Conn()).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := models.Public(u)
	return &p, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, up ProfileUpdate) (*models.PublicUser, error) {
	var upd models.UserUpdate
	if up.FirstName != nil {
		v := strings.TrimSpace(*up.FirstName)
		if err := validateName("firstName", v); err != nil {
			return nil, err
		}
		upd.FirstName = &v
	}
	if up.LastName != nil {
		v := strings.TrimSpace(*up.LastName)
		if err := validateName("lastName", v); err != nil {
			return nil, err
		}
		upd.LastName = &v
	}

	u, err := s.repomanager.Users(s.repomanager.Conn()).Update(ctx, userID, upd)
	if err != nil {
		return nil, err
	}
	p := models.Public(u)
	return &p, nil
}

// ChangePassword requires the current password and drops every refresh
// token of the user.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.repomanager.Users(s.repomanager.Conn()).GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Compare(current, u.PasswordHash) {
		return common.ErrInvalidCredentials
	}
	if err := ValidatePassword(next); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).Update(ctx, userID, models.UserUpdate{PasswordHash: &hash}); err != nil {
			return fmt.Errorf("error updating user: %w", err)
		}
		return s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, userID)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "password changed", "user_id", userID)
	return nil
}

const cascadePageSize = 100

// DeleteAccount removes the user with everything they own and revokes
// accessToken.
func (s *UserService) DeleteAccount(ctx context.Context, userID, accessToken string) error {
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		favs := s.repomanager.Favorites(tx)
		lst := s.repomanager.Listings(tx)

		for offset := 0; ; offset += cascadePageSize {
			page, err := lst.List(ctx, listings.Filter{Limit: cascadePageSize, Offset: offset, SellerID: userID})
			if err != nil {
				return err
			}
			for _, l := range page {
				if err := favs.DeleteByListing(ctx, l.ID); err != nil {
					return err
				}
			}
			if len(page) < cascadePageSize {
				break
			}
		}

		if err := favs.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := lst.DeleteBySeller(ctx, userID); err != nil {
			return err
		}
		if err := s.repomanager.ResetTokens(tx).DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return s.repomanager.Users(tx).Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	if accessToken != "" {
		if err := s.revoke(ctx, accessToken); err != nil {
			return err
		}
	}

	s.log.Info(ctx, "account deleted", "user_id", userID)
	return nil
}

// revoke blacklists token until the latest instant it could still verify.
func (s *UserService) revoke(ctx context.Context, token string) error {
	expiresAt := s.now().Add(s.codec.TTL())
	if err := s.repomanager.Blacklist(s.repomanager.Conn()).Add(ctx, token, expiresAt); err != nil {
		return fmt.Errorf("error revoking access token: %w", err)
	}
	return nil
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(refreshTokenBytes)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, _, err := s.codec.Issue(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Save(ctx, userID, refresh, s.now().Add(s.refreshTokenTTL)); err != nil {
		return nil, fmt.Errorf("error saving refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
