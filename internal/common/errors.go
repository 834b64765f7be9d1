// Package common defines shared constants, sentinel errors, and small helpers
// used across the client and server layers of GophMarket. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Credential errors. Unknown email and wrong password both map here.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")

	// State-conflict errors.
	ErrEmailExists          = errors.New("email already exists")
	ErrEmailAlreadyVerified = errors.New("email already verified")
	ErrAlreadyFavorited     = errors.New("listing already in favorites")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")

	// Token lifecycle errors.
	ErrTokenExpired             = errors.New("token expired")
	ErrInvalidRefreshToken      = errors.New("invalid refresh token")
	ErrRefreshTokenExpired      = errors.New("refresh token expired")
	ErrInvalidVerificationToken = errors.New("invalid verification token")
	ErrInvalidResetToken        = errors.New("invalid or expired reset token")

	// Configuration errors.
	ErrMissingSigningSecret = errors.New("signing secret is not configured")
)
