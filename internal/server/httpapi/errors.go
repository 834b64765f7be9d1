package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/dmitrijs2005/gophmarket/internal/server/gate"
	"github.com/dmitrijs2005/gophmarket/internal/server/services"
)

const (
	CodeNoToken      = "AUTH_001"
	CodeInvalidToken = "AUTH_002"
	CodeTokenExpired = "AUTH_003"
	CodeTokenRevoked = "AUTH_004"
	CodeValidation   = "VALIDATION_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// errorTable is matched in order with errors.Is. An empty message means the
// error text itself is shown.
var errorTable = []errorMapping{
	{gate.ErrNoToken, http.StatusUnauthorized, CodeNoToken, "No token provided"},
	{common.ErrTokenExpired, http.StatusUnauthorized, CodeTokenExpired, "Token expired"},
	{common.ErrTokenRevoked, http.StatusUnauthorized, CodeTokenRevoked, "Invalid token"},
	{common.ErrInvalidToken, http.StatusUnauthorized, CodeInvalidToken, "Invalid token"},

	{common.ErrorValidation, http.StatusBadRequest, CodeValidation, ""},
	{common.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials"},
	{common.ErrEmailNotVerified, http.StatusForbidden, "EMAIL_NOT_VERIFIED", "Email not verified"},
	{common.ErrEmailExists, http.StatusConflict, "EMAIL_EXISTS", "Email already exists"},
	{common.ErrEmailAlreadyVerified, http.StatusConflict, "EMAIL_ALREADY_VERIFIED", "Email already verified"},
	{common.ErrAlreadyFavorited, http.StatusConflict, "ALREADY_FAVORITED", "Listing already in favorites"},
	{common.ErrInvalidRefreshToken, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Invalid refresh token"},
	{common.ErrRefreshTokenExpired, http.StatusUnauthorized, "REFRESH_TOKEN_EXPIRED", "Refresh token expired"},
	{common.ErrInvalidVerificationToken, http.StatusBadRequest, "INVALID_VERIFICATION_TOKEN", "Invalid verification token"},
	{common.ErrInvalidResetToken, http.StatusBadRequest, "INVALID_RESET_TOKEN", "Invalid or expired reset token"},
	{common.ErrorForbidden, http.StatusForbidden, "FORBIDDEN", "Forbidden"},
	{common.ErrorNotFound, http.StatusNotFound, "NOT_FOUND", "Resource not found"},
	{services.ErrImagesDisabled, http.StatusServiceUnavailable, "IMAGES_DISABLED", "Image storage is not configured"},
}

func mapError(err error) (int, string, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			return m.status, m.code, msg
		}
	}
	return http.StatusInternalServerError, CodeInternal, "internal server error"
}

func (h *Handler) writeMappedError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	status, code, msg := mapError(err)
	fields := []any{
		"operation", operation,
		"status_code", status,
		"error_code", code,
		"request_id", requestIDFromContext(ctx),
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		h.log.Error(ctx, "http operation failed", fields...)
	} else {
		h.log.Debug(ctx, "http operation rejected", fields...)
	}
	writeError(w, status, code, msg)
}

func (h *Handler) writeBadRequest(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	h.log.Debug(ctx, "bad request", "operation", operation, "request_id", requestIDFromContext(ctx), "error", err.Error())
	writeError(w, http.StatusBadRequest, CodeValidation, "invalid request body")
}
