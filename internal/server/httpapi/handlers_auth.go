package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophmarket/internal/server/services"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := decodeBody(w, r, &req); err != nil {
		h.writeBadRequest(r.Context(), w, "register", err)
		return
	}

	res, err := h.users.Register(r.Context(), req)
	if err != nil {
		h.writeMappedError(r.Context(), w, "register", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeBadRequest(r.Context(), w, "login", err)
		return
	}

	res, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeMappedError(r.Context(), w, "login", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeBadRequest(r.Context(), w, "refresh", err)
		return
	}

	pair, err := h.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeMappedError(r.Context(), w, "refresh", err)
		return
	}
	writeSuccess(w, http.StatusOK, pair)
}

// logout revokes the bearer token. The refresh token in the body is optional.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeOptionalBody(w, r, &req); err != nil {
		h.writeBadRequest(r.Context(), w, "logout", err)
		return
	}

	_, token := currentUser(r)
	if err := h.users.Logout(r.Context(), token, req.RefreshToken); err != nil {
		h.writeMappedError(r.Context(), w, "logout", err)
		return
	}
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeBadRequest(r.Context(), w, "verify-email", err)
		return
	}

	if err := h.users.VerifyEmail(r.Context(), req.Token); err != nil {
		h.writeMappedError(r.Context(), w, "verify-email", err)
		return
	}
	writeMessage(w, http.StatusOK, "Email verified successfully")
}

func (h *Handler) resendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeBadRequest(r.Context(), w, "resend-verification", err)
		return
	}

	if err := h.users.ResendVerification(r.Context(), req.Email); err != nil {
		h.writeMappedError(r.Context(), w, "resend-verification", err)
		return
	}
	writeMessage(w, http.StatusOK, "Verification email sent")
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeBadRequest(r.Context(), w, "forgot-password", err)
		return
	}

	if err := h.users.ForgotPassword(r.Context(), req.Email); err != nil {
		h.writeMappedError(r.Context(), w, "forgot-password", err)
		return
	}
	writeMessage(w, http.StatusOK, "If the email is registered, a reset link has been sent")
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeBadRequest(r.Context(), w, "reset-password", err)
		return
	}

	if err := h.users.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.writeMappedError(r.Context(), w, "reset-password", err)
		return
	}
	writeMessage(w, http.StatusOK, "Password reset successfully")
}
