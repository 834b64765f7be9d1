package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophmarket/internal/server/services"
)

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUser(r)
	p, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		h.writeMappedError(r.Context(), w, "get-profile", err)
		return
	}
	writeSuccess(w, http.StatusOK, p)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req services.ProfileUpdate
	if err := decodeBody(w, r, &req); err != nil {
		h.writeBadRequest(r.Context(), w, "update-profile", err)
		return
	}

	userID, _ := currentUser(r)
	p, err := h.users.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		h.writeMappedError(r.Context(), w, "update-profile", err)
		return
	}
	writeSuccess(w, http.StatusOK, p)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeBadRequest(r.Context(), w, "change-password", err)
		return
	}

	userID, _ := currentUser(r)
	if err := h.users.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeMappedError(r.Context(), w, "change-password", err)
		return
	}
	writeMessage(w, http.StatusOK, "Password changed successfully")
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, token := currentUser(r)
	if err := h.users.DeleteAccount(r.Context(), userID, token); err != nil {
		h.writeMappedError(r.Context(), w, "delete-account", err)
		return
	}
	writeMessage(w, http.StatusOK, "Account deleted")
}
