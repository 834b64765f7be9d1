package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listFavorites(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUser(r)
	items, err := h.favorites.List(r.Context(), userID)
	if err != nil {
		h.writeMappedError(r.Context(), w, "list-favorites", err)
		return
	}
	writeSuccess(w, http.StatusOK, items)
}

func (h *Handler) addFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUser(r)
	if err := h.favorites.Add(r.Context(), userID, chi.URLParam(r, "listingId")); err != nil {
		h.writeMappedError(r.Context(), w, "add-favorite", err)
		return
	}
	writeMessage(w, http.StatusCreated, "Added to favorites")
}

func (h *Handler) removeFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUser(r)
	if err := h.favorites.Remove(r.Context(), userID, chi.URLParam(r, "listingId")); err != nil {
		h.writeMappedError(r.Context(), w, "remove-favorite", err)
		return
	}
	writeMessage(w, http.StatusOK, "Removed from favorites")
}
