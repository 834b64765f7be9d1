package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophmarket/internal/server/models"
	"github.com/dmitrijs2005/gophmarket/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type imageRequest struct {
	ContentType string `json:"contentType"`
}

type imageResponse struct {
	UploadURL string `json:"uploadUrl"`
	ImageKey  string `json:"imageKey"`
}

func (h *Handler) listListings(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.writeMappedError(r.Context(), w, "list-listings", err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		h.writeMappedError(r.Context(), w, "list-listings", err)
		return
	}

	items, err := h.listings.List(r.Context(), limit, offset, r.URL.Query().Get("sellerId"))
	if err != nil {
		h.writeMappedError(r.Context(), w, "list-listings", err)
		return
	}
	writeSuccess(w, http.StatusOK, items)
}

func (h *Handler) getListing(w http.ResponseWriter, r *http.Request) {
	l, err := h.listings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeMappedError(r.Context(), w, "get-listing", err)
		return
	}
	writeSuccess(w, http.StatusOK, l)
}

func (h *Handler) createListing(w http.ResponseWriter, r *http.Request) {
	var req services.ListingInput
	if err := decodeBody(w, r, &req); err != nil {
		h.writeBadRequest(r.Context(), w, "create-listing", err)
		return
	}

	userID, _ := currentUser(r)
	l, err := h.listings.Create(r.Context(), userID, req)
	if err != nil {
		h.writeMappedError(r.Context(), w, "create-listing", err)
		return
	}
	writeSuccess(w, http.StatusCreated, l)
}

func (h *Handler) updateListing(w http.ResponseWriter, r *http.Request) {
	var req models.ListingUpdate
	if err := decodeBody(w, r, &req); err != nil {
		h.writeBadRequest(r.Context(), w, "update-listing", err)
		return
	}

	userID, _ := currentUser(r)
	l, err := h.listings.Update(r.Context(), userID, chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeMappedError(r.Context(), w, "update-listing", err)
		return
	}
	writeSuccess(w, http.StatusOK, l)
}

func (h *Handler) deleteListing(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUser(r)
	if err := h.listings.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.writeMappedError(r.Context(), w, "delete-listing", err)
		return
	}
	writeMessage(w, http.StatusOK, "Listing deleted")
}

func (h *Handler) listingImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if err := decodeOptionalBody(w, r, &req); err != nil {
		h.writeBadRequest(r.Context(), w, "listing-image", err)
		return
	}

	userID, _ := currentUser(r)
	url, key, err := h.listings.ImageUploadURL(r.Context(), userID, chi.URLParam(r, "id"), req.ContentType)
	if err != nil {
		h.writeMappedError(r.Context(), w, "listing-image", err)
		return
	}
	writeSuccess(w, http.StatusOK, imageResponse{UploadURL: url, ImageKey: key})
}
