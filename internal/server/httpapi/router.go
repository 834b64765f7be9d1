// Package httpapi is the JSON-over-HTTP adapter for the GophMarket services.
package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophmarket/internal/logging"
	"github.com/dmitrijs2005/gophmarket/internal/server/gate"
	"github.com/dmitrijs2005/gophmarket/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	users     *services.UserService
	listings  *services.ListingService
	favorites *services.FavoriteService
	gate      *gate.Gate
	log       logging.Logger
}

func NewHandler(
	users *services.UserService,
	listings *services.ListingService,
	favorites *services.FavoriteService,
	g *gate.Gate,
	log logging.Logger,
) *Handler {
	return &Handler{users: users, listings: listings, favorites: favorites, gate: g, log: log.With("module", "http")}
}

// NewRouter registers every route with the request id, recover and access
// log middleware. Routes under the bearer group go through the gate.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(h.recoverMiddleware)
	r.Use(h.loggingMiddleware)

	r.Get("/healthz", h.healthz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.Post("/refresh", h.refresh)
			r.Post("/verify-email", h.verifyEmail)
			r.Post("/resend-verification", h.resendVerification)
			r.Post("/forgot-password", h.forgotPassword)
			r.Post("/reset-password", h.resetPassword)
			r.With(h.authMiddleware).Post("/logout", h.logout)
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Use(h.authMiddleware)
			r.Get("/", h.getProfile)
			r.Patch("/", h.updateProfile)
			r.Delete("/", h.deleteAccount)
			r.Put("/password", h.changePassword)
		})

		r.Route("/listings", func(r chi.Router) {
			r.Get("/", h.listListings)
			r.Get("/{id}", h.getListing)

			r.Group(func(r chi.Router) {
				r.Use(h.authMiddleware)
				r.Post("/", h.createListing)
				r.Patch("/{id}", h.updateListing)
				r.Delete("/{id}", h.deleteListing)
				r.Post("/{id}/image", h.listingImage)
			})
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Use(h.authMiddleware)
			r.Get("/", h.listFavorites)
			r.Post("/{listingId}", h.addFavorite)
			r.Delete("/{listingId}", h.removeFavorite)
		})
	})

	return r
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
