package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// NewRouter wires the client routes. Registration, verification and login
// are public; the profile routes require a live session token.
func NewRouter(h *ClientHandler, authMiddleware *AuthMiddleware, logger *zerolog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Route("/api/clients", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Get("/verify/{verificationToken}", h.Verify)
		r.Post("/reverify", h.Reverify)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/current", h.Current)
			r.Patch("/update", h.Update)
			r.Post("/logout", h.Logout)
			r.Patch("/avatars", h.UpdateAvatar)
		})
	})

	return r
}
