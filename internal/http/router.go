package http

import (
	"github.com/go-chi/chi/v5"

	"finfolio-backend/internal/http/handlers"
	"finfolio-backend/internal/http/middleware"
)

// NewRouter mounts the auth surface. Register, login and refresh are open;
// everything else sits behind the Authenticate state machine.
func NewRouter(h *handlers.AuthHandler, a *middleware.Authenticator) chi.Router {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh-token", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(a.Authenticate)
			r.Post("/logout", h.Logout)
			r.Post("/logout-all", h.LogoutAll)
			r.Get("/current-user", h.CurrentUser)
		})
	})

	return r
}
