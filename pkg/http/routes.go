package http

import (
	"net/http"

	"shortlink/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes wires the full API surface. The optional-identity auth stage
// runs on every request; RequireAuth and the rate limiter are applied per
// route.
func SetupRoutes(r *chi.Mux, handler *Handler, authMW *middleware.Auth, rateLimit func(http.Handler) http.Handler) {
	r.Use(middleware.CorrelationID)
	r.Use(middleware.CORS)
	r.Use(authMW.Authenticate)

	r.Get("/health", handler.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/urls", func(r chi.Router) {
			r.With(rateLimit).Post("/", handler.CreateLink)
			r.Get("/redirect/{slug}", handler.RedirectInfo)
			r.Get("/details/{id}", handler.GetDetails)
			r.With(authMW.RequireAuth).Get("/user/urls", handler.ListUserLinks)
			r.With(authMW.RequireAuth).Put("/{id}", handler.UpdateLink)
			r.With(authMW.RequireAuth).Put("/{id}/assign-to-user", handler.ClaimLink)
			// Deprecated server-side redirect; {id} holds the slug here.
			r.Get("/{id}", handler.Redirect)
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(rateLimit).Post("/register", handler.Register)
			r.With(rateLimit).Post("/login", handler.Login)
			r.With(authMW.RequireAuth).Get("/me", handler.Me)
		})

		r.NotFound(handler.NotFound)
	})
}
