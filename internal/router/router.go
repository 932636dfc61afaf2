// Package router sets up all HTTP routes and middleware chains for the
// client portal. It organizes routes into public and admin groups with
// appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"clientportal/internal/handlers"
	"clientportal/internal/middleware"
	"clientportal/internal/session"
)

// Options carries settings that shape the middleware stack.
type Options struct {
	// SecureCookies marks the CSRF cookie as HTTPS-only.
	SecureCookies bool
	// LoginLimiter throttles POST /admin/login. Nil disables throttling.
	LoginLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, admin *handlers.Admin, auth *handlers.Auth, public *handlers.Public, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check and metrics: no session, no CSRF.
	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	// Public portal API.
	r.Route("/api", func(r chi.Router) {
		r.Get("/portal/{slug}", public.Portal)
		r.Get("/block-types", public.BlockTypes)
	})

	// Admin API: session cookie plus double-submit CSRF.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.LoadSession(sessionStore))
		r.Use(middleware.NewCSRF(opts.SecureCookies))

		// Accessible without a session.
		r.Group(func(r chi.Router) {
			if opts.LoginLimiter != nil {
				r.Use(opts.LoginLimiter.Middleware)
			}
			r.Post("/login", auth.Login)
		})
		r.Post("/logout", auth.Logout)

		// 2FA: requires auth but NOT completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa/setup", auth.TwoFASetup)
			r.Post("/2fa/verify", auth.TwoFAVerify)
		})

		// Authenticated + 2FA-verified editor area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", admin.ClientsList)
				r.Post("/", admin.ClientCreate)
				r.Get("/{id}", admin.ClientShow)
				r.Patch("/{id}", admin.ClientUpdate)
				r.Delete("/{id}", admin.ClientDelete)

				r.Put("/{id}/config", admin.ConfigUpsert)
				r.Post("/{id}/logo", admin.LogoUpload)

				r.Get("/{id}/blocks", admin.BlocksList)
				r.Post("/{id}/blocks", admin.BlockCreate)
				r.Put("/{id}/blocks/order", admin.BlocksReorder)
			})

			r.Route("/blocks", func(r chi.Router) {
				r.Patch("/{id}", admin.BlockUpdate)
				r.Delete("/{id}", admin.BlockDelete)
				r.Post("/{id}/publish", admin.BlockPublish)
				r.Post("/{id}/unpublish", admin.BlockUnpublish)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
