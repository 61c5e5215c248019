package shell

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terraconstructs/shopadmin/pkg/sdk"
	"github.com/terraconstructs/shopadmin/pkg/session"
)

// Router assembles the shell routes. Every route below /api and /healthz
// shows only the loading view until the current session is ready.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(s.corsOptions()))
	r.Use(session.Provide(s.Manager))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/session", func(r chi.Router) {
		r.Get("/", s.handleSession)
		r.Post("/reload", s.handleReload)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.guard.RequireReady)

		r.Get("/", s.handleHome)
		r.Get("/books", s.handlePage("Books", "Browse the catalogue."))
		r.Get("/contact", s.handlePage("Contact", "Write to us at support@example.com."))
		r.Get("/register", s.handlePage("Register", "Registration is handled by the storefront."))
		r.Get("/login", s.handleLoginForm)
		r.Post("/login", s.handleLogin)
		r.Get("/logout", s.handleLogout)
		r.Post("/logout", s.handleLogout)

		r.With(s.guard.Require("")).Get("/account", s.handleAccount)
		r.With(s.guard.Require(sdk.RoleUser)).Get("/checkout", s.handlePage("Checkout", "Your cart is empty."))

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.guard.Require(sdk.RoleAdmin))
			r.Get("/", s.handleAdmin)
			r.Get("/user", s.handleAdminUsers)
			r.Get("/book", s.handleAdminPage("Manage Books"))
			r.Get("/order", s.handleAdminPage("Manage Orders"))
		})
	})

	return r
}
