// Package server assembles the chi router: pipeline middleware in front,
// session, bootstrap, and health endpoints behind it.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	audithandler "homehold/internal/audit/handler"
	bootstraphandler "homehold/internal/bootstrap/handler"
	healthhandler "homehold/internal/health/handler"
	"homehold/internal/server/middleware"
	sessionhandler "homehold/internal/session/handler"
)

// Deps holds the handlers and middleware the router wires together.
type Deps struct {
	SessionLoader *middleware.SessionLoader
	Authorizer    *middleware.Authorizer
	Sessions      *sessionhandler.HTTP
	Audit         *audithandler.HTTP
	Bootstrap     *bootstraphandler.HTTP
	Health        *healthhandler.HTTP
	Logger        *zap.Logger
}

// NewRouter builds the full route tree.
//
// Route -> guard mapping:
//   - GET  /healthz, /readyz                  -> none
//   - GET  /v1/bootstrap, POST /v1/bootstrap  -> locality gate inside the handler
//   - GET  /v1/sessions                       -> session required
//   - DELETE /v1/sessions/current             -> session required
//   - POST /v1/admin/impersonations           -> action admin.impersonate
//   - POST /v1/kiosk/sessions                 -> action kiosk.activate
//   - GET  /v1/admin/sessions                 -> action admin.sessions.read
//   - DELETE /v1/admin/sessions/{sid}         -> action admin.sessions.revoke
//   - GET  /v1/admin/audit                    -> action admin.audit.read
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Tracing)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", deps.Health.Live)
	r.Get("/readyz", deps.Health.Ready)

	r.Route("/v1", func(r chi.Router) {
		r.Use(deps.SessionLoader.Load)

		r.Get("/bootstrap", deps.Bootstrap.Status)
		r.Post("/bootstrap", deps.Bootstrap.Complete)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Get("/sessions", deps.Sessions.ListMine)
			r.Delete("/sessions/current", deps.Sessions.Logout)
		})

		r.With(deps.Authorizer.RequireAction("admin.impersonate")).
			Post("/admin/impersonations", deps.Sessions.Impersonate)
		r.With(deps.Authorizer.RequireAction("kiosk.activate")).
			Post("/kiosk/sessions", deps.Sessions.ActivateKiosk)
		r.With(deps.Authorizer.RequireAction("admin.sessions.read")).
			Get("/admin/sessions", deps.Sessions.AdminList)
		r.With(deps.Authorizer.RequireAction("admin.sessions.revoke")).
			Delete("/admin/sessions/{sid}", deps.Sessions.AdminRevoke)
		r.With(deps.Authorizer.RequireAction("admin.audit.read")).
			Get("/admin/audit", deps.Audit.List)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	})

	return r
}
