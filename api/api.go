// Package api exposes the dashboard's REST surface: user management,
// configuration storage, and the session middleware that fronts every route.
package api

import (
	_ "embed"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/voxboard/voxboard/auth"
	"github.com/voxboard/voxboard/directory"
)

// API holds the dependencies needed by the REST handlers.
type API struct {
	dir   directory.Store
	auth  *auth.Authenticator
	audit *auditLogger
}

//go:embed openapi.yaml
var openapiSpec []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for audit events.
// If not set, a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.audit = newAuditLogger(logger)
	}
}

// New creates a new API instance.
func New(dir directory.Store, authenticator *auth.Authenticator, opts ...Option) *API {
	a := &API{
		dir:  dir,
		auth: authenticator,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.audit == nil {
		a.audit = newAuditLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}
	return a
}

// Router returns a chi.Router with all API routes mounted. Every route runs
// behind the session middleware.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(a.SessionMiddleware)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/openapi.yaml",
		Path:    "docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/openapi.yaml",
		Path:    "redoc",
	}, nil))

	r.Post("/v1/users", a.CreateUser)
	r.Patch("/v1/users/{userID}", a.ModifyUser)
	r.Get("/v1/config", a.GetConfig)
	r.Put("/v1/config", a.SetConfig)
	r.Post("/v1/logout", a.Logout)

	return r
}
