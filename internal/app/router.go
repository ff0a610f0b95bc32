package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gatehouse-io/gatehouse/internal/auth"
	"github.com/gatehouse-io/gatehouse/internal/observability"
	"github.com/gatehouse-io/gatehouse/internal/rbac"
	"github.com/gatehouse-io/gatehouse/internal/tasks"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger       *slog.Logger
	Config       *Config
	Resolver     *auth.Resolver
	AuthHandler  *auth.Handler
	TasksHandler *tasks.Handler
	AdminHandler *rbac.Handler
	Metrics      *observability.Metrics
}

// NewRouter constructs the chi.Router with Gatehouse defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:   params.Logger,
		Config:   params.Config,
		Resolver: params.Resolver,
		Metrics:  params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountAuthRoutes)
		r.Route("/me", params.AuthHandler.MountMeRoutes)
		if params.TasksHandler != nil {
			r.Route("/tasks", params.TasksHandler.MountRoutes)
		}
		if params.AdminHandler != nil {
			r.Route("/admin", params.AdminHandler.MountRoutes)
		}
	})

	return r
}
