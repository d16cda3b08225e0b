package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/svit-college/curriculum-portal/internal/announcements"
	"github.com/svit-college/curriculum-portal/internal/auth"
	"github.com/svit-college/curriculum-portal/internal/calendar"
	"github.com/svit-college/curriculum-portal/internal/curriculum"
	"github.com/svit-college/curriculum-portal/internal/dashboard"
	"github.com/svit-college/curriculum-portal/internal/observability"
	"github.com/svit-college/curriculum-portal/internal/rbac"
	"github.com/svit-college/curriculum-portal/internal/resources"
	"github.com/svit-college/curriculum-portal/internal/shared"
	"github.com/svit-college/curriculum-portal/internal/view"
	"github.com/svit-college/curriculum-portal/jobs"
	"github.com/svit-college/curriculum-portal/report"
	"github.com/svit-college/curriculum-portal/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	RBACMiddleware rbac.Middleware
	Services       Services
	PDFRenderer    curriculum.HTMLRenderer
	ReportHandler  *report.Handler
	JobHandler     *jobs.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with portal defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}
	if !params.Config.IsProduction() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	logger, tpl, csrf, mw, svc := params.Logger, params.Templates, params.CSRFManager, params.RBACMiddleware, params.Services

	dash := dashboard.NewHandler(logger, svc.Dashboard, tpl, csrf, mw)
	r.Get("/", dash.Home)
	r.Route("/dashboard", dash.MountRoutes)

	r.Group(auth.NewHandler(logger, svc.Auth, tpl, params.SessionManager, csrf, mw).MountRoutes)
	r.Route("/announcements", announcements.NewHandler(logger, svc.Announcements, tpl, csrf, mw).MountRoutes)
	r.Route("/calendar", calendar.NewHandler(logger, svc.Calendar, tpl, csrf, mw, params.Config.UpcomingWindow).MountRoutes)
	r.Route("/resources", resources.NewHandler(logger, svc.Resources, tpl, csrf, mw).MountRoutes)
	exporter := curriculum.NewPDFExporter(tpl, params.PDFRenderer)
	r.Route("/curriculum", curriculum.NewHandler(logger, svc.Curriculum, exporter, tpl, csrf, mw).MountRoutes)
	r.Route("/admin/access", rbac.NewAccessHandler(logger, tpl, csrf, mw).MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireScreen(rbac.ScreenJobs))
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
		if params.ReportHandler != nil {
			r.Route("/reports", params.ReportHandler.MountRoutes)
		}
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		if err := tpl.Execute(w, "errors/error", "layout", view.TemplateData{
			Title:       "Page not found",
			CurrentPath: r.URL.Path,
			User:        rbac.ViewUser(r.Context()),
			Data:        map[string]any{"Message": "The page you requested does not exist.", "RetryURL": "/"},
		}); err != nil {
			logger.Error("render not found", slog.Any("error", err))
		}
	})

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
