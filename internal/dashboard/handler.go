package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/svit-college/curriculum-portal/internal/rbac"
	"github.com/svit-college/curriculum-portal/internal/shared"
	"github.com/svit-college/curriculum-portal/internal/view"
)

// Handler serves the role dashboards.
type Handler struct {
	logger    *slog.Logger
	loader    *Loader
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, loader *Loader, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, loader: loader, templates: templates, csrf: csrf, rbac: rbac}
}

// MountRoutes registers the dashboards under /dashboard.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireScreen(rbac.ScreenStudentDashboard)).Get("/student", h.page("dashboard/student", "Student Dashboard"))
	r.With(h.rbac.RequireScreen(rbac.ScreenFacultyDashboard)).Get("/faculty", h.page("dashboard/faculty", "Faculty Dashboard"))
	r.With(h.rbac.RequireScreen(rbac.ScreenAdminDashboard)).Get("/admin", h.page("dashboard/admin", "Admin Dashboard"))
}

// Home sends the visitor to their dashboard, or to the login screen.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	target := rbac.LoginPath
	if p := rbac.LoadPrincipal(shared.SessionFromContext(r.Context())); p != nil {
		target = rbac.DashboardFor(p.Role)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) page(template, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := rbac.PrincipalFromContext(r.Context())
		data, err := h.loader.Load(r.Context(), p)
		if err != nil {
			h.logger.Error("load dashboard", slog.String("role", string(p.Role)), slog.Any("error", err))
			h.render(w, r, template, title, map[string]any{
				"Error":    "Failed to load dashboard data. Please try again.",
				"RetryURL": r.URL.RequestURI(),
			}, http.StatusServiceUnavailable)
			return
		}
		h.render(w, r, template, title, map[string]any{"Dashboard": data}, http.StatusOK)
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		User:        rbac.ViewUser(r.Context()),
		Data:        data,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
	}
}
