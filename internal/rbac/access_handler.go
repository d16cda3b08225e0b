package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/svit-college/curriculum-portal/internal/shared"
	"github.com/svit-college/curriculum-portal/internal/view"
)

// AccessHandler renders the screen-by-role access matrix for administrators.
type AccessHandler struct {
	logger    *slog.Logger
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      Middleware
}

// NewAccessHandler builds AccessHandler instance.
func NewAccessHandler(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, rbac Middleware) *AccessHandler {
	return &AccessHandler{logger: logger, templates: templates, csrf: csrf, rbac: rbac}
}

// MountRoutes registers access matrix routes.
func (h *AccessHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireScreen(ScreenAccessMatrix))
		r.Get("/", h.matrix)
	})
}

// AccessRow is one line of the access matrix.
type AccessRow struct {
	Screen  Screen
	Allowed map[Role]bool
}

// Matrix evaluates every registered screen for every role.
func Matrix() []AccessRow {
	screens := Screens()
	rows := make([]AccessRow, 0, len(screens))
	for _, s := range screens {
		row := AccessRow{Screen: s, Allowed: make(map[Role]bool, len(Roles))}
		for _, role := range Roles {
			row.Allowed[role] = Authorize(&Principal{Role: role}, s).Allowed()
		}
		rows = append(rows, row)
	}
	return rows
}

func (h *AccessHandler) matrix(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "admin/access", map[string]any{"Roles": Roles, "Rows": Matrix()}, http.StatusOK)
}

func (h *AccessHandler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: "Access Matrix", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, User: ViewUser(r.Context()), Data: data}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}
