package announcements

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/svit-college/curriculum-portal/internal/export"
	"github.com/svit-college/curriculum-portal/internal/listquery"
	"github.com/svit-college/curriculum-portal/internal/platform/httpx"
	"github.com/svit-college/curriculum-portal/internal/rbac"
	"github.com/svit-college/curriculum-portal/internal/shared"
	"github.com/svit-college/curriculum-portal/internal/view"
)

const (
	listPath   = "/announcements"
	managePath = "/announcements/manage"
)

var sortKeys = []string{"date", "title", "author", "important"}

// Handler serves announcement screens.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, rbac: rbac}
}

// MountRoutes registers announcement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireScreen(rbac.ScreenAnnouncements))
		r.Get("/", h.list)
		r.Get("/export.xlsx", h.exportXLSX)
		r.Get("/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireScreen(rbac.ScreenAnnouncementManage))
		r.Get("/manage", h.manage)
		r.Post("/manage", h.create)
		r.Get("/manage/{id}/edit", h.edit)
		r.Post("/manage/{id}", h.update)
		r.Post("/manage/{id}/toggle", h.toggle)
		r.Post("/manage/{id}/delete", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := listquery.ParseQuery(r.URL.Query(), Schema)
	items, err := h.service.List(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, items)
		return
	}
	page, perPage := listquery.ParsePage(r.URL.Query())
	h.render(w, r, "announcements/list", "Announcements", map[string]any{
		"Page":          listquery.NewPage(items, q, listPath, page, perPage, sortKeys...),
		"FlagImportant": FlagImportant,
		"ResetURL":      listPath,
	}, http.StatusOK)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid announcement ID", http.StatusBadRequest)
		return
	}
	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, a)
		return
	}
	h.render(w, r, "announcements/show", a.Title, map[string]any{"Announcement": a}, http.StatusOK)
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	q := listquery.ParseQuery(r.URL.Query(), Schema)
	items, err := h.service.List(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := Workbook.Serve(w, "announcements.xlsx", items); err != nil {
		h.logger.Error("export announcements", slog.Any("error", err))
	}
}

// Workbook lays out announcement exports.
var Workbook = export.Workbook[Announcement]{
	Sheet: "Announcements",
	Title: "Announcements",
	Columns: []export.Column[Announcement]{
		{Header: "Date", Width: 12, Value: func(a Announcement) any { return a.Date }},
		{Header: "Title", Width: 40, Value: func(a Announcement) any { return a.Title }},
		{Header: "Author", Width: 22, Value: func(a Announcement) any { return a.Author }},
		{Header: "Important", Width: 10, Value: func(a Announcement) any { return a.Important }},
		{Header: "Content", Width: 80, Value: func(a Announcement) any { return a.Content }},
	},
}

func (h *Handler) manage(w http.ResponseWriter, r *http.Request) {
	h.renderManage(w, r, Announcement{}, map[string]string{}, http.StatusOK)
}

func (h *Handler) renderManage(w http.ResponseWriter, r *http.Request, form Announcement, errs map[string]string, status int) {
	q := listquery.ParseQuery(r.URL.Query(), Schema)
	items, err := h.service.List(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, perPage := listquery.ParsePage(r.URL.Query())
	h.render(w, r, "announcements/manage", "Manage Announcements", map[string]any{
		"Page":   listquery.NewPage(items, q, managePath, page, perPage, sortKeys...),
		"Form":   form,
		"Errors": errs,
	}, status)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form, err := parseForm(r)
	if err != nil {
		h.renderManage(w, r, form, shared.FieldErrors(err), http.StatusBadRequest)
		return
	}
	created, err := h.service.Create(r.Context(), rbac.PrincipalFromContext(r.Context()), form)
	if err != nil {
		h.renderManage(w, r, form, shared.FieldErrors(err), http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, managePath, "success", "Announcement \""+created.Title+"\" created successfully")
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid announcement ID", http.StatusBadRequest)
		return
	}
	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.redirectWithFlash(w, r, managePath, "error", shared.UserSafeMessage(err))
		return
	}
	h.render(w, r, "announcements/form", "Edit Announcement", map[string]any{"Form": a, "Errors": map[string]string{}}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid announcement ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form, err := parseForm(r)
	form.ID = id
	if err == nil {
		_, err = h.service.Update(r.Context(), rbac.PrincipalFromContext(r.Context()), id, Patch{
			Title:     &form.Title,
			Content:   &form.Content,
			Date:      &form.Date,
			Author:    &form.Author,
			Important: &form.Important,
			Links:     &form.Links,
		})
	}
	if errors.Is(err, shared.ErrNotFound) {
		h.redirectWithFlash(w, r, managePath, "error", shared.UserSafeMessage(err))
		return
	}
	if err != nil {
		h.render(w, r, "announcements/form", "Edit Announcement", map[string]any{"Form": form, "Errors": shared.FieldErrors(err)}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, managePath, "success", "Announcement updated successfully")
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid announcement ID", http.StatusBadRequest)
		return
	}
	a, err := h.service.ToggleImportant(r.Context(), rbac.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.redirectWithFlash(w, r, managePath, "error", shared.UserSafeMessage(err))
		return
	}
	msg := "Announcement unmarked as important"
	if a.Important {
		msg = "Announcement marked as important"
	}
	h.redirectWithFlash(w, r, managePath, "success", msg)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid announcement ID", http.StatusBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), rbac.PrincipalFromContext(r.Context()), id); err != nil {
		h.redirectWithFlash(w, r, managePath, "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, managePath, "success", "Announcement deleted successfully")
}

// parseForm reads the announcement form. Links arrive as parallel
// link_title/link_url lists; fully blank pairs are ignored.
func parseForm(r *http.Request) (Announcement, error) {
	a := Announcement{
		Title:     strings.TrimSpace(r.PostFormValue("title")),
		Content:   strings.TrimSpace(r.PostFormValue("content")),
		Author:    strings.TrimSpace(r.PostFormValue("author")),
		Important: r.PostFormValue("important") == "on",
	}
	titles := r.PostForm["link_title"]
	urls := r.PostForm["link_url"]
	for i := 0; i < max(len(titles), len(urls)); i++ {
		var l Link
		if i < len(titles) {
			l.Title = strings.TrimSpace(titles[i])
		}
		if i < len(urls) {
			l.URL = strings.TrimSpace(urls[i])
		}
		if l.Title == "" && l.URL == "" {
			continue
		}
		a.Links = append(a.Links, l)
	}
	if raw := strings.TrimSpace(r.PostFormValue("date")); raw != "" {
		d, err := shared.ParseDate(raw)
		if err != nil {
			return a, shared.NewFieldError("date", "date must use the YYYY-MM-DD format")
		}
		a.Date = d
	}
	return a, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if httpx.WantsJSON(r) {
		httpx.RespondError(w, err)
		return
	}
	status := httpx.StatusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("announcements request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	h.render(w, r, "errors/error", "Announcements", map[string]any{
		"Message":  shared.UserSafeMessage(err),
		"RetryURL": r.URL.RequestURI(),
	}, status)
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

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
