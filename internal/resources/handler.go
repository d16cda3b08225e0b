package resources

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/svit-college/curriculum-portal/internal/listquery"
	"github.com/svit-college/curriculum-portal/internal/platform/httpx"
	"github.com/svit-college/curriculum-portal/internal/rbac"
	"github.com/svit-college/curriculum-portal/internal/shared"
	"github.com/svit-college/curriculum-portal/internal/view"
)

const (
	listPath   = "/resources"
	managePath = "/resources/manage"
)

var sortKeys = []string{"title", "addedOn", "category"}

// Handler serves the resource links screens.
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

// MountRoutes registers resource routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireScreen(rbac.ScreenResources)).Get("/", h.list)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireScreen(rbac.ScreenResourceManage))
		r.Get("/manage", h.manage)
		r.Post("/manage", h.create)
		r.Get("/manage/{id}/edit", h.edit)
		r.Post("/manage/{id}", h.update)
		r.Post("/manage/{id}/delete", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal := rbac.PrincipalFromContext(r.Context())
	q := listquery.ParseQuery(r.URL.Query(), Schema)
	q.VisibilityRole = principal.Role
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
	h.render(w, r, "resources/list", "Resources", map[string]any{
		"Page":           listquery.NewPage(items, q, listPath, page, perPage, sortKeys...),
		"Categories":     Categories,
		"CategoryFilter": q.Filter(FilterCategory),
	}, http.StatusOK)
}

func (h *Handler) manage(w http.ResponseWriter, r *http.Request) {
	form := Resource{Category: CategoryOfficial, Visibility: rbac.Roles}
	h.renderManage(w, r, form, map[string]string{}, http.StatusOK)
}

func (h *Handler) renderManage(w http.ResponseWriter, r *http.Request, form Resource, errs map[string]string, status int) {
	q := listquery.ParseQuery(r.URL.Query(), Schema)
	items, err := h.service.List(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, perPage := listquery.ParsePage(r.URL.Query())
	h.render(w, r, "resources/manage", "Manage Resources", map[string]any{
		"Page":       listquery.NewPage(items, q, managePath, page, perPage, sortKeys...),
		"Categories": Categories,
		"Roles":      rbac.Roles,
		"Form":       form,
		"Errors":     errs,
	}, status)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := parseForm(r)
	if _, err := h.service.Create(r.Context(), rbac.PrincipalFromContext(r.Context()), form); err != nil {
		h.renderManage(w, r, form, shared.FieldErrors(err), http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, managePath, "success", "Resource added successfully")
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid resource ID", http.StatusBadRequest)
		return
	}
	res, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.redirectWithFlash(w, r, managePath, "error", shared.UserSafeMessage(err))
		return
	}
	h.renderForm(w, r, res, map[string]string{}, http.StatusOK)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, form Resource, errs map[string]string, status int) {
	h.render(w, r, "resources/form", "Edit Resource", map[string]any{
		"Form":       form,
		"Categories": Categories,
		"Roles":      rbac.Roles,
		"Errors":     errs,
	}, status)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid resource ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := parseForm(r)
	form.ID = id
	_, err = h.service.Update(r.Context(), rbac.PrincipalFromContext(r.Context()), id, Patch{
		Title:       &form.Title,
		URL:         &form.URL,
		Description: &form.Description,
		Category:    &form.Category,
		Visibility:  &form.Visibility,
	})
	if errors.Is(err, shared.ErrNotFound) {
		h.redirectWithFlash(w, r, managePath, "error", shared.UserSafeMessage(err))
		return
	}
	if err != nil {
		h.renderForm(w, r, form, shared.FieldErrors(err), http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, managePath, "success", "Resource updated successfully")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid resource ID", http.StatusBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), rbac.PrincipalFromContext(r.Context()), id); err != nil {
		h.redirectWithFlash(w, r, managePath, "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, managePath, "success", "Resource deleted successfully")
}

func parseForm(r *http.Request) Resource {
	res := Resource{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		URL:         strings.TrimSpace(r.PostFormValue("url")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Category:    Category(strings.TrimSpace(r.PostFormValue("category"))),
	}
	for _, v := range r.PostForm["visibility"] {
		role := rbac.Role(strings.TrimSpace(v))
		if role != "" {
			res.Visibility = append(res.Visibility, role)
		}
	}
	return res
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if httpx.WantsJSON(r) {
		httpx.RespondError(w, err)
		return
	}
	status := httpx.StatusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("resources request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	h.render(w, r, "errors/error", "Resources", map[string]any{
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
