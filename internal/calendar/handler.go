package calendar

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/svit-college/curriculum-portal/internal/listquery"
	"github.com/svit-college/curriculum-portal/internal/platform/httpx"
	"github.com/svit-college/curriculum-portal/internal/rbac"
	"github.com/svit-college/curriculum-portal/internal/shared"
	"github.com/svit-college/curriculum-portal/internal/view"
)

const (
	listPath   = "/calendar"
	managePath = "/calendar/manage"
)

var sortKeys = []string{"start", "end", "title", "type"}

// Handler serves academic calendar screens.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	csrf           *shared.CSRFManager
	rbac           rbac.Middleware
	upcomingWindow int
}

// NewHandler builds Handler instance. upcomingDays bounds the "upcoming"
// panel on the calendar screen.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware, upcomingDays int) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, rbac: rbac, upcomingWindow: upcomingDays}
}

// MountRoutes registers calendar routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireScreen(rbac.ScreenCalendar))
		r.Get("/", h.list)
		r.Get("/feed.ics", h.feed)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireScreen(rbac.ScreenCalendarManage))
		r.Get("/manage", h.manage)
		r.Post("/manage", h.create)
		r.Get("/manage/{id}/edit", h.edit)
		r.Post("/manage/{id}", h.update)
		r.Post("/manage/{id}/delete", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := listquery.ParseQuery(r.URL.Query(), Schema)

	var (
		items []Event
		err   error
	)
	from, to, rangeErr := parseRange(r)
	if rangeErr == nil && !from.IsZero() {
		items, err = h.service.ByDateRange(ctx, from, to)
		if err == nil {
			items = listquery.Apply(items, Schema, q)
		}
	} else {
		items, err = h.service.List(ctx, q)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, items)
		return
	}
	upcoming, err := h.service.Upcoming(ctx, time.Now(), h.upcomingWindow, 5)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errs := map[string]string{}
	if rangeErr != nil {
		errs = shared.FieldErrors(rangeErr)
	}
	page, perPage := listquery.ParsePage(r.URL.Query())
	h.render(w, r, "calendar/list", "Academic Calendar", map[string]any{
		"Page":       listquery.NewPage(items, q, listPath, page, perPage, sortKeys...),
		"Upcoming":   upcoming,
		"Types":      EventTypes,
		"TypeFilter": q.Filter(FilterType),
		"From":       shared.FormatDate(from),
		"To":         shared.FormatDate(to),
		"Errors":     errs,
	}, http.StatusOK)
}

// parseRange reads the optional from/to pair. A lone bound is treated as a
// single-day range.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	rawFrom := strings.TrimSpace(r.URL.Query().Get("from"))
	rawTo := strings.TrimSpace(r.URL.Query().Get("to"))
	if rawFrom == "" && rawTo == "" {
		return time.Time{}, time.Time{}, nil
	}
	if rawFrom == "" {
		rawFrom = rawTo
	}
	if rawTo == "" {
		rawTo = rawFrom
	}
	from, err := shared.ParseDate(rawFrom)
	if err != nil {
		return time.Time{}, time.Time{}, shared.NewFieldError("from", "from must use the YYYY-MM-DD format")
	}
	to, err := shared.ParseDate(rawTo)
	if err != nil {
		return time.Time{}, time.Time{}, shared.NewFieldError("to", "to must use the YYYY-MM-DD format")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, shared.NewFieldError("to", "to must not be before from")
	}
	return from, to, nil
}

func (h *Handler) feed(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.List(r.Context(), Schema.Reset())
	if err != nil {
		h.logger.Error("calendar feed", slog.Any("error", err))
		http.Error(w, "Failed to load calendar", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="academic-calendar.ics"`)
	_, _ = w.Write([]byte(Feed(events, time.Now())))
}

func (h *Handler) manage(w http.ResponseWriter, r *http.Request) {
	h.renderManage(w, r, Event{Type: TypeAcademic}, map[string]string{}, http.StatusOK)
}

func (h *Handler) renderManage(w http.ResponseWriter, r *http.Request, form Event, errs map[string]string, status int) {
	q := listquery.ParseQuery(r.URL.Query(), Schema)
	items, err := h.service.List(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, perPage := listquery.ParsePage(r.URL.Query())
	h.render(w, r, "calendar/manage", "Manage Calendar", map[string]any{
		"Page":   listquery.NewPage(items, q, managePath, page, perPage, sortKeys...),
		"Types":  EventTypes,
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
	if err == nil {
		_, err = h.service.Create(r.Context(), rbac.PrincipalFromContext(r.Context()), form)
	}
	if err != nil {
		h.renderManage(w, r, form, shared.FieldErrors(err), http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, managePath, "success", "Event created successfully")
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid event ID", http.StatusBadRequest)
		return
	}
	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.redirectWithFlash(w, r, managePath, "error", shared.UserSafeMessage(err))
		return
	}
	h.render(w, r, "calendar/form", "Edit Event", map[string]any{"Form": e, "Types": EventTypes, "Errors": map[string]string{}}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid event ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form, err := parseForm(r)
	form.ID = id
	if err == nil {
		if form.End.IsZero() {
			form.End = form.Start
		}
		_, err = h.service.Update(r.Context(), rbac.PrincipalFromContext(r.Context()), id, Patch{
			Title:       &form.Title,
			Start:       &form.Start,
			End:         &form.End,
			Description: &form.Description,
			Type:        &form.Type,
			Links:       &form.Links,
		})
	}
	if errors.Is(err, shared.ErrNotFound) {
		h.redirectWithFlash(w, r, managePath, "error", shared.UserSafeMessage(err))
		return
	}
	if err != nil {
		h.render(w, r, "calendar/form", "Edit Event", map[string]any{"Form": form, "Types": EventTypes, "Errors": shared.FieldErrors(err)}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, managePath, "success", "Event updated successfully")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid event ID", http.StatusBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), rbac.PrincipalFromContext(r.Context()), id); err != nil {
		h.redirectWithFlash(w, r, managePath, "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, managePath, "success", "Event deleted successfully")
}

func parseForm(r *http.Request) (Event, error) {
	e := Event{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Type:        EventType(strings.TrimSpace(r.PostFormValue("type"))),
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
		if l.Title != "" || l.URL != "" {
			e.Links = append(e.Links, l)
		}
	}
	if raw := strings.TrimSpace(r.PostFormValue("start")); raw != "" {
		d, err := shared.ParseDate(raw)
		if err != nil {
			return e, shared.NewFieldError("start", "start must use the YYYY-MM-DD format")
		}
		e.Start = d
	}
	if raw := strings.TrimSpace(r.PostFormValue("end")); raw != "" {
		d, err := shared.ParseDate(raw)
		if err != nil {
			return e, shared.NewFieldError("end", "end must use the YYYY-MM-DD format")
		}
		e.End = d
	}
	return e, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if httpx.WantsJSON(r) {
		httpx.RespondError(w, err)
		return
	}
	status := httpx.StatusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("calendar request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	h.render(w, r, "errors/error", "Academic Calendar", map[string]any{
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
