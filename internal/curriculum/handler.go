package curriculum

import (
	"fmt"
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
	listPath   = "/curriculum"
	uploadPath = "/curriculum/upload"
)

var sortKeys = []string{"title", "department", "year", "semester", "faculty", "lastUpdated"}

// Handler serves curriculum screens.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	exporter  *PDFExporter
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, exporter *PDFExporter, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, exporter: exporter, templates: templates, csrf: csrf, rbac: rbac}
}

// MountRoutes registers curriculum routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireScreen(rbac.ScreenCurriculum))
		r.Get("/", h.list)
		r.Get("/search", h.search)
		r.Get("/export.xlsx", h.exportXLSX)
		r.Get("/{id}", h.show)
		r.Get("/{id}/pdf", h.pdf)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireScreen(rbac.ScreenCurriculumUpload))
		r.Get("/upload", h.uploadForm)
		r.Post("/upload", h.upload)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	viewer := rbac.PrincipalFromContext(r.Context())
	q := listquery.ParseQuery(r.URL.Query(), Schema)
	items, err := h.service.ListFor(r.Context(), viewer, q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, items)
		return
	}
	page, perPage := listquery.ParsePage(r.URL.Query())
	h.render(w, r, "curriculum/list", "Curriculum", map[string]any{
		"Page":        listquery.NewPage(items, q, listPath, page, perPage, sortKeys...),
		"Departments": Departments,
		"Years":       Years,
		"Semesters":   Semesters,
		"Statuses":    Statuses,
		"ShowStatus":  viewer.Role != rbac.RoleStudent,
		"CanUpload":   rbac.ScreenCurriculumUpload.Permits(viewer.Role),
	}, http.StatusOK)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	filters := SearchFilters{
		Department: strings.TrimSpace(values.Get("department")),
		Semester:   strings.TrimSpace(values.Get("semester")),
		Faculty:    strings.TrimSpace(values.Get("faculty")),
		Keyword:    strings.TrimSpace(values.Get("keyword")),
	}
	errs := map[string]string{}
	if raw := strings.TrimSpace(values.Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1 || year > 4 {
			errs["year"] = "year must be between 1 and 4"
		} else {
			filters.Year = year
		}
	}
	searched := len(values) > 0
	var results []Entry
	if searched && len(errs) == 0 {
		var err error
		results, err = h.service.AdvancedSearch(r.Context(), rbac.PrincipalFromContext(r.Context()), filters)
		if err != nil {
			h.fail(w, r, err)
			return
		}
	}
	if httpx.WantsJSON(r) {
		if len(errs) > 0 {
			httpx.RespondError(w, shared.NewFieldError("year", errs["year"]))
			return
		}
		httpx.JSON(w, http.StatusOK, results)
		return
	}
	status := http.StatusOK
	if len(errs) > 0 {
		status = http.StatusBadRequest
	}
	h.render(w, r, "curriculum/search", "Search Curriculum", map[string]any{
		"Filters":     filters,
		"YearInput":   values.Get("year"),
		"Searched":    searched,
		"Results":     results,
		"Departments": Departments,
		"Years":       Years,
		"Semesters":   Semesters,
		"Errors":      errs,
	}, status)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(w, r)
	if !ok {
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, e)
		return
	}
	h.render(w, r, "curriculum/show", e.Title, map[string]any{"Entry": e}, http.StatusOK)
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(w, r)
	if !ok {
		return
	}
	doc, err := h.exporter.Export(r.Context(), e)
	if err != nil {
		h.logger.Error("export curriculum pdf", slog.Int64("id", e.ID), slog.Any("error", err))
		h.redirectWithFlash(w, r, fmt.Sprintf("%s/%d", listPath, e.ID), "error", "Failed to generate PDF. Please try again later.")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, FileName(e)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (h *Handler) entry(w http.ResponseWriter, r *http.Request) (Entry, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid curriculum ID", http.StatusBadRequest)
		return Entry{}, false
	}
	e, err := h.service.GetFor(r.Context(), rbac.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return Entry{}, false
	}
	return e, true
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	q := listquery.ParseQuery(r.URL.Query(), Schema)
	items, err := h.service.ListFor(r.Context(), rbac.PrincipalFromContext(r.Context()), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := Workbook.Serve(w, "curriculum.xlsx", items); err != nil {
		h.logger.Error("export curriculum", slog.Any("error", err))
	}
}

func (h *Handler) uploadForm(w http.ResponseWriter, r *http.Request) {
	form := Entry{Year: 1, Semester: "Odd", Units: []Unit{{}}}
	h.renderUpload(w, r, form, map[string]string{}, http.StatusOK)
}

func (h *Handler) renderUpload(w http.ResponseWriter, r *http.Request, form Entry, errs map[string]string, status int) {
	h.render(w, r, "curriculum/upload", "Upload Curriculum", map[string]any{
		"Form":        form,
		"Departments": Departments,
		"Years":       Years,
		"Semesters":   Semesters,
		"Errors":      errs,
	}, status)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form, err := parseForm(r)
	asDraft := r.PostFormValue("action") == "draft"
	var created Entry
	if err == nil {
		created, err = h.service.Upload(r.Context(), rbac.PrincipalFromContext(r.Context()), form, asDraft)
	}
	if err != nil {
		if len(form.Units) == 0 {
			form.Units = []Unit{{}}
		}
		h.renderUpload(w, r, form, shared.FieldErrors(err), http.StatusBadRequest)
		return
	}
	if asDraft {
		h.redirectWithFlash(w, r, uploadPath, "success", "Draft has been saved successfully!")
		return
	}
	h.redirectWithFlash(w, r, fmt.Sprintf("%s/%d", listPath, created.ID), "success", "Curriculum has been successfully uploaded!")
}

func parseForm(r *http.Request) (Entry, error) {
	e := Entry{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Department:  strings.TrimSpace(r.PostFormValue("department")),
		Semester:    strings.TrimSpace(r.PostFormValue("semester")),
		Faculty:     strings.TrimSpace(r.PostFormValue("faculty")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Objectives:  lines(r.PostFormValue("objectives")),
		Outcomes:    lines(r.PostFormValue("outcomes")),
		Textbooks:   lines(r.PostFormValue("textbooks")),
		References:  lines(r.PostFormValue("references")),
	}
	titles := r.PostForm["unit_title"]
	descriptions := r.PostForm["unit_description"]
	topics := r.PostForm["unit_topics"]
	for i := 0; i < max(len(titles), len(descriptions), len(topics)); i++ {
		var u Unit
		if i < len(titles) {
			u.Title = strings.TrimSpace(titles[i])
		}
		if i < len(descriptions) {
			u.Description = strings.TrimSpace(descriptions[i])
		}
		if i < len(topics) {
			u.Topics = lines(topics[i])
		}
		e.Units = append(e.Units, u)
	}
	if raw := strings.TrimSpace(r.PostFormValue("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return e, shared.NewFieldError("year", "year must be between 1 and 4")
		}
		e.Year = year
	}
	return e, nil
}

// lines splits a textarea into one item per non-blank line.
func lines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if httpx.WantsJSON(r) {
		httpx.RespondError(w, err)
		return
	}
	status := httpx.StatusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("curriculum request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	h.render(w, r, "errors/error", "Curriculum", map[string]any{
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
