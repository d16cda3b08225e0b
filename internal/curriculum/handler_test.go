package curriculum_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svit-college/curriculum-portal/internal/curriculum"
	"github.com/svit-college/curriculum-portal/internal/listquery"
	"github.com/svit-college/curriculum-portal/internal/platform/webtest"
	"github.com/svit-college/curriculum-portal/report"
	_ "github.com/svit-college/curriculum-portal/testing"
)

func newRouter(t *testing.T, gotenberg http.HandlerFunc) (*webtest.Env, *curriculum.Service, http.Handler) {
	t.Helper()
	if gotenberg == nil {
		gotenberg = func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) }
	}
	srv := httptest.NewServer(gotenberg)
	t.Cleanup(srv.Close)

	env := webtest.NewEnv(t)
	svc := curriculum.NewService(curriculum.NewMemoryRepository(curriculum.Seed(), 0), nil, env.Logger)
	exporter := curriculum.NewPDFExporter(env.Templates, report.NewClient(srv.URL, 0))
	h := curriculum.NewHandler(env.Logger, svc, exporter, env.Templates, env.CSRF, env.RBAC)
	return env, svc, webtest.Router("/curriculum", h.MountRoutes)
}

func TestCurriculumListFilters(t *testing.T) {
	env, _, router := newRouter(t, nil)
	res := env.Do(t, router, http.MethodGet, "/curriculum/?department=ECE", nil, webtest.Student)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Digital Signal Processing")
	assert.NotContains(t, res.Body.String(), "Power Systems")
}

func TestCurriculumStudentDraftFilterIsEmpty(t *testing.T) {
	env, _, router := newRouter(t, nil)
	res := env.Do(t, router, http.MethodGet, "/curriculum/?status=draft", nil, webtest.Student, "Accept", "application/json")
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `[]`, res.Body.String())
}

func TestCurriculumHidesDraftsFromStudents(t *testing.T) {
	env, svc, router := newRouter(t, nil)
	draft, err := svc.Upload(context.Background(), webtest.Faculty, curriculum.Entry{Title: "Compiler Design", Department: "CSE", Year: 3, Semester: "Even"}, true)
	require.NoError(t, err)

	res := env.Do(t, router, http.MethodGet, "/curriculum/", nil, webtest.Student, "Accept", "application/json")
	require.Equal(t, http.StatusOK, res.Code)
	assert.NotContains(t, res.Body.String(), "Compiler Design")

	res = env.Do(t, router, http.MethodGet, "/curriculum/9", nil, webtest.Student)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = env.Do(t, router, http.MethodGet, "/curriculum/9", nil, webtest.Faculty)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), draft.Title)
}

func TestCurriculumSearch(t *testing.T) {
	env, _, router := newRouter(t, nil)

	res := env.Do(t, router, http.MethodGet, "/curriculum/search?faculty=reddy", nil, webtest.Student)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Computer Networks")
	assert.NotContains(t, res.Body.String(), "Thermodynamics")

	res = env.Do(t, router, http.MethodGet, "/curriculum/search?year=9", nil, webtest.Student)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "year must be between 1 and 4")
}

func TestCurriculumPDF(t *testing.T) {
	var received string
	env, _, router := newRouter(t, func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("files")
		if err == nil {
			body, _ := io.ReadAll(file)
			received = string(body)
		}
		_, _ = w.Write([]byte("%PDF-1.7 stub"))
	})

	res := env.Do(t, router, http.MethodGet, "/curriculum/1/pdf", nil, webtest.Student)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "application/pdf", res.Header().Get("Content-Type"))
	assert.Contains(t, res.Header().Get("Content-Disposition"), "curriculum-1.pdf")
	assert.Equal(t, "%PDF-1.7 stub", res.Body.String())
	assert.Contains(t, received, "Programming in Python")
	assert.Contains(t, received, "Think Python by Allen B. Downey")
}

func TestCurriculumPDFFailureFlashes(t *testing.T) {
	env, _, router := newRouter(t, nil)
	res := env.Do(t, router, http.MethodGet, "/curriculum/1/pdf", nil, webtest.Student)
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/curriculum/1", res.Header().Get("Location"))
	flash := res.Flash()
	require.NotNil(t, flash)
	assert.Equal(t, "error", flash.Kind)
	assert.Contains(t, flash.Message, "Failed to generate PDF")
}

func TestCurriculumUpload(t *testing.T) {
	env, svc, router := newRouter(t, nil)
	form := url.Values{
		"title":            {"Surveying"},
		"department":       {"CIVIL"},
		"year":             {"2"},
		"semester":         {"Odd"},
		"objectives":       {"Measure land\n\nUse instruments"},
		"unit_title":       {"Chain Surveying"},
		"unit_description": {"Basics"},
		"unit_topics":      {"Chains\nTapes"},
	}

	res := env.Do(t, router, http.MethodPost, "/curriculum/upload", form, webtest.Student)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/dashboard/student", res.Header().Get("Location"))

	res = env.Do(t, router, http.MethodPost, "/curriculum/upload", form, webtest.Faculty)
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/curriculum/9", res.Header().Get("Location"))

	created, err := svc.Get(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Jane Smith", created.Faculty)
	assert.Equal(t, []string{"Measure land", "Use instruments"}, created.Objectives)
	require.Len(t, created.Units, 1)
	assert.Equal(t, []string{"Chains", "Tapes"}, created.Units[0].Topics)

	form.Set("action", "draft")
	form.Set("title", "Surveying II")
	res = env.Do(t, router, http.MethodPost, "/curriculum/upload", form, webtest.Admin)
	require.Equal(t, http.StatusSeeOther, res.Code)
	drafts, err := svc.List(context.Background(), listquery.Query{Filters: map[string]string{curriculum.FilterStatus: "draft"}})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Surveying II", drafts[0].Title)
}

func TestCurriculumUploadInvalid(t *testing.T) {
	env, _, router := newRouter(t, nil)
	res := env.Do(t, router, http.MethodPost, "/curriculum/upload", url.Values{"department": {"CSE"}, "year": {"1"}, "semester": {"Odd"}}, webtest.Faculty)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "title is required")
}

func TestCurriculumExport(t *testing.T) {
	env, _, router := newRouter(t, nil)
	res := env.Do(t, router, http.MethodGet, "/curriculum/export.xlsx", nil, webtest.Admin)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Header().Get("Content-Type"), "spreadsheetml")
}
