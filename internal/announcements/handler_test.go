package announcements_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svit-college/curriculum-portal/internal/announcements"
	"github.com/svit-college/curriculum-portal/internal/platform/webtest"
	_ "github.com/svit-college/curriculum-portal/testing"
)

func newRouter(t *testing.T) (*webtest.Env, *announcements.Service, http.Handler) {
	t.Helper()
	env := webtest.NewEnv(t)
	svc := announcements.NewService(announcements.NewMemoryRepository(announcements.Seed(), 0))
	h := announcements.NewHandler(env.Logger, svc, env.Templates, env.CSRF, env.RBAC)
	return env, svc, webtest.Router("/announcements", h.MountRoutes)
}

func TestListRequiresLogin(t *testing.T) {
	env, _, router := newRouter(t)
	res := env.Do(t, router, http.MethodGet, "/announcements/", nil, nil)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/login", res.Header().Get("Location"))
}

func TestListSearch(t *testing.T) {
	env, _, router := newRouter(t)
	res := env.Do(t, router, http.MethodGet, "/announcements/?q=library", nil, webtest.Student)
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Library Timings Extended")
	assert.NotContains(t, body, "Workshop on Machine Learning")
}

func TestListJSON(t *testing.T) {
	env, _, router := newRouter(t)
	res := env.Do(t, router, http.MethodGet, "/announcements/?flag=important", nil, webtest.Faculty, "Accept", "application/json")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"title":"Mid-Semester Exam Schedule"`)
	assert.NotContains(t, res.Body.String(), "Library")
}

func TestShowMissingRendersNotFound(t *testing.T) {
	env, _, router := newRouter(t)
	res := env.Do(t, router, http.MethodGet, "/announcements/42", nil, webtest.Student)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = env.Do(t, router, http.MethodGet, "/announcements/42", nil, webtest.Student, "Accept", "application/json")
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Contains(t, res.Body.String(), `"title":"Not Found"`)
}

func TestManageIsAdminOnly(t *testing.T) {
	env, _, router := newRouter(t)
	res := env.Do(t, router, http.MethodGet, "/announcements/manage", nil, webtest.Faculty)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/dashboard/faculty", res.Header().Get("Location"))

	res = env.Do(t, router, http.MethodGet, "/announcements/manage", nil, webtest.Admin)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestCreateAnnouncement(t *testing.T) {
	env, svc, router := newRouter(t)
	form := url.Values{
		"title":      {"Sports Day"},
		"content":    {"Annual sports day on the main ground."},
		"date":       {"2024-03-20"},
		"link_title": {"Schedule", ""},
		"link_url":   {"https://svit.edu/sports", ""},
	}
	res := env.Do(t, router, http.MethodPost, "/announcements/manage", form, webtest.Admin)
	require.Equal(t, http.StatusSeeOther, res.Code)
	flash := res.Flash()
	require.NotNil(t, flash)
	assert.Equal(t, "success", flash.Kind)

	created, err := svc.Get(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "Admin User", created.Author)
	require.Len(t, created.Links, 1)
}

func TestCreateInvalidRendersErrors(t *testing.T) {
	env, _, router := newRouter(t)
	res := env.Do(t, router, http.MethodPost, "/announcements/manage", url.Values{"content": {"x"}}, webtest.Admin)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.True(t, strings.Contains(res.Body.String(), "title is required"))
}

func TestDeleteMissingFlashesError(t *testing.T) {
	env, _, router := newRouter(t)
	res := env.Do(t, router, http.MethodPost, "/announcements/manage/99/delete", url.Values{}, webtest.Admin)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	flash := res.Flash()
	require.NotNil(t, flash)
	assert.Equal(t, "error", flash.Kind)
}

func TestExportXLSX(t *testing.T) {
	env, _, router := newRouter(t)
	res := env.Do(t, router, http.MethodGet, "/announcements/export.xlsx", nil, webtest.Student)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Header().Get("Content-Disposition"), "announcements.xlsx")
}
