package dashboard_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svit-college/curriculum-portal/internal/announcements"
	"github.com/svit-college/curriculum-portal/internal/calendar"
	"github.com/svit-college/curriculum-portal/internal/curriculum"
	"github.com/svit-college/curriculum-portal/internal/dashboard"
	"github.com/svit-college/curriculum-portal/internal/platform/webtest"
	"github.com/svit-college/curriculum-portal/internal/rbac"
	"github.com/svit-college/curriculum-portal/internal/resources"
	_ "github.com/svit-college/curriculum-portal/testing"
)

type failingEvents struct {
	dashboard.EventSource
}

func (failingEvents) Upcoming(context.Context, time.Time, int, int) ([]calendar.Event, error) {
	return nil, errors.New("calendar backend down")
}

func sources() dashboard.Sources {
	return dashboard.Sources{
		Announcements: announcements.NewService(announcements.NewMemoryRepository(announcements.Seed(), 0)),
		Events:        calendar.NewService(calendar.NewMemoryRepository(calendar.Seed(), 0), nil, nil),
		Resources:     resources.NewService(resources.NewMemoryRepository(resources.Seed(), 0), nil, nil),
		Curriculum:    curriculum.NewService(curriculum.NewMemoryRepository(curriculum.Seed(), 0), nil, nil),
	}
}

func newRouter(t *testing.T, src dashboard.Sources) (*webtest.Env, http.Handler) {
	t.Helper()
	env := webtest.NewEnv(t)
	h := dashboard.NewHandler(env.Logger, dashboard.NewLoader(src, 30), env.Templates, env.CSRF, env.RBAC)
	r := chi.NewRouter()
	r.Get("/", h.Home)
	r.Route("/dashboard", h.MountRoutes)
	return env, r
}

func TestLoadScopesByRole(t *testing.T) {
	loader := dashboard.NewLoader(sources(), 30)
	ctx := context.Background()

	student, err := loader.Load(ctx, webtest.Student)
	require.NoError(t, err)
	assert.Len(t, student.Recent, 3)
	assert.Len(t, student.Resources, 5)
	assert.Nil(t, student.Counts)
	assert.Nil(t, student.MyCurriculum)

	admin, err := loader.Load(ctx, webtest.Admin)
	require.NoError(t, err)
	require.NotNil(t, admin.Counts)
	assert.Equal(t, dashboard.Counts{Announcements: 3, Events: 7, Resources: 7, Curriculum: 8}, *admin.Counts)

	faculty, err := loader.Load(ctx, &rbac.Principal{ID: 9, DisplayName: "Dr. Arun Kumar", Role: rbac.RoleFaculty})
	require.NoError(t, err)
	require.Len(t, faculty.MyCurriculum, 1)
	assert.Equal(t, "Programming in Python", faculty.MyCurriculum[0].Title)
}

func TestLoadPropagatesFailure(t *testing.T) {
	src := sources()
	src.Events = failingEvents{EventSource: src.Events}
	_, err := dashboard.NewLoader(src, 30).Load(context.Background(), webtest.Student)
	assert.EqualError(t, err, "calendar backend down")
}

func TestDashboardPages(t *testing.T) {
	env, router := newRouter(t, sources())

	res := env.Do(t, router, http.MethodGet, "/dashboard/admin", nil, webtest.Admin)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Admin User")

	res = env.Do(t, router, http.MethodGet, "/dashboard/admin", nil, webtest.Student)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/dashboard/student", res.Header().Get("Location"))

	res = env.Do(t, router, http.MethodGet, "/dashboard/student", nil, webtest.Student)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Mid-Semester Exam Schedule")
}

func TestDashboardErrorBanner(t *testing.T) {
	src := sources()
	src.Events = failingEvents{EventSource: src.Events}
	env, router := newRouter(t, src)

	res := env.Do(t, router, http.MethodGet, "/dashboard/faculty", nil, webtest.Faculty)
	assert.Equal(t, http.StatusServiceUnavailable, res.Code)
	assert.Contains(t, res.Body.String(), "Failed to load dashboard data")
	assert.Contains(t, res.Body.String(), `href="/dashboard/faculty"`)
}

func TestHomeRedirects(t *testing.T) {
	env, router := newRouter(t, sources())

	res := env.Do(t, router, http.MethodGet, "/", nil, nil)
	assert.Equal(t, "/login", res.Header().Get("Location"))

	res = env.Do(t, router, http.MethodGet, "/", nil, webtest.Faculty)
	assert.Equal(t, "/dashboard/faculty", res.Header().Get("Location"))
}
