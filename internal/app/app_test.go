package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svit-college/curriculum-portal/internal/observability"
	"github.com/svit-college/curriculum-portal/internal/rbac"
	"github.com/svit-college/curriculum-portal/internal/shared"
	"github.com/svit-college/curriculum-portal/internal/view"
)

type stubRenderer struct{}

func (stubRenderer) RenderHTML(context.Context, []byte) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

func TestLoadConfigValidates(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("STORE_DRIVER", "memory")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.UpcomingWindow)
	assert.Equal(t, 30*time.Second, cfg.GotenbergTimeout)
	assert.False(t, cfg.IsProduction())

	t.Setenv("STORE_DRIVER", "sqlite")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, `unknown store driver "sqlite"`)

	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("UPCOMING_WINDOW", "0")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestNewStoresRequiresPoolForPostgres(t *testing.T) {
	_, err := NewStores(&Config{StoreDriver: StorePostgres}, nil, nil)
	assert.Error(t, err)
}

type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func (c *client) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return rec
}

var csrfField = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

func newTestRouter(t *testing.T) *client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &Config{StoreDriver: StoreMemory, UpcomingWindow: 30, RateLimit: 1000, AppRequestTimeout: 5 * time.Second}
	logger := newLogger(&strings.Builder{}, cfg)
	stores, err := NewStores(cfg, nil, logger)
	require.NoError(t, err)
	templates, err := view.NewEngine()
	require.NoError(t, err)

	router := NewRouter(RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		SessionManager: shared.NewSessionManager(rdb, "portal_session", time.Hour, false),
		CSRFManager:    shared.NewCSRFManager("secret"),
		RBACMiddleware: rbac.Middleware{Logger: logger},
		Services:       NewServices(cfg, stores, nil, logger),
		PDFRenderer:    stubRenderer{},
		Metrics:        observability.NewMetrics(),
	})
	return &client{t: t, handler: router, cookies: map[string]*http.Cookie{}}
}

func TestRouterLoginFlow(t *testing.T) {
	c := newTestRouter(t)

	res := c.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/login", res.Header().Get("Location"))

	res = c.do(http.MethodGet, "/login", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "DENY", res.Header().Get("X-Frame-Options"))
	match := csrfField.FindStringSubmatch(res.Body.String())
	require.Len(t, match, 2)
	token := match[1]

	form := url.Values{"email": {"Student@SVIT.edu"}, "password": {"password123"}}
	res = c.do(http.MethodPost, "/login", form)
	assert.Equal(t, http.StatusForbidden, res.Code)

	form.Set(shared.CSRFFormField, token)
	res = c.do(http.MethodPost, "/login", form)
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/dashboard/student", res.Header().Get("Location"))

	res = c.do(http.MethodGet, "/dashboard/student", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "John Doe")

	res = c.do(http.MethodGet, "/admin/access/", nil)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/dashboard/student", res.Header().Get("Location"))

	res = c.do(http.MethodGet, "/curriculum/1/pdf", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "application/pdf", res.Header().Get("Content-Type"))
}

func TestRouterOperationalEndpoints(t *testing.T) {
	c := newTestRouter(t)

	res := c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"status":"ok"}`, res.Body.String())

	res = c.do(http.MethodGet, "/no/such/page", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Contains(t, res.Body.String(), "does not exist")

	res = c.do(http.MethodGet, "/static/css/app.css", nil)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "public, max-age=3600", res.Header().Get("Cache-Control"))

	res = c.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `portal_http_requests_total{code="200",route="/healthz"} 1`)
}
