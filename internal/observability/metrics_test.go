package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	metrics := NewMetrics()
	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Get("/curriculum/{id}/pdf", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	r.Get("/dashboard/student", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, target := range []string{"/curriculum/1/pdf", "/curriculum/7/pdf", "/dashboard/student", "/no/such/page"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	body := scrape(t, metrics)
	assert.Contains(t, body, `portal_http_requests_total{code="503",route="/curriculum/{id}/pdf"} 2`)
	assert.Contains(t, body, `portal_http_requests_total{code="200",route="/dashboard/student"} 1`)
	assert.Contains(t, body, `portal_http_request_duration_seconds_bucket{route="/dashboard/student"`)
	assert.NotContains(t, body, `route="/curriculum/1/pdf"`, "ids never become label values")
}

func TestMiddlewareWithoutRouteContext(t *testing.T) {
	metrics := NewMetrics()
	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Contains(t, scrape(t, metrics), `portal_http_requests_total{code="200",route="unknown"} 1`)
}

func TestJobMetricsShareTheRegistry(t *testing.T) {
	metrics := NewMetrics()
	jobs := metrics.Jobs()
	require.NotNil(t, jobs)

	require.NoError(t, jobs.Track("calendar:digest").End(nil))
	err := errors.New("smtp down")
	assert.Equal(t, err, jobs.Track("mail:send").End(err))
	jobs.AddMails("digest", 3)
	jobs.AddMails("single", 0)

	body := scrape(t, metrics)
	assert.Contains(t, body, `portal_jobs_total{job="calendar:digest",status="success"} 1`)
	assert.Contains(t, body, `portal_jobs_total{job="mail:send",status="failure"} 1`)
	assert.Contains(t, body, `portal_jobs_failures_total{job="mail:send"} 1`)
	assert.Contains(t, body, `portal_job_duration_seconds_count{job="calendar:digest"} 1`)
	assert.Contains(t, body, `portal_mails_total{kind="digest"} 3`)
	assert.NotContains(t, body, `kind="single"`)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	rec := httptest.NewRecorder()
	metrics.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	assert.Nil(t, metrics.Jobs())
	metrics.Jobs().AddMails("reset", 1)
	assert.NoError(t, metrics.Jobs().Track("mail:send").End(nil))
}
