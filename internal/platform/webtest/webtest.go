// Package webtest builds session-backed requests for handler tests.
package webtest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/svit-college/curriculum-portal/internal/rbac"
	"github.com/svit-college/curriculum-portal/internal/shared"
	"github.com/svit-college/curriculum-portal/internal/view"
)

// Env carries the collaborators every handler needs.
type Env struct {
	Logger    *slog.Logger
	Sessions  *shared.SessionManager
	CSRF      *shared.CSRFManager
	Templates *view.Engine
	RBAC      rbac.Middleware
	Redis     *miniredis.Miniredis
}

// NewEnv starts a miniredis-backed session store and parses templates.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	templates, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Env{
		Logger:    logger,
		Sessions:  shared.NewSessionManager(client, "test_session", time.Hour, false),
		CSRF:      shared.NewCSRFManager("csrfsecret"),
		Templates: templates,
		RBAC:      rbac.Middleware{Logger: logger},
		Redis:     mr,
	}
}

// Response is a recorded response plus the session it ran with.
type Response struct {
	*httptest.ResponseRecorder
	Session *shared.Session
}

// Do serves one request through router with a fresh session holding p.
// Form values are sent urlencoded when non-nil.
func (e *Env) Do(t *testing.T, router http.Handler, method, target string, form url.Values, p *rbac.Principal, headers ...string) Response {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	sess, err := e.Sessions.Load(context.Background(), req)
	require.NoError(t, err)
	rbac.SavePrincipal(sess, p)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return Response{ResponseRecorder: rec, Session: sess}
}

// CommitOnWrite wraps w so sess is saved just before the response header is
// written, the way the portal's session middleware does. A recorder freezes
// its headers at WriteHeader, so committing afterwards loses Set-Cookie.
func (e *Env) CommitOnWrite(t *testing.T, w http.ResponseWriter, r *http.Request, sess *shared.Session) http.ResponseWriter {
	return &committingRecorder{ResponseWriter: w, t: t, req: r, sess: sess, sessions: e.Sessions}
}

type committingRecorder struct {
	http.ResponseWriter
	t         *testing.T
	req       *http.Request
	sess      *shared.Session
	sessions  *shared.SessionManager
	committed bool
}

func (w *committingRecorder) WriteHeader(status int) {
	if !w.committed {
		w.committed = true
		require.NoError(w.t, w.sessions.Commit(w.req.Context(), w.ResponseWriter, w.req, w.sess))
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *committingRecorder) Write(data []byte) (int, error) {
	if !w.committed {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

// Router mounts a handler's routes under prefix.
func Router(prefix string, mount func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Route(prefix, mount)
	return r
}

// Flash pops the next flash message from the response session.
func (r Response) Flash() *shared.FlashMessage {
	if r.Session == nil {
		return nil
	}
	return r.Session.PopFlash()
}

// Principals used across handler tests.
var (
	Student = &rbac.Principal{ID: 1, DisplayName: "John Doe", Email: "student@svit.edu", Role: rbac.RoleStudent}
	Faculty = &rbac.Principal{ID: 2, DisplayName: "Dr. Jane Smith", Email: "faculty@svit.edu", Role: rbac.RoleFaculty}
	Admin   = &rbac.Principal{ID: 3, DisplayName: "Admin User", Email: "admin@svit.edu", Role: rbac.RoleAdmin}
)
