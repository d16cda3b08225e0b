package rbac

import (
	"log/slog"
	"net/http"

	"github.com/svit-college/curriculum-portal/internal/shared"
)

// Middleware wires screen authorization into HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// RequireScreen authorizes every request against s. Denied requests are
// redirected with 303; admitted ones carry the principal in their context.
func (m Middleware) RequireScreen(s Screen) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := LoadPrincipal(shared.SessionFromContext(r.Context()))
			decision := Authorize(p, s)
			if !decision.Allowed() {
				if m.Logger != nil {
					m.Logger.Debug("screen denied",
						slog.String("screen", s.Name),
						slog.String("path", r.URL.Path),
						slog.String("decision", decision.String()),
					)
				}
				http.Redirect(w, r, decision.Target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
		})
	}
}

// RedirectAuthenticated sends signed-in principals away from guest-only
// screens such as login and registration.
func (m Middleware) RedirectAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := LoadPrincipal(shared.SessionFromContext(r.Context()))
			if p != nil && p.Role.Valid() {
				http.Redirect(w, r, DashboardFor(p.Role), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Identify attaches the session principal to the request context without
// gating. Used on public screens that still show navigation for signed-in users.
func (m Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := LoadPrincipal(shared.SessionFromContext(r.Context()))
		if p == nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
	})
}
