package rbac

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/svit-college/curriculum-portal/internal/shared"
	"github.com/svit-college/curriculum-portal/internal/view"
)

const principalSessionKey = "principal"

// LoadPrincipal returns the principal held by sess, or nil when nobody is
// signed in or the stored value cannot be decoded.
func LoadPrincipal(sess *shared.Session) *Principal {
	if sess == nil || sess.User() == "" {
		return nil
	}
	raw := sess.Get(principalSessionKey)
	if raw == "" {
		return nil
	}
	var p Principal
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil
	}
	if strconv.FormatInt(p.ID, 10) != sess.User() {
		return nil
	}
	return &p
}

// SavePrincipal stores p in sess. A nil principal clears the session identity.
func SavePrincipal(sess *shared.Session, p *Principal) {
	if sess == nil {
		return
	}
	if p == nil {
		sess.SetUser("")
		sess.Delete(principalSessionKey)
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	sess.SetUser(strconv.FormatInt(p.ID, 10))
	sess.Set(principalSessionKey, string(data))
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in ctx.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the principal admitted by RequireScreen.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// ViewUser converts the request principal into navigation data for templates.
func ViewUser(ctx context.Context) *view.User {
	p := PrincipalFromContext(ctx)
	if p == nil {
		return nil
	}
	return &view.User{
		ID:        p.ID,
		Name:      p.DisplayName,
		Email:     p.Email,
		Role:      string(p.Role),
		Dashboard: DashboardFor(p.Role),
	}
}
