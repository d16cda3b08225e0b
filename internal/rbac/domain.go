package rbac

import (
	"fmt"
	"strings"
)

// Role is the coarse capability group a principal belongs to.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// Roles lists every recognised role in display order.
var Roles = []Role{RoleStudent, RoleFaculty, RoleAdmin}

// ParseRole converts user input into a Role.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if !role.Valid() {
		return "", fmt.Errorf("rbac: unknown role %q", value)
	}
	return role, nil
}

// Valid reports whether r is one of the recognised roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// Principal describes the authenticated actor held by a session.
type Principal struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
}

// Screen is a navigable route gated by role. An empty AllowedRoles admits
// any authenticated principal.
type Screen struct {
	Name         string
	Path         string
	AllowedRoles []Role
}

// Permits reports whether role may open the screen, ignoring authentication.
func (s Screen) Permits(role Role) bool {
	if len(s.AllowedRoles) == 0 {
		return true
	}
	for _, allowed := range s.AllowedRoles {
		if allowed == role {
			return true
		}
	}
	return false
}

// DecisionKind enumerates authorization outcomes.
type DecisionKind int

const (
	DecisionAllow DecisionKind = iota
	DecisionRedirect
)

// Decision is the outcome of Authorize.
type Decision struct {
	Kind   DecisionKind
	Target string
}

// Allow returns the permitting decision.
func Allow() Decision { return Decision{Kind: DecisionAllow} }

// Redirect returns a decision sending the principal to target.
func Redirect(target string) Decision {
	return Decision{Kind: DecisionRedirect, Target: target}
}

// Allowed reports whether the decision admits the request.
func (d Decision) Allowed() bool { return d.Kind == DecisionAllow }

func (d Decision) String() string {
	switch d.Kind {
	case DecisionAllow:
		return "allow"
	case DecisionRedirect:
		return "redirect(" + d.Target + ")"
	default:
		return fmt.Sprintf("DecisionKind(%d)", int(d.Kind))
	}
}
