package rbac

// LoginPath is where unauthenticated principals are sent.
const LoginPath = "/login"

// Authorize decides whether p may open s. It has no side effects and must be
// evaluated on every request since the session principal can change between
// calls.
func Authorize(p *Principal, s Screen) Decision {
	if p == nil {
		return Redirect(LoginPath)
	}
	if !s.Permits(p.Role) {
		return Redirect(DashboardFor(p.Role))
	}
	return Allow()
}

// DashboardFor maps a role to its home dashboard. Unrecognised roles are
// treated like an anonymous visitor.
func DashboardFor(role Role) string {
	switch role {
	case RoleStudent:
		return "/dashboard/student"
	case RoleFaculty:
		return "/dashboard/faculty"
	case RoleAdmin:
		return "/dashboard/admin"
	default:
		return LoginPath
	}
}
