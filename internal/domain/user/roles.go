package user

// DefaultDenyRedirect is the public landing surface an unauthorized
// navigation is sent back to. Denial is a redirect, never an error page.
const DefaultDenyRedirect = "/"

// Decision is the outcome of a route authorization check.
type Decision struct {
	Allow      bool
	RedirectTo string // set on Deny
}

// CanAccess decides render-vs-redirect for a requested capability set.
//
// RoleUnknown is ALWAYS denied (fail-closed): it is never treated as admin
// nor as customer. The absence-of-role-defaults-to-customer policy applies
// only to resolved sessions (ParseRole), never here.
//
// Callers must re-evaluate on every navigation attempt; the role can change
// mid-session (login, logout) and this result must not be cached.
func CanAccess(role Role, allowed []Role) Decision {
	if role == RoleUnknown || role == "" {
		return Decision{Allow: false, RedirectTo: DefaultDenyRedirect}
	}
	for _, a := range allowed {
		if role == a {
			return Decision{Allow: true}
		}
	}
	return Decision{Allow: false, RedirectTo: DefaultDenyRedirect}
}
