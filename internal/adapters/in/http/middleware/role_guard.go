package middleware

import (
	"log"
	"net/http"
	"strings"

	"storefront/internal/application/session"
	udom "storefront/internal/domain/user"
)

// RoleGuard gates a subtree on the session role. The decision is taken
// fresh from the live session tuple on every request; the role changes
// mid-session on login and logout, so it must not be cached.
//
// Denial redirects to the public landing surface, never an error page.
// An unknown role (resolution still in flight) is always denied.
type RoleGuard struct {
	Session    *session.Session
	Allowed    []udom.Role
	RedirectTo string // defaults to user.DefaultDenyRedirect
}

func (g *RoleGuard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := udom.RoleUnknown
		if g.Session != nil {
			role = g.Session.Snapshot().Role
		}

		decision := udom.CanAccess(role, g.Allowed)
		if decision.Allow {
			next.ServeHTTP(w, r)
			return
		}

		target := strings.TrimSpace(g.RedirectTo)
		if target == "" {
			target = decision.RedirectTo
		}
		if target == "" {
			target = udom.DefaultDenyRedirect
		}

		log.Printf("[role_guard] deny role=%s path=%s -> redirect %s", role, r.URL.Path, target)
		http.Redirect(w, r, target, http.StatusSeeOther)
	})
}
