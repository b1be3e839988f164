package handlers

import (
	"net/http"
	"strings"

	udom "storefront/internal/domain/user"
)

// AdminHandler serves the admin shell's list screens. It is mounted behind
// the role-guard middleware; the handler itself does no authorization.
//
// Routes:
//   - GET /admin/users
type AdminHandler struct {
	Users udom.Repository
}

func NewAdminHandler(users udom.Repository) *AdminHandler {
	return &AdminHandler{Users: users}
}

func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Users == nil {
		writeErr(w, http.StatusServiceUnavailable, "admin handler is not configured")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")
	if r.Method == http.MethodGet && strings.HasSuffix(path, "/admin/users") {
		users, err := h.Users.List(r.Context(), 100)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "user list failed")
			return
		}
		if users == nil {
			users = []udom.User{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": users})
		return
	}

	writeErr(w, http.StatusNotFound, "not found")
}
