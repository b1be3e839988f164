package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"storefront/internal/application/session"
)

// AuthHandler serves the login/register/session endpoints.
//
// Login and register are gated on session readiness: until the identity
// protocol has completed its first resolution the entry points answer 503
// ("services not ready") instead of attempting credentials.
//
// Routes:
//   - GET  /auth/session   current (userId, role, ready) tuple
//   - POST /auth/login     {email, password}
//   - POST /auth/register  {email, password, confirmPassword}
//   - POST /auth/logout
type AuthHandler struct {
	Session *session.Session
}

func NewAuthHandler(s *session.Session) *AuthHandler {
	return &AuthHandler{Session: s}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Session == nil {
		writeErr(w, http.StatusServiceUnavailable, "auth handler is not configured")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/auth/session"):
		writeJSON(w, http.StatusOK, h.Session.Snapshot())

	case r.Method == http.MethodPost && strings.HasSuffix(path, "/auth/login"):
		h.handleLogin(w, r)

	case r.Method == http.MethodPost && strings.HasSuffix(path, "/auth/register"):
		h.handleRegister(w, r)

	case r.Method == http.MethodPost && strings.HasSuffix(path, "/auth/logout"):
		h.Session.Logout(r.Context())
		writeJSON(w, http.StatusOK, h.Session.Snapshot())

	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.Session.Snapshot().Ready {
		writeErr(w, http.StatusServiceUnavailable, "services not ready")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	role, err := h.Session.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthErr(w, err)
		return
	}

	snap := h.Session.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"userId": snap.UserID,
		"role":   role,
	})
}

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !h.Session.Snapshot().Ready {
		writeErr(w, http.StatusServiceUnavailable, "services not ready")
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	role, err := h.Session.Register(r.Context(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		writeAuthErr(w, err)
		return
	}

	snap := h.Session.Snapshot()
	writeJSON(w, http.StatusCreated, map[string]any{
		"userId": snap.UserID,
		"role":   role,
	})
}

// writeAuthErr maps the auth taxonomy to HTTP statuses; the message is the
// canonical inline-display text.
func writeAuthErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch session.CodeOf(err) {
	case session.CodePasswordMismatch, session.CodeWeakPassword, session.CodeInvalidEmail:
		status = http.StatusBadRequest
	case session.CodeInvalidCredentials:
		status = http.StatusUnauthorized
	case session.CodeAccountDisabled:
		status = http.StatusForbidden
	case session.CodeEmailInUse:
		status = http.StatusConflict
	case session.CodeRateLimited:
		status = http.StatusTooManyRequests
	case session.CodeNetworkError:
		status = http.StatusBadGateway
	case session.CodeNotConfigured, session.CodeServiceUnavailable:
		status = http.StatusServiceUnavailable
	}
	writeErr(w, status, err.Error())
}
