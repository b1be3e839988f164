package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/application/session"
	"storefront/internal/domain/user"
)

type scriptedProvider struct {
	states chan session.AuthState

	anonUID     string
	passwordUID string
	passwordErr error
	signUpUID   string
	signUpErr   error
}

func newScriptedProvider() *scriptedProvider {
	return &scriptedProvider{states: make(chan session.AuthState, 4)}
}

func (p *scriptedProvider) AuthStates() <-chan session.AuthState { return p.states }

func (p *scriptedProvider) SignInAnonymously(ctx context.Context) (string, error) {
	p.states <- session.AuthState{UserID: p.anonUID}
	return p.anonUID, nil
}

func (p *scriptedProvider) SignInWithCustomToken(ctx context.Context, token string) (string, error) {
	return "", session.NewAuthError(session.CodeInvalidCredentials, nil)
}

func (p *scriptedProvider) SignInWithPassword(ctx context.Context, email, password string) (string, error) {
	if p.passwordErr != nil {
		return "", p.passwordErr
	}
	return p.passwordUID, nil
}

func (p *scriptedProvider) SignUp(ctx context.Context, email, password string) (string, error) {
	if p.signUpErr != nil {
		return "", p.signUpErr
	}
	return p.signUpUID, nil
}

func (p *scriptedProvider) SignOut(ctx context.Context) error {
	p.states <- session.AuthState{}
	return nil
}

type memUserRepo struct {
	docs map[string]user.User
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{docs: map[string]user.User{}} }

func (r *memUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := r.docs[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) EnsureRole(ctx context.Context, id, email string, role user.Role) error {
	u := r.docs[id]
	u.ID = id
	u.Role = role
	if email != "" {
		u.Email = email
	}
	r.docs[id] = u
	return nil
}

func (r *memUserRepo) List(ctx context.Context, limit int) ([]user.User, error) {
	out := make([]user.User, 0, len(r.docs))
	for _, u := range r.docs {
		out = append(out, u)
	}
	return out, nil
}

// readySession boots a session through the anonymous bootstrap and waits for
// the first resolution to complete.
func readySession(t *testing.T, p *scriptedProvider, repo *memUserRepo) *session.Session {
	t.Helper()
	if p.anonUID == "" {
		p.anonUID = "anon-1"
	}
	s := session.New(p, repo)
	s.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Snapshot().Ready {
			return s
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("session never became ready")
	return nil
}

func doAuth(t *testing.T, h *AuthHandler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestAuthHandlerSessionEndpoint(t *testing.T) {
	s := readySession(t, newScriptedProvider(), newMemUserRepo())
	h := NewAuthHandler(s)

	rec := doAuth(t, h, http.MethodGet, "/auth/session", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var snap session.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !snap.Ready || snap.Role != user.RoleCustomer {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestAuthHandlerLoginGatedOnReadiness(t *testing.T) {
	// Session never started: not ready.
	s := session.New(newScriptedProvider(), newMemUserRepo())
	h := NewAuthHandler(s)

	rec := doAuth(t, h, http.MethodPost, "/auth/login", `{"email":"a@b.c","password":"pw"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 while not ready", rec.Code)
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	p := newScriptedProvider()
	p.passwordUID = "uid-9"
	repo := newMemUserRepo()
	repo.docs["uid-9"] = user.User{ID: "uid-9", Role: user.RoleAdmin}

	h := NewAuthHandler(readySession(t, p, repo))

	rec := doAuth(t, h, http.MethodPost, "/auth/login", `{"email":"admin@example.com","password":"secret123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["userId"] != "uid-9" || resp["role"] != "admin" {
		t.Errorf("response = %v", resp)
	}
}

func TestAuthHandlerErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		setup      func(p *scriptedProvider)
		wantStatus int
	}{
		{
			name:       "invalid credentials",
			path:       "/auth/login",
			body:       `{"email":"a@b.c","password":"bad"}`,
			setup:      func(p *scriptedProvider) { p.passwordErr = session.NewAuthError(session.CodeInvalidCredentials, nil) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "account disabled",
			path:       "/auth/login",
			body:       `{"email":"a@b.c","password":"pw"}`,
			setup:      func(p *scriptedProvider) { p.passwordErr = session.NewAuthError(session.CodeAccountDisabled, nil) },
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "rate limited",
			path:       "/auth/login",
			body:       `{"email":"a@b.c","password":"pw"}`,
			setup:      func(p *scriptedProvider) { p.passwordErr = session.NewAuthError(session.CodeRateLimited, nil) },
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "password mismatch",
			path:       "/auth/register",
			body:       `{"email":"a@b.c","password":"pw1","confirmPassword":"pw2"}`,
			setup:      func(p *scriptedProvider) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "email in use",
			path:       "/auth/register",
			body:       `{"email":"a@b.c","password":"pw","confirmPassword":"pw"}`,
			setup:      func(p *scriptedProvider) { p.signUpErr = session.NewAuthError(session.CodeEmailInUse, nil) },
			wantStatus: http.StatusConflict,
		},
		{
			name:       "network error",
			path:       "/auth/login",
			body:       `{"email":"a@b.c","password":"pw"}`,
			setup:      func(p *scriptedProvider) { p.passwordErr = session.NewAuthError(session.CodeNetworkError, nil) },
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newScriptedProvider()
			tt.setup(p)
			h := NewAuthHandler(readySession(t, p, newMemUserRepo()))

			rec := doAuth(t, h, http.MethodPost, tt.path, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body=%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestAuthHandlerRegisterAndLogout(t *testing.T) {
	p := newScriptedProvider()
	p.signUpUID = "uid-new"
	repo := newMemUserRepo()
	h := NewAuthHandler(readySession(t, p, repo))

	rec := doAuth(t, h, http.MethodPost, "/auth/register",
		`{"email":"new@example.com","password":"secret123","confirmPassword":"secret123"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["role"] != "customer" {
		t.Errorf("role = %q, want customer", resp["role"])
	}

	rec = doAuth(t, h, http.MethodPost, "/auth/logout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}

	var snap session.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.UserID != "" || snap.Role != user.RoleUnknown {
		t.Errorf("snapshot after logout = %+v", snap)
	}
	if !snap.Ready {
		t.Error("ready must stay true after logout")
	}
}
