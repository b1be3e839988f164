package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/application/session"
	"storefront/internal/domain/user"
)

type staticProvider struct {
	states chan session.AuthState
	uid    string
}

func newStaticProvider(uid string) *staticProvider {
	return &staticProvider{states: make(chan session.AuthState, 1), uid: uid}
}

func (p *staticProvider) AuthStates() <-chan session.AuthState { return p.states }
func (p *staticProvider) SignInAnonymously(ctx context.Context) (string, error) {
	return p.uid, nil
}
func (p *staticProvider) SignInWithCustomToken(ctx context.Context, token string) (string, error) {
	return p.uid, nil
}
func (p *staticProvider) SignInWithPassword(ctx context.Context, email, password string) (string, error) {
	return p.uid, nil
}
func (p *staticProvider) SignUp(ctx context.Context, email, password string) (string, error) {
	return p.uid, nil
}
func (p *staticProvider) SignOut(ctx context.Context) error { return nil }

type staticUserRepo struct {
	role user.Role
}

func (r *staticUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return user.User{ID: id, Role: r.role}, nil
}
func (r *staticUserRepo) EnsureRole(ctx context.Context, id, email string, role user.Role) error {
	return nil
}
func (r *staticUserRepo) List(ctx context.Context, limit int) ([]user.User, error) {
	return nil, nil
}

// sessionWithRole builds a session resolved to the given role via an
// interactive login against static fakes.
func sessionWithRole(t *testing.T, role user.Role) *session.Session {
	t.Helper()
	s := session.New(newStaticProvider("uid-1"), &staticUserRepo{role: role})
	if _, err := s.Login(context.Background(), "a@b.c", "secret123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return s
}

func TestRoleGuard(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		session    *session.Session
		allowed    []user.Role
		wantStatus int
	}{
		{
			name:       "admin allowed on admin route",
			session:    sessionWithRole(t, user.RoleAdmin),
			allowed:    []user.Role{user.RoleAdmin},
			wantStatus: http.StatusOK,
		},
		{
			name:       "customer denied on admin route",
			session:    sessionWithRole(t, user.RoleCustomer),
			allowed:    []user.Role{user.RoleAdmin},
			wantStatus: http.StatusSeeOther,
		},
		{
			name:       "unresolved session denied",
			session:    session.New(newStaticProvider("uid-1"), &staticUserRepo{}),
			allowed:    []user.Role{user.RoleAdmin, user.RoleCustomer},
			wantStatus: http.StatusSeeOther,
		},
		{
			name:       "nil session denied",
			session:    nil,
			allowed:    []user.Role{user.RoleAdmin},
			wantStatus: http.StatusSeeOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := &RoleGuard{Session: tt.session, Allowed: tt.allowed}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)

			guard.Handler(okHandler).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusSeeOther {
				if loc := rec.Header().Get("Location"); loc != user.DefaultDenyRedirect {
					t.Errorf("redirect location = %q, want %q", loc, user.DefaultDenyRedirect)
				}
			}
		})
	}
}

func TestRoleGuardReEvaluatesPerRequest(t *testing.T) {
	s := sessionWithRole(t, user.RoleAdmin)
	guard := &RoleGuard{Session: s, Allowed: []user.Role{user.RoleAdmin}}
	h := guard.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("pre-logout status = %d, want 200", rec.Code)
	}

	// Logout reverts the role; the very next request must be denied.
	s.Logout(context.Background())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
	if rec.Code != http.StatusSeeOther {
		t.Errorf("post-logout status = %d, want 303", rec.Code)
	}
}
