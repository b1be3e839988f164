package identitytoolkit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/application/session"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithEndpoint(srv.URL), WithHTTPClient(srv.Client()))
}

func errorBody(code string) string {
	return fmt.Sprintf(`{"error":{"code":400,"message":%q}}`, code)
}

func TestSignInWithPasswordSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "accounts:signInWithPassword") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["email"] != "shopper@example.com" {
			t.Errorf("email = %v", req["email"])
		}
		_, _ = w.Write([]byte(`{"localId":"uid-7","idToken":"tok-7"}`))
	})

	uid, err := c.SignInWithPassword(context.Background(), "shopper@example.com", "secret123")
	if err != nil {
		t.Fatalf("SignInWithPassword() error = %v", err)
	}
	if uid != "uid-7" {
		t.Errorf("uid = %q, want uid-7", uid)
	}

	// A completed sign-in publishes the new auth state.
	select {
	case st := <-c.AuthStates():
		if st.UserID != "uid-7" {
			t.Errorf("published uid = %q, want uid-7", st.UserID)
		}
	case <-time.After(time.Second):
		t.Fatal("no auth state published")
	}
}

func TestSignInErrorMapping(t *testing.T) {
	tests := []struct {
		apiCode string
		want    session.Code
	}{
		{apiCode: "EMAIL_NOT_FOUND", want: session.CodeInvalidCredentials},
		{apiCode: "INVALID_PASSWORD", want: session.CodeInvalidCredentials},
		{apiCode: "INVALID_LOGIN_CREDENTIALS", want: session.CodeInvalidCredentials},
		{apiCode: "INVALID_EMAIL", want: session.CodeInvalidCredentials},
		{apiCode: "USER_DISABLED", want: session.CodeAccountDisabled},
		{apiCode: "TOO_MANY_ATTEMPTS_TRY_LATER", want: session.CodeRateLimited},
		{apiCode: "OPERATION_NOT_ALLOWED", want: session.CodeNotConfigured},
		{apiCode: "SOMETHING_ELSE", want: session.CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.apiCode, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(errorBody(tt.apiCode)))
			})

			_, err := c.SignInWithPassword(context.Background(), "a@b.c", "pw")
			if got := session.CodeOf(err); got != tt.want {
				t.Errorf("CodeOf(err) = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSignUpErrorMapping(t *testing.T) {
	tests := []struct {
		apiCode string
		want    session.Code
	}{
		{apiCode: "EMAIL_EXISTS", want: session.CodeEmailInUse},
		{apiCode: "WEAK_PASSWORD", want: session.CodeWeakPassword},
		{apiCode: "INVALID_EMAIL", want: session.CodeInvalidEmail},
		{apiCode: "ADMIN_ONLY_OPERATION", want: session.CodeNotConfigured},
		{apiCode: "CONFIGURATION_NOT_FOUND", want: session.CodeNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.apiCode, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(errorBody(tt.apiCode)))
			})

			_, err := c.SignUp(context.Background(), "a@b.c", "pw")
			if got := session.CodeOf(err); got != tt.want {
				t.Errorf("CodeOf(err) = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorCodeDetailSuffixIsStripped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(errorBody("WEAK_PASSWORD : Password should be at least 6 characters")))
	})

	_, err := c.SignUp(context.Background(), "a@b.c", "12345")
	if got := session.CodeOf(err); got != session.CodeWeakPassword {
		t.Errorf("CodeOf(err) = %q, want weak_password", got)
	}
}

func TestCustomTokenSignInFallsBackToLookup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "accounts:signInWithCustomToken"):
			// No localId in the exchange response.
			_, _ = w.Write([]byte(`{"idToken":"tok-ct"}`))
		case strings.Contains(r.URL.Path, "accounts:lookup"):
			_, _ = w.Write([]byte(`{"users":[{"localId":"uid-ct"}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	uid, err := c.SignInWithCustomToken(context.Background(), "custom-token")
	if err != nil {
		t.Fatalf("SignInWithCustomToken() error = %v", err)
	}
	if uid != "uid-ct" {
		t.Errorf("uid = %q, want uid-ct", uid)
	}
}

func TestEmptyCustomTokenRejectedLocally(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.SignInWithCustomToken(context.Background(), "   ")
	if session.CodeOf(err) != session.CodeInvalidCredentials {
		t.Errorf("CodeOf(err) = %q, want invalid_credentials", session.CodeOf(err))
	}
	if called {
		t.Error("empty token must not reach the API")
	}
}

func TestMissingAPIKeyReportsNotConfigured(t *testing.T) {
	c := NewClient("")

	_, err := c.SignInAnonymously(context.Background())
	if got := session.CodeOf(err); got != session.CodeNotConfigured {
		t.Errorf("CodeOf(err) = %q, want auth_not_configured", got)
	}
}

func TestTransportFailureMapsToNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // connection refused from here on

	c := NewClient("test-key", WithEndpoint(url))
	_, err := c.SignInWithPassword(context.Background(), "a@b.c", "pw")
	if got := session.CodeOf(err); got != session.CodeNetworkError {
		t.Errorf("CodeOf(err) = %q, want network_error", got)
	}
}

func TestSignOutPublishesSignedOutState(t *testing.T) {
	c := NewClient("test-key")

	if err := c.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}

	select {
	case st := <-c.AuthStates():
		if st.UserID != "" {
			t.Errorf("published uid = %q, want empty", st.UserID)
		}
	case <-time.After(time.Second):
		t.Fatal("no auth state published")
	}
}
