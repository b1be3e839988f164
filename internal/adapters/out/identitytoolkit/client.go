package identitytoolkit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"storefront/internal/application/session"
)

// DefaultEndpoint is the Firebase Identity Toolkit REST base URL.
const DefaultEndpoint = "https://identitytoolkit.googleapis.com/v1"

const defaultTimeout = 15 * time.Second

// Client implements session.Provider against the Identity Toolkit REST API
// (anonymous sign-in, custom-token sign-in, email/password sign-in and
// sign-up). Each completed sign-in/sign-out is published on the auth-state
// stream consumed by the session.
type Client struct {
	apiKey   string
	endpoint string
	http     *http.Client

	mu      sync.Mutex
	idToken string // last issued ID token (for accounts:lookup)

	states chan session.AuthState
}

type Option func(*Client)

// WithEndpoint overrides the API base URL (tests, emulator).
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if e := strings.TrimRight(strings.TrimSpace(endpoint), "/"); e != "" {
			c.endpoint = e
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   strings.TrimSpace(apiKey),
		endpoint: DefaultEndpoint,
		http:     &http.Client{Timeout: defaultTimeout},
		states:   make(chan session.AuthState, 16),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) AuthStates() <-chan session.AuthState {
	return c.states
}

// SignInAnonymously calls accounts:signUp with no credentials.
// OPERATION_NOT_ALLOWED (anonymous auth disabled) maps to the configuration
// taxonomy; callers treat bootstrap failures as best-effort.
func (c *Client) SignInAnonymously(ctx context.Context) (string, error) {
	var resp authResponse
	err := c.post(ctx, "accounts:signUp", map[string]any{
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return "", mapSignUpError(err)
	}
	return c.completeSignIn(ctx, resp)
}

// SignInWithCustomToken exchanges the externally supplied bootstrap credential.
func (c *Client) SignInWithCustomToken(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", session.NewAuthError(session.CodeInvalidCredentials, errors.New("identitytoolkit: empty custom token"))
	}

	var resp authResponse
	err := c.post(ctx, "accounts:signInWithCustomToken", map[string]any{
		"token":             token,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return "", mapSignInError(err)
	}
	return c.completeSignIn(ctx, resp)
}

// SignInWithPassword performs the interactive email/password sign-in.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (string, error) {
	var resp authResponse
	err := c.post(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             strings.TrimSpace(email),
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return "", mapSignInError(err)
	}
	return c.completeSignIn(ctx, resp)
}

// SignUp registers a new email/password account.
func (c *Client) SignUp(ctx context.Context, email, password string) (string, error) {
	var resp authResponse
	err := c.post(ctx, "accounts:signUp", map[string]any{
		"email":             strings.TrimSpace(email),
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return "", mapSignUpError(err)
	}
	return c.completeSignIn(ctx, resp)
}

// SignOut discards the held token and publishes the signed-out state.
// The REST API is stateless; there is nothing to revoke server-side here.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	c.idToken = ""
	c.mu.Unlock()
	c.emit(session.AuthState{})
	return nil
}

// completeSignIn resolves the UID (accounts:lookup when the response carries
// no localId, e.g. custom-token exchange), stores the token, and publishes
// the new auth state.
func (c *Client) completeSignIn(ctx context.Context, resp authResponse) (string, error) {
	uid := strings.TrimSpace(resp.LocalID)
	if uid == "" && resp.IDToken != "" {
		looked, err := c.lookupUID(ctx, resp.IDToken)
		if err != nil {
			return "", mapSignInError(err)
		}
		uid = looked
	}
	if uid == "" {
		return "", session.NewAuthError(session.CodeUnknown, errors.New("identitytoolkit: no localId in response"))
	}

	c.mu.Lock()
	c.idToken = resp.IDToken
	c.mu.Unlock()

	c.emit(session.AuthState{UserID: uid})
	return uid, nil
}

func (c *Client) lookupUID(ctx context.Context, idToken string) (string, error) {
	var resp struct {
		Users []struct {
			LocalID string `json:"localId"`
		} `json:"users"`
	}
	if err := c.post(ctx, "accounts:lookup", map[string]any{"idToken": idToken}, &resp); err != nil {
		return "", err
	}
	if len(resp.Users) == 0 {
		return "", errors.New("identitytoolkit: lookup returned no users")
	}
	return strings.TrimSpace(resp.Users[0].LocalID), nil
}

func (c *Client) emit(st session.AuthState) {
	select {
	case c.states <- st:
	default:
		log.Printf("[identitytoolkit] WARN: auth-state channel full, dropping state uid=%q", st.UserID)
	}
}

// -----------------------------------------
// transport
// -----------------------------------------

type authResponse struct {
	LocalID      string `json:"localId"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	Email        string `json:"email"`
}

// apiError is the raw REST failure before taxonomy mapping.
type apiError struct {
	StatusCode int
	Code       string // e.g. "EMAIL_NOT_FOUND", "WEAK_PASSWORD"
	transport  error
}

func (e *apiError) Error() string {
	if e.transport != nil {
		return fmt.Sprintf("identitytoolkit: transport: %v", e.transport)
	}
	return fmt.Sprintf("identitytoolkit: %s (status=%d)", e.Code, e.StatusCode)
}

func (c *Client) post(ctx context.Context, method string, body any, out any) error {
	if c.apiKey == "" {
		return &apiError{Code: "CONFIGURATION_NOT_FOUND"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return &apiError{transport: err}
	}

	url := fmt.Sprintf("%s/%s?key=%s", c.endpoint, method, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &apiError{transport: err}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return &apiError{transport: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return &apiError{transport: err}
	}

	if res.StatusCode >= 400 {
		return &apiError{StatusCode: res.StatusCode, Code: parseErrorCode(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &apiError{transport: err}
		}
	}
	return nil
}

// parseErrorCode extracts the upper-case error code from the REST error body.
// Messages may carry a detail suffix ("WEAK_PASSWORD : Password should ...").
func parseErrorCode(data []byte) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	msg := strings.TrimSpace(body.Error.Message)
	if i := strings.IndexAny(msg, " :"); i > 0 {
		msg = msg[:i]
	}
	return msg
}

// -----------------------------------------
// taxonomy mapping
// -----------------------------------------

// mapSignInError mirrors the sign-in error policy: a malformed email is
// indistinguishable from bad credentials on this path.
func mapSignInError(err error) error {
	ae, ok := err.(*apiError)
	if !ok {
		return session.NewAuthError(session.CodeUnknown, err)
	}
	if ae.transport != nil {
		return session.NewAuthError(session.CodeNetworkError, ae)
	}

	switch ae.Code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL":
		return session.NewAuthError(session.CodeInvalidCredentials, ae)
	case "USER_DISABLED":
		return session.NewAuthError(session.CodeAccountDisabled, ae)
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return session.NewAuthError(session.CodeRateLimited, ae)
	case "OPERATION_NOT_ALLOWED", "CONFIGURATION_NOT_FOUND":
		return session.NewAuthError(session.CodeNotConfigured, ae)
	default:
		return session.NewAuthError(session.CodeUnknown, ae)
	}
}

// mapSignUpError mirrors the registration error policy, where a malformed
// email IS its own user-facing failure.
func mapSignUpError(err error) error {
	ae, ok := err.(*apiError)
	if !ok {
		return session.NewAuthError(session.CodeUnknown, err)
	}
	if ae.transport != nil {
		return session.NewAuthError(session.CodeNetworkError, ae)
	}

	switch ae.Code {
	case "EMAIL_EXISTS":
		return session.NewAuthError(session.CodeEmailInUse, ae)
	case "WEAK_PASSWORD":
		return session.NewAuthError(session.CodeWeakPassword, ae)
	case "INVALID_EMAIL":
		return session.NewAuthError(session.CodeInvalidEmail, ae)
	case "OPERATION_NOT_ALLOWED", "ADMIN_ONLY_OPERATION", "CONFIGURATION_NOT_FOUND":
		return session.NewAuthError(session.CodeNotConfigured, ae)
	default:
		return session.NewAuthError(session.CodeUnknown, ae)
	}
}
