package session

import "context"

// AuthState is one firing of the identity provider's auth-state stream.
// An empty UserID means signed out.
type AuthState struct {
	UserID string
}

// Provider wraps the external identity provider.
//
// AuthStates is the single source of truth for the current identity: it fires
// after every completed sign-in/sign-out and may fire multiple times over the
// session's life. Sign-in methods return the provider UID on success; failures
// are *AuthError values carrying the user-facing taxonomy.
type Provider interface {
	AuthStates() <-chan AuthState

	SignInAnonymously(ctx context.Context) (string, error)
	SignInWithCustomToken(ctx context.Context, token string) (string, error)
	SignInWithPassword(ctx context.Context, email, password string) (string, error)
	SignUp(ctx context.Context, email, password string) (string, error)
	SignOut(ctx context.Context) error
}

// WelcomeMailer is an optional outbound port: a welcome email after
// successful registration. Failures are logged and absorbed.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, toEmail string) error
}
