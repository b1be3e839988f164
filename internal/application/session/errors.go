package session

import "fmt"

// Code classifies interactive auth failures for inline display.
type Code string

const (
	CodeInvalidCredentials Code = "invalid_credentials"
	CodeAccountDisabled    Code = "account_disabled"
	CodeRateLimited        Code = "rate_limited"
	CodePasswordMismatch   Code = "password_mismatch"
	CodeEmailInUse         Code = "email_in_use"
	CodeWeakPassword       Code = "weak_password"
	CodeInvalidEmail       Code = "invalid_email"
	CodeNetworkError       Code = "network_error"
	CodeNotConfigured      Code = "auth_not_configured"
	CodeServiceUnavailable Code = "service_unavailable"
	CodeUnknown            Code = "unknown"
)

// AuthError is a user-correctable or service-level auth failure.
// Message is safe for inline display.
type AuthError struct {
	Code    Code
	Message string
	cause   error
}

func (e *AuthError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// NewAuthError builds an AuthError with the canonical user-facing message
// for code. cause may be nil.
func NewAuthError(code Code, cause error) *AuthError {
	msg, ok := authMessages[code]
	if !ok {
		msg = authMessages[CodeUnknown]
		code = CodeUnknown
	}
	return &AuthError{Code: code, Message: msg, cause: cause}
}

var authMessages = map[Code]string{
	CodeInvalidCredentials: "Invalid email or password. Please check your credentials.",
	CodeAccountDisabled:    "Your account has been disabled. Please contact support.",
	CodeRateLimited:        "Too many login attempts. Please try again later.",
	CodePasswordMismatch:   "Passwords do not match.",
	CodeEmailInUse:         "This email is already in use. Please try logging in or use a different email.",
	CodeWeakPassword:       "Password is too weak. Please use a stronger password (min 6 characters).",
	CodeInvalidEmail:       "Invalid email format.",
	CodeNetworkError:       "Network error. Please check your internet connection.",
	CodeNotConfigured:      "Email/password authentication is not enabled for this project.",
	CodeServiceUnavailable: "Authentication services are not ready. Please try again in a moment.",
	CodeUnknown:            "An unexpected error occurred. Please try again.",
}

// CodeOf extracts the taxonomy code, defaulting to CodeUnknown.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	if ae, ok := err.(*AuthError); ok && ae != nil {
		return ae.Code
	}
	return CodeUnknown
}

func wrapUnknown(err error) *AuthError {
	if ae, ok := err.(*AuthError); ok && ae != nil {
		return ae
	}
	return NewAuthError(CodeUnknown, fmt.Errorf("session: %w", err))
}
