package user

import (
	"errors"
	"strings"
	"time"
)

// Errors (single source)
var (
	ErrInvalidID = errors.New("user: invalid id")
	ErrNotFound  = errors.New("user: not found")
	ErrConflict  = errors.New("user: already exists")
)

// Role is the coarse authorization level gating the admin subtree.
//
// RoleUnknown is the required initial state: resolution in progress or not
// yet started. It is deliberately distinct from RoleCustomer: collapsing
// them causes premature access or premature denial during the loading window.
type Role string

const (
	RoleUnknown  Role = "unknown"
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a stored role field to a Role. An absent/empty/unrecognized
// field on a RESOLVED session defaults to customer; this default never applies
// to sessions still in the unknown state (see CanAccess).
func ParseRole(s string) Role {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleCustomer), "":
		return RoleCustomer
	default:
		return RoleCustomer
	}
}

// User mirrors the users/{uid} document: {email, role, createdAt}.
// DocID is the identity provider UID.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return ErrInvalidID
	}
	return nil
}
