package user

import "context"

// Repository is the persistence port for the users collection.
//
// Storage (Firestore):
// - collection: users
// - docId: identity provider UID
// - fields: email, role, createdAt
type Repository interface {
	// GetByID returns the user document. Returns ErrNotFound when the
	// document does not exist (callers decide the default-role policy).
	GetByID(ctx context.Context, id string) (User, error)

	// EnsureRole writes the role document with merge semantics: it must not
	// clobber concurrent writes to other fields. email may be empty
	// (anonymous sessions). createdAt is set only when the document is new.
	EnsureRole(ctx context.Context, id, email string, role Role) error

	// List returns user documents ordered by createdAt descending
	// (admin list screen).
	List(ctx context.Context, limit int) ([]User, error)
}
