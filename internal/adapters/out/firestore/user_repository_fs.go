package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	udom "storefront/internal/domain/user"
)

// UserRepositoryFS implements user.Repository on Firestore.
//
// Collection design:
// - collection: users
// - docId: identity provider UID (docId is the source of truth)
// - fields: email, role, createdAt
type UserRepositoryFS struct {
	Client     *firestore.Client
	Collection string // defaults to "users"
}

func NewUserRepositoryFS(client *firestore.Client) *UserRepositoryFS {
	return &UserRepositoryFS{Client: client, Collection: "users"}
}

func (r *UserRepositoryFS) col() *firestore.CollectionRef {
	name := strings.TrimSpace(r.Collection)
	if name == "" {
		name = "users"
	}
	return r.Client.Collection(name)
}

func (r *UserRepositoryFS) GetByID(ctx context.Context, id string) (udom.User, error) {
	if r == nil || r.Client == nil {
		return udom.User{}, errors.New("user_repository_fs: firestore client is nil")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return udom.User{}, udom.ErrInvalidID
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return udom.User{}, udom.ErrNotFound
	}
	if err != nil {
		return udom.User{}, err
	}

	return docToUser(id, snap.Data()), nil
}

// EnsureRole writes {role, email?} with merge semantics so concurrent writes
// to other fields are never clobbered. createdAt is set only when the
// document does not exist yet.
func (r *UserRepositoryFS) EnsureRole(ctx context.Context, id, email string, role udom.Role) error {
	if r == nil || r.Client == nil {
		return errors.New("user_repository_fs: firestore client is nil")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return udom.ErrInvalidID
	}

	data := map[string]any{
		"role": string(role),
	}
	if e := strings.TrimSpace(email); e != "" {
		data["email"] = e
	}

	_, err := r.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		data["createdAt"] = time.Now().UTC()
	} else if err != nil {
		return err
	}

	_, err = r.col().Doc(id).Set(ctx, data, firestore.MergeAll)
	return err
}

func (r *UserRepositoryFS) List(ctx context.Context, limit int) ([]udom.User, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("user_repository_fs: firestore client is nil")
	}
	if limit <= 0 {
		limit = 50
	}

	it := r.col().OrderBy("createdAt", firestore.Desc).Limit(limit).Documents(ctx)
	defer it.Stop()

	var out []udom.User
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, docToUser(snap.Ref.ID, snap.Data()))
	}
	return out, nil
}

// docToUser parses the raw document with backward compatibility: an absent
// or unrecognized role field on an EXISTING document defaults to customer.
func docToUser(id string, raw map[string]any) udom.User {
	u := udom.User{ID: id, Role: udom.RoleCustomer}
	if raw == nil {
		return u
	}

	u.Email = strings.TrimSpace(asString(raw["email"]))
	u.Role = udom.ParseRole(asString(raw["role"]))
	if t, ok := asTime(raw["createdAt"]); ok {
		u.CreatedAt = t
	}
	return u
}
