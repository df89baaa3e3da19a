package auth

import "context"

// UserStore persists user accounts. Implementations return
// sentinel.ErrNotFound when a lookup misses and sentinel.ErrConflict when an
// email is already registered.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) (*User, error)
}
