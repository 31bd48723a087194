// Package user holds the read model for externally-owned accounts. The
// engine never creates or destroys users; it only resolves ids handed to it
// by the identity gate and maintains per-user liked sets through the
// catalog store.
package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when the referenced account does not exist.
var ErrNotFound = errors.New("user not found")

// Status tracks whether an account may act.
type Status string

const (
	StatusActive      Status = "active"
	StatusDeactivated Status = "deactivated"
)

// User is the subset of the external account record the engine reads.
type User struct {
	ID        string
	Status    Status
	CreatedAt time.Time
}

// Active reports whether the account may authenticate.
func (u *User) Active() bool {
	return u != nil && u.Status == StatusActive
}

// Repository resolves account ids against the external identity store.
type Repository interface {
	// GetByID returns the account or ErrNotFound.
	GetByID(ctx context.Context, id string) (*User, error)
}
