package credential

import (
	"context"
	"errors"
)

// TokenKey is the one storage key under which the auth token is kept.
const TokenKey = "auth_token"

var (
	// ErrNoToken is returned by Store.Read when no token is stored.
	ErrNoToken = errors.New("no auth token stored")

	// ErrReadOnly is returned by Write and Delete on read-only backends.
	ErrReadOnly = errors.New("token storage is read-only")
)

// Store reads, writes and deletes the auth token in persistent storage.
type Store interface {
	// Read returns the stored token. Returns ErrNoToken if nothing is stored.
	Read(ctx context.Context) (string, error)

	// Write persists the token, replacing any previous one.
	Write(ctx context.Context, token string) error

	// Delete removes the stored token. Deleting an absent token is not an error.
	Delete(ctx context.Context) error
}
