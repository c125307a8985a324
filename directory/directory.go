// Package directory is the user directory and dashboard-config store: user
// profiles with scrypt password digests, plus the global and per-user
// configuration documents the dashboard persists.
package directory

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrUserNotFound indicates no user matches the given ID, email, or username.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials indicates the presented secret did not verify
	// against the stored digest.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Store is the persistence surface for users and config documents. Lookups
// by email and username are case-insensitive (see NormalizeEmail and
// NormalizeUsername). Missing config documents read as an empty JSON object,
// not an error.
type Store interface {
	UserByID(id uuid.UUID) (*User, error)
	UserByEmail(email string) (*User, error)
	UserByUsername(username string) (*User, error)
	// SaveUser inserts or replaces the user record, keyed by ID. Uniqueness
	// of email and username is the caller's concern; the store only keeps
	// its lookup indexes consistent.
	SaveUser(u *User) error
	DeleteUser(id uuid.UUID) error

	GlobalConfig() (json.RawMessage, error)
	SetGlobalConfig(config json.RawMessage) error
	UserConfig(id uuid.UUID) (json.RawMessage, error)
	SetUserConfig(id uuid.UUID, config json.RawMessage) error
}

// Verifier checks login credentials against a Store. It satisfies the
// authenticator's CredentialVerifier collaborator contract: identifier is
// the account email, secret the plaintext password.
type Verifier struct {
	Users Store
}

// Verify resolves the email and checks the password digest. Unknown
// accounts and wrong passwords both come back as ErrInvalidCredentials so
// the two are indistinguishable to a caller probing for accounts.
func (v *Verifier) Verify(_ context.Context, identifier, secret string) (*User, error) {
	user, err := v.Users.UserByEmail(identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(secret) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
