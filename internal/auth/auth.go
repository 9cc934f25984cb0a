package auth

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/bodega-inventory/internal"
	"github.com/frahmantamala/bodega-inventory/pkg/permission"
)

// User is the account record as seen by the auth module.
type User struct {
	ID           int64
	Username     string
	Name         string
	PasswordHash string
	Role         permission.Role
}

// Profile is the public part of a User. It never carries the hash.
type Profile struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	Name     string          `json:"name"`
	Role     permission.Role `json:"role"`
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Username: u.Username, Name: u.Name, Role: u.Role}
}

func (u *User) Principal(tokenID string) *internal.Principal {
	return &internal.Principal{ID: u.ID, Username: u.Username, Name: u.Name, Role: u.Role, TokenID: tokenID}
}

func ProfileFromPrincipal(p *internal.Principal) Profile {
	return Profile{ID: p.ID, Username: p.Username, Name: p.Name, Role: p.Role}
}

var ErrUserNotFound = errors.New("user not found")

// ErrSessionStoreUnavailable is returned when the revocation list cannot be
// consulted. Requests fail closed.
var ErrSessionStoreUnavailable = internal.NewUnavailableError("session store unavailable", internal.ErrCodeAuthUnavailable)

type UserRepository interface {
	// GetByUsername matches the username exactly. ErrUserNotFound when absent.
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}

// PasswordUpgrader is implemented by user stores that can replace a stored
// hash. Login uses it to move hashes made at another cost to the configured one.
type PasswordUpgrader interface {
	UpdatePasswordHash(ctx context.Context, userID int64, hash string) error
}

// RevocationStore keeps the ids of tokens that must no longer be accepted
// even though their signature and expiry are still valid.
type RevocationStore interface {
	Track(ctx context.Context, userID int64, tokenID string, ttl time.Duration) error
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	RevokeUser(ctx context.Context, userID int64, ttl time.Duration) (int, error)
}

// Recorder receives auth outcomes for metrics.
type Recorder interface {
	ObserveLogin(result string)
	ObserveDenied(reason string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveLogin(string)  {}
func (noopRecorder) ObserveDenied(string) {}

const (
	LoginSucceeded   = "success"
	LoginRejected    = "invalid_credentials"
	LoginUnavailable = "unavailable"
)
