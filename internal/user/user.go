package user

import (
	"time"

	"github.com/frahmantamala/bodega-inventory/internal"
	userDatamodel "github.com/frahmantamala/bodega-inventory/internal/core/datamodel/user"
	"github.com/frahmantamala/bodega-inventory/pkg/permission"
)

type User struct {
	ID           int64           `json:"id"`
	Username     string          `json:"username"`
	Name         string          `json:"name"`
	PasswordHash string          `json:"-"` // Never expose password hash
	Role         permission.Role `json:"role"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

var (
	ErrNotFound      = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	ErrUsernameTaken = internal.NewConflictError("username already exists", internal.ErrCodeUsernameTaken)
	ErrSelfDelete    = internal.NewValidationError("you cannot delete your own account", internal.ErrCodeSelfDelete)
)

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         permission.Role(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
