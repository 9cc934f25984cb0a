package user

import (
	"time"

	"github.com/frahmantamala/bodega-inventory/pkg/permission"
)

type CreateUserDTO struct {
	Username string          `json:"username" validate:"required,username"`
	Name     string          `json:"name" validate:"required,max=100"`
	Password string          `json:"password" validate:"required,min=6,max=72"`
	Role     permission.Role `json:"role" validate:"required,role"`
}

// UpdateUserDTO replaces username, name and role. Password is changed only
// when present.
type UpdateUserDTO struct {
	Username string          `json:"username" validate:"required,username"`
	Name     string          `json:"name" validate:"required,max=100"`
	Password string          `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
	Role     permission.Role `json:"role" validate:"required,role"`
}

type UserResponse struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username"`
	Name      string          `json:"name"`
	Role      permission.Role `json:"role"`
	CreatedAt time.Time       `json:"created_at"`
}
