package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/frahmantamala/bodega-inventory/internal/auth"
	userDatamodel "github.com/frahmantamala/bodega-inventory/internal/core/datamodel/user"
	"github.com/frahmantamala/bodega-inventory/pkg/permission"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return toAuthUser(&u), nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return toAuthUser(&u), nil
}

func (r *Repository) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// RehashLegacyPasswords replaces every stored password that is not a bcrypt
// hash with its hash, in one transaction. It returns the number of rows
// rewritten.
func (r *Repository) RehashLegacyPasswords(ctx context.Context, hasher *auth.PasswordHasher) (int, error) {
	migrated := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []userDatamodel.User
		if err := tx.Select("id", "password").Find(&rows).Error; err != nil {
			return err
		}

		for _, u := range rows {
			if auth.IsHash(u.PasswordHash) {
				continue
			}
			hash, err := hasher.Hash(u.PasswordHash)
			if err != nil {
				return fmt.Errorf("hash password of user %d: %w", u.ID, err)
			}
			if err := tx.Model(&userDatamodel.User{}).Where("id = ?", u.ID).Update("password", hash).Error; err != nil {
				return err
			}
			migrated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return migrated, nil
}

func toAuthUser(u *userDatamodel.User) *auth.User {
	return &auth.User{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         permission.Role(u.Role),
	}
}
