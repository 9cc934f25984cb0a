package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/bodega-inventory/internal"
	"github.com/frahmantamala/bodega-inventory/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/bodega-inventory/internal/core/datamodel/user"
	"github.com/frahmantamala/bodega-inventory/internal/core/events"
)

type RepositoryAPI interface {
	List(ctx context.Context) ([]*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Update(ctx context.Context, u *userDatamodel.User) error
	Delete(ctx context.Context, id int64) error
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

type Service struct {
	repo      RepositoryAPI
	hasher    PasswordHasher
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, hasher PasswordHasher, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		hasher:    hasher,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) List(ctx context.Context) ([]UserResponse, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}

	out := make([]UserResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row).ToResponse())
	}
	return out, nil
}

// Create stores a new account with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, actor *internal.Principal, dto CreateUserDTO) (*UserResponse, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	if err := s.ensureUsernameFree(ctx, dto.Username, 0); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	row := &userDatamodel.User{
		Username:     dto.Username,
		Name:         dto.Name,
		PasswordHash: hash,
		Role:         string(dto.Role),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, s.storeError("create", err)
	}

	s.logger.Info("user created", "user_id", row.ID, "role", row.Role, "actor_id", actor.ID)
	s.publish(ctx, events.NewUserEvent(events.EventTypeUserCreated, row.ID, row.Username, row.Role, actor.ID))

	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

// Update rewrites username, name and role. A new password is hashed before
// it is stored and ends every live session of the account.
func (s *Service) Update(ctx context.Context, actor *internal.Principal, id int64, dto UpdateUserDTO) (*UserResponse, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError("load", err)
	}

	if dto.Username != row.Username {
		if err := s.ensureUsernameFree(ctx, dto.Username, id); err != nil {
			return nil, err
		}
	}

	row.Username = dto.Username
	row.Name = dto.Name
	row.Role = string(dto.Role)

	passwordChanged := dto.Password != ""
	if passwordChanged {
		hash, err := s.hasher.Hash(dto.Password)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		row.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, s.storeError("update", err)
	}

	s.logger.Info("user updated", "user_id", row.ID, "role", row.Role, "actor_id", actor.ID, "password_changed", passwordChanged)
	s.publish(ctx, events.NewUserEvent(events.EventTypeUserUpdated, row.ID, row.Username, row.Role, actor.ID))

	if passwordChanged {
		ev := events.NewUserEvent(events.EventTypeUserPasswordChanged, row.ID, row.Username, row.Role, actor.ID)
		if err := s.publisher.Publish(ctx, ev); err != nil {
			return nil, internal.NewInternalError("password changed but existing sessions could not be revoked", err)
		}
	}

	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

// Delete removes the account and its sessions. An actor cannot delete
// themselves.
func (s *Service) Delete(ctx context.Context, actor *internal.Principal, id int64) error {
	if actor.ID == id {
		return ErrSelfDelete
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.storeError("load", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storeError("delete", err)
	}

	s.logger.Info("user deleted", "user_id", id, "actor_id", actor.ID)
	s.publish(ctx, events.NewUserEvent(events.EventTypeUserDeleted, row.ID, row.Username, row.Role, actor.ID))
	return nil
}

func (s *Service) ensureUsernameFree(ctx context.Context, username string, selfID int64) error {
	existing, err := s.repo.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return s.storeError("lookup", err)
	case existing.ID != selfID:
		return ErrUsernameTaken
	}
	return nil
}

// publish delivers a best-effort event. A deleted user is already locked out
// because every request reloads the account.
func (s *Service) publish(ctx context.Context, ev *events.UserEvent) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Error("failed to publish user event", "event", ev.EventType(), "user_id", ev.UserID, "error", err)
	}
}

func (s *Service) storeError(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUsernameTaken) {
		return err
	}
	s.logger.Error("user store failure", "op", op, "error", err)
	return internal.NewInternalError("failed to "+op+" user", err)
}
