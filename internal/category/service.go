package category

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/bodega-inventory/internal"
	categoryDatamodel "github.com/frahmantamala/bodega-inventory/internal/core/datamodel/category"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*categoryDatamodel.Category, error)
	GetByName(ctx context.Context, name string) (*categoryDatamodel.Category, error)
	Create(ctx context.Context, category *categoryDatamodel.Category) error
	Stats(ctx context.Context) ([]CategoryStat, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAll(ctx context.Context) ([]*Category, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, internal.NewInternalError("failed to get categories", err)
	}

	out := make([]*Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}

	s.logger.Debug("retrieved categories", "count", len(out))
	return out, nil
}

func (s *Service) Stats(ctx context.Context) ([]CategoryStat, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.logger.Error("failed to compute category stats", "error", err)
		return nil, internal.NewInternalError("failed to get category stats", err)
	}
	return stats, nil
}

// EnsureExists creates the category when no category with that name exists.
// Used by the seeder.
func (s *Service) EnsureExists(ctx context.Context, name, description string) (*Category, error) {
	row, err := toRow(name, description)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByName(ctx, row.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return fromRow(existing), nil
	}

	if err := s.repo.Create(ctx, row); err != nil {
		return nil, err
	}
	s.logger.Info("category created", "name", row.Name)
	return fromRow(row), nil
}
