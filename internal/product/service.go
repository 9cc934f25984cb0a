package product

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/bodega-inventory/internal"
	"github.com/frahmantamala/bodega-inventory/internal/core/common/validation"
	productDatamodel "github.com/frahmantamala/bodega-inventory/internal/core/datamodel/product"
)

type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]*productDatamodel.Product, error)
	ListLowStock(ctx context.Context) ([]*productDatamodel.Product, error)
	GetByID(ctx context.Context, id int64) (*productDatamodel.Product, error)
	Create(ctx context.Context, p *productDatamodel.Product) error
	Update(ctx context.Context, p *productDatamodel.Product) error
	Delete(ctx context.Context, id int64) error
	CategoryExists(ctx context.Context, id int64) (bool, error)
	Stats(ctx context.Context) (*InventoryStats, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, s.storeError("list", err)
	}
	return fromRows(rows), nil
}

func (s *Service) LowStock(ctx context.Context) ([]*Product, error) {
	rows, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, s.storeError("list low-stock", err)
	}
	return fromRows(rows), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError("get", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto ProductDTO) (*Product, error) {
	if err := s.validate(ctx, dto); err != nil {
		return nil, err
	}

	p := &Product{}
	dto.apply(p)
	row := ToDataModel(p)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, s.storeError("create", err)
	}

	s.logger.Info("product created", "product_id", row.ID, "quantity", row.Quantity)
	return s.Get(ctx, row.ID)
}

func (s *Service) Update(ctx context.Context, id int64, dto ProductDTO) (*Product, error) {
	if err := s.validate(ctx, dto); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError("get", err)
	}

	p := FromDataModel(row)
	dto.apply(p)
	if err := s.repo.Update(ctx, ToDataModel(p)); err != nil {
		return nil, s.storeError("update", err)
	}

	s.logger.Info("product updated", "product_id", id, "quantity", p.Quantity)
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storeError("delete", err)
	}
	s.logger.Info("product deleted", "product_id", id)
	return nil
}

func (s *Service) Stats(ctx context.Context) (*InventoryStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, s.storeError("stats", err)
	}
	return stats, nil
}

func (s *Service) validate(ctx context.Context, dto ProductDTO) error {
	if err := validation.Struct(dto); err != nil {
		return err
	}
	if dto.CategoryID == nil {
		return nil
	}
	ok, err := s.repo.CategoryExists(ctx, *dto.CategoryID)
	if err != nil {
		return s.storeError("check category", err)
	}
	if !ok {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *Service) storeError(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	s.logger.Error("product store failure", "op", op, "error", err)
	return internal.NewInternalError("failed to "+op+" products", err)
}

func fromRows(rows []*productDatamodel.Product) []*Product {
	out := make([]*Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out
}
