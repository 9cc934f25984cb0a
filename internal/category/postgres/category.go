package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/bodega-inventory/internal/category"
	categoryDatamodel "github.com/frahmantamala/bodega-inventory/internal/core/datamodel/category"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.RepositoryAPI {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetAll(ctx context.Context) ([]*categoryDatamodel.Category, error) {
	var categories []*categoryDatamodel.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*categoryDatamodel.Category, error) {
	var cat categoryDatamodel.Category
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) Create(ctx context.Context, cat *categoryDatamodel.Category) error {
	return r.db.WithContext(ctx).Create(cat).Error
}

func (r *CategoryRepository) Stats(ctx context.Context) ([]category.CategoryStat, error) {
	var stats []category.CategoryStat
	err := r.db.WithContext(ctx).
		Table("categories AS c").
		Select(`c.id AS id, c.name AS name,
			COUNT(p.id) AS product_count,
			COALESCE(SUM(p.quantity), 0) AS total_quantity,
			COALESCE(SUM(CASE WHEN p.quantity < p.minimum_stock THEN 1 ELSE 0 END), 0) AS low_stock`).
		Joins("LEFT JOIN products AS p ON p.category_id = c.id").
		Group("c.id, c.name").
		Order("c.name ASC").
		Scan(&stats).Error
	return stats, err
}
