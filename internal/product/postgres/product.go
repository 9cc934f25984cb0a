package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	categoryDatamodel "github.com/frahmantamala/bodega-inventory/internal/core/datamodel/category"
	productDatamodel "github.com/frahmantamala/bodega-inventory/internal/core/datamodel/product"
	"github.com/frahmantamala/bodega-inventory/internal/product"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) product.Repository {
	return &ProductRepository{db: db}
}

// withCategory selects products joined with their category name.
func (r *ProductRepository) withCategory(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("products AS p").
		Select("p.*, c.name AS category_name").
		Joins("LEFT JOIN categories AS c ON p.category_id = c.id")
}

func (r *ProductRepository) List(ctx context.Context, filter product.ListFilter) ([]*productDatamodel.Product, error) {
	q := r.withCategory(ctx)
	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		q = q.Where(`LOWER(p.name) LIKE ? ESCAPE '\' OR LOWER(p.description) LIKE ? ESCAPE '\' OR LOWER(p.location) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern)
	}

	var products []*productDatamodel.Product
	err := q.Order("p.name ASC").Find(&products).Error
	return products, err
}

func (r *ProductRepository) ListLowStock(ctx context.Context) ([]*productDatamodel.Product, error) {
	var products []*productDatamodel.Product
	err := r.withCategory(ctx).
		Where("p.quantity < p.minimum_stock").
		Order("p.quantity ASC").
		Find(&products).Error
	return products, err
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*productDatamodel.Product, error) {
	var p productDatamodel.Product
	err := r.withCategory(ctx).Where("p.id = ?", id).Take(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *productDatamodel.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProductRepository) Update(ctx context.Context, p *productDatamodel.Product) error {
	res := r.db.WithContext(ctx).Model(&productDatamodel.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":          p.Name,
		"description":   p.Description,
		"category_id":   p.CategoryID,
		"quantity":      p.Quantity,
		"minimum_stock": p.MinimumStock,
		"location":      p.Location,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return product.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&productDatamodel.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return product.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&categoryDatamodel.Category{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *ProductRepository) Stats(ctx context.Context) (*product.InventoryStats, error) {
	var stats product.InventoryStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&productDatamodel.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&productDatamodel.Product{}).Where("quantity < minimum_stock").Count(&stats.LowStock).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&categoryDatamodel.Category{}).Count(&stats.Categories).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
