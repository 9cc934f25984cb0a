package product

import (
	"time"

	"github.com/frahmantamala/bodega-inventory/internal"
	productDatamodel "github.com/frahmantamala/bodega-inventory/internal/core/datamodel/product"
)

type StockStatus string

const (
	StockOut StockStatus = "out_of_stock"
	StockLow StockStatus = "low_stock"
	StockIn  StockStatus = "in_stock"
)

type Product struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	CategoryID   *int64      `json:"category_id"`
	CategoryName *string     `json:"category_name,omitempty"`
	Quantity     int         `json:"quantity"`
	MinimumStock int         `json:"minimum_stock"`
	Location     string      `json:"location"`
	Status       StockStatus `json:"stock_status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Stock derives the status from quantity against the minimum.
func Stock(quantity, minimum int) StockStatus {
	switch {
	case quantity <= 0:
		return StockOut
	case quantity < minimum:
		return StockLow
	default:
		return StockIn
	}
}

func (p *Product) IsLowStock() bool {
	return p.Quantity < p.MinimumStock
}

type InventoryStats struct {
	TotalProducts int64 `json:"totalProducts"`
	LowStock      int64 `json:"lowStock"`
	Categories    int64 `json:"categories"`
}

var (
	ErrNotFound         = internal.NewNotFoundError("product not found", internal.ErrCodeProductNotFound)
	ErrCategoryNotFound = internal.NewValidationFieldError("category_id", "category does not exist", internal.ErrCodeCategoryNotFound)
)

func ToDataModel(p *Product) *productDatamodel.Product {
	return &productDatamodel.Product{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		CategoryID:   p.CategoryID,
		Quantity:     p.Quantity,
		MinimumStock: p.MinimumStock,
		Location:     p.Location,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func FromDataModel(p *productDatamodel.Product) *Product {
	return &Product{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Quantity:     p.Quantity,
		MinimumStock: p.MinimumStock,
		Location:     p.Location,
		Status:       Stock(p.Quantity, p.MinimumStock),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
