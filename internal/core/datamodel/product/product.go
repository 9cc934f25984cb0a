package product

import "time"

type Product struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Description  string    `gorm:"column:description"`
	CategoryID   *int64    `gorm:"column:category_id;index"`
	Quantity     int       `gorm:"column:quantity;not null;default:0"`
	MinimumStock int       `gorm:"column:minimum_stock;not null;default:0"`
	Location     string    `gorm:"column:location"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`

	CategoryName *string `gorm:"->;-:migration;column:category_name"`
}

func (Product) TableName() string {
	return "products"
}
