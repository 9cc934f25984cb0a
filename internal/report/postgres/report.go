package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/bodega-inventory/internal/report"
)

type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) report.Repository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) count(ctx context.Context, what, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", what, err)
	}
	return n, nil
}

func (r *ReportRepository) CountProducts(ctx context.Context) (int64, error) {
	return r.count(ctx, "products", `SELECT COUNT(*) FROM products`)
}

func (r *ReportRepository) CountLowStock(ctx context.Context) (int64, error) {
	return r.count(ctx, "low stock", `SELECT COUNT(*) FROM products WHERE quantity < minimum_stock`)
}

func (r *ReportRepository) CountOutOfStock(ctx context.Context) (int64, error) {
	return r.count(ctx, "out of stock", `SELECT COUNT(*) FROM products WHERE quantity <= ?`, 0)
}

func (r *ReportRepository) CountCategories(ctx context.Context) (int64, error) {
	return r.count(ctx, "categories", `SELECT COUNT(*) FROM categories`)
}

func (r *ReportRepository) UsersByRole(ctx context.Context) ([]report.RoleCount, error) {
	var out []report.RoleCount
	query := `SELECT role, COUNT(*) AS total FROM users GROUP BY role ORDER BY role`
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("users by role: %w", err)
	}
	return out, nil
}

func (r *ReportRepository) InventoryRows(ctx context.Context) ([]report.InventoryRow, error) {
	var out []report.InventoryRow
	query := `
SELECT p.id, p.name, c.name AS category_name, p.quantity, p.minimum_stock, p.location, p.updated_at
FROM products p
LEFT JOIN categories c ON p.category_id = c.id
ORDER BY p.name`
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("inventory rows: %w", err)
	}
	return out, nil
}
