package report

import "time"

type GeneralStats struct {
	TotalProducts int64 `json:"totalProducts"`
	LowStock      int64 `json:"lowStock"`
	OutOfStock    int64 `json:"outOfStock"`
	Categories    int64 `json:"categories"`
}

type DashboardStats struct {
	GeneralStats
	TotalUsers  int64            `json:"totalUsers"`
	UsersByRole map[string]int64 `json:"usersByRole"`
}

type RoleCount struct {
	Role  string `db:"role"`
	Total int64  `db:"total"`
}

// InventoryRow is one line of the CSV export.
type InventoryRow struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Category     *string   `db:"category_name"`
	Quantity     int       `db:"quantity"`
	MinimumStock int       `db:"minimum_stock"`
	Location     *string   `db:"location"`
	UpdatedAt    time.Time `db:"updated_at"`
}
