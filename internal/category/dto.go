package category

// CategoryStat is one row of GET /api/categories/stats.
type CategoryStat struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	ProductCount  int64  `json:"productCount"`
	TotalQuantity int64  `json:"totalQuantity"`
	LowStock      int64  `json:"lowStock"`
}
