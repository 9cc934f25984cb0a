package category

import (
	"strings"
	"time"

	"github.com/frahmantamala/bodega-inventory/internal"
	categoryDatamodel "github.com/frahmantamala/bodega-inventory/internal/core/datamodel/category"
)

// Category groups products on the inventory page. Products survive the
// deletion of their category with no category at all.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

var ErrEmptyName = internal.NewValidationFieldError("name", "category name is required", internal.ErrCodeValidationFailed)

func toRow(name, description string) (*categoryDatamodel.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return &categoryDatamodel.Category{Name: name, Description: strings.TrimSpace(description)}, nil
}

func fromRow(c *categoryDatamodel.Category) *Category {
	return &Category{ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt}
}
