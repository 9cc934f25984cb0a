package product

// ProductDTO is the body of POST and PUT. Quantity and minimum stock are
// pointers so an explicit zero is accepted while a missing value is not.
type ProductDTO struct {
	Name         string `json:"name" validate:"required,max=100"`
	Description  string `json:"description" validate:"max=500"`
	CategoryID   *int64 `json:"category_id" validate:"omitempty,gt=0"`
	Quantity     *int   `json:"quantity" validate:"required,gte=0"`
	MinimumStock *int   `json:"minimum_stock" validate:"required,gte=0"`
	Location     string `json:"location" validate:"max=100"`
}

func (d ProductDTO) apply(p *Product) {
	p.Name = d.Name
	p.Description = d.Description
	p.CategoryID = d.CategoryID
	p.Quantity = *d.Quantity
	p.MinimumStock = *d.MinimumStock
	p.Location = d.Location
}

type ListFilter struct {
	Search string
}
