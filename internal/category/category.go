package category

import (
	"github.com/frahmantamala/fintrack/internal/analytics"
	categoryDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/category"
)

type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
	IsActive bool   `json:"-"`
}

func (c *Category) IsActiveCategory() bool {
	return c.IsActive
}

type PaymentMethod struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"-"`
}

// FromDataModel falls back to the shared report palette when a row has no color.
func FromDataModel(c *categoryDatamodel.Category) *Category {
	color := c.Color
	if color == "" {
		color = analytics.CategoryColor(c.Name)
	}
	return &Category{
		ID:       c.ID,
		Name:     c.Name,
		Color:    color,
		Icon:     c.Icon,
		IsActive: c.IsActive,
	}
}

func ToDataModel(c *Category) *categoryDatamodel.Category {
	return &categoryDatamodel.Category{
		ID:       c.ID,
		Name:     c.Name,
		Color:    c.Color,
		Icon:     c.Icon,
		IsActive: c.IsActive,
	}
}

func PaymentMethodFromDataModel(p *categoryDatamodel.PaymentMethod) *PaymentMethod {
	return &PaymentMethod{ID: p.ID, Name: p.Name, IsActive: p.IsActive}
}
