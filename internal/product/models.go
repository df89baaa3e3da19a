package product

import (
	"time"

	dErrors "shopfloor/pkg/domain-errors"
)

// Status is a product's catalog state.
type Status string

const (
	StatusActive       Status = "ACTIVE"
	StatusDiscontinued Status = "DISCONTINUED"
)

// Categories a product may belong to. The catalog is fixed; anything else is
// rejected at creation.
var allowedCategories = []string{"Mechanical", "Electrical", "Packaging", "Construction", "Tools"}

// Product is the aggregate root for a manufacturable product. BOM lines are
// owned by the product and loaded with it.
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	BOMs      []BOMLine `json:"boms"`
}

// BOMLine is one required material for producing a single unit of the product.
// MaterialName is the join key to inventory material stock - not a foreign
// key - so renaming a material here is indistinguishable from removing it and
// adding a new one.
type BOMLine struct {
	ID              int64     `json:"id"`
	ProductID       int64     `json:"product_id"`
	MaterialName    string    `json:"material_name"`
	QuantityPerUnit int       `json:"quantity_per_unit"`
	CreatedAt       time.Time `json:"created_at"`
}

// ValidateCategory enforces the fixed category catalog.
func ValidateCategory(category string) error {
	for _, c := range allowedCategories {
		if c == category {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeInvalidState, "invalid category selected")
}

// ValidateStatus enforces the fixed status set.
func ValidateStatus(status Status) error {
	if status == StatusActive || status == StatusDiscontinued {
		return nil
	}
	return dErrors.New(dErrors.CodeInvalidState, "invalid status selected")
}
