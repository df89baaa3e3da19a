package inventory

import (
	"fmt"
	"time"

	dErrors "shopfloor/pkg/domain-errors"
	"shopfloor/pkg/platform/sentinel"
)

// Locations where inventory may be held. The set is fixed; anything else is
// rejected at creation.
var allowedLocations = []string{"Chennai", "Coimbatore", "Bangalore", "Hyderabad"}

// DefaultLocation is where auto-provisioned records (created alongside a new
// product) are placed.
const DefaultLocation = "Chennai"

// Record is one product's stock at one location. A product may have zero, one,
// or many records; allocation consults the first one ordered by record ID.
type Record struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Location  string          `json:"location"`
	CreatedAt time.Time       `json:"created_at"`
	Materials []MaterialStock `json:"materials"`
}

// MaterialStock tracks one material's quantity within a record. AvailableQty
// never goes below zero; every mutation site clamps.
type MaterialStock struct {
	ID           int64     `json:"id"`
	RecordID     int64     `json:"inventory_id"`
	MaterialName string    `json:"material_name"`
	AvailableQty int       `json:"available_qty"`
	ThresholdQty int       `json:"threshold_qty"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsLowStock reports whether available quantity has fallen below the
// configured threshold.
func (m MaterialStock) IsLowStock() bool {
	return m.AvailableQty < m.ThresholdQty
}

// Material returns the stock entry matching name, or nil.
func (r *Record) Material(name string) *MaterialStock {
	for i := range r.Materials {
		if r.Materials[i].MaterialName == name {
			return &r.Materials[i]
		}
	}
	return nil
}

// Requirement is one material demand of an allocation: the total quantity a
// work order needs of one material.
type Requirement struct {
	MaterialName string
	Quantity     int
}

// InsufficientStockError reports the first requirement an allocation could not
// cover. Unwraps to sentinel.ErrInsufficientStock so callers can branch
// without string matching.
type InsufficientStockError struct {
	MaterialName string
	Required     int
	Available    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient inventory for %s: required %d, available %d",
		e.MaterialName, e.Required, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return sentinel.ErrInsufficientStock }

// ValidateLocation enforces the fixed location set.
func ValidateLocation(location string) error {
	for _, l := range allowedLocations {
		if l == location {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeInvalidState, "invalid location")
}
