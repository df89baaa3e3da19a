package product

import "context"

// Store persists products and their BOM lines. Implementations return
// sentinel.ErrNotFound for missing records; the service translates to domain
// errors.
type Store interface {
	GetAll(ctx context.Context, search string) ([]*Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p *Product) (*Product, error)
	Update(ctx context.Context, p *Product) (*Product, error)
	Delete(ctx context.Context, id int64) (bool, error)

	BOMsByProduct(ctx context.Context, productID int64) ([]BOMLine, error)
	BOMByID(ctx context.Context, bomID int64) (*BOMLine, error)
	CreateBOM(ctx context.Context, line *BOMLine) (*BOMLine, error)
	UpdateBOM(ctx context.Context, line *BOMLine) (*BOMLine, error)
	DeleteBOM(ctx context.Context, bomID int64) (bool, error)
	DeleteAllBOMsForProduct(ctx context.Context, productID int64) error
}
