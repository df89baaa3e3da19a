package inventory

import "context"

// Store persists inventory records and their material stock. Implementations
// return sentinel.ErrNotFound for missing records.
//
// Allocate is the one compound operation: it validates every requirement
// against a single record and deducts all of them, atomically with respect to
// other allocations against the same record. The in-memory store serializes
// under its mutex; the Postgres store uses conditional updates inside a
// transaction. On failure nothing is deducted and an *InsufficientStockError
// is returned.
type Store interface {
	GetAll(ctx context.Context) ([]*Record, error)
	GetByID(ctx context.Context, id int64) (*Record, error)
	GetByProductID(ctx context.Context, productID int64) ([]*Record, error)
	Create(ctx context.Context, r *Record) (*Record, error)
	Update(ctx context.Context, r *Record) (*Record, error)
	Delete(ctx context.Context, id int64) (bool, error)

	MaterialsByRecord(ctx context.Context, recordID int64) ([]MaterialStock, error)
	GetMaterialByID(ctx context.Context, materialID int64) (*MaterialStock, error)
	CreateMaterial(ctx context.Context, m *MaterialStock) (*MaterialStock, error)
	UpdateMaterial(ctx context.Context, m *MaterialStock) (*MaterialStock, error)
	DeleteMaterial(ctx context.Context, materialID int64) (bool, error)
	LowStock(ctx context.Context) ([]MaterialStock, error)

	Allocate(ctx context.Context, recordID int64, reqs []Requirement) error
}
