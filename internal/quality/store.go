package quality

import "context"

// Store persists quality checks. Implementations return
// sentinel.ErrNotFound when a lookup misses.
type Store interface {
	GetAll(ctx context.Context) ([]*QualityCheck, error)
	GetByID(ctx context.Context, id string) (*QualityCheck, error)
	// GetByWorkOrderID returns the check for a work order, or
	// sentinel.ErrNotFound when none exists. At most one can exist.
	GetByWorkOrderID(ctx context.Context, workOrderID string) (*QualityCheck, error)
	ListByResult(ctx context.Context, result Result) ([]*QualityCheck, error)
	Create(ctx context.Context, qc *QualityCheck) error
	Delete(ctx context.Context, id string) (bool, error)
}
