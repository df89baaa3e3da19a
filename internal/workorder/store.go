package workorder

import "context"

// Store persists work orders. Implementations return sentinel.ErrNotFound for
// missing records; the service translates to domain errors.
type Store interface {
	GetAll(ctx context.Context) ([]*WorkOrder, error)
	GetByID(ctx context.Context, id string) (*WorkOrder, error)
	GetByStatus(ctx context.Context, status Status) ([]*WorkOrder, error)
	Create(ctx context.Context, w *WorkOrder) error
	Update(ctx context.Context, w *WorkOrder) error
	Delete(ctx context.Context, id string) (bool, error)
}
