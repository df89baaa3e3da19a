package workorder

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shopfloor/internal/inventory"
	"shopfloor/internal/product"
	wometrics "shopfloor/internal/workorder/metrics"
	dErrors "shopfloor/pkg/domain-errors"
	"shopfloor/pkg/platform/sentinel"
	"shopfloor/pkg/requestcontext"
)

// ProductCatalog is the read-only view of products this engine needs: the
// product must exist at creation time and its BOM drives allocation.
type ProductCatalog interface {
	GetByID(ctx context.Context, id int64) (*product.Product, error)
}

// InventorySource provides the records to allocate from and the atomic
// validate+deduct operation. The store guarantees all-or-nothing semantics;
// this engine never observes a partial deduction.
type InventorySource interface {
	GetByProductID(ctx context.Context, productID int64) ([]*inventory.Record, error)
	Allocate(ctx context.Context, recordID int64, reqs []inventory.Requirement) error
}

// CreateInput carries the fields for creating a work order.
type CreateInput struct {
	ProductID     int64
	Quantity      int
	ScheduledDate *time.Time
}

// OverrideInput is the administrative patch: any non-nil field is applied
// as-is, without lifecycle guards or inventory revalidation.
type OverrideInput struct {
	Status        *Status
	Quantity      *int
	ScheduledDate *time.Time
}

// Service is the work order engine. It owns the lifecycle transitions and
// mutates inventory as a side effect of allocation.
type Service struct {
	orders      Store
	products    ProductCatalog
	inventories InventorySource
	metrics     *wometrics.Metrics
	logger      *slog.Logger
}

func NewService(orders Store, products ProductCatalog, inventories InventorySource, metrics *wometrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		orders:      orders,
		products:    products,
		inventories: inventories,
		metrics:     metrics,
		logger:      logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*WorkOrder, error) {
	return s.orders.GetAll(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*WorkOrder, error) {
	w, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, translateOrderErr(err)
	}
	return w, nil
}

func (s *Service) ListByStatus(ctx context.Context, status Status) ([]*WorkOrder, error) {
	if !status.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown work order status")
	}
	return s.orders.GetByStatus(ctx, status)
}

// Create registers a new order in PLANNED. The product must exist; BOM and
// inventory validation is deferred to allocation.
func (s *Service) Create(ctx context.Context, in CreateInput) (*WorkOrder, error) {
	if in.Quantity <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "quantity must be positive")
	}
	if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "product not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load product")
	}

	w := &WorkOrder{
		ID:            uuid.NewString(),
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		Status:        StatusPlanned,
		ScheduledDate: in.ScheduledDate,
		CreatedAt:     requestcontext.Now(ctx),
		CompletedAt:   nil,
	}
	if err := s.orders.Create(ctx, w); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create work order")
	}

	s.metrics.IncrementCreated()
	return w, nil
}

// CreateBatch repeats Create count times with the same input. Best-effort and
// not atomic: a failure partway returns the orders created so far alongside
// the error, and nothing is rolled back.
func (s *Service) CreateBatch(ctx context.Context, in CreateInput, count int) ([]*WorkOrder, error) {
	if count <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "batch count must be positive")
	}

	created := make([]*WorkOrder, 0, count)
	for i := 0; i < count; i++ {
		w, err := s.Create(ctx, in)
		if err != nil {
			return created, err
		}
		created = append(created, w)
	}
	return created, nil
}

// AllocateMaterials drives PLANNED -> IN_PROGRESS. It computes the total
// requirement of every BOM line (quantity per unit times order quantity),
// validates all of them against a single inventory record, and only then
// deducts - the store's Allocate makes validate+deduct atomic, so a failed
// allocation leaves stock untouched and the order PLANNED.
//
// The allocation source is the product's first inventory record in ascending
// record ID order; location choice beyond that is deliberately out of scope.
func (s *Service) AllocateMaterials(ctx context.Context, id string) (*WorkOrder, error) {
	start := time.Now()

	w, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, translateOrderErr(err)
	}
	if err := w.CanAllocate(); err != nil {
		s.metrics.ObserveAllocation(start, "invalid_state")
		return nil, err
	}

	p, err := s.products.GetByID(ctx, w.ProductID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "product not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load product")
	}

	records, err := s.inventories.GetByProductID(ctx, w.ProductID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load inventory")
	}
	if len(records) == 0 {
		s.metrics.ObserveAllocation(start, "no_inventory")
		return nil, dErrors.New(dErrors.CodeInvalidState, "no inventory found for this product")
	}
	source := records[0]

	reqs := make([]inventory.Requirement, 0, len(p.BOMs))
	for _, line := range p.BOMs {
		reqs = append(reqs, inventory.Requirement{
			MaterialName: line.MaterialName,
			Quantity:     line.QuantityPerUnit * w.Quantity,
		})
	}

	if err := s.inventories.Allocate(ctx, source.ID, reqs); err != nil {
		var insufficient *inventory.InsufficientStockError
		if errors.As(err, &insufficient) {
			s.metrics.ObserveAllocation(start, "insufficient_stock")
			return nil, dErrors.New(dErrors.CodeInvalidState, insufficient.Error())
		}
		s.metrics.ObserveAllocation(start, "error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate materials")
	}

	w.ApplyAllocation()
	if err := s.orders.Update(ctx, w); err != nil {
		// Stock is already deducted; surface loudly so the order can be
		// corrected via the administrative override.
		s.logger.ErrorContext(ctx, "allocation deducted stock but status update failed",
			"work_order_id", w.ID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update work order")
	}

	s.metrics.ObserveAllocation(start, "success")
	s.logger.InfoContext(ctx, "materials allocated",
		"work_order_id", w.ID,
		"product_id", w.ProductID,
		"inventory_id", source.ID,
		"lines", len(reqs),
	)
	return w, nil
}

// Complete drives IN_PROGRESS -> COMPLETED and stamps the completion time.
func (s *Service) Complete(ctx context.Context, id string) (*WorkOrder, error) {
	w, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, translateOrderErr(err)
	}
	if err := w.CanComplete(); err != nil {
		return nil, err
	}

	w.ApplyCompletion(requestcontext.Now(ctx))
	if err := s.orders.Update(ctx, w); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update work order")
	}

	s.metrics.IncrementCompleted()
	return w, nil
}

// ApproveQuality drives COMPLETED -> QUALITY_DONE with no other side effects.
// Quality-check creation performs the same transition through the same model
// guard; see the quality module.
func (s *Service) ApproveQuality(ctx context.Context, id string) (*WorkOrder, error) {
	w, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, translateOrderErr(err)
	}
	if err := w.CanApproveQuality(); err != nil {
		return nil, err
	}

	w.ApplyQualityApproval()
	if err := s.orders.Update(ctx, w); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update work order")
	}
	return w, nil
}

// AdminOverride patches status, quantity, or scheduled date directly,
// bypassing the lifecycle guards. It exists for corrections; it does not
// revalidate inventory and must never share the guarded transition path.
func (s *Service) AdminOverride(ctx context.Context, id string, in OverrideInput) (*WorkOrder, error) {
	w, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, translateOrderErr(err)
	}

	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, dErrors.New(dErrors.CodeBadRequest, "unknown work order status")
		}
		w.Status = *in.Status
	}
	if in.Quantity != nil {
		w.Quantity = *in.Quantity
	}
	if in.ScheduledDate != nil {
		w.ScheduledDate = in.ScheduledDate
	}

	if err := s.orders.Update(ctx, w); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update work order")
	}

	s.logger.WarnContext(ctx, "work order modified via administrative override",
		"work_order_id", w.ID,
		"status", w.Status,
	)
	return w, nil
}

// Delete removes the order unconditionally, regardless of state, and reports
// whether a record existed. Inventory already allocated is not returned.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	return s.orders.Delete(ctx, id)
}

func translateOrderErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "work order not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
}
