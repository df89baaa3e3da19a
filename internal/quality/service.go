package quality

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	qmetrics "shopfloor/internal/quality/metrics"
	"shopfloor/internal/workorder"
	dErrors "shopfloor/pkg/domain-errors"
	"shopfloor/pkg/platform/sentinel"
	"shopfloor/pkg/requestcontext"
)

// WorkOrderStore is the slice of the work order store this engine needs: it
// reads the order under inspection and drives its final status transition.
type WorkOrderStore interface {
	GetByID(ctx context.Context, id string) (*workorder.WorkOrder, error)
	Update(ctx context.Context, w *workorder.WorkOrder) error
}

// CreateInput carries the fields for recording a quality check.
type CreateInput struct {
	WorkOrderID string
	AcceptedQty int
	Remarks     string
}

// Service is the quality check engine. Recording a check computes the verdict
// and advances the work order to QUALITY_DONE.
type Service struct {
	checks  Store
	orders  WorkOrderStore
	metrics *qmetrics.Metrics
	logger  *slog.Logger

	// Check identifiers derive from the creation timestamp in millis.
	// lastID disambiguates two checks created within the same millisecond.
	idMu   sync.Mutex
	lastID int64
}

func NewService(checks Store, orders WorkOrderStore, metrics *qmetrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		checks:  checks,
		orders:  orders,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*QualityCheck, error) {
	return s.checks.GetAll(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*QualityCheck, error) {
	qc, err := s.checks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "quality check not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
	}
	return qc, nil
}

// GetByWorkOrder returns the check recorded for a work order, if any.
func (s *Service) GetByWorkOrder(ctx context.Context, workOrderID string) (*QualityCheck, error) {
	qc, err := s.checks.GetByWorkOrderID(ctx, workOrderID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no quality check for this work order")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
	}
	return qc, nil
}

func (s *Service) ListByResult(ctx context.Context, result Result) ([]*QualityCheck, error) {
	if !result.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown quality check result")
	}
	return s.checks.ListByResult(ctx, result)
}

// Create records the inspection of a completed work order. The verdict is
// computed from the accepted count against the order quantity, the check is
// persisted, and the order takes its terminal QUALITY_DONE status through the
// same transition guard the explicit approval operation uses.
func (s *Service) Create(ctx context.Context, in CreateInput) (*QualityCheck, error) {
	w, err := s.orders.GetByID(ctx, in.WorkOrderID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "work order not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
	}
	if err := w.CanApproveQuality(); err != nil {
		return nil, err
	}

	if _, err := s.checks.GetByWorkOrderID(ctx, in.WorkOrderID); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "quality check already exists for this work order")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
	}

	if in.AcceptedQty < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidState, "accepted quantity cannot be negative")
	}
	if in.AcceptedQty > w.Quantity {
		return nil, dErrors.New(dErrors.CodeInvalidState, "accepted quantity exceeds work order quantity")
	}

	now := requestcontext.Now(ctx)
	rate := SuccessRate(in.AcceptedQty, w.Quantity)
	qc := &QualityCheck{
		ID:             s.nextID(now.UnixMilli()),
		WorkOrderID:    w.ID,
		ProductID:      w.ProductID,
		InspectionDate: now,
		TotalQty:       w.Quantity,
		AcceptedQty:    in.AcceptedQty,
		RejectedQty:    w.Quantity - in.AcceptedQty,
		SuccessRate:    rate,
		Result:         Verdict(rate),
		Remarks:        in.Remarks,
		CreatedAt:      now,
	}

	if err := s.checks.Create(ctx, qc); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "quality check already exists for this work order")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create quality check")
	}

	w.ApplyQualityApproval()
	if err := s.orders.Update(ctx, w); err != nil {
		// The check is recorded; the order is stuck in COMPLETED until
		// corrected via the administrative override.
		s.logger.ErrorContext(ctx, "quality check recorded but status update failed",
			"qc_id", qc.ID,
			"work_order_id", w.ID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update work order")
	}

	s.metrics.ObserveCheck(string(qc.Result), qc.SuccessRate)
	s.logger.InfoContext(ctx, "quality check recorded",
		"qc_id", qc.ID,
		"work_order_id", w.ID,
		"success_rate", qc.SuccessRate,
		"result", qc.Result,
	)
	return qc, nil
}

// Delete removes a quality check unconditionally. The work order's status is
// not reverted.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	return s.checks.Delete(ctx, id)
}

// nextID derives a check identifier from the creation timestamp, bumping past
// the previous identifier when two checks land in the same millisecond so the
// sequence stays strictly increasing.
func (s *Service) nextID(millis int64) string {
	s.idMu.Lock()
	defer s.idMu.Unlock()

	if millis <= s.lastID {
		millis = s.lastID + 1
	}
	s.lastID = millis
	return fmt.Sprintf("QC-%d", millis)
}
