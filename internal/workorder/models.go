package workorder

import (
	"time"

	dErrors "shopfloor/pkg/domain-errors"
)

// Status is a work order's lifecycle state.
//
// The lifecycle is strictly linear:
//
//	PLANNED -> IN_PROGRESS -> COMPLETED -> QUALITY_DONE
//
// No state is skippable and nothing transitions automatically; each step is an
// explicit operation guarded by the current-state precondition. The one
// sanctioned way around the guards is the administrative override
// (Service.AdminOverride), which exists for corrections and deliberately does
// not share this code path.
type Status string

const (
	StatusPlanned     Status = "PLANNED"
	StatusInProgress  Status = "IN_PROGRESS"
	StatusCompleted   Status = "COMPLETED"
	StatusQualityDone Status = "QUALITY_DONE"
)

// Valid reports whether s is one of the recognized lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted, StatusQualityDone:
		return true
	}
	return false
}

// WorkOrder is a request to produce Quantity units of a product, tracked
// through the lifecycle above. The ID is an opaque UUID string.
type WorkOrder struct {
	ID            string     `json:"work_order_id"`
	ProductID     int64      `json:"product_id"`
	Quantity      int        `json:"quantity"`
	Status        Status     `json:"status"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// CanAllocate checks the PLANNED -> IN_PROGRESS precondition.
// Use with ApplyAllocation after the inventory deduction has committed.
func (w *WorkOrder) CanAllocate() error {
	if w.Status != StatusPlanned {
		return dErrors.New(dErrors.CodeInvalidState, "only PLANNED orders can allocate materials")
	}
	return nil
}

// ApplyAllocation transitions the order to IN_PROGRESS.
// Call CanAllocate first to validate the transition.
func (w *WorkOrder) ApplyAllocation() {
	w.Status = StatusInProgress
}

// CanComplete checks the IN_PROGRESS -> COMPLETED precondition.
func (w *WorkOrder) CanComplete() error {
	if w.Status != StatusInProgress {
		return dErrors.New(dErrors.CodeInvalidState, "only IN_PROGRESS orders can be completed")
	}
	return nil
}

// ApplyCompletion transitions the order to COMPLETED and stamps the
// completion time.
func (w *WorkOrder) ApplyCompletion(now time.Time) {
	w.Status = StatusCompleted
	w.CompletedAt = &now
}

// CanApproveQuality checks the COMPLETED -> QUALITY_DONE precondition.
//
// This is the single authoritative guard for the final transition. Both the
// explicit approval operation and quality-check creation go through this pair
// so the two triggers cannot drift apart.
func (w *WorkOrder) CanApproveQuality() error {
	if w.Status != StatusCompleted {
		return dErrors.New(dErrors.CodeInvalidState, "only COMPLETED orders can be quality approved")
	}
	return nil
}

// ApplyQualityApproval transitions the order to its terminal QUALITY_DONE state.
func (w *WorkOrder) ApplyQualityApproval() {
	w.Status = StatusQualityDone
}
