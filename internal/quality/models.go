package quality

import "time"

// Result is the verdict of a quality check.
type Result string

const (
	ResultPass Result = "PASS"
	ResultFail Result = "FAIL"
)

func (r Result) Valid() bool {
	return r == ResultPass || r == ResultFail
}

// PassThresholdPercent is the fixed business rule: a check passes when the
// rounded success rate reaches this percentage.
const PassThresholdPercent = 90

// QualityCheck records a post-production inspection. Exactly one exists per
// work order; it is immutable after creation except for deletion.
type QualityCheck struct {
	ID             string    `json:"qc_id"`
	WorkOrderID    string    `json:"work_order_id"`
	ProductID      int64     `json:"product_id"`
	InspectionDate time.Time `json:"inspection_date"`
	TotalQty       int       `json:"total_qty"`
	AcceptedQty    int       `json:"accepted_qty"`
	RejectedQty    int       `json:"rejected_qty"`
	SuccessRate    int       `json:"success_rate"`
	Result         Result    `json:"result"`
	Remarks        string    `json:"remarks,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// SuccessRate computes the rounded integer percentage of accepted units.
// A zero total yields zero rather than a division fault.
func SuccessRate(acceptedQty, totalQty int) int {
	if totalQty == 0 {
		return 0
	}
	return int(float64(acceptedQty)/float64(totalQty)*100 + 0.5)
}

// Verdict applies the fixed pass threshold to a success rate.
func Verdict(successRate int) Result {
	if successRate >= PassThresholdPercent {
		return ResultPass
	}
	return ResultFail
}
