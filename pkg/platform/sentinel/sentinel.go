package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: a unique constraint was violated (duplicate email, second
//   quality check for the same work order)
// - ErrInsufficientStock: a conditional deduction found less stock than required
// - ErrUnavailable: backing service temporarily unavailable
//
// For validation errors (bad input, disallowed transitions), use
// pkg/domain-errors directly in the service layer.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnavailable       = errors.New("unavailable")
)
