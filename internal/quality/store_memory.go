package quality

import (
	"context"
	"sort"
	"sync"

	"shopfloor/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded quality check store for tests and local
// development.
type InMemory struct {
	mu     sync.RWMutex
	checks map[string]*QualityCheck
}

func NewInMemory() *InMemory {
	return &InMemory{checks: make(map[string]*QualityCheck)}
}

func (s *InMemory) GetAll(ctx context.Context) ([]*QualityCheck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*QualityCheck, 0, len(s.checks))
	for _, qc := range s.checks {
		cp := *qc
		out = append(out, &cp)
	}
	sortChecks(out)
	return out, nil
}

func (s *InMemory) GetByID(ctx context.Context, id string) (*QualityCheck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	qc, ok := s.checks[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *qc
	return &cp, nil
}

func (s *InMemory) GetByWorkOrderID(ctx context.Context, workOrderID string) (*QualityCheck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, qc := range s.checks {
		if qc.WorkOrderID == workOrderID {
			cp := *qc
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListByResult(ctx context.Context, result Result) ([]*QualityCheck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*QualityCheck, 0)
	for _, qc := range s.checks {
		if qc.Result == result {
			cp := *qc
			out = append(out, &cp)
		}
	}
	sortChecks(out)
	return out, nil
}

func (s *InMemory) Create(ctx context.Context, qc *QualityCheck) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.checks[qc.ID]; ok {
		return sentinel.ErrConflict
	}
	for _, existing := range s.checks {
		if existing.WorkOrderID == qc.WorkOrderID {
			return sentinel.ErrConflict
		}
	}
	cp := *qc
	s.checks[cp.ID] = &cp
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.checks[id]; !ok {
		return false, nil
	}
	delete(s.checks, id)
	return true, nil
}

func sortChecks(checks []*QualityCheck) {
	sort.Slice(checks, func(i, j int) bool {
		if checks[i].CreatedAt.Equal(checks[j].CreatedAt) {
			return checks[i].ID < checks[j].ID
		}
		return checks[i].CreatedAt.Before(checks[j].CreatedAt)
	})
}
