package workorder

import (
	"context"
	"sort"
	"sync"

	"shopfloor/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded work order store for tests and local development.
type InMemory struct {
	mu     sync.RWMutex
	orders map[string]*WorkOrder
}

func NewInMemory() *InMemory {
	return &InMemory{orders: make(map[string]*WorkOrder)}
}

func (s *InMemory) GetAll(ctx context.Context) ([]*WorkOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*WorkOrder, 0, len(s.orders))
	for _, w := range s.orders {
		cp := *w
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemory) GetByID(ctx context.Context, id string) (*WorkOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.orders[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (s *InMemory) GetByStatus(ctx context.Context, status Status) ([]*WorkOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*WorkOrder, 0)
	for _, w := range s.orders {
		if w.Status == status {
			cp := *w
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemory) Create(ctx context.Context, w *WorkOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[w.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *w
	s.orders[cp.ID] = &cp
	return nil
}

func (s *InMemory) Update(ctx context.Context, w *WorkOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[w.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *w
	s.orders[cp.ID] = &cp
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return false, nil
	}
	delete(s.orders, id)
	return true, nil
}
