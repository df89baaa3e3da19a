package product

import (
	"context"
	"sort"
	"strings"
	"sync"

	"shopfloor/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded product store for tests and local development.
type InMemory struct {
	mu        sync.RWMutex
	products  map[int64]*Product
	boms      map[int64]*BOMLine
	nextID    int64
	nextBOMID int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		products: make(map[int64]*Product),
		boms:     make(map[int64]*BOMLine),
	}
}

func (s *InMemory) GetAll(ctx context.Context, search string) ([]*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Product, 0, len(s.products))
	for _, p := range s.products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, s.withBOMs(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) GetByID(ctx context.Context, id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.withBOMs(p), nil
}

func (s *InMemory) Create(ctx context.Context, p *Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	cp := *p
	cp.ID = s.nextID
	cp.BOMs = nil
	s.products[cp.ID] = &cp
	return s.withBOMs(&cp), nil
}

func (s *InMemory) Update(ctx context.Context, p *Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	cp.BOMs = nil
	s.products[cp.ID] = &cp
	return s.withBOMs(&cp), nil
}

func (s *InMemory) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return false, nil
	}
	delete(s.products, id)
	for bomID, line := range s.boms {
		if line.ProductID == id {
			delete(s.boms, bomID)
		}
	}
	return true, nil
}

func (s *InMemory) BOMsByProduct(ctx context.Context, productID int64) ([]BOMLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bomsFor(productID), nil
}

func (s *InMemory) BOMByID(ctx context.Context, bomID int64) (*BOMLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	line, ok := s.boms[bomID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *line
	return &cp, nil
}

func (s *InMemory) CreateBOM(ctx context.Context, line *BOMLine) (*BOMLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[line.ProductID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	s.nextBOMID++
	cp := *line
	cp.ID = s.nextBOMID
	s.boms[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *InMemory) UpdateBOM(ctx context.Context, line *BOMLine) (*BOMLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.boms[line.ID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *line
	s.boms[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *InMemory) DeleteBOM(ctx context.Context, bomID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.boms[bomID]; !ok {
		return false, nil
	}
	delete(s.boms, bomID)
	return true, nil
}

func (s *InMemory) DeleteAllBOMsForProduct(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for bomID, line := range s.boms {
		if line.ProductID == productID {
			delete(s.boms, bomID)
		}
	}
	return nil
}

// withBOMs returns a copy of p with its BOM lines attached. Caller must hold
// at least the read lock.
func (s *InMemory) withBOMs(p *Product) *Product {
	cp := *p
	cp.BOMs = s.bomsFor(p.ID)
	return &cp
}

func (s *InMemory) bomsFor(productID int64) []BOMLine {
	lines := make([]BOMLine, 0)
	for _, line := range s.boms {
		if line.ProductID == productID {
			lines = append(lines, *line)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines
}
