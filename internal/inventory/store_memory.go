package inventory

import (
	"context"
	"sort"
	"sync"

	"shopfloor/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded inventory store for tests and local development.
// The single mutex gives Allocate its exclusive validate+deduct window.
type InMemory struct {
	mu             sync.RWMutex
	records        map[int64]*Record
	materials      map[int64]*MaterialStock
	nextRecordID   int64
	nextMaterialID int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		records:   make(map[int64]*Record),
		materials: make(map[int64]*MaterialStock),
	}
}

func (s *InMemory) GetAll(ctx context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, s.withMaterials(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) GetByID(ctx context.Context, id int64) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.withMaterials(r), nil
}

func (s *InMemory) GetByProductID(ctx context.Context, productID int64) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Record, 0)
	for _, r := range s.records {
		if r.ProductID == productID {
			out = append(out, s.withMaterials(r))
		}
	}
	// Ascending record ID keeps "the first record" deterministic for allocation.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) Create(ctx context.Context, r *Record) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextRecordID++
	cp := *r
	cp.ID = s.nextRecordID
	mats := cp.Materials
	cp.Materials = nil
	s.records[cp.ID] = &cp

	for _, m := range mats {
		s.nextMaterialID++
		mc := m
		mc.ID = s.nextMaterialID
		mc.RecordID = cp.ID
		if mc.AvailableQty < 0 {
			mc.AvailableQty = 0
		}
		s.materials[mc.ID] = &mc
	}
	return s.withMaterials(&cp), nil
}

func (s *InMemory) Update(ctx context.Context, r *Record) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[r.ID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *r
	cp.Materials = nil
	s.records[cp.ID] = &cp
	return s.withMaterials(&cp), nil
}

func (s *InMemory) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return false, nil
	}
	delete(s.records, id)
	for mid, m := range s.materials {
		if m.RecordID == id {
			delete(s.materials, mid)
		}
	}
	return true, nil
}

func (s *InMemory) MaterialsByRecord(ctx context.Context, recordID int64) ([]MaterialStock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.materialsFor(recordID), nil
}

func (s *InMemory) GetMaterialByID(ctx context.Context, materialID int64) (*MaterialStock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.materials[materialID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *InMemory) CreateMaterial(ctx context.Context, m *MaterialStock) (*MaterialStock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[m.RecordID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	s.nextMaterialID++
	cp := *m
	cp.ID = s.nextMaterialID
	if cp.AvailableQty < 0 {
		cp.AvailableQty = 0
	}
	s.materials[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *InMemory) UpdateMaterial(ctx context.Context, m *MaterialStock) (*MaterialStock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.materials[m.ID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *m
	if cp.AvailableQty < 0 {
		cp.AvailableQty = 0
	}
	s.materials[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *InMemory) DeleteMaterial(ctx context.Context, materialID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.materials[materialID]; !ok {
		return false, nil
	}
	delete(s.materials, materialID)
	return true, nil
}

func (s *InMemory) LowStock(ctx context.Context) ([]MaterialStock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]MaterialStock, 0)
	for _, m := range s.materials {
		if m.IsLowStock() {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Allocate validates every requirement against the record, then deducts all of
// them. Both phases run under the write lock so concurrent allocations against
// the same record cannot interleave.
func (s *InMemory) Allocate(ctx context.Context, recordID int64, reqs []Requirement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[recordID]; !ok {
		return sentinel.ErrNotFound
	}

	matched := make(map[string]*MaterialStock, len(reqs))
	for _, m := range s.materials {
		if m.RecordID == recordID {
			matched[m.MaterialName] = m
		}
	}

	for _, req := range reqs {
		m, ok := matched[req.MaterialName]
		if !ok {
			return &InsufficientStockError{MaterialName: req.MaterialName, Required: req.Quantity, Available: 0}
		}
		if m.AvailableQty < req.Quantity {
			return &InsufficientStockError{MaterialName: req.MaterialName, Required: req.Quantity, Available: m.AvailableQty}
		}
	}

	for _, req := range reqs {
		matched[req.MaterialName].AvailableQty -= req.Quantity
	}
	return nil
}

// withMaterials returns a copy of r with its material stock attached. Caller
// must hold at least the read lock.
func (s *InMemory) withMaterials(r *Record) *Record {
	cp := *r
	cp.Materials = s.materialsFor(r.ID)
	return &cp
}

func (s *InMemory) materialsFor(recordID int64) []MaterialStock {
	mats := make([]MaterialStock, 0)
	for _, m := range s.materials {
		if m.RecordID == recordID {
			mats = append(mats, *m)
		}
	}
	sort.Slice(mats, func(i, j int) bool { return mats[i].ID < mats[j].ID })
	return mats
}
