package inventory

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "shopfloor/pkg/domain-errors"
)

type InventoryServiceSuite struct {
	suite.Suite
	store   *InMemory
	service *Service
}

func TestInventoryServiceSuite(t *testing.T) {
	suite.Run(t, new(InventoryServiceSuite))
}

func (s *InventoryServiceSuite) SetupTest() {
	s.store = NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = NewService(s.store, logger)
}

func (s *InventoryServiceSuite) createRecord(productID int64, materials ...MaterialInput) *Record {
	r, err := s.service.Create(context.Background(), CreateInput{
		ProductID: productID,
		Location:  DefaultLocation,
		Materials: materials,
	})
	s.Require().NoError(err)
	return r
}

// =============================================================================
// Record CRUD Tests
// =============================================================================

func (s *InventoryServiceSuite) TestCreate() {
	ctx := context.Background()

	s.Run("unknown location is rejected", func() {
		_, err := s.service.Create(ctx, CreateInput{ProductID: 1, Location: "Mumbai"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("record is created with its materials", func() {
		r := s.createRecord(1, MaterialInput{MaterialName: "Bolt", AvailableQty: 10, ThresholdQty: 3})
		s.NotZero(r.ID)
		s.Require().Len(r.Materials, 1)
		s.Equal("Bolt", r.Materials[0].MaterialName)
	})
}

func (s *InventoryServiceSuite) TestUpdateLocation() {
	ctx := context.Background()
	r := s.createRecord(1)

	updated, err := s.service.UpdateLocation(ctx, r.ID, "Coimbatore")
	s.Require().NoError(err)
	s.Equal("Coimbatore", updated.Location)

	_, err = s.service.UpdateLocation(ctx, r.ID, "Mumbai")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

// =============================================================================
// Material Stock Tests
// =============================================================================

func (s *InventoryServiceSuite) TestAdjustMaterial() {
	ctx := context.Background()
	r := s.createRecord(1, MaterialInput{MaterialName: "Bolt", AvailableQty: 10, ThresholdQty: 3})
	mat := r.Materials[0]

	s.Run("positive delta adds stock", func() {
		m, err := s.service.AdjustMaterial(ctx, mat.ID, 5)
		s.Require().NoError(err)
		s.Equal(15, m.AvailableQty)
	})

	s.Run("negative delta clamps at zero", func() {
		m, err := s.service.AdjustMaterial(ctx, mat.ID, -100)
		s.Require().NoError(err)
		s.Equal(0, m.AvailableQty)
	})

	s.Run("unknown material returns not found", func() {
		_, err := s.service.AdjustMaterial(ctx, 9999, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *InventoryServiceSuite) TestLowStock() {
	ctx := context.Background()
	s.createRecord(1,
		MaterialInput{MaterialName: "Bolt", AvailableQty: 2, ThresholdQty: 5},
		MaterialInput{MaterialName: "Washer", AvailableQty: 50, ThresholdQty: 5},
	)

	low, err := s.service.LowStock(ctx)
	s.Require().NoError(err)
	s.Require().Len(low, 1)
	s.Equal("Bolt", low[0].MaterialName)
	s.True(low[0].IsLowStock())
}

// =============================================================================
// Allocation Tests (store contract)
// =============================================================================

func (s *InventoryServiceSuite) TestAllocate() {
	ctx := context.Background()
	r := s.createRecord(1,
		MaterialInput{MaterialName: "Bolt", AvailableQty: 20, ThresholdQty: 5},
		MaterialInput{MaterialName: "Washer", AvailableQty: 5, ThresholdQty: 2},
	)

	s.Run("a single unmet line leaves everything untouched", func() {
		err := s.store.Allocate(ctx, r.ID, []Requirement{
			{MaterialName: "Bolt", Quantity: 10},
			{MaterialName: "Washer", Quantity: 6}, // only 5 on hand
		})
		var insufficient *InsufficientStockError
		s.Require().ErrorAs(err, &insufficient)
		s.Equal("Washer", insufficient.MaterialName)
		s.Equal(6, insufficient.Required)
		s.Equal(5, insufficient.Available)

		rec, err := s.store.GetByID(ctx, r.ID)
		s.Require().NoError(err)
		for _, m := range rec.Materials {
			switch m.MaterialName {
			case "Bolt":
				s.Equal(20, m.AvailableQty)
			case "Washer":
				s.Equal(5, m.AvailableQty)
			}
		}
	})

	s.Run("a missing material name fails the whole allocation", func() {
		err := s.store.Allocate(ctx, r.ID, []Requirement{
			{MaterialName: "Rivet", Quantity: 1},
		})
		var insufficient *InsufficientStockError
		s.Require().ErrorAs(err, &insufficient)
		s.Equal(0, insufficient.Available)
	})

	s.Run("all lines met deducts every line", func() {
		err := s.store.Allocate(ctx, r.ID, []Requirement{
			{MaterialName: "Bolt", Quantity: 10},
			{MaterialName: "Washer", Quantity: 5},
		})
		s.Require().NoError(err)

		rec, err := s.store.GetByID(ctx, r.ID)
		s.Require().NoError(err)
		for _, m := range rec.Materials {
			switch m.MaterialName {
			case "Bolt":
				s.Equal(10, m.AvailableQty)
			case "Washer":
				s.Equal(0, m.AvailableQty)
			}
		}
	})
}

// =============================================================================
// Sync Tests
// =============================================================================

func (s *InventoryServiceSuite) TestEnsureRecord() {
	ctx := context.Background()

	s.Require().NoError(s.service.EnsureRecord(ctx, 7))
	records, err := s.store.GetByProductID(ctx, 7)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(DefaultLocation, records[0].Location)

	// Idempotent: a second call does not add another record.
	s.Require().NoError(s.service.EnsureRecord(ctx, 7))
	records, err = s.store.GetByProductID(ctx, 7)
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *InventoryServiceSuite) TestSyncMaterials() {
	ctx := context.Background()

	s.Run("adds missing names and removes stale ones", func() {
		r := s.createRecord(1, MaterialInput{MaterialName: "A", AvailableQty: 40, ThresholdQty: 5})

		s.Require().NoError(s.service.SyncMaterials(ctx, 1, []string{"B"}))

		rec, err := s.store.GetByID(ctx, r.ID)
		s.Require().NoError(err)
		s.Require().Len(rec.Materials, 1)
		s.Equal("B", rec.Materials[0].MaterialName)
		s.Equal(0, rec.Materials[0].AvailableQty)
		s.Equal(0, rec.Materials[0].ThresholdQty)
	})

	s.Run("keeps quantities of names present in both", func() {
		r := s.createRecord(2,
			MaterialInput{MaterialName: "Bolt", AvailableQty: 30, ThresholdQty: 5},
			MaterialInput{MaterialName: "Rivet", AvailableQty: 12, ThresholdQty: 2},
		)

		s.Require().NoError(s.service.SyncMaterials(ctx, 2, []string{"Bolt", "Washer"}))

		rec, err := s.store.GetByID(ctx, r.ID)
		s.Require().NoError(err)
		byName := map[string]int{}
		for _, m := range rec.Materials {
			byName[m.MaterialName] = m.AvailableQty
		}
		s.Len(byName, 2)
		s.Equal(30, byName["Bolt"])
		s.Equal(0, byName["Washer"])
	})

	s.Run("syncs every record of the product", func() {
		s.createRecord(3, MaterialInput{MaterialName: "A", AvailableQty: 1, ThresholdQty: 1})
		second, err := s.service.Create(ctx, CreateInput{
			ProductID: 3,
			Location:  "Bangalore",
			Materials: []MaterialInput{{MaterialName: "A", AvailableQty: 2, ThresholdQty: 1}},
		})
		s.Require().NoError(err)

		s.Require().NoError(s.service.SyncMaterials(ctx, 3, []string{"B"}))

		rec, err := s.store.GetByID(ctx, second.ID)
		s.Require().NoError(err)
		s.Require().Len(rec.Materials, 1)
		s.Equal("B", rec.Materials[0].MaterialName)
	})
}
