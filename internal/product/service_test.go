package product

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"shopfloor/internal/inventory"
	dErrors "shopfloor/pkg/domain-errors"
)

// =============================================================================
// Product Service Test Suite
// =============================================================================
// Runs against the real inventory service so the BOM-to-inventory material
// sync is exercised end to end, not mocked away.

type ProductServiceSuite struct {
	suite.Suite
	store   *InMemory
	inv     *inventory.Service
	invSt   *inventory.InMemory
	service *Service
}

func TestProductServiceSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceSuite))
}

func (s *ProductServiceSuite) SetupTest() {
	s.store = NewInMemory()
	s.invSt = inventory.NewInMemory()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.inv = inventory.NewService(s.invSt, logger)
	s.service = NewService(s.store, s.inv, logger)
}

func (s *ProductServiceSuite) create(name string) *Product {
	p, err := s.service.Create(context.Background(), CreateInput{
		Name:     name,
		Category: "Mechanical",
		Status:   StatusActive,
	})
	s.Require().NoError(err)
	return p
}

// materialNames returns the material names on the product's first inventory
// record, or nil when it has none.
func (s *ProductServiceSuite) materialNames(productID int64) []string {
	records, err := s.invSt.GetByProductID(context.Background(), productID)
	s.Require().NoError(err)
	if len(records) == 0 {
		return nil
	}
	names := make([]string, 0, len(records[0].Materials))
	for _, m := range records[0].Materials {
		names = append(names, m.MaterialName)
	}
	return names
}

// =============================================================================
// Product CRUD Tests
// =============================================================================

func (s *ProductServiceSuite) TestCreate() {
	ctx := context.Background()

	s.Run("creation provisions an inventory record", func() {
		p := s.create("Gearbox Assembly")
		s.NotZero(p.ID)

		records, err := s.invSt.GetByProductID(ctx, p.ID)
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal(inventory.DefaultLocation, records[0].Location)
		s.Empty(records[0].Materials)
	})

	s.Run("unknown category is rejected", func() {
		_, err := s.service.Create(ctx, CreateInput{
			Name:     "Widget",
			Category: "Food",
			Status:   StatusActive,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("missing name is rejected", func() {
		_, err := s.service.Create(ctx, CreateInput{Category: "Tools", Status: StatusActive})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ProductServiceSuite) TestUpdate() {
	ctx := context.Background()
	p := s.create("Gearbox Assembly")

	s.Run("partial patch leaves other fields alone", func() {
		updated, err := s.service.Update(ctx, p.ID, UpdateInput{Status: StatusDiscontinued})
		s.Require().NoError(err)
		s.Equal("Gearbox Assembly", updated.Name)
		s.Equal(StatusDiscontinued, updated.Status)
	})

	s.Run("unknown status is rejected", func() {
		_, err := s.service.Update(ctx, p.ID, UpdateInput{Status: Status("PAUSED")})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("unknown product returns not found", func() {
		_, err := s.service.Update(ctx, 9999, UpdateInput{Name: "X"})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// BOM and Inventory Sync Tests
// =============================================================================

func (s *ProductServiceSuite) TestBOMSync() {
	ctx := context.Background()

	s.Run("adding a bom line adds a zero-stock material", func() {
		p := s.create("Gearbox Assembly")

		_, err := s.service.CreateBOM(ctx, p.ID, BOMInput{MaterialName: "Bolt", QuantityPerUnit: 2})
		s.Require().NoError(err)

		s.Equal([]string{"Bolt"}, s.materialNames(p.ID))

		records, err := s.invSt.GetByProductID(ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(0, records[0].Materials[0].AvailableQty)
		s.Equal(0, records[0].Materials[0].ThresholdQty)
	})

	s.Run("replacing the bom drops stale materials and their stock", func() {
		p := s.create("Panel Frame")
		_, err := s.service.CreateBOM(ctx, p.ID, BOMInput{MaterialName: "A", QuantityPerUnit: 1})
		s.Require().NoError(err)

		// Give A some stock; the sync must still remove it.
		records, err := s.invSt.GetByProductID(ctx, p.ID)
		s.Require().NoError(err)
		mat := records[0].Materials[0]
		qty := 50
		_, err = s.inv.UpdateMaterial(ctx, mat.ID, inventory.MaterialUpdateInput{AvailableQty: &qty})
		s.Require().NoError(err)

		_, err = s.service.ReplaceBOMs(ctx, p.ID, []BOMInput{{MaterialName: "B", QuantityPerUnit: 1}})
		s.Require().NoError(err)

		s.Equal([]string{"B"}, s.materialNames(p.ID))
		records, err = s.invSt.GetByProductID(ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(0, records[0].Materials[0].AvailableQty)
	})

	s.Run("materials present in both keep their quantities", func() {
		p := s.create("Motor Mount")
		_, err := s.service.CreateBOM(ctx, p.ID, BOMInput{MaterialName: "Bolt", QuantityPerUnit: 2})
		s.Require().NoError(err)

		records, err := s.invSt.GetByProductID(ctx, p.ID)
		s.Require().NoError(err)
		qty := 30
		_, err = s.inv.UpdateMaterial(ctx, records[0].Materials[0].ID, inventory.MaterialUpdateInput{AvailableQty: &qty})
		s.Require().NoError(err)

		_, err = s.service.CreateBOM(ctx, p.ID, BOMInput{MaterialName: "Washer", QuantityPerUnit: 4})
		s.Require().NoError(err)

		records, err = s.invSt.GetByProductID(ctx, p.ID)
		s.Require().NoError(err)
		byName := map[string]int{}
		for _, m := range records[0].Materials {
			byName[m.MaterialName] = m.AvailableQty
		}
		s.Equal(30, byName["Bolt"])
		s.Equal(0, byName["Washer"])
	})

	s.Run("deleting a bom line removes its material", func() {
		p := s.create("Bracket")
		line, err := s.service.CreateBOM(ctx, p.ID, BOMInput{MaterialName: "Rivet", QuantityPerUnit: 8})
		s.Require().NoError(err)

		deleted, err := s.service.DeleteBOM(ctx, line.ID)
		s.Require().NoError(err)
		s.True(deleted)
		s.Empty(s.materialNames(p.ID))
	})

	s.Run("deleting an unknown bom line reports false", func() {
		deleted, err := s.service.DeleteBOM(ctx, 9999)
		s.NoError(err)
		s.False(deleted)
	})
}
