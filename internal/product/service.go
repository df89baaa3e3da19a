package product

import (
	"context"
	"errors"
	"log/slog"

	dErrors "shopfloor/pkg/domain-errors"
	"shopfloor/pkg/platform/sentinel"
	"shopfloor/pkg/requestcontext"
)

// MaterialSyncer reconciles inventory material stock with a product's current
// BOM material names. Implemented by the inventory service; wired in main to
// keep the two modules decoupled.
type MaterialSyncer interface {
	SyncMaterials(ctx context.Context, productID int64, materialNames []string) error
	EnsureRecord(ctx context.Context, productID int64) error
}

// CreateInput carries the fields for creating a product.
type CreateInput struct {
	Name     string
	Category string
	Status   Status
}

// UpdateInput is a partial patch; empty fields are left unchanged.
type UpdateInput struct {
	Name     string
	Category string
	Status   Status
}

// BOMInput carries the fields for creating a BOM line.
type BOMInput struct {
	MaterialName    string
	QuantityPerUnit int
}

// BOMUpdateInput is a partial patch of a BOM line.
type BOMUpdateInput struct {
	MaterialName    string
	QuantityPerUnit *int
}

// Service owns product and BOM orchestration. Every BOM mutation triggers a
// best-effort inventory sync so material stock rows track the BOM.
type Service struct {
	store  Store
	syncer MaterialSyncer
	logger *slog.Logger
}

func NewService(store Store, syncer MaterialSyncer, logger *slog.Logger) *Service {
	return &Service{store: store, syncer: syncer, logger: logger}
}

func (s *Service) List(ctx context.Context, search string) ([]*Product, error) {
	return s.store.GetAll(ctx, search)
}

func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "product not found")
	}
	return p, nil
}

// Create validates the category and status allow-lists, persists the product,
// and provisions an empty inventory record for it. BOM lines come later;
// materials are synced into the record as they are added.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	if in.Name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "product name is required")
	}
	if err := ValidateCategory(in.Category); err != nil {
		return nil, err
	}
	if err := ValidateStatus(in.Status); err != nil {
		return nil, err
	}

	p := &Product{
		Name:      in.Name,
		Category:  in.Category,
		Status:    in.Status,
		CreatedAt: requestcontext.Now(ctx),
	}
	created, err := s.store.Create(ctx, p)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create product")
	}

	if err := s.syncer.EnsureRecord(ctx, created.ID); err != nil {
		// Inventory provisioning is best-effort; the record can be created
		// manually if this fails.
		s.logger.WarnContext(ctx, "failed to provision inventory for product",
			"product_id", created.ID,
			"error", err,
		)
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Product, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "product not found")
	}

	if in.Name != "" {
		p.Name = in.Name
	}
	if in.Category != "" {
		if err := ValidateCategory(in.Category); err != nil {
			return nil, err
		}
		p.Category = in.Category
	}
	if in.Status != "" {
		if err := ValidateStatus(in.Status); err != nil {
			return nil, err
		}
		p.Status = in.Status
	}

	updated, err := s.store.Update(ctx, p)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update product")
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	return s.store.Delete(ctx, id)
}

func (s *Service) BOMs(ctx context.Context, productID int64) ([]BOMLine, error) {
	return s.store.BOMsByProduct(ctx, productID)
}

func (s *Service) CreateBOM(ctx context.Context, productID int64, in BOMInput) (*BOMLine, error) {
	if in.MaterialName == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "material name is required")
	}
	if _, err := s.store.GetByID(ctx, productID); err != nil {
		return nil, translateNotFound(err, "product not found")
	}

	line := &BOMLine{
		ProductID:       productID,
		MaterialName:    in.MaterialName,
		QuantityPerUnit: in.QuantityPerUnit,
		CreatedAt:       requestcontext.Now(ctx),
	}
	created, err := s.store.CreateBOM(ctx, line)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create bom line")
	}

	s.syncInventory(ctx, productID)
	return created, nil
}

func (s *Service) UpdateBOM(ctx context.Context, bomID int64, in BOMUpdateInput) (*BOMLine, error) {
	line, err := s.store.BOMByID(ctx, bomID)
	if err != nil {
		return nil, translateNotFound(err, "bom line not found")
	}

	if in.MaterialName != "" {
		line.MaterialName = in.MaterialName
	}
	if in.QuantityPerUnit != nil {
		line.QuantityPerUnit = *in.QuantityPerUnit
	}

	updated, err := s.store.UpdateBOM(ctx, line)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update bom line")
	}

	// Material name may have changed; a rename syncs as delete+add and drops
	// the old line's quantities.
	s.syncInventory(ctx, updated.ProductID)
	return updated, nil
}

func (s *Service) DeleteBOM(ctx context.Context, bomID int64) (bool, error) {
	line, err := s.store.BOMByID(ctx, bomID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	deleted, err := s.store.DeleteBOM(ctx, bomID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.syncInventory(ctx, line.ProductID)
	}
	return deleted, nil
}

// ReplaceBOMs swaps the product's entire BOM for the given lines, then syncs
// inventory once.
func (s *Service) ReplaceBOMs(ctx context.Context, productID int64, inputs []BOMInput) ([]BOMLine, error) {
	if _, err := s.store.GetByID(ctx, productID); err != nil {
		return nil, translateNotFound(err, "product not found")
	}

	if err := s.store.DeleteAllBOMsForProduct(ctx, productID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear bom lines")
	}

	now := requestcontext.Now(ctx)
	created := make([]BOMLine, 0, len(inputs))
	for _, in := range inputs {
		line, err := s.store.CreateBOM(ctx, &BOMLine{
			ProductID:       productID,
			MaterialName:    in.MaterialName,
			QuantityPerUnit: in.QuantityPerUnit,
			CreatedAt:       now,
		})
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create bom line")
		}
		created = append(created, *line)
	}

	s.syncInventory(ctx, productID)
	return created, nil
}

// syncInventory pushes the product's current BOM material names to the
// inventory module. Failures are logged, not surfaced: the BOM mutation
// already committed and the sync can be repeated.
func (s *Service) syncInventory(ctx context.Context, productID int64) {
	boms, err := s.store.BOMsByProduct(ctx, productID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load bom lines for inventory sync",
			"product_id", productID,
			"error", err,
		)
		return
	}
	names := make([]string, 0, len(boms))
	for _, b := range boms {
		names = append(names, b.MaterialName)
	}
	if err := s.syncer.SyncMaterials(ctx, productID, names); err != nil {
		s.logger.WarnContext(ctx, "failed to sync inventory materials",
			"product_id", productID,
			"error", err,
		)
	}
}

func translateNotFound(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
}
