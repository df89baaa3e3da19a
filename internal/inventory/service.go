package inventory

import (
	"context"
	"errors"
	"log/slog"

	dErrors "shopfloor/pkg/domain-errors"
	"shopfloor/pkg/platform/sentinel"
	"shopfloor/pkg/requestcontext"
)

// CreateInput carries the fields for creating an inventory record.
type CreateInput struct {
	ProductID int64
	Location  string
	Materials []MaterialInput
}

// MaterialInput carries the fields for creating a material stock entry.
type MaterialInput struct {
	MaterialName string
	AvailableQty int
	ThresholdQty int
}

// MaterialUpdateInput is a partial patch of a material stock entry.
type MaterialUpdateInput struct {
	MaterialName string
	AvailableQty *int
	ThresholdQty *int
}

// Service owns inventory records and material stock, including the BOM-driven
// material sync and the quantity adjustments the dashboard uses.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]*Record, error) {
	return s.store.GetAll(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Record, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "inventory not found")
	}
	return r, nil
}

func (s *Service) ListByProduct(ctx context.Context, productID int64) ([]*Record, error) {
	return s.store.GetByProductID(ctx, productID)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Record, error) {
	if err := ValidateLocation(in.Location); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	r := &Record{
		ProductID: in.ProductID,
		Location:  in.Location,
		CreatedAt: now,
	}
	for _, m := range in.Materials {
		r.Materials = append(r.Materials, MaterialStock{
			MaterialName: m.MaterialName,
			AvailableQty: m.AvailableQty,
			ThresholdQty: m.ThresholdQty,
			CreatedAt:    now,
		})
	}

	created, err := s.store.Create(ctx, r)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create inventory")
	}
	return created, nil
}

func (s *Service) UpdateLocation(ctx context.Context, id int64, location string) (*Record, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "inventory not found")
	}
	if location != "" {
		if err := ValidateLocation(location); err != nil {
			return nil, err
		}
		r.Location = location
	}
	updated, err := s.store.Update(ctx, r)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update inventory")
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	return s.store.Delete(ctx, id)
}

func (s *Service) Materials(ctx context.Context, recordID int64) ([]MaterialStock, error) {
	return s.store.MaterialsByRecord(ctx, recordID)
}

func (s *Service) CreateMaterial(ctx context.Context, recordID int64, in MaterialInput) (*MaterialStock, error) {
	if in.MaterialName == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "material name is required")
	}
	if _, err := s.store.GetByID(ctx, recordID); err != nil {
		return nil, translateNotFound(err, "inventory not found")
	}

	m := &MaterialStock{
		RecordID:     recordID,
		MaterialName: in.MaterialName,
		AvailableQty: in.AvailableQty,
		ThresholdQty: in.ThresholdQty,
		CreatedAt:    requestcontext.Now(ctx),
	}
	created, err := s.store.CreateMaterial(ctx, m)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create material")
	}
	return created, nil
}

func (s *Service) UpdateMaterial(ctx context.Context, materialID int64, in MaterialUpdateInput) (*MaterialStock, error) {
	m, err := s.store.GetMaterialByID(ctx, materialID)
	if err != nil {
		return nil, translateNotFound(err, "material not found")
	}

	if in.MaterialName != "" {
		m.MaterialName = in.MaterialName
	}
	if in.AvailableQty != nil {
		m.AvailableQty = *in.AvailableQty
	}
	if in.ThresholdQty != nil {
		m.ThresholdQty = *in.ThresholdQty
	}

	updated, err := s.store.UpdateMaterial(ctx, m)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update material")
	}
	return updated, nil
}

func (s *Service) DeleteMaterial(ctx context.Context, materialID int64) (bool, error) {
	return s.store.DeleteMaterial(ctx, materialID)
}

// LowStock lists every material whose available quantity is below its
// threshold, across all records.
func (s *Service) LowStock(ctx context.Context) ([]MaterialStock, error) {
	return s.store.LowStock(ctx)
}

// AdjustMaterial applies a quantity delta, clamping at zero so stock never
// goes negative.
func (s *Service) AdjustMaterial(ctx context.Context, materialID int64, delta int) (*MaterialStock, error) {
	m, err := s.store.GetMaterialByID(ctx, materialID)
	if err != nil {
		return nil, translateNotFound(err, "material not found")
	}

	m.AvailableQty += delta
	if m.AvailableQty < 0 {
		m.AvailableQty = 0
	}

	updated, err := s.store.UpdateMaterial(ctx, m)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to adjust material")
	}
	return updated, nil
}

// EnsureRecord provisions an empty inventory record at the default location
// when the product has none yet. Called when a product is created.
func (s *Service) EnsureRecord(ctx context.Context, productID int64) error {
	records, err := s.store.GetByProductID(ctx, productID)
	if err != nil {
		return err
	}
	if len(records) > 0 {
		return nil
	}
	_, err = s.store.Create(ctx, &Record{
		ProductID: productID,
		Location:  DefaultLocation,
		CreatedAt: requestcontext.Now(ctx),
	})
	return err
}

// SyncMaterials reconciles every inventory record of the product against the
// given BOM material names:
//
//   - names in the BOM but not in the record are added at 0 available / 0
//     threshold
//   - names in the record but no longer in the BOM are deleted, dropping
//     whatever quantity they held
//   - names present in both keep their quantities
//
// The match is by material name, so renaming a BOM material is delete+add and
// silently loses the old line's quantity. Known gap: a stable material
// identifier would survive renames, but name-matching is the system's contract.
func (s *Service) SyncMaterials(ctx context.Context, productID int64, materialNames []string) error {
	records, err := s.store.GetByProductID(ctx, productID)
	if err != nil {
		return err
	}

	wanted := make(map[string]bool, len(materialNames))
	for _, name := range materialNames {
		wanted[name] = true
	}

	now := requestcontext.Now(ctx)
	for _, r := range records {
		have := make(map[string]bool, len(r.Materials))
		for _, m := range r.Materials {
			have[m.MaterialName] = true
			if !wanted[m.MaterialName] {
				if _, err := s.store.DeleteMaterial(ctx, m.ID); err != nil {
					return err
				}
			}
		}
		for _, name := range materialNames {
			if have[name] {
				continue
			}
			_, err := s.store.CreateMaterial(ctx, &MaterialStock{
				RecordID:     r.ID,
				MaterialName: name,
				AvailableQty: 0,
				ThresholdQty: 0,
				CreatedAt:    now,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func translateNotFound(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
}
