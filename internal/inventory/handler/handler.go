package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"shopfloor/internal/inventory"
	dErrors "shopfloor/pkg/domain-errors"
	"shopfloor/pkg/platform/httputil"
	"shopfloor/pkg/requestcontext"
)

// Service defines the inventory operations this handler exposes.
type Service interface {
	List(ctx context.Context) ([]*inventory.Record, error)
	Get(ctx context.Context, id int64) (*inventory.Record, error)
	ListByProduct(ctx context.Context, productID int64) ([]*inventory.Record, error)
	Create(ctx context.Context, in inventory.CreateInput) (*inventory.Record, error)
	UpdateLocation(ctx context.Context, id int64, location string) (*inventory.Record, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Materials(ctx context.Context, recordID int64) ([]inventory.MaterialStock, error)
	CreateMaterial(ctx context.Context, recordID int64, in inventory.MaterialInput) (*inventory.MaterialStock, error)
	UpdateMaterial(ctx context.Context, materialID int64, in inventory.MaterialUpdateInput) (*inventory.MaterialStock, error)
	DeleteMaterial(ctx context.Context, materialID int64) (bool, error)
	AdjustMaterial(ctx context.Context, materialID int64, delta int) (*inventory.MaterialStock, error)
	LowStock(ctx context.Context) ([]inventory.MaterialStock, error)
}

// RecordRequest is the payload for creating an inventory record.
type RecordRequest struct {
	ProductID int64             `json:"product_id"`
	Location  string            `json:"location"`
	Materials []MaterialRequest `json:"materials,omitempty"`
}

// MaterialRequest is the payload for creating a material stock entry.
type MaterialRequest struct {
	MaterialName string `json:"material_name"`
	AvailableQty int    `json:"available_qty"`
	ThresholdQty int    `json:"threshold_qty"`
}

// MaterialPatchRequest is the payload for patching a material stock entry.
type MaterialPatchRequest struct {
	MaterialName string `json:"material_name"`
	AvailableQty *int   `json:"available_qty"`
	ThresholdQty *int   `json:"threshold_qty"`
}

// LocationRequest is the payload for relocating a record.
type LocationRequest struct {
	Location string `json:"location"`
}

// AdjustRequest is the payload for a relative quantity adjustment.
type AdjustRequest struct {
	Delta int `json:"delta"`
}

// Handler wires inventory endpoints to the inventory service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts inventory endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/inventory", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/low-stock", h.HandleLowStock)
		r.Get("/product/{productID}", h.HandleListByProduct)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Put("/", h.HandleUpdateLocation)
			r.Delete("/", h.HandleDelete)
			r.Get("/materials", h.HandleListMaterials)
			r.Post("/materials", h.HandleCreateMaterial)
		})
	})
	r.Route("/materials/{materialID}", func(r chi.Router) {
		r.Put("/", h.HandleUpdateMaterial)
		r.Delete("/", h.HandleDeleteMaterial)
		r.Post("/adjust", h.HandleAdjustMaterial)
	})
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid numeric identifier")
	}
	return id, nil
}

// HandleList handles GET /inventory.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

// HandleGet handles GET /inventory/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

// HandleListByProduct handles GET /inventory/product/{productID}.
func (h *Handler) HandleListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := idParam(r, "productID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	records, err := h.service.ListByProduct(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

// HandleCreate handles POST /inventory.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[RecordRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	in := inventory.CreateInput{
		ProductID: req.ProductID,
		Location:  req.Location,
	}
	for _, m := range req.Materials {
		in.Materials = append(in.Materials, inventory.MaterialInput{
			MaterialName: m.MaterialName,
			AvailableQty: m.AvailableQty,
			ThresholdQty: m.ThresholdQty,
		})
	}

	rec, err := h.service.Create(ctx, in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "inventory record created",
		"request_id", requestID,
		"inventory_id", rec.ID,
		"product_id", rec.ProductID,
		"location", rec.Location,
	)
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

// HandleUpdateLocation handles PUT /inventory/{id}.
func (h *Handler) HandleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.Decode[LocationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	rec, err := h.service.UpdateLocation(ctx, id, req.Location)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

// HandleDelete handles DELETE /inventory/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !deleted {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "inventory record not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListMaterials handles GET /inventory/{id}/materials.
func (h *Handler) HandleListMaterials(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	materials, err := h.service.Materials(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, materials)
}

// HandleCreateMaterial handles POST /inventory/{id}/materials.
func (h *Handler) HandleCreateMaterial(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.Decode[MaterialRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	m, err := h.service.CreateMaterial(ctx, id, inventory.MaterialInput{
		MaterialName: req.MaterialName,
		AvailableQty: req.AvailableQty,
		ThresholdQty: req.ThresholdQty,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, m)
}

// HandleUpdateMaterial handles PUT /materials/{materialID}.
func (h *Handler) HandleUpdateMaterial(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	materialID, err := idParam(r, "materialID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.Decode[MaterialPatchRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	m, err := h.service.UpdateMaterial(ctx, materialID, inventory.MaterialUpdateInput{
		MaterialName: req.MaterialName,
		AvailableQty: req.AvailableQty,
		ThresholdQty: req.ThresholdQty,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

// HandleDeleteMaterial handles DELETE /materials/{materialID}.
func (h *Handler) HandleDeleteMaterial(w http.ResponseWriter, r *http.Request) {
	materialID, err := idParam(r, "materialID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	deleted, err := h.service.DeleteMaterial(r.Context(), materialID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !deleted {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "material not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAdjustMaterial handles POST /materials/{materialID}/adjust.
func (h *Handler) HandleAdjustMaterial(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	materialID, err := idParam(r, "materialID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.Decode[AdjustRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	m, err := h.service.AdjustMaterial(ctx, materialID, req.Delta)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

// HandleLowStock handles GET /inventory/low-stock.
func (h *Handler) HandleLowStock(w http.ResponseWriter, r *http.Request) {
	materials, err := h.service.LowStock(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, materials)
}
