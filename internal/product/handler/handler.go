package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"shopfloor/internal/product"
	dErrors "shopfloor/pkg/domain-errors"
	"shopfloor/pkg/platform/httputil"
	"shopfloor/pkg/requestcontext"
)

// Service defines the product and BOM operations this handler exposes.
type Service interface {
	List(ctx context.Context, search string) ([]*product.Product, error)
	Get(ctx context.Context, id int64) (*product.Product, error)
	Create(ctx context.Context, in product.CreateInput) (*product.Product, error)
	Update(ctx context.Context, id int64, in product.UpdateInput) (*product.Product, error)
	Delete(ctx context.Context, id int64) (bool, error)
	BOMs(ctx context.Context, productID int64) ([]product.BOMLine, error)
	CreateBOM(ctx context.Context, productID int64, in product.BOMInput) (*product.BOMLine, error)
	UpdateBOM(ctx context.Context, bomID int64, in product.BOMUpdateInput) (*product.BOMLine, error)
	DeleteBOM(ctx context.Context, bomID int64) (bool, error)
	ReplaceBOMs(ctx context.Context, productID int64, inputs []product.BOMInput) ([]product.BOMLine, error)
}

// ProductRequest is the payload for creating or patching a product.
type ProductRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

// BOMRequest is the payload for creating or replacing a BOM line.
type BOMRequest struct {
	MaterialName    string `json:"material_name"`
	QuantityPerUnit int    `json:"quantity_per_unit"`
}

// BOMPatchRequest is the payload for patching a BOM line.
type BOMPatchRequest struct {
	MaterialName    string `json:"material_name"`
	QuantityPerUnit *int   `json:"quantity_per_unit"`
}

// Handler wires product and BOM endpoints to the product service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts product and BOM endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Put("/", h.HandleUpdate)
			r.Delete("/", h.HandleDelete)
			r.Get("/bom", h.HandleListBOMs)
			r.Post("/bom", h.HandleCreateBOM)
			r.Put("/bom", h.HandleReplaceBOMs)
		})
	})
	r.Route("/bom/{bomID}", func(r chi.Router) {
		r.Put("/", h.HandleUpdateBOM)
		r.Delete("/", h.HandleDeleteBOM)
	})
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid numeric identifier")
	}
	return id, nil
}

// HandleList handles GET /products, optionally filtered by ?search=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, products)
}

// HandleGet handles GET /products/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

// HandleCreate handles POST /products.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[ProductRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, err := h.service.Create(ctx, product.CreateInput{
		Name:     req.Name,
		Category: req.Category,
		Status:   product.Status(req.Status),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "product created",
		"request_id", requestID,
		"product_id", p.ID,
		"category", p.Category,
	)
	httputil.WriteJSON(w, http.StatusCreated, p)
}

// HandleUpdate handles PUT /products/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.Decode[ProductRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	p, err := h.service.Update(ctx, id, product.UpdateInput{
		Name:     req.Name,
		Category: req.Category,
		Status:   product.Status(req.Status),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

// HandleDelete handles DELETE /products/{id}.
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
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "product not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListBOMs handles GET /products/{id}/bom.
func (h *Handler) HandleListBOMs(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	lines, err := h.service.BOMs(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, lines)
}

// HandleCreateBOM handles POST /products/{id}/bom.
func (h *Handler) HandleCreateBOM(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.Decode[BOMRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	line, err := h.service.CreateBOM(ctx, id, product.BOMInput{
		MaterialName:    req.MaterialName,
		QuantityPerUnit: req.QuantityPerUnit,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, line)
}

// HandleReplaceBOMs handles PUT /products/{id}/bom, replacing the whole list.
func (h *Handler) HandleReplaceBOMs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	reqs, ok := httputil.Decode[[]BOMRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	inputs := make([]product.BOMInput, 0, len(reqs))
	for _, req := range reqs {
		inputs = append(inputs, product.BOMInput{
			MaterialName:    req.MaterialName,
			QuantityPerUnit: req.QuantityPerUnit,
		})
	}

	lines, err := h.service.ReplaceBOMs(ctx, id, inputs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, lines)
}

// HandleUpdateBOM handles PUT /bom/{bomID}.
func (h *Handler) HandleUpdateBOM(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bomID, err := idParam(r, "bomID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.Decode[BOMPatchRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	line, err := h.service.UpdateBOM(ctx, bomID, product.BOMUpdateInput{
		MaterialName:    req.MaterialName,
		QuantityPerUnit: req.QuantityPerUnit,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, line)
}

// HandleDeleteBOM handles DELETE /bom/{bomID}.
func (h *Handler) HandleDeleteBOM(w http.ResponseWriter, r *http.Request) {
	bomID, err := idParam(r, "bomID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	deleted, err := h.service.DeleteBOM(r.Context(), bomID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !deleted {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "bom line not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
