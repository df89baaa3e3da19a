package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shopfloor/internal/workorder"
	dErrors "shopfloor/pkg/domain-errors"
	"shopfloor/pkg/platform/httputil"
	"shopfloor/pkg/requestcontext"
)

// Service defines the work order operations this handler exposes.
type Service interface {
	List(ctx context.Context) ([]*workorder.WorkOrder, error)
	Get(ctx context.Context, id string) (*workorder.WorkOrder, error)
	ListByStatus(ctx context.Context, status workorder.Status) ([]*workorder.WorkOrder, error)
	Create(ctx context.Context, in workorder.CreateInput) (*workorder.WorkOrder, error)
	CreateBatch(ctx context.Context, in workorder.CreateInput, count int) ([]*workorder.WorkOrder, error)
	AllocateMaterials(ctx context.Context, id string) (*workorder.WorkOrder, error)
	Complete(ctx context.Context, id string) (*workorder.WorkOrder, error)
	ApproveQuality(ctx context.Context, id string) (*workorder.WorkOrder, error)
	AdminOverride(ctx context.Context, id string, in workorder.OverrideInput) (*workorder.WorkOrder, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Handler wires work order endpoints to the engine service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts work order endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/work-orders", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Post("/batch", h.HandleCreateBatch)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Put("/", h.HandleOverride)
			r.Delete("/", h.HandleDelete)
			r.Post("/allocate", h.HandleAllocate)
			r.Post("/complete", h.HandleComplete)
			r.Post("/approve-quality", h.HandleApproveQuality)
		})
	})
}

// HandleList handles GET /work-orders, optionally filtered by ?status=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		orders []*workorder.WorkOrder
		err    error
	)
	if raw := r.URL.Query().Get("status"); raw != "" {
		orders, err = h.service.ListByStatus(ctx, workorder.Status(raw))
	} else {
		orders, err = h.service.List(ctx)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, orders)
}

// HandleGet handles GET /work-orders/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, order)
}

// HandleCreate handles POST /work-orders.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	order, err := h.service.Create(ctx, req.Input())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "work order created",
		"request_id", requestID,
		"work_order_id", order.ID,
		"product_id", order.ProductID,
	)
	httputil.WriteJSON(w, http.StatusCreated, order)
}

// HandleCreateBatch handles POST /work-orders/batch.
func (h *Handler) HandleCreateBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.Decode[BatchCreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	orders, err := h.service.CreateBatch(ctx, req.Input(), req.Count)
	if err != nil {
		// Partial batches are not rolled back; report what was created.
		if len(orders) > 0 {
			h.logger.ErrorContext(ctx, "batch creation failed partway",
				"request_id", requestID,
				"created", len(orders),
				"requested", req.Count,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "work order batch created",
		"request_id", requestID,
		"count", len(orders),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, orders)
}

// HandleAllocate handles POST /work-orders/{id}/allocate.
func (h *Handler) HandleAllocate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	order, err := h.service.AllocateMaterials(ctx, id)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) && !dErrors.HasCode(err, dErrors.CodeInvalidState) {
			h.logger.ErrorContext(ctx, "material allocation failed",
				"request_id", requestcontext.RequestID(ctx),
				"work_order_id", id,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, order)
}

// HandleComplete handles POST /work-orders/{id}/complete.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, order)
}

// HandleApproveQuality handles POST /work-orders/{id}/approve-quality.
func (h *Handler) HandleApproveQuality(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.ApproveQuality(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, order)
}

// HandleOverride handles PUT /work-orders/{id}, the administrative patch.
func (h *Handler) HandleOverride(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[OverrideRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	order, err := h.service.AdminOverride(ctx, chi.URLParam(r, "id"), req.Input())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, order)
}

// HandleDelete handles DELETE /work-orders/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !deleted {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "work order not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
