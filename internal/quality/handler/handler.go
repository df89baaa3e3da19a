package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopfloor/internal/quality"
	dErrors "shopfloor/pkg/domain-errors"
	"shopfloor/pkg/platform/httputil"
	"shopfloor/pkg/requestcontext"
)

// Service defines the quality check operations this handler exposes.
type Service interface {
	List(ctx context.Context) ([]*quality.QualityCheck, error)
	Get(ctx context.Context, id string) (*quality.QualityCheck, error)
	GetByWorkOrder(ctx context.Context, workOrderID string) (*quality.QualityCheck, error)
	ListByResult(ctx context.Context, result quality.Result) ([]*quality.QualityCheck, error)
	Create(ctx context.Context, in quality.CreateInput) (*quality.QualityCheck, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// CreateRequest is the payload for POST /quality-checks.
type CreateRequest struct {
	WorkOrderID string `json:"work_order_id"`
	AcceptedQty int    `json:"accepted_qty"`
	Remarks     string `json:"remarks,omitempty"`
}

// Handler wires quality check endpoints to the engine service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts quality check endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/quality-checks", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/work-order/{workOrderID}", h.HandleGetByWorkOrder)
		r.Get("/{id}", h.HandleGet)
		r.Delete("/{id}", h.HandleDelete)
	})
}

// HandleList handles GET /quality-checks, optionally filtered by ?result=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		checks []*quality.QualityCheck
		err    error
	)
	if raw := r.URL.Query().Get("result"); raw != "" {
		checks, err = h.service.ListByResult(ctx, quality.Result(raw))
	} else {
		checks, err = h.service.List(ctx)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, checks)
}

// HandleGet handles GET /quality-checks/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	qc, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, qc)
}

// HandleGetByWorkOrder handles GET /quality-checks/work-order/{workOrderID}.
func (h *Handler) HandleGetByWorkOrder(w http.ResponseWriter, r *http.Request) {
	qc, err := h.service.GetByWorkOrder(r.Context(), chi.URLParam(r, "workOrderID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, qc)
}

// HandleCreate handles POST /quality-checks.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	qc, err := h.service.Create(ctx, quality.CreateInput{
		WorkOrderID: req.WorkOrderID,
		AcceptedQty: req.AcceptedQty,
		Remarks:     req.Remarks,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "quality check created",
		"request_id", requestID,
		"qc_id", qc.ID,
		"work_order_id", qc.WorkOrderID,
		"result", qc.Result,
	)
	httputil.WriteJSON(w, http.StatusCreated, qc)
}

// HandleDelete handles DELETE /quality-checks/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !deleted {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "quality check not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
