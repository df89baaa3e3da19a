package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"shopfloor/internal/quality"
	"shopfloor/internal/workorder"
)

type fixture struct {
	router chi.Router
	orders *workorder.InMemory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	orders := workorder.NewInMemory()
	checks := quality.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := quality.NewService(checks, orders, nil, logger)

	router := chi.NewRouter()
	New(service, logger).Register(router)

	return &fixture{router: router, orders: orders}
}

func (f *fixture) seedOrder(t *testing.T, id string, status workorder.Status, quantity int) {
	t.Helper()
	require.NoError(t, f.orders.Create(context.Background(), &workorder.WorkOrder{
		ID:        id,
		ProductID: 1,
		Quantity:  quantity,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}))
}

func (f *fixture) do(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateQualityCheck(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t, "wo-1", workorder.StatusCompleted, 100)

	rec := f.do(t, http.MethodPost, "/quality-checks", map[string]any{
		"work_order_id": "wo-1",
		"accepted_qty":  92,
		"remarks":       "surface blemishes on 8 units",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var qc quality.QualityCheck
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&qc))
	require.Equal(t, 92, qc.SuccessRate)
	require.Equal(t, quality.ResultPass, qc.Result)
	require.Equal(t, 8, qc.RejectedQty)

	// The order reaches its terminal status.
	w, err := f.orders.GetByID(context.Background(), "wo-1")
	require.NoError(t, err)
	require.Equal(t, workorder.StatusQualityDone, w.Status)
}

func TestCreateQualityCheckConflict(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t, "wo-1", workorder.StatusCompleted, 10)

	rec := f.do(t, http.MethodPost, "/quality-checks", map[string]any{
		"work_order_id": "wo-1",
		"accepted_qty":  10,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/quality-checks", map[string]any{
		"work_order_id": "wo-1",
		"accepted_qty":  10,
	})
	// Second attempt fails the status guard before the duplicate check.
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateQualityCheckWrongState(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t, "wo-1", workorder.StatusInProgress, 10)

	rec := f.do(t, http.MethodPost, "/quality-checks", map[string]any{
		"work_order_id": "wo-1",
		"accepted_qty":  10,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetByWorkOrder(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t, "wo-1", workorder.StatusCompleted, 10)

	rec := f.do(t, http.MethodPost, "/quality-checks", map[string]any{
		"work_order_id": "wo-1",
		"accepted_qty":  9,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/quality-checks/work-order/wo-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var qc quality.QualityCheck
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&qc))
	require.Equal(t, "wo-1", qc.WorkOrderID)
	require.Equal(t, quality.ResultPass, qc.Result) // 9/10 rounds to 90

	rec = f.do(t, http.MethodGet, "/quality-checks/work-order/wo-none", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListByResultFilter(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t, "wo-pass", workorder.StatusCompleted, 100)
	f.seedOrder(t, "wo-fail", workorder.StatusCompleted, 100)

	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/quality-checks", map[string]any{
		"work_order_id": "wo-pass", "accepted_qty": 95,
	}).Code)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/quality-checks", map[string]any{
		"work_order_id": "wo-fail", "accepted_qty": 40,
	}).Code)

	rec := f.do(t, http.MethodGet, "/quality-checks?result=FAIL", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var checks []quality.QualityCheck
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&checks))
	require.Len(t, checks, 1)
	require.Equal(t, "wo-fail", checks[0].WorkOrderID)

	rec = f.do(t, http.MethodGet, "/quality-checks?result=MAYBE", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteQualityCheck(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t, "wo-1", workorder.StatusCompleted, 10)

	rec := f.do(t, http.MethodPost, "/quality-checks", map[string]any{
		"work_order_id": "wo-1",
		"accepted_qty":  10,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var qc quality.QualityCheck
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&qc))

	rec = f.do(t, http.MethodDelete, "/quality-checks/"+qc.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodDelete, "/quality-checks/"+qc.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
