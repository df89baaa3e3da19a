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

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"shopfloor/internal/inventory"
	"shopfloor/internal/product"
	"shopfloor/internal/workorder"
)

type fixture struct {
	router    chi.Router
	productID int64
	inv       *inventory.InMemory
	recordID  int64
}

// newFixture wires the real engine service against in-memory stores, with one
// product carrying a two-bolts-per-unit BOM and a stocked inventory record.
func newFixture(t *testing.T, availableBolts int) *fixture {
	t.Helper()
	ctx := context.Background()

	products := product.NewInMemory()
	inv := inventory.NewInMemory()
	orders := workorder.NewInMemory()

	p, err := products.Create(ctx, &product.Product{
		Name:     "Gearbox Assembly",
		Category: "Mechanical",
		Status:   product.StatusActive,
	})
	require.NoError(t, err)
	_, err = products.CreateBOM(ctx, &product.BOMLine{
		ProductID:       p.ID,
		MaterialName:    "Bolt",
		QuantityPerUnit: 2,
	})
	require.NoError(t, err)

	rec, err := inv.Create(ctx, &inventory.Record{ProductID: p.ID, Location: inventory.DefaultLocation})
	require.NoError(t, err)
	_, err = inv.CreateMaterial(ctx, &inventory.MaterialStock{
		RecordID:     rec.ID,
		MaterialName: "Bolt",
		AvailableQty: availableBolts,
		ThresholdQty: 5,
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := workorder.NewService(orders, products, inv, nil, logger)

	router := chi.NewRouter()
	New(service, logger).Register(router)

	return &fixture{router: router, productID: p.ID, inv: inv, recordID: rec.ID}
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

func (f *fixture) createOrder(t *testing.T, quantity int) workorder.WorkOrder {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/work-orders", map[string]any{
		"product_id": f.productID,
		"quantity":   quantity,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var w workorder.WorkOrder
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&w))
	return w
}

func TestCreateWorkOrder(t *testing.T) {
	f := newFixture(t, 100)

	w := f.createOrder(t, 10)
	require.NotEmpty(t, w.ID)
	require.Equal(t, workorder.StatusPlanned, w.Status)

	rec := f.do(t, http.MethodGet, "/work-orders/"+w.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateWorkOrderUnknownProduct(t *testing.T) {
	f := newFixture(t, 100)

	rec := f.do(t, http.MethodPost, "/work-orders", map[string]any{
		"product_id": 9999,
		"quantity":   1,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatchCreate(t *testing.T) {
	f := newFixture(t, 100)

	rec := f.do(t, http.MethodPost, "/work-orders/batch", map[string]any{
		"product_id": f.productID,
		"quantity":   2,
		"count":      4,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var orders []workorder.WorkOrder
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&orders))
	require.Len(t, orders, 4)
}

func TestAllocationLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t, 25)
	w := f.createOrder(t, 10)

	// PLANNED -> IN_PROGRESS, deducting 20 of 25 bolts.
	rec := f.do(t, http.MethodPost, "/work-orders/"+w.ID+"/allocate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var allocated workorder.WorkOrder
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&allocated))
	require.Equal(t, workorder.StatusInProgress, allocated.Status)

	rec = f.do(t, http.MethodPost, "/work-orders/"+w.ID+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/work-orders/"+w.ID+"/approve-quality", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var done workorder.WorkOrder
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&done))
	require.Equal(t, workorder.StatusQualityDone, done.Status)
}

func TestAllocateInsufficientStock(t *testing.T) {
	f := newFixture(t, 15)
	w := f.createOrder(t, 10) // needs 20 bolts

	rec := f.do(t, http.MethodPost, "/work-orders/"+w.ID+"/allocate", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	require.Equal(t, "invalid_state", errResp.Error)
	require.Contains(t, errResp.Description, "insufficient inventory for Bolt")

	// Order remains PLANNED and can be retried after a restock.
	getRec := f.do(t, http.MethodGet, "/work-orders/"+w.ID, nil)
	var stored workorder.WorkOrder
	require.NoError(t, json.NewDecoder(getRec.Body).Decode(&stored))
	require.Equal(t, workorder.StatusPlanned, stored.Status)
}

func TestCompleteRequiresInProgress(t *testing.T) {
	f := newFixture(t, 100)
	w := f.createOrder(t, 1)

	rec := f.do(t, http.MethodPost, "/work-orders/"+w.ID+"/complete", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFilter(t *testing.T) {
	f := newFixture(t, 100)
	w1 := f.createOrder(t, 1)
	f.createOrder(t, 1)

	rec := f.do(t, http.MethodPost, "/work-orders/"+w1.ID+"/allocate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	listRec := f.do(t, http.MethodGet, "/work-orders?status=IN_PROGRESS", nil)
	require.Equal(t, http.StatusOK, listRec.Code)
	var orders []workorder.WorkOrder
	require.NoError(t, json.NewDecoder(listRec.Body).Decode(&orders))
	require.Len(t, orders, 1)
	require.Equal(t, w1.ID, orders[0].ID)

	badRec := f.do(t, http.MethodGet, "/work-orders?status=SHIPPED", nil)
	require.Equal(t, http.StatusBadRequest, badRec.Code)
}

func TestAdminOverridePatch(t *testing.T) {
	f := newFixture(t, 100)
	w := f.createOrder(t, 1)

	rec := f.do(t, http.MethodPut, "/work-orders/"+w.ID, map[string]any{
		"status":   "COMPLETED",
		"quantity": 7,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var patched workorder.WorkOrder
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&patched))
	require.Equal(t, workorder.StatusCompleted, patched.Status)
	require.Equal(t, 7, patched.Quantity)
}

func TestDeleteWorkOrder(t *testing.T) {
	f := newFixture(t, 100)
	w := f.createOrder(t, 1)

	rec := f.do(t, http.MethodDelete, "/work-orders/"+w.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodDelete, "/work-orders/"+w.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
