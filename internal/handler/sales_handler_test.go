package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/model"
	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tenantContext(method, path, body string, clientID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("client_id", clientID)
	return c, rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
}

func TestCreateAndListSales(t *testing.T) {
	mem := store.NewMemoryStore()
	h := NewSalesHandler(mem)

	c, rec := tenantContext(http.MethodPost, "/api/sales", `{"description":"Invoice 17","customer":"Globex","amount":250.5,"paid":true}`, "CL-000001")
	require.NoError(t, h.CreateSale(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	// A record owned by another tenant must never show up
	mem.Seed(store.TableSales, model.SaleRecord{
		ClientID: "CL-000002", Description: "other tenant", Amount: 99, SaleDate: time.Now(),
	})

	c, rec = tenantContext(http.MethodGet, "/api/sales", "", "CL-000001")
	require.NoError(t, h.ListSales(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var sales []model.SaleRecord
	decodeInto(t, rec, &sales)
	require.Len(t, sales, 1)
	assert.Equal(t, "Invoice 17", sales[0].Description)
	assert.Equal(t, "CL-000001", sales[0].ClientID)
}

func TestCreateSaleValidation(t *testing.T) {
	h := NewSalesHandler(store.NewMemoryStore())

	c, rec := tenantContext(http.MethodPost, "/api/sales", `{"description":"free","amount":0}`, "CL-000001")
	require.NoError(t, h.CreateSale(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardSummary(t *testing.T) {
	mem := store.NewMemoryStore()
	mem.Seed(store.TableSales, model.SaleRecord{ClientID: "CL-000001", Amount: 100, Paid: true})
	mem.Seed(store.TableSales, model.SaleRecord{ClientID: "CL-000001", Amount: 40, Paid: false})
	mem.Seed(store.TableSales, model.SaleRecord{ClientID: "CL-000002", Amount: 999, Paid: true})

	h := NewDashboardHandler(mem)

	c, rec := tenantContext(http.MethodGet, "/api/dashboard", "", "CL-000001")
	require.NoError(t, h.Summary(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, float64(2), body["sales_count"])
	assert.Equal(t, 140.0, body["total_sales"])
	assert.Equal(t, 100.0, body["total_received"])
	assert.Equal(t, 40.0, body["total_outstanding"])
}
