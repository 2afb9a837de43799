package handler

import (
	"net/http"
	"time"

	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/model"
	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/store"
	"github.com/Legendary90/erp-zen-fix-47-sub001/pkg/logger"
	"github.com/Legendary90/erp-zen-fix-47-sub001/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SaleRequest defines the structure for sale creation requests
type SaleRequest struct {
	Description string    `json:"description" validate:"required"`
	Customer    string    `json:"customer"`
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	Paid        bool      `json:"paid"`
	SaleDate    time.Time `json:"sale_date"`
}

// SalesHandler serves the tenant-scoped sales records. Every query is
// filtered by the client_id the guard put into the request context.
type SalesHandler struct {
	store store.RowStore
}

// NewSalesHandler creates a SalesHandler.
func NewSalesHandler(rowStore store.RowStore) *SalesHandler {
	return &SalesHandler{store: rowStore}
}

// ListSales handles GET /api/sales
func (h *SalesHandler) ListSales(c echo.Context) error {
	log := logger.FromContext(c)
	clientID, _ := c.Get("client_id").(string)

	defer prometheus.TrackStoreOperation("select_sales")(time.Now())

	var sales []model.SaleRecord
	err := h.store.Select(c.Request().Context(), store.TableSales, store.Filters{
		store.Eq("client_id", clientID),
	}, store.Options{OrderBy: "sale_date", Desc: true}, &sales)
	if err != nil {
		log.Error("Failed to list sales",
			zap.String("client_id", clientID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve sales",
		})
	}

	log.Info("Sales retrieved", zap.String("client_id", clientID), zap.Int("count", len(sales)))
	return c.JSON(http.StatusOK, sales)
}

// CreateSale handles POST /api/sales
func (h *SalesHandler) CreateSale(c echo.Context) error {
	log := logger.FromContext(c)
	clientID, _ := c.Get("client_id").(string)

	var req SaleRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.Description == "" || req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Description and a positive amount are required",
		})
	}

	saleDate := req.SaleDate
	if saleDate.IsZero() {
		saleDate = time.Now()
	}

	sale := model.SaleRecord{
		ClientID:    clientID,
		Description: req.Description,
		Customer:    req.Customer,
		Amount:      req.Amount,
		Paid:        req.Paid,
		SaleDate:    saleDate,
	}

	defer prometheus.TrackStoreOperation("insert_sale")(time.Now())

	if err := h.store.Insert(c.Request().Context(), store.TableSales, &sale); err != nil {
		log.Error("Failed to create sale",
			zap.String("client_id", clientID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create sale",
		})
	}

	log.Info("Sale created",
		zap.String("client_id", clientID),
		zap.Float64("amount", sale.Amount))
	return c.JSON(http.StatusCreated, sale)
}
