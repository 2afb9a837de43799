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

// DashboardHandler aggregates the tenant's sales figures for the landing
// page.
type DashboardHandler struct {
	store store.RowStore
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(rowStore store.RowStore) *DashboardHandler {
	return &DashboardHandler{store: rowStore}
}

// Summary handles GET /api/dashboard
func (h *DashboardHandler) Summary(c echo.Context) error {
	log := logger.FromContext(c)
	clientID, _ := c.Get("client_id").(string)

	defer prometheus.TrackStoreOperation("dashboard_summary")(time.Now())

	var sales []model.SaleRecord
	err := h.store.Select(c.Request().Context(), store.TableSales, store.Filters{
		store.Eq("client_id", clientID),
	}, store.Options{}, &sales)
	if err != nil {
		log.Error("Failed to load dashboard data",
			zap.String("client_id", clientID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to load dashboard data",
		})
	}

	var total, received float64
	for _, sale := range sales {
		total += sale.Amount
		if sale.Paid {
			received += sale.Amount
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"client_id":         clientID,
		"sales_count":       len(sales),
		"total_sales":       total,
		"total_received":    received,
		"total_outstanding": total - received,
	})
}
