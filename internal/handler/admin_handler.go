package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/model"
	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/store"
	"github.com/Legendary90/erp-zen-fix-47-sub001/pkg/logger"
	"github.com/Legendary90/erp-zen-fix-47-sub001/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AccessRequest toggles a client's access gate
type AccessRequest struct {
	AccessStatus *bool `json:"access_status" validate:"required"`
}

// AdminHandler serves the admin console: listing client accounts and
// flipping their access gate.
type AdminHandler struct {
	store store.RowStore
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(rowStore store.RowStore) *AdminHandler {
	return &AdminHandler{store: rowStore}
}

// ListClients handles GET /api/admin/clients
func (h *AdminHandler) ListClients(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackStoreOperation("select_clients")(time.Now())

	var clients []model.Client
	err := h.store.Select(c.Request().Context(), store.TableClients, nil,
		store.Options{OrderBy: "client_id"}, &clients)
	if err != nil {
		log.Error("Failed to list clients", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve clients",
		})
	}

	log.Info("Clients retrieved", zap.Int("count", len(clients)))
	return c.JSON(http.StatusOK, clients)
}

// SetClientAccess handles PATCH /api/admin/clients/:clientID/access.
// Disabling access blocks future logins; an already-live session for the
// client is not revoked.
func (h *AdminHandler) SetClientAccess(c echo.Context) error {
	log := logger.FromContext(c)
	clientID := c.Param("clientID")

	var req AccessRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.AccessStatus == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "access_status is required",
		})
	}

	var client model.Client
	err := h.store.SelectOne(c.Request().Context(), store.TableClients, store.Filters{
		store.Eq("client_id", clientID),
	}, &client)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Client not found",
			})
		}
		log.Error("Failed to look up client",
			zap.String("client_id", clientID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to look up client",
		})
	}

	defer prometheus.TrackStoreOperation("update_client_access")(time.Now())

	err = h.store.Update(c.Request().Context(), store.TableClients, store.Filters{
		store.Eq("client_id", clientID),
	}, map[string]any{"access_status": *req.AccessStatus})
	if err != nil {
		log.Error("Failed to update client access",
			zap.String("client_id", clientID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update client access",
		})
	}

	log.Info("Client access updated",
		zap.String("client_id", clientID),
		zap.Bool("access_status", *req.AccessStatus))
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "Client access updated",
		"client_id":     clientID,
		"access_status": *req.AccessStatus,
	})
}
