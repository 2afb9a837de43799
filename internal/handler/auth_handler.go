package handler

import (
	"net/http"

	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/credential"
	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/notify"
	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/session"
	"github.com/Legendary90/erp-zen-fix-47-sub001/pkg/logger"
	"github.com/Legendary90/erp-zen-fix-47-sub001/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LoginRequest defines the structure for client and admin login requests
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest defines the structure for client registration requests
type RegisterRequest struct {
	CompanyName string `json:"company_name" validate:"required"`
	Password    string `json:"password" validate:"required"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

// LogoutRequest selects which session kinds to clear; empty clears both
type LogoutRequest struct {
	Kinds []string `json:"kinds"`
}

// AuthHandler exposes the session lifecycle over HTTP.
type AuthHandler struct {
	sessions *session.Store
	feed     *notify.Feed
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(sessions *session.Store, feed *notify.Feed) *AuthHandler {
	return &AuthHandler{sessions: sessions, feed: feed}
}

// ClientLogin handles POST /auth/client/login
func (h *AuthHandler) ClientLogin(c echo.Context) error {
	log := logger.FromContext(c)

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Username and password are required",
		})
	}

	log.Info("Client login attempt", zap.String("username", req.Username))

	ok := h.sessions.LoginAsClient(c.Request().Context(), req.Username, req.Password)
	prometheus.RecordLogin("client", ok)
	if !ok {
		prometheus.RecordAuthError("login_failure")
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": credential.ErrCredentialRejected.Error(),
		})
	}

	prometheus.SetActiveSession("client", true)
	log.Info("Client login successful", zap.String("client_id", h.sessions.ClientID()))
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Login successful",
		"client_id": h.sessions.ClientID(),
		"session":   h.sessions.ClientSession(),
	})
}

// ClientRegister handles POST /auth/client/register. A successful
// registration does not log the account in.
func (h *AuthHandler) ClientRegister(c echo.Context) error {
	log := logger.FromContext(c)

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.CompanyName == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Company name and password are required",
		})
	}

	log.Info("Client registration attempt", zap.String("company_name", req.CompanyName))

	ok := h.sessions.RegisterClient(c.Request().Context(), credential.RegisterParams{
		CompanyName: req.CompanyName,
		Password:    req.Password,
		Email:       req.Email,
		Phone:       req.Phone,
	})
	if !ok {
		prometheus.RecordAuthError("register_failure")
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error": "Registration failed",
		})
	}

	prometheus.RegisterCounter.Inc()
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Account created. Please log in.",
	})
}

// AdminLogin handles POST /auth/admin/login
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	log := logger.FromContext(c)

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Username and password are required",
		})
	}

	log.Info("Admin login attempt", zap.String("username", req.Username))

	ok := h.sessions.LoginAsAdmin(c.Request().Context(), req.Username, req.Password)
	prometheus.RecordLogin("admin", ok)
	if !ok {
		prometheus.RecordAuthError("admin_login_failure")
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": credential.ErrCredentialRejected.Error(),
		})
	}

	prometheus.SetActiveSession("admin", true)
	log.Info("Admin login successful", zap.String("admin_id", h.sessions.AdminID()))
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Login successful",
		"admin_id": h.sessions.AdminID(),
		"session":  h.sessions.AdminSession(),
	})
}

// Logout handles POST /auth/logout. The body may name which kinds to clear;
// an empty body clears both. Logging out with nothing live is still a 200.
func (h *AuthHandler) Logout(c echo.Context) error {
	log := logger.FromContext(c)

	var req LogoutRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var kinds []session.Kind
	for _, k := range req.Kinds {
		switch session.Kind(k) {
		case session.KindClient, session.KindAdmin:
			kinds = append(kinds, session.Kind(k))
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "Unknown session kind: " + k,
			})
		}
	}

	h.sessions.Logout(kinds...)
	prometheus.LogoutCounter.Inc()
	prometheus.SetActiveSession("client", h.sessions.ClientSession() != "")
	prometheus.SetActiveSession("admin", h.sessions.AdminSession() != "")

	log.Info("Logout", zap.Strings("kinds", req.Kinds))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Logged out",
	})
}

// SessionInfo handles GET /auth/session
func (h *AuthHandler) SessionInfo(c echo.Context) error {
	response := echo.Map{
		"loading":   h.sessions.Loading(),
		"client_id": h.sessions.ClientID(),
		"admin_id":  h.sessions.AdminID(),
		"client":    h.sessions.ClientSession() != "",
		"admin":     h.sessions.AdminSession() != "",
	}

	if client := h.sessions.CurrentClient(); client != nil {
		response["company_name"] = client.CompanyName
	}

	return c.JSON(http.StatusOK, response)
}

// Notifications handles GET /auth/notifications
func (h *AuthHandler) Notifications(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"notifications": h.feed.Recent(),
	})
}
