package main

import (
	"context"

	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/credential"
	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/handler"
	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/middleware"
	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/notify"
	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/session"
	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/store"
	"github.com/Legendary90/erp-zen-fix-47-sub001/pkg/config"
	"github.com/Legendary90/erp-zen-fix-47-sub001/pkg/database"
	"github.com/Legendary90/erp-zen-fix-47-sub001/pkg/logger"
	"github.com/Legendary90/erp-zen-fix-47-sub001/pkg/statestore"
	"github.com/Legendary90/erp-zen-fix-47-sub001/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting ERP service...", cfg.LogConfig()...)

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Open the durable session mirror
	states, err := statestore.Open(cfg.Session.StatePath)
	if err != nil {
		log.Fatal("Failed to open session state store",
			zap.String("path", cfg.Session.StatePath),
			zap.Error(err))
	}
	defer states.Close()
	log.Info("Session state store opened", zap.String("path", states.Path()))

	rowStore := store.NewGormStore(database.GetDB())

	// Seed the built-in admin account when none exists yet
	if err := credential.SeedAdmin(context.Background(), rowStore,
		cfg.Admin.Username, cfg.Admin.Password, log); err != nil {
		log.Fatal("Failed to seed admin account", zap.Error(err))
	}

	feed := notify.NewFeed(50, log)
	verifier := credential.NewVerifier(rowStore, log)
	sessions := session.New(verifier, states, feed, log)

	// Repopulate sessions from the mirror before the guard sees traffic
	sessions.Restore()
	prometheus.SetActiveSession("client", sessions.ClientSession() != "")
	prometheus.SetActiveSession("admin", sessions.AdminSession() != "")

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	authHandler := handler.NewAuthHandler(sessions, feed)
	salesHandler := handler.NewSalesHandler(rowStore)
	dashboardHandler := handler.NewDashboardHandler(rowStore)
	adminHandler := handler.NewAdminHandler(rowStore)

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	// Session lifecycle routes
	entryRoute := cfg.Session.AuthEntryRoute
	auth := e.Group("/auth")
	auth.POST("/client/login", authHandler.ClientLogin)
	auth.POST("/client/register", authHandler.ClientRegister)
	auth.POST("/admin/login", authHandler.AdminLogin)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/session", authHandler.SessionInfo)
	auth.GET("/notifications", authHandler.Notifications)

	// Client API routes - require a live client session
	api := e.Group("/api")
	api.Use(middleware.RequireClient(sessions, entryRoute))
	api.GET("/sales", salesHandler.ListSales)
	api.POST("/sales", salesHandler.CreateSale)
	api.GET("/dashboard", dashboardHandler.Summary)

	// Admin routes - require a live admin session
	admin := e.Group("/api/admin")
	admin.Use(middleware.RequireAdmin(sessions, entryRoute))
	admin.GET("/clients", adminHandler.ListClients)
	admin.PATCH("/clients/:clientID/access", adminHandler.SetClientAccess)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
