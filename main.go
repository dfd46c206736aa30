// File: slotgate/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"slotgate/config"
	"slotgate/handlers"
	"slotgate/middleware"
	"slotgate/routes"
	"slotgate/services/availability"
	"slotgate/services/booking"
	"slotgate/services/calendar"
	"slotgate/services/identity"
	"slotgate/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.GetLogger().Sugar().Fatalf("main: failed to load config: %v", err)
	}
	utils.InitializeLogger(cfg.Env)
	logger := utils.GetLogger()

	catalog, err := config.LoadCatalog(cfg)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to load catalog: %v", err)
	}

	if cfg.GoogleCredsFile == "" {
		logger.Sugar().Fatal("main: GOOGLE_CREDENTIALS_FILE is required")
	}
	calendarClient, err := calendar.NewGoogleClient(context.Background(), cfg.GoogleCredsFile)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize calendar client: %v", err)
	}

	cache := utils.NewCache(cfg.CacheTTL())

	// services.
	resolver := identity.NewResolver(catalog)
	engine := availability.NewEngine(calendarClient, resolver, catalog, cache)
	orchestrator := booking.NewOrchestrator(calendarClient, resolver, catalog, cache, cfg)
	gateway := handlers.NewGateway(engine, orchestrator, resolver, catalog, cfg, cache)

	// Create the Gin router.
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.AuthMiddleware(cfg.APIKey))
	router.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiterStore(cfg.RateLimitPerMinute)))

	routes.RegisterRoutes(router, gateway)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
