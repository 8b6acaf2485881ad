package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/controllers"
	"gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/health"
	container "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Container"
	implementation "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Repository/Implementation"

	authService "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/implementation/auth"
	jwt "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/implementation/jwt"
	registry "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/implementation/registry"
	telemetry "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/implementation/telemetry"
	authMiddleware "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/middleware"
	api_models "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models/api"
)

func main() {
	// Initialize dependency injection container
	ctr, err := container.NewApiContainer()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}
	defer ctr.Shutdown(context.Background())

	logger := ctr.GetLogger()
	logger.Info("Starting API Service")

	// Initialize database
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ctr.InitializeDatabase(ctx); err != nil {
		logger.FatalWithError(err, "Failed to initialize database")
	}

	db, err := ctr.GetDatabase()
	if err != nil {
		logger.FatalWithError(err, "Failed to get database handle")
	}
	client, err := ctr.GetClient()
	if err != nil {
		logger.FatalWithError(err, "Failed to get database client")
	}

	// Create repositories
	accountRepo := implementation.NewMongoAccountRepository(db)
	deviceRepo := implementation.NewMongoDeviceRepository(db)
	measurementRepo := implementation.NewMongoMeasurementRepository(db)

	// Get configuration
	config := ctr.GetConfig()

	// Initialize JWT service for session tokens
	jwtConfig := api_models.Config{
		SecretKey:            config.Auth.JWTSecretKey,
		SessionTokenDuration: config.Auth.SessionTokenDuration,
		Issuer:               config.Auth.JWTIssuer,
	}
	jwtService := jwt.NewService(jwtConfig)

	// Create auth middleware
	middlewareInstance := authMiddleware.NewAuthMiddleware(jwtService, accountRepo, config.Auth.DeviceAPIKey, authMiddleware.DefaultConfig())

	// Initialize domain services
	registryService := registry.NewService(deviceRepo, measurementRepo, logger)
	telemetryService := telemetry.NewService(registryService, measurementRepo, logger)
	authServiceInstance := authService.NewAuthService(accountRepo, registryService, jwtService, config.Auth.PasswordMinLength)
	accountServiceInstance := authService.NewAccountService(accountRepo, config.Auth.PasswordMinLength)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Configure CORS from config
	corsConfig := cors.Config{
		AllowOrigins:     config.CORS.AllowedOrigins,
		AllowMethods:     config.CORS.AllowedMethods,
		AllowHeaders:     config.CORS.AllowedHeaders,
		ExposeHeaders:    config.CORS.ExposedHeaders,
		AllowCredentials: config.CORS.AllowCredentials,
		MaxAge:           time.Duration(config.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	// Create controllers and register routes
	authController := controllers.NewAuthController(authServiceInstance, logger)
	accountController := controllers.NewAccountController(accountServiceInstance, registryService, logger, middlewareInstance)
	measurementController := controllers.NewMeasurementController(telemetryService, logger, middlewareInstance)
	healthController := controllers.NewHealthController(health.NewChecker(client), logger)

	authController.RegisterRoutes(router)
	accountController.RegisterRoutes(router)
	measurementController.RegisterRoutes(router)
	healthController.RegisterRoutes(router)

	// Create HTTP server with timeouts
	port := config.Server.Port
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("HTTP server starting on port " + port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithError(err, "Failed to start HTTP server")
		}
	}()

	logger.Info("API service running... press Ctrl+C to stop")

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithError(err, "Server forced to shutdown")
	}
}
