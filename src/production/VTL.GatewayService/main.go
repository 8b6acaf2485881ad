package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	container "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Container"
	"gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.GatewayService/client"
	"gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.GatewayService/gateway"
)

func main() {
	// Initialize dependency injection container
	ctr, err := container.NewGatewayContainer()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}

	logger := ctr.GetLogger()
	logger.Info("Starting MQTT Gateway Service")

	config := ctr.GetConfig()

	// Create API client
	apiClient := client.NewAPIClient(config.ApiServiceURL, config.DeviceAPIKey)

	// Create and start gateway
	gw := gateway.New(*config, apiClient, logger)
	if err := gw.Start(context.Background()); err != nil {
		logger.FatalWithError(err, "Failed to start MQTT gateway")
	}
	defer gw.Stop()

	// Start health check server
	go startHealthServer(ctr, gw, apiClient)

	logger.Info("MQTT gateway running... press Ctrl+C to stop")

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")
}

// startHealthServer starts a simple HTTP server for health checks
func startHealthServer(ctr *container.GatewayContainer, gw *gateway.Gateway, apiClient *client.APIClient) {
	logger := ctr.GetLogger()

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		mqttStatus := "disconnected"
		if gw.IsConnected() {
			mqttStatus = "connected"
		}

		apiStatus := "disconnected"
		if err := apiClient.Health(ctx); err == nil {
			apiStatus = "connected"
		}

		status := "healthy"
		code := http.StatusOK
		if mqttStatus != "connected" || apiStatus != "connected" {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}

		cb := apiClient.GetCircuitBreakerStatus()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		fmt.Fprintf(w, `{"status":%q,"timestamp":%q,"services":{"mqtt":%q,"api_service":%q},"circuit_breaker":{"state":%q,"failure_count":%d}}`,
			status, time.Now().UTC().Format(time.RFC3339), mqttStatus, apiStatus,
			cb["state"], cb["failure_count"])
	})

	port := os.Getenv("GATEWAY_PORT")
	if port == "" {
		port = "9003"
	}
	logger.Info("Health server starting on port " + port)

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.FatalWithError(err, "Failed to start health server")
	}
}
