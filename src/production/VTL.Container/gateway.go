package container

import (
	"fmt"

	config "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Config"
	logger "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Logger"
)

// GatewayContainer manages dependencies for the MQTT gateway service
type GatewayContainer struct {
	config *config.GatewayConfig
	logger *logger.Logger
}

// NewGatewayContainer creates a new container for the MQTT gateway service
func NewGatewayContainer() (*GatewayContainer, error) {
	cfg, err := config.LoadGatewayConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load gateway configuration: %w", err)
	}

	return &GatewayContainer{
		config: cfg,
		logger: logger.NewLogger(&cfg.Logging),
	}, nil
}

// GetConfig returns the loaded gateway configuration
func (c *GatewayContainer) GetConfig() *config.GatewayConfig {
	return c.config
}

// GetLogger returns the container's logger
func (c *GatewayContainer) GetLogger() *logger.Logger {
	return c.logger
}
