package container

import (
	"context"
	"fmt"
	"sync"

	config "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Config"
	logger "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Logger"
	implementation "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Repository/Implementation"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Container manages dependencies and their lifecycle for the API service
type Container struct {
	config *config.Config
	logger *logger.Logger

	client *mongo.Client
	db     *mongo.Database

	// Mutex for thread-safe access
	mu sync.RWMutex

	// Cleanup functions run on shutdown, last registered first
	cleanupFuncs []func(ctx context.Context) error
}

// NewApiContainer creates a new dependency injection container for the API
// service
func NewApiContainer() (*Container, error) {
	cfg, err := config.LoadApiConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(&cfg.Logging)

	return &Container{
		config: cfg,
		logger: log,
	}, nil
}

// InitializeDatabase connects to MongoDB and ensures the indexes the
// repositories rely on
func (c *Container) InitializeDatabase(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	connectCtx, cancel := context.WithTimeout(ctx, c.config.Database.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(c.config.Database.URI))
	if err != nil {
		return fmt.Errorf("unable to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("unable to ping MongoDB: %w", err)
	}

	c.client = client
	c.db = client.Database(c.config.Database.DBName)
	c.cleanupFuncs = append(c.cleanupFuncs, client.Disconnect)

	if err := implementation.EnsureIndexes(ctx, c.db); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	c.logger.WithField("database", c.config.Database.DBName).Info("MongoDB connected")
	return nil
}

// GetConfig returns the loaded configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the container's logger
func (c *Container) GetLogger() *logger.Logger {
	return c.logger
}

// GetClient returns the MongoDB client
func (c *Container) GetClient() (*mongo.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.client == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return c.client, nil
}

// GetDatabase returns the MongoDB database handle
func (c *Container) GetDatabase() (*mongo.Database, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return c.db, nil
}

// Shutdown runs all registered cleanup functions
func (c *Container) Shutdown(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](ctx); err != nil {
			c.logger.ErrorWithError(err, "cleanup failed")
		}
	}
	c.cleanupFuncs = nil
}
