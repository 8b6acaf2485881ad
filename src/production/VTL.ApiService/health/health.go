package health

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Checker reports liveness of the service's dependencies
type Checker struct {
	client *mongo.Client
}

// NewChecker creates a new health checker
func NewChecker(client *mongo.Client) *Checker {
	return &Checker{client: client}
}

// CheckDatabase pings the MongoDB primary
func (c *Checker) CheckDatabase(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.client.Ping(ctx, readpref.Primary())
}
