package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Connection wraps the driver client together with the target database name.
type Connection struct {
	*mongo.Client
	database string
}

// NewConnection connects to the given MongoDB URI and verifies the server is
// reachable.
func NewConnection(ctx context.Context, uri, database string) (*Connection, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Connection{
		Client:   client,
		database: database,
	}, nil
}

// Collection returns a handle to the named collection in the configured
// database.
func (c *Connection) Collection(name string) *mongo.Collection {
	return c.Client.Database(c.database).Collection(name)
}

// Close disconnects the underlying client.
func (c *Connection) Close(ctx context.Context) error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Disconnect(ctx)
}
