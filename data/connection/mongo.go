package connection

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncobase/docpage/data/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newMongoClient creates a new MongoDB client
func newMongoClient(ctx context.Context, conf *config.MongoDB) (*mongo.Client, error) {
	if conf == nil || conf.URI == "" {
		return nil, errors.New("mongodb configuration is nil or empty")
	}

	clientOptions := options.Client().
		ApplyURI(conf.URI).
		SetConnectTimeout(conf.ConnectTimeout)
	if conf.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(conf.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("MongoDB connect error: %v", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, conf.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("MongoDB ping error: %v", err)
	}

	return client, nil
}
