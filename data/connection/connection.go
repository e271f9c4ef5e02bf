package connection

import (
	"context"
	"errors"
	"sync"

	"cloud.google.com/go/firestore"
	"github.com/ncobase/docpage/data/config"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Connections holds the clients of every configured document store
type Connections struct {
	MG     *mongo.Client
	RC     *redis.Client
	FS     *firestore.Client
	closed bool
	mu     sync.Mutex
}

// New opens a client for every store that has configuration
func New(ctx context.Context, conf *config.Config) (*Connections, error) {
	c := &Connections{}
	var err error

	if conf.MongoDB != nil && conf.MongoDB.URI != "" {
		c.MG, err = newMongoClient(ctx, conf.MongoDB)
		if err != nil {
			return nil, err
		}
	}

	if conf.Redis != nil && conf.Redis.Addr != "" {
		c.RC, err = newRedisClient(ctx, conf.Redis)
		if err != nil {
			c.Close(ctx)
			return nil, err
		}
	}

	if conf.Firestore != nil && conf.Firestore.ProjectID != "" {
		c.FS, err = newFirestoreClient(ctx, conf.Firestore)
		if err != nil {
			c.Close(ctx)
			return nil, err
		}
	}

	return c, nil
}

// Close closes all data connections
func (d *Connections) Close(ctx context.Context) (errs []error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Check if already closed
	if d.closed {
		return nil
	}

	if d.RC != nil {
		if err := d.RC.Close(); err != nil {
			errs = append(errs, errors.New("redis close error: "+err.Error()))
		}
		d.RC = nil
	}

	if d.MG != nil {
		if err := d.MG.Disconnect(ctx); err != nil {
			errs = append(errs, errors.New("mongodb close error: "+err.Error()))
		}
		d.MG = nil
	}

	if d.FS != nil {
		if err := d.FS.Close(); err != nil {
			errs = append(errs, errors.New("firestore close error: "+err.Error()))
		}
		d.FS = nil
	}

	d.closed = true

	return errs
}

// Ping checks every open connection
func (d *Connections) Ping(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	if d.MG != nil {
		if err := d.MG.Ping(ctx, nil); err != nil {
			errs = append(errs, err)
		}
	}
	if d.RC != nil {
		if err := d.RC.Ping(ctx).Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
