package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncobase/docpage/concurrency/worker"
	"github.com/ncobase/docpage/config"
	"github.com/ncobase/docpage/data/connection"
	"github.com/ncobase/docpage/document"
	"github.com/ncobase/docpage/logging/logger"
	"github.com/ncobase/docpage/source/breaker"
	fsource "github.com/ncobase/docpage/source/firestore"
	"github.com/ncobase/docpage/source/instrument"
	"github.com/ncobase/docpage/source/memory"
	msource "github.com/ncobase/docpage/source/mongodb"
	rsource "github.com/ncobase/docpage/source/redis"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotPersistent is returned when seeding a store that lives only as long
// as the process.
var ErrNotPersistent = errors.New("memory source does not persist, use page --seed")

// Backend is the configured document store: the decorated source pages read
// from plus a writer used for seeding.
type Backend struct {
	Kind   string
	Source document.Source

	put   func(ctx context.Context, docs ...document.Document) error
	close func() error
}

// Put writes docs to the store.
func (b *Backend) Put(ctx context.Context, docs ...document.Document) error {
	return b.put(ctx, docs...)
}

// Persistent reports whether writes outlive the process.
func (b *Backend) Persistent() bool {
	return b.Kind != config.SourceMemory
}

// provideBackend builds the source selected by cfg. Telemetry is taken so
// the source picks up the configured tracer provider.
func provideBackend(
	cfg *config.Source,
	data *config.Data,
	brk *config.Breaker,
	conns *connection.Connections,
	pool *worker.Pool,
	l *logger.Logger,
	_ *Telemetry,
) (*Backend, func(), error) {
	b, err := newBackend(cfg, data, conns, pool, l)
	if err != nil {
		return nil, nil, err
	}

	src := b.Source
	if brk.Enabled {
		src = breaker.New(src, brk, l)
	}
	b.Source = instrument.New(src, instrument.WithLogger(l))

	cleanup := func() {
		if b.close == nil {
			return
		}
		if err := b.close(); err != nil {
			l.Warnf(context.Background(), "closing %s source: %v", b.Kind, err)
		}
	}
	return b, cleanup, nil
}

func newBackend(cfg *config.Source, data *config.Data, conns *connection.Connections, pool *worker.Pool, l *logger.Logger) (*Backend, error) {
	switch cfg.Kind {
	case config.SourceMemory:
		c := memory.New(cfg.Collection, cfg.OrderBy, memory.WithPool(pool))
		return &Backend{
			Kind:   cfg.Kind,
			Source: c,
			put: func(_ context.Context, docs ...document.Document) error {
				c.Put(docs...)
				return nil
			},
		}, nil

	case config.SourceRedis:
		if conns.RC == nil {
			return nil, fmt.Errorf("source %s: redis is not configured", cfg.Kind)
		}
		prefix := cfg.Collection
		if data.Redis != nil && data.Redis.Prefix != "" {
			prefix = data.Redis.Prefix + ":" + cfg.Collection
		}
		s := rsource.New(conns.RC, prefix, cfg.OrderBy, rsource.WithPool(pool))
		return &Backend{Kind: cfg.Kind, Source: s, put: s.Put, close: s.Close}, nil

	case config.SourceMongoDB:
		if conns.MG == nil {
			return nil, fmt.Errorf("source %s: mongodb is not configured", cfg.Kind)
		}
		coll := conns.MG.Database(data.MongoDB.Database).Collection(cfg.Collection)
		opts := []msource.Option{msource.WithPool(pool), msource.WithLogger(l)}
		if cfg.ObjectIDs {
			opts = append(opts, msource.WithObjectIDs())
		}
		s := msource.New(coll, cfg.OrderBy, opts...)
		return &Backend{
			Kind:   cfg.Kind,
			Source: s,
			put: func(ctx context.Context, docs ...document.Document) error {
				return upsertMongo(ctx, coll, cfg.ObjectIDs, docs)
			},
			close: s.Close,
		}, nil

	case config.SourceFirestore:
		if conns.FS == nil {
			return nil, fmt.Errorf("source %s: firestore is not configured", cfg.Kind)
		}
		s := fsource.New(conns.FS.Collection(cfg.Collection), cfg.OrderBy)
		return &Backend{
			Kind:   cfg.Kind,
			Source: s,
			put: func(ctx context.Context, docs ...document.Document) error {
				return fsource.Put(ctx, conns.FS, cfg.Collection, docs...)
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
}

func upsertMongo(ctx context.Context, coll *mongo.Collection, objectIDs bool, docs []document.Document) error {
	if len(docs) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(docs))
	for _, d := range docs {
		m := msource.FromDocument(d, objectIDs)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": m["_id"]}).
			SetReplacement(m).
			SetUpsert(true))
	}
	_, err := coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}
