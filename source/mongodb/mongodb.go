// Package mongodb serves document pages from a MongoDB collection.
//
// Pages are read with a seek filter on (order field, _id) so the cursor
// document does not need to exist any more. Live pages re-run their query on
// every event of a change stream opened once per source.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ncobase/docpage/concurrency/worker"
	"github.com/ncobase/docpage/document"
	"github.com/ncobase/docpage/logging/logger"
	"github.com/ncobase/docpage/source/live"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrClosed is returned by FetchPage after Close.
var ErrClosed = errors.New("mongodb source: closed")

// Collection is the subset of *mongo.Collection the source uses.
type Collection interface {
	Name() string
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
	Watch(ctx context.Context, pipeline any, opts ...*options.ChangeStreamOptions) (*mongo.ChangeStream, error)
}

// Option configures a Source
type Option func(*Source)

// WithPool runs live re-queries on pool.
func WithPool(pool *worker.Pool) Option {
	return func(s *Source) { s.pool = pool }
}

// WithObjectIDs treats document ids as hex encoded ObjectIDs when seeking.
func WithObjectIDs() Option {
	return func(s *Source) { s.objectIDs = true }
}

// WithFilter restricts every page to documents matching filter.
func WithFilter(filter bson.M) Option {
	return func(s *Source) { s.filter = filter }
}

// WithLogger sets the logger used for change stream failures.
func WithLogger(l *logger.Logger) Option {
	return func(s *Source) { s.log = l }
}

// Source reads pages from one collection.
type Source struct {
	coll      Collection
	order     document.OrderBy
	filter    bson.M
	objectIDs bool
	pool      *worker.Pool
	log       *logger.Logger

	changes live.Notifier

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	closed  bool
	watched bool
}

// New creates a source over coll in the given order.
func New(coll Collection, order document.OrderBy, opts ...Option) *Source {
	s := &Source{coll: coll, order: order}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.StdLogger()
	}
	return s
}

// Name implements document.Named.
func (s *Source) Name() string { return "mongodb:" + s.coll.Name() }

// Order returns the source order.
func (s *Source) Order() document.OrderBy { return s.order }

func (s *Source) direction() int {
	if s.order.Descending {
		return -1
	}
	return 1
}

// sort returns the sort document for the source order.
func (s *Source) sort() bson.D {
	if s.order.Field == "" || s.order.Field == "_id" {
		return bson.D{{Key: "_id", Value: s.direction()}}
	}
	return bson.D{
		{Key: s.order.Field, Value: s.direction()},
		{Key: "_id", Value: s.direction()},
	}
}

// idValue converts a document id into its stored form.
func (s *Source) idValue(id string) any {
	if s.objectIDs {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			return oid
		}
	}
	return id
}

// seekFilter matches documents strictly after the cursor.
func (s *Source) seekFilter(after *document.Document) bson.M {
	op := "$gt"
	if s.order.Descending {
		op = "$lt"
	}
	id := s.idValue(after.ID)
	if s.order.Field == "" || s.order.Field == "_id" {
		return bson.M{"_id": bson.M{op: id}}
	}
	v := s.order.Value(*after)
	return bson.M{"$or": bson.A{
		bson.M{s.order.Field: bson.M{op: v}},
		bson.M{s.order.Field: v, "_id": bson.M{op: id}},
	}}
}

// query builds the filter of one page.
func (s *Source) query(after *document.Document) bson.M {
	var parts bson.A
	if len(s.filter) > 0 {
		parts = append(parts, s.filter)
	}
	if after != nil {
		parts = append(parts, s.seekFilter(after))
	}
	switch len(parts) {
	case 0:
		return bson.M{}
	case 1:
		return parts[0].(bson.M)
	}
	return bson.M{"$and": parts}
}

func (s *Source) window(ctx context.Context, after *document.Document, limit int) ([]document.Document, error) {
	opts := options.Find().SetSort(s.sort()).SetLimit(int64(limit))
	cur, err := s.coll.Find(ctx, s.query(after), opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb source: find: %w", err)
	}
	defer cur.Close(ctx)

	docs := make([]document.Document, 0, limit)
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("mongodb source: decode: %w", err)
		}
		docs = append(docs, toDocument(raw))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongodb source: cursor: %w", err)
	}
	return docs, nil
}

// FetchPage implements document.Source.
func (s *Source) FetchPage(ctx context.Context, req document.PageRequest) (<-chan document.Batch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var after *document.Document
	if req.After != nil {
		a := *req.After
		after = &a
	}
	query := func(ctx context.Context) ([]document.Document, error) {
		return s.window(ctx, after, req.Limit)
	}

	if !req.Live {
		docs, err := query(ctx)
		return document.Once(docs, err), nil
	}

	if err := s.watch(ctx); err != nil {
		return nil, err
	}
	return live.Run(ctx, query, s.changes.Listen(ctx), s.pool), nil
}

// watch opens the shared change stream on first use.
func (s *Source) watch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.watched {
		return nil
	}

	wctx, cancel := context.WithCancel(context.Background())
	opts := options.ChangeStream().SetMaxAwaitTime(time.Second)
	cs, err := s.coll.Watch(wctx, mongo.Pipeline{}, opts)
	if err != nil {
		cancel()
		return fmt.Errorf("mongodb source: watch: %w", err)
	}

	s.watched = true
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		defer cs.Close(context.Background())
		for cs.Next(wctx) {
			s.changes.Notify()
		}
		if err := cs.Err(); err != nil && wctx.Err() == nil {
			s.log.Errorf(context.Background(), "mongodb source %s: change stream ended: %v", s.coll.Name(), err)
		}
		// live pages end with live.ErrFeedClosed
		s.changes.Close()
	}()
	return nil
}

// Close stops the change stream. Open live pages end with live.ErrFeedClosed.
func (s *Source) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	s.changes.Close()
	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}
