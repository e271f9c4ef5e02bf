// Package redis serves document pages from Redis.
//
// Documents are stored as JSON under <prefix>:doc:<id> and ordered by the
// sorted set <prefix>:order, scored by the numeric or time value of the order
// field. Members with equal scores fall back to id order, which matches the
// id tiebreak of document.OrderBy. Every write publishes the number of changed
// documents on <prefix>:changes, which drives live pages.
package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ncobase/docpage/concurrency/worker"
	"github.com/ncobase/docpage/document"
	"github.com/ncobase/docpage/source/live"
	"github.com/redis/go-redis/v9"
)

// ErrClosed is returned by FetchPage after Close.
var ErrClosed = errors.New("redis source: closed")

// Option configures a Source
type Option func(*Source)

// WithPool runs live re-queries on pool.
func WithPool(pool *worker.Pool) Option {
	return func(s *Source) { s.pool = pool }
}

// Source is a document collection kept in Redis.
type Source struct {
	rc     redis.UniversalClient
	prefix string
	order  document.OrderBy
	pool   *worker.Pool

	changes live.Notifier

	mu      sync.Mutex
	watcher *redis.PubSub
	cancel  context.CancelFunc
	done    chan struct{}
	closed  bool
}

// New creates a source over the keys under prefix.
func New(rc redis.UniversalClient, prefix string, order document.OrderBy, opts ...Option) *Source {
	s := &Source{
		rc:     rc,
		prefix: prefix,
		order:  order,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements document.Named.
func (s *Source) Name() string { return "redis:" + s.prefix }

// Order returns the source order.
func (s *Source) Order() document.OrderBy { return s.order }

func (s *Source) docKey(id string) string { return s.prefix + ":doc:" + id }
func (s *Source) orderKey() string        { return s.prefix + ":order" }
func (s *Source) channel() string         { return s.prefix + ":changes" }

// score maps the order field of d onto a sorted-set score. Documents without
// a numeric or time value score zero.
func (s *Source) score(d document.Document) float64 {
	if s.order.Field == "" {
		return 0
	}
	if f, ok := d.Fields.Float64(s.order.Field); ok {
		return f
	}
	if t, ok := d.Fields.Time(s.order.Field); ok {
		return float64(t.UnixMilli())
	}
	return 0
}

// Put writes documents and publishes the change.
func (s *Source) Put(ctx context.Context, docs ...document.Document) error {
	if len(docs) == 0 {
		return nil
	}
	pipe := s.rc.TxPipeline()
	for _, d := range docs {
		raw, err := json.Marshal(d.Fields)
		if err != nil {
			return fmt.Errorf("redis source: encode %s: %w", d.ID, err)
		}
		pipe.Set(ctx, s.docKey(d.ID), raw, 0)
		pipe.ZAdd(ctx, s.orderKey(), redis.Z{Score: s.score(d), Member: d.ID})
	}
	pipe.Publish(ctx, s.channel(), strconv.Itoa(len(docs)))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis source: put: %w", err)
	}
	return nil
}

// Delete removes documents by id and publishes the change.
func (s *Source) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	pipe := s.rc.TxPipeline()
	members := make([]any, len(ids))
	for i, id := range ids {
		pipe.Del(ctx, s.docKey(id))
		members[i] = id
	}
	pipe.ZRem(ctx, s.orderKey(), members...)
	pipe.Publish(ctx, s.channel(), strconv.Itoa(len(ids)))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis source: delete: %w", err)
	}
	return nil
}

// Get reads one document.
func (s *Source) Get(ctx context.Context, id string) (document.Document, bool, error) {
	raw, err := s.rc.Get(ctx, s.docKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return document.Document{}, false, nil
	}
	if err != nil {
		return document.Document{}, false, err
	}
	d, err := decode(id, raw)
	return d, err == nil, err
}

// Len returns the number of documents.
func (s *Source) Len(ctx context.Context) (int64, error) {
	return s.rc.ZCard(ctx, s.orderKey()).Result()
}

func decode(id string, raw []byte) (document.Document, error) {
	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return document.Document{}, fmt.Errorf("redis source: decode %s: %w", id, err)
	}
	norm, _ := document.Normalize(fields).(map[string]any)
	return document.New(id, norm), nil
}

// start returns the zero-based rank of the first document after `after`.
// The seek uses the cursor's own score and id, not its current rank, so a
// cursor document that moved or was removed since its page was read does
// not shift the window.
func (s *Source) start(ctx context.Context, after *document.Document) (int64, error) {
	if after == nil {
		return 0, nil
	}

	if s.order.Field == "" {
		// every score is 0 and members sort by id
		if s.order.Descending {
			return s.rc.ZLexCount(ctx, s.orderKey(), "["+after.ID, "+").Result()
		}
		return s.rc.ZLexCount(ctx, s.orderKey(), "-", "["+after.ID).Result()
	}

	score := strconv.FormatFloat(s.score(*after), 'f', -1, 64)
	var (
		before int64
		err    error
	)
	if s.order.Descending {
		before, err = s.rc.ZCount(ctx, s.orderKey(), "("+score, "+inf").Result()
	} else {
		before, err = s.rc.ZCount(ctx, s.orderKey(), "-inf", "("+score).Result()
	}
	if err != nil {
		return 0, err
	}
	ties, err := s.rc.ZRangeByScore(ctx, s.orderKey(), &redis.ZRangeBy{Min: score, Max: score}).Result()
	if err != nil {
		return 0, err
	}
	for _, id := range ties {
		if (!s.order.Descending && id <= after.ID) || (s.order.Descending && id >= after.ID) {
			before++
		}
	}
	return before, nil
}

// window reads up to limit documents after `after`.
func (s *Source) window(ctx context.Context, after *document.Document, limit int) ([]document.Document, error) {
	start, err := s.start(ctx, after)
	if err != nil {
		return nil, fmt.Errorf("redis source: seek: %w", err)
	}
	stop := start + int64(limit) - 1

	var ids []string
	if s.order.Descending {
		ids, err = s.rc.ZRevRange(ctx, s.orderKey(), start, stop).Result()
	} else {
		ids, err = s.rc.ZRange(ctx, s.orderKey(), start, stop).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("redis source: range: %w", err)
	}
	if len(ids) == 0 {
		return []document.Document{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.docKey(id)
	}
	vals, err := s.rc.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis source: mget: %w", err)
	}

	docs := make([]document.Document, 0, len(ids))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// removed between ZRANGE and MGET
			continue
		}
		d, err := decode(ids[i], []byte(raw))
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
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

// watch starts the shared change subscription on first use.
func (s *Source) watch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.watcher != nil {
		return nil
	}

	ps := s.rc.Subscribe(ctx, s.channel())
	// wait for the subscription so no publish after this call is missed
	recvCtx, cancelRecv := context.WithTimeout(ctx, 5*time.Second)
	defer cancelRecv()
	if _, err := ps.Receive(recvCtx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("redis source: subscribe: %w", err)
	}

	wctx, cancel := context.WithCancel(context.Background())
	s.watcher = ps
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		msgs := ps.Channel()
		for {
			select {
			case <-wctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					s.changes.Close()
					return
				}
				s.changes.Notify()
			}
		}
	}()
	return nil
}

// Close stops the change subscription. Open live pages end with
// live.ErrFeedClosed.
func (s *Source) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	ps, cancel, done := s.watcher, s.cancel, s.done
	s.mu.Unlock()

	s.changes.Close()
	if ps == nil {
		return nil
	}
	cancel()
	err := ps.Close()
	<-done
	return err
}
