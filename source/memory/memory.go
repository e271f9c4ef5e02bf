// Package memory implements an in-process document collection that serves
// ordered, cursor-seeked pages and live page subscriptions.
package memory

import (
	"context"
	"sync"

	"github.com/ncobase/docpage/concurrency/worker"
	"github.com/ncobase/docpage/document"
	"github.com/ncobase/docpage/source/live"
)

// Option configures a Collection
type Option func(*Collection)

// WithPool runs live re-queries on pool.
func WithPool(pool *worker.Pool) Option {
	return func(c *Collection) { c.pool = pool }
}

// Collection is a concurrency-safe set of documents kept in a fixed order.
type Collection struct {
	name  string
	order document.OrderBy
	pool  *worker.Pool

	mu     sync.RWMutex
	docs   map[string]document.Document
	sorted []document.Document

	changes live.Notifier
}

// New creates an empty collection ordered by order.
func New(name string, order document.OrderBy, opts ...Option) *Collection {
	c := &Collection{
		name:  name,
		order: order,
		docs:  make(map[string]document.Document),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements document.Named.
func (c *Collection) Name() string { return "memory:" + c.name }

// Order returns the collection order.
func (c *Collection) Order() document.OrderBy { return c.order }

// Put inserts or replaces documents and notifies live pages.
func (c *Collection) Put(docs ...document.Document) {
	if len(docs) == 0 {
		return
	}
	c.mu.Lock()
	for _, d := range docs {
		c.docs[d.ID] = document.New(d.ID, d.Fields)
	}
	c.sorted = nil
	c.mu.Unlock()
	c.changes.Notify()
}

// Delete removes documents by id and reports how many existed.
func (c *Collection) Delete(ids ...string) int {
	c.mu.Lock()
	n := 0
	for _, id := range ids {
		if _, ok := c.docs[id]; ok {
			delete(c.docs, id)
			n++
		}
	}
	if n > 0 {
		c.sorted = nil
	}
	c.mu.Unlock()
	if n > 0 {
		c.changes.Notify()
	}
	return n
}

// Get returns a document by id.
func (c *Collection) Get(id string) (document.Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.docs[id]
	return d, ok
}

// Len returns the number of documents.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// Listeners returns the number of open live pages.
func (c *Collection) Listeners() int {
	return c.changes.Len()
}

// window returns the page after `after`, rebuilding the sorted view if a
// mutation invalidated it.
func (c *Collection) window(after *document.Document, limit int) []document.Document {
	c.mu.RLock()
	sorted := c.sorted
	c.mu.RUnlock()

	if sorted == nil {
		c.mu.Lock()
		if c.sorted == nil {
			all := make([]document.Document, 0, len(c.docs))
			for _, d := range c.docs {
				all = append(all, d)
			}
			c.order.Sort(all)
			c.sorted = all
		}
		sorted = c.sorted
		c.mu.Unlock()
	}

	page := c.order.Window(sorted, after, limit)
	return append([]document.Document(nil), page...)
}

// FetchPage implements document.Source.
func (c *Collection) FetchPage(ctx context.Context, req document.PageRequest) (<-chan document.Batch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var after *document.Document
	if req.After != nil {
		a := *req.After
		after = &a
	}
	query := func(ctx context.Context) ([]document.Document, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return c.window(after, req.Limit), nil
	}

	if !req.Live {
		docs, err := query(ctx)
		return document.Once(docs, err), nil
	}
	// Register before the initial query so no change is missed in between.
	changes := c.changes.Listen(ctx)
	return live.Run(ctx, query, changes, c.pool), nil
}
