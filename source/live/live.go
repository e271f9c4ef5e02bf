// Package live turns a one-shot window query plus a change feed into a live
// page stream.
//
// A live page is served by running its query once, then running it again
// each time the underlying collection reports a change. Change signals that
// arrive while a query is running collapse into a single follow-up query, and
// a result identical to the last one emitted is dropped.
package live

import (
	"context"
	"errors"
	"sync"

	"github.com/ncobase/docpage/concurrency/worker"
	"github.com/ncobase/docpage/document"
)

// ErrFeedClosed is emitted when the change feed ends before the stream is
// cancelled.
var ErrFeedClosed = errors.New("live: change feed closed")

// Query reads the current contents of one page window.
type Query func(ctx context.Context) ([]document.Document, error)

type result struct {
	docs []document.Document
	err  error
}

// Run emits the result of query, then re-runs it on every signal from changes
// until ctx is done. Re-queries run on pool when it is non-nil. The returned
// channel is closed after ctx is done or after an error batch.
func Run(ctx context.Context, query Query, changes <-chan struct{}, pool *worker.Pool) <-chan document.Batch {
	out := make(chan document.Batch, 1)
	go func() {
		defer close(out)

		last, err := query(ctx)
		if err != nil {
			document.Send(ctx, out, document.Batch{Err: err})
			return
		}
		if !document.Send(ctx, out, document.Batch{Documents: last}) {
			return
		}

		results := make(chan result, 1)
		running, dirty := false, false

		requery := func() {
			running = true
			task := func(tctx context.Context) error {
				docs, err := query(tctx)
				select {
				case results <- result{docs: docs, err: err}:
				case <-ctx.Done():
				}
				return err
			}
			if pool == nil {
				go task(ctx)
				return
			}
			if err := pool.SubmitContext(ctx, task); err != nil {
				go func() {
					select {
					case results <- result{err: err}:
					case <-ctx.Done():
					}
				}()
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					if ctx.Err() == nil {
						document.Send(ctx, out, document.Batch{Err: ErrFeedClosed})
					}
					return
				}
				if running {
					dirty = true
					continue
				}
				requery()
			case r := <-results:
				running = false
				if r.err != nil {
					if ctx.Err() == nil {
						document.Send(ctx, out, document.Batch{Err: r.err})
					}
					return
				}
				if !document.EqualSlices(last, r.docs) {
					last = r.docs
					if !document.Send(ctx, out, document.Batch{Documents: r.docs}) {
						return
					}
				}
				if dirty {
					dirty = false
					requery()
				}
			}
		}
	}()
	return out
}

// Notifier fans a "something changed" signal out to any number of listeners.
// Each listener channel holds at most one pending signal, so a slow listener
// sees one signal for many changes.
type Notifier struct {
	mu     sync.Mutex
	subs   map[uint64]chan struct{}
	nextID uint64
	closed bool
}

// Listen registers a listener that stays subscribed until ctx is done or the
// notifier is closed, at which point its channel is closed.
func (n *Notifier) Listen(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		close(ch)
		return ch
	}
	if n.subs == nil {
		n.subs = make(map[uint64]chan struct{})
	}
	n.nextID++
	id := n.nextID
	n.subs[id] = ch
	n.mu.Unlock()

	context.AfterFunc(ctx, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if _, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(ch)
		}
	})
	return ch
}

// Notify signals every listener without blocking.
func (n *Notifier) Notify() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len returns the number of registered listeners.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// Close closes every listener channel. Later listeners get a closed channel.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for id, ch := range n.subs {
		delete(n.subs, id)
		close(ch)
	}
}
