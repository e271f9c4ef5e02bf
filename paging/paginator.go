package paging

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ncobase/docpage/ctxutil"
	"github.com/ncobase/docpage/document"
	"github.com/ncobase/docpage/ecode"
	"github.com/ncobase/docpage/logging/logger"
	"github.com/ncobase/docpage/metrics"
	"github.com/ncobase/docpage/nanoid"
)

// Decoder turns a document into the caller's result type. It must be pure.
type Decoder[T any] func(document.Document) T

// Documents is the identity decoder.
func Documents(d document.Document) document.Document { return d }

// State is the paginator's load state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateExhausted
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateExhausted:
		return "exhausted"
	case StateDisposed:
		return "disposed"
	}
	return "unknown"
}

// Stats describes a paginator at a point in time.
type Stats struct {
	ID                string `json:"id"`
	State             State  `json:"state"`
	Requested         int    `json:"requested"`
	Loaded            int    `json:"loaded"`
	Items             int    `json:"items"`
	OpenSubscriptions int    `json:"open_subscriptions"`
	Subscribers       int    `json:"subscribers"`
}

// view is the immutable snapshot readers see without touching the loop.
type view[T any] struct {
	items     []T
	state     State
	exhausted bool
	requested int
	loaded    int
	open      int
}

type loadResult[T any] struct {
	items []T
	err   error
}

type loadRequest[T any] struct {
	ctx   context.Context
	reply chan loadResult[T]
}

// subscription is one fetch stream opened by LoadNextPage.
type subscription[T any] struct {
	id      string
	page    int
	after   string
	live    bool
	ctx     context.Context
	cancel  context.CancelFunc
	reply   chan loadResult[T]
	started time.Time

	resolved bool
	closed   bool
}

type batchEvent[T any] struct {
	sub   *subscription[T]
	batch document.Batch
	end   bool
}

// Paginator keeps a growing, deduplicated window over a document source and
// republishes it as a single stream.
//
// All state lives on one loop goroutine. LoadNextPage and source batches are
// events on that loop and each is processed to completion (merge, publish,
// resolve) before the next one, so the window is never mutated concurrently.
//
// Usage:
//
//	p, err := paging.NewPaginator(src, &paging.Config{PageSize: 20, ListenForUpdates: true}, decodeUser)
//	if err != nil {
//	    return err
//	}
//	defer p.Dispose(context.Background())
//
//	results := p.Results()
//	go func() {
//	    for u := range results.C() {
//	        if u.Err != nil {
//	            // a live subscription failed after its page loaded
//	            continue
//	        }
//	        render(u.Items)
//	    }
//	}()
//
//	users, err := p.LoadNextPage(ctx)
type Paginator[T any] struct {
	id        string
	name      string
	src       document.Source
	cfg       Config
	decode    Decoder[T]
	log       *logger.Logger
	collector metrics.Collector
	onError   func(error)

	ctx      context.Context
	cancel   context.CancelFunc
	requests chan loadRequest[T]
	events   chan batchEvent[T]
	done     chan struct{}
	wg       sync.WaitGroup

	hub         *hub[T]
	snapshot    atomic.Pointer[view[T]]
	disposeOnce sync.Once
	disposeErr  error
}

// NewPaginator creates a paginator over src and starts its loop.
func NewPaginator[T any](src document.Source, cfg *Config, decode Decoder[T], opts ...Option) (*Paginator[T], error) {
	if src == nil {
		return nil, errors.New("paging: " + ecode.FieldIsRequired("source"))
	}
	if decode == nil {
		return nil, errors.New("paging: " + ecode.FieldIsRequired("decoder"))
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.id == "" {
		o.id = nanoid.PrefixedLower("pg", 10)
	}
	if o.log == nil {
		o.log = logger.StdLogger()
	}
	if o.collector == nil {
		o.collector = metrics.NoOpCollector{}
	}

	name := cfg.Name
	if name == "" {
		name = document.NameOf(src)
	}

	ctx, cancel := context.WithCancel(ctxutil.SetPaginatorID(context.Background(), o.id))
	p := &Paginator[T]{
		id:        o.id,
		name:      name,
		src:       src,
		cfg:       *cfg,
		decode:    decode,
		log:       o.log,
		collector: o.collector,
		onError:   o.onError,
		ctx:       ctx,
		cancel:    cancel,
		requests:  make(chan loadRequest[T]),
		events:    make(chan batchEvent[T]),
		done:      make(chan struct{}),
		hub:       newHub[T](cfg.StreamBuffer),
	}
	p.snapshot.Store(&view[T]{items: []T{}})

	go p.run()
	return p, nil
}

// ID returns the paginator id.
func (p *Paginator[T]) ID() string {
	return p.id
}

// LoadNextPage requests the page after the current cursor and waits for its
// first batch. While a page is loading, or once the source is exhausted, it
// returns the current results immediately without fetching.
//
// ctx bounds the wait only; an abandoned fetch still completes and merges.
func (p *Paginator[T]) LoadNextPage(ctx context.Context) ([]T, error) {
	reply := make(chan loadResult[T], 1)
	select {
	case p.requests <- loadRequest[T]{ctx: ctx, reply: reply}:
	case <-p.done:
		return p.GetAllResults(), ErrDisposed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-reply:
		return res.items, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Results subscribes to the merged result stream. Each update carries the
// full list. Subscribing after Dispose yields a closed stream.
func (p *Paginator[T]) Results() *Stream[T] {
	return p.hub.subscribe()
}

// HasMorePages reports whether the source may hold more pages.
func (p *Paginator[T]) HasMorePages() bool {
	return !p.snapshot.Load().exhausted
}

// GetAllResults returns a copy of the current merged results. It never
// performs I/O.
func (p *Paginator[T]) GetAllResults() []T {
	return slices.Clone(p.snapshot.Load().items)
}

// Stats returns a snapshot of the paginator state.
func (p *Paginator[T]) Stats() Stats {
	v := p.snapshot.Load()
	return Stats{
		ID:                p.id,
		State:             v.state,
		Requested:         v.requested,
		Loaded:            v.loaded,
		Items:             len(v.items),
		OpenSubscriptions: v.open,
		Subscribers:       p.hub.len(),
	}
}

// Dispose cancels every subscription opened so far, waits for them to stop
// and closes the results stream. ctx bounds the wait. Calling Dispose again
// returns the first result.
func (p *Paginator[T]) Dispose(ctx context.Context) error {
	p.disposeOnce.Do(func() {
		p.cancel()

		stopped := make(chan struct{})
		go func() {
			<-p.done
			p.wg.Wait()
			close(stopped)
		}()

		select {
		case <-stopped:
		case <-ctx.Done():
			p.disposeErr = ctx.Err()
		}
		p.hub.close()
		p.log.Debugf(p.ctx, "paginator %s disposed", p.name)
	})
	return p.disposeErr
}

// run is the paginator loop. It is the only goroutine touching st and subs.
func (p *Paginator[T]) run() {
	defer close(p.done)

	st := newPageState[T]()
	subs := make(map[string]*subscription[T])

	for {
		select {
		case req := <-p.requests:
			p.handleLoad(st, subs, req)
		case ev := <-p.events:
			p.handleEvent(st, subs, ev)
		case <-p.ctx.Done():
			p.shutdown(st, subs)
			return
		}
	}
}

func (p *Paginator[T]) handleLoad(st *pageState[T], subs map[string]*subscription[T], req loadRequest[T]) {
	if p.ctx.Err() != nil {
		req.reply <- loadResult[T]{items: st.results(), err: ErrDisposed}
		return
	}

	if st.exhausted || st.loading {
		reason := "loading"
		if st.exhausted {
			reason = "exhausted"
		}
		p.collector.LoadIgnored(p.name, reason)
		p.log.Debugf(p.ctx, "load next page ignored for %s: %s", p.name, reason)
		req.reply <- loadResult[T]{items: st.results()}
		return
	}

	_, traceID := ctxutil.EnsureTraceID(req.ctx)
	subCtx, cancel := context.WithCancel(ctxutil.SetTraceID(p.ctx, traceID))

	after := st.after()
	sub := &subscription[T]{
		id:      nanoid.PrefixedLower("sub", 10),
		page:    st.loaded,
		live:    p.cfg.ListenForUpdates,
		ctx:     subCtx,
		cancel:  cancel,
		reply:   req.reply,
		started: time.Now(),
	}
	if after != nil {
		sub.after = after.ID
	}

	st.loading = true
	st.requested++
	subs[sub.id] = sub

	p.log.WithContext(subCtx).WithFields(map[string]any{
		logger.SourceKey: p.name,
		logger.PageKey:   sub.page,
		"after":          sub.after,
		"live":           sub.live,
	}).Debug("fetching page")

	p.wg.Add(1)
	go p.forward(sub, document.PageRequest{
		Limit: p.cfg.PageSize,
		After: after,
		Live:  sub.live,
	})

	p.publishView(st, subs)
}

// forward pumps one source stream into the loop.
func (p *Paginator[T]) forward(sub *subscription[T], req document.PageRequest) {
	defer p.wg.Done()

	stream, err := p.src.FetchPage(sub.ctx, req)
	p.collector.SourceFetch(p.name, req.Live, err)
	if err != nil {
		p.deliver(batchEvent[T]{sub: sub, batch: document.Batch{Err: err}})
		p.deliver(batchEvent[T]{sub: sub, end: true})
		return
	}

	for b := range stream {
		if !p.deliver(batchEvent[T]{sub: sub, batch: b}) {
			return
		}
		if b.Err != nil {
			break
		}
	}
	p.deliver(batchEvent[T]{sub: sub, end: true})
}

func (p *Paginator[T]) deliver(ev batchEvent[T]) bool {
	select {
	case p.events <- ev:
		return true
	case <-p.ctx.Done():
		return false
	}
}

func (p *Paginator[T]) handleEvent(st *pageState[T], subs map[string]*subscription[T], ev batchEvent[T]) {
	sub := ev.sub

	if ev.end {
		if !sub.resolved {
			p.failFirst(st, sub, ErrStreamClosed)
		}
		if !sub.closed {
			sub.closed = true
			sub.cancel()
			delete(subs, sub.id)
			p.collector.Subscriptions(p.name, len(subs))
			p.publishView(st, subs)
		}
		return
	}

	if sub.closed {
		return
	}

	if err := ev.batch.Err; err != nil {
		if !sub.resolved {
			p.failFirst(st, sub, err)
			return
		}
		ferr := p.wrap(sub, err)
		p.log.WithContext(sub.ctx).WithError(ferr).Warn("live subscription failed")
		p.hub.publish(Update[T]{Err: ferr})
		if p.onError != nil {
			p.onError(ferr)
		}
		return
	}

	docs := ev.batch.Documents
	updated, appended := st.merge(docs, p.decode)
	first := !sub.resolved
	if first {
		sub.resolved = true
		st.advance(docs, p.cfg.PageSize)
		p.collector.Subscriptions(p.name, len(subs))
	}
	p.collector.Batch(p.name, len(docs), first)
	p.log.Debugf(sub.ctx, "merged batch page=%d first=%t updated=%d appended=%d total=%d",
		sub.page, first, updated, appended, len(st.items))

	items := st.results()
	p.snapshot.Store(p.viewOf(st, subs, items))

	if first {
		sub.reply <- loadResult[T]{items: slices.Clone(items)}
		p.collector.PageLoad(p.name, time.Since(sub.started), nil)
	}
	p.hub.publish(Update[T]{Items: items})
}

// failFirst rejects the pending LoadNextPage of sub and returns the
// paginator to idle so the caller may retry.
func (p *Paginator[T]) failFirst(st *pageState[T], sub *subscription[T], err error) {
	ferr := p.wrap(sub, err)
	sub.resolved = true
	st.loading = false

	p.log.WithContext(sub.ctx).WithError(ferr).Warn("page load failed")
	p.collector.PageLoad(p.name, time.Since(sub.started), ferr)
	p.publishView(st, nil)
	sub.reply <- loadResult[T]{err: ferr}
}

func (p *Paginator[T]) wrap(sub *subscription[T], err error) error {
	return &SourceFetchError{
		Source: p.name,
		Page:   sub.page,
		After:  sub.after,
		Live:   sub.live,
		Err:    err,
	}
}

func (p *Paginator[T]) shutdown(st *pageState[T], subs map[string]*subscription[T]) {
	for _, sub := range subs {
		sub.cancel()
		sub.closed = true
		if !sub.resolved {
			sub.resolved = true
			sub.reply <- loadResult[T]{items: st.results(), err: ErrDisposed}
		}
	}
	clear(subs)
	p.collector.Subscriptions(p.name, 0)

	v := p.viewOf(st, nil, st.results())
	v.state = StateDisposed
	p.snapshot.Store(v)
}

func (p *Paginator[T]) publishView(st *pageState[T], subs map[string]*subscription[T]) {
	prev := p.snapshot.Load()
	v := p.viewOf(st, subs, prev.items)
	if subs == nil {
		v.open = prev.open
	}
	p.snapshot.Store(v)
}

func (p *Paginator[T]) viewOf(st *pageState[T], subs map[string]*subscription[T], items []T) *view[T] {
	return &view[T]{
		items:     items,
		state:     st.state(),
		exhausted: st.exhausted,
		requested: st.requested,
		loaded:    st.loaded,
		open:      len(subs),
	}
}
