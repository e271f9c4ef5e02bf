package paging

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Update is one emission on a results stream: either the full merged list or
// an error from a live subscription whose first page already resolved.
type Update[T any] struct {
	Items []T
	Err   error
}

// Stream is one subscriber of a paginator's results. Updates are delivered in
// publish order. A subscriber that falls behind keeps only the newest pending
// list; pending errors are never coalesced away.
type Stream[T any] struct {
	id  uint64
	hub *hub[T]
	out chan Update[T]

	mu      sync.Mutex
	pending []Update[T]
	signal  chan struct{}
	done    chan struct{}
	once    sync.Once
}

// C returns the channel updates are delivered on. It is closed when the
// subscriber or the paginator is closed.
func (s *Stream[T]) C() <-chan Update[T] {
	return s.out
}

// Close unsubscribes. Pending updates are discarded.
func (s *Stream[T]) Close() {
	if s.hub != nil {
		s.hub.remove(s.id)
	}
	s.stop()
}

func (s *Stream[T]) stop() {
	s.once.Do(func() { close(s.done) })
}

// offer queues u without blocking the publisher.
func (s *Stream[T]) offer(u Update[T]) {
	s.mu.Lock()
	if n := len(s.pending); n > 0 && s.pending[n-1].Err == nil && u.Err == nil {
		s.pending[n-1] = u
	} else {
		s.pending = append(s.pending, u)
	}
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *Stream[T]) next() (Update[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return Update[T]{}, false
	}
	u := s.pending[0]
	s.pending[0] = Update[T]{}
	s.pending = s.pending[1:]
	return u, true
}

// pump moves pending updates to the output channel.
func (s *Stream[T]) pump() {
	defer close(s.out)
	for {
		select {
		case <-s.done:
			return
		case <-s.signal:
		}
		for {
			u, ok := s.next()
			if !ok {
				break
			}
			select {
			case s.out <- u:
			case <-s.done:
				return
			}
		}
	}
}

// hub fans updates out to every subscriber.
type hub[T any] struct {
	mu     sync.RWMutex
	subs   map[uint64]*Stream[T]
	nextID atomic.Uint64
	buffer int
	closed bool
}

func newHub[T any](buffer int) *hub[T] {
	if buffer < 0 {
		buffer = 0
	}
	return &hub[T]{
		subs:   make(map[uint64]*Stream[T]),
		buffer: buffer,
	}
}

func (h *hub[T]) subscribe() *Stream[T] {
	s := &Stream[T]{
		id:     h.nextID.Add(1),
		out:    make(chan Update[T], h.buffer),
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		s.stop()
		close(s.out)
		return s
	}
	s.hub = h
	h.subs[s.id] = s
	h.mu.Unlock()

	go s.pump()
	return s
}

func (h *hub[T]) remove(id uint64) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

// publish delivers u to every subscriber, each with its own copy of Items.
func (h *hub[T]) publish(u Update[T]) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for _, s := range h.subs {
		s.offer(Update[T]{Items: slices.Clone(u.Items), Err: u.Err})
	}
}

func (h *hub[T]) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// close stops every subscriber. Later publishes are dropped.
func (h *hub[T]) close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subs := h.subs
	h.subs = make(map[uint64]*Stream[T])
	h.mu.Unlock()

	for _, s := range subs {
		s.stop()
	}
}
