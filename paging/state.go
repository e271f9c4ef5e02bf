package paging

import (
	"slices"

	"github.com/ncobase/docpage/document"
)

// pageState is the accumulated result window. It is owned by exactly one
// paginator loop and never shared.
type pageState[T any] struct {
	items  []document.Document
	values []T
	index  map[string]int

	// cursor is the last document of the most recent boundary-defining fetch.
	cursor    *document.Document
	exhausted bool
	loading   bool

	// requested counts fetches issued, loaded counts first batches received.
	requested int
	loaded    int
}

func newPageState[T any]() *pageState[T] {
	return &pageState[T]{index: make(map[string]int)}
}

// merge folds a batch into the window. Known ids are replaced in place and
// keep their position; unknown ids are appended in batch order.
func (s *pageState[T]) merge(docs []document.Document, decode Decoder[T]) (updated, appended int) {
	for _, d := range docs {
		if i, ok := s.index[d.ID]; ok {
			s.items[i] = d
			s.values[i] = decode(d)
			updated++
			continue
		}
		s.index[d.ID] = len(s.items)
		s.items = append(s.items, d)
		s.values = append(s.values, decode(d))
		appended++
	}
	return updated, appended
}

// advance applies the first batch of a request to the cursor and exhaustion
// flag. Later batches of the same request never call it.
func (s *pageState[T]) advance(docs []document.Document, pageSize int) {
	s.loading = false
	s.loaded++
	if len(docs) < pageSize {
		s.exhausted = true
	}
	if len(docs) > 0 {
		last := docs[len(docs)-1]
		s.cursor = &last
	}
}

// after returns a copy of the cursor for the next request.
func (s *pageState[T]) after() *document.Document {
	if s.cursor == nil {
		return nil
	}
	c := *s.cursor
	return &c
}

func (s *pageState[T]) results() []T {
	return slices.Clone(s.values)
}

func (s *pageState[T]) state() State {
	switch {
	case s.loading:
		return StateLoading
	case s.exhausted:
		return StateExhausted
	default:
		return StateIdle
	}
}
