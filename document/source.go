package document

import (
	"context"
	"errors"
)

// ErrInvalidLimit is returned for page requests without a positive limit.
var ErrInvalidLimit = errors.New("document: page limit must be greater than 0")

// PageRequest is one bounded, cursor-seeked query.
type PageRequest struct {
	// Limit is the page size.
	Limit int
	// After seeks results strictly following this document in the source's
	// order. Nil means the first page.
	After *Document
	// Live keeps the stream open and emits a batch on every change.
	Live bool
}

// Validate checks the request bounds.
func (r PageRequest) Validate() error {
	if r.Limit <= 0 {
		return ErrInvalidLimit
	}
	return nil
}

// AfterID returns the cursor id or "" for the first page.
func (r PageRequest) AfterID() string {
	if r.After == nil {
		return ""
	}
	return r.After.ID
}

// Batch is one delivery on a page stream. A batch with Err set is the last
// value on its stream.
type Batch struct {
	Documents []Document
	Err       error
}

// Source yields page streams. Implementations must close the returned
// channel after the final batch, after an error batch, and once ctx is done.
type Source interface {
	FetchPage(ctx context.Context, req PageRequest) (<-chan Batch, error)
}

// Named is implemented by sources that can describe themselves in logs and
// error context.
type Named interface {
	Name() string
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, req PageRequest) (<-chan Batch, error)

// FetchPage implements Source.
func (f SourceFunc) FetchPage(ctx context.Context, req PageRequest) (<-chan Batch, error) {
	return f(ctx, req)
}

// NameOf returns the source's name, or "source" when it has none.
func NameOf(src Source) string {
	if n, ok := src.(Named); ok {
		return n.Name()
	}
	return "source"
}

// Once returns a closed stream holding a single batch.
func Once(docs []Document, err error) <-chan Batch {
	ch := make(chan Batch, 1)
	ch <- Batch{Documents: docs, Err: err}
	close(ch)
	return ch
}

// Send delivers b on ch unless ctx is done first.
func Send(ctx context.Context, ch chan<- Batch, b Batch) bool {
	select {
	case ch <- b:
		return true
	case <-ctx.Done():
		return false
	}
}
