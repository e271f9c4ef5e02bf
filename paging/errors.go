package paging

import (
	"errors"
	"fmt"

	"github.com/ncobase/docpage/ecode"
)

var (
	// ErrDisposed is returned by calls made after Dispose.
	ErrDisposed = errors.New("paging: " + ecode.Closed("paginator"))

	// ErrStreamClosed is reported when a source closes its stream before
	// delivering the first batch of a request.
	ErrStreamClosed = errors.New("paging: source stream closed before first batch")

	// ErrInvalidCursor is returned for cursor tokens that cannot be decoded.
	ErrInvalidCursor = errors.New("paging: " + ecode.FieldIsInvalid("cursor"))
)

// SourceFetchError wraps a source failure with the request it belongs to.
type SourceFetchError struct {
	Source string
	Page   int
	After  string
	Live   bool
	Err    error
}

func (e *SourceFetchError) Error() string {
	after := e.After
	if after == "" {
		after = "start"
	}
	return fmt.Sprintf("paging: fetch page %d from %s after %s (live=%t): %v",
		e.Page, e.Source, after, e.Live, e.Err)
}

func (e *SourceFetchError) Unwrap() error {
	return e.Err
}
