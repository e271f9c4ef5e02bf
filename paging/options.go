package paging

import (
	"github.com/ncobase/docpage/logging/logger"
	"github.com/ncobase/docpage/metrics"
)

type options struct {
	id        string
	log       *logger.Logger
	collector metrics.Collector
	onError   func(error)
}

// Option configures a Paginator.
type Option func(*options)

// WithID sets the paginator id used in logs. A random id is used otherwise.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithLogger sets the logger. The standard logger is used otherwise.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithCollector sets the metrics collector.
func WithCollector(c metrics.Collector) Option {
	return func(o *options) { o.collector = c }
}

// WithErrorHandler registers a callback for errors that arrive on a live
// subscription after its first page resolved. The callback runs on the
// paginator's loop and must not call LoadNextPage or Dispose.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) { o.onError = fn }
}
