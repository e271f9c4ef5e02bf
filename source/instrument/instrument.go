// Package instrument decorates a document source with tracing, logging and
// error reporting.
//
// Each fetch runs in a span that ends when the first batch arrives. Later
// batches of a live fetch are logged at debug level; a failure after the first
// batch is logged and reported but opens no span.
package instrument

import (
	"context"
	"strconv"
	"time"

	"github.com/ncobase/docpage/ctxutil"
	"github.com/ncobase/docpage/document"
	"github.com/ncobase/docpage/logging/logger"
	"github.com/ncobase/docpage/metrics"
	"github.com/ncobase/docpage/observes"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/ncobase/docpage/source/instrument"

// Option configures a Source
type Option func(*Source)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Source) { s.log = l }
}

// WithCollector records fetch outcomes and batch sizes on c. Leave it unset
// when the source feeds a paginator that already records them.
func WithCollector(c metrics.Collector) Option {
	return func(s *Source) { s.collector = c }
}

// WithTracerProvider uses tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Source) { s.tracer = tp.Tracer(tracerName) }
}

// Source wraps another source.
type Source struct {
	inner     document.Source
	name      string
	log       *logger.Logger
	collector metrics.Collector
	tracer    trace.Tracer
}

// New wraps inner.
func New(inner document.Source, opts ...Option) *Source {
	s := &Source{
		inner: inner,
		name:  document.NameOf(inner),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.StdLogger()
	}
	if s.collector == nil {
		s.collector = metrics.NoOpCollector{}
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s
}

// Name implements document.Named.
func (s *Source) Name() string { return s.name }

func (s *Source) fail(ctx context.Context, req document.PageRequest, err error, first bool) {
	s.log.WithContext(ctx).WithFields(map[string]any{
		logger.SourceKey: s.name,
		"after":          req.AfterID(),
		"live":           req.Live,
		"first":          first,
	}).WithError(err).Warn("source fetch failed")
	observes.CaptureError(ctx, err, map[string]string{
		"source": s.name,
		"live":   strconv.FormatBool(req.Live),
	})
}

// FetchPage implements document.Source.
func (s *Source) FetchPage(ctx context.Context, req document.PageRequest) (<-chan document.Batch, error) {
	ctx, _ = ctxutil.EnsureTraceID(ctx)
	ctx, span := s.tracer.Start(ctx, "docpage.source.FetchPage", trace.WithAttributes(
		attribute.String("docpage.source", s.name),
		attribute.Int("docpage.limit", req.Limit),
		attribute.String("docpage.after", req.AfterID()),
		attribute.Bool("docpage.live", req.Live),
	))
	started := time.Now()

	stream, err := s.inner.FetchPage(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		s.collector.SourceFetch(s.name, req.Live, err)
		s.fail(ctx, req, err, true)
		return nil, err
	}

	out := make(chan document.Batch, 1)
	go func() {
		defer close(out)
		first := true
		for b := range stream {
			if first {
				span.SetAttributes(
					attribute.Int("docpage.batch_size", len(b.Documents)),
					attribute.Int64("docpage.latency_ms", time.Since(started).Milliseconds()),
				)
				if b.Err != nil {
					span.RecordError(b.Err)
					span.SetStatus(codes.Error, b.Err.Error())
				}
				span.End()
				s.collector.SourceFetch(s.name, req.Live, b.Err)
			}
			if b.Err != nil {
				s.fail(ctx, req, b.Err, first)
			} else {
				s.collector.Batch(s.name, len(b.Documents), first)
				if !first {
					s.log.Debugf(ctx, "source %s: live batch of %d after %q", s.name, len(b.Documents), req.AfterID())
				}
			}
			first = false

			if !document.Send(ctx, out, b) {
				for range stream {
				}
				break
			}
		}
		if first {
			// closed before any batch
			span.SetStatus(codes.Error, "stream closed before first batch")
			span.End()
		}
	}()
	return out, nil
}
