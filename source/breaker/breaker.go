// Package breaker guards a document source with a circuit breaker.
//
// Only the first batch of a fetch counts towards the breaker: that is the
// part a caller waits on. While the breaker is open FetchPage fails at once
// with gobreaker.ErrOpenState.
package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/ncobase/docpage/document"
	"github.com/ncobase/docpage/logging/logger"
	"github.com/sony/gobreaker"
)

// errStreamClosed marks a stream that closed before its first batch.
var errStreamClosed = errors.New("breaker: stream closed before first batch")

// Config configures the breaker
type Config struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests" validate:"gte=0"`
	Interval     time.Duration `mapstructure:"interval" validate:"gte=0"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gte=0"`
	MinRequests  uint32        `mapstructure:"min_requests"`
	FailureRatio float64       `mapstructure:"failure_ratio" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the default breaker configuration
func DefaultConfig() *Config {
	return &Config{
		MaxRequests:  100,
		Interval:     5 * time.Second,
		Timeout:      3 * time.Second,
		MinRequests:  3,
		FailureRatio: 0.6,
	}
}

// Source wraps another source with a circuit breaker.
type Source struct {
	inner document.Source
	cb    *gobreaker.CircuitBreaker
}

// New wraps inner. A nil cfg uses DefaultConfig.
func New(inner document.Source, cfg *Config, l *logger.Logger) *Source {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if l == nil {
		l = logger.StdLogger()
	}
	name := document.NameOf(inner)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warnf(context.Background(), "circuit breaker %s: %s -> %s", name, from, to)
		},
		// a cancelled caller says nothing about the source
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &Source{inner: inner, cb: cb}
}

// Name implements document.Named.
func (s *Source) Name() string { return document.NameOf(s.inner) }

// State returns the breaker state.
func (s *Source) State() gobreaker.State { return s.cb.State() }

type opened struct {
	first  document.Batch
	stream <-chan document.Batch
}

// FetchPage implements document.Source.
func (s *Source) FetchPage(ctx context.Context, req document.PageRequest) (<-chan document.Batch, error) {
	res, err := s.cb.Execute(func() (any, error) {
		stream, err := s.inner.FetchPage(ctx, req)
		if err != nil {
			return nil, err
		}
		select {
		case b, ok := <-stream:
			if !ok {
				return nil, errStreamClosed
			}
			if b.Err != nil {
				return nil, b.Err
			}
			return opened{first: b, stream: stream}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	if errors.Is(err, errStreamClosed) {
		// let the caller see the closed stream itself
		ch := make(chan document.Batch)
		close(ch)
		return ch, nil
	}
	if err != nil {
		return nil, err
	}

	o := res.(opened)
	out := make(chan document.Batch, 1)
	out <- o.first
	go func() {
		defer close(out)
		for b := range o.stream {
			if !document.Send(ctx, out, b) {
				// drain so the inner source can finish and close
				for range o.stream {
				}
				return
			}
		}
	}()
	return out, nil
}
