package observes

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/ncobase/docpage/ctxutil"
)

// SentryOptions configures error reporting
type SentryOptions struct {
	Dsn         string  `mapstructure:"dsn"`
	Name        string  `mapstructure:"name"`
	Release     string  `mapstructure:"release"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// NewSentry registers the global Sentry client and returns a flush function.
// Without a DSN reporting stays disabled and CaptureError is a no-op.
func NewSentry(opt *SentryOptions) (func(), error) {
	if opt == nil || opt.Dsn == "" {
		return func() {}, nil
	}

	sampleRate := opt.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              opt.Dsn,
		AttachStacktrace: true,
		SampleRate:       sampleRate,
		ServerName:       opt.Name,
		Release:          opt.Release,
		Environment:      opt.Environment,
	})
	if err != nil {
		return nil, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// CaptureError reports err with the given tags and the context trace id.
func CaptureError(ctx context.Context, err error, tags map[string]string) {
	if err == nil || sentry.CurrentHub().Client() == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		if traceID := ctxutil.GetTraceID(ctx); traceID != "" {
			scope.SetTag(ctxutil.TraceIDKey, traceID)
		}
		sentry.CaptureException(err)
	})
}
