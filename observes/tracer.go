package observes

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// TracerOption configures the OTLP trace exporter
type TracerOption struct {
	URL                string        `mapstructure:"url"`
	Name               string        `mapstructure:"name"`
	Version            string        `mapstructure:"version"`
	Environment        string        `mapstructure:"environment"`
	SamplingRate       float64       `mapstructure:"sampling_rate"`
	BatchTimeout       time.Duration `mapstructure:"batch_timeout"`
	ExportTimeout      time.Duration `mapstructure:"export_timeout"`
	MaxExportBatchSize int           `mapstructure:"max_export_batch_size"`
}

func (opt *TracerOption) withDefaults() TracerOption {
	o := *opt
	if o.SamplingRate <= 0 {
		o.SamplingRate = 1.0
	}
	if o.BatchTimeout <= 0 {
		o.BatchTimeout = 5 * time.Second
	}
	if o.ExportTimeout <= 0 {
		o.ExportTimeout = 30 * time.Second
	}
	if o.MaxExportBatchSize <= 0 {
		o.MaxExportBatchSize = 512
	}
	return o
}

// NewTracer installs a global tracer provider exporting to an OTLP gRPC
// endpoint and returns its shutdown function. Without a URL spans stay on the
// default no-op provider.
func NewTracer(ctx context.Context, opt *TracerOption) (func(context.Context) error, error) {
	if opt == nil || opt.URL == "" {
		return func(context.Context) error { return nil }, nil
	}
	o := opt.withDefaults()

	exp, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(o.URL),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(o.Name),
			attribute.String("version", o.Version),
			attribute.String("environment", o.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(o.SamplingRate))),
		sdktrace.WithBatcher(exp,
			sdktrace.WithMaxExportBatchSize(o.MaxExportBatchSize),
			sdktrace.WithBatchTimeout(o.BatchTimeout),
			sdktrace.WithExportTimeout(o.ExportTimeout),
		),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp.Shutdown, nil
}
