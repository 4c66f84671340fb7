package tracer

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

const serviceName = "go-luhn-service"

var (
	ErrNoEndpoint   = errors.New("missing tracing endpoint in config")
	ErrSampleRatio  = errors.New("sample ratio must be within [0, 1]")
	defaultProvider = otel.GetTracerProvider()
)

type Tracer struct {
	endpoint string
	ratio    float64
}

// NewTracer creates a tracer exporting to endpoint, sampling every root span.
func NewTracer(endpoint string) *Tracer {
	return &Tracer{
		endpoint: endpoint,
		ratio:    1,
	}
}

// WithSampleRatio samples only the given fraction of root spans. Child spans
// follow their parent's decision.
func (tr *Tracer) WithSampleRatio(ratio float64) *Tracer {
	tr.ratio = ratio

	return tr
}

// InitTracer installs an OTLP/HTTP tracer provider and W3C propagation globally.
func (tr *Tracer) InitTracer(ctx context.Context) (*trace.TracerProvider, error) {
	if tr.endpoint == "" {
		return nil, ErrNoEndpoint
	}

	if tr.ratio < 0 || tr.ratio > 1 {
		return nil, errors.Wrapf(ErrSampleRatio, "got %v", tr.ratio)
	}

	exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(
		otlptracehttp.WithEndpoint(tr.endpoint),
		otlptracehttp.WithInsecure(),
	))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create OTLP exporter")
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(tr.ratio))),
		trace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, nil
}

// Shutdown flushes pending spans and restores the no-op provider.
func Shutdown(ctx context.Context, tp *trace.TracerProvider) error {
	otel.SetTracerProvider(defaultProvider)

	return errors.Wrap(tp.Shutdown(ctx), "tracer shutdown")
}
