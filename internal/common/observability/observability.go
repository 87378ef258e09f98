package observability

import (
	"context"
	"time"

	"return-notifier/internal/common/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

// Observability bundles the OpenTelemetry meter and tracer. A nil
// *Observability is valid and records nothing.
type Observability struct {
	meterProvider    *metric.MeterProvider
	meter            otelmetric.Meter
	tracer           trace.Tracer
	pipelineCounter  otelmetric.Int64Counter
	pipelineDuration otelmetric.Float64Histogram
}

// New registers a Prometheus-backed meter provider globally. Metrics are
// served by the default Prometheus registry alongside promauto collectors.
func New(serviceName string, log logger.Logger) *Observability {
	o := &Observability{tracer: otel.Tracer(serviceName)}

	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("failed to create Prometheus exporter", map[string]interface{}{"error": err})
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	o.meterProvider = provider
	o.meter = provider.Meter(serviceName)
	o.pipelineCounter, _ = o.meter.Int64Counter(
		"notifications.pipeline.runs",
		otelmetric.WithDescription("Notification pipeline invocations"),
	)
	o.pipelineDuration, _ = o.meter.Float64Histogram(
		"notifications.pipeline.duration",
		otelmetric.WithDescription("Notification pipeline duration"),
		otelmetric.WithUnit("ms"),
	)
	return o
}

// StartSpan starts a span named name. The returned end func records err, if
// any, on the span.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	if o == nil || o.tracer == nil {
		return ctx, func(error) {}
	}
	ctx, span := o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// RecordPipeline records one pipeline run with its final stage.
func (o *Observability) RecordPipeline(ctx context.Context, duration time.Duration, stage string) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("stage", stage))
	if o.pipelineCounter != nil {
		o.pipelineCounter.Add(ctx, 1, attrs)
	}
	if o.pipelineDuration != nil {
		o.pipelineDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
