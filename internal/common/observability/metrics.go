package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider   *metric.MeterProvider
	meter           otelmetric.Meter
	compileCounter  otelmetric.Int64Counter
	compileDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	compileCounter, _ := meter.Int64Counter(
		"overrides.compiled",
		otelmetric.WithDescription("Number of override compilations"),
	)

	compileDuration, _ := meter.Float64Histogram(
		"overrides.compile.duration",
		otelmetric.WithDescription("Override compilation duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:   provider,
		meter:           meter,
		compileCounter:  compileCounter,
		compileDuration: compileDuration,
	}
}

func (o *Observability) RecordCompile(ctx context.Context, mode string) {
	if o.compileCounter != nil {
		o.compileCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("mode", mode),
		))
	}
}

func (o *Observability) RecordCompileDuration(ctx context.Context, duration time.Duration, mode string) {
	if o.compileDuration != nil {
		o.compileDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("mode", mode),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
