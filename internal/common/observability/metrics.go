// internal/common/observability/metrics.go
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability owns the otel meter provider, exported through the default
// Prometheus registry next to the promauto collectors.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	askCounter    otelmetric.Int64Counter
	askDuration   otelmetric.Float64Histogram
}

func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	o := &Observability{meterProvider: provider}
	if err := o.init(provider.Meter(serviceName)); err != nil {
		return nil, err
	}
	return o, nil
}

// NewWithMeter builds an Observability over an existing meter, used in tests.
func NewWithMeter(meter otelmetric.Meter) (*Observability, error) {
	o := &Observability{}
	if err := o.init(meter); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Observability) init(meter otelmetric.Meter) error {
	askCounter, err := meter.Int64Counter(
		"insight.asks",
		otelmetric.WithDescription("Number of insight asks handled"),
	)
	if err != nil {
		return fmt.Errorf("failed to create ask counter: %w", err)
	}

	askDuration, err := meter.Float64Histogram(
		"insight.ask.duration",
		otelmetric.WithDescription("End-to-end insight ask duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return fmt.Errorf("failed to create ask histogram: %w", err)
	}

	o.meter = meter
	o.askCounter = askCounter
	o.askDuration = askDuration
	return nil
}

// RecordAsk records one finished ask with its outcome code.
func (o *Observability) RecordAsk(ctx context.Context, outcome string, duration time.Duration) {
	if o == nil || o.askCounter == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("outcome", outcome))
	o.askCounter.Add(ctx, 1, attrs)
	o.askDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	return o.meterProvider.Shutdown(ctx)
}
