// Package telemetry exports webhook delivery counters over OpenTelemetry.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "github.com/josh-kwaku/rental-webhooks"

type Outcome string

const (
	OutcomeProcessed        Outcome = "processed"
	OutcomeDuplicate        Outcome = "duplicate"
	OutcomeDisabled         Outcome = "disabled"
	OutcomeInvalidSignature Outcome = "invalid_signature"
	OutcomeInvalidJSON      Outcome = "invalid_json"
	OutcomeMissingFields    Outcome = "missing_fields"
	OutcomeTooLarge         Outcome = "too_large"
	OutcomeFailed           Outcome = "failed"
)

// Setup builds a meter provider exporting over OTLP/gRPC. An empty endpoint
// yields a no-op provider.
func Setup(ctx context.Context, endpoint, serviceName string) (metric.MeterProvider, func(context.Context) error, error) {
	if endpoint == "" {
		return noop.NewMeterProvider(), func(context.Context) error { return nil }, nil
	}

	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry.Setup: exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	)
	return mp, mp.Shutdown, nil
}

type Metrics struct {
	deliveries metric.Int64Counter
	swept      metric.Int64Counter
	panics     metric.Int64Counter
}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(meterName)

	deliveries, err := meter.Int64Counter("webhook.deliveries",
		metric.WithDescription("Webhook deliveries by provider and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("NewMetrics: deliveries: %w", err)
	}

	swept, err := meter.Int64Counter("webhook.dedup.swept",
		metric.WithDescription("Dedup records evicted by sweeps"),
	)
	if err != nil {
		return nil, fmt.Errorf("NewMetrics: swept: %w", err)
	}

	panics, err := meter.Int64Counter("http.server.panics",
		metric.WithDescription("Panics recovered while serving requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("NewMetrics: panics: %w", err)
	}

	return &Metrics{deliveries: deliveries, swept: swept, panics: panics}, nil
}

// Noop returns metrics that record nothing.
func Noop() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider())
	return m
}

func (m *Metrics) Delivery(ctx context.Context, provider string, outcome Outcome) {
	m.deliveries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", string(outcome)),
	))
}

func (m *Metrics) Swept(ctx context.Context, n int64) {
	m.swept.Add(ctx, n)
}

// Panic counts a recovered panic. route is a fixed group name, not a raw path.
func (m *Metrics) Panic(ctx context.Context, route string) {
	m.panics.Add(ctx, 1, metric.WithAttributes(attribute.String("route", route)))
}
