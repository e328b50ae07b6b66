package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) metricdata.Sum[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				return sum
			}
		}
	}
	t.Fatalf("metric %s not collected", name)
	return metricdata.Sum[int64]{}
}

func TestMetrics_Delivery(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m, err := NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	require.NoError(t, err)

	ctx := context.Background()
	m.Delivery(ctx, "hq", OutcomeProcessed)
	m.Delivery(ctx, "hq", OutcomeProcessed)
	m.Delivery(ctx, "hq", OutcomeDuplicate)

	sum := collectSum(t, reader, "webhook.deliveries")
	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, ok := dp.Attributes.Value(attribute.Key("outcome"))
		require.True(t, ok)
		counts[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"processed": 2, "duplicate": 1}, counts)
}

func TestMetrics_Swept(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m, err := NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	require.NoError(t, err)

	m.Swept(context.Background(), 4)

	sum := collectSum(t, reader, "webhook.dedup.swept")
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(4), sum.DataPoints[0].Value)
}

func TestMetrics_Panic(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m, err := NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	require.NoError(t, err)

	m.Panic(context.Background(), "webhook")

	sum := collectSum(t, reader, "http.server.panics")
	require.Len(t, sum.DataPoints, 1)
	v, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("route"))
	require.True(t, ok)
	assert.Equal(t, "webhook", v.AsString())
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
}

func TestSetup_NoEndpointIsNoop(t *testing.T) {
	mp, shutdown, err := Setup(context.Background(), "", "webhooks")
	require.NoError(t, err)
	require.NotNil(t, mp)
	assert.NoError(t, shutdown(context.Background()))

	m, err := NewMetrics(mp)
	require.NoError(t, err)
	assert.NotPanics(t, func() { m.Delivery(context.Background(), "hq", OutcomeFailed) })
}
