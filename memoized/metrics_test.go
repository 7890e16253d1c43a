package memoized_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/on-the-ground/memoized_go/memoized"
	"github.com/on-the-ground/memoized_go/observe"
	"github.com/on-the-ground/memoized_go/signature"
)

func sumOf(rm metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok && m.Name == name {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	_, class := defineReport(t, memoized.WithMeterProvider(mp))
	total := memoizeTotal(t, class)
	r := newReport(class)

	_, _ = total.Invoke(ctx, r, 1)
	_, _ = total.Invoke(ctx, r, 1, 10)
	_, _ = total.Invoke(ctx, r, 1, 11)
	_, _ = total.Invoke(ctx, r, 1, 11)
	r.Unmemoize(ctx, "total")
	r.Unmemoize(ctx, "total")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.NotEmpty(t, rm.ScopeMetrics)
	assert.Equal(t, memoized.MeterName, rm.ScopeMetrics[0].Scope.Name)
	assert.Equal(t, int64(2), sumOf(rm, observe.MetricHits))
	assert.Equal(t, int64(2), sumOf(rm, observe.MetricMisses))
	assert.Equal(t, int64(0), sumOf(rm, observe.MetricFailures))
	assert.Equal(t, int64(1), sumOf(rm, observe.MetricInvalidations))
}

func TestMeterName(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	_, class := defineReport(t, memoized.WithMeterProvider(mp), memoized.WithMeterName("reports"))
	total := memoizeTotal(t, class)
	_, err := total.Invoke(ctx, newReport(class), 1)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	assert.Equal(t, "reports", rm.ScopeMetrics[0].Scope.Name)
}

func TestWaitersCountAsHits(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	_, class := defineReport(t, memoized.WithMeterProvider(mp))
	release := make(chan struct{})
	slow, err := memoized.Memoize(class, "slow", signature.MustClassify(signature.Req("n")),
		func(_ context.Context, _ *Report, args signature.Bound) (int, error) {
			<-release
			return args.Get("n").(int), nil
		})
	require.NoError(t, err)
	r := newReport(class)

	const callers = 8
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := slow.Invoke(ctx, r, 3)
			assert.NoError(t, err)
		}()
	}
	close(release)
	wg.Wait()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	assert.Equal(t, int64(1), sumOf(rm, observe.MetricMisses))
	assert.Equal(t, int64(callers-1), sumOf(rm, observe.MetricHits))
}
