package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestInstruments(t *testing.T) (*CacheInstruments, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	ci, err := NewCacheInstruments(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create instruments: %v", err)
	}
	return ci, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func counterValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		t.Fatalf("%s metric not found", name)
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64] for %s, got %T", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

// TestCacheInstruments_Counters verifies each Recorder event lands on its counter.
func TestCacheInstruments_Counters(t *testing.T) {
	ci, reader := newTestInstruments(t)

	ci.Hit()
	ci.Hit()
	ci.Miss()
	ci.Eviction()
	ci.Expiration()
	ci.Expiration()
	ci.Expiration()

	rm := collect(t, reader)

	tests := []struct {
		name string
		want int64
	}{
		{MetricCacheHits, 2},
		{MetricCacheMisses, 1},
		{MetricCacheEvictions, 1},
		{MetricCacheExpirations, 3},
	}
	for _, tt := range tests {
		if got := counterValue(t, rm, tt.name); got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, got, tt.want)
		}
	}
}

// TestCacheInstruments_SizeGauge verifies the observable gauge reports the callback value.
func TestCacheInstruments_SizeGauge(t *testing.T) {
	ci, reader := newTestInstruments(t)

	size := int64(7)
	ci.ObserveSize(func() int64 { return size })

	rm := collect(t, reader)
	m := findMetric(rm, MetricCacheSize)
	if m == nil {
		t.Fatal("size gauge not found")
	}
	gauge, ok := m.Data.(metricdata.Gauge[int64])
	if !ok {
		t.Fatalf("expected Gauge[int64], got %T", m.Data)
	}
	if len(gauge.DataPoints) != 1 || gauge.DataPoints[0].Value != 7 {
		t.Errorf("gauge data points = %+v, want single value 7", gauge.DataPoints)
	}

	if err := ci.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

// TestCacheInstruments_RecordResolve verifies histogram attributes.
func TestCacheInstruments_RecordResolve(t *testing.T) {
	ci, reader := newTestInstruments(t)
	ctx := context.Background()

	ci.RecordResolve(ctx, "nmap_scan.sim", 12*time.Millisecond, false, nil)
	ci.RecordResolve(ctx, "nmap_scan.sim", time.Millisecond, true, nil)
	ci.RecordResolve(ctx, "nmap_scan.sim", time.Millisecond, false, errors.New("boom"))

	rm := collect(t, reader)
	m := findMetric(rm, MetricResolveDuration)
	if m == nil {
		t.Fatal("resolve histogram not found")
	}
	hist, ok := m.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", m.Data)
	}
	if len(hist.DataPoints) != 3 {
		t.Fatalf("expected 3 attribute sets, got %d", len(hist.DataPoints))
	}

	var sawMiss bool
	for _, dp := range hist.DataPoints {
		hit, _ := dp.Attributes.Value(attribute.Key(AttrCacheHit))
		failed, _ := dp.Attributes.Value(attribute.Key("error"))
		tool, _ := dp.Attributes.Value(attribute.Key(AttrToolID))
		if tool.AsString() != "nmap_scan.sim" {
			t.Errorf("tool.id = %q", tool.AsString())
		}
		if !hit.AsBool() && !failed.AsBool() {
			sawMiss = true
			if dp.Sum != 12 {
				t.Errorf("miss duration sum = %v, want 12", dp.Sum)
			}
		}
	}
	if !sawMiss {
		t.Error("no data point for the successful miss")
	}
}

func TestNopCacheInstruments_NoPanic(t *testing.T) {
	ci := NopCacheInstruments()
	ci.Hit()
	ci.Miss()
	ci.Eviction()
	ci.Expiration()
	ci.ObserveSize(func() int64 { return 1 })
	ci.RecordResolve(context.Background(), "t", time.Millisecond, true, nil)
	if err := ci.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
