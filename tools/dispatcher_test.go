package tools

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cjrt007/Tornado.Ai/observe"
	"github.com/cjrt007/Tornado.Ai/resilience"
	"github.com/cjrt007/Tornado.Ai/scm"
)

func newTestManager(t *testing.T) *scm.Manager[ExecutionResult] {
	t.Helper()
	m, err := scm.New[ExecutionResult](scm.Config{DefaultTTL: time.Minute, MaxEntries: 16})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func newTestDispatcher(t *testing.T, catalog *Catalog, opts ...DispatcherOption) (*Dispatcher, *scm.Manager[ExecutionResult]) {
	t.Helper()
	m := newTestManager(t)
	d, err := NewDispatcher(catalog, m, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return d, m
}

func countingCatalog(t *testing.T, calls *atomic.Int32) *Catalog {
	t.Helper()
	c, err := NewCatalog(map[string]Adapter{
		"echo.sim": func(p map[string]any) map[string]any {
			calls.Add(1)
			return map[string]any{"echo": p["msg"]}
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNewDispatcher_NilArgs(t *testing.T) {
	if _, err := NewDispatcher(nil, newTestManager(t)); !errors.Is(err, ErrNilCatalog) {
		t.Errorf("nil catalog error = %v", err)
	}
	if _, err := NewDispatcher(DefaultCatalog(), nil); !errors.Is(err, ErrNilManager) {
		t.Errorf("nil manager error = %v", err)
	}
}

func TestDispatcher_CachedCommand(t *testing.T) {
	var calls atomic.Int32
	d, m := newTestDispatcher(t, countingCatalog(t, &calls))
	ctx := context.Background()
	cmd := Command{ToolID: "echo.sim", Params: map[string]any{"msg": "hi"}, UseCache: true, UserID: "alice"}

	first, err := d.Execute(ctx, cmd)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if first.Result.Status != StatusCompleted || first.Result.Cached {
		t.Errorf("first result = %+v, want completed and not cached", first.Result)
	}
	if first.Result.Output["echo"] != "hi" {
		t.Errorf("Output = %v", first.Result.Output)
	}

	second, err := d.Execute(ctx, cmd)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if second.Result.Status != StatusCached || !second.Result.Cached {
		t.Errorf("second result = %+v, want cached", second.Result)
	}
	if second.Result.Telemetry["producedAt"] != first.Result.Telemetry["producedAt"] {
		t.Error("cached result should carry the original telemetry")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("adapter calls = %d, want 1", got)
	}
	if stats := m.Stats(); stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Stats() = %+v", stats)
	}

	// The stored value keeps its original status.
	res, err := m.Resolve(ctx, "echo.sim", cmd.Params, func(context.Context) (ExecutionResult, error) {
		t.Fatal("producer should not run")
		return ExecutionResult{}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Value.Status != StatusCompleted {
		t.Errorf("stored status = %v, want completed", res.Value.Status)
	}
}

func TestDispatcher_CachedResultsDoNotAliasStore(t *testing.T) {
	var calls atomic.Int32
	d, _ := newTestDispatcher(t, countingCatalog(t, &calls))
	ctx := context.Background()
	cmd := Command{ToolID: "echo.sim", Params: map[string]any{"msg": "hi"}, UseCache: true}

	first, err := d.Execute(ctx, cmd)
	if err != nil {
		t.Fatal(err)
	}
	first.Result.Output["echo"] = "tampered"
	first.Result.Telemetry["mode"] = "tampered"

	second, err := d.Execute(ctx, cmd)
	if err != nil {
		t.Fatal(err)
	}
	second.Result.Output["extra"] = true

	third, err := d.Execute(ctx, cmd)
	if err != nil {
		t.Fatal(err)
	}
	if third.Result.Output["echo"] != "hi" || third.Result.Telemetry["mode"] != "dry-run" {
		t.Errorf("stored result changed through a returned map: %+v", third.Result)
	}
	if _, ok := third.Result.Output["extra"]; ok {
		t.Error("key added to a cached hit leaked into the store")
	}
	if calls.Load() != 1 {
		t.Errorf("adapter calls = %d, want 1", calls.Load())
	}
}

func TestDispatcher_BypassCache(t *testing.T) {
	var calls atomic.Int32
	d, m := newTestDispatcher(t, countingCatalog(t, &calls))
	cmd := Command{ToolID: "echo.sim", Params: map[string]any{"msg": "hi"}}

	for i := 0; i < 2; i++ {
		resp, err := d.Execute(context.Background(), cmd)
		if err != nil {
			t.Fatal(err)
		}
		if resp.Result.Cached {
			t.Error("uncached command reported cached")
		}
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("adapter calls = %d, want 2", got)
	}
	if stats := m.Stats(); stats.Size != 0 || stats.Hits+stats.Misses != 0 {
		t.Errorf("Stats() = %+v, want cache untouched", stats)
	}
}

func TestDispatcher_UnknownTool(t *testing.T) {
	d, m := newTestDispatcher(t, DefaultCatalog())

	resp, err := d.Execute(context.Background(), Command{ToolID: "rm_rf.sim", UseCache: true})
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("Execute() error = %v, want ErrUnknownTool", err)
	}
	if resp != nil {
		t.Errorf("Response = %+v, want nil", resp)
	}
	if stats := m.Stats(); stats.Size != 0 || stats.Misses != 0 {
		t.Errorf("Stats() = %+v, unknown tools must not reach the cache", stats)
	}
}

func TestDispatcher_AdapterTimeout(t *testing.T) {
	catalog, err := NewCatalog(map[string]Adapter{
		"nmap_scan.sim": func(map[string]any) map[string]any {
			time.Sleep(50 * time.Millisecond)
			return map[string]any{}
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	guards := resilience.NewGuards(resilience.GuardConfig{Timeout: 5 * time.Millisecond})
	d, m := newTestDispatcher(t, catalog, WithGuards(guards))

	resp, err := d.Execute(context.Background(), Command{ToolID: "nmap_scan.sim", UseCache: true})
	if !errors.Is(err, resilience.ErrTimeout) {
		t.Fatalf("Execute() error = %v, want ErrTimeout", err)
	}
	if resp == nil || resp.Result.Status != StatusErrored {
		t.Fatalf("Response = %+v, want errored result", resp)
	}
	if len(resp.FallbackActions) == 0 || resp.FallbackActions[0] != "Retry with reduced intensity" {
		t.Errorf("FallbackActions = %v", resp.FallbackActions)
	}
	if got := m.Stats().Size; got != 0 {
		t.Errorf("Size = %d, errors must not be cached", got)
	}
}

func TestDispatcher_AuditLog(t *testing.T) {
	var buf bytes.Buffer
	var calls atomic.Int32
	d, _ := newTestDispatcher(t, countingCatalog(t, &calls),
		WithLogger(observe.NewLoggerWithWriter("info", &buf)))

	if _, err := d.Execute(context.Background(), Command{ToolID: "echo.sim", UseCache: true}); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{`"msg":"command executed"`, `"user.id":"system"`, `"tool.id":"echo.sim"`, `"outcome":"success"`} {
		if !strings.Contains(out, want) {
			t.Errorf("audit log %s missing %s", out, want)
		}
	}
}

func TestDispatcher_Telemetry(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	d, _ := newTestDispatcher(t, DefaultCatalog(), WithClock(func() time.Time { return fixed }))

	resp, err := d.Execute(context.Background(), Command{ToolID: "ghidra_analyze.sim"})
	if err != nil {
		t.Fatal(err)
	}
	tel := resp.Result.Telemetry
	if tel["mode"] != "dry-run" || tel["producedAt"] != "2024-05-01T12:00:00Z" {
		t.Errorf("Telemetry = %v", tel)
	}
}
