package snowflake

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestCachedGenerator(t *testing.T, workerID int64) *CachedGenerator {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BoostPower = 1
	cg, err := NewCachedGenerator(context.Background(), cfg, StaticWorkerIDSource(workerID), zap.NewNop())
	if err != nil {
		t.Fatalf("NewCachedGenerator() error = %v", err)
	}
	return cg
}

func TestNewCachedGeneratorWarmsUpRing(t *testing.T) {
	cg := newTestCachedGenerator(t, 1)
	defer cg.Close(context.Background())

	if cg.ring.Remaining() == 0 {
		t.Fatal("NewCachedGenerator should warm up the ring before returning")
	}
}

func TestNewCachedGeneratorRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeBits = 10
	_, err := NewCachedGenerator(context.Background(), cfg, StaticWorkerIDSource(1), zap.NewNop())
	if !IsConfigError(err) {
		t.Errorf("NewCachedGenerator() error = %v, want ConfigError", err)
	}
}

func TestCachedGeneratorGetUniqueIDUnique(t *testing.T) {
	cg := newTestCachedGenerator(t, 2)
	defer cg.Close(context.Background())

	seen := make(map[ID]bool)
	for i := 0; i < 100; i++ {
		id, err := cg.GetUniqueID()
		if err != nil {
			t.Fatalf("GetUniqueID() error = %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %d at call %d", id, i)
		}
		seen[id] = true
	}
}

func TestCachedGeneratorParseUniqueID(t *testing.T) {
	cg := newTestCachedGenerator(t, 7)
	defer cg.Close(context.Background())

	id, err := cg.GetUniqueID()
	if err != nil {
		t.Fatalf("GetUniqueID() error = %v", err)
	}

	_, worker, _, ok := cg.ParseUniqueID(id)
	if !ok {
		t.Fatal("ParseUniqueID() ok = false")
	}
	if worker != 7 {
		t.Errorf("ParseUniqueID() worker = %d, want 7", worker)
	}
}

func TestCachedGeneratorMetrics(t *testing.T) {
	cg := newTestCachedGenerator(t, 1)
	defer cg.Close(context.Background())

	cg.GetUniqueID()
	metrics, remaining := cg.Metrics()
	if metrics.Generated == 0 {
		t.Error("Metrics().Generated should be nonzero after warm-up")
	}
	if remaining < 0 {
		t.Error("Metrics() remaining should be non-negative")
	}
}

func TestCachedGeneratorCloseThenGetUniqueID(t *testing.T) {
	cg := newTestCachedGenerator(t, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cg.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	_, err := cg.GetUniqueID()
	if !errors.Is(err, ErrShutdown) {
		t.Errorf("GetUniqueID() after Close error = %v, want ErrShutdown", err)
	}
}

func TestCachedGeneratorCloseIsIdempotent(t *testing.T) {
	cg := newTestCachedGenerator(t, 1)
	ctx := context.Background()

	if err := cg.Close(ctx); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := cg.Close(ctx); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestNewCachedGeneratorDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false

	cg, err := NewCachedGenerator(context.Background(), cfg, StaticWorkerIDSource(1), zap.NewNop())
	if err != nil {
		t.Fatalf("NewCachedGenerator() error = %v", err)
	}

	if _, err := cg.GetUniqueID(); !errors.Is(err, ErrDisabled) {
		t.Errorf("GetUniqueID() on disabled generator error = %v, want ErrDisabled", err)
	}

	if metrics, remaining := cg.Metrics(); metrics != (MinterMetrics{}) || remaining != 0 {
		t.Errorf("Metrics() on disabled generator = %+v, %d, want zero values", metrics, remaining)
	}

	if err := cg.Close(context.Background()); err != nil {
		t.Errorf("Close() on disabled generator error = %v, want nil", err)
	}

	id := ID(1<<22 | 1<<12)
	if _, _, _, ok := cg.ParseUniqueID(id); !ok {
		t.Error("ParseUniqueID() on disabled generator should still decode using the configured layout")
	}
}

func TestNewCachedGeneratorWithSchedule(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BoostPower = 1
	cfg.ScheduleInterval = 3600

	cg, err := NewCachedGenerator(context.Background(), cfg, StaticWorkerIDSource(1), zap.NewNop())
	if err != nil {
		t.Fatalf("NewCachedGenerator() error = %v", err)
	}
	defer cg.Close(context.Background())

	if cg.executor.cronSched == nil {
		t.Error("NewCachedGenerator with ScheduleInterval should start a cron schedule")
	}
}
