package snowflake

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestPaddingExecutorPaddingBufferFillsRing(t *testing.T) {
	layout := BitLayout{TimeBits: 43, WorkerBits: 10, SeqBits: 10}
	_ = layout.Validate()

	minter, err := NewMinter(context.Background(), layout, DefaultEpoch, StaticWorkerIDSource(1), RegressionTolerant, 5)
	if err != nil {
		t.Fatalf("NewMinter() error = %v", err)
	}

	bufferSize := int(layout.MaxSequence()+1) * 2
	ring := NewRingBuffer(bufferSize, 50)
	pe := NewPaddingExecutor(ring, minter, zap.NewNop())

	pe.PaddingBuffer()

	if ring.Remaining() == 0 {
		t.Fatal("PaddingBuffer() left the ring empty")
	}
}

func TestPaddingExecutorPaddingBufferStopsWhenFull(t *testing.T) {
	layout := BitLayout{TimeBits: 49, WorkerBits: 10, SeqBits: 4} // small: 16 ids/sec
	_ = layout.Validate()

	minter, err := NewMinter(context.Background(), layout, DefaultEpoch, StaticWorkerIDSource(1), RegressionTolerant, 5)
	if err != nil {
		t.Fatalf("NewMinter() error = %v", err)
	}

	ring := NewRingBuffer(16, 50) // exactly one second's worth
	pe := NewPaddingExecutor(ring, minter, zap.NewNop())

	done := make(chan struct{})
	go func() {
		pe.PaddingBuffer()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("PaddingBuffer() did not converge once the ring stopped accepting puts")
	}
}

func TestPaddingExecutorAsyncPaddingCoalesces(t *testing.T) {
	minter := newTestMinter(t, 1)
	ring := NewRingBuffer(int(DefaultLayout.MaxSequence()+1), 50)
	pe := NewPaddingExecutor(ring, minter, zap.NewNop())

	// Multiple concurrent requests should not panic or deadlock; singleflight
	// coalesces them onto whichever cycle is in flight.
	for i := 0; i < 5; i++ {
		pe.AsyncPadding()
	}

	if err := pe.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestPaddingExecutorRingWiresRequestPadding(t *testing.T) {
	minter := newTestMinter(t, 1)
	ring := NewRingBuffer(int(DefaultLayout.MaxSequence()+1), 50)
	pe := NewPaddingExecutor(ring, minter, zap.NewNop())
	pe.PaddingBuffer()

	if ring.requestPadding == nil {
		t.Fatal("NewPaddingExecutor should wire RingBuffer.requestPadding")
	}

	if err := pe.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestPaddingExecutorShutdownIsIdempotentSafe(t *testing.T) {
	minter := newTestMinter(t, 1)
	ring := NewRingBuffer(int(DefaultLayout.MaxSequence()+1), 50)
	pe := NewPaddingExecutor(ring, minter, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := pe.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := pe.Shutdown(ctx); err != nil {
		t.Fatalf("second Shutdown() error = %v", err)
	}
}

func TestPaddingExecutorStartScheduledRejectsBadCron(t *testing.T) {
	minter := newTestMinter(t, 1)
	ring := NewRingBuffer(int(DefaultLayout.MaxSequence()+1), 50)
	pe := NewPaddingExecutor(ring, minter, zap.NewNop())

	if err := pe.StartScheduled("not a cron expression"); err == nil {
		t.Fatal("StartScheduled() with an invalid expression should return an error")
	}
}

func TestPaddingExecutorStartScheduledValid(t *testing.T) {
	minter := newTestMinter(t, 1)
	ring := NewRingBuffer(int(DefaultLayout.MaxSequence()+1), 50)
	pe := NewPaddingExecutor(ring, minter, zap.NewNop())

	if err := pe.StartScheduled("@every 1h"); err != nil {
		t.Fatalf("StartScheduled() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := pe.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}
