// Package snowflake - facade.go implements CachedGenerator, the
// CachedFacade of the component design: a ring-buffer-backed generator
// that answers GetUniqueID from pre-minted stock instead of minting
// synchronously on every call, trading a small amount of staleness risk
// for much lower per-call latency under contention.
package snowflake

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// CachedGenerator wires together a Minter, a RingBuffer, and a
// PaddingExecutor. Construction order matters: resolve the worker id,
// build the layout, size and build the ring buffer, build the padding
// executor, warm it up synchronously, then start its background loop.
type CachedGenerator struct {
	minter   *Minter
	ring     *RingBuffer
	executor *PaddingExecutor
	log      *zap.Logger
	layout   BitLayout

	closed   atomic.Bool
	disabled bool
}

// NewCachedGenerator constructs and warms up a CachedGenerator from cfg.
// The returned generator's background padding loop is already running;
// callers must call Close when done with it.
//
// If cfg.Enabled is false, no Minter, RingBuffer, or PaddingExecutor is
// constructed at all: the returned generator answers every GetUniqueID
// call with ErrDisabled and Close is a no-op. ParseUniqueID still works,
// since decoding an id needs only the layout, not a live minter.
func NewCachedGenerator(ctx context.Context, cfg Config, workerSource WorkerIDSource, log *zap.Logger) (*CachedGenerator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	layout := cfg.Layout()
	if !cfg.Enabled {
		cg := &CachedGenerator{log: log, layout: layout, disabled: true}
		cg.closed.Store(true)
		return cg, nil
	}

	epoch, err := cfg.EpochSeconds()
	if err != nil {
		return nil, err
	}

	minter, err := NewMinter(ctx, layout, epoch, workerSource, cfg.RegressionPolicy(), cfg.MaxBackwardSeconds)
	if err != nil {
		return nil, err
	}

	bufferSize := int(layout.MaxSequence()+1) << cfg.BoostPower
	ring := NewRingBuffer(bufferSize, cfg.PaddingFactor)
	ring.SetRejectedPutHandler(func(_ *RingBuffer, id ID) {
		log.Debug("cached generator: ring buffer put rejected", zap.Int64("id", int64(id)))
	})

	executor := NewPaddingExecutor(ring, minter, log)

	cg := &CachedGenerator{
		minter:   minter,
		ring:     ring,
		executor: executor,
		log:      log,
		layout:   layout,
	}

	// Warm-up must happen before the schedule starts: PaddingBuffer runs
	// once synchronously so the first caller never finds an empty ring.
	executor.PaddingBuffer()

	if cfg.ScheduleInterval > 0 {
		if err := executor.StartScheduled(fmt.Sprintf("@every %ds", cfg.ScheduleInterval)); err != nil {
			return nil, err
		}
	}

	return cg, nil
}

// GetUniqueID returns the next id from the ring buffer, triggering an
// asynchronous refill if the buffer has dropped below its padding
// threshold. Returns ErrDisabled if cfg.Enabled was false at construction,
// or ErrShutdown once Close has been called.
func (cg *CachedGenerator) GetUniqueID() (ID, error) {
	if cg.disabled {
		return 0, ErrDisabled
	}
	if cg.closed.Load() {
		return 0, ErrShutdown
	}
	return cg.ring.Take()
}

// ParseUniqueID decodes an id minted by this generator's layout. Works
// even when the generator was constructed disabled.
func (cg *CachedGenerator) ParseUniqueID(id ID) (deltaSeconds, workerID, seq int64, ok bool) {
	return cg.layout.Parse(int64(id))
}

// Metrics returns the underlying minter's lifetime counters plus the
// ring buffer's current fill level. Returns a zero MinterMetrics and a
// zero fill level for a disabled generator, since neither exists.
func (cg *CachedGenerator) Metrics() (MinterMetrics, int64) {
	if cg.disabled {
		return MinterMetrics{}, 0
	}
	return cg.minter.Metrics(), cg.ring.Remaining()
}

// Close stops the background padding loop and marks the generator
// unusable. Subsequent GetUniqueID calls return ErrShutdown. Close waits,
// up to ctx's deadline, for any in-flight padding cycle to finish. A
// no-op on a disabled generator, which never started one.
func (cg *CachedGenerator) Close(ctx context.Context) error {
	if cg.disabled {
		return nil
	}
	if !cg.closed.CompareAndSwap(false, true) {
		return nil
	}
	return cg.executor.Shutdown(ctx)
}
