// Package snowflake - padding.go implements the background replenishment
// loop that keeps a RingBuffer full: PaddingExecutor in the component
// design. Concurrent refill requests coalesce onto one in-flight cycle
// via singleflight, and an optional cron schedule can top the buffer up
// proactively during quiet periods.
package snowflake

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PaddingExecutor drives Minter.NextIDsForSecond into a RingBuffer,
// asynchronously on demand and optionally on a fixed schedule.
type PaddingExecutor struct {
	ring   *RingBuffer
	minter *Minter
	log    *zap.Logger

	running atomic.Bool
	group   singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	cronSched *cron.Cron
	nextSec   atomic.Int64
}

// NewPaddingExecutor constructs an executor over the given ring and
// minter. log may be nil, in which case padding events are not logged.
func NewPaddingExecutor(ring *RingBuffer, minter *Minter, log *zap.Logger) *PaddingExecutor {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	pe := &PaddingExecutor{
		ring:   ring,
		minter: minter,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	pe.nextSec.Store(time.Now().Unix())
	ring.SetPaddingRequester(pe.AsyncPadding)
	return pe
}

// PaddingBuffer synchronously fills the ring buffer until a full cycle
// makes no further progress: either the ring reports it is full (Put
// rejected) or a whole second's worth of ids failed to advance Remaining.
// Called once at warm-up, before the background loop starts, and by
// AsyncPadding for every coalesced request thereafter.
func (pe *PaddingExecutor) PaddingBuffer() {
	if !pe.running.CompareAndSwap(false, true) {
		return
	}
	defer pe.running.Store(false)

	for {
		before := pe.ring.Remaining()
		second := pe.nextSec.Load()
		ids := pe.minter.NextIDsForSecond(second)
		pe.nextSec.Store(second + 1)

		accepted := 0
		for _, id := range ids {
			if pe.ring.Put(id) {
				accepted++
			} else {
				pe.log.Debug("padding buffer put rejected", zap.Int64("id", int64(id)))
			}
		}

		after := pe.ring.Remaining()
		if accepted == 0 || after <= before {
			return
		}
	}
}

// AsyncPadding requests a padding cycle without blocking the caller.
// Concurrent calls while a cycle is already in flight are coalesced onto
// that cycle's result via singleflight, so at most one refill runs at a
// time.
func (pe *PaddingExecutor) AsyncPadding() {
	pe.wg.Add(1)
	go func() {
		defer pe.wg.Done()
		pe.group.Do("padding", func() (interface{}, error) {
			pe.PaddingBuffer()
			return nil, nil
		})
	}()
}

// StartScheduled runs PaddingBuffer on a cron schedule in addition to
// on-demand padding, for deployments that prefer proactively topping up
// the buffer during quiet periods over waiting for the threshold trigger.
// spec is anything cron/v3 accepts: a standard five-field expression or
// an "@every 30s" interval.
func (pe *PaddingExecutor) StartScheduled(spec string) error {
	pe.cronSched = cron.New()
	_, err := pe.cronSched.AddFunc(spec, pe.AsyncPadding)
	if err != nil {
		return err
	}
	pe.cronSched.Start()
	return nil
}

// Shutdown stops any running cron schedule and waits, up to ctx's
// deadline, for in-flight padding cycles to finish.
func (pe *PaddingExecutor) Shutdown(ctx context.Context) error {
	pe.cancel()
	if pe.cronSched != nil {
		<-pe.cronSched.Stop().Done()
	}

	done := make(chan struct{})
	go func() {
		pe.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
