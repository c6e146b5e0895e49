// Package snowflake - minter.go implements the synchronized minting
// critical section: DirectMinter in the component design, exposed here as
// Minter. It assigns the next id under a single mutex, handling sequence
// rollover within a second and clock regression across seconds.
package snowflake

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// RegressionPolicy controls what Minter does when the wall clock is
// observed to move backwards.
type RegressionPolicy int

const (
	// RegressionTolerant spins waiting for the clock to catch up when the
	// regression is within MaxBackwardSeconds, and reassigns the worker id
	// (without resetting lastSecond — see the package-level note on
	// NextID) when it exceeds that tolerance.
	RegressionTolerant RegressionPolicy = iota
	// RegressionStrict fails every regression with ErrClockRegression,
	// regardless of size.
	RegressionStrict
)

// MinterMetrics is a snapshot of a Minter's lifetime counters.
type MinterMetrics struct {
	Generated        int64
	ClockBackward    int64
	ClockBackwardErr int64
	SequenceOverflow int64
	WaitTimeMicros   int64
}

// Minter performs synchronized, monotonic id allocation for a single
// worker. It is the DirectMinter of the component design: the direct
// variant answers GetUniqueID calls itself; the cached variant (see
// CachedGenerator) uses Minter only to pre-mint batches fed into a ring
// buffer.
type Minter struct {
	mu sync.Mutex

	layout BitLayout
	epoch  int64 // seconds, UTC

	workerSource WorkerIDSource
	policy       RegressionPolicy
	maxBackward  int64 // seconds

	workerID   int64
	lastSecond int64
	sequence   int64

	generated        atomic.Int64
	clockBackward    atomic.Int64
	clockBackwardErr atomic.Int64
	sequenceOverflow atomic.Int64
	waitTimeMicros   atomic.Int64

	now func() time.Time // overridable for tests
}

// NewMinter constructs a Minter from a validated layout, an epoch date
// (seconds since Unix epoch, UTC midnight), a worker-id source, and a
// regression policy. The worker id is resolved immediately by calling
// workerSource once.
func NewMinter(ctx context.Context, layout BitLayout, epochSeconds int64, workerSource WorkerIDSource, policy RegressionPolicy, maxBackwardSeconds int64) (*Minter, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	workerID, err := workerSource.WorkerID(ctx)
	if err != nil {
		return nil, err
	}
	workerID = workerID % (layout.MaxWorkerID() + 1)

	return &Minter{
		layout:       layout,
		epoch:        epochSeconds,
		workerSource: workerSource,
		policy:       policy,
		maxBackward:  maxBackwardSeconds,
		workerID:     workerID,
		lastSecond:   -1,
		now:          time.Now,
	}, nil
}

// WorkerID returns the worker id currently in use. It may change over the
// minter's lifetime if a clock regression triggers reassignment.
func (m *Minter) WorkerID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.workerID
}

// Metrics returns a snapshot of this minter's lifetime counters.
func (m *Minter) Metrics() MinterMetrics {
	return MinterMetrics{
		Generated:        m.generated.Load(),
		ClockBackward:    m.clockBackward.Load(),
		ClockBackwardErr: m.clockBackwardErr.Load(),
		SequenceOverflow: m.sequenceOverflow.Load(),
		WaitTimeMicros:   m.waitTimeMicros.Load(),
	}
}

// NextID mints a single id. Ids from a single Minter are strictly
// increasing.
//
// On intolerable clock regression under RegressionTolerant, this
// reassigns the worker id and continues minting as if the current second
// were still lastSecond, rather than rewinding lastSecond to the
// regressed wall clock. A burst large enough to overflow the sequence
// field under the new worker id still blocks on real wall time until it
// reaches the old lastSecond, the same as an ordinary in-tolerance
// regression would. See DESIGN.md for why lastSecond is never moved
// backward.
func (m *Minter) NextID(ctx context.Context) (ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now, err := m.currentSecondLocked()
	if err != nil {
		return 0, err
	}

	if now < m.lastSecond {
		m.clockBackward.Add(1)
		regressed := m.lastSecond - now

		if m.policy == RegressionTolerant {
			if regressed <= m.maxBackward {
				for now < m.lastSecond {
					select {
					case <-ctx.Done():
						return 0, ctx.Err()
					default:
					}
					now, err = m.currentSecondLocked()
					if err != nil {
						return 0, err
					}
				}
			} else {
				newWorkerID, werr := m.workerSource.WorkerID(ctx)
				if werr != nil {
					return 0, werr
				}
				m.workerID = newWorkerID % (m.layout.MaxWorkerID() + 1)
				// Treat this mint as happening at lastSecond rather than the
				// regressed wall clock, so it falls into the sequence-advance
				// path below instead of rewinding lastSecond. If the sequence
				// then overflows, the spin loop already blocks on real wall
				// time until it reaches lastSecond again.
				now = m.lastSecond
			}
		} else {
			m.clockBackwardErr.Add(1)
			return 0, &ClockRegressionError{
				CurrentSecond:   now,
				LastSecond:      m.lastSecond,
				ToleranceSecond: m.maxBackward,
				WorkerID:        m.workerID,
			}
		}
	}

	if now == m.lastSecond {
		m.sequence = (m.sequence + 1) & m.layout.MaxSequence()
		if m.sequence == 0 {
			m.sequenceOverflow.Add(1)
			waitStart := time.Now()
			for now <= m.lastSecond {
				select {
				case <-ctx.Done():
					return 0, ctx.Err()
				default:
				}
				now, err = m.currentSecondLocked()
				if err != nil {
					return 0, err
				}
				runtime.Gosched()
			}
			m.waitTimeMicros.Add(time.Since(waitStart).Microseconds())
		}
	} else {
		m.sequence = 0
	}

	m.lastSecond = now
	id := m.layout.Allocate(now-m.epoch, m.workerID, m.sequence)
	m.generated.Add(1)
	return ID(id), nil
}

// NextIDsForSecond returns the contiguous [0..maxSequence] block of ids
// for the given wall-clock second, advancing the minter's internal state
// as if each had been minted individually. PaddingExecutor uses it to
// fill the ring buffer a full second's worth of ids at a time.
func (m *Minter) NextIDsForSecond(second int64) []ID {
	m.mu.Lock()
	defer m.mu.Unlock()

	maxSeq := m.layout.MaxSequence()
	first := m.layout.Allocate(second-m.epoch, m.workerID, 0)

	ids := make([]ID, maxSeq+1)
	for offset := int64(0); offset <= maxSeq; offset++ {
		ids[offset] = ID(first + offset)
	}

	m.lastSecond = second
	m.sequence = maxSeq
	m.generated.Add(maxSeq + 1)
	return ids
}

// currentSecondLocked returns the current wall-clock second and fails
// with ErrTimestampExhausted if it has outrun the layout's delta field.
// Must be called with m.mu held.
func (m *Minter) currentSecondLocked() (int64, error) {
	now := m.now().Unix()
	if now-m.epoch > m.layout.MaxDeltaSeconds() {
		return 0, &TimestampExhaustedError{
			CurrentSecond:   now,
			EpochSecond:     m.epoch,
			MaxDeltaSeconds: m.layout.MaxDeltaSeconds(),
			WorkerID:        m.workerID,
		}
	}
	return now, nil
}
