// Package snowflake provides a distributed unique 64-bit id generator.
//
// layout.go defines BitLayout, the allocator for the three fields packed
// into every generated id: a whole-seconds delta from a configured epoch,
// a worker identity, and an intra-second sequence.
package snowflake

import (
	"fmt"
)

// BitLayout describes how the 63 usable bits of an id (everything below the
// sign bit, which is always zero) are split between the three fields.
//
// The triple is fixed once a generator is constructed from it: changing it
// invalidates the meaning of every id issued under the previous layout,
// because the same shifts are reused to both allocate and parse.
type BitLayout struct {
	// TimeBits is the width of the delta-seconds field, in the high bits.
	TimeBits int
	// WorkerBits is the width of the worker-identity field.
	WorkerBits int
	// SeqBits is the width of the intra-second sequence field, in the low bits.
	SeqBits int

	// precomputed at Validate time
	timestampShift int
	workerShift    int
	maxDelta       int64
	maxWorker      int64
	maxSeq         int64
}

// DefaultLayout is this package's recommended layout: roughly 272 years of
// headroom from the epoch, up to ~1M workers, 1024 ids/sec/worker.
var DefaultLayout = mustLayout(33, 20, 10)

// ClassicLayout is the 28/22/13 allocation used by older deployments:
// ~8.5 years of headroom, up to ~4.2M workers, 8192 ids/sec/worker. Kept
// for migration and comparison against systems that were seeded from that
// layout.
var ClassicLayout = mustLayout(28, 22, 13)

// mustLayout builds and validates a layout, so the package-level presets
// are usable for Allocate/Parse without a separate Validate call.
func mustLayout(timeBits, workerBits, seqBits int) BitLayout {
	l := BitLayout{TimeBits: timeBits, WorkerBits: workerBits, SeqBits: seqBits}
	if err := l.Validate(); err != nil {
		panic(err)
	}
	return l
}

// Validate checks that the layout sums to exactly 63 bits and that every
// field is positive, then caches the derived shifts and maxima on the
// struct. Must be called (directly, or via NewMinter/NewCachedGenerator)
// before Allocate or Parse are used.
func (l *BitLayout) Validate() error {
	if l.TimeBits <= 0 {
		return fmt.Errorf("%w: time bits must be positive, got %d", ErrInvalidLayout, l.TimeBits)
	}
	if l.WorkerBits <= 0 {
		return fmt.Errorf("%w: worker bits must be positive, got %d", ErrInvalidLayout, l.WorkerBits)
	}
	if l.SeqBits <= 0 {
		return fmt.Errorf("%w: sequence bits must be positive, got %d", ErrInvalidLayout, l.SeqBits)
	}
	total := l.TimeBits + l.WorkerBits + l.SeqBits
	if total != 63 {
		return fmt.Errorf("%w: time+worker+seq bits must sum to 63, got %d (%d+%d+%d)",
			ErrInvalidLayout, total, l.TimeBits, l.WorkerBits, l.SeqBits)
	}

	l.workerShift = l.SeqBits
	l.timestampShift = l.WorkerBits + l.SeqBits
	l.maxDelta = (int64(1) << l.TimeBits) - 1
	l.maxWorker = (int64(1) << l.WorkerBits) - 1
	l.maxSeq = (int64(1) << l.SeqBits) - 1
	return nil
}

// MaxDeltaSeconds returns the largest delta-seconds value this layout can
// encode. Valid only after Validate.
func (l BitLayout) MaxDeltaSeconds() int64 { return l.maxDelta }

// MaxWorkerID returns the largest worker id this layout can encode.
func (l BitLayout) MaxWorkerID() int64 { return l.maxWorker }

// MaxSequence returns the largest sequence value this layout can encode.
func (l BitLayout) MaxSequence() int64 { return l.maxSeq }

// ValidateWorkerID reports whether workerID fits within this layout's
// worker field.
func (l BitLayout) ValidateWorkerID(workerID int64) error {
	if workerID < 0 || workerID > l.maxWorker {
		return fmt.Errorf("%w: worker id %d exceeds layout maximum %d (%d bits)",
			ErrWorkerIDTooLarge, workerID, l.maxWorker, l.WorkerBits)
	}
	return nil
}

// Allocate packs (deltaSeconds, workerID, seq) into a single id.
//
// Callers are responsible for ensuring each argument fits within its
// field's maximum; Allocate does not mask or clamp. The sign bit of the
// result is always zero because TimeBits+WorkerBits+SeqBits == 63.
func (l BitLayout) Allocate(deltaSeconds, workerID, seq int64) int64 {
	return (deltaSeconds << l.timestampShift) | (workerID << l.workerShift) | seq
}

// Parse recovers (deltaSeconds, workerID, seq) from an id produced by this
// layout. It returns ok=false for ids that are not positive, since those
// cannot have been produced by Allocate.
func (l BitLayout) Parse(id int64) (deltaSeconds, workerID, seq int64, ok bool) {
	if id <= 0 {
		return 0, 0, 0, false
	}
	deltaSeconds = id >> l.timestampShift
	workerID = (id >> l.workerShift) & l.maxWorker
	seq = id & l.maxSeq
	return deltaSeconds, workerID, seq, true
}
