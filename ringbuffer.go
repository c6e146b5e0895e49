// Package snowflake - ringbuffer.go implements the lock-free
// single-producer / multi-consumer ring buffer that the cached generator
// variant draws pre-minted ids from. Slots carry a payload and a flag;
// the flags, together with the put-side payload/flag/tail publication
// order, are the entire synchronization protocol between the padding
// producer and concurrent consumers.
package snowflake

import "sync/atomic"

const (
	flagEmpty int64 = 0
	flagFull  int64 = 1

	ringStart = -1

	defaultPaddingFactor = 50
)

// paddedInt64 wraps a single atomic counter in enough surrounding bytes to
// occupy a full cache line on common hardware (64 bytes), so that two
// independently-mutated counters never false-share a line. tail, cursor,
// and every per-slot flag use this type.
type paddedInt64 struct {
	_     [7]int64 // leading pad
	value atomic.Int64
	_     [7]int64 // trailing pad
}

func newPaddedInt64(v int64) *paddedInt64 {
	p := &paddedInt64{}
	p.value.Store(v)
	return p
}

// RejectedPutBufferHandler is invoked when Put finds the ring full or the
// target slot not yet drained. The default implementation discards the id
// without logging (RingBuffer holds no logger; NewCachedGenerator installs
// a handler that logs at debug level) — ids are plentiful, so dropping one
// is an acceptable soft failure.
type RejectedPutBufferHandler func(rb *RingBuffer, id ID)

// RejectedTakeBufferHandler is invoked when Take finds the ring empty. The
// default implementation returns ErrExhausted; a caller-supplied handler
// that doesn't panic or itself return an error causes Take to return a
// zero ID with a nil error, so custom handlers should generally call
// panic or rely on the default.
type RejectedTakeBufferHandler func(rb *RingBuffer) error

// RingBuffer is a bounded, power-of-two-sized circular buffer of
// pre-minted ids. A single producer goroutine (the padding executor) may
// call Put; any number of goroutines may call Take concurrently.
type RingBuffer struct {
	bufferSize int
	indexMask  int64

	slots []int64
	flags []*paddedInt64

	tail   *paddedInt64
	cursor *paddedInt64

	paddingThreshold int64

	rejectedPut  RejectedPutBufferHandler
	rejectedTake RejectedTakeBufferHandler

	// requestPadding is called by Take when the remaining fill drops below
	// paddingThreshold. It must not block.
	requestPadding func()

	putMu chan struct{} // 1-buffered, acts as Put's serializing lock
}

// NewRingBuffer constructs a ring buffer of the given size (must be a
// power of two) and padding factor (a percentage in (0, 100) of bufferSize
// at which Take requests a refill).
func NewRingBuffer(bufferSize int, paddingFactor int) *RingBuffer {
	if bufferSize <= 0 || bufferSize&(bufferSize-1) != 0 {
		panic("snowflake: ring buffer size must be a positive power of two")
	}
	if paddingFactor <= 0 || paddingFactor >= 100 {
		paddingFactor = defaultPaddingFactor
	}

	rb := &RingBuffer{
		bufferSize:       bufferSize,
		indexMask:        int64(bufferSize - 1),
		slots:            make([]int64, bufferSize),
		flags:            make([]*paddedInt64, bufferSize),
		tail:             newPaddedInt64(ringStart),
		cursor:           newPaddedInt64(ringStart),
		paddingThreshold: int64(bufferSize * paddingFactor / 100),
		putMu:            make(chan struct{}, 1),
	}
	for i := range rb.flags {
		rb.flags[i] = newPaddedInt64(flagEmpty)
	}
	rb.putMu <- struct{}{}

	rb.rejectedPut = func(*RingBuffer, ID) {}
	rb.rejectedTake = func(*RingBuffer) error { return ErrExhausted }
	return rb
}

// SetRejectedPutHandler overrides the default silent-discard behavior.
func (rb *RingBuffer) SetRejectedPutHandler(h RejectedPutBufferHandler) {
	if h != nil {
		rb.rejectedPut = h
	}
}

// SetRejectedTakeHandler overrides the default ErrExhausted behavior.
func (rb *RingBuffer) SetRejectedTakeHandler(h RejectedTakeBufferHandler) {
	if h != nil {
		rb.rejectedTake = h
	}
}

// SetPaddingRequester wires the callback Take uses to ask for a refill.
// It must be set before Take is called concurrently with Put.
func (rb *RingBuffer) SetPaddingRequester(f func()) {
	rb.requestPadding = f
}

// BufferSize returns the number of slots in the ring.
func (rb *RingBuffer) BufferSize() int { return rb.bufferSize }

// Put inserts id at the next tail position. Callers must ensure only one
// producer calls Put concurrently; the channel-based lock below guards
// against accidental concurrent producers but the flag/tail publication
// order is only correct under a single producer (see DESIGN.md).
//
// Returns false, invoking the rejected-put handler, if the ring is full or
// the next slot has not yet been drained by a consumer.
func (rb *RingBuffer) Put(id ID) bool {
	<-rb.putMu
	defer func() { rb.putMu <- struct{}{} }()

	currentTail := rb.tail.value.Load()
	currentCursor := rb.cursor.value.Load()
	if currentCursor == ringStart {
		currentCursor = 0
	}

	if currentTail-currentCursor == int64(rb.bufferSize-1) {
		rb.rejectedPut(rb, id)
		return false
	}

	nextTail := currentTail + 1
	idx := rb.slotIndex(nextTail)
	if rb.flags[idx].value.Load() != flagEmpty {
		rb.rejectedPut(rb, id)
		return false
	}

	// Publication order matters: payload, then flag (release), then tail
	// (release). A consumer that observes the new tail is guaranteed to
	// observe the flag and payload written here.
	rb.slots[idx] = int64(id)
	rb.flags[idx].value.Store(flagFull)
	rb.tail.value.Store(nextTail)
	return true
}

// Take removes and returns the id at the next cursor position. It never
// blocks: if the ring is empty it invokes the rejected-take handler and
// returns whatever that handler yields (ErrExhausted by default).
//
// Ids returned by concurrent Take calls are pairwise unique and drawn from
// a contiguous band of recently-minted values, but are not guaranteed to
// be observed in increasing order, because cursor advancement is atomic
// while the slot read that follows it is not.
func (rb *RingBuffer) Take() (ID, error) {
	var currentCursor, nextCursor int64
	for {
		c := rb.cursor.value.Load()
		t := rb.tail.value.Load()
		want := c
		if c != t {
			want = c + 1
		}
		if rb.cursor.value.CompareAndSwap(c, want) {
			nextCursor = want
			currentCursor = c
			break
		}
	}

	currentTail := rb.tail.value.Load()
	if rb.requestPadding != nil && currentTail-nextCursor < rb.paddingThreshold {
		rb.requestPadding()
	}

	if nextCursor == currentCursor {
		if err := rb.rejectedTake(rb); err != nil {
			return 0, err
		}
		return 0, nil
	}

	idx := rb.slotIndex(nextCursor)
	// Defensive invariant check: the slot we are about to read must have
	// been published by Put.
	if rb.flags[idx].value.Load() != flagFull {
		return 0, ErrExhausted
	}

	id := rb.slots[idx]
	// The flag must be cleared after reading the payload: flipping it
	// first would let a concurrent Put overwrite the slot before this read
	// completes, and the consumer would return a newer value than the
	// cursor it claimed.
	rb.flags[idx].value.Store(flagEmpty)
	return ID(id), nil
}

// Remaining returns an approximate count of unconsumed slots (tail minus
// cursor). It is a snapshot, not synchronized with concurrent Put/Take.
func (rb *RingBuffer) Remaining() int64 {
	return rb.tail.value.Load() - rb.cursor.value.Load()
}

func (rb *RingBuffer) slotIndex(sequence int64) int64 {
	return sequence & rb.indexMask
}
