// Package snowflake - errors.go provides the typed errors for every fatal
// and soft condition this package can raise, with enough context attached
// to debug clock and capacity problems without re-deriving state.
package snowflake

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is against these, or errors.As against the
// richer *Error types below when more context is needed.
var (
	// ErrInvalidLayout is returned when a BitLayout does not sum to 63 bits
	// or has a non-positive field. Raised at construction time; fatal.
	ErrInvalidLayout = errors.New("snowflake: invalid bit layout")

	// ErrWorkerIDTooLarge is returned when a worker id does not fit the
	// configured layout's worker field.
	ErrWorkerIDTooLarge = errors.New("snowflake: worker id too large for layout")

	// ErrTimestampExhausted is returned when the current second minus the
	// epoch second exceeds the layout's maximum delta. The service cannot
	// recover from this without being re-deployed under a new layout.
	ErrTimestampExhausted = errors.New("snowflake: timestamp bits exhausted")

	// ErrClockRegression is returned when the wall clock moves backwards
	// further than the configured policy tolerates. Callers may retry.
	ErrClockRegression = errors.New("snowflake: clock moved backwards")

	// ErrExhausted is returned by the cached generator when a consumer
	// outran the padding executor and the ring buffer is empty. Callers
	// may retry.
	ErrExhausted = errors.New("snowflake: ring buffer exhausted")

	// ErrPutRejected names the soft condition of a full ring buffer. No
	// function in this package returns it: a rejected Put calls the
	// RejectedPutBufferHandler with the id and returns false, and the
	// default handler discards the id without logging.
	ErrPutRejected = errors.New("snowflake: ring buffer put rejected")

	// ErrInvalidConfig is returned when Config fails validation.
	ErrInvalidConfig = errors.New("snowflake: invalid configuration")

	// ErrShutdown is returned by CachedGenerator.GetUniqueID once Close has
	// been called; there is no padding executor left to refill the ring.
	ErrShutdown = errors.New("snowflake: generator is shut down")

	// ErrDisabled is returned by CachedGenerator.GetUniqueID, and by the
	// CLI's config-driven minting path, when Config.Enabled is false.
	ErrDisabled = errors.New("snowflake: subsystem disabled by configuration")
)

// ClockRegressionError carries the timing detail behind ErrClockRegression:
// how far the clock moved back, what the policy's tolerance was, and which
// worker observed it.
type ClockRegressionError struct {
	CurrentSecond   int64
	LastSecond      int64
	ToleranceSecond int64
	WorkerID        int64
}

func (e *ClockRegressionError) Error() string {
	return fmt.Sprintf("snowflake: clock moved backwards by %ds (tolerance=%ds, current=%d, last=%d, worker=%d)",
		e.LastSecond-e.CurrentSecond, e.ToleranceSecond, e.CurrentSecond, e.LastSecond, e.WorkerID)
}

func (e *ClockRegressionError) Unwrap() error { return ErrClockRegression }

// TimestampExhaustedError carries the detail behind ErrTimestampExhausted.
type TimestampExhaustedError struct {
	CurrentSecond   int64
	EpochSecond     int64
	MaxDeltaSeconds int64
	WorkerID        int64
}

func (e *TimestampExhaustedError) Error() string {
	return fmt.Sprintf("snowflake: timestamp bits exhausted: delta=%ds exceeds max=%ds (epoch=%d, now=%d, worker=%d)",
		e.CurrentSecond-e.EpochSecond, e.MaxDeltaSeconds, e.EpochSecond, e.CurrentSecond, e.WorkerID)
}

func (e *TimestampExhaustedError) Unwrap() error { return ErrTimestampExhausted }

// ConfigError describes a single invalid Config field.
type ConfigError struct {
	Field      string
	Value      string
	Reason     string
	Constraint string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("snowflake: invalid configuration: %s=%s (%s) - %s",
		e.Field, e.Value, e.Reason, e.Constraint)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

func newConfigError(field, value, reason, constraint string) *ConfigError {
	return &ConfigError{Field: field, Value: value, Reason: reason, Constraint: constraint}
}

// IsClockRegression reports whether err is or wraps a ClockRegressionError.
func IsClockRegression(err error) bool {
	var e *ClockRegressionError
	return errors.As(err, &e)
}

// IsTimestampExhausted reports whether err is or wraps a TimestampExhaustedError.
func IsTimestampExhausted(err error) bool {
	var e *TimestampExhaustedError
	return errors.As(err, &e)
}

// IsConfigError reports whether err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}
