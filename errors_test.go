package snowflake

import (
	"errors"
	"strings"
	"testing"
)

func TestClockRegressionError(t *testing.T) {
	err := &ClockRegressionError{CurrentSecond: 1000, LastSecond: 1005, ToleranceSecond: 2, WorkerID: 7}

	msg := err.Error()
	if !strings.Contains(msg, "clock moved backwards") {
		t.Errorf("Error() = %q, want mention of clock regression", msg)
	}
	if !strings.Contains(msg, "worker=7") {
		t.Errorf("Error() = %q, want worker id", msg)
	}

	if !errors.Is(err, ErrClockRegression) {
		t.Error("ClockRegressionError should unwrap to ErrClockRegression")
	}
	if !IsClockRegression(err) {
		t.Error("IsClockRegression() should report true")
	}
	if IsClockRegression(errors.New("other")) {
		t.Error("IsClockRegression() should report false for unrelated errors")
	}
}

func TestTimestampExhaustedError(t *testing.T) {
	err := &TimestampExhaustedError{CurrentSecond: 5000, EpochSecond: 100, MaxDeltaSeconds: 4000, WorkerID: 3}

	msg := err.Error()
	if !strings.Contains(msg, "timestamp bits exhausted") {
		t.Errorf("Error() = %q, want mention of exhaustion", msg)
	}

	if !errors.Is(err, ErrTimestampExhausted) {
		t.Error("TimestampExhaustedError should unwrap to ErrTimestampExhausted")
	}
	if !IsTimestampExhausted(err) {
		t.Error("IsTimestampExhausted() should report true")
	}
}

func TestConfigError(t *testing.T) {
	err := newConfigError("worker_bits", "-1", "must be positive", ">= 1")

	msg := err.Error()
	for _, want := range []string{"worker_bits", "-1", "must be positive", ">= 1"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want substring %q", msg, want)
		}
	}

	if !errors.Is(err, ErrInvalidConfig) {
		t.Error("ConfigError should unwrap to ErrInvalidConfig")
	}
	if !IsConfigError(err) {
		t.Error("IsConfigError() should report true")
	}
	if IsConfigError(nil) {
		t.Error("IsConfigError(nil) should report false")
	}
}

func TestIsHelpers_RejectUnrelatedTypes(t *testing.T) {
	configErr := newConfigError("x", "y", "z", "w")
	clockErr := &ClockRegressionError{}

	if IsClockRegression(configErr) {
		t.Error("IsClockRegression should not match a ConfigError")
	}
	if IsTimestampExhausted(clockErr) {
		t.Error("IsTimestampExhausted should not match a ClockRegressionError")
	}
	if IsConfigError(clockErr) {
		t.Error("IsConfigError should not match a ClockRegressionError")
	}
}
