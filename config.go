// Package snowflake - config.go defines Config, the external-facing
// settings surface for constructing a CachedGenerator or Minter from a
// configuration file or environment, following the viper.UnmarshalKey
// pattern used throughout this codebase's sibling services for their own
// component configs.
package snowflake

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the unmarshaled shape of the "snowflake" configuration
// section. Field names intentionally mirror the bit-layout and ring-buffer
// terms used elsewhere in this package so that a config file reads like
// the code that consumes it.
type Config struct {
	Enabled bool `mapstructure:"enabled"`

	TimeBits   int `mapstructure:"time_bits"`
	WorkerBits int `mapstructure:"worker_bits"`
	SeqBits    int `mapstructure:"seq_bits"`

	// EpochPoint is a UTC calendar date, "2006-01-02", that all generated
	// ids' delta-seconds field is measured from. Must not be in the
	// future relative to when Validate is called.
	EpochPoint string `mapstructure:"epoch_point"`

	BackwardEnabled    bool  `mapstructure:"backward_enabled"`
	MaxBackwardSeconds int64 `mapstructure:"max_backward_seconds"`

	// BoostPower is the left-shift applied to (MaxSequence+1) when sizing
	// the ring buffer: bufferSize = (maxSequence+1) << BoostPower.
	BoostPower int `mapstructure:"boost_power"`
	// PaddingFactor is the percentage fill level, below which Take
	// requests an asynchronous refill.
	PaddingFactor int `mapstructure:"padding_factor"`
	// ScheduleInterval enables proactive padding every this many seconds
	// when > 0. Zero disables the scheduled mode; on-demand padding still
	// runs regardless.
	ScheduleInterval int `mapstructure:"schedule_interval"`
}

// DefaultConfig returns the package's recommended settings: DefaultLayout,
// tolerant clock handling with a one-second grace window, and a ring
// buffer boost power of three (eight seconds' worth of ids).
func DefaultConfig() Config {
	return Config{
		Enabled:            true,
		TimeBits:           DefaultLayout.TimeBits,
		WorkerBits:         DefaultLayout.WorkerBits,
		SeqBits:            DefaultLayout.SeqBits,
		EpochPoint:         "2024-01-01",
		BackwardEnabled:    true,
		MaxBackwardSeconds: 1,
		BoostPower:         3,
		PaddingFactor:      50,
		ScheduleInterval:   0,
	}
}

// LoadConfig reads the "snowflake" key out of v and merges it over
// DefaultConfig, the way this codebase's other components load their
// settings from a shared viper instance.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()
	if v == nil {
		return cfg, nil
	}
	if err := v.UnmarshalKey("snowflake", &cfg); err != nil {
		return Config{}, fmt.Errorf("snowflake: loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges and that EpochPoint parses to a date no
// later than the current moment.
func (c Config) Validate() error {
	if c.TimeBits <= 0 || c.WorkerBits <= 0 || c.SeqBits <= 0 {
		return newConfigError("time_bits/worker_bits/seq_bits", "", "must each be positive", "TimeBits+WorkerBits+SeqBits == 63")
	}
	if c.TimeBits+c.WorkerBits+c.SeqBits != 63 {
		return newConfigError("time_bits+worker_bits+seq_bits", fmt.Sprintf("%d", c.TimeBits+c.WorkerBits+c.SeqBits), "must sum to 63", "TimeBits+WorkerBits+SeqBits == 63")
	}
	if c.MaxBackwardSeconds < 0 {
		return newConfigError("max_backward_seconds", fmt.Sprintf("%d", c.MaxBackwardSeconds), "must be non-negative", ">= 0")
	}
	if c.BoostPower < 0 {
		return newConfigError("boost_power", fmt.Sprintf("%d", c.BoostPower), "must be non-negative", ">= 0")
	}
	if c.PaddingFactor <= 0 || c.PaddingFactor >= 100 {
		return newConfigError("padding_factor", fmt.Sprintf("%d", c.PaddingFactor), "must be between 1 and 99", "0 < PaddingFactor < 100")
	}
	if c.ScheduleInterval < 0 {
		return newConfigError("schedule_interval", fmt.Sprintf("%d", c.ScheduleInterval), "must be non-negative", ">= 0, 0 disables")
	}
	epoch, err := c.EpochSeconds()
	if err != nil {
		return err
	}
	if epoch > time.Now().Unix() {
		return newConfigError("epoch_point", c.EpochPoint, "must not be in the future", "EpochPoint <= now")
	}
	return nil
}

// Layout builds the BitLayout described by this config and runs its
// Validate to fill in the derived shifts and maxima. A validation error is
// discarded here; Config.Validate reports it.
func (c Config) Layout() BitLayout {
	l := BitLayout{TimeBits: c.TimeBits, WorkerBits: c.WorkerBits, SeqBits: c.SeqBits}
	_ = l.Validate()
	return l
}

// EpochSeconds parses EpochPoint as a UTC calendar date and returns the
// number of seconds since the Unix epoch at that date's midnight.
func (c Config) EpochSeconds() (int64, error) {
	t, err := time.ParseInLocation("2006-01-02", c.EpochPoint, time.UTC)
	if err != nil {
		return 0, newConfigError("epoch_point", c.EpochPoint, err.Error(), `"YYYY-MM-DD"`)
	}
	return t.Unix(), nil
}

// RegressionPolicy translates BackwardEnabled into the RegressionPolicy a
// Minter is constructed with.
func (c Config) RegressionPolicy() RegressionPolicy {
	if c.BackwardEnabled {
		return RegressionTolerant
	}
	return RegressionStrict
}
