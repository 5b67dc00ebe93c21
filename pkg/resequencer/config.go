package resequencer

// Config holds the buffer limits of a resequencer.
// Designed for environment-based configuration, like the other config structs in this module.
type Config struct {
	// SoftLimit is the buffer occupancy that triggers skip-ahead when the expected key is missing.
	SoftLimit int `env:"RESEQUENCER_SOFT_LIMIT" envDefault:"100"`
	// HardLimit is the absolute buffer capacity; 0 means unbounded.
	HardLimit int `env:"RESEQUENCER_HARD_LIMIT" envDefault:"0"`
	// Metrics enables recording of discarded, skipped and dropped keys.
	Metrics bool `env:"RESEQUENCER_METRICS" envDefault:"false"`
}

// DefaultConfig returns sensible defaults:
// soft limit 100, unbounded buffer, no key recording.
func DefaultConfig() Config {
	return Config{
		SoftLimit: 100,
		HardLimit: 0,
		Metrics:   false,
	}
}

func (c Config) validate() error {
	if c.SoftLimit <= 0 {
		return ErrInvalidSoftLimit
	}
	if c.HardLimit < 0 {
		return ErrInvalidHardLimit
	}
	return nil
}

// effectiveSoftLimit is min(SoftLimit, HardLimit) when a hard limit is set,
// otherwise a full buffer could stall without ever skipping ahead.
// A hard limit above the soft limit leaves the soft limit in charge; it does
// not replace it.
func (c Config) effectiveSoftLimit() int {
	if c.HardLimit > 0 && c.HardLimit < c.SoftLimit {
		return c.HardLimit
	}
	return c.SoftLimit
}
