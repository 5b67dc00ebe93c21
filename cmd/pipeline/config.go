package main

import (
	"time"

	"github.com/dmitrymomot/actorkit/core/actor"
	"github.com/dmitrymomot/actorkit/pkg/resequencer"
)

// Config holds the demo pipeline settings.
type Config struct {
	AppName         string        `env:"APP_NAME" envDefault:"actorkit-pipeline"`
	Debug           bool          `env:"DEBUG" envDefault:"false"`
	Readers         int           `env:"PIPELINE_READERS" envDefault:"5"`
	BatchSize       int           `env:"PIPELINE_BATCH_SIZE" envDefault:"10"`
	OrderedInterval time.Duration `env:"PIPELINE_ORDERED_INTERVAL" envDefault:"10ms"`

	Actor       actor.Config
	Resequencer resequencer.Config
}

// DefaultConfig mirrors the env defaults.
func DefaultConfig() Config {
	return Config{
		AppName:         "actorkit-pipeline",
		Readers:         5,
		BatchSize:       10,
		OrderedInterval: 10 * time.Millisecond,
		Actor:           actor.DefaultConfig(),
		Resequencer:     resequencer.DefaultConfig(),
	}
}
