package actor

import "time"

// Config holds the actor settings that are usually set per deployment.
type Config struct {
	Workers            int           `env:"ACTOR_WORKERS" envDefault:"1"`
	ShutdownTimeout    time.Duration `env:"ACTOR_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	StopPublishTimeout time.Duration `env:"ACTOR_STOP_PUBLISH_TIMEOUT" envDefault:"1s"`
}

// DefaultConfig returns the defaults used when no options are given.
func DefaultConfig() Config {
	return Config{
		Workers:            1,
		ShutdownTimeout:    5 * time.Second,
		StopPublishTimeout: time.Second,
	}
}
