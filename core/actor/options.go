package actor

import (
	"io"
	"log/slog"
	"time"
)

// Option configures an Actor.
type Option func(*options)

type options struct {
	workers            int
	caps               Capability
	logger             *slog.Logger
	shutdownTimeout    time.Duration
	stopPublishTimeout time.Duration
}

func defaultOptions() *options {
	cfg := DefaultConfig()
	return &options{
		workers:            cfg.Workers,
		shutdownTimeout:    cfg.ShutdownTimeout,
		stopPublishTimeout: cfg.StopPublishTimeout,
		logger:             slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
	}
}

// WithWorkers sets the number of dedicated workers. Zero runs every task inline
// on the calling goroutine. Default is 1.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithCapabilities declares how the actor consumes messages.
//
// Example:
//
//	a, err := actor.New(reg, "batch-index", behavior,
//	    actor.WithCapabilities(actor.PollCapable),
//	)
func WithCapabilities(caps ...Capability) Option {
	return func(o *options) {
		for _, c := range caps {
			o.caps |= c
		}
	}
}

// WithLogger configures structured logging for the actor.
// Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithShutdownTimeout bounds how long Stop waits for workers to exit after interrupting them.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

// WithStopPublishTimeout bounds the EOS publication performed by Stop.
func WithStopPublishTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.stopPublishTimeout = d
		}
	}
}

// FromConfig applies cfg. Options listed after it override its values.
// Unlike WithWorkers on its own, a zero cfg.Workers is applied as-is.
func FromConfig(cfg Config) Option {
	return func(o *options) {
		o.workers = cfg.Workers
		WithShutdownTimeout(cfg.ShutdownTimeout)(o)
		WithStopPublishTimeout(cfg.StopPublishTimeout)(o)
	}
}
