package actor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dmitrymomot/actorkit/core/channel"
	"github.com/dmitrymomot/actorkit/core/logger"
)

// Director owns a channel registry and drives the lifecycle of actors in order.
type Director struct {
	reg    *channel.Registry
	logger *slog.Logger
}

// DirectorOption configures a Director.
type DirectorOption func(*Director)

// WithRegistry makes the director use reg instead of creating its own.
func WithRegistry(reg *channel.Registry) DirectorOption {
	return func(d *Director) {
		if reg != nil {
			d.reg = reg
		}
	}
}

// WithDirectorLogger configures structured logging for the director.
// Actors created through NewActor inherit it unless given their own logger.
func WithDirectorLogger(log *slog.Logger) DirectorOption {
	return func(d *Director) {
		if log != nil {
			d.logger = log
		}
	}
}

// NewDirector creates a director. Without WithRegistry it creates a registry
// that shares the director's logger.
func NewDirector(opts ...DirectorOption) *Director {
	d := &Director{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.reg == nil {
		d.reg = channel.NewRegistry(channel.WithLogger(d.logger))
	}
	return d
}

// Registry returns the director's channel registry.
func (d *Director) Registry() *channel.Registry { return d.reg }

// NewActor creates an actor bound to the director's registry.
func (d *Director) NewActor(name string, behavior Behavior, opts ...Option) (*Actor, error) {
	return New(d.reg, name, behavior, append([]Option{WithLogger(d.logger)}, opts...)...)
}

// StartAll initializes every actor, then starts every actor, both in list order.
// It returns at the first failure without rolling back.
//
// List consumers before producers: a producer may emit as soon as it starts.
func (d *Director) StartAll(ctx context.Context, actors ...*Actor) error {
	for _, a := range actors {
		if err := a.Init(); err != nil {
			return fmt.Errorf("init %q: %w", a.Name(), err)
		}
	}
	for _, a := range actors {
		if err := a.Start(ctx); err != nil {
			return fmt.Errorf("start %q: %w", a.Name(), err)
		}
	}

	d.logger.InfoContext(ctx, "all actors started",
		logger.Component("director"),
		logger.Count("actors", len(actors)),
		logger.Key("pollers", d.reg.PollCapableActors()))
	return nil
}

// StopAll stops every actor in list order. A failing actor does not prevent
// the rest from stopping; all failures are returned joined.
func (d *Director) StopAll(ctx context.Context, actors ...*Actor) error {
	var errs []error
	for _, a := range actors {
		if err := a.Stop(ctx); err != nil {
			d.logger.WarnContext(ctx, "actor stop failed",
				logger.Component("director"),
				logger.Actor(a.Name()),
				logger.Error(err))
			errs = append(errs, fmt.Errorf("stop %q: %w", a.Name(), err))
		}
	}

	d.logger.InfoContext(ctx, "all actors stopped",
		logger.Component("director"),
		logger.Count("actors", len(actors)))
	return errors.Join(errs...)
}

// Run returns a function that starts the actors, blocks until ctx is done, and
// stops them. Compatible with errgroup.Group.Go.
//
// Example:
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(director.Run(ctx, transform, index, reader))
func (d *Director) Run(ctx context.Context, actors ...*Actor) func() error {
	return func() error {
		stopCtx := context.WithoutCancel(ctx)

		if err := d.StartAll(ctx, actors...); err != nil {
			return errors.Join(err, d.stopStarted(stopCtx, actors))
		}

		<-ctx.Done()
		return d.StopAll(stopCtx, actors...)
	}
}

// stopStarted stops the actors a failed StartAll left initialized or running.
func (d *Director) stopStarted(ctx context.Context, actors []*Actor) error {
	var started []*Actor
	for _, a := range actors {
		if s := a.State(); s == StateInitialized || s == StateRunning {
			started = append(started, a)
		}
	}
	return d.StopAll(ctx, started...)
}

// Healthcheck runs every actor's health check and returns the joined failures.
func (d *Director) Healthcheck(ctx context.Context, actors ...*Actor) error {
	var errs []error
	for _, a := range actors {
		if err := a.Healthcheck(ctx); err != nil {
			d.logger.ErrorContext(ctx, "actor healthcheck failed",
				logger.Component("director"),
				logger.Actor(a.Name()),
				logger.Error(err))
			errs = append(errs, fmt.Errorf("actor %q: %w", a.Name(), err))
		}
	}
	return errors.Join(errs...)
}
