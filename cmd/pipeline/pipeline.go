package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/actorkit/core/actor"
	"github.com/dmitrymomot/actorkit/core/channel"
	"github.com/dmitrymomot/actorkit/core/logger"
	"github.com/dmitrymomot/actorkit/core/message"
	"github.com/dmitrymomot/actorkit/pkg/resequencer"
)

// pipeline wires the demo actors: rows are read, transformed, then indexed
// one by one, in batches, and in production order.
type pipeline struct {
	director *actor.Director
	actors   []*actor.Actor
	logger   *slog.Logger

	reader  *reader
	nrt     *nrtIndex
	batch   *batchIndex
	ordered *orderedLog
}

func newPipeline(cfg Config, log *slog.Logger) (*pipeline, error) {
	if cfg.Readers < 1 {
		return nil, fmt.Errorf("pipeline: readers must be positive, got %d", cfg.Readers)
	}
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("pipeline: batch size must be positive, got %d", cfg.BatchSize)
	}

	if cfg.OrderedInterval <= 0 {
		return nil, fmt.Errorf("pipeline: ordered interval must be positive, got %s", cfg.OrderedInterval)
	}

	r, err := resequencer.NewInt64[message.Message](cfg.Resequencer, resequencer.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("pipeline: resequencer: %w", err)
	}

	p := &pipeline{
		director: actor.NewDirector(actor.WithDirectorLogger(log)),
		logger:   log,
		reader:   newReader(cfg.Readers),
		nrt:      &nrtIndex{},
		batch:    &batchIndex{batchSize: cfg.BatchSize},
		ordered:  &orderedLog{interval: cfg.OrderedInterval},
	}

	if _, err := p.director.Registry().RegisterPollable(orderedChannel, channel.WithInt64Resequencer(r, headerSeq)); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	// Consumers first: the reader starts emitting as soon as it starts.
	specs := []struct {
		name     string
		behavior actor.Behavior
		opts     []actor.Option
	}{
		{"transform", &transform{}, []actor.Option{actor.WithWorkers(0), actor.WithCapabilities(actor.Subscriber)}},
		{"ordered-log", p.ordered, []actor.Option{actor.WithWorkers(1), actor.WithCapabilities(actor.PollCapable)}},
		{"batch-index", p.batch, []actor.Option{actor.WithWorkers(1), actor.WithCapabilities(actor.PollCapable)}},
		{"nrt-index", p.nrt, []actor.Option{actor.WithWorkers(0), actor.WithCapabilities(actor.Subscriber)}},
		{"db-read", p.reader, []actor.Option{actor.WithWorkers(cfg.Readers)}},
	}

	for _, s := range specs {
		opts := append([]actor.Option{actor.FromConfig(cfg.Actor)}, s.opts...)
		a, err := p.director.NewActor(s.name, s.behavior, opts...)
		if err != nil {
			return nil, fmt.Errorf("pipeline: create %s: %w", s.name, err)
		}
		p.actors = append(p.actors, a)
	}

	return p, nil
}

// Run starts every actor and stops them once the reader is drained or ctx is done.
func (p *pipeline) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-p.reader.Done():
			p.logger.InfoContext(runCtx, "source drained, stopping pipeline", logger.Component("pipeline"))
			cancel()
		case <-runCtx.Done():
		}
	}()

	return p.director.Run(runCtx, p.actors...)()
}
