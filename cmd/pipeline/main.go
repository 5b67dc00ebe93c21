// Command pipeline runs a small actor pipeline: a reader emits rows, a
// transformer rewrites them, and two indexers consume the results.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/actorkit/core/config"
	"github.com/dmitrymomot/actorkit/core/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg Config
	config.MustLoad(&cfg) // panic on error

	opts := []logger.Option{logger.WithDevelopment(cfg.AppName)}
	if !cfg.Debug {
		opts = append(opts, logger.WithLevel(slog.LevelInfo))
	}
	log := logger.New(opts...)

	p, err := newPipeline(cfg, log)
	if err != nil {
		log.Error("Failed to build pipeline", logger.Component("pipeline"), logger.Error(err))
		os.Exit(1)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return p.Run(ctx) })

	if err := eg.Wait(); err != nil {
		log.Error("Pipeline stopped with errors", logger.Component("pipeline"), logger.Error(err))
		os.Exit(1)
	}

	log.Info("Pipeline stopped",
		logger.Count("indexed", len(p.nrt.Indexed())),
		logger.Count("batches", len(p.batch.Batches())))
}
