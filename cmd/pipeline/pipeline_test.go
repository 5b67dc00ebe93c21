package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/actorkit/core/actor"
	"github.com/dmitrymomot/actorkit/core/logger"
)

func TestPipeline(t *testing.T) {
	t.Parallel()

	t.Run("indexes every row once", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		p, err := newPipeline(cfg, logger.Nop())
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		require.NoError(t, p.Run(ctx))

		const rows = 26
		want := cfg.Readers * rows

		indexed := p.nrt.Indexed()
		assert.Len(t, indexed, want)
		for _, v := range indexed {
			assert.True(t, strings.HasSuffix(v, "T"), "value %q must be transformed", v)
		}

		var batched []string
		for _, b := range p.batch.Batches() {
			assert.LessOrEqual(t, len(b), cfg.BatchSize)
			batched = append(batched, b...)
		}
		assert.ElementsMatch(t, indexed, batched)

		ordered := p.ordered.Values()
		assert.NotEmpty(t, ordered)
		assert.LessOrEqual(t, len(ordered), want)
		assert.Subset(t, indexed, ordered)

		seqs := p.ordered.Seqs()
		require.Len(t, seqs, len(ordered))
		for i := 1; i < len(seqs); i++ {
			assert.Less(t, seqs[i-1], seqs[i], "values must be recorded in seq order")
		}
		for _, seq := range seqs {
			assert.GreaterOrEqual(t, seq, int64(0))
			assert.Less(t, seq, int64(want))
		}

		for _, a := range p.actors {
			assert.Equal(t, actor.StateStopped, a.State(), a.Name())
			assert.Equal(t, 0, a.LiveWorkers(), a.Name())
		}
	})

	t.Run("flushes a partial batch on EOS", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.Readers = 1
		cfg.BatchSize = 20
		p, err := newPipeline(cfg, logger.Nop())
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		require.NoError(t, p.Run(ctx))

		batches := p.batch.Batches()
		require.Len(t, batches, 2)
		assert.Len(t, batches[0], 20)
		assert.Len(t, batches[1], 6)
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.Readers = 0
		_, err := newPipeline(cfg, logger.Nop())
		assert.Error(t, err)

		cfg = DefaultConfig()
		cfg.BatchSize = 0
		_, err = newPipeline(cfg, logger.Nop())
		assert.Error(t, err)

		cfg = DefaultConfig()
		cfg.OrderedInterval = 0
		_, err = newPipeline(cfg, logger.Nop())
		assert.Error(t, err)

		cfg = DefaultConfig()
		cfg.Resequencer.SoftLimit = 0
		_, err = newPipeline(cfg, logger.Nop())
		assert.Error(t, err)
	})
}
