package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/actorkit/core/logger"
)

type runIDKey struct{}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("development writes debug text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithDevelopment("pipeline"), logger.WithOutput(&buf))
		log.Debug("actor started", logger.Actor("db-read"))

		out := buf.String()
		assert.Contains(t, out, "level=DEBUG")
		assert.Contains(t, out, "service=pipeline")
		assert.Contains(t, out, "env=development")
		assert.Contains(t, out, "actor=db-read")
	})

	t.Run("production writes json at info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithProduction("pipeline"), logger.WithOutput(&buf))
		log.Debug("hidden")
		log.Info("visible", logger.Channel("default"))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "visible", rec["msg"])
		assert.Equal(t, "default", rec["channel"])
		assert.Equal(t, "production", rec["env"])
	})

	t.Run("level and formatter overrides", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithProduction("pipeline"),
			logger.WithTextFormatter(),
			logger.WithLevel(slog.LevelWarn),
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("node", "a")),
		)
		log.Info("hidden")
		log.Warn("shown")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "msg=shown")
		assert.Contains(t, out, "node=a")
	})

	t.Run("context values", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithJSONFormatter(),
			logger.WithOutput(&buf),
			logger.WithContextValue("run_id", runIDKey{}),
		).With(logger.Component("director"))

		ctx := context.WithValue(context.Background(), runIDKey{}, "r-1")
		log.InfoContext(ctx, "with value")
		log.InfoContext(context.Background(), "without value")

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		require.Len(t, lines, 2)

		var first, second map[string]any
		require.NoError(t, json.Unmarshal(lines[0], &first))
		require.NoError(t, json.Unmarshal(lines[1], &second))
		assert.Equal(t, "r-1", first["run_id"])
		assert.Equal(t, "director", first["component"])
		assert.NotContains(t, second, "run_id")
	})
}

func TestNop(t *testing.T) {
	t.Parallel()

	log := logger.Nop()
	require.NotNil(t, log)
	assert.NotPanics(t, func() { log.Error("discarded") })
}
