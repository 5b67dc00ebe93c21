package channel_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/actorkit/core/channel"
	"github.com/dmitrymomot/actorkit/core/message"
)

type recorder struct {
	mu   sync.Mutex
	name string
	log  *[]string
}

func (r *recorder) HandleMessage(_ context.Context, msg message.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.log = append(*r.log, r.name+":"+msg.Payload().(string))
	return nil
}

func TestBroadcast_Subscribe(t *testing.T) {
	t.Parallel()

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		b := channel.NewRegistry().DefaultBroadcast()
		var log []string
		h := &recorder{name: "a", log: &log}

		assert.True(t, b.Subscribe(h))
		assert.False(t, b.Subscribe(h))
		assert.Equal(t, 1, b.Subscribers())

		require.NoError(t, b.Publish(context.Background(), message.New("x")))
		assert.Equal(t, []string{"a:x"}, log)

		assert.True(t, b.Unsubscribe(h))
		assert.False(t, b.Unsubscribe(h))
		assert.Equal(t, 0, b.Subscribers())
		assert.False(t, b.Subscribe(nil))
	})

	t.Run("func handlers keep their identity", func(t *testing.T) {
		t.Parallel()

		b := channel.NewRegistry().DefaultBroadcast()
		fn := func(context.Context, message.Message) error { return nil }
		h1 := channel.NewHandler("one", fn)
		h2 := channel.NewHandler("two", fn)

		assert.True(t, b.Subscribe(h1))
		assert.True(t, b.Subscribe(h2))
		assert.False(t, b.Subscribe(h1))
		assert.Equal(t, 2, b.Subscribers())
	})
}

func TestBroadcast_Publish(t *testing.T) {
	t.Parallel()

	t.Run("delivers in subscription and publish order", func(t *testing.T) {
		t.Parallel()

		b := channel.NewRegistry().DefaultBroadcast()
		var log []string
		b.Subscribe(&recorder{name: "first", log: &log})
		b.Subscribe(&recorder{name: "second", log: &log})

		ctx := context.Background()
		require.NoError(t, b.Publish(ctx, message.New("1")))
		require.NoError(t, b.Publish(ctx, message.New("2")))

		assert.Equal(t, []string{"first:1", "second:1", "first:2", "second:2"}, log)
	})

	t.Run("delivers on the publisher goroutine", func(t *testing.T) {
		t.Parallel()

		b := channel.NewRegistry().DefaultBroadcast()
		done := false
		b.Subscribe(channel.NewHandler("sync", func(context.Context, message.Message) error {
			done = true
			return nil
		}))

		require.NoError(t, b.Publish(context.Background(), message.New("x")))
		assert.True(t, done, "handler must have run before Publish returned")
	})

	t.Run("joins handler errors and recovers panics", func(t *testing.T) {
		t.Parallel()

		b := channel.NewRegistry().DefaultBroadcast()
		boom := errors.New("boom")
		var reached bool
		b.Subscribe(channel.NewHandler("fails", func(context.Context, message.Message) error { return boom }))
		b.Subscribe(channel.NewHandler("panics", func(context.Context, message.Message) error { panic("bad") }))
		b.Subscribe(channel.NewHandler("ok", func(context.Context, message.Message) error {
			reached = true
			return nil
		}))

		err := b.Publish(context.Background(), message.New("x"))
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, err, channel.ErrHandlerPanic)
		assert.True(t, reached)
	})

	t.Run("timeout variant ignores handler errors", func(t *testing.T) {
		t.Parallel()

		b := channel.NewRegistry().DefaultBroadcast()
		var reached bool
		b.Subscribe(channel.NewHandler("fails", func(context.Context, message.Message) error {
			return errors.New("boom")
		}))
		b.Subscribe(channel.NewHandler("ok", func(context.Context, message.Message) error {
			reached = true
			return nil
		}))

		assert.True(t, b.PublishTimeout(message.New("x"), time.Second))
		assert.True(t, reached)
	})

	t.Run("without subscribers", func(t *testing.T) {
		t.Parallel()

		b := channel.NewRegistry().DefaultBroadcast()
		assert.NoError(t, b.Publish(context.Background(), message.New("x")))
		assert.True(t, b.PublishTimeout(message.New("x"), -1))
	})
}

func TestBroadcast_Outstanding(t *testing.T) {
	t.Parallel()

	reg := channel.NewRegistry()
	b := reg.MustRegisterBroadcast("narrow", channel.WithMaxOutstanding(1))

	entered := make(chan struct{})
	release := make(chan struct{})
	b.Subscribe(channel.NewHandler("slow", func(_ context.Context, msg message.Message) error {
		if msg.Payload() == "block" {
			close(entered)
			<-release
		}
		return nil
	}))

	published := make(chan error, 1)
	go func() {
		published <- b.Publish(context.Background(), message.New("block"))
	}()
	<-entered

	assert.False(t, b.PublishTimeout(message.New("x"), 0))
	assert.False(t, b.PublishTimeout(message.New("x"), 20*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, b.Publish(ctx, message.New("x")), channel.ErrPublishTimeout)

	cctx, ccancel := context.WithCancel(context.Background())
	ccancel()
	assert.ErrorIs(t, b.Publish(cctx, message.New("x")), channel.ErrInterrupted)

	close(release)
	require.NoError(t, <-published)
	assert.True(t, b.PublishTimeout(message.New("x"), time.Second))
}

func TestBroadcast_RepublishFromHandler(t *testing.T) {
	t.Parallel()

	reg := channel.NewRegistry(channel.WithPublishConcurrency(1))
	b := reg.DefaultBroadcast()
	other := reg.MustRegisterBroadcast("other", channel.WithMaxOutstanding(1))

	var mu sync.Mutex
	var seen []string
	b.Subscribe(channel.NewHandler("relay", func(ctx context.Context, msg message.Message) error {
		mu.Lock()
		seen = append(seen, msg.Payload().(string))
		mu.Unlock()

		if _, relayed := msg.Header("relayed"); relayed {
			return other.Publish(ctx, msg)
		}
		return b.Publish(ctx, msg.With("relayed", true))
	}))
	other.Subscribe(channel.NewHandler("bounce", func(ctx context.Context, msg message.Message) error {
		if _, bounced := msg.Header("bounced"); bounced {
			return nil
		}
		return b.Publish(ctx, msg.With("bounced", true).With("relayed", false))
	}))

	done := make(chan error, 1)
	go func() {
		done <- b.Publish(context.Background(), message.New("x"))
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("nested publish on the same channel did not return")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 3)

	// The outer slot is released afterwards.
	assert.True(t, b.PublishTimeout(message.New("y"), 0))
}
