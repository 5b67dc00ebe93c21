package channel_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/actorkit/core/channel"
	"github.com/dmitrymomot/actorkit/core/message"
	"github.com/dmitrymomot/actorkit/pkg/resequencer"
)

func TestPollable_Rendezvous(t *testing.T) {
	t.Parallel()

	t.Run("hands a message from sender to receiver", func(t *testing.T) {
		t.Parallel()

		p := channel.NewRegistry().MustRegisterPollable("work")
		sent := message.New("job")

		errCh := make(chan error, 1)
		go func() {
			errCh <- p.Send(context.Background(), sent)
		}()

		got, err := p.Receive(context.Background())
		require.NoError(t, err)
		assert.Equal(t, sent.ID(), got.ID())
		require.NoError(t, <-errCh)
	})

	t.Run("send times out without a receiver", func(t *testing.T) {
		t.Parallel()

		p := channel.NewRegistry().MustRegisterPollable("work")

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, p.Send(ctx, message.New("x")), channel.ErrSendTimeout)

		assert.False(t, p.SendTimeout(message.New("x"), 0))
		assert.False(t, p.SendTimeout(message.New("x"), 10*time.Millisecond))
	})

	t.Run("receive times out without a sender", func(t *testing.T) {
		t.Parallel()

		p := channel.NewRegistry().MustRegisterPollable("work")

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := p.Receive(ctx)
		assert.ErrorIs(t, err, channel.ErrReceiveTimeout)

		_, ok := p.ReceiveTimeout(0)
		assert.False(t, ok)
		_, ok = p.ReceiveTimeout(10 * time.Millisecond)
		assert.False(t, ok)
	})

	t.Run("cancellation interrupts a blocked receive", func(t *testing.T) {
		t.Parallel()

		p := channel.NewRegistry().MustRegisterPollable("work")
		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			_, err := p.Receive(ctx)
			errCh <- err
		}()

		cancel()
		err := <-errCh
		assert.ErrorIs(t, err, channel.ErrInterrupted)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("blocking timeout variants meet each other", func(t *testing.T) {
		t.Parallel()

		p := channel.NewRegistry().MustRegisterPollable("work")

		okCh := make(chan bool, 1)
		go func() {
			okCh <- p.SendTimeout(message.New("x"), -1)
		}()

		msg, ok := p.ReceiveTimeout(time.Second)
		require.True(t, ok)
		assert.Equal(t, "x", msg.Payload())
		assert.True(t, <-okCh)
	})

	t.Run("plain channel has no resequencer", func(t *testing.T) {
		t.Parallel()

		p := channel.NewRegistry().MustRegisterPollable("work")
		assert.False(t, p.Resequenced())
		assert.ErrorIs(t, p.Consume(nil), channel.ErrNotResequenced)
		assert.ErrorIs(t, p.Flush(nil), channel.ErrNotResequenced)
		assert.ErrorIs(t, p.DumpStats(&bytes.Buffer{}), channel.ErrNotResequenced)
		assert.Equal(t, 0, p.Pending())
		assert.False(t, p.Drained())
	})
}

func TestPollable_Resequenced(t *testing.T) {
	t.Parallel()

	newChannel := func(t *testing.T, cfg resequencer.Config) *channel.Pollable {
		t.Helper()
		r, err := resequencer.NewInt64[message.Message](cfg)
		require.NoError(t, err)
		return channel.NewRegistry().MustRegisterPollable("in", channel.WithInt64Resequencer(r, "seq"))
	}

	seq := func(n int64, payload string) message.Message {
		return message.New(payload, message.WithHeader("seq", n))
	}

	t.Run("restores order", func(t *testing.T) {
		t.Parallel()

		p := newChannel(t, resequencer.Config{SoftLimit: 10})
		require.True(t, p.Resequenced())

		ctx := context.Background()
		require.NoError(t, p.Send(ctx, seq(0, "a")))
		require.NoError(t, p.Send(ctx, seq(2, "c")))
		require.NoError(t, p.Send(ctx, seq(1, "b")))
		assert.Equal(t, 3, p.Pending())

		var got []any
		require.NoError(t, p.Consume(func(msg message.Message) { got = append(got, msg.Payload()) }))
		assert.Equal(t, []any{"a", "b", "c"}, got)
		assert.Equal(t, 0, p.Pending())
	})

	t.Run("send never blocks and receive is refused", func(t *testing.T) {
		t.Parallel()

		p := newChannel(t, resequencer.Config{SoftLimit: 10})

		assert.True(t, p.SendTimeout(seq(5, "x"), 0))
		_, err := p.Receive(context.Background())
		assert.ErrorIs(t, err, channel.ErrResequenced)
		_, ok := p.ReceiveTimeout(0)
		assert.False(t, ok)
	})

	t.Run("requires a sequence key", func(t *testing.T) {
		t.Parallel()

		p := newChannel(t, resequencer.Config{SoftLimit: 10})
		err := p.Send(context.Background(), message.New("no key"))
		assert.ErrorIs(t, err, channel.ErrMissingSequenceKey)
	})

	t.Run("EOS marks the channel drained and flush empties it", func(t *testing.T) {
		t.Parallel()

		p := newChannel(t, resequencer.Config{SoftLimit: 10})
		ctx := context.Background()
		require.NoError(t, p.Send(ctx, seq(0, "a")))
		require.NoError(t, p.Send(ctx, seq(3, "d")))
		require.NoError(t, p.Send(ctx, message.NewSentinels().EOS()))

		assert.True(t, p.Drained())

		var got []any
		require.NoError(t, p.Consume(func(msg message.Message) { got = append(got, msg.Payload()) }))
		assert.Equal(t, []any{"a"}, got)

		require.NoError(t, p.Flush(func(msg message.Message) { got = append(got, msg.Payload()) }))
		assert.Equal(t, []any{"a", "d"}, got)
		assert.Equal(t, 0, p.Pending())

		var buf bytes.Buffer
		require.NoError(t, p.DumpStats(&buf))
		assert.Contains(t, buf.String(), "Total=2\n")
	})
}
