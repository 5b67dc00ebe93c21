package channel_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/actorkit/core/channel"
	"github.com/dmitrymomot/actorkit/core/message"
)

func TestRecipientList(t *testing.T) {
	t.Parallel()

	reg := channel.NewRegistry()
	reg.MustRegisterBroadcast("a")
	reg.MustRegisterBroadcast("b")

	var log []string
	for _, name := range []string{"a", "b", channel.DefaultChannelName} {
		b, err := reg.LookupBroadcast(name)
		require.NoError(t, err)
		b.Subscribe(&recorder{name: name, log: &log})
	}

	router, err := channel.RecipientList(reg, "a", "b")
	require.NoError(t, err)
	require.NoError(t, router.Route(context.Background(), message.New("x")))
	assert.Equal(t, []string{"a:x", "b:x"}, log)

	fallback, err := channel.RecipientList(reg)
	require.NoError(t, err)
	require.NoError(t, fallback.Route(context.Background(), message.New("y")))
	assert.Equal(t, []string{"a:x", "b:x", "default:y"}, log)

	_, err = channel.RecipientList(reg, "a", "missing")
	assert.ErrorIs(t, err, channel.ErrUnknownChannel)
}

func TestHeaderValue(t *testing.T) {
	t.Parallel()

	reg := channel.NewRegistry()
	reg.MustRegisterBroadcast("low")
	reg.MustRegisterBroadcast("high")

	var log []string
	for _, name := range []string{"low", "high", channel.DefaultChannelName} {
		b, err := reg.LookupBroadcast(name)
		require.NoError(t, err)
		b.Subscribe(&recorder{name: name, log: &log})
	}

	router, err := channel.HeaderValue(reg, "priority", map[string]string{
		"1": "low",
		"9": "high",
	}, "")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, router.Route(ctx, message.New("a", message.WithHeader("priority", 9))))
	require.NoError(t, router.Route(ctx, message.New("b", message.WithHeader("priority", "1"))))
	require.NoError(t, router.Route(ctx, message.New("c", message.WithHeader("priority", 5))))
	require.NoError(t, router.Route(ctx, message.New("d")))

	assert.Equal(t, []string{"high:a", "low:b", "default:c", "default:d"}, log)

	_, err = channel.HeaderValue(reg, "priority", map[string]string{"1": "missing"}, "")
	assert.ErrorIs(t, err, channel.ErrUnknownChannel)

	_, err = channel.HeaderValue(reg, "priority", nil, "missing")
	assert.ErrorIs(t, err, channel.ErrUnknownChannel)
}
