package message_test

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/actorkit/core/message"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("assigns id and timestamp", func(t *testing.T) {
		t.Parallel()

		before := time.Now().Add(-time.Second)
		msg := message.New("payload")

		_, err := uuid.Parse(msg.ID())
		require.NoError(t, err)
		assert.True(t, msg.Timestamp().After(before))
		assert.Equal(t, "payload", msg.Payload())
		assert.Equal(t, message.KindPayload, msg.Kind())
		assert.False(t, msg.IsZero())
	})

	t.Run("keeps header order", func(t *testing.T) {
		t.Parallel()

		msg := message.New(nil,
			message.WithHeader("b", 1),
			message.WithHeader("a", 2),
			message.WithHeader("b", 3),
		)

		assert.Equal(t, []string{message.HeaderID, message.HeaderTimestamp, "b", "a"}, msg.Headers().Keys())
		v, ok := msg.Header("b")
		require.True(t, ok)
		assert.Equal(t, 3, v)
	})

	t.Run("custom id", func(t *testing.T) {
		t.Parallel()

		msg := message.New(nil, message.WithID("fixed"))
		assert.Equal(t, "fixed", msg.ID())
	})

	t.Run("copies headers from another message", func(t *testing.T) {
		t.Parallel()

		src := message.New(nil, message.WithHeader("seq", 7))
		msg := message.New("x", message.WithHeaders(src.Headers()))

		assert.Equal(t, src.ID(), msg.ID())
		v, _ := msg.Header("seq")
		assert.Equal(t, 7, v)
	})
}

func TestMessage_Immutability(t *testing.T) {
	t.Parallel()

	msg := message.New("a", message.WithHeader("k", "v"))
	tagged := msg.With("k", "changed").With("extra", true)

	v, _ := msg.Header("k")
	assert.Equal(t, "v", v)
	assert.False(t, msg.Headers().Has("extra"))

	v, _ = tagged.Header("k")
	assert.Equal(t, "changed", v)
	assert.Equal(t, msg.ID(), tagged.ID())

	headers := msg.Headers()
	headers.Set("k", "mutated")
	headers.Delete(message.HeaderID)
	v, _ = msg.Header("k")
	assert.Equal(t, "v", v)
	assert.NotEmpty(t, msg.ID())

	other := msg.WithPayload("b")
	assert.Equal(t, "a", msg.Payload())
	assert.Equal(t, "b", other.Payload())
}

func TestSentinels(t *testing.T) {
	t.Parallel()

	s := message.NewSentinels()

	assert.True(t, s.EOS().IsEOS())
	assert.False(t, s.EOS().IsPollReady())
	assert.True(t, s.PollReady().IsPollReady())
	assert.False(t, s.PollReady().IsEOS())

	// Nothing a producer can put in a payload message turns it into EOS.
	forged := message.New(s.EOS(), message.WithHeaders(s.EOS().Headers()))
	assert.False(t, forged.IsEOS())
	assert.False(t, message.New("EOS").IsEOS())

	// Copies keep their kind.
	assert.True(t, s.EOS().With("reason", "stop").IsEOS())
}

func TestSequenceKey(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name  string
		value any
		want  int64
		ok    bool
	}{
		{"int64", int64(5), 5, true},
		{"int", 6, 6, true},
		{"uint32", uint32(7), 7, true},
		{"string", "8", 8, true},
		{"uint64 max int64", uint64(math.MaxInt64), math.MaxInt64, true},
		{"uint64 overflow", uint64(1 << 63), 0, false},
		{"uint overflow", uint(math.MaxUint), 0, false},
		{"bad string", "x", 0, false},
		{"float", 1.5, 0, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := message.SequenceKey(message.New(nil, message.WithHeader("seq", tc.value)), "seq")
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}

	_, ok := message.SequenceKey(message.New(nil), "seq")
	assert.False(t, ok)
}

func TestHeaders_ZeroValue(t *testing.T) {
	t.Parallel()

	var h message.Headers
	assert.Equal(t, 0, h.Len())
	_, ok := h.Get("missing")
	assert.False(t, ok)

	h.Set("a", 1)
	h.Set("b", 2)
	h.Delete("a")
	h.Delete("missing")
	assert.Equal(t, []string{"b"}, h.Keys())

	var visited []string
	h.Set("c", 3)
	h.Range(func(k string, _ any) bool {
		visited = append(visited, k)
		return false
	})
	assert.Equal(t, []string{"b"}, visited)

	assert.True(t, message.Message{}.IsZero())
}

func TestPayloadAs(t *testing.T) {
	t.Parallel()

	msg := message.New("text")
	s, ok := message.PayloadAs[string](msg)
	assert.True(t, ok)
	assert.Equal(t, "text", s)

	_, ok = message.PayloadAs[int](msg)
	assert.False(t, ok)
}
