package channel

import "errors"

var (
	// ErrEmptyChannelName is returned when registering a channel without a name.
	ErrEmptyChannelName = errors.New("channel name is required")

	// ErrDuplicateChannel is returned when a channel name is registered twice for the same kind.
	ErrDuplicateChannel = errors.New("channel already registered")

	// ErrUnknownChannel is returned when looking up a channel that was never registered.
	ErrUnknownChannel = errors.New("unknown channel")

	// ErrNoPollers is returned by pollable lookups while no actor is poll-capable.
	// It signals absence: nothing would ever drain the channel.
	ErrNoPollers = errors.New("no poll-capable actors registered")

	// ErrPublishTimeout is returned when a broadcast can not accept another delivery in time.
	ErrPublishTimeout = errors.New("publish timed out")

	// ErrSendTimeout is returned when no receiver took a message in time.
	ErrSendTimeout = errors.New("send timed out")

	// ErrReceiveTimeout is returned when no message arrived in time.
	ErrReceiveTimeout = errors.New("receive timed out")

	// ErrInterrupted is returned when a blocked channel operation is cancelled.
	ErrInterrupted = errors.New("channel operation interrupted")

	// ErrHandlerPanic wraps a panic recovered from a broadcast handler.
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrResequenced is returned by Receive on a channel backed by a resequencer.
	// Its consumer drains it with Consume or Flush instead.
	ErrResequenced = errors.New("channel is resequenced, use Consume or Flush")

	// ErrNotResequenced is returned by Consume or Flush on a plain rendezvous channel.
	ErrNotResequenced = errors.New("channel is not resequenced")

	// ErrMissingSequenceKey is returned when a message sent to a resequenced
	// channel carries no sequence key.
	ErrMissingSequenceKey = errors.New("message has no sequence key")
)
