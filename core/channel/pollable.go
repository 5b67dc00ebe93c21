package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/actorkit/core/logger"
	"github.com/dmitrymomot/actorkit/core/message"
)

// Pollable is a named point-to-point channel.
//
// The channel does not check who consumes from it. Actors reach it through
// Actor.Pollable or Actor.Receive, which enforce the poll-capable role.
//
// By default it is a rendezvous: Send and Receive each block until the other side
// arrives. When built with a resequencer option, Send stores the message in the
// resequencer instead and the consumer drains it with Consume and Flush.
type Pollable struct {
	name   string
	ch     chan message.Message
	store  sequencedStore
	logger *slog.Logger
}

// PollableOption configures a pollable channel at registration.
type PollableOption func(*Pollable)

func newPollable(name string, log *slog.Logger, opts ...PollableOption) *Pollable {
	p := &Pollable{
		name:   name,
		ch:     make(chan message.Message),
		logger: log.With(logger.Channel(name)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the channel name.
func (p *Pollable) Name() string { return p.name }

// Resequenced reports whether the channel is backed by a resequencer.
func (p *Pollable) Resequenced() bool { return p.store != nil }

// Send hands msg to a receiver, blocking until one takes it or ctx is done.
//
// On a resequenced channel Send never blocks: the message is stored under its
// sequence key. An EOS message is recorded instead of stored (see Drained).
func (p *Pollable) Send(ctx context.Context, msg message.Message) error {
	if p.store != nil {
		return p.store.put(msg)
	}

	select {
	case p.ch <- msg:
		return nil
	case <-ctx.Done():
		return p.ctxError(ctx, ErrSendTimeout)
	}
}

// SendTimeout is Send bounded by timeout. A negative timeout blocks indefinitely;
// zero succeeds only if a receiver is already waiting.
// It reports whether the message was handed over.
func (p *Pollable) SendTimeout(msg message.Message, timeout time.Duration) bool {
	if p.store == nil && timeout == 0 {
		select {
		case p.ch <- msg:
			return true
		default:
			return false
		}
	}

	ctx, cancel := timeoutContext(timeout)
	defer cancel()

	if err := p.Send(ctx, msg); err != nil {
		p.logger.Debug("send failed", logger.MessageID(msg.ID()), logger.Error(err))
		return false
	}
	return true
}

// Receive takes the next message, blocking until a sender arrives or ctx is done.
// It returns ErrResequenced on a resequenced channel.
func (p *Pollable) Receive(ctx context.Context) (message.Message, error) {
	if p.store != nil {
		return message.Message{}, fmt.Errorf("%w: pollable %q", ErrResequenced, p.name)
	}

	select {
	case msg := <-p.ch:
		return msg, nil
	case <-ctx.Done():
		return message.Message{}, p.ctxError(ctx, ErrReceiveTimeout)
	}
}

// ReceiveTimeout is Receive bounded by timeout. A negative timeout blocks indefinitely;
// zero succeeds only if a sender is already waiting.
// It reports false when no message was received.
func (p *Pollable) ReceiveTimeout(timeout time.Duration) (message.Message, bool) {
	if p.store == nil && timeout == 0 {
		select {
		case msg := <-p.ch:
			return msg, true
		default:
			return message.Message{}, false
		}
	}

	ctx, cancel := timeoutContext(timeout)
	defer cancel()

	msg, err := p.Receive(ctx)
	if err != nil {
		return message.Message{}, false
	}
	return msg, true
}

// Consume delivers every in-sequence message of a resequenced channel to fn.
// It must only be called by the channel's single consumer.
func (p *Pollable) Consume(fn func(message.Message)) error {
	if p.store == nil {
		return fmt.Errorf("%w: pollable %q", ErrNotResequenced, p.name)
	}
	return p.store.drain(fn, false)
}

// Flush delivers every buffered message of a resequenced channel to fn, skipping gaps.
func (p *Pollable) Flush(fn func(message.Message)) error {
	if p.store == nil {
		return fmt.Errorf("%w: pollable %q", ErrNotResequenced, p.name)
	}
	return p.store.drain(fn, true)
}

// Pending returns the number of buffered messages of a resequenced channel.
func (p *Pollable) Pending() int {
	if p.store == nil {
		return 0
	}
	return p.store.pending()
}

// Drained reports whether an EOS message was sent to a resequenced channel.
func (p *Pollable) Drained() bool {
	if p.store == nil {
		return false
	}
	return p.store.eosSeen()
}

// DumpStats writes the resequencer diagnostics of a resequenced channel to w.
func (p *Pollable) DumpStats(w io.Writer) error {
	if p.store == nil {
		return fmt.Errorf("%w: pollable %q", ErrNotResequenced, p.name)
	}
	return p.store.dumpStats(w)
}

func (p *Pollable) ctxError(ctx context.Context, timeout error) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: pollable %q", timeout, p.name)
	}
	return fmt.Errorf("%w: pollable %q: %w", ErrInterrupted, p.name, err)
}

func timeoutContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout < 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}
