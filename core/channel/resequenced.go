package channel

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/dmitrymomot/actorkit/core/message"
	"github.com/dmitrymomot/actorkit/pkg/resequencer"
)

// sequencedStore is the non-generic view a Pollable has of its resequencer.
type sequencedStore interface {
	put(msg message.Message) error
	drain(fn func(message.Message), force bool) error
	pending() int
	eosSeen() bool
	dumpStats(w io.Writer) error
}

type resequencedStore[K any] struct {
	r   *resequencer.Resequencer[K, message.Message]
	key func(message.Message) (K, bool)
	eos atomic.Bool
}

// WithResequencer backs the channel with r. key extracts the sequence key of each
// message sent to the channel.
func WithResequencer[K any](r *resequencer.Resequencer[K, message.Message], key func(message.Message) (K, bool)) PollableOption {
	return func(p *Pollable) {
		if r == nil || key == nil {
			return
		}
		p.store = &resequencedStore[K]{r: r, key: key}
	}
}

// WithInt64Resequencer backs the channel with r, keyed by the integer header named header.
func WithInt64Resequencer(r *resequencer.Resequencer[int64, message.Message], header string) PollableOption {
	return WithResequencer(r, func(msg message.Message) (int64, bool) {
		return message.SequenceKey(msg, header)
	})
}

func (s *resequencedStore[K]) put(msg message.Message) error {
	if msg.IsEOS() {
		s.eos.Store(true)
		return nil
	}

	k, ok := s.key(msg)
	if !ok {
		return fmt.Errorf("%w: message %s", ErrMissingSequenceKey, msg.ID())
	}
	s.r.Put(k, msg)
	return nil
}

func (s *resequencedStore[K]) drain(fn func(message.Message), force bool) error {
	var consumer resequencer.Consumer[K, message.Message]
	if fn != nil {
		consumer = func(_ K, msg message.Message) { fn(msg) }
	}
	if force {
		return s.r.Flush(consumer)
	}
	return s.r.Consume(consumer)
}

func (s *resequencedStore[K]) pending() int { return s.r.Len() }

func (s *resequencedStore[K]) eosSeen() bool { return s.eos.Load() }

func (s *resequencedStore[K]) dumpStats(w io.Writer) error { return s.r.DumpStats(w) }
