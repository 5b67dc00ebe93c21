package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/actorkit/core/actor"
	"github.com/dmitrymomot/actorkit/core/channel"
	"github.com/dmitrymomot/actorkit/core/logger"
	"github.com/dmitrymomot/actorkit/core/message"
)

// headerType tags payload messages so subscribers of the shared default
// channel can tell rows from transformed values.
const headerType = "type"

// headerSeq numbers transformed values in the order they were produced.
const headerSeq = "seq"

// orderedChannel is the resequenced pollable channel read by the ordered log.
const orderedChannel = "ordered"

const (
	typeRow         = "row"
	typeTransformed = "transformed"
)

func messageType(msg message.Message) string {
	v, _ := msg.Header(headerType)
	s, _ := v.(string)
	return s
}

// reader emits the rows A..Z once per worker on the default broadcast channel.
type reader struct {
	seq  atomic.Int64
	wg   sync.WaitGroup
	done chan struct{}
}

func newReader(workers int) *reader {
	r := &reader{done: make(chan struct{})}
	r.wg.Add(workers)
	go func() {
		r.wg.Wait()
		close(r.done)
	}()
	return r
}

// Done is closed once every worker has emitted its rows.
func (r *reader) Done() <-chan struct{} { return r.done }

func (r *reader) Execute(ctx context.Context, a *actor.Actor, _ any) (any, error) {
	defer r.wg.Done()

	n := r.seq.Add(1)
	for c := 'A'; c <= 'Z'; c++ {
		v := fmt.Sprintf("%c%d", c, n)
		a.Logger().DebugContext(ctx, "row read", logger.Key("row", v))

		msg := message.New(v, message.WithHeader(headerType, typeRow))
		if err := a.PublishDefault(ctx, msg); err != nil {
			return nil, fmt.Errorf("publish row %s: %w", v, err)
		}
	}
	return nil, nil
}

// transform turns rows into transformed values. It hands each value to the
// pollable batch indexer, files it on the ordered channel, and announces it on
// the default broadcast channel. EOS is passed on to both pollable consumers.
type transform struct {
	actor *actor.Actor
	seq   atomic.Int64
}

func (t *transform) OnStart(_ context.Context, a *actor.Actor) error {
	t.actor = a
	return a.Subscribe(channel.DefaultChannelName, t)
}

func (t *transform) OnStop(_ context.Context, a *actor.Actor) error {
	return a.Unsubscribe(channel.DefaultChannelName, t)
}

func (t *transform) HandleMessage(ctx context.Context, msg message.Message) error {
	switch {
	case msg.IsEOS():
		t.actor.Logger().DebugContext(ctx, "eos received, passing it on")
		_, errOrdered := t.actor.Put(ctx, orderedChannel, msg)
		_, errBatch := t.actor.PutDefault(ctx, msg)
		return errors.Join(errOrdered, errBatch)
	case messageType(msg) == typeRow:
		return t.actor.Invoke(ctx, func(ctx context.Context) error {
			_, err := t.actor.Execute(ctx, msg.Payload())
			return err
		})
	default:
		return nil
	}
}

func (t *transform) Execute(ctx context.Context, a *actor.Actor, item any) (any, error) {
	row, ok := item.(string)
	if !ok {
		return nil, fmt.Errorf("transform: unexpected item %T", item)
	}

	v := row + "T"
	msg := message.New(v,
		message.WithHeader(headerType, typeTransformed),
		message.WithHeader(headerSeq, t.seq.Add(1)-1),
	)
	a.Logger().DebugContext(ctx, "row transformed", logger.Key("row", row), logger.Key("value", v))

	if _, err := a.Put(ctx, orderedChannel, msg); err != nil {
		return nil, fmt.Errorf("file %s: %w", v, err)
	}
	if _, err := a.PutDefault(ctx, msg); err != nil {
		return nil, fmt.Errorf("put %s: %w", v, err)
	}
	if err := a.PublishDefault(ctx, msg); err != nil {
		return nil, fmt.Errorf("publish %s: %w", v, err)
	}
	return v, nil
}

// nrtIndex indexes every transformed value as it is announced.
type nrtIndex struct {
	actor *actor.Actor

	mu      sync.Mutex
	indexed []string
}

func (n *nrtIndex) OnStart(_ context.Context, a *actor.Actor) error {
	n.actor = a
	return a.Subscribe(channel.DefaultChannelName, n)
}

func (n *nrtIndex) OnStop(_ context.Context, a *actor.Actor) error {
	return a.Unsubscribe(channel.DefaultChannelName, n)
}

func (n *nrtIndex) HandleMessage(ctx context.Context, msg message.Message) error {
	if messageType(msg) != typeTransformed {
		return nil
	}
	return n.actor.Invoke(ctx, func(ctx context.Context) error {
		_, err := n.actor.Execute(ctx, msg.Payload())
		return err
	})
}

func (n *nrtIndex) Execute(ctx context.Context, a *actor.Actor, item any) (any, error) {
	v, _ := item.(string)

	n.mu.Lock()
	n.indexed = append(n.indexed, v)
	n.mu.Unlock()

	a.Logger().DebugContext(ctx, "value indexed", logger.Key("value", v))
	return nil, nil
}

// Indexed returns the values indexed so far.
func (n *nrtIndex) Indexed() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.indexed)
}

// batchIndex polls transformed values and indexes them in batches. It flushes
// every batchSize values and once more on EOS.
type batchIndex struct {
	batchSize int

	mu      sync.Mutex
	pending []string
	batches [][]string
}

func (b *batchIndex) Execute(ctx context.Context, a *actor.Actor, _ any) (any, error) {
	for {
		msg, err := a.ReceiveDefault(ctx)
		if err != nil {
			return nil, err
		}
		if msg.IsEOS() {
			a.Logger().DebugContext(ctx, "eos received, flushing")
			return nil, b.Flush(ctx, a)
		}

		v, _ := msg.Payload().(string)
		b.mu.Lock()
		b.pending = append(b.pending, v)
		full := len(b.pending) >= b.batchSize
		b.mu.Unlock()

		if full {
			if err := b.Flush(ctx, a); err != nil {
				return nil, err
			}
		}
	}
}

func (b *batchIndex) Flush(ctx context.Context, a *actor.Actor) error {
	b.mu.Lock()
	batch := b.pending
	b.pending = nil
	if len(batch) > 0 {
		b.batches = append(b.batches, batch)
	}
	b.mu.Unlock()

	if len(batch) > 0 {
		a.Logger().InfoContext(ctx, "batch indexed", logger.Count("size", len(batch)))
	}
	return nil
}

// Batches returns the flushed batches.
func (b *batchIndex) Batches() [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.batches)
}

// orderedLog records transformed values in production order. Its worker drains
// the resequenced channel on every tick and flushes it on EOS; OnStop flushes
// whatever an interrupted worker left behind.
//
// The first value filed on the channel fixes the start of the sequence. Readers
// race, so the value stamped 0 may arrive after a later one and is then
// discarded as stale. Recorded sequence numbers are strictly increasing but
// need not be contiguous.
type orderedLog struct {
	interval time.Duration

	mu     sync.Mutex
	values []string
	seqs   []int64
}

func (o *orderedLog) record(msg message.Message) {
	v, _ := msg.Payload().(string)
	seq, _ := message.SequenceKey(msg, headerSeq)

	o.mu.Lock()
	o.values = append(o.values, v)
	o.seqs = append(o.seqs, seq)
	o.mu.Unlock()
}

func (o *orderedLog) Execute(ctx context.Context, a *actor.Actor, _ any) (any, error) {
	ch, err := a.Pollable(orderedChannel)
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			if err := ch.Consume(o.record); err != nil {
				return nil, err
			}
			if ch.Drained() {
				a.Logger().DebugContext(ctx, "eos received, flushing", logger.Count("pending", ch.Pending()))
				return nil, o.Flush(ctx, a)
			}
		}
	}
}

func (o *orderedLog) Flush(_ context.Context, a *actor.Actor) error {
	ch, err := a.Pollable(orderedChannel)
	if err != nil {
		return err
	}
	return ch.Flush(o.record)
}

func (o *orderedLog) OnStop(ctx context.Context, a *actor.Actor) error {
	return o.Flush(ctx, a)
}

// Values returns the recorded values.
func (o *orderedLog) Values() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.values)
}

// Seqs returns the sequence numbers of the recorded values, in record order.
func (o *orderedLog) Seqs() []int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.seqs)
}
