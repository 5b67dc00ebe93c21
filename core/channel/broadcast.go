package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/dmitrymomot/actorkit/core/logger"
	"github.com/dmitrymomot/actorkit/core/message"
)

// DefaultMaxOutstanding is the default number of publishes a broadcast channel
// delivers at the same time.
const DefaultMaxOutstanding = 64

// Handler receives messages published on a broadcast channel.
//
// Handlers are compared by identity when subscribing and unsubscribing, so
// implementations must be comparable (pointer receivers are the usual choice).
type Handler interface {
	HandleMessage(ctx context.Context, msg message.Message) error
}

// HandlerFunc is the function form of a handler. Wrap it with NewHandler to subscribe it.
type HandlerFunc func(ctx context.Context, msg message.Message) error

type funcHandler struct {
	name string
	fn   HandlerFunc
}

func (h *funcHandler) HandleMessage(ctx context.Context, msg message.Message) error {
	return h.fn(ctx, msg)
}

func (h *funcHandler) String() string { return h.name }

// NewHandler wraps fn into a Handler with a stable identity.
// Keep the returned value to unsubscribe later.
func NewHandler(name string, fn HandlerFunc) Handler {
	return &funcHandler{name: name, fn: fn}
}

// Broadcast is a named publish/subscribe channel.
type Broadcast struct {
	name     string
	mu       sync.RWMutex
	handlers []Handler
	sem      *semaphore.Weighted
	logger   *slog.Logger
}

// BroadcastOption configures a broadcast channel at registration.
type BroadcastOption func(*broadcastOptions)

type broadcastOptions struct {
	maxOutstanding int64
}

// WithMaxOutstanding overrides the registry default for how many publishes
// this channel delivers at the same time.
func WithMaxOutstanding(n int) BroadcastOption {
	return func(o *broadcastOptions) {
		if n > 0 {
			o.maxOutstanding = int64(n)
		}
	}
}

func newBroadcast(name string, maxOutstanding int64, log *slog.Logger, opts ...BroadcastOption) *Broadcast {
	o := &broadcastOptions{maxOutstanding: maxOutstanding}
	for _, opt := range opts {
		opt(o)
	}

	return &Broadcast{
		name:   name,
		sem:    semaphore.NewWeighted(o.maxOutstanding),
		logger: log.With(logger.Channel(name)),
	}
}

// Name returns the channel name.
func (b *Broadcast) Name() string { return b.name }

// Subscribe adds h to the channel. Subscribing the same handler twice is a no-op.
// It reports whether h was added.
func (b *Broadcast) Subscribe(h Handler) bool {
	if h == nil {
		return false
	}
	if !reflect.TypeOf(h).Comparable() {
		panic(fmt.Sprintf("channel: handler type %T is not comparable, wrap it with NewHandler", h))
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if slices.Contains(b.handlers, h) {
		return false
	}
	b.handlers = append(b.handlers, h)

	b.logger.Debug("handler subscribed", logger.Count("subscribers", len(b.handlers)))
	return true
}

// Unsubscribe removes h from the channel. It reports whether h was subscribed.
func (b *Broadcast) Unsubscribe(h Handler) bool {
	if h == nil || !reflect.TypeOf(h).Comparable() {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.Index(b.handlers, h)
	if i < 0 {
		return false
	}
	b.handlers = slices.Delete(b.handlers, i, i+1)

	b.logger.Debug("handler unsubscribed", logger.Count("subscribers", len(b.handlers)))
	return true
}

// Subscribers returns the number of subscribed handlers.
func (b *Broadcast) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// deliveringKey marks a context passed to the handlers of one broadcast channel.
type deliveringKey struct{ b *Broadcast }

// Publish delivers msg to every handler subscribed at the time of the call,
// in subscription order, on the calling goroutine.
//
// ctx bounds the wait for a delivery slot and is passed to the handlers.
// A handler that publishes again on the same channel with that ctx reuses the
// outer delivery slot instead of waiting for a new one.
// Handler errors and panics do not stop delivery to the remaining handlers;
// they are joined into the returned error.
func (b *Broadcast) Publish(ctx context.Context, msg message.Message) error {
	if b.delivering(ctx) {
		return b.deliver(ctx, msg)
	}

	if err := b.sem.Acquire(ctx, 1); err != nil {
		return b.acquireError(err)
	}
	defer b.sem.Release(1)

	return b.deliver(ctx, msg)
}

// PublishTimeout delivers msg like Publish, waiting at most timeout for a delivery slot.
// A negative timeout waits indefinitely, zero does not wait at all.
//
// It reports false only when no slot was available in time. Handler errors are
// logged and do not affect the result.
func (b *Broadcast) PublishTimeout(msg message.Message, timeout time.Duration) bool {
	switch {
	case timeout < 0:
		if err := b.sem.Acquire(context.Background(), 1); err != nil {
			return false
		}
	case timeout == 0:
		if !b.sem.TryAcquire(1) {
			b.logger.Debug("publish rejected, no delivery slot available")
			return false
		}
	default:
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		err := b.sem.Acquire(ctx, 1)
		cancel()
		if err != nil {
			b.logger.Debug("publish timed out", logger.Timeout(timeout))
			return false
		}
	}
	defer b.sem.Release(1)

	if err := b.deliver(context.Background(), msg); err != nil {
		b.logger.Warn("publish delivered with handler errors",
			logger.MessageID(msg.ID()),
			logger.Error(err))
	}
	return true
}

func (b *Broadcast) delivering(ctx context.Context) bool {
	return ctx.Value(deliveringKey{b}) != nil
}

func (b *Broadcast) deliver(ctx context.Context, msg message.Message) error {
	b.mu.RLock()
	handlers := slices.Clone(b.handlers)
	b.mu.RUnlock()

	if !b.delivering(ctx) {
		ctx = context.WithValue(ctx, deliveringKey{b}, true)
	}

	var errs []error
	for _, h := range handlers {
		if err := b.invoke(ctx, h, msg); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		b.logger.DebugContext(ctx, "publish completed with handler errors",
			logger.MessageID(msg.ID()),
			logger.Count("failed", len(errs)),
			logger.Count("subscribers", len(handlers)))
	}
	return errors.Join(errs...)
}

func (b *Broadcast) invoke(ctx context.Context, h Handler, msg message.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorContext(ctx, "broadcast handler panicked",
				logger.MessageID(msg.ID()),
				slog.Any("panic", r),
				logger.Stack())
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()

	return h.HandleMessage(ctx, msg)
}

func (b *Broadcast) acquireError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: broadcast %q", ErrPublishTimeout, b.name)
	}
	return fmt.Errorf("%w: broadcast %q: %w", ErrInterrupted, b.name, err)
}
