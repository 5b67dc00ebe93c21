package actor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/actorkit/core/channel"
	"github.com/dmitrymomot/actorkit/core/logger"
	"github.com/dmitrymomot/actorkit/core/message"
)

// Capability is a role an actor declares at construction.
type Capability = channel.Capability

const (
	// PollCapable actors may receive from pollable channels.
	PollCapable = channel.PollCapable
	// Subscriber actors may subscribe handlers to broadcast channels.
	Subscriber = channel.Subscriber
)

// Behavior is the business logic of an actor.
//
// For actors with workers, Execute is the worker loop body: Start calls it once
// per worker with a nil item, and it typically receives until EOS. For actors
// without workers it is called inline, usually from a broadcast handler.
type Behavior interface {
	Execute(ctx context.Context, a *Actor, item any) (any, error)
}

// BehaviorFunc adapts a function to Behavior.
type BehaviorFunc func(ctx context.Context, a *Actor, item any) (any, error)

// Execute calls f.
func (f BehaviorFunc) Execute(ctx context.Context, a *Actor, item any) (any, error) {
	return f(ctx, a, item)
}

// Starter is implemented by behaviors that need setup once the actor runs,
// such as subscribing handlers.
type Starter interface {
	OnStart(ctx context.Context, a *Actor) error
}

// Stopper is implemented by behaviors that release resources at the end of Stop.
type Stopper interface {
	OnStop(ctx context.Context, a *Actor) error
}

// Flusher is implemented by behaviors that buffer output.
type Flusher interface {
	Flush(ctx context.Context, a *Actor) error
}

// Actor runs a Behavior on a fixed pool of workers and connects it to the
// channels of a registry.
type Actor struct {
	name     string
	reg      *channel.Registry
	behavior Behavior
	caps     Capability
	workers  int

	shutdownTimeout    time.Duration
	stopPublishTimeout time.Duration
	logger             *slog.Logger

	mu    sync.Mutex
	state atomic.Int32
	pool  *pool

	tasksRun    atomic.Int64
	tasksFailed atomic.Int64
}

// Stats provides observability metrics for monitoring and debugging.
type Stats struct {
	Workers     int   // Configured number of workers
	LiveWorkers int   // Workers that have not exited yet
	Queued      int   // Tasks waiting for a worker
	TasksRun    int64 // Tasks and Execute calls finished, including failed ones
	TasksFailed int64 // Tasks that returned an error or panicked, excluding interruptions
	State       State // Current lifecycle state
}

// New creates an actor bound to reg. A poll-capable actor is recorded in the
// registry immediately, which makes pollable channels available to producers.
func New(reg *channel.Registry, name string, behavior Behavior, opts ...Option) (*Actor, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	if name == "" {
		return nil, ErrEmptyName
	}
	if behavior == nil {
		return nil, ErrNilBehavior
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.workers < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, o.workers)
	}

	a := &Actor{
		name:               name,
		reg:                reg,
		behavior:           behavior,
		caps:               o.caps,
		workers:            o.workers,
		shutdownTimeout:    o.shutdownTimeout,
		stopPublishTimeout: o.stopPublishTimeout,
		logger:             o.logger.With(logger.Actor(name)),
	}

	reg.NotePollCapable(name, o.caps)

	a.logger.Debug("actor created",
		logger.Count("workers", o.workers),
		logger.Key("capabilities", o.caps.String()))
	return a, nil
}

// Name returns the actor name.
func (a *Actor) Name() string { return a.name }

// Registry returns the registry the actor is bound to.
func (a *Actor) Registry() *channel.Registry { return a.reg }

// Capabilities returns the declared capabilities.
func (a *Actor) Capabilities() Capability { return a.caps }

// Workers returns the configured number of workers.
func (a *Actor) Workers() int { return a.workers }

// Logger returns the actor's logger, already tagged with its name.
func (a *Actor) Logger() *slog.Logger { return a.logger }

// State returns the current lifecycle state.
func (a *Actor) State() State { return State(a.state.Load()) }

func (a *Actor) setState(s State) {
	a.state.Store(int32(s))
	a.logger.Debug("actor state changed", logger.State(s))
}

func (a *Actor) stateError(op string, s State) error {
	return fmt.Errorf("%w: cannot %s actor %q in state %s", ErrInvalidState, op, a.name, s)
}

// Init allocates the worker pool. Workers are not started until Start.
func (a *Actor) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if s := a.State(); s != StateCreated {
		return a.stateError("init", s)
	}
	if a.workers > 0 {
		a.pool = newPool(a.name, a.workers, a.runTask, a.logger)
	}
	a.setState(StateInitialized)
	return nil
}

// Start launches the workers, submits Execute(nil) once per worker, and then
// calls the behavior's OnStart hook. Actors without workers only run the hook.
func (a *Actor) Start(ctx context.Context) error {
	a.mu.Lock()
	if s := a.State(); s != StateInitialized {
		a.mu.Unlock()
		return a.stateError("start", s)
	}
	if a.pool != nil {
		a.pool.start(ctx)
		for range a.workers {
			if err := a.pool.submit(a.executeTask(nil)); err != nil {
				a.mu.Unlock()
				return fmt.Errorf("actor %q: start workers: %w", a.name, err)
			}
		}
	}
	a.setState(StateRunning)
	a.mu.Unlock()

	if s, ok := a.behavior.(Starter); ok {
		if err := s.OnStart(ctx, a); err != nil {
			return fmt.Errorf("actor %q: on start: %w", a.name, err)
		}
	}

	a.logger.InfoContext(ctx, "actor started", logger.Count("workers", a.workers))
	return nil
}

// Stop shuts the actor down. It publishes EOS on the default broadcast channel,
// interrupts the workers and discards queued tasks, waits up to the shutdown
// timeout for the workers to exit, and finally calls the behavior's OnStop hook.
//
// EOS publication and the interruption are not synchronized: a worker may be
// interrupted before it observes EOS.
func (a *Actor) Stop(ctx context.Context) error {
	a.mu.Lock()
	s := a.State()
	if s != StateInitialized && s != StateRunning {
		a.mu.Unlock()
		return a.stateError("stop", s)
	}
	a.setState(StateStopping)
	a.mu.Unlock()

	a.publishEOS(ctx)

	var errs []error
	if a.pool != nil {
		if dropped := a.pool.shutdown(); dropped > 0 {
			a.logger.DebugContext(ctx, "queued tasks discarded", logger.Count("tasks", dropped))
		}

		waitCtx, cancel := context.WithTimeout(ctx, a.shutdownTimeout)
		err := a.pool.wait(waitCtx)
		cancel()
		if err != nil {
			a.logger.WarnContext(ctx, "actor shutdown timeout exceeded, some workers may be abandoned",
				logger.Timeout(a.shutdownTimeout),
				logger.Count("live_workers", a.pool.liveWorkers()))
			errs = append(errs, fmt.Errorf("%w: actor %q after %s: %w", ErrShutdownTimeout, a.name, a.shutdownTimeout, err))
		}
	}

	if st, ok := a.behavior.(Stopper); ok {
		if err := st.OnStop(ctx, a); err != nil {
			errs = append(errs, fmt.Errorf("actor %q: on stop: %w", a.name, err))
		}
	}

	a.setState(StateStopped)
	a.logger.InfoContext(ctx, "actor stopped")
	return errors.Join(errs...)
}

// publishEOS delivers EOS on the default broadcast channel, best-effort.
func (a *Actor) publishEOS(ctx context.Context) {
	pubCtx, cancel := context.WithTimeout(ctx, a.stopPublishTimeout)
	defer cancel()

	if err := a.reg.DefaultBroadcast().Publish(pubCtx, a.reg.EOS()); err != nil {
		a.logger.WarnContext(ctx, "eos delivery incomplete",
			logger.Channel(channel.DefaultChannelName),
			logger.Error(err))
	}
}

// Execute runs the behavior inline on the calling goroutine.
// Broadcast handlers of actors without workers use it to process an item.
func (a *Actor) Execute(ctx context.Context, item any) (any, error) {
	return a.behavior.Execute(ctx, a, item)
}

// Flush calls the behavior's Flush hook, if it has one.
func (a *Actor) Flush(ctx context.Context) error {
	if f, ok := a.behavior.(Flusher); ok {
		return f.Flush(ctx, a)
	}
	return nil
}

// Invoke runs task on one pool worker, or inline when the actor has no workers.
//
// Pooled tasks are queued without bound and receive the pool context; Invoke
// returns as soon as the task is queued. Inline tasks receive ctx and Invoke
// returns their error.
func (a *Actor) Invoke(ctx context.Context, task Task) error {
	if task == nil {
		return ErrNilTask
	}
	if s := a.State(); s != StateInitialized && s != StateRunning {
		return a.stateError("invoke", s)
	}
	if a.pool == nil {
		return a.runInline(ctx, task)
	}
	return a.pool.submit(task)
}

// InvokeAll queues task once per worker, or runs it inline once when the actor
// has no workers.
func (a *Actor) InvokeAll(ctx context.Context, task Task) error {
	if task == nil {
		return ErrNilTask
	}
	if s := a.State(); s != StateInitialized && s != StateRunning {
		return a.stateError("invoke", s)
	}
	if a.pool == nil {
		return a.runInline(ctx, task)
	}
	for range a.workers {
		if err := a.pool.submit(task); err != nil {
			return err
		}
	}
	return nil
}

func (a *Actor) executeTask(item any) Task {
	return func(ctx context.Context) error {
		_, err := a.behavior.Execute(ctx, a, item)
		return err
	}
}

func (a *Actor) runInline(ctx context.Context, task Task) error {
	err := a.call(ctx, task)
	a.record(ctx, "", err)
	return err
}

// runTask is the pool's executor.
func (a *Actor) runTask(ctx context.Context, worker string, task Task) {
	a.record(ctx, worker, a.call(ctx, task))
}

func (a *Actor) call(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.ErrorContext(ctx, "task panicked",
				slog.Any("panic", r),
				logger.Stack())
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()
	return task(ctx)
}

func (a *Actor) record(ctx context.Context, worker string, err error) {
	a.tasksRun.Add(1)
	if err == nil {
		return
	}

	if isInterruption(err) {
		a.logger.DebugContext(ctx, "task interrupted", logger.Worker(worker), logger.Error(err))
		return
	}

	a.tasksFailed.Add(1)
	a.logger.ErrorContext(ctx, "task failed", logger.Worker(worker), logger.Error(err))
}

// isInterruption reports whether err comes from a cancelled operation,
// which is the expected way for a worker to end during Stop.
func isInterruption(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, channel.ErrInterrupted)
}

// LiveWorkers returns the number of workers that have not exited.
func (a *Actor) LiveWorkers() int {
	a.mu.Lock()
	p := a.pool
	a.mu.Unlock()

	if p == nil {
		return 0
	}
	return p.liveWorkers()
}

// Stats returns current actor statistics for observability and monitoring.
func (a *Actor) Stats() Stats {
	a.mu.Lock()
	p := a.pool
	a.mu.Unlock()

	stats := Stats{
		Workers:     a.workers,
		TasksRun:    a.tasksRun.Load(),
		TasksFailed: a.tasksFailed.Load(),
		State:       a.State(),
	}
	if p != nil {
		stats.LiveWorkers = p.liveWorkers()
		stats.Queued = p.queued()
	}
	return stats
}

// Healthcheck returns nil while the actor is running.
func (a *Actor) Healthcheck(ctx context.Context) error {
	if s := a.State(); s != StateRunning {
		return errors.Join(ErrHealthcheckFailed, fmt.Errorf("%w: %s", ErrNotRunning, s))
	}
	return nil
}

// ============================================================================
// Channel helpers
// ============================================================================

// Publish delivers msg to the broadcast channel named name.
func (a *Actor) Publish(ctx context.Context, name string, msg message.Message) error {
	b, err := a.reg.LookupBroadcast(name)
	if err != nil {
		return err
	}
	return b.Publish(ctx, msg)
}

// PublishDefault delivers msg to the default broadcast channel.
func (a *Actor) PublishDefault(ctx context.Context, msg message.Message) error {
	return a.reg.DefaultBroadcast().Publish(ctx, msg)
}

// Put hands msg to the pollable channel named name.
//
// While no actor in the registry is poll-capable there is nobody to hand to:
// Put returns false and a nil error without blocking.
func (a *Actor) Put(ctx context.Context, name string, msg message.Message) (bool, error) {
	p, err := a.reg.LookupPollable(name)
	if errors.Is(err, channel.ErrNoPollers) {
		a.logger.DebugContext(ctx, "put skipped, no poll-capable actors",
			logger.Channel(name),
			logger.MessageID(msg.ID()))
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := p.Send(ctx, msg); err != nil {
		return false, err
	}
	return true, nil
}

// PutDefault hands msg to the default pollable channel.
func (a *Actor) PutDefault(ctx context.Context, msg message.Message) (bool, error) {
	return a.Put(ctx, channel.DefaultChannelName, msg)
}

// Pollable returns the pollable channel named name for consuming.
// It returns ErrNotPollCapable unless the actor declared PollCapable.
func (a *Actor) Pollable(name string) (*channel.Pollable, error) {
	if !a.caps.Has(PollCapable) {
		return nil, fmt.Errorf("%w: actor %q", ErrNotPollCapable, a.name)
	}
	return a.reg.LookupPollable(name)
}

// Receive takes the next message from the pollable channel named name.
// It returns ErrNotPollCapable unless the actor declared PollCapable.
func (a *Actor) Receive(ctx context.Context, name string) (message.Message, error) {
	p, err := a.Pollable(name)
	if err != nil {
		return message.Message{}, err
	}
	return p.Receive(ctx)
}

// ReceiveDefault takes the next message from the default pollable channel.
func (a *Actor) ReceiveDefault(ctx context.Context) (message.Message, error) {
	return a.Receive(ctx, channel.DefaultChannelName)
}

// Subscribe adds h to the broadcast channel named name.
// It returns ErrNotSubscriber unless the actor declared Subscriber.
func (a *Actor) Subscribe(name string, h channel.Handler) error {
	if !a.caps.Has(Subscriber) {
		return fmt.Errorf("%w: actor %q", ErrNotSubscriber, a.name)
	}

	b, err := a.reg.LookupBroadcast(name)
	if err != nil {
		return err
	}
	b.Subscribe(h)
	return nil
}

// Unsubscribe removes h from the broadcast channel named name.
func (a *Actor) Unsubscribe(name string, h channel.Handler) error {
	b, err := a.reg.LookupBroadcast(name)
	if err != nil {
		return err
	}
	b.Unsubscribe(h)
	return nil
}

// Route forwards msg through router.
func (a *Actor) Route(ctx context.Context, router channel.Router, msg message.Message) error {
	return router.Route(ctx, msg)
}
