package actor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/actorkit/core/logger"
)

// Task is a unit of work run by an actor, either on a pool worker or inline.
// ctx is cancelled when the actor is stopped.
type Task func(ctx context.Context) error

// pool is a fixed set of named workers draining an unbounded FIFO of tasks.
type pool struct {
	name   string
	size   int
	exec   func(ctx context.Context, worker string, task Task)
	logger *slog.Logger

	mu      sync.Mutex
	queue   []Task
	started bool
	closed  bool
	ctx     context.Context
	cancel  context.CancelFunc

	wake chan struct{}
	wg   sync.WaitGroup
	live atomic.Int32
}

func newPool(name string, size int, exec func(ctx context.Context, worker string, task Task), log *slog.Logger) *pool {
	return &pool{
		name:   name,
		size:   size,
		exec:   exec,
		logger: log,
		wake:   make(chan struct{}, size),
	}
}

// start launches the workers. Their context keeps ctx's values but not its
// cancellation: only shutdown interrupts them.
func (p *pool) start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || p.closed {
		return
	}
	p.started = true
	p.ctx, p.cancel = context.WithCancel(context.WithoutCancel(ctx))

	for i := range p.size {
		name := fmt.Sprintf("%s-worker-%d", p.name, i)
		p.wg.Add(1)
		p.live.Add(1)
		go p.worker(name)
	}

	// Tasks queued before start need a wake-up.
	p.signal()
}

// submit queues task for the next idle worker.
func (p *pool) submit(task Task) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.queue = append(p.queue, task)
	p.mu.Unlock()

	p.signal()
	return nil
}

// shutdown discards queued tasks and interrupts running ones.
// It returns the number of discarded tasks.
func (p *pool) shutdown() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0
	}
	p.closed = true

	dropped := len(p.queue)
	p.queue = nil
	if p.cancel != nil {
		p.cancel()
	}
	return dropped
}

// wait blocks until every worker has exited or ctx is done.
func (p *pool) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pool) liveWorkers() int {
	return int(p.live.Load())
}

func (p *pool) queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

func (p *pool) worker(name string) {
	defer p.wg.Done()
	defer p.live.Add(-1)

	p.logger.Debug("worker started", logger.Worker(name))
	defer p.logger.Debug("worker exited", logger.Worker(name))

	for {
		task, ok := p.next()
		if !ok {
			return
		}
		p.exec(p.ctx, name, task)
	}
}

// next blocks until a task is available or the pool is interrupted.
func (p *pool) next() (Task, bool) {
	for {
		p.mu.Lock()
		if p.ctx.Err() != nil {
			p.mu.Unlock()
			return nil, false
		}
		if len(p.queue) > 0 {
			task := p.queue[0]
			p.queue[0] = nil
			p.queue = p.queue[1:]
			more := len(p.queue) > 0
			p.mu.Unlock()

			// Pass the wake-up on so other idle workers pick up the rest.
			if more {
				p.signal()
			}
			return task, true
		}
		p.mu.Unlock()

		select {
		case <-p.ctx.Done():
			return nil, false
		case <-p.wake:
		}
	}
}

func (p *pool) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}
