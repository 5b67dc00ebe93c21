package actor

import "errors"

var (
	// ErrNilRegistry is returned when an actor is built without a channel registry.
	ErrNilRegistry = errors.New("actor registry is nil")

	// ErrEmptyName is returned when an actor is built without a name.
	ErrEmptyName = errors.New("actor name is empty")

	// ErrNilBehavior is returned when an actor is built without a behavior.
	ErrNilBehavior = errors.New("actor behavior is nil")

	// ErrInvalidWorkers is returned for a negative worker count.
	ErrInvalidWorkers = errors.New("actor worker count must not be negative")

	// ErrInvalidState is returned when a lifecycle method is called in the wrong state.
	ErrInvalidState = errors.New("invalid actor state")

	// ErrNotPollCapable is returned when an actor without the poll capability receives.
	ErrNotPollCapable = errors.New("actor is not poll-capable")

	// ErrNotSubscriber is returned when an actor without the subscriber capability subscribes.
	ErrNotSubscriber = errors.New("actor is not a subscriber")

	// ErrNilTask is returned when Invoke or InvokeAll receive a nil task.
	ErrNilTask = errors.New("task is nil")

	// ErrPoolClosed is returned when a task is submitted after the pool was shut down.
	ErrPoolClosed = errors.New("worker pool is closed")

	// ErrTaskPanic wraps a panic recovered from a task or Execute call.
	ErrTaskPanic = errors.New("task panicked")

	// ErrShutdownTimeout is returned when workers outlive the shutdown timeout.
	ErrShutdownTimeout = errors.New("actor shutdown timeout exceeded")

	// ErrHealthcheckFailed is returned when an actor fails its health check.
	ErrHealthcheckFailed = errors.New("actor healthcheck failed")

	// ErrNotRunning is returned by Healthcheck when the actor is not running.
	ErrNotRunning = errors.New("actor is not running")
)
