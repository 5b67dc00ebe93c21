// Package actor runs business logic as actors connected by the named channels of
// a channel.Registry.
//
// An actor wraps a Behavior and owns a fixed pool of named workers. With N>0
// workers, Start runs Behavior.Execute once per worker and those calls
// typically loop on Receive until EOS. With zero workers, Execute and tasks run
// inline on the caller's goroutine, usually a broadcast handler.
//
// # Lifecycle
//
// States move forward only: Created, Initialized, Running, Stopping, Stopped.
// Calling a lifecycle method in the wrong state returns ErrInvalidState.
//
//	d := actor.NewDirector(actor.WithDirectorLogger(log))
//
//	index, _ := d.NewActor("index", indexBehavior,
//	    actor.WithWorkers(1),
//	    actor.WithCapabilities(actor.PollCapable),
//	)
//	reader, _ := d.NewActor("reader", readerBehavior, actor.WithWorkers(5))
//
//	// Consumers first, producers last.
//	if err := d.StartAll(ctx, index, reader); err != nil {
//	    return err
//	}
//	defer d.StopAll(context.Background(), index, reader)
//
// # Shutdown
//
// Stop publishes the registry's EOS message on the default broadcast channel
// and then cancels the workers' context, which interrupts any Send or Receive
// in progress. The two steps are not synchronized, so a worker may be
// interrupted before it sees EOS. Interruptions are logged at debug level and
// are not counted as failed tasks.
//
// # Capabilities
//
// PollCapable actors may Receive; Subscriber actors may Subscribe. A registry
// reports its pollable channels as absent until at least one poll-capable actor
// exists, and Put then returns false without error.
package actor
