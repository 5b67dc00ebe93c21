// Package channel provides the named channels actors communicate through.
//
// Two kinds of channel exist:
//
//   - Broadcast: a publish/subscribe bus. Publish calls every subscribed Handler
//     synchronously, on the publisher's goroutine, in subscription order.
//   - Pollable: a point-to-point rendezvous. Send blocks until a receiver takes the message;
//     Receive blocks until a sender hands one over.
//
// All channels are owned by a Registry, which also tracks which actors may poll.
// Both kinds have a channel named DefaultChannelName from the start.
//
// # Basic Usage
//
//	reg := channel.NewRegistry(channel.WithLogger(logger))
//	reg.MustRegisterBroadcast("orders")
//
//	orders, err := reg.LookupBroadcast("orders")
//	if err != nil {
//		return err // channel.ErrUnknownChannel: a wiring mistake
//	}
//
//	orders.Subscribe(channel.NewHandler("audit", func(ctx context.Context, msg message.Message) error {
//		log.Println(msg.Payload())
//		return nil
//	}))
//	_ = orders.Publish(ctx, message.New("order-1"))
//
// Handlers run on the publisher's goroutine. Anything slow should be handed off
// to the subscribing actor's own workers.
//
// # Pollable Channels
//
// A pollable channel is only returned by LookupPollable once at least one actor has been
// noted as PollCapable; before that the lookup reports ErrNoPollers, meaning "there is no
// channel to send to". Timeouts come from the context:
//
//	ctx, cancel := context.WithTimeout(ctx, time.Second)
//	defer cancel()
//	if err := work.Send(ctx, msg); errors.Is(err, channel.ErrSendTimeout) {
//		// nobody was ready; the caller decides what to do
//	}
//
// # Resequenced Channels
//
// A pollable channel can be backed by a resequencer. Send then becomes a non-blocking Put
// keyed by a header, and the consuming actor drains it with Consume and Flush instead of
// Receive:
//
//	r, _ := resequencer.NewInt64[message.Message](resequencer.DefaultConfig())
//	in := reg.MustRegisterPollable("in", channel.WithInt64Resequencer(r, "seq"))
//
//	_ = in.Send(ctx, message.New("b", message.WithHeader("seq", 1)))
//	_ = in.Send(ctx, message.New("a", message.WithHeader("seq", 0)))
//	_ = in.Consume(func(msg message.Message) { fmt.Println(msg.Payload()) }) // a, b
//
// # Error Handling
//
// Registration and lookup mistakes (ErrEmptyChannelName, ErrDuplicateChannel,
// ErrUnknownChannel) are configuration errors and should fail start-up. Timeouts
// (ErrPublishTimeout, ErrSendTimeout, ErrReceiveTimeout) and ErrInterrupted are ordinary
// runtime results for the caller to handle. No operation retries on its own.
package channel
