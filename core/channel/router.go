package channel

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/actorkit/core/message"
)

// Router forwards a message to one or more broadcast channels.
type Router interface {
	Route(ctx context.Context, msg message.Message) error
}

// RecipientListRouter publishes every message to a fixed list of channels.
type RecipientListRouter struct {
	targets []*Broadcast
}

// RecipientList builds a router publishing to the named broadcast channels, in order.
// With no names it publishes to the default channel.
// Channel names are resolved immediately; an unknown name is a configuration error.
func RecipientList(reg *Registry, names ...string) (*RecipientListRouter, error) {
	if len(names) == 0 {
		names = []string{DefaultChannelName}
	}

	targets := make([]*Broadcast, 0, len(names))
	for _, name := range names {
		b, err := reg.LookupBroadcast(name)
		if err != nil {
			return nil, err
		}
		targets = append(targets, b)
	}
	return &RecipientListRouter{targets: targets}, nil
}

// Route publishes msg to every recipient, continuing past failures.
func (r *RecipientListRouter) Route(ctx context.Context, msg message.Message) error {
	var errs []error
	for _, b := range r.targets {
		if err := b.Publish(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HeaderValueRouter picks the target channel from the value of a header.
type HeaderValueRouter struct {
	header   string
	mapping  map[string]*Broadcast
	fallback *Broadcast
}

// HeaderValue builds a router that maps the string form of header's value to a channel name.
// Messages without a mapped value go to fallback, or to the default channel when fallback is empty.
func HeaderValue(reg *Registry, header string, mapping map[string]string, fallback string) (*HeaderValueRouter, error) {
	if fallback == "" {
		fallback = DefaultChannelName
	}

	fb, err := reg.LookupBroadcast(fallback)
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]*Broadcast, len(mapping))
	for value, name := range mapping {
		b, err := reg.LookupBroadcast(name)
		if err != nil {
			return nil, err
		}
		resolved[value] = b
	}

	return &HeaderValueRouter{header: header, mapping: resolved, fallback: fb}, nil
}

// Route publishes msg to the channel mapped from its header value.
func (r *HeaderValueRouter) Route(ctx context.Context, msg message.Message) error {
	return r.target(msg).Publish(ctx, msg)
}

func (r *HeaderValueRouter) target(msg message.Message) *Broadcast {
	v, ok := msg.Header(r.header)
	if !ok {
		return r.fallback
	}
	if b, ok := r.mapping[fmt.Sprint(v)]; ok {
		return b
	}
	return r.fallback
}
