package channel

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"

	goset "github.com/deckarep/golang-set/v2"

	"github.com/dmitrymomot/actorkit/core/logger"
	"github.com/dmitrymomot/actorkit/core/message"
)

// DefaultChannelName names the broadcast and pollable channels every registry starts with.
const DefaultChannelName = "default"

// Capability is a role an actor declares when it registers.
type Capability uint8

const (
	// PollCapable actors consume by calling Receive on pollable channels.
	PollCapable Capability = 1 << iota
	// Subscriber actors consume by subscribing handlers to broadcast channels.
	Subscriber
)

// Has reports whether c includes every role in other.
func (c Capability) Has(other Capability) bool {
	return c&other == other
}

func (c Capability) String() string {
	switch c {
	case 0:
		return "none"
	case PollCapable:
		return "poll"
	case Subscriber:
		return "subscribe"
	case PollCapable | Subscriber:
		return "poll|subscribe"
	default:
		return fmt.Sprintf("capability(%d)", uint8(c))
	}
}

// Registry owns every named channel and the set of poll-capable actors.
type Registry struct {
	mu         sync.RWMutex
	broadcasts map[string]*Broadcast
	pollables  map[string]*Pollable
	pollers    goset.Set[string]

	sentinels      message.Sentinels
	maxOutstanding int64
	logger         *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger configures structured logging for the registry and its channels.
// Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable logging.
func WithLogger(log *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if log != nil {
			r.logger = log
		}
	}
}

// WithPublishConcurrency sets the default number of publishes a broadcast channel
// delivers at the same time. Default is DefaultMaxOutstanding.
func WithPublishConcurrency(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.maxOutstanding = int64(n)
		}
	}
}

// NewRegistry creates a registry holding the default broadcast and pollable channels.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		broadcasts:     make(map[string]*Broadcast),
		pollables:      make(map[string]*Pollable),
		pollers:        goset.NewSet[string](),
		sentinels:      message.NewSentinels(),
		maxOutstanding: DefaultMaxOutstanding,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.MustRegisterBroadcast(DefaultChannelName)
	r.MustRegisterPollable(DefaultChannelName)

	return r
}

// RegisterBroadcast creates a broadcast channel named name.
func (r *Registry) RegisterBroadcast(name string, opts ...BroadcastOption) (*Broadcast, error) {
	if name == "" {
		return nil, ErrEmptyChannelName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.broadcasts[name]; ok {
		return nil, fmt.Errorf("%w: broadcast %q", ErrDuplicateChannel, name)
	}

	b := newBroadcast(name, r.maxOutstanding, r.logger, opts...)
	r.broadcasts[name] = b

	r.logger.Debug("broadcast channel registered", logger.Channel(name))
	return b, nil
}

// MustRegisterBroadcast is like RegisterBroadcast but panics on error.
func (r *Registry) MustRegisterBroadcast(name string, opts ...BroadcastOption) *Broadcast {
	b, err := r.RegisterBroadcast(name, opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// RegisterPollable creates a pollable channel named name.
func (r *Registry) RegisterPollable(name string, opts ...PollableOption) (*Pollable, error) {
	if name == "" {
		return nil, ErrEmptyChannelName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pollables[name]; ok {
		return nil, fmt.Errorf("%w: pollable %q", ErrDuplicateChannel, name)
	}

	p := newPollable(name, r.logger, opts...)
	r.pollables[name] = p

	r.logger.Debug("pollable channel registered",
		logger.Channel(name),
		logger.Key("resequenced", p.Resequenced()))
	return p, nil
}

// MustRegisterPollable is like RegisterPollable but panics on error.
func (r *Registry) MustRegisterPollable(name string, opts ...PollableOption) *Pollable {
	p, err := r.RegisterPollable(name, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// LookupBroadcast returns the broadcast channel named name.
func (r *Registry) LookupBroadcast(name string) (*Broadcast, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.broadcasts[name]
	if !ok {
		return nil, fmt.Errorf("%w: broadcast %q", ErrUnknownChannel, name)
	}
	return b, nil
}

// LookupPollable returns the pollable channel named name.
//
// While no actor is poll-capable it returns ErrNoPollers regardless of name:
// a channel nobody drains is treated as absent.
func (r *Registry) LookupPollable(name string) (*Pollable, error) {
	if r.pollers.Cardinality() == 0 {
		return nil, ErrNoPollers
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pollables[name]
	if !ok {
		return nil, fmt.Errorf("%w: pollable %q", ErrUnknownChannel, name)
	}
	return p, nil
}

// DefaultBroadcast returns the default broadcast channel.
func (r *Registry) DefaultBroadcast() *Broadcast {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.broadcasts[DefaultChannelName]
}

// NotePollCapable records actor as poll-capable when caps includes PollCapable.
// It reports whether the actor was added.
func (r *Registry) NotePollCapable(actor string, caps Capability) bool {
	if !caps.Has(PollCapable) {
		return false
	}
	added := r.pollers.Add(actor)
	if added {
		r.logger.Debug("poll-capable actor noted", logger.Actor(actor))
	}
	return added
}

// PollCapableActors returns the names of the poll-capable actors, sorted.
func (r *Registry) PollCapableActors() []string {
	names := r.pollers.ToSlice()
	slices.Sort(names)
	return names
}

// Sentinels returns the control messages shared by this registry's actors.
func (r *Registry) Sentinels() message.Sentinels {
	return r.sentinels
}

// EOS returns this registry's end-of-stream message.
func (r *Registry) EOS() message.Message {
	return r.sentinels.EOS()
}

// Broadcasts returns the names of all broadcast channels, sorted.
func (r *Registry) Broadcasts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.broadcasts))
}

// Pollables returns the names of all pollable channels, sorted.
func (r *Registry) Pollables() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.pollables))
}
