package message

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Reserved header keys.
const (
	HeaderID        = "id"
	HeaderTimestamp = "timestamp"
)

// Kind distinguishes payload messages from control messages.
type Kind uint8

const (
	KindPayload Kind = iota
	KindEOS
	KindPollReady
)

func (k Kind) String() string {
	switch k {
	case KindPayload:
		return "payload"
	case KindEOS:
		return "eos"
	case KindPollReady:
		return "poll_ready"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Message is an immutable envelope of a payload plus ordered headers.
type Message struct {
	kind    Kind
	payload any
	headers Headers
}

// Option configures a message under construction.
type Option func(*Message)

// WithHeader adds a header to the message.
func WithHeader(key string, value any) Option {
	return func(m *Message) {
		m.headers.Set(key, value)
	}
}

// WithHeaders copies all headers from h, in order.
func WithHeaders(h Headers) Option {
	return func(m *Message) {
		h.Range(func(k string, v any) bool {
			m.headers.Set(k, v)
			return true
		})
	}
}

// WithID overrides the generated message ID.
func WithID(id string) Option {
	return WithHeader(HeaderID, id)
}

// New creates a payload message.
func New(payload any, opts ...Option) Message {
	return build(KindPayload, payload, opts...)
}

func build(kind Kind, payload any, opts ...Option) Message {
	m := Message{kind: kind, payload: payload}
	m.headers.Set(HeaderID, uuid.New().String())
	m.headers.Set(HeaderTimestamp, time.Now().UnixMilli())
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Kind returns the message kind.
func (m Message) Kind() Kind { return m.kind }

// IsEOS reports whether m is an end-of-stream sentinel.
func (m Message) IsEOS() bool { return m.kind == KindEOS }

// IsPollReady reports whether m is a poll-ready notification.
func (m Message) IsPollReady() bool { return m.kind == KindPollReady }

// IsZero reports whether m is the zero Message, i.e. no message at all.
func (m Message) IsZero() bool {
	return m.kind == KindPayload && m.payload == nil && m.headers.Len() == 0
}

// Payload returns the message payload.
func (m Message) Payload() any { return m.payload }

// ID returns the message ID header, or an empty string.
func (m Message) ID() string {
	v, _ := m.headers.Get(HeaderID)
	id, _ := v.(string)
	return id
}

// Timestamp returns the creation time recorded in the timestamp header.
func (m Message) Timestamp() time.Time {
	v, ok := m.headers.Get(HeaderTimestamp)
	if !ok {
		return time.Time{}
	}
	ms, ok := v.(int64)
	if !ok {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// Header returns a single header value.
func (m Message) Header(key string) (any, bool) {
	return m.headers.Get(key)
}

// Headers returns a copy of the message headers.
func (m Message) Headers() Headers {
	return m.headers.Clone()
}

// With returns a copy of m with the header set. m itself is not modified.
func (m Message) With(key string, value any) Message {
	c := Message{kind: m.kind, payload: m.payload, headers: m.headers.Clone()}
	c.headers.Set(key, value)
	return c
}

// WithPayload returns a copy of m carrying payload, keeping kind and headers.
func (m Message) WithPayload(payload any) Message {
	return Message{kind: m.kind, payload: payload, headers: m.headers.Clone()}
}

func (m Message) String() string {
	return fmt.Sprintf("Message{kind=%s id=%s payload=%v}", m.kind, m.ID(), m.payload)
}

// PayloadAs returns the payload of m asserted to T.
func PayloadAs[T any](m Message) (T, bool) {
	v, ok := m.payload.(T)
	return v, ok
}
