package message

import "slices"

// Headers is an ordered key/value mapping with unique keys.
// The zero value is an empty, ready to use mapping.
type Headers struct {
	keys   []string
	values map[string]any
}

// Set stores value under key. Setting an existing key replaces its value
// and keeps its original position.
func (h *Headers) Set(key string, value any) {
	if h.values == nil {
		h.values = make(map[string]any)
	}
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = value
}

// Delete removes key, if present.
func (h *Headers) Delete(key string) {
	if _, ok := h.values[key]; !ok {
		return
	}
	delete(h.values, key)
	h.keys = slices.DeleteFunc(h.keys, func(k string) bool { return k == key })
}

// Get returns the value stored under key.
func (h Headers) Get(key string) (any, bool) {
	v, ok := h.values[key]
	return v, ok
}

// Has reports whether key is present.
func (h Headers) Has(key string) bool {
	_, ok := h.values[key]
	return ok
}

// Len returns the number of headers.
func (h Headers) Len() int {
	return len(h.keys)
}

// Keys returns the header keys in insertion order.
func (h Headers) Keys() []string {
	return slices.Clone(h.keys)
}

// Range calls fn for every header in insertion order until fn returns false.
func (h Headers) Range(fn func(key string, value any) bool) {
	for _, k := range h.keys {
		if !fn(k, h.values[k]) {
			return
		}
	}
}

// Clone returns an independent copy.
func (h Headers) Clone() Headers {
	c := Headers{
		keys:   slices.Clone(h.keys),
		values: make(map[string]any, len(h.values)),
	}
	for k, v := range h.values {
		c.values[k] = v
	}
	return c
}
