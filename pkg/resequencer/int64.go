package resequencer

import "cmp"

// Int64Successor starts a sequence at 0 and steps by one.
func Int64Successor(prev *int64) int64 {
	if prev == nil {
		return 0
	}
	return *prev + 1
}

// NewInt64 creates a resequencer over int64 sequence numbers starting at 0.
func NewInt64[V any](cfg Config, opts ...Option) (*Resequencer[int64, V], error) {
	return New[int64, V](cfg, cmp.Compare[int64], Int64Successor, opts...)
}
