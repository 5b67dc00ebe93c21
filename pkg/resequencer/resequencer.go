package resequencer

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/btree"
)

// btreeDegree is the fan-out of the buffer's B-tree.
const btreeDegree = 16

// Successor yields the key expected after prev. A nil prev asks for the first expected key.
type Successor[K any] func(prev *K) K

// Consumer receives released entries in key order.
type Consumer[K, V any] func(key K, value V)

// Option configures a Resequencer.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger configures debug logging of buffer decisions.
// Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

type entry[K, V any] struct {
	key   K
	value V
}

// Resequencer is a keyed reordering buffer.
//
// Put stores values; Consume and Flush release them in comparator order starting
// from the expected key. See the package documentation for the limit policies.
type Resequencer[K, V any] struct {
	mu        sync.Mutex
	consuming atomic.Bool

	buf       *btree.BTreeG[entry[K, V]]
	compare   func(a, b K) int
	successor Successor[K]
	softLimit int
	hardLimit int
	metrics   bool
	logger    *slog.Logger

	expectKey K
	total     int
	highWater int
	histogram map[int]int

	discarded int
	skipped   int
	dropped   int

	discardKeys []K
	skipKeys    []K
	dropKeys    []K
}

// New creates a resequencer ordered by compare, walking keys with successor.
//
// Example:
//
//	r, err := resequencer.New[uint32, []byte](
//	    resequencer.Config{SoftLimit: 64, HardLimit: 1024},
//	    cmp.Compare[uint32],
//	    func(prev *uint32) uint32 {
//	        if prev == nil {
//	            return 0
//	        }
//	        return *prev + 1
//	    },
//	)
func New[K, V any](cfg Config, compare func(a, b K) int, successor Successor[K], opts ...Option) (*Resequencer[K, V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if compare == nil {
		return nil, ErrNilComparator
	}
	if successor == nil {
		return nil, ErrNilSuccessor
	}

	o := &options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}

	less := func(a, b entry[K, V]) bool {
		return compare(a.key, b.key) < 0
	}

	return &Resequencer[K, V]{
		buf:       btree.NewG(btreeDegree, less),
		compare:   compare,
		successor: successor,
		softLimit: cfg.effectiveSoftLimit(),
		hardLimit: cfg.HardLimit,
		metrics:   cfg.Metrics,
		logger:    o.logger,
		expectKey: successor(nil),
		histogram: make(map[int]int),
	}, nil
}

// Put buffers value under key and returns the value it replaced, if any.
//
// The first call defines the start of the stream. A key below the expected key is
// discarded; a new key arriving while the buffer is at its hard limit is dropped.
// Neither case is an error.
func (r *Resequencer[K, V]) Put(key K, value V) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero V

	if r.total == 0 {
		r.expectKey = key
	}
	r.total++

	if r.compare(key, r.expectKey) < 0 {
		r.discarded++
		if r.metrics {
			r.discardKeys = append(r.discardKeys, key)
		}
		r.logger.Debug("stale key discarded",
			slog.Any("key", key),
			slog.Any("expect_key", r.expectKey))
		return zero, false
	}

	if r.hardLimit > 0 && r.buf.Len() >= r.hardLimit {
		r.dropped++
		if r.metrics {
			r.dropKeys = append(r.dropKeys, key)
		}
		r.logger.Debug("hard limit reached, key dropped",
			slog.Any("key", key),
			slog.Int("hard_limit", r.hardLimit))
		return zero, false
	}

	prev, replaced := r.buf.ReplaceOrInsert(entry[K, V]{key: key, value: value})
	if !replaced {
		return zero, false
	}
	return prev.value, true
}

// Consume releases every entry that is in sequence, skipping ahead only when the
// buffer has reached its soft limit. It returns once the expected key is missing
// and the buffer is below the soft limit.
//
// A nil consumer releases entries without delivering them.
func (r *Resequencer[K, V]) Consume(fn Consumer[K, V]) error {
	return r.drain(fn, false)
}

// Flush releases every buffered entry in key order, skipping over all gaps.
// The buffer is empty when Flush returns nil.
func (r *Resequencer[K, V]) Flush(fn Consumer[K, V]) error {
	return r.drain(fn, true)
}

func (r *Resequencer[K, V]) drain(fn Consumer[K, V], force bool) error {
	if !r.consuming.CompareAndSwap(false, true) {
		return ErrConcurrentConsume
	}
	defer r.consuming.Store(false)

	r.mu.Lock()
	r.histogram[r.buf.Len()]++
	r.mu.Unlock()

	for {
		key, value, ok := r.next(force)
		if !ok {
			return nil
		}
		// The callback runs unlocked so that it may Put back into this resequencer.
		if fn != nil {
			fn(key, value)
		}
	}
}

// next pops the entry to deliver and advances the expected key.
// It reports false when the consumer has to wait for more data.
func (r *Resequencer[K, V]) next(force bool) (K, V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n := r.buf.Len(); n > r.highWater {
		r.highWater = n
	}

	// Skip-ahead may move the expected key past entries that are still buffered.
	for {
		head, ok := r.buf.Min()
		if !ok || r.compare(head.key, r.expectKey) >= 0 {
			break
		}
		r.buf.DeleteMin()
		r.discarded++
		if r.metrics {
			r.discardKeys = append(r.discardKeys, head.key)
		}
		r.logger.Debug("stale entry removed", slog.Any("key", head.key))
	}

	if e, ok := r.buf.Delete(entry[K, V]{key: r.expectKey}); ok {
		r.expectKey = r.successor(&e.key)
		return e.key, e.value, true
	}

	size := r.buf.Len()
	if (force && size > 0) || (size > 0 && size >= r.softLimit) {
		e, _ := r.buf.DeleteMin()
		r.skipped++
		if r.metrics {
			r.skipKeys = append(r.skipKeys, e.key)
		}
		r.logger.Debug("expected key missing, skipping ahead",
			slog.Any("expect_key", r.expectKey),
			slog.Any("key", e.key),
			slog.Int("buffer_size", size))
		r.expectKey = r.successor(&e.key)
		return e.key, e.value, true
	}

	var (
		zeroK K
		zeroV V
	)
	return zeroK, zeroV, false
}

// Pending reports whether any entry is waiting in the buffer.
func (r *Resequencer[K, V]) Pending() bool {
	return r.Len() > 0
}

// Len returns the number of buffered entries.
func (r *Resequencer[K, V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Len()
}

// ExpectKey returns the next key the resequencer will release.
func (r *Resequencer[K, V]) ExpectKey() K {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.expectKey
}
