package resequencer

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// Stats is a point-in-time snapshot of a resequencer's counters.
type Stats[K any] struct {
	Histogram map[int]int // buffer size at each Consume/Flush entry -> count
	HighWater int         // largest buffer size observed while consuming
	Total     int         // number of Put calls
	Pending   int         // entries currently buffered
	Discarded int         // stale keys removed
	Skipped   int         // entries released out of order by skip-ahead
	Dropped   int         // keys refused at the hard limit

	// Key lists are only populated when Config.Metrics is set.
	DiscardedKeys []K
	SkippedKeys   []K
	DroppedKeys   []K
}

// Stats returns a copy of the current counters.
func (r *Resequencer[K, V]) Stats() Stats[K] {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Stats[K]{
		Histogram:     maps.Clone(r.histogram),
		HighWater:     r.highWater,
		Total:         r.total,
		Pending:       r.buf.Len(),
		Discarded:     r.discarded,
		Skipped:       r.skipped,
		Dropped:       r.dropped,
		DiscardedKeys: slices.Clone(r.discardKeys),
		SkippedKeys:   slices.Clone(r.skipKeys),
		DroppedKeys:   slices.Clone(r.dropKeys),
	}
}

// DumpStats writes the diagnostic text report to w.
// The output has no effect on the resequencer's behavior.
func (r *Resequencer[K, V]) DumpStats(w io.Writer) error {
	s := r.Stats()

	var b strings.Builder
	for _, size := range slices.Sorted(maps.Keys(s.Histogram)) {
		fmt.Fprintf(&b, "%d:%d\n", size, s.Histogram[size])
	}
	if r.metrics {
		writeKeys(&b, "DISCARD", s.DiscardedKeys)
		writeKeys(&b, "SKIPPED", s.SkippedKeys)
		writeKeys(&b, "DROPPED", s.DroppedKeys)
	}
	fmt.Fprintf(&b, "Max.Unseq.Size=%d\n", s.HighWater)
	fmt.Fprintf(&b, "Total=%d\n", s.Total)
	fmt.Fprintf(&b, "Pending=%d\n", s.Pending)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeKeys[K any](b *strings.Builder, label string, keys []K) {
	fmt.Fprintf(b, "%s.Keys:%v\n", label, keys)
	fmt.Fprintf(b, "%s.Size=%d\n", label, len(keys))
}
