// Package resequencer restores key order to an out-of-order stream within bounded memory.
//
// A Resequencer buffers values by key in a sorted map and releases them to a consumer
// callback in the order defined by a caller-supplied comparator. The next key it waits for
// (the "expected key") is produced by a successor function, so any totally ordered key space
// with a notion of "next" can be resequenced: sequence numbers, offsets, timestamps bucketed
// to a fixed step, and so on.
//
// # Basic Usage
//
//	r, err := resequencer.NewInt64[string](resequencer.Config{SoftLimit: 100})
//	if err != nil {
//		return err
//	}
//
//	r.Put(1, "b")
//	r.Put(0, "a")
//	r.Put(2, "c")
//
//	_ = r.Consume(func(key int64, value string) {
//		fmt.Println(key, value) // 0 a, 1 b, 2 c
//	})
//
// The first Put defines where the stream starts: its key becomes the expected key.
//
// # Limits
//
// Two limits keep the buffer bounded:
//
//   - SoftLimit: when the expected key is missing and the buffer holds at least SoftLimit
//     entries, Consume skips ahead and releases the lowest buffered key. The missing key is
//     then permanently behind the window.
//   - HardLimit: when non-zero, Put refuses to grow the buffer past HardLimit entries and
//     drops the incoming key instead.
//
// Keys that arrive after the window already moved past them are discarded by Put. Discards,
// skips and drops are counted (and their keys recorded when Config.Metrics is set); none of
// them is reported as an error.
//
// # Flushing
//
// Flush behaves like Consume but forces the buffer to drain completely, skipping over every
// gap. Use it at end of stream:
//
//	_ = r.Flush(deliver)
//
// # Concurrency
//
// Put may be called from one producer goroutine while another goroutine consumes. Consume and
// Flush are single-consumer operations: an overlapping second call returns
// ErrConcurrentConsume instead of racing the first one. Callers with more than one trigger
// source (a ticker and an explicit call, for example) must serialize them.
//
// # Diagnostics
//
// Stats returns a snapshot of the counters, and DumpStats writes them as text:
//
//	0:12
//	3:1
//	Max.Unseq.Size=3
//	Total=40
//	Pending=0
package resequencer
