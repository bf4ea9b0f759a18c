// Package queue implements the bounded thread-safe FIFO (C5) that ferries
// chunk-buffer slot indices between the I/O thread and the worker pool.
//
// Go's buffered channel already provides the exact contract spec.md §4.5
// asks for: FIFO order, a blocking Push while at capacity, a blocking Pop
// while empty, and (via close) a single terminal "done" event after which
// every later Pop returns immediately. Wrapping it in Queue keeps the
// spec's named operations (Push/Pop/Done/Empty, with Len as its size) as a stable API rather
// than scattering raw channel operations through the orchestrator —
// grounded structurally on the bounded multi-stage ring in
// 363bceaa_rishavpaul-system-design (disruptor ring_buffer.go), adapted
// from a lock-free ring to a channel since nothing here needs lock-freedom.
package queue

// Queue is a bounded FIFO of slot indices.
type Queue struct {
	ch chan int
}

// New creates a Queue with the given capacity.
func New(capacity int) *Queue {
	return &Queue{ch: make(chan int, capacity)}
}

// Push enqueues x, blocking while the queue is at capacity. It must not be
// called after Done.
func (q *Queue) Push(x int) {
	q.ch <- x
}

// Pop blocks until an item is available or the queue is Done and drained.
// ok is false only once both conditions hold — "no spurious loss of done"
// (spec.md §4.5).
func (q *Queue) Pop() (x int, ok bool) {
	x, ok = <-q.ch
	return x, ok
}

// Done marks the queue terminal: no further Push calls are permitted, and
// every Pop on an empty, Done queue returns (0, false) from then on.
func (q *Queue) Done() {
	close(q.ch)
}

// Len reports the approximate number of queued items, for orchestration
// diagnostics only (spec.md §4.5: "approximate, for orchestration only").
func (q *Queue) Len() int {
	return len(q.ch)
}

// Empty reports whether the queue currently holds no items.
func (q *Queue) Empty() bool {
	return len(q.ch) == 0
}
