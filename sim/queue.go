// Implements the IdleQueue, which holds the indices of machines that are
// idle and available to replace a broken production machine.

package sim

import (
	"fmt"
	"strings"
)

// IdleQueue is a FIFO of machine indices backed by a ring buffer.
// Machines are enqueued when their repair completes (spares at start) and
// dequeued first-repaired, first-reassigned.
type IdleQueue struct {
	buf  []int
	head int
	size int
}

// NewIdleQueue creates a queue able to hold capacity indices without growing.
func NewIdleQueue(capacity int) *IdleQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &IdleQueue{buf: make([]int, capacity)}
}

// Enqueue adds a machine index to the back of the queue.
func (q *IdleQueue) Enqueue(idx int) {
	if q.size == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.size)%len(q.buf)] = idx
	q.size++
}

// Dequeue removes and returns the index at the front of the queue.
// ok is false when the queue is empty.
func (q *IdleQueue) Dequeue() (idx int, ok bool) {
	if q.size == 0 {
		return 0, false
	}
	idx = q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return idx, true
}

// Peek returns the index at the front without removing it.
func (q *IdleQueue) Peek() (int, bool) {
	if q.size == 0 {
		return 0, false
	}
	return q.buf[q.head], true
}

// Len returns the number of queued indices.
func (q *IdleQueue) Len() int {
	return q.size
}

// Items returns a copy of the queue contents, front first.
func (q *IdleQueue) Items() []int {
	out := make([]int, q.size)
	for i := range out {
		out[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	return out
}

func (q *IdleQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, idx := range q.Items() {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprint(idx))
	}
	sb.WriteString("]")
	return sb.String()
}

func (q *IdleQueue) grow() {
	next := make([]int, 2*len(q.buf))
	copy(next, q.Items())
	q.buf = next
	q.head = 0
}
