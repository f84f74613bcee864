package assembler

import "github.com/roach88/rkc/internal/ir"

// workQueue is the FIFO of parameter records one assembly processes.
//
// Records synthesized during the pass are enqueued behind the ones already
// waiting, so the source's records are always handled first. The queue is
// owned by a single Assemble call and is not safe for concurrent use.
type workQueue struct {
	items []ir.Parameter
}

// newWorkQueue creates a queue holding copies of params.
func newWorkQueue(params []ir.Parameter) *workQueue {
	q := &workQueue{items: make([]ir.Parameter, 0, len(params)+2)}
	for _, p := range params {
		q.Enqueue(p.Clone())
	}
	return q
}

// Enqueue adds a record to the back of the queue.
func (q *workQueue) Enqueue(p ir.Parameter) {
	q.items = append(q.items, p)
}

// TryDequeue removes and returns the front record.
// Returns (ir.Parameter{}, false) if the queue is empty.
func (q *workQueue) TryDequeue() (ir.Parameter, bool) {
	if len(q.items) == 0 {
		return ir.Parameter{}, false
	}

	p := q.items[0]

	// Clear the slot so the backing array does not pin the record's value
	// tree after it has been processed.
	q.items[0] = ir.Parameter{}

	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}

	return p, true
}

// Len returns the current queue length.
func (q *workQueue) Len() int {
	return len(q.items)
}
