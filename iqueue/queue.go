// Package iqueue implements the bounded FIFO of fetched, pre-decoded,
// PC-annotated entries sitting between the fetch and issue stages.
package iqueue

import "github.com/sarchlab/rv32tomasulo/seq"

// Capacity is the maximum number of in-flight fetched entries.
const Capacity = 16

// Entry is one fetched-but-not-yet-issued instruction: the raw word, its
// own PC, the predicted-taken and predicted-not-taken successor addresses,
// and whether the predictor called it taken.
type Entry struct {
	Raw            uint32
	PC             uint32
	NextPC         uint32
	MispredictPC   uint32
	PredictedTaken bool
}

type state struct {
	buf        [Capacity]Entry
	head, tail int
	len        int
}

// Queue is a fixed-capacity ring-buffer FIFO.
type Queue struct {
	cell *seq.Cell[state]
}

// New creates an empty instruction queue.
func New() *Queue {
	return &Queue{cell: seq.NewCell(state{})}
}

// Empty reports whether the queue holds no entries.
func (q *Queue) Empty() bool {
	return q.cell.Get().len == 0
}

// Full reports whether the queue is at capacity.
func (q *Queue) Full() bool {
	return q.cell.Get().len == Capacity
}

// Len returns the number of entries currently queued.
func (q *Queue) Len() int {
	return q.cell.Get().len
}

// Front returns the head entry without removing it. Callers must check
// Empty first.
func (q *Queue) Front() Entry {
	s := q.cell.Get()
	return s.buf[s.head]
}

// Push appends e to the tail. Callers must check Full first.
func (q *Queue) Push(e Entry) {
	s := q.cell.Peek()
	s.buf[s.tail] = e
	s.tail = (s.tail + 1) % Capacity
	s.len++
	q.cell.Set(s)
}

// Pop removes the head entry. Callers must check Empty first.
func (q *Queue) Pop() {
	s := q.cell.Peek()
	s.head = (s.head + 1) % Capacity
	s.len--
	q.cell.Set(s)
}

// Flush empties the queue immediately, used on a misprediction squash.
func (q *Queue) Flush() {
	q.cell.Reset(state{})
}

// Tick advances the queue by one cycle.
func (q *Queue) Tick() {
	q.cell.Tick()
}
