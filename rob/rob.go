// Package rob implements the reorder buffer: an in-order FIFO of
// speculative results awaiting commit, enforcing in-order retirement over
// out-of-order execution.
package rob

import (
	"github.com/sarchlab/rv32tomasulo/insts"
	"github.com/sarchlab/rv32tomasulo/seq"
)

// Capacity is the number of real ROB slots, 1-based indices 1..Capacity.
// Slot 0 is reserved as the "no rename tag" sentinel, so the underlying
// storage holds Capacity entries addressed by idx-1.
const Capacity = 15

// Entry is one in-flight instruction's ROB record.
type Entry struct {
	SlotIdx        uint8
	Raw            uint32
	Op             insts.Op
	Countdown      int
	Dest           uint8
	Data           uint32
	Addr           uint32
	CurPC          uint32
	NextPC         uint32
	MispredictPC   uint32
	PredictedTaken bool
}

type state struct {
	buf        [Capacity]Entry
	occupied   [Capacity]bool
	head, tail int
	len        int
}

// ROB is the reorder buffer.
type ROB struct {
	cell *seq.Cell[state]
}

// New creates an empty reorder buffer.
func New() *ROB {
	return &ROB{cell: seq.NewCell(state{})}
}

// Empty reports whether no instruction is in flight.
func (r *ROB) Empty() bool {
	return r.cell.Get().len == 0
}

// Full reports whether the buffer is at capacity.
func (r *ROB) Full() bool {
	return r.cell.Get().len == Capacity
}

// Allocate reserves the next tail slot and returns its 1-based index,
// without yet writing an entry into it (Issue does that). Callers must
// check Full first.
func (r *ROB) Allocate() uint8 {
	s := r.cell.Peek()
	idx := s.tail
	s.occupied[idx] = true
	s.tail = (s.tail + 1) % Capacity
	s.len++
	r.cell.Set(s)
	return uint8(idx + 1)
}

// Issue writes entry into the slot previously reserved by Allocate.
func (r *ROB) Issue(idx uint8, entry Entry) {
	s := r.cell.Peek()
	i := int(idx) - 1
	if i < 0 || i >= Capacity || !s.occupied[i] {
		return
	}
	entry.SlotIdx = idx
	s.buf[i] = entry
	r.cell.Set(s)
}

// Ready reports whether the in-flight slot idx has already been written
// back by a functional unit (countdown reached 0).
func (r *ROB) Ready(idx uint8) bool {
	i := int(idx) - 1
	if i < 0 || i >= Capacity {
		return false
	}
	s := r.cell.Get()
	return s.occupied[i] && s.buf[i].Countdown == 0
}

// Value returns the data already written back for slot idx. Callers
// should check Ready first.
func (r *ROB) Value(idx uint8) uint32 {
	i := int(idx) - 1
	return r.cell.Get().buf[i].Data
}

// Update applies a functional-unit broadcast to slot idx: sets data/addr
// and decrements the countdown, marking the entry ready for commit once
// it reaches zero.
func (r *ROB) Update(idx uint8, data, addr uint32) {
	s := r.cell.Peek()
	i := int(idx) - 1
	if i < 0 || i >= Capacity || !s.occupied[i] {
		return
	}
	s.buf[i].Countdown--
	s.buf[i].Data = data
	s.buf[i].Addr = addr
	r.cell.Set(s)
}

// Commit inspects the head entry. If it is ready (countdown 0), pops it
// and returns a copy. Otherwise does nothing and returns false.
func (r *ROB) Commit() (Entry, bool) {
	cur := r.cell.Get()
	if cur.len == 0 {
		return Entry{}, false
	}
	head := cur.buf[cur.head]
	if head.Countdown != 0 {
		return Entry{}, false
	}
	s := r.cell.Peek()
	s.occupied[s.head] = false
	s.head = (s.head + 1) % Capacity
	s.len--
	r.cell.Set(s)
	return head, true
}

// Flush empties the reorder buffer, used on a misprediction squash.
func (r *ROB) Flush() {
	r.cell.Reset(state{})
}

// Tick advances the reorder buffer by one cycle.
func (r *ROB) Tick() {
	r.cell.Tick()
}
