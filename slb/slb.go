// Package slb implements the store/load buffer: an in-order FIFO of
// memory operations enforcing program order across RAM.
package slb

import (
	"github.com/sarchlab/rv32tomasulo/insts"
	"github.com/sarchlab/rv32tomasulo/seq"
)

// Capacity is the number of store/load buffer slots.
const Capacity = 15

// Entry is one waiting memory operation, shaped like rs.Entry: Val1 is the
// base register value (added to Imm for the effective address), Val2 is
// the store's data operand.
type Entry struct {
	RobIdx uint8
	Op     insts.Op
	Val1   uint32
	Val2   uint32
	Src1   uint8
	Src2   uint8
	Imm    uint32
}

// Ready reports whether both operands are available.
func (e Entry) Ready() bool {
	return e.Src1 == 0 && e.Src2 == 0
}

func (e Entry) match(tag uint8) bool {
	return e.Src1 == tag || e.Src2 == tag
}

func (e *Entry) update(tag uint8, data uint32) {
	if e.Src1 == tag {
		e.Src1 = 0
		e.Val1 = data
	}
	if e.Src2 == tag {
		e.Src2 = 0
		e.Val2 = data
	}
}

type state struct {
	buf        [Capacity]Entry
	head, tail int
	len        int
}

// SLB is the store/load buffer: a capacity-15 FIFO.
type SLB struct {
	cell *seq.Cell[state]
}

// New creates an empty store/load buffer.
func New() *SLB {
	return &SLB{cell: seq.NewCell(state{})}
}

// Empty reports whether the buffer holds no entries.
func (b *SLB) Empty() bool {
	return b.cell.Get().len == 0
}

// Full reports whether the buffer is at capacity.
func (b *SLB) Full() bool {
	return b.cell.Get().len == Capacity
}

// Issue pushes item to the tail. Callers must check Full first.
func (b *SLB) Issue(item Entry) {
	s := b.cell.Peek()
	s.buf[s.tail] = item
	s.tail = (s.tail + 1) % Capacity
	s.len++
	b.cell.Set(s)
}

// Execute inspects the head entry. If it is not ready, it does nothing. If
// it is a load, it fires only when loadPending is false and
// pendingStoreCount is zero (no earlier uncommitted store may still be in
// flight, since stores do not mutate RAM until they drain their delay line
// at commit+3). If it is a store, it fires only when storePending is
// false. On firing, the head is popped and returned along with whether it
// was a load.
func (b *SLB) Execute(storePending, loadPending bool, pendingStoreCount int) (Entry, bool, bool) {
	s := b.cell.Get()
	if s.len == 0 {
		return Entry{}, false, false
	}
	head := s.buf[s.head]
	if !head.Ready() {
		return Entry{}, false, false
	}
	isLoad := head.Op.IsLoad()
	if isLoad {
		if loadPending || pendingStoreCount != 0 {
			return Entry{}, false, false
		}
	} else {
		if storePending {
			return Entry{}, false, false
		}
	}
	n := b.cell.Peek()
	n.head = (n.head + 1) % Capacity
	n.len--
	b.cell.Set(n)
	return head, isLoad, true
}

// Update applies a CDB broadcast to every occupied slot whose source
// matches tag, applied to the already-staged next view so a same-cycle
// Issue is not clobbered.
func (b *SLB) Update(tag uint8, data uint32) {
	cur := b.cell.Get()
	n := b.cell.Peek()
	for i := 0; i < cur.len; i++ {
		idx := (cur.head + i) % Capacity
		if !cur.buf[idx].match(tag) {
			continue
		}
		if i < n.len {
			nidx := (n.head + i) % Capacity
			n.buf[nidx].update(tag, data)
		}
	}
	b.cell.Set(n)
}

// Flush empties the store/load buffer, used on a misprediction squash.
func (b *SLB) Flush() {
	b.cell.Reset(state{})
}

// Tick advances the store/load buffer by one cycle.
func (b *SLB) Tick() {
	b.cell.Tick()
}
