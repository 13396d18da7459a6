// Package rs implements the reservation station: an unordered pool of
// waiting ALU operations.
package rs

import (
	"github.com/sarchlab/rv32tomasulo/insts"
	"github.com/sarchlab/rv32tomasulo/seq"
)

// Capacity is the number of reservation-station slots.
const Capacity = 15

// Entry is one waiting buffer item: a ROB slot awaiting an ALU result with
// up to two operands, each either ready (src == 0) or pending on another
// ROB slot.
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

type slot struct {
	entry    Entry
	occupied bool
}

type state struct {
	slots [Capacity]slot
}

// RS is the reservation station.
type RS struct {
	cell *seq.Cell[state]
}

// New creates an empty reservation station.
func New() *RS {
	return &RS{cell: seq.NewCell(state{})}
}

// Empty reports whether no slot is occupied.
func (r *RS) Empty() bool {
	s := r.cell.Get()
	for _, sl := range s.slots {
		if sl.occupied {
			return false
		}
	}
	return true
}

// Full reports whether every slot is occupied.
func (r *RS) Full() bool {
	s := r.cell.Get()
	for _, sl := range s.slots {
		if !sl.occupied {
			return false
		}
	}
	return true
}

// Issue allocates a free slot for item. Callers must check Full first.
func (r *RS) Issue(item Entry) {
	s := r.cell.Peek()
	for i := range s.slots {
		if !s.slots[i].occupied {
			s.slots[i] = slot{entry: item, occupied: true}
			r.cell.Set(s)
			return
		}
	}
}

// Execute scans for the first ready entry in slot order, deallocates it,
// and returns it for functional-unit dispatch. It is a no-op if
// outputPending is true, i.e. the functional unit's output register
// already holds a message awaiting CDB transmission (back-pressure).
func (r *RS) Execute(outputPending bool) (Entry, bool) {
	if outputPending {
		return Entry{}, false
	}
	cur := r.cell.Get()
	for i := range cur.slots {
		if cur.slots[i].occupied && cur.slots[i].entry.Ready() {
			s := r.cell.Peek()
			s.slots[i] = slot{}
			r.cell.Set(s)
			return cur.slots[i].entry, true
		}
	}
	return Entry{}, false
}

// Update applies a CDB broadcast to every occupied slot whose source
// matches tag. The update is applied to the already-staged next view so a
// same-cycle Issue (in-cycle forwarding) is not clobbered.
func (r *RS) Update(tag uint8, data uint32) {
	cur := r.cell.Get()
	s := r.cell.Peek()
	for i := range cur.slots {
		if !cur.slots[i].occupied || !cur.slots[i].entry.match(tag) {
			continue
		}
		if s.slots[i].occupied {
			s.slots[i].entry.update(tag, data)
		}
	}
	r.cell.Set(s)
}

func (e Entry) match(tag uint8) bool {
	return e.Src1 == tag || e.Src2 == tag
}

// Flush empties the reservation station, used on a misprediction squash.
func (r *RS) Flush() {
	r.cell.Reset(state{})
}

// Tick advances the reservation station by one cycle.
func (r *RS) Tick() {
	r.cell.Tick()
}
