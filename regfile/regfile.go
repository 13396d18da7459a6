// Package regfile implements the 32 architectural registers plus the
// per-register rename tag used by the renaming protocol.
package regfile

import "github.com/sarchlab/rv32tomasulo/seq"

// Count is the number of architectural registers. Register 0 is hardwired
// to zero.
const Count = 32

type state struct {
	value uint32
	tag   uint8
}

// File is the architectural register file: 32 current/next-latched
// (value, rename tag) pairs.
type File struct {
	regs [Count]*seq.Cell[state]
}

// New creates a register file with every register zeroed and untagged.
func New() *File {
	f := &File{}
	for i := range f.regs {
		f.regs[i] = seq.NewCell(state{})
	}
	return f
}

// Read returns the architectural value of register r. Register 0 always
// reads 0.
func (f *File) Read(r uint8) uint32 {
	if r == 0 {
		return 0
	}
	return f.regs[r].Get().value
}

// Tag returns the current rename tag of register r (0 if untagged or r is
// register 0).
func (f *File) Tag(r uint8) uint8 {
	if r == 0 {
		return 0
	}
	return f.regs[r].Get().tag
}

// Rename unconditionally overwrites register r's rename tag with slot,
// superseding any prior tag. A write to register 0 is discarded.
func (f *File) Rename(r uint8, slot uint8) {
	if r == 0 {
		return
	}
	st := f.regs[r].Peek()
	st.tag = slot
	f.regs[r].Set(st)
}

// Commit writes val into register r and clears its rename tag, but only if
// the tag still equals slot — a later rename of the same register
// supersedes an earlier, still in-flight, producer. A write to register 0
// is discarded (but the tag-equality check, if it would have cleared a
// stale tag on another register, is unaffected since r==0 never carries a
// tag).
func (f *File) Commit(r uint8, slot uint8, val uint32) {
	if r == 0 {
		return
	}
	st := f.regs[r].Peek()
	st.value = val
	if st.tag == slot {
		st.tag = 0
	}
	f.regs[r].Set(st)
}

// Flush clears every register's rename tag, leaving values untouched. Used
// on a misprediction squash: all in-flight producers die, so every
// outstanding tag must revert to "value is in the register file".
func (f *File) Flush() {
	for _, c := range f.regs {
		c.Reset(state{value: c.Get().value, tag: 0})
	}
}

// Tick advances every register by one cycle.
func (f *File) Tick() {
	for _, c := range f.regs {
		c.Tick()
	}
}
