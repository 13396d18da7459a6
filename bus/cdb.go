// Package bus implements the Common Data Bus (CDB): the single tagged
// broadcast channel functional units use to publish results to the
// reservation station, store/load buffer, and reorder buffer.
package bus

import "github.com/sarchlab/rv32tomasulo/seq"

// Message is one CDB broadcast: a result tagged with the ROB slot that
// produced it, plus the effective address for loads/stores (unused by ALU
// results).
type Message struct {
	Tag  uint8
	Data uint32
	Addr uint32
}

type state struct {
	msg     Message
	pending bool
}

// CDB is a single-sender, one-cycle-latency tagged broadcast bus. It
// carries at most one message per cycle.
type CDB struct {
	cell *seq.Cell[state]
}

// New creates an empty CDB.
func New() *CDB {
	return &CDB{cell: seq.NewCell(state{})}
}

// Send stages a message for broadcast next cycle. It is a no-op (the
// message is dropped) if a message is already staged, implementing
// functional-unit back-pressure: at most one unit may win CDB arbitration
// per cycle, so losers must hold their result and retry.
func (b *CDB) Send(msg Message) {
	if b.cell.Peek().pending {
		return
	}
	b.cell.Set(state{msg: msg, pending: true})
}

// Traffic reports whether a message is visible on the bus this cycle.
func (b *CDB) Traffic() bool {
	return b.cell.Get().pending
}

// Recv consumes this cycle's message, clearing the bus for next cycle.
// Callers must check Traffic first; Recv on an empty bus returns the zero
// Message.
func (b *CDB) Recv() Message {
	msg := b.cell.Get().msg
	b.cell.Set(state{})
	return msg
}

// Flush clears any staged message, used on a misprediction squash.
func (b *CDB) Flush() {
	b.cell.Set(state{})
}

// Tick advances the bus by one cycle.
func (b *CDB) Tick() {
	b.cell.Tick()
}
