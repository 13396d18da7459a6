package pipeline

import (
	"github.com/sarchlab/rv32tomasulo/bits"
	"github.com/sarchlab/rv32tomasulo/bus"
	"github.com/sarchlab/rv32tomasulo/insts"
	"github.com/sarchlab/rv32tomasulo/iqueue"
	"github.com/sarchlab/rv32tomasulo/rob"
	"github.com/sarchlab/rv32tomasulo/rs"
	"github.com/sarchlab/rv32tomasulo/seq"
	"github.com/sarchlab/rv32tomasulo/slb"
)

// outState is one functional unit's single-slot output register: a
// message plus an independent pending flag, so a unit can reserve its slot
// (blocking further dispatch) before the message it will eventually carry
// is known — the load path reserves at dispatch and writes only once its
// delay line drains.
type outState struct {
	msg     bus.Message
	pending bool
}

// outReg is one functional unit's output register (ALU, store unit, load
// unit): a single slot holding a result that is reserved at dispatch time
// and written once the result is actually known, then released once it
// wins CDB arbitration.
type outReg struct {
	cell *seq.Cell[outState]
}

func newOutReg() *outReg { return &outReg{cell: seq.NewCell(outState{})} }

// Pending reports whether this register currently holds (or has reserved)
// a slot awaiting CDB transmission.
func (o *outReg) Pending() bool { return o.cell.Get().pending }

// Reserve marks the register pending without yet supplying a message, used
// when a load dispatches but its value will only be known once the load
// delay line drains.
func (o *outReg) Reserve() {
	s := o.cell.Peek()
	s.pending = true
	o.cell.Set(s)
}

// Write stores msg and marks the register pending.
func (o *outReg) Write(msg bus.Message) {
	o.cell.Set(outState{msg: msg, pending: true})
}

// Read returns the staged message.
func (o *outReg) Read() bus.Message { return o.cell.Get().msg }

// Clear releases the register, used once its message has won CDB
// arbitration.
func (o *outReg) Clear() { o.cell.Set(outState{}) }

// Flush clears the register immediately, used on a misprediction squash.
func (o *outReg) Flush() { o.cell.Reset(outState{}) }

// Tick advances the register by one cycle.
func (o *outReg) Tick() { o.cell.Tick() }

// senderID names which output register a sendQueue slot refers to.
type senderID uint8

const (
	senderNone senderID = iota
	senderALU
	senderStore
	senderLoad
)

// sendQueueCapacity bounds the number of functional units that may be
// waiting for CDB arbitration at once. Each of the ALU, store and load
// output registers blocks further dispatch to its unit while pending, so
// at most one entry per unit (three in all) is queued at any time.
const sendQueueCapacity = 5

type sqState struct {
	buf        [sendQueueCapacity]senderID
	head, tail int
	len        int
}

// sendQueue is the FIFO of functional units waiting their turn to
// transmit onto the CDB, preserving production order as the fairness
// policy: a unit that produced a result earlier but lost CDB arbitration
// waits here rather than racing again from scratch next cycle.
type sendQueue struct {
	cell *seq.Cell[sqState]
}

func newSendQueue() *sendQueue { return &sendQueue{cell: seq.NewCell(sqState{})} }

func (q *sendQueue) empty() bool { return q.cell.Get().len == 0 }

func (q *sendQueue) push(id senderID) {
	s := q.cell.Peek()
	s.buf[s.tail] = id
	s.tail = (s.tail + 1) % sendQueueCapacity
	s.len++
	q.cell.Set(s)
}

func (q *sendQueue) front() senderID {
	s := q.cell.Get()
	return s.buf[s.head]
}

func (q *sendQueue) pop() {
	s := q.cell.Peek()
	s.head = (s.head + 1) % sendQueueCapacity
	s.len--
	q.cell.Set(s)
}

func (q *sendQueue) flush() { q.cell.Reset(sqState{}) }

func (q *sendQueue) tick() { q.cell.Tick() }

// getRegSrc resolves a source register through the renaming protocol:
// untagged registers read straight from the register file; a tagged
// register whose producing ROB slot has already written back forwards
// that value; otherwise the caller must wait on the tag.
func (p *Pipeline) getRegSrc(r uint8) (src uint8, val uint32) {
	tag := p.regs.Tag(r)
	if tag == 0 {
		return 0, p.regs.Read(r)
	}
	if p.rob.Ready(tag) {
		return 0, p.rob.Value(tag)
	}
	return tag, 0
}

// operands is the shared operand shape dispatched into either an rs.Entry
// or an slb.Entry.
type operands struct {
	val1, val2 uint32
	src1, src2 uint8
	imm        uint32
}

// buildOperands resolves inst's source operands according to its encoding
// format.
func (p *Pipeline) buildOperands(inst *insts.Instruction, fe iqueue.Entry) operands {
	var o operands
	switch inst.Format {
	case insts.FormatR, insts.FormatB:
		o.src1, o.val1 = p.getRegSrc(inst.Rs1)
		o.src2, o.val2 = p.getRegSrc(inst.Rs2)
	case insts.FormatU:
		if inst.Op == insts.LUI {
			o.val1 = 0
		} else {
			o.val1 = fe.PC
		}
		o.imm = inst.Imm
	case insts.FormatJ:
		o.val1 = fe.PC
		o.val2 = 4
	case insts.FormatI:
		o.src1, o.val1 = p.getRegSrc(inst.Rs1)
		o.imm = inst.Imm
	case insts.FormatS:
		o.src1, o.val1 = p.getRegSrc(inst.Rs1)
		o.src2, o.val2 = p.getRegSrc(inst.Rs2)
		o.imm = inst.Imm
	}
	return o
}

// hasDest reports whether inst's format writes an architectural
// destination register (every format but branches and stores).
func hasDest(f insts.Format) bool {
	return f != insts.FormatB && f != insts.FormatS && f != insts.FormatNone
}

// commit retires the ROB head if its result is ready. It returns the raw
// word of the committed instruction, or 0 if nothing committed this cycle.
func (p *Pipeline) commit() uint32 {
	entry, ok := p.rob.Commit()
	if !ok {
		return 0
	}

	switch {
	case entry.Op.IsBranch():
		var actualTaken bool
		switch entry.Op {
		case insts.BEQ:
			actualTaken = entry.Data == 0
		case insts.BNE:
			actualTaken = entry.Data != 0
		case insts.BLT, insts.BLTU:
			actualTaken = entry.Data == 1
		case insts.BGE, insts.BGEU:
			actualTaken = entry.Data == 0
		}
		mispredicted := actualTaken != entry.PredictedTaken
		p.pred.Feedback(entry.CurPC, actualTaken, mispredicted)
		if mispredicted {
			p.flushFlag = true
			p.jumpTo = entry.MispredictPC
		}

	case entry.Op.IsStore():
		s := p.storeCount.Peek()
		p.storeCount.Set(s - 1)
		p.storeDelay.Input(storeMsg{op: entry.Op, data: entry.Data, addr: entry.Addr})

	default:
		writeData := entry.Data
		if entry.Op == insts.JALR {
			p.pc.Set(entry.Data &^ 1)
			writeData = entry.NextPC
			p.stall.Set(false)
		}
		p.regs.Commit(entry.Dest, entry.SlotIdx, writeData)
	}

	return entry.Raw
}

// writeResult arbitrates the CDB: an already-traveling message is
// broadcast to RS/SLB/ROB, otherwise the longest-waiting functional unit
// in the send queue gets to transmit. Independently, it drains any
// delay line whose output has signaled.
func (p *Pipeline) writeResult() {
	if p.cdb.Traffic() {
		msg := p.cdb.Recv()
		p.rob.Update(msg.Tag, msg.Data, msg.Addr)
		p.rs.Update(msg.Tag, msg.Data)
		p.slb.Update(msg.Tag, msg.Data)
	} else if !p.sendQ.empty() {
		id := p.sendQ.front()
		p.sendQ.pop()
		switch id {
		case senderALU:
			p.cdb.Send(p.aluOut.Read())
			p.aluOut.Clear()
		case senderStore:
			p.cdb.Send(p.storeOut.Read())
			p.storeOut.Clear()
		case senderLoad:
			p.cdb.Send(p.loadOut.Read())
			p.loadOut.Clear()
		}
	}

	if p.storeDelay.Signaled() {
		out := p.storeDelay.Output()
		switch out.op {
		case insts.SB:
			p.ram.WriteByte(out.addr, uint8(out.data))
		case insts.SH:
			p.ram.WriteHalf(out.addr, uint16(out.data))
		case insts.SW:
			p.ram.WriteWord(out.addr, out.data)
		}
	}

	if p.loadDelay.Signaled() {
		out := p.loadDelay.Output()
		var data uint32
		switch out.op {
		case insts.LB:
			data = bits.SignExtend(uint32(p.ram.ReadByte(out.addr)), 8)
		case insts.LH:
			data = bits.SignExtend(uint32(p.ram.ReadHalf(out.addr)), 16)
		case insts.LW:
			data = p.ram.ReadWord(out.addr)
		case insts.LBU:
			data = uint32(p.ram.ReadByte(out.addr))
		case insts.LHU:
			data = uint32(p.ram.ReadHalf(out.addr))
		}
		p.loadOut.Write(bus.Message{Tag: out.robIdx, Data: data, Addr: out.addr})
		p.sendQ.push(senderLoad)
	}
}

// usesImmediate reports whether op's second ALU operand is the
// instruction's immediate rather than a second register value.
func usesImmediate(op insts.Op) bool {
	return op == insts.LUI || op == insts.AUIPC || op == insts.JALR || op.IsImmALU()
}

// isShift reports whether op's shift amount must be masked to 5 bits.
func isShift(op insts.Op) bool {
	switch op {
	case insts.SLL, insts.SRL, insts.SRA, insts.SLLI, insts.SRLI, insts.SRAI:
		return true
	default:
		return false
	}
}

// execute dispatches one ready RS entry to the ALU and, independently, one
// ready SLB head to address resolution and the appropriate delay line.
func (p *Pipeline) execute() {
	if !p.rs.Empty() {
		if entry, ok := p.rs.Execute(p.aluOut.Pending()); ok {
			opd1 := entry.Val1
			opd2 := entry.Val2
			if usesImmediate(entry.Op) {
				opd2 = entry.Imm
			}
			if isShift(entry.Op) {
				opd2 = bits.Slice(opd2, 0, 5)
			}
			res := p.alu.Calc(entry.Op, opd1, opd2)
			p.aluOut.Write(bus.Message{Tag: entry.RobIdx, Data: res})
			p.sendQ.push(senderALU)
		}
	}

	if !p.slb.Empty() {
		item, isLoad, ok := p.slb.Execute(p.storeOut.Pending(), p.loadOut.Pending(), p.storeCount.Get())
		if ok {
			addr := p.adder.Calc(item.Val1, item.Imm)
			if isLoad {
				p.loadDelay.Input(loadMsg{op: item.Op, robIdx: item.RobIdx, addr: addr})
				p.loadOut.Reserve()
			} else {
				s := p.storeCount.Peek()
				p.storeCount.Set(s + 1)
				p.storeOut.Write(bus.Message{Tag: item.RobIdx, Data: item.Val2, Addr: addr})
				p.sendQ.push(senderStore)
			}
		}
	}
}

// issue dispatches the head of the instruction queue into the RS or SLB
// and allocates its ROB slot, renaming its destination register to that
// slot.
func (p *Pipeline) issue() {
	if p.iq.Empty() || p.rob.Full() {
		return
	}
	fe := p.iq.Front()
	inst := p.dec.Decode(fe.Raw)

	isMem := inst.Op.IsLoad() || inst.Op.IsStore()
	if isMem && p.slb.Full() {
		return
	}
	if !isMem && p.rs.Full() {
		return
	}

	p.iq.Pop()
	if inst.Op == insts.NONE {
		return
	}

	robIdx := p.rob.Allocate()
	o := p.buildOperands(inst, fe)

	var dest uint8
	if hasDest(inst.Format) {
		dest = inst.Rd
		p.regs.Rename(inst.Rd, robIdx)
	}

	// In-cycle CDB forwarding: a message already traveling this cycle must
	// reach a freshly-issued entry before it is dispatched, since it was
	// built from register-file/ROB state that predates this broadcast.
	if p.cdb.Traffic() {
		msg := p.cdb.Recv()
		if o.src1 == msg.Tag {
			o.src1 = 0
			o.val1 = msg.Data
		}
		if o.src2 == msg.Tag {
			o.src2 = 0
			o.val2 = msg.Data
		}
	}

	p.rob.Issue(robIdx, rob.Entry{
		Raw:            fe.Raw,
		Op:             inst.Op,
		Countdown:      1,
		Dest:           dest,
		CurPC:          fe.PC,
		NextPC:         fe.NextPC,
		MispredictPC:   fe.MispredictPC,
		PredictedTaken: fe.PredictedTaken,
	})

	if isMem {
		p.slb.Issue(slb.Entry{
			RobIdx: robIdx, Op: inst.Op,
			Val1: o.val1, Val2: o.val2, Src1: o.src1, Src2: o.src2, Imm: o.imm,
		})
	} else {
		p.rs.Issue(rs.Entry{
			RobIdx: robIdx, Op: inst.Op,
			Val1: o.val1, Val2: o.val2, Src1: o.src1, Src2: o.src2, Imm: o.imm,
		})
	}
}

// fetch reads one instruction from RAM, consults the branch predictor,
// and pushes a PC-annotated entry onto the instruction queue.
func (p *Pipeline) fetch() {
	if p.iq.Full() || p.stall.Get() {
		return
	}

	curPC := p.pc.Get()
	word := p.ram.ReadWord(curPC)
	if word == insts.HaltWord {
		p.stall.Set(true)
	}

	pre := p.dec.Decode(word)
	if pre.Op == insts.JALR {
		p.stall.Set(true)
	}

	var taken bool
	switch pre.Format {
	case insts.FormatB:
		taken = p.pred.Predict(curPC)
	case insts.FormatJ:
		taken = true
	}

	nextPC := p.adder.Calc(curPC, branchDelta(taken, pre.Imm))
	mispredictPC := p.adder.Calc(curPC, branchDelta(!taken, pre.Imm))

	p.pc.Set(nextPC)
	p.iq.Push(iqueue.Entry{
		Raw: word, PC: curPC, NextPC: nextPC, MispredictPC: mispredictPC,
		PredictedTaken: taken,
	})
}

// branchDelta returns imm if taken, else the untaken-fallthrough delta of
// 4 bytes.
func branchDelta(taken bool, imm uint32) uint32 {
	if taken {
		return imm
	}
	return 4
}

// tick performs the end-of-cycle synchronous update: a pending
// misprediction squash first, then next->current on every sequential
// cell.
func (p *Pipeline) tick() {
	if p.flushFlag {
		p.pc.Set(p.jumpTo)
		p.storeCount.Set(0)
		p.rs.Flush()
		p.slb.Flush()
		p.rob.Flush()
		p.regs.Flush()
		p.iq.Flush()
		p.sendQ.flush()
		p.cdb.Flush()
		p.aluOut.Flush()
		p.storeOut.Flush()
		p.loadOut.Flush()
		// The store delay line is deliberately NOT flushed: committed
		// stores must keep draining to RAM even through a squash.
		p.loadDelay.Flush()
		p.stall.Set(false)
		p.flushFlag = false
	}

	p.storeCount.Tick()
	p.stall.Tick()
	p.pc.Tick()
	p.regs.Tick()
	p.iq.Tick()
	p.sendQ.tick()
	p.rs.Tick()
	p.slb.Tick()
	p.rob.Tick()
	p.cdb.Tick()
	p.aluOut.Tick()
	p.storeOut.Tick()
	p.loadOut.Tick()
	p.loadDelay.Tick()
	p.storeDelay.Tick()

	p.cycle++
}
