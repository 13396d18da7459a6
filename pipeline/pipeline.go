// Package pipeline implements the five-stage out-of-order control loop —
// commit, write-result, execute, issue, fetch — that drives the
// reservation station, store/load buffer, reorder buffer, register
// renaming, branch speculation and rollback.
package pipeline

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rv32tomasulo/alu"
	"github.com/sarchlab/rv32tomasulo/bus"
	"github.com/sarchlab/rv32tomasulo/delay"
	"github.com/sarchlab/rv32tomasulo/insts"
	"github.com/sarchlab/rv32tomasulo/iqueue"
	"github.com/sarchlab/rv32tomasulo/memory"
	"github.com/sarchlab/rv32tomasulo/predictor"
	"github.com/sarchlab/rv32tomasulo/regfile"
	"github.com/sarchlab/rv32tomasulo/rob"
	"github.com/sarchlab/rv32tomasulo/rs"
	"github.com/sarchlab/rv32tomasulo/seq"
	"github.com/sarchlab/rv32tomasulo/slb"
)

// LoadLatency and StoreLatency are the number of cycles a load or store
// spends in its delay line before the result (or RAM mutation) becomes
// visible.
const (
	LoadLatency  = 3
	StoreLatency = 3
)

// loadMsg travels down the load delay line: which op (to shape sign/zero
// extension), which ROB slot is waiting, and the resolved address.
type loadMsg struct {
	op     insts.Op
	robIdx uint8
	addr   uint32
}

// storeMsg travels down the store delay line: the resolved address and
// the data to write, shaped by op's width.
type storeMsg struct {
	op   insts.Op
	data uint32
	addr uint32
}

// Pipeline is the out-of-order execution engine.
type Pipeline struct {
	logger logrus.FieldLogger

	pc    *seq.Cell[uint32]
	regs  *regfile.File
	rob   *rob.ROB
	rs    *rs.RS
	slb   *slb.SLB
	iq    *iqueue.Queue
	cdb   *bus.CDB
	pred  *predictor.Predictor
	ram   *memory.RAM
	dec   *insts.Decoder
	alu   alu.ALU
	adder alu.Adder

	aluOut   *outReg
	storeOut *outReg
	loadOut  *outReg
	sendQ    *sendQueue

	loadDelay  *delay.Line[loadMsg]
	storeDelay *delay.Line[storeMsg]

	stall      *seq.Cell[bool]
	storeCount *seq.Cell[int]

	flushFlag bool
	jumpTo    uint32

	halted  bool
	cycle   uint64
	retired uint64

	traceEnabled bool
}

// Option configures a Pipeline at construction time.
type Option func(*Pipeline)

// WithLogger overrides the default logrus logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithPredictor overrides the default branch predictor configuration.
func WithPredictor(cfg predictor.Config) Option {
	return func(p *Pipeline) { p.pred = predictor.New(cfg) }
}

// New creates a Pipeline bound to ram, with PC reset to 0 and every
// structure empty.
func New(ram *memory.RAM, opts ...Option) *Pipeline {
	p := &Pipeline{
		logger: logrus.StandardLogger(),

		pc:   seq.NewCell(uint32(0)),
		regs: regfile.New(),
		rob:  rob.New(),
		rs:   rs.New(),
		slb:  slb.New(),
		iq:   iqueue.New(),
		cdb:  bus.New(),
		pred: predictor.New(predictor.Default()),
		ram:  ram,
		dec:  insts.NewDecoder(),

		aluOut:   newOutReg(),
		storeOut: newOutReg(),
		loadOut:  newOutReg(),
		sendQ:    newSendQueue(),

		loadDelay:  delay.New[loadMsg](LoadLatency),
		storeDelay: delay.New[storeMsg](StoreLatency),

		stall:      seq.NewCell(false),
		storeCount: seq.NewCell(0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Halted reports whether the simulation has committed a HALT instruction.
func (p *Pipeline) Halted() bool {
	return p.halted
}

// Cycle returns the number of cycles executed so far.
func (p *Pipeline) Cycle() uint64 {
	return p.cycle
}

// Retired returns the number of instructions committed so far. HALT counts
// as one of them: the retired counter increments for any nonzero committed
// word before the HALT-word check runs.
func (p *Pipeline) Retired() uint64 {
	return p.retired
}

// Result returns the low 8 bits of architectural register 10, the value
// the simulator prints to standard output on termination.
func (p *Pipeline) Result() uint8 {
	return uint8(p.regs.Read(10) & 0xFF)
}

// PredictorStats exposes the branch predictor's accuracy counters for
// diagnostics.
func (p *Pipeline) PredictorStats() predictor.Stats {
	return p.pred.Stats()
}

// PC returns the current program counter, mainly for tests and tracing.
func (p *Pipeline) PC() uint32 {
	return p.pc.Get()
}

// Trace enables or disables per-cycle instrumentation. When enabled, Step
// logs the program counter, retired count and committed instruction word
// for every cycle at Debug level.
func (p *Pipeline) Trace(enabled bool) {
	p.traceEnabled = enabled
}

// Step runs one cycle: commit, write-result, execute, issue, fetch, then
// (unless a HALT just committed) tick. It returns the raw word of the
// instruction committed this cycle, or 0 if nothing committed. A committed
// HALT skips the tick entirely, so the cycle it commits in is never
// advanced past.
func (p *Pipeline) Step() uint32 {
	committedRaw := p.commit()
	p.writeResult()
	p.execute()
	p.issue()
	p.fetch()

	if committedRaw != 0 {
		p.retired++
	}
	halting := committedRaw == insts.HaltWord
	if p.traceEnabled {
		p.traceCycle(committedRaw, halting)
	}
	if halting {
		p.halted = true
		return committedRaw
	}
	p.tick()
	return committedRaw
}

// traceCycle emits one Debug-level log line describing this cycle's
// commit result and current PC, gated by Trace(true).
func (p *Pipeline) traceCycle(committedRaw uint32, halting bool) {
	p.logger.WithFields(logrus.Fields{
		"cycle":     p.cycle,
		"pc":        p.pc.Get(),
		"retired":   p.retired,
		"committed": fmt.Sprintf("%#08x", committedRaw),
		"halting":   halting,
	}).Debug("cycle")
}

// Run steps the pipeline until it halts or maxCycles is exceeded. It
// returns false if the cycle budget was exhausted without a HALT commit.
func (p *Pipeline) Run(maxCycles uint64) bool {
	for p.cycle < maxCycles {
		p.Step()
		if p.halted {
			return true
		}
	}
	return false
}
