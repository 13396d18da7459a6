package pipeline_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32tomasulo/memory"
	"github.com/sarchlab/rv32tomasulo/pipeline"
)

func TestPipeline(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "pipeline Suite")
}

func newRAM(words map[uint32]uint32) *memory.RAM {
	ram := memory.New(memory.DefaultSize)
	for addr, w := range words {
		ram.WriteWord(addr, w)
	}
	return ram
}

const maxCycles = 10_000

var _ = Describe("Pipeline end-to-end", func() {
	It("commits a single ADDI and halts, printing the destination register", func() {
		ram := newRAM(map[uint32]uint32{
			0: addi(10, 0, 10),
			4: halt,
		})
		p := pipeline.New(ram)
		Expect(p.Run(maxCycles)).To(BeTrue())
		Expect(p.Result()).To(Equal(uint8(10)))
	})

	It("prints 0 when register 10 is never written", func() {
		ram := newRAM(map[uint32]uint32{
			0:  addi(1, 0, 5),
			4:  addi(2, 0, 6),
			8:  add(2, 1, 2),
			12: addi(17, 0, 0xFF),
			16: halt,
		})
		p := pipeline.New(ram)
		Expect(p.Run(maxCycles)).To(BeTrue())
		Expect(p.Result()).To(Equal(uint8(0)))
	})

	It("writes an arbitrary value into x10 before halting", func() {
		ram := newRAM(map[uint32]uint32{
			0: addi(10, 0, 42),
			4: halt,
		})
		p := pipeline.New(ram)
		Expect(p.Run(maxCycles)).To(BeTrue())
		Expect(p.Result()).To(Equal(uint8(42)))
	})

	It("recovers from a branch misprediction without corrupting architectural state", func() {
		// The predictor starts weakly-taken, so this BNE (whose condition
		// is false) is mispredicted taken on first encounter. Squash
		// recovery must discard the speculative path's write to x10 (99)
		// and commit only the correct fall-through path's write (77).
		ram := newRAM(map[uint32]uint32{
			0:  addi(1, 0, 0),
			4:  bne(1, 0, 12), // not taken; predicted taken; target = 4+12 = 16
			8:  addi(10, 0, 77),
			12: halt,
			16: addi(10, 0, 99), // speculative wrong path, must be squashed
			20: halt,
		})
		p := pipeline.New(ram)
		Expect(p.Run(maxCycles)).To(BeTrue())
		Expect(p.Result()).To(Equal(uint8(77)))
	})

	It("round-trips a stored byte back through a load", func() {
		ram := newRAM(map[uint32]uint32{
			0:  lui(2, 1), // x2 = 0x1000
			4:  addi(3, 0, 0xAB),
			8:  sb(3, 2, 0),
			12: lbu(10, 2, 0),
			16: halt,
		})
		p := pipeline.New(ram)
		Expect(p.Run(maxCycles)).To(BeTrue())
		Expect(p.Result()).To(Equal(uint8(0xAB)))
	})

	It("sums 1..10 in a loop", func() {
		ram := newRAM(map[uint32]uint32{
			0:  addi(10, 0, 0),  // sum = 0
			4:  addi(1, 0, 1),   // i = 1
			8:  addi(2, 0, 11),  // limit = 11
			12: add(10, 10, 1),  // loop: sum += i
			16: addi(1, 1, 1),   // i++
			20: bne(1, 2, -8),   // if i != limit, goto loop (pc 12)
			24: halt,
		})
		p := pipeline.New(ram)
		Expect(p.Run(maxCycles)).To(BeTrue())
		Expect(p.Result()).To(Equal(uint8(55)))
	})

	It("reports a predictor accuracy of 1.0 when no branch ever executes", func() {
		ram := newRAM(map[uint32]uint32{
			0: addi(10, 0, 1),
			4: halt,
		})
		p := pipeline.New(ram)
		Expect(p.Run(maxCycles)).To(BeTrue())
		Expect(p.PredictorStats().Accuracy()).To(Equal(1.0))
	})

	It("counts HALT itself as a retired instruction", func() {
		ram := newRAM(map[uint32]uint32{
			0: addi(10, 0, 1),
			4: halt,
		})
		p := pipeline.New(ram)
		Expect(p.Run(maxCycles)).To(BeTrue())
		Expect(p.Retired()).To(Equal(uint64(2)))
	})

	It("runs identically whether or not tracing is enabled", func() {
		ram := newRAM(map[uint32]uint32{
			0: addi(10, 0, 42),
			4: halt,
		})
		p := pipeline.New(ram)
		p.Trace(true)
		Expect(p.Run(maxCycles)).To(BeTrue())
		Expect(p.Result()).To(Equal(uint8(42)))
		Expect(p.Retired()).To(Equal(uint64(2)))
	})
})
