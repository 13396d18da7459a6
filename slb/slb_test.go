package slb_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32tomasulo/insts"
	"github.com/sarchlab/rv32tomasulo/slb"
)

func TestSLB(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "slb Suite")
}

var _ = Describe("SLB", func() {
	var b *slb.SLB

	BeforeEach(func() {
		b = slb.New()
	})

	It("starts empty", func() {
		Expect(b.Empty()).To(BeTrue())
	})

	It("fires a ready store when the store output is free", func() {
		b.Issue(slb.Entry{RobIdx: 1, Op: insts.SB, Val1: 0x1000, Val2: 0xAB})
		b.Tick()
		e, isLoad, ok := b.Execute(false, false, 0)
		Expect(ok).To(BeTrue())
		Expect(isLoad).To(BeFalse())
		Expect(e.Val2).To(Equal(uint32(0xAB)))
	})

	It("does not fire a load while a prior store is pending", func() {
		b.Issue(slb.Entry{RobIdx: 1, Op: insts.LB, Val1: 0x1000})
		b.Tick()
		_, _, ok := b.Execute(false, false, 1)
		Expect(ok).To(BeFalse())
	})

	It("fires a load once no store is pending and the load output is free", func() {
		b.Issue(slb.Entry{RobIdx: 1, Op: insts.LB, Val1: 0x1000})
		b.Tick()
		_, isLoad, ok := b.Execute(false, false, 0)
		Expect(ok).To(BeTrue())
		Expect(isLoad).To(BeTrue())
	})

	It("does not fire an entry that is not ready", func() {
		b.Issue(slb.Entry{RobIdx: 1, Op: insts.SW, Src2: 4})
		b.Tick()
		_, _, ok := b.Execute(false, false, 0)
		Expect(ok).To(BeFalse())
	})

	It("applies a CDB broadcast to the head entry", func() {
		b.Issue(slb.Entry{RobIdx: 1, Op: insts.SW, Src1: 3, Val2: 7})
		b.Tick()
		b.Update(3, 0x2000)
		b.Tick()
		e, _, ok := b.Execute(false, false, 0)
		Expect(ok).To(BeTrue())
		Expect(e.Val1).To(Equal(uint32(0x2000)))
	})

	It("Flush empties the buffer", func() {
		b.Issue(slb.Entry{RobIdx: 1, Op: insts.SW})
		b.Tick()
		b.Flush()
		Expect(b.Empty()).To(BeTrue())
	})

	It("preserves FIFO order across issue and execute", func() {
		b.Issue(slb.Entry{RobIdx: 1, Op: insts.SB, Val1: 0x1000, Val2: 1})
		b.Tick()
		b.Issue(slb.Entry{RobIdx: 2, Op: insts.SB, Val1: 0x1001, Val2: 2})
		b.Tick()
		first, _, _ := b.Execute(false, false, 0)
		b.Tick()
		second, _, _ := b.Execute(false, false, 0)
		Expect(first.RobIdx).To(Equal(uint8(1)))
		Expect(second.RobIdx).To(Equal(uint8(2)))
	})
})
