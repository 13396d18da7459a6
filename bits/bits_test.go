package bits_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32tomasulo/bits"
)

func TestBits(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "bits Suite")
}

var _ = Describe("Slice", func() {
	It("extracts a low-bit-inclusive, high-bit-exclusive range", func() {
		Expect(bits.Slice(0xF0, 4, 8)).To(Equal(uint32(0xF)))
		Expect(bits.Slice(0x0FF00513, 0, 7)).To(Equal(uint32(0x13)))
	})

	It("handles a full-width slice ending at bit 32", func() {
		Expect(bits.Slice(0xFFFFFFFF, 20, 32)).To(Equal(uint32(0xFFF)))
	})
})

var _ = Describe("SignExtend", func() {
	It("leaves a positive value untouched", func() {
		Expect(bits.SignExtend(0x7FF, 12)).To(Equal(uint32(0x7FF)))
	})

	It("sign-extends a negative 12-bit immediate", func() {
		Expect(bits.SignExtend(0xFFF, 12)).To(Equal(uint32(0xFFFFFFFF)))
	})

	It("sign-extends a 13-bit branch immediate", func() {
		Expect(bits.SignExtend(0x1000, 13)).To(Equal(uint32(0xFFFFF000)))
	})

	It("is a no-op at width 32", func() {
		Expect(bits.SignExtend(0x80000000, 32)).To(Equal(uint32(0x80000000)))
	})
})
