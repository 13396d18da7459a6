package loader_test

import (
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32tomasulo/loader"
	"github.com/sarchlab/rv32tomasulo/memory"
)

func TestLoader(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "loader Suite")
}

var _ = Describe("Load", func() {
	var ram *memory.RAM

	BeforeEach(func() {
		ram = memory.New(memory.DefaultSize)
	})

	It("loads bytes little-endian starting at the given address", func() {
		err := loader.Load(strings.NewReader("@0 13 05 a0 00"), ram)
		Expect(err).NotTo(HaveOccurred())
		Expect(ram.ReadWord(0)).To(Equal(uint32(0x00a00513)))
	})

	It("treats newlines as ordinary whitespace between tokens", func() {
		err := loader.Load(strings.NewReader("@0\n13 05\na0 00\n"), ram)
		Expect(err).NotTo(HaveOccurred())
		Expect(ram.ReadWord(0)).To(Equal(uint32(0x00a00513)))
	})

	It("is case-insensitive in the address directive", func() {
		err := loader.Load(strings.NewReader("@1AbC ab"), ram)
		Expect(err).NotTo(HaveOccurred())
		Expect(ram.ReadByte(0x1ABC)).To(Equal(uint8(0xAB)))
	})

	It("advances the address by one byte per token", func() {
		err := loader.Load(strings.NewReader("@10 11 22 33"), ram)
		Expect(err).NotTo(HaveOccurred())
		Expect(ram.ReadByte(0x10)).To(Equal(uint8(0x11)))
		Expect(ram.ReadByte(0x11)).To(Equal(uint8(0x22)))
		Expect(ram.ReadByte(0x12)).To(Equal(uint8(0x33)))
	})

	It("rejects a malformed address directive", func() {
		err := loader.Load(strings.NewReader("@zzzz 00"), ram)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a malformed byte token", func() {
		err := loader.Load(strings.NewReader("@0 gg"), ram)
		Expect(err).To(HaveOccurred())
	})

	It("rejects an out-of-bounds address", func() {
		err := loader.Load(strings.NewReader("@ffffffff 00"), ram)
		Expect(err).To(HaveOccurred())
	})
})
