package regfile_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32tomasulo/regfile"
)

func TestRegfile(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "regfile Suite")
}

var _ = Describe("File", func() {
	var f *regfile.File

	BeforeEach(func() {
		f = regfile.New()
	})

	It("reads register 0 as always zero and discards writes to it", func() {
		f.Rename(0, 5)
		f.Tick()
		Expect(f.Tag(0)).To(Equal(uint8(0)))
		f.Commit(0, 0, 99)
		f.Tick()
		Expect(f.Read(0)).To(Equal(uint32(0)))
	})

	It("does not expose a rename until ticked", func() {
		f.Rename(3, 7)
		Expect(f.Tag(3)).To(Equal(uint8(0)))
		f.Tick()
		Expect(f.Tag(3)).To(Equal(uint8(7)))
	})

	It("commit writes the value and clears a matching tag", func() {
		f.Rename(3, 7)
		f.Tick()
		f.Commit(3, 7, 42)
		f.Tick()
		Expect(f.Read(3)).To(Equal(uint32(42)))
		Expect(f.Tag(3)).To(Equal(uint8(0)))
	})

	It("a stale commit leaves a newer rename tag intact", func() {
		f.Rename(3, 7)
		f.Tick()
		f.Rename(3, 9)
		f.Tick()
		f.Commit(3, 7, 100)
		f.Tick()
		Expect(f.Tag(3)).To(Equal(uint8(9)))
	})

	It("Flush clears tags but preserves committed values", func() {
		f.Rename(3, 7)
		f.Tick()
		f.Commit(3, 7, 42)
		f.Tick()
		f.Rename(4, 2)
		f.Tick()
		f.Flush()
		Expect(f.Tag(4)).To(Equal(uint8(0)))
		Expect(f.Read(3)).To(Equal(uint32(42)))
	})
})
