package delay_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32tomasulo/delay"
)

func TestDelay(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "delay Suite")
}

var _ = Describe("Line", func() {
	It("surfaces a value exactly depth cycles after Input", func() {
		l := delay.New[int](3)
		l.Input(42)

		for i := 0; i < 2; i++ {
			l.Tick()
			Expect(l.Signaled()).To(BeFalse(), "cycle %d", i)
		}
		l.Tick()
		Expect(l.Signaled()).To(BeTrue())
		Expect(l.Output()).To(Equal(42))
	})

	It("drains to not-signaled one cycle after the value is consumed", func() {
		l := delay.New[int](1)
		l.Input(7)
		l.Tick()
		Expect(l.Signaled()).To(BeTrue())
		l.Tick()
		Expect(l.Signaled()).To(BeFalse())
	})

	It("Flush discards any in-flight value immediately", func() {
		l := delay.New[int](3)
		l.Input(1)
		l.Tick()
		l.Tick()
		l.Flush()
		l.Tick()
		Expect(l.Signaled()).To(BeFalse())
	})
})
