// Package delay implements the fixed-depth shift register used to emulate
// multi-cycle load and store latency without a discrete-event queue.
package delay

import "github.com/sarchlab/rv32tomasulo/seq"

// DefaultDepth is the load/store delay-line latency: 3 cycles.
const DefaultDepth = 3

type slot[T any] struct {
	data    T
	pending bool
}

// Line is an N-stage delay line: a value placed in at Input() emerges from
// Output() exactly depth cycles later.
type Line[T any] struct {
	stages []*seq.Cell[slot[T]]
}

// New creates a delay line with the given depth (number of cycles of
// latency).
func New[T any](depth int) *Line[T] {
	l := &Line[T]{stages: make([]*seq.Cell[slot[T]], depth)}
	for i := range l.stages {
		l.stages[i] = seq.NewCell(slot[T]{})
	}
	return l
}

// Input places data into the head of the line; it will surface at Output
// after depth Tick calls.
func (l *Line[T]) Input(data T) {
	l.stages[0].Set(slot[T]{data: data, pending: true})
}

// Signaled reports whether the tail stage holds a value ready to drain.
func (l *Line[T]) Signaled() bool {
	return l.stages[len(l.stages)-1].Get().pending
}

// Output returns the tail stage's value. Callers should check Signaled
// first; the producer clears the line by simply not calling Input again.
func (l *Line[T]) Output() T {
	return l.stages[len(l.stages)-1].Get().data
}

// Tick advances every value one stage down the line.
func (l *Line[T]) Tick() {
	for i := 0; i < len(l.stages)-1; i++ {
		l.stages[i+1].Set(l.stages[i].Get())
	}
	for _, s := range l.stages {
		s.Tick()
	}
	l.stages[0].Set(slot[T]{})
}

// Flush drains the line immediately, discarding all in-flight values.
func (l *Line[T]) Flush() {
	for _, s := range l.stages {
		s.Reset(slot[T]{})
	}
}
