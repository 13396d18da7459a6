// Package memory provides the simulator's flat, byte-addressable RAM.
//
// RAM has zero access latency from the pipeline's point of view: the
// multi-cycle behavior of loads and stores is modelled entirely by the
// pipeline's delay lines, not by this package.
package memory

import "fmt"

// DefaultSize is the minimum RAM size the simulator allocates.
const DefaultSize = 500_000

// RAM is a flat byte array with byte/halfword/word read and write.
type RAM struct {
	bytes []byte
}

// New creates a RAM of the given size in bytes.
func New(size int) *RAM {
	if size < DefaultSize {
		size = DefaultSize
	}
	return &RAM{bytes: make([]byte, size)}
}

func (m *RAM) check(addr uint32, width uint32) {
	if uint64(addr)+uint64(width) > uint64(len(m.bytes)) {
		panic(fmt.Sprintf("memory: access [0x%x, 0x%x) out of bounds (size 0x%x)",
			addr, uint64(addr)+uint64(width), len(m.bytes)))
	}
}

// ReadByte reads a single byte at addr.
func (m *RAM) ReadByte(addr uint32) uint8 {
	m.check(addr, 1)
	return m.bytes[addr]
}

// ReadHalf reads a little-endian 16-bit halfword at addr.
func (m *RAM) ReadHalf(addr uint32) uint16 {
	m.check(addr, 2)
	return uint16(m.bytes[addr]) | uint16(m.bytes[addr+1])<<8
}

// ReadWord reads a little-endian 32-bit word at addr.
func (m *RAM) ReadWord(addr uint32) uint32 {
	m.check(addr, 4)
	return uint32(m.bytes[addr]) |
		uint32(m.bytes[addr+1])<<8 |
		uint32(m.bytes[addr+2])<<16 |
		uint32(m.bytes[addr+3])<<24
}

// WriteByte writes a single byte at addr.
func (m *RAM) WriteByte(addr uint32, data uint8) {
	m.check(addr, 1)
	m.bytes[addr] = data
}

// WriteHalf writes a little-endian 16-bit halfword at addr.
func (m *RAM) WriteHalf(addr uint32, data uint16) {
	m.check(addr, 2)
	m.bytes[addr] = byte(data)
	m.bytes[addr+1] = byte(data >> 8)
}

// WriteWord writes a little-endian 32-bit word at addr.
func (m *RAM) WriteWord(addr uint32, data uint32) {
	m.check(addr, 4)
	m.bytes[addr] = byte(data)
	m.bytes[addr+1] = byte(data >> 8)
	m.bytes[addr+2] = byte(data >> 16)
	m.bytes[addr+3] = byte(data >> 24)
}

// Size returns the RAM's capacity in bytes.
func (m *RAM) Size() int {
	return len(m.bytes)
}
