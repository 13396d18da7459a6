// Package loader parses the simulator's whitespace-separated hex program
// format into a RAM image.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/rv32tomasulo/memory"
)

// Load reads whitespace-separated tokens from r into ram. A token beginning
// with '@' (case-insensitive) sets the next write address from its
// remaining hex digits; any other token is one hex byte, written at the
// current address, which then advances by one. Field splitting mirrors
// C++'s `std::cin >> token`: newlines are just more whitespace, so address
// directives and data bytes may freely share or split across lines.
func Load(r io.Reader, ram *memory.RAM) error {
	addr := uint32(0)
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		tok := scanner.Text()
		if tok == "" {
			continue
		}

		if tok[0] == '@' {
			v, err := strconv.ParseUint(strings.ToLower(tok[1:]), 16, 32)
			if err != nil {
				return fmt.Errorf("loader: malformed address directive %q: %w", tok, err)
			}
			addr = uint32(v)
			continue
		}

		v, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return fmt.Errorf("loader: malformed byte token %q: %w", tok, err)
		}
		if int(addr) >= ram.Size() {
			return fmt.Errorf("loader: address 0x%x is out of bounds for a %d-byte RAM", addr, ram.Size())
		}
		ram.WriteByte(addr, uint8(v))
		addr++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("loader: failed to read program: %w", err)
	}
	return nil
}
