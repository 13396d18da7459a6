// Package main provides the entry point for rv32sim.
// rv32sim is a cycle-accurate, out-of-order RV32I simulator.
//
// For the full CLI, use: go run ./cmd/rv32sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("rv32sim - RV32I out-of-order simulator")
	fmt.Println("Built on a Tomasulo-style speculative pipeline")
	fmt.Println("")
	fmt.Println("Usage: rv32sim [options] < program.hex")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -v, --verbose    log pipeline diagnostics to stderr")
	fmt.Println("  --config         path to a sizing configuration JSON file")
	fmt.Println("  --max-cycles     cycle budget before giving up")
	fmt.Println("  --stats          log predictor/cycle statistics on halt")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rv32sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rv32sim' instead.")
	}
}
