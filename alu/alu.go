// Package alu implements the pure arithmetic/logic core of the simulator:
// a single (opcode, operand, operand) -> result function, with no state of
// its own, plus a dedicated effective-address adder.
package alu

import "github.com/sarchlab/rv32tomasulo/insts"

// Adder computes a sum. It is split out from ALU because the pipeline uses
// a dedicated adder for effective-address calculation in the SLB's execute
// stage, independent of whatever the ALU is doing for RS entries that cycle.
type Adder struct{}

// Calc returns opd1 + opd2.
func (Adder) Calc(opd1, opd2 uint32) uint32 {
	return opd1 + opd2
}

// ALU is a pure function object: Calc has no side effects and depends only
// on its arguments.
type ALU struct{}

// Calc evaluates op on the given 32-bit operands. Shift operations expect
// the caller to have already masked opd2 to its low 5 bits; Calc does not
// re-mask so that callers preparing a BLT/BGE flag or a BEQ/BNE
// subtraction result can reuse the same entry point uniformly.
//
// BEQ/BNE reuse the SUB path: the result is the raw subtraction, and the
// caller (the commit stage) must compare it against zero, not treat it as
// a boolean. BLT/BLTU/BGE/BGEU and SLT/SLTI/SLTU/SLTIU reuse a single less-than
// comparison, signed for the non-U forms and unsigned for the U forms; BGE
// and BGEU invert the result at the commit stage, not here.
//
// LUI, AUIPC, JAL and JALR also reuse the ADD path: the issue stage
// prepares their operands so a plain addition produces the right result
// (0+imm for LUI, pc+imm for AUIPC, pc+4 for JAL's link value, rs1+imm for
// JALR's target before commit masks bit 0).
func (ALU) Calc(op insts.Op, opd1, opd2 uint32) uint32 {
	switch op {
	case insts.NONE:
		return 0
	case insts.ADD, insts.ADDI, insts.LUI, insts.AUIPC, insts.JAL, insts.JALR:
		return opd1 + opd2
	case insts.SUB, insts.BEQ, insts.BNE:
		return opd1 - opd2
	case insts.AND, insts.ANDI:
		return opd1 & opd2
	case insts.OR, insts.ORI:
		return opd1 | opd2
	case insts.XOR, insts.XORI:
		return opd1 ^ opd2
	case insts.SLL, insts.SLLI:
		return opd1 << opd2
	case insts.SRL, insts.SRLI:
		return opd1 >> opd2
	case insts.SRA, insts.SRAI:
		return uint32(int32(opd1) >> opd2)
	case insts.SLT, insts.SLTI, insts.BLT, insts.BGE:
		if int32(opd1) < int32(opd2) {
			return 1
		}
		return 0
	case insts.SLTU, insts.SLTIU, insts.BLTU, insts.BGEU:
		if opd1 < opd2 {
			return 1
		}
		return 0
	default:
		return 0xFFFFFFFF
	}
}
