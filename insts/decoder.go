package insts

import "github.com/sarchlab/rv32tomasulo/bits"

// Major RV32I opcodes (bits [6:0] of the instruction word).
const (
	opcLUI    = 0x37
	opcAUIPC  = 0x17
	opcJAL    = 0x6F
	opcJALR   = 0x67
	opcBranch = 0x63
	opcLoad   = 0x03
	opcStore  = 0x23
	opcImmALU = 0x13
	opcRegALU = 0x33
)

// Decoder maps a 32-bit instruction word to a decoded Instruction record.
// It is a pure function object: it holds no state across calls.
type Decoder struct{}

// NewDecoder creates a new RV32I instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit instruction word. The HALT pattern decodes to
// HALT regardless of its fields; any opcode outside the 9 recognized major
// opcodes decodes to NONE and occupies no pipeline resources.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{Raw: word}

	if word == HaltWord {
		inst.Op = HALT
		inst.Format = FormatI
		return inst
	}

	opcode := bits.Slice(word, 0, 7)
	switch opcode {
	case opcLUI:
		d.decodeU(word, inst, LUI)
	case opcAUIPC:
		d.decodeU(word, inst, AUIPC)
	case opcJAL:
		d.decodeJ(word, inst)
	case opcJALR:
		d.decodeJALR(word, inst)
	case opcBranch:
		d.decodeBranch(word, inst)
	case opcLoad:
		d.decodeLoad(word, inst)
	case opcStore:
		d.decodeStore(word, inst)
	case opcImmALU:
		d.decodeImmALU(word, inst)
	case opcRegALU:
		d.decodeRegALU(word, inst)
	default:
		inst.Op = NONE
		inst.Format = FormatNone
	}
	return inst
}

func rd(word uint32) uint8  { return uint8(bits.Slice(word, 7, 12)) }
func rs1(word uint32) uint8 { return uint8(bits.Slice(word, 15, 20)) }
func rs2(word uint32) uint8 { return uint8(bits.Slice(word, 20, 25)) }
func funct3(word uint32) uint32 { return bits.Slice(word, 12, 15) }
func funct7(word uint32) uint32 { return bits.Slice(word, 25, 32) }

func immI(word uint32) uint32 {
	return bits.SignExtend(bits.Slice(word, 20, 32), 12)
}

func immS(word uint32) uint32 {
	imm := bits.Slice(word, 7, 12) | bits.Slice(word, 25, 32)<<5
	return bits.SignExtend(imm, 12)
}

func immB(word uint32) uint32 {
	imm := bits.Slice(word, 8, 12)<<1 |
		bits.Slice(word, 25, 31)<<5 |
		bits.Slice(word, 7, 8)<<11 |
		bits.Slice(word, 31, 32)<<12
	return bits.SignExtend(imm, 13)
}

func immU(word uint32) uint32 {
	return bits.Slice(word, 12, 32) << 12
}

func immJ(word uint32) uint32 {
	imm := bits.Slice(word, 21, 31)<<1 |
		bits.Slice(word, 20, 21)<<11 |
		bits.Slice(word, 12, 20)<<12 |
		bits.Slice(word, 31, 32)<<20
	return bits.SignExtend(imm, 21)
}

// decodeU decodes LUI/AUIPC: rd, imm (U-format).
func (d *Decoder) decodeU(word uint32, inst *Instruction, op Op) {
	inst.Format = FormatU
	inst.Op = op
	inst.Rd = rd(word)
	inst.Imm = immU(word)
}

// decodeJ decodes JAL: rd, imm (J-format).
func (d *Decoder) decodeJ(word uint32, inst *Instruction) {
	inst.Format = FormatJ
	inst.Op = JAL
	inst.Rd = rd(word)
	inst.Imm = immJ(word)
}

// decodeJALR decodes JALR: rd, rs1, imm (I-format).
func (d *Decoder) decodeJALR(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Op = JALR
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Imm = immI(word)
}

// decodeBranch decodes the six B-format conditional branches.
func (d *Decoder) decodeBranch(word uint32, inst *Instruction) {
	inst.Format = FormatB
	inst.Rs1 = rs1(word)
	inst.Rs2 = rs2(word)
	inst.Imm = immB(word)
	switch funct3(word) {
	case 0x0:
		inst.Op = BEQ
	case 0x1:
		inst.Op = BNE
	case 0x4:
		inst.Op = BLT
	case 0x5:
		inst.Op = BGE
	case 0x6:
		inst.Op = BLTU
	case 0x7:
		inst.Op = BGEU
	default:
		inst.Op = NONE
	}
}

// decodeLoad decodes the five I-format loads.
func (d *Decoder) decodeLoad(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Imm = immI(word)
	switch funct3(word) {
	case 0x0:
		inst.Op = LB
	case 0x1:
		inst.Op = LH
	case 0x2:
		inst.Op = LW
	case 0x4:
		inst.Op = LBU
	case 0x5:
		inst.Op = LHU
	default:
		inst.Op = NONE
	}
}

// decodeStore decodes the three S-format stores.
func (d *Decoder) decodeStore(word uint32, inst *Instruction) {
	inst.Format = FormatS
	inst.Rs1 = rs1(word)
	inst.Rs2 = rs2(word)
	inst.Imm = immS(word)
	switch funct3(word) {
	case 0x0:
		inst.Op = SB
	case 0x1:
		inst.Op = SH
	case 0x2:
		inst.Op = SW
	default:
		inst.Op = NONE
	}
}

// decodeImmALU decodes the nine I-format immediate ALU operations.
// SRLI/SRAI share funct3 0x5, disambiguated by funct7 (bit 30 set => SRAI).
func (d *Decoder) decodeImmALU(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Imm = immI(word)
	switch funct3(word) {
	case 0x0:
		inst.Op = ADDI
	case 0x1:
		inst.Op = SLLI
	case 0x2:
		inst.Op = SLTI
	case 0x3:
		inst.Op = SLTIU
	case 0x4:
		inst.Op = XORI
	case 0x5:
		if funct7(word) != 0 {
			inst.Op = SRAI
		} else {
			inst.Op = SRLI
		}
	case 0x6:
		inst.Op = ORI
	case 0x7:
		inst.Op = ANDI
	default:
		inst.Op = NONE
	}
}

// decodeRegALU decodes the ten R-format register ALU operations.
// ADD/SUB share funct3 0x0 and SRL/SRA share funct3 0x5, both disambiguated
// by funct7 (bit 30 set => SUB / SRA).
func (d *Decoder) decodeRegALU(word uint32, inst *Instruction) {
	inst.Format = FormatR
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Rs2 = rs2(word)
	switch funct3(word) {
	case 0x0:
		if funct7(word) != 0 {
			inst.Op = SUB
		} else {
			inst.Op = ADD
		}
	case 0x1:
		inst.Op = SLL
	case 0x2:
		inst.Op = SLT
	case 0x3:
		inst.Op = SLTU
	case 0x4:
		inst.Op = XOR
	case 0x5:
		if funct7(word) != 0 {
			inst.Op = SRA
		} else {
			inst.Op = SRL
		}
	case 0x6:
		inst.Op = OR
	case 0x7:
		inst.Op = AND
	default:
		inst.Op = NONE
	}
}
