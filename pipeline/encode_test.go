package pipeline_test

// Minimal RV32I encoders used only to build test programs; field layout
// mirrors insts/decoder.go exactly (opcode bits [0,7), funct3 [12,15),
// funct7 [25,32)).

const (
	opLUI    = 0x37
	opAUIPC  = 0x17
	opJAL    = 0x6F
	opJALR   = 0x67
	opBranch = 0x63
	opLoad   = 0x03
	opStore  = 0x23
	opImmALU = 0x13
	opRegALU = 0x33
)

func encodeR(funct3, funct7, rd, rs1, rs2 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opRegALU
}

func encodeI(opcode, funct3, rd, rs1 uint32, imm int32) uint32 {
	u := uint32(imm) & 0xFFF
	return u<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func addi(rd, rs1 uint32, imm int32) uint32 { return encodeI(opImmALU, 0x0, rd, rs1, imm) }
func add(rd, rs1, rs2 uint32) uint32        { return encodeR(0x0, 0, rd, rs1, rs2) }

func encodeS(funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm) & 0xFFF
	return (u>>5)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | (u&0x1F)<<7 | opStore
}

func sb(rs2, rs1 uint32, imm int32) uint32 { return encodeS(0x0, rs1, rs2, imm) }

func lbu(rd, rs1 uint32, imm int32) uint32 { return encodeI(opLoad, 0x4, rd, rs1, imm) }

func encodeB(funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm) & 0x1FFF
	bit12 := (u >> 12) & 1
	bit11 := (u >> 11) & 1
	bits10_5 := (u >> 5) & 0x3F
	bits4_1 := (u >> 1) & 0xF
	return bit12<<31 | bits10_5<<25 | rs2<<20 | rs1<<15 | funct3<<12 | bits4_1<<8 | bit11<<7 | opBranch
}

func bne(rs1, rs2 uint32, imm int32) uint32 { return encodeB(0x1, rs1, rs2, imm) }

func encodeU(opcode, rd, imm20 uint32) uint32 {
	return imm20<<12 | rd<<7 | opcode
}

func lui(rd, imm20 uint32) uint32 { return encodeU(opLUI, rd, imm20) }

const halt = 0x0FF00513
