// Package isa holds the pure, stateless bit-layout of an RV32I instruction
// word: the opcode/funct3/funct7 classification fields and the five
// sign-extended immediate encodings (I, U, S, B, J).
package isa

// Opcodes (bits 0..6).
const (
	OpcodeLUI        uint32 = 0b0110111
	OpcodeAUIPC      uint32 = 0b0010111
	OpcodeJAL        uint32 = 0b1101111
	OpcodeJALR       uint32 = 0b1100111
	OpcodeBranch     uint32 = 0b1100011
	OpcodeLoad       uint32 = 0b0000011
	OpcodeStore      uint32 = 0b0100011
	OpcodeOpImm      uint32 = 0b0010011
	OpcodeOp         uint32 = 0b0110011
	OpcodeFence      uint32 = 0b0001111
	OpcodeSystem     uint32 = 0b1110011
)

// OP / OP-IMM funct3 values.
const (
	Funct3Add  uint32 = 0b000
	Funct3Sll  uint32 = 0b001
	Funct3Slt  uint32 = 0b010
	Funct3Sltu uint32 = 0b011
	Funct3Xor  uint32 = 0b100
	Funct3Srl  uint32 = 0b101
	Funct3Or   uint32 = 0b110
	Funct3And  uint32 = 0b111
)

// LOAD funct3 values.
const (
	Funct3LB  uint32 = 0b000
	Funct3LH  uint32 = 0b001
	Funct3LW  uint32 = 0b010
	Funct3LBU uint32 = 0b100
	Funct3LHU uint32 = 0b101
)

// STORE funct3 values.
const (
	Funct3SB uint32 = 0b000
	Funct3SH uint32 = 0b001
	Funct3SW uint32 = 0b010
)

// BRANCH funct3 values.
const (
	Funct3BEQ  uint32 = 0b000
	Funct3BNE  uint32 = 0b001
	Funct3BLT  uint32 = 0b100
	Funct3BGE  uint32 = 0b101
	Funct3BLTU uint32 = 0b110
	Funct3BGEU uint32 = 0b111
)

// funct7 values distinguishing ADD/SUB and SRL/SRA.
const (
	Funct7Default uint32 = 0b0000000
	Funct7Alt     uint32 = 0b0100000
)

// Opcode extracts bits 0..6.
func Opcode(insn uint32) uint32 { return insn & 0x7f }

// Rd extracts bits 7..11.
func Rd(insn uint32) uint32 { return (insn >> 7) & 0x1f }

// Funct3 extracts bits 12..14.
func Funct3(insn uint32) uint32 { return (insn >> 12) & 0x7 }

// Rs1 extracts bits 15..19.
func Rs1(insn uint32) uint32 { return (insn >> 15) & 0x1f }

// Rs2 extracts bits 20..24.
func Rs2(insn uint32) uint32 { return (insn >> 20) & 0x1f }

// Funct7 extracts bits 25..31.
func Funct7(insn uint32) uint32 { return (insn >> 25) & 0x7f }

// Shamt extracts the 5-bit shift amount used by the I-type shift
// instructions (SLLI/SRLI/SRAI), bits 20..24.
func Shamt(insn uint32) uint32 { return (insn >> 20) & 0x1f }

// ImmI extracts and sign-extends the I-type immediate (bits 20..31).
func ImmI(insn uint32) int32 {
	v := int32(insn) >> 20
	return v
}

// ImmU extracts the U-type immediate: bits 12..31 placed at 12..31, low
// 12 bits zero.
func ImmU(insn uint32) int32 {
	return int32(insn & 0xfffff000)
}

// ImmS extracts and sign-extends the S-type immediate: bits 25..31 -> 5..11,
// bits 7..11 -> 0..4.
func ImmS(insn uint32) int32 {
	v := (insn & 0xfe000000) >> (25 - 5)
	v |= (insn & 0x00000f80) >> (7 - 0)
	if insn&0x80000000 != 0 {
		v |= 0xfffff000
	}
	return int32(v)
}

// ImmB extracts and sign-extends the B-type immediate: bit 31 -> 12,
// bit 7 -> 11, bits 25..30 -> 5..10, bits 8..11 -> 1..4, bit 0 = 0.
func ImmB(insn uint32) int32 {
	v := (insn & 0x00000f00) >> (8 - 1)
	v |= (insn & 0x00000080) << (11 - 7)
	v |= (insn & 0x7e000000) >> (25 - 5)
	if insn&0x80000000 != 0 {
		v |= 0xfffff000
	}
	return int32(v)
}

// ImmJ extracts and sign-extends the J-type immediate: bit 31 -> 20,
// bits 12..19 -> 12..19, bit 20 -> 11, bits 21..30 -> 1..10, bit 0 = 0.
func ImmJ(insn uint32) int32 {
	v := insn & 0x000ff000
	v |= (insn & 0x7fe00000) >> (21 - 1)
	v |= (insn & 0x00100000) >> (20 - 11)
	if insn&0x80000000 != 0 {
		v |= 0xfff00000
	}
	return int32(v)
}
