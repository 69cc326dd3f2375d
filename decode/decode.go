// Package decode classifies a 32-bit RV32I instruction word into a
// mnemonic and renders it into the fixed-width disassembly text used by
// both the standalone disassembler and instruction tracing.
package decode

import (
	"fmt"
	"strings"

	"github.com/rv32isim/rv32i/isa"
)

// Kind identifies the decoded instruction's mnemonic. The zero value is
// Illegal so a zero-initialized Kind never silently looks like a valid
// instruction.
type Kind int

const (
	Illegal Kind = iota
	LUI
	AUIPC
	JAL
	JALR
	BEQ
	BNE
	BLT
	BGE
	BLTU
	BGEU
	LB
	LH
	LW
	LBU
	LHU
	SB
	SH
	SW
	ADDI
	SLTI
	SLTIU
	XORI
	ORI
	ANDI
	SLLI
	SRLI
	SRAI
	ADD
	SUB
	SLL
	SLT
	SLTU
	XOR
	SRL
	SRA
	OR
	AND
	FENCE
	ECALL
	EBREAK
)

// mnemonicWidth is the left-justified field width mnemonics are padded to
// before operands are appended.
const mnemonicWidth = 8

var mnemonics = map[Kind]string{
	Illegal: "",
	LUI:     "lui", AUIPC: "auipc", JAL: "jal", JALR: "jalr",
	BEQ: "beq", BNE: "bne", BLT: "blt", BGE: "bge", BLTU: "bltu", BGEU: "bgeu",
	LB: "lb", LH: "lh", LW: "lw", LBU: "lbu", LHU: "lhu",
	SB: "sb", SH: "sh", SW: "sw",
	ADDI: "addi", SLTI: "slti", SLTIU: "sltiu", XORI: "xori", ORI: "ori",
	ANDI: "andi", SLLI: "slli", SRLI: "srli", SRAI: "srai",
	ADD: "add", SUB: "sub", SLL: "sll", SLT: "slt", SLTU: "sltu",
	XOR: "xor", SRL: "srl", SRA: "sra", OR: "or", AND: "and",
	FENCE: "fence", ECALL: "ecall", EBREAK: "ebreak",
}

// Mnemonic returns the assembler mnemonic for k, or "" for Illegal.
func Mnemonic(k Kind) string { return mnemonics[k] }

// DestRegister returns the register insn writes and true, or (0, false) if
// k never writes a register (stores, branches, FENCE, ECALL/EBREAK,
// Illegal). It does not account for writes to x0, which the register file
// itself discards.
func DestRegister(k Kind, insn uint32) (uint32, bool) {
	switch k {
	case LUI, AUIPC, JAL, JALR,
		LB, LH, LW, LBU, LHU,
		ADDI, SLTI, SLTIU, XORI, ORI, ANDI, SLLI, SRLI, SRAI,
		ADD, SUB, SLL, SLT, SLTU, XOR, SRL, SRA, OR, AND:
		return isa.Rd(insn), true
	default:
		return 0, false
	}
}

// Decode classifies insn. Every opcode arm returns its Kind directly: no
// branch falls through into another opcode's handling.
func Decode(insn uint32) Kind {
	opcode := isa.Opcode(insn)
	funct3 := isa.Funct3(insn)
	funct7 := isa.Funct7(insn)

	switch opcode {
	case isa.OpcodeLUI:
		return LUI
	case isa.OpcodeAUIPC:
		return AUIPC
	case isa.OpcodeJAL:
		return JAL
	case isa.OpcodeJALR:
		return JALR
	case isa.OpcodeSystem:
		if insn&0x00100000 != 0 {
			return EBREAK
		}
		return ECALL
	case isa.OpcodeFence:
		return FENCE
	case isa.OpcodeBranch:
		switch funct3 {
		case isa.Funct3BEQ:
			return BEQ
		case isa.Funct3BNE:
			return BNE
		case isa.Funct3BLT:
			return BLT
		case isa.Funct3BGE:
			return BGE
		case isa.Funct3BLTU:
			return BLTU
		case isa.Funct3BGEU:
			return BGEU
		default:
			return Illegal
		}
	case isa.OpcodeLoad:
		switch funct3 {
		case isa.Funct3LB:
			return LB
		case isa.Funct3LH:
			return LH
		case isa.Funct3LW:
			return LW
		case isa.Funct3LBU:
			return LBU
		case isa.Funct3LHU:
			return LHU
		default:
			return Illegal
		}
	case isa.OpcodeStore:
		switch funct3 {
		case isa.Funct3SB:
			return SB
		case isa.Funct3SH:
			return SH
		case isa.Funct3SW:
			return SW
		default:
			return Illegal
		}
	case isa.OpcodeOpImm:
		switch funct3 {
		case isa.Funct3Add:
			return ADDI
		case isa.Funct3Slt:
			return SLTI
		case isa.Funct3Sltu:
			return SLTIU
		case isa.Funct3Xor:
			return XORI
		case isa.Funct3Or:
			return ORI
		case isa.Funct3And:
			return ANDI
		case isa.Funct3Sll:
			return SLLI
		case isa.Funct3Srl:
			switch funct7 {
			case isa.Funct7Default:
				return SRLI
			case isa.Funct7Alt:
				return SRAI
			default:
				return Illegal
			}
		default:
			return Illegal
		}
	case isa.OpcodeOp:
		switch funct3 {
		case isa.Funct3Add:
			switch funct7 {
			case isa.Funct7Default:
				return ADD
			case isa.Funct7Alt:
				return SUB
			default:
				return Illegal
			}
		case isa.Funct3Sll:
			return SLL
		case isa.Funct3Slt:
			return SLT
		case isa.Funct3Sltu:
			return SLTU
		case isa.Funct3Xor:
			return XOR
		case isa.Funct3Srl:
			switch funct7 {
			case isa.Funct7Default:
				return SRL
			case isa.Funct7Alt:
				return SRA
			default:
				return Illegal
			}
		case isa.Funct3Or:
			return OR
		case isa.Funct3And:
			return AND
		default:
			return Illegal
		}
	default:
		return Illegal
	}
}

// fenceFlags renders a 4-bit i/o/r/w nibble (bit 3 = i .. bit 0 = w) as
// the subset of letters it sets, in canonical i,o,r,w order. Every one of
// the 16 possible nibbles produces a distinct, well-defined string.
func fenceFlags(nibble uint32) string {
	var sb strings.Builder
	if nibble&0x8 != 0 {
		sb.WriteByte('i')
	}
	if nibble&0x4 != 0 {
		sb.WriteByte('o')
	}
	if nibble&0x2 != 0 {
		sb.WriteByte('r')
	}
	if nibble&0x1 != 0 {
		sb.WriteByte('w')
	}
	return sb.String()
}

// Render disassembles insn into mnemonic-and-operand text. pc is the
// address insn was fetched from, used to compute the absolute target of
// pc-relative branches and jumps.
func Render(insn uint32, pc uint32) string {
	k := Decode(insn)
	m := fmt.Sprintf("%-*s", mnemonicWidth, Mnemonic(k))

	switch k {
	case Illegal:
		return "ERROR: UNIMPLEMENTED INSTRUCTION"
	case LUI, AUIPC:
		imm := uint32(isa.ImmU(insn)) >> 12 & 0xfffff
		return fmt.Sprintf("%sx%d,0x%x", m, isa.Rd(insn), imm)
	case JAL:
		target := pc + uint32(isa.ImmJ(insn))
		return fmt.Sprintf("%sx%d,0x%x", m, isa.Rd(insn), target)
	case JALR:
		return fmt.Sprintf("%sx%d,%d(x%d)", m, isa.Rd(insn), isa.ImmI(insn), isa.Rs1(insn))
	case BEQ, BNE, BLT, BGE, BLTU, BGEU:
		target := pc + uint32(isa.ImmB(insn))
		return fmt.Sprintf("%sx%d,x%d,0x%x", m, isa.Rs1(insn), isa.Rs2(insn), target)
	case LB, LH, LW, LBU, LHU:
		return fmt.Sprintf("%sx%d,%d(x%d)", m, isa.Rd(insn), isa.ImmI(insn), isa.Rs1(insn))
	case SB, SH, SW:
		return fmt.Sprintf("%sx%d,%d(x%d)", m, isa.Rs2(insn), isa.ImmS(insn), isa.Rs1(insn))
	case ADDI, SLTI, SLTIU, XORI, ORI, ANDI:
		return fmt.Sprintf("%sx%d,x%d,%d", m, isa.Rd(insn), isa.Rs1(insn), isa.ImmI(insn))
	case SLLI, SRLI, SRAI:
		return fmt.Sprintf("%sx%d,x%d,%d", m, isa.Rd(insn), isa.Rs1(insn), isa.Shamt(insn))
	case ADD, SUB, SLL, SLT, SLTU, XOR, SRL, SRA, OR, AND:
		return fmt.Sprintf("%sx%d,x%d,x%d", m, isa.Rd(insn), isa.Rs1(insn), isa.Rs2(insn))
	case FENCE:
		pred := fenceFlags((insn >> 24) & 0xf)
		succ := fenceFlags((insn >> 20) & 0xf)
		return fmt.Sprintf("%s%s,%s", m, pred, succ)
	case ECALL, EBREAK:
		return Mnemonic(k)
	default:
		return "ERROR: UNIMPLEMENTED INSTRUCTION"
	}
}
