// Package exec performs each RV32I instruction's register/memory side
// effects and, when a trace sink is supplied, renders the instruction's
// disassembly padded to a fixed width followed by a "// ..." commentary
// showing the operand values that produced the result.
package exec

import (
	"fmt"
	"io"

	"github.com/rv32isim/rv32i/decode"
	"github.com/rv32isim/rv32i/hex"
	"github.com/rv32isim/rv32i/isa"
)

// instructionWidth is the column the "// ..." trace commentary starts at.
const instructionWidth = 35

// Registers is the minimal register-file surface exec needs: get/set by
// index, with x0 hard-wiring left to the implementation.
type Registers interface {
	Get(r uint32) uint32
	Set(r uint32, val uint32)
}

// Memory is the minimal memory surface exec needs for loads and stores.
type Memory interface {
	Get8(addr uint32) uint8
	Get16(addr uint32) uint16
	Get32(addr uint32) uint32
	Set8(addr uint32, val uint8)
	Set16(addr uint32, val uint16)
	Set32(addr uint32, val uint32)
}

// Result reports the outcome of executing one instruction: the next PC,
// and whether the instruction halted the hart (EBREAK, ECALL, or an
// illegal instruction).
type Result struct {
	NextPC uint32
	Halt   bool
}

func pad(s string) string {
	for len(s) < instructionWidth {
		s += " "
	}
	return s
}

func trace(w io.Writer, insn uint32, pc uint32, comment string) {
	if w == nil {
		return
	}
	fmt.Fprintln(w, pad(decode.Render(insn, pc))+"// "+comment)
}

// Step executes insn, fetched from address pc, against regs and mem. When
// w is non-nil, a trace line is written describing the instruction and
// its effect.
func Step(insn uint32, pc uint32, regs Registers, mem Memory, w io.Writer) Result {
	k := decode.Decode(insn)
	rd := isa.Rd(insn)
	rs1 := isa.Rs1(insn)
	rs2 := isa.Rs2(insn)

	switch k {
	case decode.Illegal:
		if w != nil {
			fmt.Fprintln(w, pad("ERROR: UNIMPLEMENTED INSTRUCTION"))
		}
		return Result{NextPC: pc, Halt: true}

	case decode.EBREAK:
		if w != nil {
			trace(w, insn, pc, "HALT")
		}
		return Result{NextPC: pc, Halt: true}

	case decode.ECALL:
		if w != nil {
			trace(w, insn, pc, "HALT")
		}
		return Result{NextPC: pc, Halt: true}

	case decode.LUI:
		immU := uint32(isa.ImmU(insn))
		regs.Set(rd, immU)
		trace(w, insn, pc, fmt.Sprintf("x%d = %s", rd, hex.Word8Prefixed(immU)))
		return next(pc)

	case decode.AUIPC:
		immU := uint32(isa.ImmU(insn))
		val := pc + immU
		regs.Set(rd, val)
		trace(w, insn, pc, fmt.Sprintf("x%d = %s + %s = %s", rd, hex.Word8Prefixed(pc), hex.Word8Prefixed(immU), hex.Word8Prefixed(val)))
		return next(pc)

	case decode.JAL:
		immJ := uint32(isa.ImmJ(insn))
		target := pc + immJ
		regs.Set(rd, pc+4)
		trace(w, insn, pc, fmt.Sprintf("x%d = %s,  pc = %s + %s = %s", rd, hex.Word8Prefixed(pc+4), hex.Word8Prefixed(pc), hex.Word8Prefixed(immJ), hex.Word8Prefixed(target)))
		return Result{NextPC: target}

	case decode.JALR:
		immI := uint32(isa.ImmI(insn))
		base := regs.Get(rs1)
		target := (base + immI) &^ 1
		regs.Set(rd, pc+4)
		trace(w, insn, pc, fmt.Sprintf("x%d = %s,  pc = (%s + %s) & %s = %s", rd, hex.Word8Prefixed(pc+4), hex.Word8Prefixed(immI), hex.Word8Prefixed(base), hex.Word8Prefixed(0xfffffffe), hex.Word8Prefixed(target)))
		return Result{NextPC: target}

	case decode.BEQ:
		a, b := regs.Get(rs1), regs.Get(rs2)
		return branch(insn, pc, a == b, a, b, "==", w)
	case decode.BNE:
		a, b := regs.Get(rs1), regs.Get(rs2)
		return branch(insn, pc, a != b, a, b, "!=", w)
	case decode.BLT:
		a, b := regs.Get(rs1), regs.Get(rs2)
		return branch(insn, pc, int32(a) < int32(b), a, b, "<", w)
	case decode.BGE:
		a, b := regs.Get(rs1), regs.Get(rs2)
		return branch(insn, pc, int32(a) >= int32(b), a, b, ">=", w)
	case decode.BLTU:
		a, b := regs.Get(rs1), regs.Get(rs2)
		return branch(insn, pc, a < b, a, b, "<U", w)
	case decode.BGEU:
		a, b := regs.Get(rs1), regs.Get(rs2)
		return branch(insn, pc, a >= b, a, b, ">=U", w)

	case decode.LB:
		base := regs.Get(rs1)
		immI := isa.ImmI(insn)
		addr := uint32(int32(base) + immI)
		v := int32(int8(mem.Get8(addr)))
		regs.Set(rd, uint32(v))
		trace(w, insn, pc, fmt.Sprintf("x%d = sx(m8(%s + %s)) = %s", rd, hex.Word8Prefixed(base), hex.Word8Prefixed(uint32(immI)), hex.Word8Prefixed(uint32(v))))
		return next(pc)

	case decode.LH:
		base := regs.Get(rs1)
		immI := isa.ImmI(insn)
		addr := uint32(int32(base) + immI)
		v := int32(int16(mem.Get16(addr)))
		regs.Set(rd, uint32(v))
		trace(w, insn, pc, fmt.Sprintf("x%d = sx(m16(%s + %s)) = %s", rd, hex.Word8Prefixed(base), hex.Word8Prefixed(uint32(immI)), hex.Word8Prefixed(uint32(v))))
		return next(pc)

	case decode.LW:
		base := regs.Get(rs1)
		immI := isa.ImmI(insn)
		addr := uint32(int32(base) + immI)
		v := mem.Get32(addr)
		regs.Set(rd, v)
		trace(w, insn, pc, fmt.Sprintf("x%d = sx(m32(%s + %s)) = %s", rd, hex.Word8Prefixed(base), hex.Word8Prefixed(uint32(immI)), hex.Word8Prefixed(v)))
		return next(pc)

	case decode.LBU:
		base := regs.Get(rs1)
		immI := isa.ImmI(insn)
		addr := uint32(int32(base) + immI)
		v := uint32(mem.Get8(addr))
		regs.Set(rd, v)
		trace(w, insn, pc, fmt.Sprintf("x%d = zx(m8(%s + %s)) = %s", rd, hex.Word8Prefixed(base), hex.Word8Prefixed(uint32(immI)), hex.Word8Prefixed(v)))
		return next(pc)

	case decode.LHU:
		base := regs.Get(rs1)
		immI := isa.ImmI(insn)
		addr := uint32(int32(base) + immI)
		v := uint32(mem.Get16(addr))
		regs.Set(rd, v)
		trace(w, insn, pc, fmt.Sprintf("x%d = zx(m16(%s + %s)) = %s", rd, hex.Word8Prefixed(base), hex.Word8Prefixed(uint32(immI)), hex.Word8Prefixed(v)))
		return next(pc)

	case decode.SB:
		base := regs.Get(rs1)
		immS := isa.ImmS(insn)
		addr := uint32(int32(base) + immS)
		v := regs.Get(rs2) & 0xff
		mem.Set8(addr, uint8(v))
		trace(w, insn, pc, fmt.Sprintf("m8(%s + %s) = %s", hex.Word8Prefixed(base), hex.Word8Prefixed(uint32(immS)), hex.Word8Prefixed(v)))
		return next(pc)

	case decode.SH:
		base := regs.Get(rs1)
		immS := isa.ImmS(insn)
		addr := uint32(int32(base) + immS)
		v := regs.Get(rs2) & 0xffff
		mem.Set16(addr, uint16(v))
		trace(w, insn, pc, fmt.Sprintf("m16(%s + %s) = %s", hex.Word8Prefixed(base), hex.Word8Prefixed(uint32(immS)), hex.Word8Prefixed(v)))
		return next(pc)

	case decode.SW:
		base := regs.Get(rs1)
		immS := isa.ImmS(insn)
		addr := uint32(int32(base) + immS)
		v := regs.Get(rs2)
		mem.Set32(addr, v)
		trace(w, insn, pc, fmt.Sprintf("m32(%s + %s) = %s", hex.Word8Prefixed(base), hex.Word8Prefixed(uint32(immS)), hex.Word8Prefixed(v)))
		return next(pc)

	case decode.ADDI:
		immI := isa.ImmI(insn)
		a := regs.Get(rs1)
		v := uint32(int32(a) + immI)
		regs.Set(rd, v)
		trace(w, insn, pc, fmt.Sprintf("x%d = %s + %s = %s", rd, hex.Word8Prefixed(a), hex.Word8Prefixed(uint32(immI)), hex.Word8Prefixed(v)))
		return next(pc)

	case decode.SLTI:
		immI := isa.ImmI(insn)
		a := regs.Get(rs1)
		v := uint32(0)
		if int32(a) < immI {
			v = 1
		}
		regs.Set(rd, v)
		trace(w, insn, pc, fmt.Sprintf("x%d = (%s < %d) ? 1 : 0 = %s", rd, hex.Word8Prefixed(a), immI, hex.Word8Prefixed(v)))
		return next(pc)

	case decode.SLTIU:
		immI := uint32(isa.ImmI(insn))
		a := regs.Get(rs1)
		v := uint32(0)
		if a < immI {
			v = 1
		}
		trace(w, insn, pc, fmt.Sprintf("x%d = (%s <U %d) ? 1 : 0 = %s", rd, hex.Word8Prefixed(a), immI, hex.Word8Prefixed(v)))
		regs.Set(rd, v)
		return next(pc)

	case decode.XORI:
		immI := uint32(isa.ImmI(insn))
		a := regs.Get(rs1)
		v := a ^ immI
		regs.Set(rd, v)
		trace(w, insn, pc, fmt.Sprintf("x%d = %s ^ %s = %s", rd, hex.Word8Prefixed(a), hex.Word8Prefixed(immI), hex.Word8Prefixed(v)))
		return next(pc)

	case decode.ORI:
		immI := uint32(isa.ImmI(insn))
		a := regs.Get(rs1)
		v := a | immI
		regs.Set(rd, v)
		trace(w, insn, pc, fmt.Sprintf("x%d = %s | %s = %s", rd, hex.Word8Prefixed(a), hex.Word8Prefixed(immI), hex.Word8Prefixed(v)))
		return next(pc)

	case decode.ANDI:
		immI := uint32(isa.ImmI(insn))
		a := regs.Get(rs1)
		v := a & immI
		regs.Set(rd, v)
		trace(w, insn, pc, fmt.Sprintf("x%d = %s & %s = %s", rd, hex.Word8Prefixed(a), hex.Word8Prefixed(immI), hex.Word8Prefixed(v)))
		return next(pc)

	case decode.SLLI:
		shamt := isa.Shamt(insn)
		a := regs.Get(rs1)
		v := a << shamt
		regs.Set(rd, v)
		trace(w, insn, pc, fmt.Sprintf("x%d = %s << %d = %s", rd, hex.Word8Prefixed(a), shamt, hex.Word8Prefixed(v)))
		return next(pc)

	case decode.SRLI:
		shamt := isa.Shamt(insn)
		a := regs.Get(rs1)
		v := a >> shamt
		regs.Set(rd, v)
		trace(w, insn, pc, fmt.Sprintf("x%d = %s >> %d = %s", rd, hex.Word8Prefixed(a), shamt, hex.Word8Prefixed(v)))
		return next(pc)

	case decode.SRAI:
		shamt := isa.Shamt(insn)
		a := regs.Get(rs1)
		v := int32(a) >> shamt
		regs.Set(rd, uint32(v))
		trace(w, insn, pc, fmt.Sprintf("x%d = %s >> %d = %d", rd, hex.Word8Prefixed(a), shamt, v))
		return next(pc)

	case decode.ADD:
		a, b := regs.Get(rs1), regs.Get(rs2)
		v := a + b
		regs.Set(rd, v)
		trace(w, insn, pc, fmt.Sprintf("x%d = %s + %s = %s", rd, hex.Word8Prefixed(a), hex.Word8Prefixed(b), hex.Word8Prefixed(v)))
		return next(pc)

	case decode.SUB:
		a, b := regs.Get(rs1), regs.Get(rs2)
		v := a - b
		regs.Set(rd, v)
		trace(w, insn, pc, fmt.Sprintf("x%d = %s - %s = %s", rd, hex.Word8Prefixed(a), hex.Word8Prefixed(b), hex.Word8Prefixed(v)))
		return next(pc)

	case decode.SLL:
		a, b := regs.Get(rs1), regs.Get(rs2)
		shift := b & 0x1f
		v := a << shift
		regs.Set(rd, v)
		trace(w, insn, pc, fmt.Sprintf("x%d = %s << %d = %s", rd, hex.Word8Prefixed(a), shift, hex.Word8Prefixed(v)))
		return next(pc)

	case decode.SLT:
		a, b := regs.Get(rs1), regs.Get(rs2)
		v := uint32(0)
		if int32(a) < int32(b) {
			v = 1
		}
		regs.Set(rd, v)
		trace(w, insn, pc, fmt.Sprintf("x%d = (%s < %s) ? 1 : 0 = %s", rd, hex.Word8Prefixed(a), hex.Word8Prefixed(b), hex.Word8Prefixed(v)))
		return next(pc)

	case decode.SLTU:
		a, b := regs.Get(rs1), regs.Get(rs2)
		v := uint32(0)
		if a < b {
			v = 1
		}
		regs.Set(rd, v)
		trace(w, insn, pc, fmt.Sprintf("x%d = (%s <U %s) ? 1 : 0 = %s", rd, hex.Word8Prefixed(a), hex.Word8Prefixed(b), hex.Word8Prefixed(v)))
		return next(pc)

	case decode.XOR:
		a, b := regs.Get(rs1), regs.Get(rs2)
		v := a ^ b
		regs.Set(rd, v)
		trace(w, insn, pc, fmt.Sprintf("x%d = %s ^ %s = %s", rd, hex.Word8Prefixed(a), hex.Word8Prefixed(b), hex.Word8Prefixed(v)))
		return next(pc)

	case decode.SRL:
		a, b := regs.Get(rs1), regs.Get(rs2)
		shift := b & 0x1f
		v := a >> shift
		regs.Set(rd, v)
		trace(w, insn, pc, fmt.Sprintf("x%d = %s >> %d = %s", rd, hex.Word8Prefixed(a), shift, hex.Word8Prefixed(v)))
		return next(pc)

	case decode.SRA:
		a, b := regs.Get(rs1), regs.Get(rs2)
		shift := b & 0x1f
		v := int32(a) >> shift
		regs.Set(rd, uint32(v))
		trace(w, insn, pc, fmt.Sprintf("x%d = %s >> %d = %s", rd, hex.Word8Prefixed(a), shift, hex.Word8Prefixed(uint32(v))))
		return next(pc)

	case decode.OR:
		a, b := regs.Get(rs1), regs.Get(rs2)
		v := a | b
		regs.Set(rd, v)
		trace(w, insn, pc, fmt.Sprintf("x%d = %s | %s = %s", rd, hex.Word8Prefixed(a), hex.Word8Prefixed(b), hex.Word8Prefixed(v)))
		return next(pc)

	case decode.AND:
		a, b := regs.Get(rs1), regs.Get(rs2)
		v := a & b
		regs.Set(rd, v)
		trace(w, insn, pc, fmt.Sprintf("x%d = %s & %s = %s", rd, hex.Word8Prefixed(a), hex.Word8Prefixed(b), hex.Word8Prefixed(v)))
		return next(pc)

	case decode.FENCE:
		trace(w, insn, pc, "fence")
		return next(pc)

	default:
		if w != nil {
			fmt.Fprintln(w, pad("ERROR: UNIMPLEMENTED INSTRUCTION"))
		}
		return Result{NextPC: pc, Halt: true}
	}
}

func next(pc uint32) Result {
	return Result{NextPC: pc + 4}
}

func branch(insn uint32, pc uint32, taken bool, a, b uint32, op string, w io.Writer) Result {
	immB := isa.ImmB(insn)
	delta := int32(4)
	if taken {
		delta = immB
	}
	target := uint32(int32(pc) + delta)
	trace(w, insn, pc, fmt.Sprintf("pc += (%s %s %s ? %s : 4) = %s", hex.Word8Prefixed(a), op, hex.Word8Prefixed(b), hex.Word8Prefixed(uint32(immB)), hex.Word8Prefixed(target)))
	return Result{NextPC: target}
}
