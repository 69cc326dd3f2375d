package isa

import "testing"

// addi x1, x0, -1 -> opcode=0010011 funct3=000 rd=1 rs1=0 imm=-1 (all ones)
func TestFieldsAddi(t *testing.T) {
	// imm=0xfff (-1), rs1=0, funct3=000, rd=1, opcode=0010011
	insn := uint32(0xfff00093)
	if got := Opcode(insn); got != OpcodeOpImm {
		t.Errorf("Opcode = %#x, want OpcodeOpImm", got)
	}
	if got := Rd(insn); got != 1 {
		t.Errorf("Rd = %d, want 1", got)
	}
	if got := Funct3(insn); got != Funct3Add {
		t.Errorf("Funct3 = %d, want 0", got)
	}
	if got := Rs1(insn); got != 0 {
		t.Errorf("Rs1 = %d, want 0", got)
	}
	if got := ImmI(insn); got != -1 {
		t.Errorf("ImmI = %d, want -1", got)
	}
}

func TestImmIPositive(t *testing.T) {
	// imm = 0x7ff (positive, bit 31 of word = 0)
	insn := uint32(0x7ff00093)
	if got := ImmI(insn); got != 0x7ff {
		t.Errorf("ImmI = %#x, want 0x7ff", got)
	}
}

func TestImmUMasksLow12(t *testing.T) {
	insn := uint32(0x12345037) // lui x0, 0x12345
	if got := ImmU(insn); got != int32(0x12345000) {
		t.Errorf("ImmU = %#x, want 0x12345000", got)
	}
}

func TestImmSSignExtends(t *testing.T) {
	// sw x1, -4(x2): imm=-4 -> bits should reassemble to -4
	// S-type: imm[11:5] in bits 31:25, imm[4:0] in bits 11:7
	imm := int32(-4)
	u := uint32(imm)
	insnBits := ((u & 0xfe0) << (25 - 5)) | ((u & 0x1f) << 7)
	insn := insnBits | (2 << 15) | (1 << 20) | (0b010 << 12) | OpcodeStore
	if got := ImmS(insn); got != -4 {
		t.Errorf("ImmS = %d, want -4", got)
	}
}

func TestImmBSignExtendsAndLowBitZero(t *testing.T) {
	// Construct a B-type immediate of -8 and verify round-trip.
	imm := int32(-8)
	u := uint32(imm)
	var insn uint32
	insn |= ((u >> 12) & 1) << 31
	insn |= ((u >> 11) & 1) << 7
	insn |= ((u >> 5) & 0x3f) << 25
	insn |= ((u >> 1) & 0xf) << 8
	insn |= OpcodeBranch
	if got := ImmB(insn); got != -8 {
		t.Errorf("ImmB = %d, want -8", got)
	}
}

func TestImmJSignExtendsAndLowBitZero(t *testing.T) {
	imm := int32(-4096)
	u := uint32(imm)
	var insn uint32
	insn |= ((u >> 20) & 1) << 31
	insn |= ((u >> 12) & 0xff) << 12
	insn |= ((u >> 11) & 1) << 20
	insn |= ((u >> 1) & 0x3ff) << 21
	insn |= OpcodeJAL
	if got := ImmJ(insn); got != -4096 {
		t.Errorf("ImmJ = %d, want -4096", got)
	}
}

func TestShamtMasksTo5Bits(t *testing.T) {
	insn := uint32(0x3f) << 20
	if got := Shamt(insn); got != 0x1f {
		t.Errorf("Shamt = %#x, want 0x1f", got)
	}
}

func TestRs2AndFunct7(t *testing.T) {
	// add x3, x1, x2: funct7=0, rs2=2, rs1=1, funct3=0, rd=3, opcode=0110011
	insn := uint32(0)
	insn |= 2 << 20
	insn |= 1 << 15
	insn |= 3 << 7
	insn |= OpcodeOp
	if got := Rs2(insn); got != 2 {
		t.Errorf("Rs2 = %d, want 2", got)
	}
	if got := Funct7(insn); got != Funct7Default {
		t.Errorf("Funct7 = %d, want 0", got)
	}
}
