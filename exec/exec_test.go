package exec

import (
	"bytes"
	"strings"
	"testing"
)

type fakeRegs struct {
	r [32]uint32
}

func (f *fakeRegs) Get(r uint32) uint32 {
	if r == 0 {
		return 0
	}
	return f.r[r]
}

func (f *fakeRegs) Set(r uint32, val uint32) {
	if r == 0 {
		return
	}
	f.r[r] = val
}

type fakeMem struct {
	b [256]byte
}

func (m *fakeMem) Get8(addr uint32) uint8 { return m.b[addr] }
func (m *fakeMem) Get16(addr uint32) uint16 {
	return uint16(m.b[addr]) | uint16(m.b[addr+1])<<8
}
func (m *fakeMem) Get32(addr uint32) uint32 {
	return uint32(m.Get16(addr)) | uint32(m.Get16(addr+2))<<16
}
func (m *fakeMem) Set8(addr uint32, v uint8) { m.b[addr] = v }
func (m *fakeMem) Set16(addr uint32, v uint16) {
	m.b[addr] = uint8(v)
	m.b[addr+1] = uint8(v >> 8)
}
func (m *fakeMem) Set32(addr uint32, v uint32) {
	m.Set16(addr, uint16(v))
	m.Set16(addr+2, uint16(v>>16))
}

func encodeR(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeI(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return uint32(imm)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func TestAdd(t *testing.T) {
	regs := &fakeRegs{}
	regs.Set(1, 10)
	regs.Set(2, 20)
	insn := encodeR(0b0110011, 3, 0b000, 1, 2, 0)
	res := Step(insn, 0, regs, &fakeMem{}, nil)
	if regs.Get(3) != 30 {
		t.Errorf("x3 = %d, want 30", regs.Get(3))
	}
	if res.NextPC != 4 || res.Halt {
		t.Errorf("res = %+v", res)
	}
}

func TestAddi(t *testing.T) {
	regs := &fakeRegs{}
	regs.Set(1, 5)
	insn := encodeI(0b0010011, 2, 0b000, 1, -1)
	Step(insn, 0, regs, &fakeMem{}, nil)
	if regs.Get(2) != 4 {
		t.Errorf("x2 = %d, want 4", regs.Get(2))
	}
}

func TestEbreakHalts(t *testing.T) {
	regs := &fakeRegs{}
	insn := uint32(0b1110011) | 0x00100000
	res := Step(insn, 0, regs, &fakeMem{}, nil)
	if !res.Halt {
		t.Error("expected ebreak to halt")
	}
}

func TestIllegalHalts(t *testing.T) {
	regs := &fakeRegs{}
	res := Step(0x7f, 0, regs, &fakeMem{}, nil)
	if !res.Halt {
		t.Error("expected illegal instruction to halt")
	}
}

func TestSRAMasksShiftAmountForComputeAndDisplay(t *testing.T) {
	regs := &fakeRegs{}
	neg8 := int32(-8)
	regs.Set(1, uint32(neg8))
	regs.Set(2, 0x21) // 33: masked to 1
	insn := encodeR(0b0110011, 3, 0b101, 1, 2, 0b0100000)
	var buf bytes.Buffer
	Step(insn, 0, regs, &fakeMem{}, &buf)
	if got := int32(regs.Get(3)); got != -4 {
		t.Errorf("x3 = %d, want -4 (shift masked to 1)", got)
	}
	if !strings.Contains(buf.String(), ">> 1 ") {
		t.Errorf("trace shift amount not masked: %q", buf.String())
	}
}

func TestSLLMasksShiftAmountTo5Bits(t *testing.T) {
	regs := &fakeRegs{}
	regs.Set(1, 1)
	regs.Set(2, 0x21) // 33: masked to 1
	insn := encodeR(0b0110011, 3, 0b001, 1, 2, 0)
	Step(insn, 0, regs, &fakeMem{}, nil)
	if regs.Get(3) != 2 {
		t.Errorf("x3 = %d, want 2 (1 << (33 & 31) == 1 << 1)", regs.Get(3))
	}
}

func TestSRLMasksShiftAmountTo5Bits(t *testing.T) {
	regs := &fakeRegs{}
	regs.Set(1, 0x80000000)
	regs.Set(2, 0x20) // 32: masked to 0
	insn := encodeR(0b0110011, 3, 0b101, 1, 2, 0)
	Step(insn, 0, regs, &fakeMem{}, nil)
	if regs.Get(3) != 0x80000000 {
		t.Errorf("x3 = %#x, want 0x80000000 (shift by 32 & 31 == 0)", regs.Get(3))
	}
}

func TestSRAIShowsSignedDecimalInTrace(t *testing.T) {
	regs := &fakeRegs{}
	neg16 := int32(-16)
	regs.Set(1, uint32(neg16))
	insn := encodeI(0b0010011, 2, 0b101, 1, 2) | (0b0100000 << 25)
	var buf bytes.Buffer
	Step(insn, 0, regs, &fakeMem{}, &buf)
	if got := int32(regs.Get(2)); got != -4 {
		t.Errorf("x2 = %d, want -4", got)
	}
	if !strings.Contains(buf.String(), "= -4\n") {
		t.Errorf("expected signed decimal result in trace, got %q", buf.String())
	}
}

func TestLoadStoreRoundTrip(t *testing.T) {
	regs := &fakeRegs{}
	mem := &fakeMem{}
	regs.Set(1, 0)
	regs.Set(2, 0xdeadbeef)
	sw := encodeI(0b0100011, 0, 0b010, 1, 0) | (2 << 20)
	Step(sw, 0, regs, mem, nil)
	lw := encodeI(0b0000011, 3, 0b010, 1, 0)
	Step(lw, 0, regs, mem, nil)
	if regs.Get(3) != 0xdeadbeef {
		t.Errorf("x3 = %#x, want 0xdeadbeef", regs.Get(3))
	}
}

func TestLBSignExtends(t *testing.T) {
	regs := &fakeRegs{}
	mem := &fakeMem{}
	mem.Set8(0, 0xff)
	lb := encodeI(0b0000011, 1, 0b000, 0, 0)
	Step(lb, 0, regs, mem, nil)
	if int32(regs.Get(1)) != -1 {
		t.Errorf("x1 = %d, want -1", int32(regs.Get(1)))
	}
}

func TestLBUZeroExtends(t *testing.T) {
	regs := &fakeRegs{}
	mem := &fakeMem{}
	mem.Set8(0, 0xff)
	lbu := encodeI(0b0000011, 1, 0b100, 0, 0)
	Step(lbu, 0, regs, mem, nil)
	if regs.Get(1) != 0xff {
		t.Errorf("x1 = %#x, want 0xff", regs.Get(1))
	}
}

func TestBranchTaken(t *testing.T) {
	regs := &fakeRegs{}
	regs.Set(1, 5)
	regs.Set(2, 5)
	beq := encodeR(0b1100011, 0, 0b000, 1, 2, 0) // imm_b = 0
	res := Step(beq, 0x100, regs, &fakeMem{}, nil)
	if res.NextPC != 0x100 {
		t.Errorf("NextPC = %#x, want 0x100 (taken, imm=0)", res.NextPC)
	}
}

func TestBranchNotTaken(t *testing.T) {
	regs := &fakeRegs{}
	regs.Set(1, 5)
	regs.Set(2, 6)
	beq := encodeR(0b1100011, 0, 0b000, 1, 2, 0)
	res := Step(beq, 0x100, regs, &fakeMem{}, nil)
	if res.NextPC != 0x104 {
		t.Errorf("NextPC = %#x, want 0x104 (not taken, +4)", res.NextPC)
	}
}

func TestJALSetsLinkAndTarget(t *testing.T) {
	regs := &fakeRegs{}
	insn := uint32(1<<7) | 0b1101111 // jal x1, imm_j=0
	res := Step(insn, 0x100, regs, &fakeMem{}, nil)
	if regs.Get(1) != 0x104 {
		t.Errorf("x1 = %#x, want 0x104", regs.Get(1))
	}
	if res.NextPC != 0x100 {
		t.Errorf("NextPC = %#x, want 0x100", res.NextPC)
	}
}

func TestJALRClearsLowBit(t *testing.T) {
	regs := &fakeRegs{}
	regs.Set(1, 0x201)
	jalr := encodeI(0b1100111, 2, 0b000, 1, 0)
	res := Step(jalr, 0x100, regs, &fakeMem{}, nil)
	if res.NextPC != 0x200 {
		t.Errorf("NextPC = %#x, want 0x200 (low bit cleared)", res.NextPC)
	}
}

func TestX0WritesDiscarded(t *testing.T) {
	regs := &fakeRegs{}
	insn := encodeI(0b0010011, 0, 0b000, 0, 42) // addi x0, x0, 42
	Step(insn, 0, regs, &fakeMem{}, nil)
	if regs.Get(0) != 0 {
		t.Errorf("x0 = %d, want 0", regs.Get(0))
	}
}
