// Package cpu implements the RV32I hart driver: the register file plus
// the fetch/decode/execute loop that ties together the isa, decode, and
// exec packages against a backing memory.
package cpu

import (
	"fmt"
	"io"

	"github.com/rv32isim/rv32i/decode"
	"github.com/rv32isim/rv32i/exec"
	"github.com/rv32isim/rv32i/hex"
	"github.com/rv32isim/rv32i/trace"
)

// Memory is the backing store a Hart fetches instructions from and that
// load/store instructions operate on.
type Memory interface {
	exec.Memory
	Get32(addr uint32) uint32
	Size() uint32
}

// Hart drives a single RISC-V hardware thread: a register file, a
// program counter, and the fetch/decode/execute cycle.
type Hart struct {
	Regs *RegisterFile
	Mem  Memory

	pc      uint32
	halted  bool
	insnCnt uint64

	// ShowInstructions, when true, makes Tick write a disassembly-plus-
	// commentary trace line for every instruction to Trace.
	ShowInstructions bool
	// ShowRegisters, when true, makes Tick dump the full register file
	// to Trace before each instruction executes.
	ShowRegisters bool
	// Trace receives the optional per-instruction output. Defaults to
	// os.Stdout-equivalent behavior is the caller's responsibility; a
	// nil Trace silences all tracing regardless of the Show* flags.
	Trace io.Writer

	// Recorder, when set, receives one trace.Entry per executed
	// instruction regardless of the Show* flags, for machine-readable
	// post-run analysis independent of the human-readable Trace stream.
	Recorder trace.Recorder
}

// NewHart returns a Hart bound to mem, with its register file already
// reset.
func NewHart(mem Memory) *Hart {
	return &Hart{Regs: NewRegisterFile(), Mem: mem}
}

// Reset zeroes the program counter and instruction counter, clears the
// halt flag, and resets the register file.
func (h *Hart) Reset() {
	h.pc = 0
	h.insnCnt = 0
	h.halted = false
	h.Regs.Reset()
}

// PC returns the current program counter.
func (h *Hart) PC() uint32 { return h.pc }

// SetPC overrides the program counter, e.g. to set an explicit entry point.
func (h *Hart) SetPC(pc uint32) { h.pc = pc }

// InstructionCount returns the number of instructions Tick has executed.
func (h *Hart) InstructionCount() uint64 { return h.insnCnt }

// IsHalted reports whether the hart has stopped (EBREAK, ECALL, an illegal
// instruction, or an instruction-limit cutoff in Run).
func (h *Hart) IsHalted() bool { return h.halted }

// Dump writes the register file and program counter to w, matching the
// reference simulator's "8 registers per line, then pc" layout.
func (h *Hart) Dump(w io.Writer) {
	h.Regs.Dump(w)
	fmt.Fprintf(w, " pc %s\n", hex.Word8(h.pc))
}

// Disasm writes a full disassembly of every 4-byte-aligned word in mem to
// w: address, raw word, and the decoded mnemonic text.
func (h *Hart) Disasm(w io.Writer) {
	for addr := uint32(0); addr < h.Mem.Size(); addr += 4 {
		word := h.Mem.Get32(addr)
		fmt.Fprintf(w, "%s: %s  %s\n", hex.Word8(addr), hex.Word8(word), decode.Render(word, addr))
	}
}

// Tick executes a single instruction, unless the hart is already halted.
func (h *Hart) Tick() {
	if h.halted {
		return
	}
	h.insnCnt++

	if h.ShowRegisters && h.Trace != nil {
		h.Dump(h.Trace)
	}

	insn := h.Mem.Get32(h.pc)

	var w io.Writer
	if h.ShowInstructions {
		w = h.Trace
		if w != nil {
			fmt.Fprintf(w, "%s: %s  ", hex.Word8(h.pc), hex.Word8(insn))
		}
	}

	res := exec.Step(insn, h.pc, h.Regs, h.Mem, w)

	if h.Recorder != nil {
		kind := decode.Decode(insn)
		entry := trace.Entry{
			Sequence: h.insnCnt,
			PC:       h.pc,
			Word:     insn,
			Mnemonic: decode.Mnemonic(kind),
			Halted:   res.Halt,
		}
		if rd, ok := decode.DestRegister(kind, insn); ok {
			entry.RegWritten = true
			entry.Reg = rd
			entry.RegValue = h.Regs.Get(rd)
		}
		h.Recorder.Record(entry)
	}

	h.pc = res.NextPC
	if res.Halt {
		h.halted = true
	}
}

// Run executes instructions until the hart halts or, when limit is
// nonzero, until limit instructions have executed. Register x2 (the
// stack pointer) is seeded with the memory size before the first
// instruction, matching the reference simulator's convention of placing
// the initial stack at the top of memory. The termination banner is
// printed unconditionally: it does not distinguish EBREAK from an
// illegal instruction or from hitting limit.
func (h *Hart) Run(limit uint64, banner io.Writer) {
	h.Regs.Set(2, h.Mem.Size())

	for !h.halted {
		if limit != 0 && h.insnCnt == limit {
			h.halted = true
			break
		}
		h.Tick()
	}

	if banner != nil {
		fmt.Fprintln(banner, "Execution terminated by EBREAK instruction")
		fmt.Fprintf(banner, "%d instructions executed\n", h.insnCnt)
	}
}
