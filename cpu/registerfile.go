package cpu

import (
	"fmt"
	"io"

	"github.com/rv32isim/rv32i/hex"
)

// resetValue is the value every general-purpose register other than x0
// holds immediately after Reset, matching the reference simulator's
// "obviously uninitialized" poison pattern.
const resetValue = 0xf0f0f0f0

// numRegisters is the size of the integer register file, x0..x31.
const numRegisters = 32

// RegisterFile is the RV32I integer register file. x0 is hard-wired to
// zero: Set is a no-op for register 0 and Get always returns 0 for it.
type RegisterFile struct {
	regs [numRegisters]uint32
}

// NewRegisterFile returns a register file already in its reset state.
func NewRegisterFile() *RegisterFile {
	rf := &RegisterFile{}
	rf.Reset()
	return rf
}

// Reset sets x0 to zero and every other register to the poison pattern.
func (rf *RegisterFile) Reset() {
	rf.regs[0] = 0
	for i := 1; i < numRegisters; i++ {
		rf.regs[i] = resetValue
	}
}

// Get returns the value of register r. Register 0 always reads as zero.
func (rf *RegisterFile) Get(r uint32) uint32 {
	if r == 0 {
		return 0
	}
	return rf.regs[r&0x1f]
}

// Set writes val to register r. Writes to register 0 are silently
// discarded.
func (rf *RegisterFile) Set(r uint32, val uint32) {
	if r == 0 {
		return
	}
	rf.regs[r&0x1f] = val
}

// Dump writes all 32 registers to w, 8 per line, each line introduced by
// its first register's "xN" label right-justified to 3 columns.
func (rf *RegisterFile) Dump(w io.Writer) {
	for i := uint32(0); i < numRegisters; i++ {
		if i != 0 && i%8 == 0 {
			fmt.Fprintln(w)
		}
		if i%8 == 0 {
			fmt.Fprintf(w, "%3s ", fmt.Sprintf("x%d", i))
		}
		fmt.Fprintf(w, "%s ", hex.Word8(rf.Get(i)))
	}
	fmt.Fprintln(w)
}
