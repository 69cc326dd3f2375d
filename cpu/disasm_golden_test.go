package cpu_test

import (
	"bytes"
	"testing"

	"github.com/rv32isim/rv32i/cpu"
	"github.com/rv32isim/rv32i/memory"
)

// TestDisasmGoldenFixedImage feeds a fixed 16-byte image through Disasm and
// checks the output against an exact reference string, exercising mnemonic
// width, immediate formatting, and operand ordering together.
func TestDisasmGoldenFixedImage(t *testing.T) {
	prog := asm(
		0x00500093, // addi x1, x0, 5
		0x12345137, // lui x2, 0x12345
		0x002081B3, // add x3, x1, x2
		0b1110011|0x00100000, // ebreak
	)
	mem := memory.New(uint32(len(prog)))
	mem.Warnings = nil
	for i, b := range prog {
		mem.Set8(uint32(i), b)
	}
	h := cpu.NewHart(mem)

	var out bytes.Buffer
	h.Disasm(&out)

	want := "" +
		"00000000: 00500093  addi    x1,x0,5\n" +
		"00000004: 12345137  lui     x2,0x12345\n" +
		"00000008: 002081b3  add     x3,x1,x2\n" +
		"0000000c: 00100073  ebreak\n"

	if out.String() != want {
		t.Errorf("Disasm output mismatch.\ngot:\n%s\nwant:\n%s", out.String(), want)
	}
}
