package dump

import (
	"strings"
	"testing"
)

type fakeMem struct {
	b []byte
}

func (m *fakeMem) Get8(addr uint32) uint8 { return m.b[addr] }
func (m *fakeMem) Size() uint32           { return uint32(len(m.b)) }

func TestDumpSingleLine(t *testing.T) {
	b := make([]byte, 16)
	for i := range b {
		b[i] = 0xa5
	}
	b[0] = 'A'
	var out strings.Builder
	Dump(&fakeMem{b}, &out)
	line := strings.TrimRight(out.String(), "\n")
	if !strings.HasPrefix(line, "00000000: 41 a5 a5 a5 a5 a5 a5 a5  a5 a5 a5 a5 a5 a5 a5 a5 ") {
		t.Errorf("got %q", line)
	}
	if !strings.HasSuffix(line, "*A...............*") {
		t.Errorf("got %q", line)
	}
}

func TestDumpTwoLines(t *testing.T) {
	b := make([]byte, 32)
	var out strings.Builder
	Dump(&fakeMem{b}, &out)
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[1], "00000010: ") {
		t.Errorf("second line address = %q", lines[1])
	}
}

func TestDumpEmptyProducesNothing(t *testing.T) {
	var out strings.Builder
	Dump(&fakeMem{nil}, &out)
	if out.Len() != 0 {
		t.Errorf("expected no output for empty memory, got %q", out.String())
	}
}

func TestDumpNHonorsConfiguredWidth(t *testing.T) {
	b := make([]byte, 8)
	for i := range b {
		b[i] = 0xa5
	}
	var out strings.Builder
	DumpN(&fakeMem{b}, &out, 8)
	line := strings.TrimRight(out.String(), "\n")
	if !strings.HasPrefix(line, "00000000: a5 a5 a5 a5  a5 a5 a5 a5 ") {
		t.Errorf("got %q", line)
	}
	if !strings.HasSuffix(line, "*........*") {
		t.Errorf("got %q", line)
	}
}

func TestDumpNZeroFallsBackToSixteen(t *testing.T) {
	b := make([]byte, 16)
	var direct, viaZero strings.Builder
	Dump(&fakeMem{b}, &direct)
	DumpN(&fakeMem{b}, &viaZero, 0)
	if direct.String() != viaZero.String() {
		t.Errorf("DumpN(0) = %q, want %q", viaZero.String(), direct.String())
	}
}
