// Package dump renders a memory's contents as a hex-plus-ASCII listing,
// with a gutter at the halfway column and an ASCII sidebar on the right.
// Dump fixes the width at the reference 16 bytes per line; DumpN takes an
// arbitrary width for callers that honor a configurable line length.
package dump

import (
	"fmt"
	"io"

	"github.com/rv32isim/rv32i/hex"
)

// ByteSource is the minimal memory surface the dumper needs.
type ByteSource interface {
	Get8(addr uint32) uint8
	Size() uint32
}

func printable(b byte) byte {
	if b >= 0x20 && b < 0x7f {
		return b
	}
	return '.'
}

// Dump writes mem's contents to w in the reference hex-dump layout: 16
// bytes per line. This is the fixed format the "-z" end-of-run dump uses.
func Dump(mem ByteSource, w io.Writer) {
	DumpN(mem, w, 16)
}

// DumpN is Dump generalized to an arbitrary line width, with the gutter
// falling at the halfway column. The debugger's "x" command uses this to
// honor config.Display.BytesPerLine instead of the fixed reference width.
func DumpN(mem ByteSource, w io.Writer, bytesPerLine int) {
	if bytesPerLine <= 0 {
		bytesPerLine = 16
	}
	half := bytesPerLine / 2
	size := mem.Size()
	ascii := make([]byte, bytesPerLine)

	for i := uint32(0); i < size; i++ {
		col := int(i % uint32(bytesPerLine))
		if i != 0 && col == 0 {
			fmt.Fprintf(w, "*%s*\n", string(ascii))
		}

		b := mem.Get8(i)
		ascii[col] = printable(b)

		switch {
		case col == 0:
			fmt.Fprintf(w, "%s: ", hex.Word8(i))
		case half > 0 && col == half:
			fmt.Fprint(w, " ")
		}

		fmt.Fprintf(w, "%s ", hex.Byte2(b))
	}

	if size > 0 {
		tail := int(size % uint32(bytesPerLine))
		if tail == 0 {
			tail = bytesPerLine
		}
		fmt.Fprintf(w, "*%s*\n", string(ascii[:tail]))
	}
}
