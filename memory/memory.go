// Package memory implements the simulator's flat, byte-addressable memory:
// a fixed-size array of bytes with bounds-checked little-endian 8/16/32-bit
// accesses and a one-shot raw binary loader.
package memory

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Sentinel is the byte value every memory location starts at.
const Sentinel = 0xa5

// roundUp16 rounds siz up to the next multiple of 16, matching the
// reference simulator's `(siz+15) & ~0xf`.
func roundUp16(siz uint32) uint32 {
	return (siz + 15) &^ 0xf
}

// Memory is a fixed-size, byte-addressable memory. The zero value is not
// usable; construct with New.
type Memory struct {
	bytes []byte

	// AccessCount, ReadCount, and WriteCount track in-range accesses, in
	// the spirit of the teacher emulator's memory access counters.
	AccessCount uint64
	ReadCount   uint64
	WriteCount  uint64

	// Warnings, when non-nil, receives one line per out-of-range access.
	// Defaults to os.Stdout so standalone runs see the warnings the
	// reference simulator prints there.
	Warnings io.Writer
}

// New allocates a Memory of the requested size, rounded up to a multiple
// of 16, with every byte initialized to Sentinel.
func New(requested uint32) *Memory {
	size := roundUp16(requested)
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = Sentinel
	}
	return &Memory{bytes: buf, Warnings: os.Stdout}
}

// Size returns the rounded-up allocation size.
func (m *Memory) Size() uint32 {
	return uint32(len(m.bytes))
}

// CheckAddress reports whether addr lies in [0, Size()). On failure it
// emits a warning line to m.Warnings (if set) before returning false.
func (m *Memory) CheckAddress(addr uint32) bool {
	if uint64(addr) < uint64(len(m.bytes)) {
		return true
	}
	if m.Warnings != nil {
		fmt.Fprintf(m.Warnings, "WARNING: Address out of range: 0x%08x\n", addr)
	}
	return false
}

// Get8 reads a single byte. Out-of-range reads return 0.
func (m *Memory) Get8(addr uint32) uint8 {
	if !m.CheckAddress(addr) {
		return 0
	}
	m.AccessCount++
	m.ReadCount++
	return m.bytes[addr]
}

// Get16 reads a little-endian halfword, composed from two Get8 calls.
func (m *Memory) Get16(addr uint32) uint16 {
	lo := m.Get8(addr)
	hi := m.Get8(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}

// Get32 reads a little-endian word, composed from two Get16 calls.
func (m *Memory) Get32(addr uint32) uint32 {
	lo := m.Get16(addr)
	hi := m.Get16(addr + 2)
	return uint32(lo) | uint32(hi)<<16
}

// Set8 writes a single byte. Out-of-range writes are silently dropped.
func (m *Memory) Set8(addr uint32, val uint8) {
	if !m.CheckAddress(addr) {
		return
	}
	m.AccessCount++
	m.WriteCount++
	m.bytes[addr] = val
}

// Set16 writes a little-endian halfword, composed from two Set8 calls.
func (m *Memory) Set16(addr uint32, val uint16) {
	m.Set8(addr, uint8(val))
	m.Set8(addr+1, uint8(val>>8))
}

// Set32 writes a little-endian word, composed from two Set16 calls.
func (m *Memory) Set32(addr uint32, val uint32) {
	m.Set16(addr, uint16(val))
	m.Set16(addr+2, uint16(val>>16))
}

// LoadFile reads path as a raw binary image into memory starting at
// address 0. It reports an open failure or an image that overflows the
// memory via the returned error; callers are expected to treat either as
// a fatal CLI error.
func (m *Memory) LoadFile(path string) error {
	f, err := os.Open(path) // #nosec G304 -- path is a user-supplied CLI argument
	if err != nil {
		return fmt.Errorf("can't open file '%s' for reading: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var addr uint32
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n == 1 {
			if uint64(addr) >= uint64(len(m.bytes)) {
				return fmt.Errorf("program too big")
			}
			m.bytes[addr] = buf[0]
			addr++
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading '%s': %w", path, err)
		}
	}
}
