package memory

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoundsSizeAndFillsSentinel(t *testing.T) {
	m := New(1)
	require.Equal(t, uint32(16), m.Size())
	for addr := uint32(0); addr < m.Size(); addr++ {
		assert.Equalf(t, uint8(Sentinel), m.Get8(addr), "Get8(%d)", addr)
	}
}

func TestNewAlreadyMultipleOf16(t *testing.T) {
	m := New(32)
	assert.Equal(t, uint32(32), m.Size())
}

func TestOutOfRangeReadsReturnZeroAndWarn(t *testing.T) {
	m := New(16)
	var warn bytes.Buffer
	m.Warnings = &warn
	assert.Equal(t, uint8(0), m.Get8(100), "out-of-range read should yield 0")
	assert.NotZero(t, warn.Len(), "expected a warning to be emitted")
}

func TestOutOfRangeWritesAreDropped(t *testing.T) {
	m := New(16)
	m.Warnings = nil
	m.Set8(1000, 0xff)
	assert.Equal(t, uint8(Sentinel), m.Get8(0), "in-range memory must be untouched by a dropped write")
}

func TestLittleEndianRoundTrip32(t *testing.T) {
	m := New(16)
	m.Set32(0, 0xdeadbeef)
	require.Equal(t, uint32(0xdeadbeef), m.Get32(0))
	assert.Equal(t, uint8(0xef), m.Get8(0), "low byte (little-endian)")
	assert.Equal(t, uint8(0xde), m.Get8(3), "high byte (little-endian)")
}

func TestLittleEndianRoundTrip16(t *testing.T) {
	m := New(16)
	m.Set16(4, 0xbeef)
	assert.Equal(t, uint16(0xbeef), m.Get16(4))
}

func TestLoadFileWritesFromAddressZero(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.bin")
	data := []byte{0x93, 0x00, 0x50, 0x00, 0x73, 0x00, 0x10, 0x00}
	require.NoError(t, os.WriteFile(path, data, 0o600))

	m := New(16)
	require.NoError(t, m.LoadFile(path))
	for i, b := range data {
		assert.Equalf(t, b, m.Get8(uint32(i)), "byte %d", i)
	}
}

func TestLoadFileMissingFile(t *testing.T) {
	m := New(16)
	assert.Error(t, m.LoadFile("/no/such/file"))
}

func TestLoadFileTooBig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o600))
	m := New(16) // rounds to 16 bytes, smaller than the file
	assert.Error(t, m.LoadFile(path), "expected 'program too big' error")
}
