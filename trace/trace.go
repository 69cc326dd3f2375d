// Package trace records structured per-instruction execution history,
// independent of the human-readable disassembly trace the core simulator
// writes while stepping. It supplements the reference simulator, which
// only ever printed trace text to stdout, with a machine-readable log
// suitable for post-run analysis.
package trace

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rv32isim/rv32i/hex"
)

// Entry is one instruction's recorded execution. Reg/RegValue are only
// meaningful when RegWritten is true: not every instruction writes a
// register (stores, branches, FENCE, ECALL/EBREAK never do).
type Entry struct {
	Sequence   uint64 `json:"sequence"`
	PC         uint32 `json:"pc"`
	Word       uint32 `json:"word"`
	Mnemonic   string `json:"mnemonic"`
	Halted     bool   `json:"halted"`
	RegWritten bool   `json:"reg_written"`
	Reg        uint32 `json:"reg,omitempty"`
	RegValue   uint32 `json:"reg_value,omitempty"`
}

// Recorder receives one Entry per executed instruction.
type Recorder interface {
	Record(e Entry)
}

// Log accumulates entries in memory, bounded by MaxEntries (0 = unbounded).
// It also implements Recorder so a Hart can write directly into it.
type Log struct {
	MaxEntries int
	entries    []Entry
}

// NewLog returns a Log that keeps at most max entries (0 = unbounded).
func NewLog(max int) *Log {
	return &Log{MaxEntries: max}
}

// Record appends e, dropping it silently once MaxEntries has been reached.
func (l *Log) Record(e Entry) {
	if l.MaxEntries > 0 && len(l.entries) >= l.MaxEntries {
		return
	}
	l.entries = append(l.entries, e)
}

// Entries returns the recorded entries in execution order.
func (l *Log) Entries() []Entry {
	return l.entries
}

// Reset discards all recorded entries.
func (l *Log) Reset() {
	l.entries = nil
}

// JSONLWriter is a Recorder that writes one JSON object per line to w.
type JSONLWriter struct {
	w   io.Writer
	enc *json.Encoder
}

// NewJSONLWriter wraps w as a JSON-lines Recorder.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{w: w, enc: json.NewEncoder(w)}
}

// Record writes e as one JSON line. Encoding errors are swallowed: a
// broken trace sink must not crash the simulator mid-run.
func (j *JSONLWriter) Record(e Entry) {
	_ = j.enc.Encode(e)
}

// CSVWriter is a Recorder that writes one CSV row per entry, with a
// header row written lazily before the first record.
type CSVWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewCSVWriter wraps w as a CSV Recorder.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// Record writes e as one CSV row, flushing after every row so a crash or
// an interrupted run never loses buffered history.
func (c *CSVWriter) Record(e Entry) {
	if !c.wroteHeader {
		_ = c.w.Write([]string{"sequence", "pc", "word", "mnemonic", "halted", "reg", "reg_value"})
		c.wroteHeader = true
	}
	reg, value := "", ""
	if e.RegWritten {
		reg = fmt.Sprintf("x%d", e.Reg)
		value = hex.Word8Prefixed(e.RegValue)
	}
	_ = c.w.Write([]string{
		fmt.Sprintf("%d", e.Sequence),
		hex.Word8Prefixed(e.PC),
		hex.Word8Prefixed(e.Word),
		e.Mnemonic,
		fmt.Sprintf("%t", e.Halted),
		reg,
		value,
	})
	c.w.Flush()
}

// Multi fans a single Record call out to several Recorders, e.g. an
// in-memory Log plus a JSONL file.
type Multi []Recorder

// Record forwards e to every Recorder in m.
func (m Multi) Record(e Entry) {
	for _, r := range m {
		if r != nil {
			r.Record(e)
		}
	}
}
