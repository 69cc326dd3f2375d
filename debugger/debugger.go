// Package debugger implements an interactive breakpoint debugger for the
// RV32I hart: a command dispatcher usable from a plain CLI loop or from
// the tcell/tview TUI, both driving the same cpu.Hart core the
// straight-through CLI path uses.
package debugger

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rv32isim/rv32i/cpu"
	"github.com/rv32isim/rv32i/decode"
	"github.com/rv32isim/rv32i/dump"
	"github.com/rv32isim/rv32i/hex"
)

// StepMode distinguishes how ShouldBreak decides to stop execution.
type StepMode int

const (
	StepNone   StepMode = iota // run until halt or breakpoint
	StepSingle                 // stop after the next instruction
)

// Debugger holds the breakpoint/step state layered on top of a Hart.
type Debugger struct {
	Hart *cpu.Hart

	Breakpoints *BreakpointManager
	History     *CommandHistory

	Running  bool
	StepMode StepMode

	// LastCommand is repeated when the user submits an empty line.
	LastCommand string

	// Output accumulates text produced by command handlers; the CLI and
	// TUI front ends drain it with GetOutput after each command.
	Output strings.Builder

	// BytesPerLine sets the "x" command's memory-dump width; DisasmContext
	// sets "list"'s and the TUI disassembly panel's default instruction
	// count. Both come from config.Config.Display. ColorOutput gates the
	// TUI's tview color tags.
	BytesPerLine  int
	DisasmContext int
	ColorOutput   bool
}

// Options configures a Debugger's display and history behavior. It is a
// plain struct, not *config.Config, so this package never imports config;
// callers translate config.Config.Debugger/Display into an Options.
type Options struct {
	HistorySize   int
	BytesPerLine  int
	DisasmContext int
	ColorOutput   bool
}

// NewDebugger returns a Debugger driving hart, with empty breakpoint and
// history state. Zero-valued fields in opts fall back to the reference
// defaults (history 1000, 16 bytes per line, 16 instructions of context).
func NewDebugger(hart *cpu.Hart, opts Options) *Debugger {
	if opts.HistorySize <= 0 {
		opts.HistorySize = 1000
	}
	if opts.BytesPerLine <= 0 {
		opts.BytesPerLine = 16
	}
	if opts.DisasmContext <= 0 {
		opts.DisasmContext = DisassemblyWindowInstructions
	}
	return &Debugger{
		Hart:          hart,
		Breakpoints:   NewBreakpointManager(),
		History:       NewCommandHistory(opts.HistorySize),
		StepMode:      StepNone,
		BytesPerLine:  opts.BytesPerLine,
		DisasmContext: opts.DisasmContext,
		ColorOutput:   opts.ColorOutput,
	}
}

// colorize wraps text in a tview color tag pair when ColorOutput is
// enabled, and returns it unchanged otherwise.
func (d *Debugger) colorize(text, color string) string {
	if !d.ColorOutput {
		return text
	}
	return fmt.Sprintf("[%s]%s[white]", color, text)
}

// ResolveAddress parses a hex (0x-prefixed) or decimal address string.
func (d *Debugger) ResolveAddress(s string) (uint32, error) {
	var addr uint32
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if _, err := fmt.Sscanf(s, "0x%x", &addr); err != nil {
			return 0, fmt.Errorf("invalid address: %s", s)
		}
		return addr, nil
	}
	if _, err := fmt.Sscanf(s, "%d", &addr); err != nil {
		return 0, fmt.Errorf("invalid address: %s", s)
	}
	return addr, nil
}

// ExecuteCommand parses and dispatches one command line. An empty line
// repeats the last non-empty command, matching gdb's convention for
// "step"/"next" style repetition.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}
	return d.handleCommand(strings.ToLower(parts[0]), parts[1:])
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s", "si":
		return d.cmdStep(args)
	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "print", "p":
		return d.cmdPrint(args)
	case "set":
		return d.cmdSet(args)
	case "x":
		return d.cmdExamine(args)
	case "list", "l":
		return d.cmdList(args)
	case "reset":
		return d.cmdReset(args)
	case "help", "h", "?":
		return d.cmdHelp(args)
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak reports whether execution should pause before the
// instruction at the hart's current pc, and why.
func (d *Debugger) ShouldBreak() (bool, string) {
	if d.StepMode == StepSingle {
		d.StepMode = StepNone
		return true, "single step"
	}

	pc := d.Hart.PC()
	if bp := d.Breakpoints.GetBreakpoint(pc); bp != nil && bp.Enabled {
		hit := d.Breakpoints.ProcessHit(pc)
		return true, fmt.Sprintf("breakpoint %d", hit.ID)
	}

	return false, ""
}

// GetOutput returns and clears the accumulated command output.
func (d *Debugger) GetOutput() string {
	out := d.Output.String()
	d.Output.Reset()
	return out
}

// Printf appends formatted text to the output buffer.
func (d *Debugger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&d.Output, format, args...)
}

// Println appends a line to the output buffer.
func (d *Debugger) Println(args ...interface{}) {
	fmt.Fprintln(&d.Output, args...)
}

// disassembleAround renders n instructions starting at the hart's pc,
// used by both "list" and the TUI's disassembly panel.
func (d *Debugger) disassembleAround(n int) string {
	var buf bytes.Buffer
	pc := d.Hart.PC()
	for i := 0; i < n && uint64(pc)+uint64(i*4) < uint64(d.Hart.Mem.Size()); i++ {
		addr := pc + uint32(i*4)
		word := d.Hart.Mem.Get32(addr)
		marker := "  "
		if addr == d.Hart.PC() {
			marker = "=>"
		}
		fmt.Fprintf(&buf, "%s %s: %s  %s\n", marker, hex.Word8(addr), hex.Word8(word), decode.Render(word, addr))
	}
	return buf.String()
}

// memoryAround renders a 256-byte memory dump starting at addr, at
// BytesPerLine bytes per line.
func (d *Debugger) memoryAround(addr uint32) string {
	var buf bytes.Buffer
	dump.DumpN(&addrWindow{mem: d.Hart.Mem, base: addr}, &buf, d.BytesPerLine)
	return buf.String()
}

// addrWindow adapts a cpu.Memory to dump.ByteSource over a bounded window
// starting at an arbitrary base address.
type addrWindow struct {
	mem  cpu.Memory
	base uint32
	size uint32
}

func (a *addrWindow) Get8(off uint32) uint8 { return a.mem.Get8(a.base + off) }
func (a *addrWindow) Size() uint32 {
	if a.size != 0 {
		return a.size
	}
	const window = MemoryWindowBytes
	if remaining := a.mem.Size() - a.base; remaining < window {
		return remaining
	}
	return window
}
