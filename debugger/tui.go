package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI is the tcell/tview front end for the debugger: registers,
// disassembly, memory, and breakpoints panels around a command line.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	RegisterView    *tview.TextView
	MemoryView      *tview.TextView
	DisassemblyView *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField

	MemoryAddress uint32
}

// NewTUI builds the panel layout around dbg, without starting the
// application event loop.
func NewTUI(dbg *Debugger) *TUI {
	t := &TUI{Debugger: dbg, App: tview.NewApplication()}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	return t
}

func (t *TUI) initializeViews() {
	t.RegisterView = tview.NewTextView().SetDynamicColors(true).SetScrollable(false)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.DisassemblyView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.BreakpointsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.DisassemblyView, 0, 2, false).
		AddItem(t.MemoryView, 0, 1, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 12, 0, false).
		AddItem(t.BreakpointsView, 0, 1, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	if cmd == "" {
		return
	}
	if c := strings.TrimSpace(cmd); c == "quit" || c == "q" || c == "exit" {
		t.App.Stop()
		return
	}
	t.executeCommand(cmd)
	t.CommandInput.SetText("")
}

func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()
	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()

	if err != nil {
		t.WriteOutput(t.Debugger.colorize(fmt.Sprintf("Error: %v", err), "red") + "\n")
	}
	if output != "" {
		t.WriteOutput(output)
	}

	if t.Debugger.Running {
		for t.Debugger.Running {
			if shouldBreak, reason := t.Debugger.ShouldBreak(); shouldBreak {
				t.Debugger.Running = false
				stopped := fmt.Sprintf("Stopped: %s at pc=0x%08X", reason, t.Debugger.Hart.PC())
				t.WriteOutput(t.Debugger.colorize(stopped, "yellow") + "\n")
				break
			}
			t.Debugger.Hart.Tick()
			if t.Debugger.Hart.IsHalted() {
				t.Debugger.Running = false
				t.WriteOutput(fmt.Sprintf("%d instructions executed\n", t.Debugger.Hart.InstructionCount()))
				break
			}
		}
	}

	t.RefreshAll()
}

// WriteOutput appends text to the output panel and scrolls to it.
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

// RefreshAll redraws every panel from current debugger state.
func (t *TUI) RefreshAll() {
	t.UpdateRegisterView()
	t.UpdateMemoryView()
	t.UpdateDisassemblyView()
	t.UpdateBreakpointsView()
	t.App.Draw()
}

// UpdateRegisterView redraws the register panel, 4 registers per row.
func (t *TUI) UpdateRegisterView() {
	var lines []string
	for row := 0; row < 32/RegisterViewColumns; row++ {
		var cols []string
		for col := 0; col < RegisterViewColumns; col++ {
			reg := uint32(row*RegisterViewColumns + col)
			cols = append(cols, fmt.Sprintf("x%-2d: 0x%08X", reg, t.Debugger.Hart.Regs.Get(reg)))
		}
		lines = append(lines, strings.Join(cols, "  "))
	}
	lines = append(lines, fmt.Sprintf("pc: 0x%08X  insns: %d", t.Debugger.Hart.PC(), t.Debugger.Hart.InstructionCount()))
	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

// UpdateMemoryView redraws a 256-byte memory window at MemoryAddress
// (defaulting to pc).
func (t *TUI) UpdateMemoryView() {
	addr := t.MemoryAddress
	if addr == 0 {
		addr = t.Debugger.Hart.PC()
	}
	t.MemoryView.SetText(t.Debugger.memoryAround(addr))
}

// UpdateDisassemblyView redraws the disassembly panel around pc.
func (t *TUI) UpdateDisassemblyView() {
	t.DisassemblyView.SetText(t.Debugger.disassembleAround(t.Debugger.DisasmContext))
}

// UpdateBreakpointsView redraws the breakpoint list.
func (t *TUI) UpdateBreakpointsView() {
	bps := t.Debugger.Breakpoints.GetAllBreakpoints()
	if len(bps) == 0 {
		t.BreakpointsView.SetText(t.Debugger.colorize("No breakpoints set", "yellow"))
		return
	}
	var lines []string
	for _, bp := range bps {
		status, color := "enabled", "green"
		if !bp.Enabled {
			status, color = "disabled", "red"
		}
		lines = append(lines, fmt.Sprintf("%d: %s 0x%08X (hits: %d)", bp.ID, t.Debugger.colorize(status, color), bp.Address, bp.HitCount))
	}
	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// Run starts the TUI event loop; it blocks until the application exits.
func (t *TUI) Run() error {
	t.RefreshAll()
	t.WriteOutput(t.Debugger.colorize("RV32I Debugger", "green") + "\n")
	t.WriteOutput("Press F1 for help, F5 to continue, F11 to step\n")
	t.WriteOutput("Type 'help' for the command list\n\n")
	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop terminates the TUI event loop.
func (t *TUI) Stop() {
	t.App.Stop()
}
