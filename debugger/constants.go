package debugger

// TUI display constants.
const (
	// DisplayUpdateFrequency is not read by the TUI: during a "continue"
	// run the panels are redrawn only once the run stops.
	DisplayUpdateFrequency = 100

	// MemoryWindowBytes is the size of the memory dump window shown in
	// the TUI's memory panel and the "x" command.
	MemoryWindowBytes = 256

	// DisassemblyWindowInstructions is the instruction count the TUI's
	// disassembly panel and "list" use when Options.DisasmContext is unset.
	DisassemblyWindowInstructions = 16

	// RegisterViewColumns is the number of registers shown per row in
	// the register panel.
	RegisterViewColumns = 4
)
