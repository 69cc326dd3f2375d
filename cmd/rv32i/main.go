// Command rv32i simulates a single RISC-V RV32I hart against a flat
// binary image: decode, execute, trace, or disassemble it, optionally
// under the interactive breakpoint debugger or the HTTP/WebSocket
// introspection server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rv32isim/rv32i/config"
	"github.com/rv32isim/rv32i/cpu"
	"github.com/rv32isim/rv32i/debugger"
	"github.com/rv32isim/rv32i/debugserver"
	"github.com/rv32isim/rv32i/dump"
	"github.com/rv32isim/rv32i/loader"
	"github.com/rv32isim/rv32i/memory"
	"github.com/rv32isim/rv32i/trace"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: rv32i [-m HEX_MEM_SIZE] [-l EXEC_LIMIT] [-d] [-i] [-r] [-z] "+
		"[-config FILE] [-tui] [-http ADDR] [-fsroot DIR] [-trace-file FILE] [-trace-format jsonl|csv] INFILE")
	flag.PrintDefaults()
}

func main() {
	var (
		memSize     = flag.String("m", "", "memory size, hexadecimal without 0x prefix (default 10000)")
		limit       = flag.Uint64("l", 0, "maximum instruction count, decimal (0 = unlimited)")
		disasm      = flag.Bool("d", false, "print a full disassembly pass, then reset and run")
		showInsn    = flag.Bool("i", false, "per-instruction trace")
		showRegs    = flag.Bool("r", false, "dump registers before each instruction")
		dumpAtEnd   = flag.Bool("z", false, "dump registers and memory after execution halts")
		configPath  = flag.String("config", "", "path to a TOML config file")
		tuiMode     = flag.Bool("tui", false, "launch the interactive breakpoint debugger")
		httpAddr    = flag.String("http", "", "serve the HTTP/WebSocket introspection API on this address instead of running")
		fsRoot      = flag.String("fsroot", "", "restrict the input file path to this directory")
		traceFile   = flag.String("trace-file", "", "structured trace log output file")
		traceFormat = flag.String("trace-format", "", "structured trace log format: jsonl or csv (default from config, jsonl)")
	)

	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() != 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sizeHex := cfg.Execution.MemorySize
	if *memSize != "" {
		sizeHex = *memSize
	}
	size, err := strconv.ParseUint(sizeHex, 16, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -m value %q: %v\n", sizeHex, err)
		printUsage()
		os.Exit(1)
	}

	insnLimit := cfg.Execution.InstrLimit
	if *limit != 0 {
		insnLimit = *limit
	}

	inPath, err := loader.ResolvePath(*fsRoot, flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printUsage()
		os.Exit(1)
	}

	mem := memory.New(uint32(size))
	if err := mem.LoadFile(inPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		printUsage()
		os.Exit(1)
	}

	hart := cpu.NewHart(mem)
	hart.ShowInstructions = *showInsn || cfg.Execution.ShowTrace
	hart.ShowRegisters = *showRegs || cfg.Execution.ShowRegisters
	hart.Trace = os.Stdout

	if rec, closeFn, err := structuredRecorder(cfg, *traceFile, *traceFormat); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	} else if rec != nil {
		hart.Recorder = rec
		defer closeFn()
	}

	if *httpAddr != "" {
		runHTTP(hart, *httpAddr, cfg.Trace.MaxEntries)
		return
	}

	if *tuiMode {
		dbg := debugger.NewDebugger(hart, debugger.Options{
			HistorySize:   cfg.Debugger.HistorySize,
			BytesPerLine:  cfg.Display.BytesPerLine,
			DisasmContext: cfg.Display.DisasmContext,
			ColorOutput:   cfg.Display.ColorOutput,
		})
		if err := debugger.RunTUI(dbg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *disasm {
		hart.Disasm(os.Stdout)
		hart.Reset()
	}

	hart.Run(insnLimit, os.Stdout)

	if *dumpAtEnd {
		hart.Dump(os.Stdout)
		dump.Dump(mem, os.Stdout)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// structuredRecorder builds the optional machine-readable trace.Recorder
// requested via -trace-file/-trace-format (or the config file's [trace]
// section), and a close function to flush/close its backing file.
func structuredRecorder(cfg *config.Config, fileFlag, formatFlag string) (trace.Recorder, func(), error) {
	path := cfg.Trace.OutputFile
	if fileFlag != "" {
		path = fileFlag
	}
	if path == "" {
		return nil, func() {}, nil
	}

	format := cfg.Trace.Format
	if formatFlag != "" {
		format = formatFlag
	}

	f, err := os.Create(path) // #nosec G304 -- user-supplied CLI/config trace path
	if err != nil {
		return nil, nil, fmt.Errorf("creating trace file: %w", err)
	}
	closeFn := func() { _ = f.Close() }

	switch format {
	case "csv":
		return trace.NewCSVWriter(f), closeFn, nil
	case "jsonl", "":
		return trace.NewJSONLWriter(f), closeFn, nil
	default:
		closeFn()
		return nil, nil, fmt.Errorf("unknown trace format: %s", format)
	}
}

// runHTTP serves the introspection API until interrupted. maxTraceEntries
// bounds the in-memory history behind the server's /api/trace endpoint.
func runHTTP(hart *cpu.Hart, addr string, maxTraceEntries int) {
	srv := debugserver.NewServer(addr, hart, maxTraceEntries)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}()

	<-sigCh
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
