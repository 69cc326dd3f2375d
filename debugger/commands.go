package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rv32isim/rv32i/hex"
)

// cmdRun resets the hart and starts execution from address 0.
func (d *Debugger) cmdRun(args []string) error {
	d.Hart.Reset()
	d.Running = true
	d.StepMode = StepNone
	d.Println("Starting program execution...")
	return nil
}

// cmdContinue resumes execution without resetting.
func (d *Debugger) cmdContinue(args []string) error {
	if d.Hart.IsHalted() {
		return fmt.Errorf("program is not running")
	}
	// Execute the instruction under an enabled breakpoint at pc first, so
	// the run loop does not stop on it again before making progress.
	if bp := d.Breakpoints.GetBreakpoint(d.Hart.PC()); bp != nil && bp.Enabled {
		d.Hart.Tick()
	}
	d.Running = true
	d.StepMode = StepNone
	d.Println("Continuing...")
	return nil
}

// cmdStep executes exactly one instruction.
func (d *Debugger) cmdStep(args []string) error {
	d.Hart.Tick()
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

// cmdBreak sets a breakpoint at an address.
func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <address>")
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.AddBreakpoint(addr, false)
	d.Printf("Breakpoint %d at %s\n", bp.ID, hex.Word8Prefixed(addr))
	return nil
}

// cmdTBreak sets a one-shot breakpoint that removes itself after its
// first hit.
func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <address>")
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.AddBreakpoint(addr, true)
	d.Printf("Temporary breakpoint %d at %s\n", bp.ID, hex.Word8Prefixed(addr))
	return nil
}

// cmdDelete removes one breakpoint by ID, or all of them if no ID is given.
func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint id: %s", args[0])
	}
	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

// cmdEnable re-enables a disabled breakpoint.
func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint id: %s", args[0])
	}
	return d.Breakpoints.EnableBreakpoint(id)
}

// cmdDisable disables a breakpoint without removing it.
func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint id: %s", args[0])
	}
	return d.Breakpoints.DisableBreakpoint(id)
}

// cmdInfo prints registers, breakpoints, or pc state depending on args[0].
func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <registers|breakpoints|pc>")
	}
	switch args[0] {
	case "registers", "reg", "r":
		d.Hart.Dump(&d.Output)
	case "breakpoints", "b":
		bps := d.Breakpoints.GetAllBreakpoints()
		if len(bps) == 0 {
			d.Println("No breakpoints")
			return nil
		}
		for _, bp := range bps {
			state := "enabled"
			if !bp.Enabled {
				state = "disabled"
			}
			d.Printf("%d: %s (%s, hit %d times)\n", bp.ID, hex.Word8Prefixed(bp.Address), state, bp.HitCount)
		}
	case "pc":
		d.Printf("pc = %s\n", hex.Word8Prefixed(d.Hart.PC()))
	default:
		return fmt.Errorf("unknown info target: %s", args[0])
	}
	return nil
}

// cmdPrint prints the value of a register, named x0..x31.
func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <xN>")
	}
	reg, err := parseRegister(args[0])
	if err != nil {
		return err
	}
	val := d.Hart.Regs.Get(reg)
	d.Printf("x%d = %s (%d)\n", reg, hex.Word8Prefixed(val), int32(val))
	return nil
}

// cmdSet writes a value into a register: "set x5 0x10".
func (d *Debugger) cmdSet(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: set <xN> <value>")
	}
	reg, err := parseRegister(args[0])
	if err != nil {
		return err
	}
	var val uint32
	valStr := args[1]
	if strings.HasPrefix(valStr, "0x") {
		if _, err := fmt.Sscanf(valStr, "0x%x", &val); err != nil {
			return fmt.Errorf("invalid value: %s", valStr)
		}
	} else {
		n, err := strconv.ParseInt(valStr, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid value: %s", valStr)
		}
		val = uint32(n)
	}
	d.Hart.Regs.Set(reg, val)
	d.Printf("x%d = %s\n", reg, hex.Word8Prefixed(d.Hart.Regs.Get(reg)))
	return nil
}

// cmdExamine dumps memory starting at an address: "x 0x100".
func (d *Debugger) cmdExamine(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: x <address>")
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	d.Output.WriteString(d.memoryAround(addr))
	return nil
}

// cmdList disassembles the instructions around the current pc.
func (d *Debugger) cmdList(args []string) error {
	n := d.DisasmContext
	if len(args) > 0 {
		if parsed, err := strconv.Atoi(args[0]); err == nil {
			n = parsed
		}
	}
	d.Output.WriteString(d.disassembleAround(n))
	return nil
}

// cmdReset resets the hart without starting execution.
func (d *Debugger) cmdReset(args []string) error {
	d.Hart.Reset()
	d.Running = false
	d.StepMode = StepNone
	d.Println("Hart reset")
	return nil
}

// cmdHelp lists the available commands.
func (d *Debugger) cmdHelp(args []string) error {
	d.Println("Commands:")
	d.Println("  run, r                 reset and start execution")
	d.Println("  continue, c            resume execution")
	d.Println("  step, s, si            execute one instruction")
	d.Println("  break, b <addr>        set a breakpoint")
	d.Println("  tbreak, tb <addr>      set a one-shot breakpoint")
	d.Println("  delete, d [id]         delete a breakpoint, or all")
	d.Println("  enable/disable <id>    toggle a breakpoint")
	d.Println("  info registers|b|pc    show state")
	d.Println("  print, p <xN>          show a register")
	d.Println("  set <xN> <value>       write a register")
	d.Println("  x <addr>               dump memory")
	d.Println("  list, l [n]            disassemble n instructions from pc")
	d.Println("  reset                  reset the hart")
	d.Println("  quit, q                exit the debugger")
	return nil
}

// parseRegister accepts "x0".."x31" or a bare register number.
func parseRegister(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "x")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 31 {
		return 0, fmt.Errorf("invalid register: %s", s)
	}
	return uint32(n), nil
}
