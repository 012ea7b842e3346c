// Command memu runs a m16 object file against the emulator core.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/asm16/m16vm/config"
	"github.com/asm16/m16vm/debugger"
	"github.com/asm16/m16vm/vm"
)

var debugFlag bool

var command = &cobra.Command{
	Use:   "memu <program.bin>",
	Short: "Run a m16 object file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		data, err := os.ReadFile(args[0]) //nolint:gosec // CLI-supplied input path
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		words, err := vm.DecodeImage(data)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		machine := vm.NewMachine(words)
		machine.PC = cfg.Emulate.DefaultEntry

		if debugFlag {
			runDebugger(machine)
			return
		}

		if err := runHeadless(machine, cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func runDebugger(machine *vm.Machine) {
	session := debugger.NewSession(machine)
	tui := debugger.NewTUI(session)
	if err := tui.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runHeadless drives the fetch/decode/execute loop to completion, feeding
// stdin bytes into the machine's StdinBuffer between steps via a
// raw-mode reader goroutine (only when stdin is a terminal; otherwise no
// stdin is read), and enforces the configured
// cycle ceiling so a runaway program (scenario S2's infinite BR nzp loop)
// cannot hang the process.
func runHeadless(machine *vm.Machine, cfg *config.Config) error {
	stdinBytes := make(chan byte, 256)

	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err == nil {
			defer term.Restore(fd, oldState) //nolint:errcheck // best-effort terminal restore
			go pollStdin(os.Stdin, stdinBytes)
		}
	}

	var cycles uint64
	for !machine.Halt {
		if cfg.Emulate.MaxCycles != 0 && cycles >= cfg.Emulate.MaxCycles {
			return fmt.Errorf("exceeded configured cycle limit of %d", cfg.Emulate.MaxCycles)
		}
		drainStdin(machine, stdinBytes)

		if err := machine.Step(); err != nil {
			return err
		}
		cycles++
	}

	if cfg.Emulate.DumpOnHalt {
		fmt.Print(machine.DumpState())
	}
	return nil
}

func pollStdin(f *os.File, out chan<- byte) {
	buf := make([]byte, 1)
	for {
		n, err := f.Read(buf)
		if err != nil {
			return
		}
		if n > 0 {
			out <- buf[0]
		}
	}
}

func drainStdin(machine *vm.Machine, in <-chan byte) {
	for {
		select {
		case b := <-in:
			machine.StdinBuffer = append(machine.StdinBuffer, b)
		default:
			return
		}
	}
}

func init() {
	command.Flags().BoolVar(&debugFlag, "debug", false, "launch the interactive TUI debugger instead of running to completion")
}

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
