// Package debugger implements an interactive, inspection-only front end
// over a *vm.Machine: single-stepping, run-to-breakpoint, and register
// and memory views. It never alters machine semantics, only drives
// vm.Machine.Step.
package debugger

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/asm16/m16vm/vm"
)

// Session holds one debugging run: the machine being inspected, its
// breakpoints, and the scrollback of commands issued.
type Session struct {
	Machine     *vm.Machine
	Breakpoints *BreakpointManager
	History     *CommandHistory
	LastCommand string
	Output      strings.Builder
}

// NewSession wraps m for interactive inspection.
func NewSession(m *vm.Machine) *Session {
	return &Session{
		Machine:     m,
		Breakpoints: NewBreakpointManager(),
		History:     NewCommandHistory(1000),
	}
}

// Execute parses and runs one command line, appending any textual result
// to s.Output.
func (s *Session) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		line = s.LastCommand
	}
	if line != "" {
		s.History.Add(line)
		s.LastCommand = line
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "step", "s":
		return s.cmdStep()
	case "continue", "c":
		return s.cmdContinue()
	case "break", "b":
		return s.cmdBreak(args)
	case "delete", "d":
		return s.cmdDelete(args)
	case "registers", "r":
		s.print(s.RegistersText())
		return nil
	case "dump":
		s.print(s.Machine.DumpState())
		return nil
	default:
		return fmt.Errorf("unrecognised command %q", cmd)
	}
}

func (s *Session) print(text string) {
	s.Output.WriteString(text)
	s.Output.WriteByte('\n')
}

func (s *Session) cmdStep() error {
	if s.Machine.Halt {
		s.print("machine is halted")
		return nil
	}
	return s.Machine.Step()
}

// cmdContinue runs until halt or until a breakpoint is hit at the
// instruction about to execute.
func (s *Session) cmdContinue() error {
	for !s.Machine.Halt {
		if bp := s.Breakpoints.Get(s.Machine.PC); bp != nil && bp.Enabled {
			s.Breakpoints.Hit(s.Machine.PC)
			s.print(fmt.Sprintf("breakpoint %d hit at %04X", bp.ID, bp.Address))
			return nil
		}
		if err := s.Machine.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) cmdBreak(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: break <address>")
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	bp := s.Breakpoints.Add(addr)
	s.print(fmt.Sprintf("breakpoint %d set at %04X", bp.ID, addr))
	return nil
}

func (s *Session) cmdDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete <address>")
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	s.Breakpoints.Remove(addr)
	return nil
}

func parseAddress(text string) (uint16, error) {
	base := 10
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		base = 16
		text = text[2:]
	}
	v, err := strconv.ParseUint(text, base, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", text, err)
	}
	return uint16(v), nil
}

// RegistersText renders the register/flags panel text.
func (s *Session) RegistersText() string {
	var b strings.Builder
	for i, r := range s.Machine.Registers {
		fmt.Fprintf(&b, "R%d: %04X  ", i, r)
		if i%4 == 3 {
			b.WriteByte('\n')
		}
	}
	fmt.Fprintf(&b, "\nPC: %04X  FLAGS: %s\n", s.Machine.PC, s.Machine.Flags)
	return b.String()
}

// BreakpointsText renders the breakpoints panel text, sorted by address.
func (s *Session) BreakpointsText() string {
	bps := s.Breakpoints.All()
	sorted := lo.Filter(bps, func(bp *Breakpoint, _ int) bool { return bp.Enabled })
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Address < sorted[j].Address })
	lines := lo.Map(sorted, func(bp *Breakpoint, _ int) string {
		return fmt.Sprintf("#%d  %04X  hits=%d", bp.ID, bp.Address, bp.HitCount)
	})
	return strings.Join(lines, "\n")
}
