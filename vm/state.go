// Package vm implements the machine state and the fetch/decode/execute
// loop for the 16-bit load/store emulator.
package vm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/asm16/m16vm/condition"
)

const (
	memorySize    = 65536
	callStackSize = 256

	// stdinAddress is the only memory-mapped address: reading it
	// consumes the next byte of StdinBuffer, or yields emptyStdinValue
	// if none is available.
	stdinAddress    = 0xFFFE
	emptyStdinValue = 0x0080
)

// Machine is the full state of one emulator run.
type Machine struct {
	Memory           [memorySize]uint16
	Registers        [8]uint16
	PC               uint16
	Flags            condition.Flags
	CallStack        [callStackSize]uint16
	CallStackPointer uint8
	Halt             bool
	StdinBuffer      []byte
}

// NewMachine returns a zero-initialised machine with image loaded at
// address 0.
func NewMachine(image []uint16) *Machine {
	m := &Machine{}
	copy(m.Memory[:], image)
	return m
}

// SetRegisterAndFlags writes value into register r and updates Flags:
// Zero if the result is 0, else Neg if bit 15 is set, else Pos.
func (m *Machine) SetRegisterAndFlags(r uint16, value uint16) {
	m.Registers[r] = value
	switch {
	case value == 0:
		m.Flags = condition.Zero
	case value&0x8000 != 0:
		m.Flags = condition.Neg
	default:
		m.Flags = condition.Pos
	}
}

// ReadMemory reads one word, honoring the stdin-mapped address.
func (m *Machine) ReadMemory(address uint16) uint16 {
	if address == stdinAddress {
		return m.consumeStdin()
	}
	return m.Memory[address]
}

// WriteMemory writes one word. Address stdinAddress has no special
// mapping for writes - it is plain memory, per the reference
// implementation this core is ported from.
func (m *Machine) WriteMemory(address uint16, value uint16) {
	m.Memory[address] = value
}

func (m *Machine) consumeStdin() uint16 {
	if len(m.StdinBuffer) == 0 {
		return emptyStdinValue
	}
	b := m.StdinBuffer[0]
	m.StdinBuffer = m.StdinBuffer[1:]
	return uint16(b)
}

// PushCallStack stores a return address and advances the stack pointer.
// The pointer is an 8-bit counter: over- or under-flow wraps silently,
// which is undefined/unspecified behaviour rather than an error.
func (m *Machine) PushCallStack(returnAddress uint16) {
	m.CallStack[m.CallStackPointer] = returnAddress
	m.CallStackPointer++
}

// PopCallStack predecrements the stack pointer and returns the address
// stored there.
func (m *Machine) PopCallStack() uint16 {
	m.CallStackPointer--
	return m.CallStack[m.CallStackPointer]
}

// Step runs exactly one fetch/decode/execute cycle: fetch memory[pc],
// decode it, execute it, then unconditionally advance pc by one (with
// wraparound). An unknown opcode is returned as a fatal error and the
// machine is left halted.
func (m *Machine) Step() error {
	raw := m.Memory[m.PC]
	instr, err := Decode(raw, m.PC)
	if err != nil {
		m.Halt = true
		return err
	}
	instr.Execute(m)
	m.PC++
	return nil
}

// Run steps the machine until Halt is set or an error occurs.
func (m *Machine) Run() error {
	for !m.Halt {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// DumpState renders the full debug dump the emulator CLI prints once a
// program halts: registers, pc, halt flag, call stack (topmost first),
// flags as 3-bit binary, then memory in 16-word rows with contiguous
// identical rows elided to a single "*" - the first and last row are
// always shown even if they repeat their neighbour.
func (m *Machine) DumpState() string {
	var b strings.Builder

	for i, r := range m.Registers {
		fmt.Fprintf(&b, "R%d: %d\n", i, r)
	}
	fmt.Fprintf(&b, "PC: %d\n\n", m.PC)
	fmt.Fprintf(&b, "HALT: %t\n\n", m.Halt)

	b.WriteString("Call Stack:\n")
	for i := int(m.CallStackPointer) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "%04X: %04X\n", i, m.CallStack[i])
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "Flags: %s\n\n", pad3(strconv.FormatUint(uint64(m.Flags), 2)))

	b.WriteString("Memory:\n")
	const rowWords = 16
	rows := memorySize / rowWords
	var lastLine string
	elided := false
	for i := 0; i < rows; i++ {
		row := m.Memory[i*rowWords : i*rowWords+rowWords]
		line := formatRow(row)
		if line == lastLine && i != 0 && i != rows-1 {
			if elided {
				continue
			}
			b.WriteString("*\n")
			elided = true
			continue
		}
		fmt.Fprintf(&b, "%04X: %s\n", i*rowWords, line)
		lastLine = line
		elided = false
	}

	return b.String()
}

func formatRow(words []uint16) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = fmt.Sprintf("%04X", w)
	}
	return strings.Join(parts, " ")
}

func pad3(bits string) string {
	for len(bits) < 3 {
		bits = "0" + bits
	}
	return bits
}
