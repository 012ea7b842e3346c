package debugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asm16/m16vm/vm"
)

func TestSessionStepAdvancesOneInstruction(t *testing.T) {
	m := vm.NewMachine([]uint16{0b0111<<12 | 5, 0b1100 << 12})
	s := NewSession(m)

	require.NoError(t, s.Execute("step"))
	assert.EqualValues(t, 5, m.Registers[0])
	assert.EqualValues(t, 1, m.PC)
}

func TestSessionContinueStopsAtBreakpoint(t *testing.T) {
	m := vm.NewMachine([]uint16{
		0b0111<<12 | 1, // LDI R0 #1
		0b0111<<12 | 2, // LDI R0 #2
		0b1100 << 12,   // HLT
	})
	s := NewSession(m)
	require.NoError(t, s.Execute("break 1"))

	require.NoError(t, s.Execute("continue"))
	assert.EqualValues(t, 1, m.PC)
	assert.False(t, m.Halt)
	assert.Contains(t, s.Output.String(), "breakpoint 1 hit")
}

func TestSessionContinueRunsToHaltWithoutBreakpoints(t *testing.T) {
	m := vm.NewMachine([]uint16{0b1100 << 12})
	s := NewSession(m)
	require.NoError(t, s.Execute("continue"))
	assert.True(t, m.Halt)
}

func TestSessionRepeatsLastCommandOnEmptyInput(t *testing.T) {
	m := vm.NewMachine([]uint16{0b1100 << 12, 0b1100 << 12})
	s := NewSession(m)
	require.NoError(t, s.Execute("step"))
	require.NoError(t, s.Execute(""))
	assert.Equal(t, "step", s.LastCommand)
}

func TestSessionDeleteRemovesBreakpoint(t *testing.T) {
	m := vm.NewMachine([]uint16{0b1100 << 12})
	s := NewSession(m)
	require.NoError(t, s.Execute("break 0x0"))
	require.NoError(t, s.Execute("delete 0x0"))
	assert.Nil(t, s.Breakpoints.Get(0))
}

func TestSessionRejectsUnknownCommand(t *testing.T) {
	m := vm.NewMachine([]uint16{0b1100 << 12})
	s := NewSession(m)
	err := s.Execute("frobnicate")
	assert.Error(t, err)
}
