package vm

import (
	"testing"

	"github.com/asm16/m16vm/condition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordsFromBytes mirrors the big-endian on-disk layout used throughout
// the scenarios in the specification's testable-properties section.
func wordsFromBytes(t *testing.T, bytes ...byte) []uint16 {
	t.Helper()
	words, err := DecodeImage(bytes)
	require.NoError(t, err)
	return words
}

func TestScenarioArithmetic(t *testing.T) {
	// LDI R0 #5 ; LDI R1 #3 ; ADD R2 R0 R1 ; HLT
	words := wordsFromBytes(t, 0x70, 0x05, 0x72, 0x03, 0x04, 0x24, 0xC0, 0x00)
	m := NewMachine(words)
	require.NoError(t, m.Run())

	assert.EqualValues(t, 5, m.Registers[0])
	assert.EqualValues(t, 3, m.Registers[1])
	assert.EqualValues(t, 8, m.Registers[2])
	assert.True(t, m.Halt)
}

func TestScenarioBranchInfiniteLoopOffsetMinusOne(t *testing.T) {
	// BR nzp .HERE  where .HERE is this same instruction: offset -1
	// relative to address+1 resolves the branch back onto itself.
	brWord := uint16(0b1001<<12 | 0b111<<9 | 0x1FF) // conds=nzp, offset9=-1
	m := NewMachine([]uint16{brWord})
	m.Flags = condition.Zero // any nonzero flag state satisfies an nzp branch

	for i := 0; i < 1000; i++ {
		require.NoError(t, m.Step())
		assert.EqualValues(t, 0, m.PC)
	}
}

func TestScenarioStdinSentinel(t *testing.T) {
	// LD R0 R1 #-2  with R1=0 -> reads address 0xFFFE.
	ldWord := uint16(0b0110<<12) | (0 << 9) | (1 << 6) | (0b111110) // offset6 = -2 in 6 bits

	t.Run("empty stdin yields 0x0080", func(t *testing.T) {
		m := NewMachine([]uint16{ldWord})
		m.Registers[1] = 0
		require.NoError(t, m.Step())
		assert.EqualValues(t, 0x0080, m.Registers[0])
	})

	t.Run("byte available yields its zero-extended value", func(t *testing.T) {
		m := NewMachine([]uint16{ldWord})
		m.Registers[1] = 0
		m.StdinBuffer = []byte{'A'}
		require.NoError(t, m.Step())
		assert.EqualValues(t, 0x0041, m.Registers[0])
		assert.Empty(t, m.StdinBuffer)
	})
}

func TestScenarioCallAndReturn(t *testing.T) {
	// 0: CALL #1 (PC-relative, target = addr 2)
	// 1: HLT
	// 2: RET
	callWord := uint16(0b1010<<12) | (1 << 11) | bitsOf(1, 11) // offset11 = 1 (addr 0 +1(base) +1 = 2)
	hltWord := uint16(0b1100 << 12)
	retWord := uint16(0b1011 << 12)

	m := NewMachine([]uint16{callWord, hltWord, retWord})
	require.NoError(t, m.Step()) // CALL -> pc becomes 2 (see derivation in comments)
	assert.EqualValues(t, 2, m.PC)
	assert.EqualValues(t, 1, m.CallStackPointer)
	assert.EqualValues(t, 0, m.CallStack[0])

	require.NoError(t, m.Step()) // RET -> pops back to 0, then +1 => 1
	assert.EqualValues(t, 1, m.PC)
	assert.EqualValues(t, 0, m.CallStackPointer)
}

func bitsOf(value int32, bits uint) uint16 {
	mask := uint16((uint32(1) << bits) - 1)
	return uint16(value) & mask
}

func TestHaltImmediatelyStopsExecution(t *testing.T) {
	m := NewMachine([]uint16{0b1100 << 12, 0b0000 << 12})
	require.NoError(t, m.Run())
	assert.True(t, m.Halt)
	assert.EqualValues(t, 0, m.Registers[0])
}

func TestFlagsAlwaysExactlyOneBit(t *testing.T) {
	m := &Machine{}
	m.SetRegisterAndFlags(0, 0)
	assert.Equal(t, condition.Zero, m.Flags)

	m.SetRegisterAndFlags(0, 0x8000)
	assert.Equal(t, condition.Neg, m.Flags)

	m.SetRegisterAndFlags(0, 1)
	assert.Equal(t, condition.Pos, m.Flags)
}

func TestPCWrapsModulo2To16(t *testing.T) {
	m := &Machine{PC: 0xFFFF}
	m.Memory[0xFFFF] = 0b1100 << 12 // HLT
	require.NoError(t, m.Step())
	assert.EqualValues(t, 0, m.PC)
}

func TestUnknownOpcodeIsFatal(t *testing.T) {
	m := NewMachine([]uint16{0b0010 << 12})
	err := m.Step()
	require.Error(t, err)
	assert.True(t, m.Halt)
}
