package vm

import "github.com/asm16/m16vm/bitfield"

// Each instruction type below stores exactly the fields Decode extracted
// from the raw word, and executes the semantics for that instruction
// kind against a Machine.

type addInstr struct {
	dr, sr0, enc uint16
}

func (i addInstr) Execute(m *Machine) {
	operand := arithmeticOperand(m, i.enc)
	m.SetRegisterAndFlags(i.dr, m.Registers[i.sr0]+operand)
}

type subInstr struct {
	dr, sr0, enc uint16
}

func (i subInstr) Execute(m *Machine) {
	operand := arithmeticOperand(m, i.enc)
	m.SetRegisterAndFlags(i.dr, m.Registers[i.sr0]-operand)
}

// arithmeticOperand decodes Add/Sub's 6-bit operand field: bit 5 set
// selects the register form (sr1 in bits 4..2), clear selects the
// 5-bit unsigned immediate in bits 4..0.
func arithmeticOperand(m *Machine, enc uint16) uint16 {
	if enc&(1<<5) != 0 {
		sr1 := (enc >> 2) & 0b111
		return m.Registers[sr1]
	}
	return enc & 0b11111
}

type leaInstr struct {
	dr, offset9 uint16
}

func (i leaInstr) Execute(m *Machine) {
	effective := m.PC + uint16(bitfield.SignExtend(i.offset9, 9))
	m.SetRegisterAndFlags(i.dr, effective)
}

type ldInstr struct {
	dr, base, offset6 uint16
}

func (i ldInstr) Execute(m *Machine) {
	address := m.Registers[i.base] + uint16(bitfield.SignExtend(i.offset6, 6))
	m.SetRegisterAndFlags(i.dr, m.ReadMemory(address))
}

type ldiInstr struct {
	dr, imm9 uint16
}

func (i ldiInstr) Execute(m *Machine) {
	m.SetRegisterAndFlags(i.dr, i.imm9)
}

type stInstr struct {
	base, offset6, sr uint16
}

func (i stInstr) Execute(m *Machine) {
	address := m.Registers[i.base] + uint16(bitfield.SignExtend(i.offset6, 6))
	m.WriteMemory(address, m.Registers[i.sr])
}

type brInstr struct {
	conds, offset9 uint16
}

func (i brInstr) Execute(m *Machine) {
	if uint16(m.Flags)&i.conds != 0 {
		m.PC += uint16(bitfield.SignExtend(i.offset9, 9))
	}
}

type callPCRelInstr struct {
	offset11 uint16
}

func (i callPCRelInstr) Execute(m *Machine) {
	destination := m.PC + uint16(bitfield.SignExtend(i.offset11, 11))
	m.PushCallStack(m.PC)
	m.PC = destination
}

type callRegRelInstr struct {
	base, offset8 uint16
}

func (i callRegRelInstr) Execute(m *Machine) {
	destination := m.Registers[i.base] + uint16(bitfield.SignExtend(i.offset8, 8))
	m.PushCallStack(m.PC)
	m.PC = destination
}

type retInstr struct{}

func (retInstr) Execute(m *Machine) {
	m.PC = m.PopCallStack()
}

type hltInstr struct{}

func (hltInstr) Execute(m *Machine) {
	m.Halt = true
}

type slpInstr struct {
	durationMs uint16
}

func (i slpInstr) Execute(m *Machine) {
	sleep(i.durationMs)
}
