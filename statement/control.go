package statement

import (
	"github.com/asm16/m16vm/bitfield"
	"github.com/asm16/m16vm/opcode"
	"github.com/asm16/m16vm/trace"
)

// Branch is "BR <nzp>, <label|#offset>". Per the emulator's fetch/decode
// loop, pc is incremented after the branch target is computed, so the
// assembler must resolve a label operand relative to address+1, not the
// branch instruction's own address.
type Branch struct {
	Conds   uint16
	Operand LabelOrOffset
}

func (b Branch) Width() uint16 { return 1 }

func (b Branch) Encode(address uint16, labels map[string]uint16, _ trace.Backtrace) ([]uint16, error) {
	rel, err := b.Operand.Resolve(address+1, labels)
	if err != nil {
		return nil, err
	}
	offset9, err := bitfield.EncodeSigned(rel, 9)
	if err != nil {
		return nil, err
	}
	word := uint16(opcode.Br)<<opcode.Shift | b.Conds<<9 | offset9
	return []uint16{word}, nil
}

// callModeBit is bit 11 of the CALL word: 0 selects the register-relative
// form, 1 the PC-relative form.
const callModeBit = 1 << 11

// CallPCRelative is "CALL <label|#offset11>": pushes pc then jumps to
// pc+1 plus the signed 11-bit operand, matching Branch's addressing
// base.
type CallPCRelative struct {
	Operand LabelOrOffset
}

func (c CallPCRelative) Width() uint16 { return 1 }

func (c CallPCRelative) Encode(address uint16, labels map[string]uint16, _ trace.Backtrace) ([]uint16, error) {
	rel, err := c.Operand.Resolve(address+1, labels)
	if err != nil {
		return nil, err
	}
	offset11, err := bitfield.EncodeSigned(rel, 11)
	if err != nil {
		return nil, err
	}
	word := uint16(opcode.Call)<<opcode.Shift | callModeBit | offset11
	return []uint16{word}, nil
}

// CallRegRelative is "CALL base, #offset8": pushes pc then sets pc to
// register[base] plus the signed 8-bit offset; the emulator's
// post-increment then resumes execution one word past that address.
// Offset8 is already range-checked and packed.
type CallRegRelative struct {
	Base    uint16
	Offset8 uint16
}

func (c CallRegRelative) Width() uint16 { return 1 }

func (c CallRegRelative) Encode(uint16, map[string]uint16, trace.Backtrace) ([]uint16, error) {
	word := uint16(opcode.Call)<<opcode.Shift | c.Base<<8 | c.Offset8
	return []uint16{word}, nil
}

// Return is "RET": pops the call stack into pc.
type Return struct{}

func (r Return) Width() uint16 { return 1 }

func (r Return) Encode(uint16, map[string]uint16, trace.Backtrace) ([]uint16, error) {
	return []uint16{uint16(opcode.Ret) << opcode.Shift}, nil
}

// Halt is "HLT": stops the fetch/decode/execute loop.
type Halt struct{}

func (h Halt) Width() uint16 { return 1 }

func (h Halt) Encode(uint16, map[string]uint16, trace.Backtrace) ([]uint16, error) {
	return []uint16{uint16(opcode.Hlt) << opcode.Shift}, nil
}

// Sleep is "SLP #duration_ms": blocks the executing thread. DurationMs is
// already range-checked into 12 bits.
type Sleep struct {
	DurationMs uint16
}

func (s Sleep) Width() uint16 { return 1 }

func (s Sleep) Encode(uint16, map[string]uint16, trace.Backtrace) ([]uint16, error) {
	word := uint16(opcode.Slp)<<opcode.Shift | s.DurationMs
	return []uint16{word}, nil
}
