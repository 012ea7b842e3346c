package vm

import (
	"fmt"

	"github.com/asm16/m16vm/opcode"
)

// Instruction is a decoded instruction ready to run against a Machine.
type Instruction interface {
	Execute(m *Machine)
}

// DecodeError reports a raw word whose high nibble names no known
// instruction. The fetch/decode/execute loop treats this as fatal and
// unrecoverable.
type DecodeError struct {
	Word uint16
	PC   uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%X in instruction word 0x%04X at pc 0x%04X", opcode.Of(e.Word), e.Word, e.PC)
}

// Decode dispatches on the high nibble of raw and extracts that
// instruction's fields, mirroring the encoding table each statement
// type's Encode method writes to.
func Decode(raw uint16, pc uint16) (Instruction, error) {
	switch opcode.Of(raw) {
	case opcode.Add:
		return addInstr{dr: field(raw, 9, 3), sr0: field(raw, 6, 3), enc: field(raw, 0, 6)}, nil
	case opcode.Sub:
		return subInstr{dr: field(raw, 9, 3), sr0: field(raw, 6, 3), enc: field(raw, 0, 6)}, nil
	case opcode.Lea:
		return leaInstr{dr: field(raw, 9, 3), offset9: field(raw, 0, 9)}, nil
	case opcode.Ld:
		return ldInstr{dr: field(raw, 9, 3), base: field(raw, 6, 3), offset6: field(raw, 0, 6)}, nil
	case opcode.Ldi:
		return ldiInstr{dr: field(raw, 9, 3), imm9: field(raw, 0, 9)}, nil
	case opcode.St:
		return stInstr{base: field(raw, 9, 3), offset6: field(raw, 3, 6), sr: field(raw, 0, 3)}, nil
	case opcode.Br:
		return brInstr{conds: field(raw, 9, 3), offset9: field(raw, 0, 9)}, nil
	case opcode.Call:
		if raw&(1<<11) != 0 {
			return callPCRelInstr{offset11: field(raw, 0, 11)}, nil
		}
		return callRegRelInstr{base: field(raw, 8, 3), offset8: field(raw, 0, 8)}, nil
	case opcode.Ret:
		return retInstr{}, nil
	case opcode.Hlt:
		return hltInstr{}, nil
	case opcode.Slp:
		return slpInstr{durationMs: field(raw, 0, 12)}, nil
	default:
		return nil, &DecodeError{Word: raw, PC: pc}
	}
}

// field extracts a bits-wide field starting at shift from word.
func field(word uint16, shift, bits uint) uint16 {
	mask := uint16((uint32(1) << bits) - 1)
	return (word >> shift) & mask
}
