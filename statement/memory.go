package statement

import (
	"github.com/asm16/m16vm/bitfield"
	"github.com/asm16/m16vm/opcode"
	"github.com/asm16/m16vm/trace"
)

// Load is "LD dr, base, #offset6": dr <- memory[base + sign_extend(offset6)].
// Offset6 is the already range-checked, two's-complement-packed 6-bit
// field (see bitfield.EncodeSigned).
type Load struct {
	Dr, Base uint16
	Offset6  uint16
}

func (l Load) Width() uint16 { return 1 }

func (l Load) Encode(uint16, map[string]uint16, trace.Backtrace) ([]uint16, error) {
	word := uint16(opcode.Ld)<<opcode.Shift | l.Dr<<9 | l.Base<<6 | l.Offset6
	return []uint16{word}, nil
}

// Store is "ST base, #offset6, sr": memory[base + sign_extend(offset6)] <- sr.
type Store struct {
	Base, Sr uint16
	Offset6  uint16
}

func (s Store) Width() uint16 { return 1 }

func (s Store) Encode(uint16, map[string]uint16, trace.Backtrace) ([]uint16, error) {
	word := uint16(opcode.St)<<opcode.Shift | s.Base<<9 | s.Offset6<<3 | s.Sr
	return []uint16{word}, nil
}

// LoadImmediate is "LDI dr, #imm9": dr <- zero_extend(imm9). Imm9 is
// already range-checked and unsigned.
type LoadImmediate struct {
	Dr   uint16
	Imm9 uint16
}

func (l LoadImmediate) Width() uint16 { return 1 }

func (l LoadImmediate) Encode(uint16, map[string]uint16, trace.Backtrace) ([]uint16, error) {
	word := uint16(opcode.Ldi)<<opcode.Shift | l.Dr<<9 | l.Imm9
	return []uint16{word}, nil
}

// LoadEffectiveAddress is "LEA dr, <label|#offset>": dr <- address of the
// instruction itself, plus the signed 9-bit operand. Unlike Branch and
// Call, the base for a label operand is the instruction's own address,
// not address+1 - this asymmetry must be preserved bit-for-bit against
// the emulator's decode of the same instruction.
type LoadEffectiveAddress struct {
	Dr      uint16
	Operand LabelOrOffset
}

func (l LoadEffectiveAddress) Width() uint16 { return 1 }

func (l LoadEffectiveAddress) Encode(address uint16, labels map[string]uint16, _ trace.Backtrace) ([]uint16, error) {
	rel, err := l.Operand.Resolve(address, labels)
	if err != nil {
		return nil, err
	}
	offset9, err := bitfield.EncodeSigned(rel, 9)
	if err != nil {
		return nil, err
	}
	word := uint16(opcode.Lea)<<opcode.Shift | l.Dr<<9 | offset9
	return []uint16{word}, nil
}
