package statement

import (
	"github.com/asm16/m16vm/bitfield"
	"github.com/asm16/m16vm/opcode"
	"github.com/asm16/m16vm/trace"
)

// EncodeRegisterOperand builds the 6-bit operand field for the
// register form of Add/Sub: bit 5 set, sr1 in bits 4..2, bits 1..0
// zero.
func EncodeRegisterOperand(sr1 uint16) uint16 {
	return (1 << 5) | (sr1 << 2)
}

// EncodeImmediateOperand builds the 6-bit operand field for the
// immediate form of Add/Sub: bit 5 clear, a 5-bit unsigned immediate in
// bits 4..0.
func EncodeImmediateOperand(imm5 int32) (uint16, error) {
	return bitfield.EncodeUnsigned(imm5, 5)
}

// Add is "ADD dr, sr0, <sr1|#imm5>": dr <- sr0 + operand (mod 2^16).
type Add struct {
	Dr, Sr0 uint16
	Enc     uint16 // 6-bit operand field, see EncodeRegisterOperand/EncodeImmediateOperand
}

func (a Add) Width() uint16 { return 1 }

func (a Add) Encode(uint16, map[string]uint16, trace.Backtrace) ([]uint16, error) {
	word := uint16(opcode.Add)<<opcode.Shift | a.Dr<<9 | a.Sr0<<6 | a.Enc
	return []uint16{word}, nil
}

// Sub is "SUB dr, sr0, <sr1|#imm5>": dr <- sr0 - operand (mod 2^16).
type Sub struct {
	Dr, Sr0 uint16
	Enc     uint16
}

func (s Sub) Width() uint16 { return 1 }

func (s Sub) Encode(uint16, map[string]uint16, trace.Backtrace) ([]uint16, error) {
	word := uint16(opcode.Sub)<<opcode.Shift | s.Dr<<9 | s.Sr0<<6 | s.Enc
	return []uint16{word}, nil
}
