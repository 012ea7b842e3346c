// Package statement defines the tagged sum of assembly statements the
// assembler's two passes operate on: each variant knows its own
// constant Width and how to Encode itself once every label's address is
// known.
package statement

import (
	"fmt"

	"github.com/asm16/m16vm/trace"
)

// Statement is implemented by every parsed unit of assembly: an
// instruction, a directive, or a flattened macro invocation.
type Statement interface {
	// Width is the number of 16-bit words this statement occupies. It
	// never depends on the statement's address or on label values.
	Width() uint16

	// Encode renders the statement to exactly Width() words, given the
	// address (in words) it was assigned during the first pass, the
	// complete label address table, and the back-trace to attach to any
	// error produced.
	Encode(address uint16, labels map[string]uint16, bt trace.Backtrace) ([]uint16, error)
}

// LabelOrOffset is an operand that was written in source either as a
// bare signed numeric literal (used as the final relative offset
// directly) or as a label name (resolved against the address the
// instruction carrying it is assigned, using base, which callers choose
// per the PC-relative rule that applies to that instruction).
type LabelOrOffset struct {
	label    string
	hasLabel bool
	offset   int32
}

// FromLabel builds an operand that resolves relative to a label.
func FromLabel(name string) LabelOrOffset {
	return LabelOrOffset{label: name, hasLabel: true}
}

// FromOffset builds an operand that is already the literal offset.
func FromOffset(offset int32) LabelOrOffset {
	return LabelOrOffset{offset: offset}
}

// Resolve computes the signed word offset this operand contributes,
// relative to base (the address the PC-relative rule for the owning
// instruction designates - see the asymmetry between LEA and
// Branch/Call in their respective Encode methods).
func (lo LabelOrOffset) Resolve(base uint16, labels map[string]uint16) (int32, error) {
	if !lo.hasLabel {
		return lo.offset, nil
	}
	addr, ok := labels[lo.label]
	if !ok {
		return 0, fmt.Errorf("unrecognized label %s", lo.label)
	}
	return int32(addr) - int32(base), nil
}
