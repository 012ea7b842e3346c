package statement

import "github.com/asm16/m16vm/trace"

// MacroInvocation is the flattened result of expanding one macro call:
// it carries every statement the macro body produced, in source order.
// Width and Encode delegate to the children, advancing the address each
// child sees by the widths of its preceding siblings - the reference
// implementation this is ported from instead gives every child the same
// base address, which under-advances PC-relative operands inside a
// macro body; that is not reproduced here.
type MacroInvocation struct {
	Children []Statement
}

func (m MacroInvocation) Width() uint16 {
	var total uint16
	for _, child := range m.Children {
		total += child.Width()
	}
	return total
}

func (m MacroInvocation) Encode(address uint16, labels map[string]uint16, bt trace.Backtrace) ([]uint16, error) {
	out := make([]uint16, 0, m.Width())
	addr := address
	for _, child := range m.Children {
		words, err := child.Encode(addr, labels, bt)
		if err != nil {
			return nil, err
		}
		out = append(out, words...)
		addr += child.Width()
	}
	return out, nil
}
