package statement

import "github.com/asm16/m16vm/trace"

// Word is the "WORD #value" directive: emits value verbatim as a single
// word.
type Word struct {
	Value uint16
}

func (w Word) Width() uint16 { return 1 }

func (w Word) Encode(uint16, map[string]uint16, trace.Backtrace) ([]uint16, error) {
	return []uint16{w.Value}, nil
}

// Ascii is the "ASCII \"...\"" directive: emits one word per byte of the
// string (zero-extended), followed by a trailing NUL word.
type Ascii struct {
	Value string
}

func (a Ascii) Width() uint16 {
	return uint16(len(a.Value) + 1)
}

func (a Ascii) Encode(uint16, map[string]uint16, trace.Backtrace) ([]uint16, error) {
	words := make([]uint16, 0, a.Width())
	for i := 0; i < len(a.Value); i++ {
		words = append(words, uint16(a.Value[i]))
	}
	words = append(words, 0)
	return words, nil
}

// Block is the "BLK #count" directive: reserves count zero-initialised
// words.
type Block struct {
	Count uint16
}

func (b Block) Width() uint16 { return b.Count }

func (b Block) Encode(uint16, map[string]uint16, trace.Backtrace) ([]uint16, error) {
	return make([]uint16, b.Count), nil
}
