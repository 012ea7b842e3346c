// Package trace implements the source-location back-trace that the
// assembler uses to detect recursive includes and macro invocations,
// and to render multi-line diagnostics.
package trace

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/asm16/m16vm/lexer"
)

// SourceLocation names a byte span within a specific file.
type SourceLocation struct {
	File string
	Span lexer.Span
}

// Equal reports whether two locations refer to the same file and span.
// Back-trace recursion detection is exactly this equality check applied
// pairwise across a Backtrace.
func (s SourceLocation) Equal(other SourceLocation) bool {
	return s.File == other.File && s.Span == other.Span
}

// HumanReadable re-reads the file and renders "file:line:column" for the
// start of the span, for CLI diagnostics.
func (s SourceLocation) HumanReadable() string {
	line, col, err := lineAndColumn(s.File, s.Span.Start)
	if err != nil {
		return fmt.Sprintf("%s:?:?", s.File)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, line, col)
}

func lineAndColumn(path string, offset int) (line, col int, err error) {
	f, err := os.Open(path) //nolint:gosec // path originates from the source being assembled
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	line, col = 1, 1
	count := 0
	for count < offset {
		r, size, err := reader.ReadRune()
		if err != nil {
			break
		}
		count += size
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col, nil
}

// Backtrace is an ordered list of source locations, innermost last: the
// root file's statement span comes first, and each include or macro
// invocation site that led to the current statement is appended after
// it.
type Backtrace []SourceLocation

// IsRecursive reports whether any location appears twice in the trace.
// This single check detects both include cycles and macro-expansion
// cycles: an include or macro invocation is only ever extended onto a
// back-trace that already identifies every enclosing site, so a repeat
// means we have returned to a location we were already inside.
func (bt Backtrace) IsRecursive() bool {
	for i := 0; i < len(bt); i++ {
		for j := i + 1; j < len(bt); j++ {
			if bt[i].Equal(bt[j]) {
				return true
			}
		}
	}
	return false
}

// Reversed returns the trace innermost-first, the order diagnostics are
// printed in.
func (bt Backtrace) Reversed() Backtrace {
	out := make(Backtrace, len(bt))
	for i, loc := range bt {
		out[len(bt)-1-i] = loc
	}
	return out
}

func (bt Backtrace) String() string {
	var b strings.Builder
	for _, loc := range bt.Reversed() {
		b.WriteByte('\t')
		b.WriteString(loc.HumanReadable())
		b.WriteByte('\n')
	}
	return b.String()
}

// ParsingContext threads the file being scanned, the byte offset of that
// file's content within the original source slice it was lexed from, and
// the back-trace accumulated so far, through every recursive parse call.
type ParsingContext struct {
	File         string
	GlobalOffset int
	Trace        Backtrace
}

// New starts a fresh context for the root file being assembled.
func New(file string) ParsingContext {
	return ParsingContext{File: file}
}

// With returns a context for a nested file or macro body identified by
// file, anchored at globalOffset, whose back-trace extends the receiver
// with a location for localSpan.
func (pc ParsingContext) With(file string, globalOffset int, localSpan lexer.Span) ParsingContext {
	return ParsingContext{
		File:         file,
		GlobalOffset: globalOffset,
		Trace:        pc.appendLocation(localSpan),
	}
}

// GetBacktrace returns the back-trace produced by appending a location
// for localSpan (shifted by GlobalOffset, tagged with File) onto a copy
// of the existing trace.
func (pc ParsingContext) GetBacktrace(localSpan lexer.Span) Backtrace {
	return pc.appendLocation(localSpan)
}

func (pc ParsingContext) appendLocation(localSpan lexer.Span) Backtrace {
	shifted := lexer.Span{
		Start: localSpan.Start + pc.GlobalOffset,
		End:   localSpan.End + pc.GlobalOffset,
	}
	trace := make(Backtrace, len(pc.Trace), len(pc.Trace)+1)
	copy(trace, pc.Trace)
	return append(trace, SourceLocation{File: pc.File, Span: shifted})
}
