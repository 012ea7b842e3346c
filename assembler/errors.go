package assembler

import (
	"fmt"

	"github.com/asm16/m16vm/trace"
)

// Error is the error type returned by every assembler operation, except
// a failure to resolve the root file's absolute path, which Assemble
// returns as a plain wrapped error. It carries the back-trace active at the point the failing statement,
// include or macro invocation was being constructed, so the CLI can
// print a full diagnostic even though the failure itself may surface
// much later, at encode time.
type Error struct {
	Message string
	Trace   trace.Backtrace
}

func (e *Error) Error() string {
	return e.Message
}

// Report renders the CLI-facing diagnostic: the message, followed by one
// "file:line:column" line per back-trace entry, innermost first.
func (e *Error) Report() string {
	return fmt.Sprintf("%s\n%s", e.Message, e.Trace.String())
}

func newError(bt trace.Backtrace, format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Trace: bt}
}

func wrapError(bt trace.Backtrace, err error) *Error {
	if ae, ok := err.(*Error); ok {
		return ae
	}
	return &Error{Message: err.Error(), Trace: bt}
}
