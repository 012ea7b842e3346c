// Package assembler drives the two-pass assembly of m16 source: the
// first pass lexes every file (following INCLUDE/INCLUDE_ONCE and
// expanding macro invocations), assigning each statement an address; the
// second pass calls Encode on the finished statement list now that every
// label's address is known.
package assembler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/asm16/m16vm/lexer"
	"github.com/asm16/m16vm/statement"
	"github.com/asm16/m16vm/trace"
)

type taggedStatement struct {
	stmt  statement.Statement
	trace trace.Backtrace
}

// state is the mutable data shared across every recursive parseFile,
// include and macro-invocation call for a single Assemble run.
type state struct {
	Labels       map[string]uint16
	LabelAddress uint16
	Macros       MacroTable
	Included     map[string]bool
	Statements   []taggedStatement
}

func newState() *state {
	return &state{
		Labels:   make(map[string]uint16),
		Macros:   make(MacroTable),
		Included: make(map[string]bool),
	}
}

// Assemble reads rootFile and every file it includes, expands macros,
// resolves labels and returns the final big-endian-ready word stream.
func Assemble(rootFile string) ([]uint16, error) {
	abs, err := filepath.Abs(rootFile)
	if err != nil {
		return nil, fmt.Errorf("resolving root file path: %w", err)
	}

	st := newState()
	rootCtx := trace.New(abs)
	st.Included[abs] = true
	if err := parseFile(abs, rootCtx, st); err != nil {
		return nil, err
	}

	var out []uint16
	var addr uint16
	for _, ts := range st.Statements {
		words, err := ts.stmt.Encode(addr, st.Labels, ts.trace)
		if err != nil {
			return nil, wrapError(ts.trace, err)
		}
		out = append(out, words...)
		addr += ts.stmt.Width()
	}
	return out, nil
}

func parseFile(path string, pc trace.ParsingContext, st *state) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from the assembled source itself
	if err != nil {
		return newError(pc.Trace, "failed to read %s: %v", path, err)
	}
	src := string(data)
	lx := lexer.New(src)

	for {
		tok, err := lx.NextToken()
		if err != nil {
			return wrapError(pc.GetBacktrace(lx.Span()), err)
		}

		switch tok.Type {
		case lexer.EOF:
			return nil

		case lexer.Comment:
			continue

		case lexer.Label:
			if _, exists := st.Labels[tok.Label]; exists {
				return newError(pc.GetBacktrace(tok.Span), "duplicate label %s", tok.Label)
			}
			st.Labels[tok.Label] = st.LabelAddress

		case lexer.MacroStart:
			if err := parseMacroDefinition(src, lx, st, pc); err != nil {
				return err
			}

		case lexer.Identifier:
			if err := dispatchIdentifier(tok, src, lx, st, pc); err != nil {
				return err
			}

		default:
			return newError(pc.GetBacktrace(tok.Span), "unexpected %s, expected Label or Mnemonic", tok.Type)
		}
	}
}

// dispatchIdentifier handles the three things an Identifier token can
// start: a fixed mnemonic/directive, an INCLUDE/INCLUDE_ONCE directive,
// or an invocation of a previously defined macro.
func dispatchIdentifier(ident lexer.Token, src string, lx *lexer.Lexer, st *state, pc trace.ParsingContext) error {
	if ident.Text == "INCLUDE" || ident.Text == "INCLUDE_ONCE" {
		return parseIncludeStatement(ident, src, lx, st, pc, ident.Text == "INCLUDE_ONCE")
	}

	stmt, ok, err := fixedMnemonic(ident, lx)
	if err != nil {
		return wrapError(pc.GetBacktrace(lexer.Span{Start: ident.Span.Start, End: lx.Span().End}), err)
	}
	if ok {
		appendStatement(st, pc, ident.Span.Start, lx, stmt)
		return nil
	}

	macro, ok := st.Macros[ident.Text]
	if !ok {
		return newError(pc.GetBacktrace(ident.Span), "unrecognised identifier %s", ident.Text)
	}
	stmt, err = parseMacroInvocation(ident, macro, lx, st, pc)
	if err != nil {
		return err
	}
	appendStatement(st, pc, ident.Span.Start, lx, stmt)
	return nil
}

func appendStatement(st *state, pc trace.ParsingContext, startOffset int, lx *lexer.Lexer, stmt statement.Statement) {
	bt := pc.GetBacktrace(lexer.Span{Start: startOffset, End: lx.Span().End})
	st.Statements = append(st.Statements, taggedStatement{stmt: stmt, trace: bt})
	st.LabelAddress += stmt.Width()
}

func parseMacroDefinition(src string, lx *lexer.Lexer, st *state, pc trace.ParsingContext) error {
	nameTok, err := expect(lx, lexer.Identifier)
	if err != nil {
		return wrapError(pc.GetBacktrace(lx.Span()), err)
	}
	countTok, err := expect(lx, lexer.NumericLiteral)
	if err != nil {
		return wrapError(pc.GetBacktrace(lx.Span()), err)
	}
	if countTok.Number < 0 {
		return newError(pc.GetBacktrace(countTok.Span), "macro parameter count must not be negative, found %d", countTok.Number)
	}
	paramCount := int(countTok.Number)
	bodyStart := lx.Span().End

	var bodyEnd int
	for {
		tok, err := lx.NextToken()
		if err != nil {
			return wrapError(pc.GetBacktrace(lx.Span()), err)
		}
		switch tok.Type {
		case lexer.EOF:
			return newError(pc.GetBacktrace(tok.Span), "unterminated definition of macro %s", nameTok.Text)
		case lexer.MacroParameter:
			if int(tok.Number) >= paramCount {
				return newError(pc.GetBacktrace(tok.Span), "macro %s references parameter $%d but only declares %d parameters", nameTok.Text, tok.Number, paramCount)
			}
		case lexer.MacroEnd:
			bodyEnd = tok.Span.Start
			goto done
		}
	}
done:
	st.Macros[nameTok.Text] = Macro{
		Source:             src[bodyStart:bodyEnd],
		NumberOfParameters: paramCount,
		DefinitionFile:     pc.File,
		DefinitionOffset:   pc.GlobalOffset + bodyStart,
	}
	return nil
}

func parseIncludeStatement(ident lexer.Token, _ string, lx *lexer.Lexer, st *state, pc trace.ParsingContext, once bool) error {
	pathTok, err := expect(lx, lexer.String)
	if err != nil {
		return wrapError(pc.GetBacktrace(lx.Span()), err)
	}

	dir := filepath.Dir(pc.File)
	absPath, err := filepath.Abs(filepath.Join(dir, pathTok.Str))
	if err != nil {
		return newError(pc.GetBacktrace(pathTok.Span), "resolving include path %s: %v", pathTok.Str, err)
	}

	includeSpan := lexer.Span{Start: ident.Span.Start, End: lx.Span().End}

	if once && st.Included[absPath] {
		return nil
	}

	childTrace := pc.GetBacktrace(includeSpan)
	if childTrace.IsRecursive() {
		return newError(childTrace, "detected recursive file include of %s", absPath)
	}

	st.Included[absPath] = true
	childCtx := trace.ParsingContext{File: absPath, GlobalOffset: 0, Trace: childTrace}
	return parseFile(absPath, childCtx, st)
}

// parseMacroInvocation substitutes the invocation's arguments (as raw
// source text, no re-lexing of the argument before substitution) into a
// copy of the macro's stored body, then lexes and parses the result as a
// flat sequence of instructions.
func parseMacroInvocation(ident lexer.Token, macro Macro, lx *lexer.Lexer, st *state, pc trace.ParsingContext) (statement.Statement, error) {
	body := macro.Source
	for i := 0; i < macro.NumberOfParameters; i++ {
		tok, err := lx.NextToken()
		if err != nil {
			return nil, wrapError(pc.GetBacktrace(lx.Span()), err)
		}
		if tok.Type == lexer.EOF {
			return nil, newError(pc.GetBacktrace(tok.Span), "macro %s expects %d arguments", ident.Text, macro.NumberOfParameters)
		}
		body = strings.ReplaceAll(body, fmt.Sprintf("$%d", i), tok.Text)
	}

	invocationSpan := lexer.Span{Start: ident.Span.Start, End: lx.Span().End}
	childTrace := pc.GetBacktrace(invocationSpan)
	if childTrace.IsRecursive() {
		return nil, newError(childTrace, "detected recursive invocation of macro %s", ident.Text)
	}

	macroCtx := trace.ParsingContext{File: macro.DefinitionFile, GlobalOffset: macro.DefinitionOffset, Trace: childTrace}
	mlx := lexer.New(body)

	var children []statement.Statement
	for {
		tok, err := mlx.NextToken()
		if err != nil {
			return nil, wrapError(macroCtx.GetBacktrace(mlx.Span()), err)
		}
		switch tok.Type {
		case lexer.EOF:
			return statement.MacroInvocation{Children: children}, nil
		case lexer.Comment:
			continue
		case lexer.Identifier:
			child, err := dispatchMacroBodyIdentifier(tok, mlx, st, macroCtx)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		default:
			return nil, newError(macroCtx.GetBacktrace(tok.Span), "unexpected %s, expected Identifier", tok.Type)
		}
	}
}

// dispatchMacroBodyIdentifier is dispatchIdentifier's counterpart for
// statements inside a macro body: it builds and returns a statement
// rather than appending one to st.Statements, since the whole expansion
// becomes a single MacroInvocation in the caller's statement list.
func dispatchMacroBodyIdentifier(ident lexer.Token, lx *lexer.Lexer, st *state, pc trace.ParsingContext) (statement.Statement, error) {
	stmt, ok, err := fixedMnemonic(ident, lx)
	if err != nil {
		return nil, wrapError(pc.GetBacktrace(lexer.Span{Start: ident.Span.Start, End: lx.Span().End}), err)
	}
	if ok {
		return stmt, nil
	}

	macro, ok := st.Macros[ident.Text]
	if !ok {
		return nil, newError(pc.GetBacktrace(ident.Span), "unrecognised identifier %s", ident.Text)
	}
	return parseMacroInvocation(ident, macro, lx, st, pc)
}
