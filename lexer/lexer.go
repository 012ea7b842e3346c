package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/asm16/m16vm/condition"
)

// Lexer scans a single source string into a stream of Tokens. It carries
// no file-path knowledge; the assembler package attaches byte offsets to
// a file and filename when building a back-trace.
type Lexer struct {
	src      string
	pos      int
	lastSpan Span
}

// New returns a Lexer over src.
func New(src string) *Lexer {
	return &Lexer{src: src}
}

// Span returns the span of the most recently returned token.
func (l *Lexer) Span() Span {
	return l.lastSpan
}

func (l *Lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) byteAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func isUpperAlnum(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isLowerCond(b byte) bool {
	return b == 'n' || b == 'z' || b == 'p'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// NextToken scans and returns the next token, or an error describing an
// unrecognised lexical fragment. Returns a zero-value EOF token with
// ok=false semantics signalled via Type == EOF when the input is
// exhausted.
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()

	start := l.pos
	if l.pos >= len(l.src) {
		l.lastSpan = Span{start, start}
		return Token{Type: EOF, Span: l.lastSpan}, nil
	}

	c := l.peekByte()

	switch {
	case c == '/' && l.byteAt(1) == '/':
		return l.lexComment(), nil

	case c == '#':
		return l.lexNumericLiteral()

	case c == '.':
		return l.lexLabel()

	case c == '"':
		return l.lexString()

	case c == '%':
		return l.lexMacroKeyword()

	case c == '$':
		return l.lexMacroParameter()

	case isUpperAlnum(c):
		return l.lexUpperRun()

	case isLowerCond(c):
		return l.lexBranchConditions()

	default:
		l.pos++
		l.lastSpan = Span{start, l.pos}
		return Token{}, fmt.Errorf("unexpected character %q at offset %d", c, start)
	}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) lexComment() Token {
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
	if l.pos < len(l.src) {
		l.pos++ // consume trailing newline
	}
	l.lastSpan = Span{start, l.pos}
	return Token{Type: Comment, Span: l.lastSpan, Text: l.src[start:l.pos]}
}

func (l *Lexer) lexNumericLiteral() (Token, error) {
	start := l.pos
	l.pos++ // consume '#'
	if l.peekByte() == '-' {
		l.pos++
	}
	digitsStart := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos == digitsStart {
		l.lastSpan = Span{start, l.pos}
		return Token{}, fmt.Errorf("malformed numeric literal at offset %d", start)
	}
	text := l.src[start:l.pos]
	l.lastSpan = Span{start, l.pos}
	value, err := strconv.ParseInt(text[1:], 10, 32)
	if err != nil {
		return Token{}, fmt.Errorf("failed to parse numeric literal %q: %w", text, err)
	}
	return Token{Type: NumericLiteral, Span: l.lastSpan, Text: text, Number: int32(value)}, nil
}

func (l *Lexer) lexLabel() (Token, error) {
	start := l.pos
	l.pos++ // consume '.'
	nameStart := l.pos
	for l.pos < len(l.src) && isAlnum(l.src[l.pos]) {
		l.pos++
	}
	if l.pos == nameStart {
		l.lastSpan = Span{start, l.pos}
		return Token{}, fmt.Errorf("empty label name at offset %d", start)
	}
	l.lastSpan = Span{start, l.pos}
	name := l.src[nameStart:l.pos]
	return Token{Type: Label, Span: l.lastSpan, Text: l.src[start:l.pos], Label: name}, nil
}

func isAlnum(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// lexString scans a double-quoted string. The closing quote may be
// escaped with a backslash to embed a literal quote without terminating
// the string; the only escape sequence that is actually substituted is
// the two-character sequence \n, which becomes a real newline byte.
// Everything else inside the string is passed through unchanged.
func (l *Lexer) lexString() (Token, error) {
	start := l.pos
	l.pos++ // consume opening quote
	bodyStart := l.pos
	for {
		if l.pos >= len(l.src) {
			l.lastSpan = Span{start, l.pos}
			return Token{}, fmt.Errorf("unterminated string starting at offset %d", start)
		}
		c := l.src[l.pos]
		if c == '\\' && l.byteAt(1) == '"' {
			l.pos += 2
			continue
		}
		if c == '"' {
			break
		}
		l.pos++
	}
	body := l.src[bodyStart:l.pos]
	l.pos++ // consume closing quote
	l.lastSpan = Span{start, l.pos}
	processed := strings.ReplaceAll(body, `\n`, "\n")
	return Token{Type: String, Span: l.lastSpan, Text: l.src[start:l.pos], Str: processed}, nil
}

func (l *Lexer) lexMacroKeyword() (Token, error) {
	start := l.pos
	if strings.HasPrefix(l.src[l.pos:], "%endmacro") {
		l.pos += len("%endmacro")
		l.lastSpan = Span{start, l.pos}
		return Token{Type: MacroEnd, Span: l.lastSpan, Text: l.src[start:l.pos]}, nil
	}
	if strings.HasPrefix(l.src[l.pos:], "%macro") {
		l.pos += len("%macro")
		l.lastSpan = Span{start, l.pos}
		return Token{Type: MacroStart, Span: l.lastSpan, Text: l.src[start:l.pos]}, nil
	}
	l.pos++
	l.lastSpan = Span{start, l.pos}
	return Token{}, fmt.Errorf("unrecognised '%%' directive at offset %d", start)
}

func (l *Lexer) lexMacroParameter() (Token, error) {
	start := l.pos
	l.pos++ // consume '$'
	digitsStart := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos == digitsStart {
		l.lastSpan = Span{start, l.pos}
		return Token{}, fmt.Errorf("malformed macro parameter at offset %d", start)
	}
	text := l.src[start:l.pos]
	l.lastSpan = Span{start, l.pos}
	value, err := strconv.ParseInt(text[1:], 10, 32)
	if err != nil {
		return Token{}, fmt.Errorf("failed to parse macro parameter %q: %w", text, err)
	}
	return Token{Type: MacroParameter, Span: l.lastSpan, Text: text, Number: int32(value)}, nil
}

// lexUpperRun reads a maximal run of [A-Z0-9_] (so that directives such
// as INCLUDE_ONCE form one token) and classifies it as a Register
// (exactly "R" followed by a single digit 0-7) or a plain Identifier
// otherwise.
func (l *Lexer) lexUpperRun() (Token, error) {
	start := l.pos
	for l.pos < len(l.src) && (isUpperAlnum(l.src[l.pos]) || l.src[l.pos] == '_') {
		l.pos++
	}
	text := l.src[start:l.pos]
	l.lastSpan = Span{start, l.pos}

	if len(text) == 2 && text[0] == 'R' && text[1] >= '0' && text[1] <= '7' {
		return Token{Type: Register, Span: l.lastSpan, Text: text, RegisterNo: uint16(text[1] - '0')}, nil
	}
	return Token{Type: Identifier, Span: l.lastSpan, Text: text}, nil
}

var branchConditionWords = map[string]condition.Flags{
	"n":   condition.Neg,
	"z":   condition.Zero,
	"p":   condition.Pos,
	"nz":  condition.Neg | condition.Zero,
	"np":  condition.Neg | condition.Pos,
	"zp":  condition.Zero | condition.Pos,
	"nzp": condition.Neg | condition.Zero | condition.Pos,
}

func (l *Lexer) lexBranchConditions() (Token, error) {
	start := l.pos
	for l.pos < len(l.src) && isLowerCond(l.src[l.pos]) {
		l.pos++
	}
	text := l.src[start:l.pos]
	l.lastSpan = Span{start, l.pos}
	flags, ok := branchConditionWords[text]
	if !ok {
		return Token{}, fmt.Errorf("unrecognised branch condition %q at offset %d", text, start)
	}
	return Token{Type: BranchConditions, Span: l.lastSpan, Text: text, Conditions: uint16(flags)}, nil
}

// TokenizeAll scans src to completion, returning every token including a
// terminal EOF, or the first error encountered.
func TokenizeAll(src string) ([]Token, error) {
	l := New(src)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
