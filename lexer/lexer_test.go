package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeAllBasic(t *testing.T) {
	src := "ADD R0 R1 #5\n.LOOP\nBR nzp .LOOP\n"
	tokens, err := TokenizeAll(src)
	require.NoError(t, err)

	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []TokenType{
		Identifier, Register, Register, NumericLiteral,
		Label,
		Identifier, BranchConditions, Label,
		EOF,
	}, types)
}

func TestNumericLiteralNegative(t *testing.T) {
	tok, err := New("#-12").NextToken()
	require.NoError(t, err)
	assert.Equal(t, NumericLiteral, tok.Type)
	assert.EqualValues(t, -12, tok.Number)
}

func TestRegisterVsIdentifier(t *testing.T) {
	tok, err := New("R3").NextToken()
	require.NoError(t, err)
	assert.Equal(t, Register, tok.Type)
	assert.EqualValues(t, 3, tok.RegisterNo)

	tok, err = New("RESULT").NextToken()
	require.NoError(t, err)
	assert.Equal(t, Identifier, tok.Type)
}

func TestBranchConditionCombinations(t *testing.T) {
	for _, text := range []string{"n", "z", "p", "nz", "np", "zp", "nzp"} {
		tok, err := New(text).NextToken()
		require.NoError(t, err)
		assert.Equal(t, BranchConditions, tok.Type, text)
	}

	_, err := New("zn").NextToken()
	assert.Error(t, err)
}

func TestLabelStripsLeadingDot(t *testing.T) {
	tok, err := New(".MAIN").NextToken()
	require.NoError(t, err)
	assert.Equal(t, Label, tok.Type)
	assert.Equal(t, "MAIN", tok.Label)
}

func TestStringEscapeOnlyNewline(t *testing.T) {
	tok, err := New(`"hello\nworld"`).NextToken()
	require.NoError(t, err)
	assert.Equal(t, String, tok.Type)
	assert.Equal(t, "hello\nworld", tok.Str)
}

func TestStringEscapedQuoteDoesNotTerminate(t *testing.T) {
	tok, err := New(`"a\"b"`).NextToken()
	require.NoError(t, err)
	assert.Equal(t, String, tok.Type)
	assert.Equal(t, `a\"b`, tok.Str)
}

func TestMacroKeywordsAndParameter(t *testing.T) {
	tokens, err := TokenizeAll("%macro NAME 2 ADD $0 $0 $1 %endmacro")
	require.NoError(t, err)
	require.Equal(t, MacroStart, tokens[0].Type)
	require.Equal(t, MacroEnd, tokens[len(tokens)-2].Type)

	var params []int32
	for _, tok := range tokens {
		if tok.Type == MacroParameter {
			params = append(params, tok.Number)
		}
	}
	assert.Equal(t, []int32{0, 0, 1}, params)
}

func TestCommentConsumesToNewline(t *testing.T) {
	tokens, err := TokenizeAll("// a comment\nHLT\n")
	require.NoError(t, err)
	require.Equal(t, Comment, tokens[0].Type)
	require.Equal(t, Identifier, tokens[1].Type)
	assert.Equal(t, "HLT", tokens[1].Text)
}

func TestSpanTracksLastToken(t *testing.T) {
	l := New("ADD")
	_, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, Span{0, 3}, l.Span())
}
