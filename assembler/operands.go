package assembler

import (
	"fmt"

	"github.com/asm16/m16vm/lexer"
	"github.com/asm16/m16vm/statement"
	"github.com/asm16/m16vm/trace"
)

func expect(lx *lexer.Lexer, want lexer.TokenType) (lexer.Token, error) {
	tok, err := lx.NextToken()
	if err != nil {
		return lexer.Token{}, err
	}
	if tok.Type != want {
		return lexer.Token{}, fmt.Errorf("expected %s, found %s %q", want, tok.Type, tok.Text)
	}
	return tok, nil
}

func parseRegister(lx *lexer.Lexer) (uint16, error) {
	tok, err := expect(lx, lexer.Register)
	if err != nil {
		return 0, err
	}
	return tok.RegisterNo, nil
}

func parseNumericLiteral(lx *lexer.Lexer) (int32, error) {
	tok, err := expect(lx, lexer.NumericLiteral)
	if err != nil {
		return 0, err
	}
	return tok.Number, nil
}

func parseStringLiteral(lx *lexer.Lexer) (string, error) {
	tok, err := expect(lx, lexer.String)
	if err != nil {
		return "", err
	}
	return tok.Str, nil
}

func parseBranchConditionOperand(lx *lexer.Lexer) (uint16, error) {
	tok, err := expect(lx, lexer.BranchConditions)
	if err != nil {
		return 0, err
	}
	return tok.Conditions, nil
}

// parseLabelOrOffsetOperand parses "#offset" or ".LABEL", the operand
// shape shared by LEA and Branch.
func parseLabelOrOffsetOperand(lx *lexer.Lexer) (statement.LabelOrOffset, error) {
	tok, err := lx.NextToken()
	if err != nil {
		return statement.LabelOrOffset{}, err
	}
	switch tok.Type {
	case lexer.NumericLiteral:
		return statement.FromOffset(tok.Number), nil
	case lexer.Label:
		return statement.FromLabel(tok.Label), nil
	default:
		return statement.LabelOrOffset{}, fmt.Errorf("expected a numeric literal or a label, found %s %q", tok.Type, tok.Text)
	}
}

func wrapLexErr(bt trace.Backtrace, err error) error {
	if err == nil {
		return nil
	}
	return wrapError(bt, err)
}
