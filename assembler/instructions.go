package assembler

import (
	"github.com/asm16/m16vm/bitfield"
	"github.com/asm16/m16vm/lexer"
	"github.com/asm16/m16vm/statement"
)

// fixedMnemonic parses the operands for one of the assembler's built-in
// (non-macro) mnemonics and directives, given the mnemonic already
// consumed as ident. ok is false when ident does not name a fixed
// mnemonic, in which case the caller should look it up as a macro
// instead.
func fixedMnemonic(ident lexer.Token, lx *lexer.Lexer) (stmt statement.Statement, ok bool, err error) {
	switch ident.Text {
	case "ADD":
		stmt, err = parseAddOrSub(lx, false)
	case "SUB":
		stmt, err = parseAddOrSub(lx, true)
	case "LEA":
		stmt, err = parseLea(lx)
	case "LD":
		stmt, err = parseLoad(lx)
	case "LDI":
		stmt, err = parseLoadImmediate(lx)
	case "ST":
		stmt, err = parseStore(lx)
	case "BR":
		stmt, err = parseBranch(lx)
	case "CALL":
		stmt, err = parseCall(lx)
	case "RET":
		stmt, err = statement.Return{}, nil
	case "HLT":
		stmt, err = statement.Halt{}, nil
	case "SLP":
		stmt, err = parseSleep(lx)
	case "WORD":
		stmt, err = parseWord(lx)
	case "ASCII":
		stmt, err = parseAscii(lx)
	case "BLK":
		stmt, err = parseBlock(lx)
	default:
		return nil, false, nil
	}
	return stmt, true, err
}

func parseAddOrSub(lx *lexer.Lexer, isSub bool) (statement.Statement, error) {
	dr, err := parseRegister(lx)
	if err != nil {
		return nil, err
	}
	sr0, err := parseRegister(lx)
	if err != nil {
		return nil, err
	}
	tok, err := lx.NextToken()
	if err != nil {
		return nil, err
	}
	var enc uint16
	switch tok.Type {
	case lexer.Register:
		enc = statement.EncodeRegisterOperand(tok.RegisterNo)
	case lexer.NumericLiteral:
		enc, err = statement.EncodeImmediateOperand(tok.Number)
		if err != nil {
			return nil, err
		}
	default:
		return nil, unexpectedToken(tok, "a register or a numeric literal")
	}
	if isSub {
		return statement.Sub{Dr: dr, Sr0: sr0, Enc: enc}, nil
	}
	return statement.Add{Dr: dr, Sr0: sr0, Enc: enc}, nil
}

func parseLea(lx *lexer.Lexer) (statement.Statement, error) {
	dr, err := parseRegister(lx)
	if err != nil {
		return nil, err
	}
	operand, err := parseLabelOrOffsetOperand(lx)
	if err != nil {
		return nil, err
	}
	return statement.LoadEffectiveAddress{Dr: dr, Operand: operand}, nil
}

func parseLoad(lx *lexer.Lexer) (statement.Statement, error) {
	dr, err := parseRegister(lx)
	if err != nil {
		return nil, err
	}
	base, err := parseRegister(lx)
	if err != nil {
		return nil, err
	}
	lit, err := parseNumericLiteral(lx)
	if err != nil {
		return nil, err
	}
	offset6, err := bitfield.EncodeSigned(lit, 6)
	if err != nil {
		return nil, err
	}
	return statement.Load{Dr: dr, Base: base, Offset6: offset6}, nil
}

func parseLoadImmediate(lx *lexer.Lexer) (statement.Statement, error) {
	dr, err := parseRegister(lx)
	if err != nil {
		return nil, err
	}
	lit, err := parseNumericLiteral(lx)
	if err != nil {
		return nil, err
	}
	imm9, err := bitfield.EncodeUnsigned(lit, 9)
	if err != nil {
		return nil, err
	}
	return statement.LoadImmediate{Dr: dr, Imm9: imm9}, nil
}

func parseStore(lx *lexer.Lexer) (statement.Statement, error) {
	base, err := parseRegister(lx)
	if err != nil {
		return nil, err
	}
	lit, err := parseNumericLiteral(lx)
	if err != nil {
		return nil, err
	}
	offset6, err := bitfield.EncodeSigned(lit, 6)
	if err != nil {
		return nil, err
	}
	sr, err := parseRegister(lx)
	if err != nil {
		return nil, err
	}
	return statement.Store{Base: base, Offset6: offset6, Sr: sr}, nil
}

func parseBranch(lx *lexer.Lexer) (statement.Statement, error) {
	conds, err := parseBranchConditionOperand(lx)
	if err != nil {
		return nil, err
	}
	operand, err := parseLabelOrOffsetOperand(lx)
	if err != nil {
		return nil, err
	}
	return statement.Branch{Conds: conds, Operand: operand}, nil
}

func parseCall(lx *lexer.Lexer) (statement.Statement, error) {
	tok, err := lx.NextToken()
	if err != nil {
		return nil, err
	}
	switch tok.Type {
	case lexer.Register:
		lit, err := parseNumericLiteral(lx)
		if err != nil {
			return nil, err
		}
		offset8, err := bitfield.EncodeSigned(lit, 8)
		if err != nil {
			return nil, err
		}
		return statement.CallRegRelative{Base: tok.RegisterNo, Offset8: offset8}, nil
	case lexer.NumericLiteral:
		return statement.CallPCRelative{Operand: statement.FromOffset(tok.Number)}, nil
	case lexer.Label:
		return statement.CallPCRelative{Operand: statement.FromLabel(tok.Label)}, nil
	default:
		return nil, unexpectedToken(tok, "a register, a numeric literal or a label")
	}
}

func parseSleep(lx *lexer.Lexer) (statement.Statement, error) {
	lit, err := parseNumericLiteral(lx)
	if err != nil {
		return nil, err
	}
	ms, err := bitfield.EncodeUnsigned(lit, 12)
	if err != nil {
		return nil, err
	}
	return statement.Sleep{DurationMs: ms}, nil
}

func parseWord(lx *lexer.Lexer) (statement.Statement, error) {
	lit, err := parseNumericLiteral(lx)
	if err != nil {
		return nil, err
	}
	value, err := bitfield.EncodeUnsigned(lit, 16)
	if err != nil {
		return nil, err
	}
	return statement.Word{Value: value}, nil
}

func parseAscii(lx *lexer.Lexer) (statement.Statement, error) {
	str, err := parseStringLiteral(lx)
	if err != nil {
		return nil, err
	}
	return statement.Ascii{Value: str}, nil
}

func parseBlock(lx *lexer.Lexer) (statement.Statement, error) {
	lit, err := parseNumericLiteral(lx)
	if err != nil {
		return nil, err
	}
	count, err := bitfield.EncodeUnsigned(lit, 16)
	if err != nil {
		return nil, err
	}
	return statement.Block{Count: count}, nil
}

func unexpectedToken(tok lexer.Token, expected string) error {
	return &tokenError{tok, expected}
}

type tokenError struct {
	tok      lexer.Token
	expected string
}

func (e *tokenError) Error() string {
	return "unexpected " + e.tok.Type.String() + " " + e.tok.Text + ", expected " + e.expected
}
