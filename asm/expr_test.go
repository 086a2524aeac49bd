package asm

import "testing"

// These exercise expression evaluation end-to-end through the assembler,
// the same way driver_test.go's image-comparison tests do, since expr
// trees are only ever built and evaluated in the context of a running
// assembly (precedence, lo/hi byte splitting, and the anonymous-label
// encoding all depend on the symbol table and current PC).

func TestExprPrecedence(t *testing.T) {
	code := "\t*= $1000\n" +
		"\t!byte 2+3*4\n" + // 2+(3*4) = 14
		"\t!byte (2+3)*4\n" // 20
	checkImage(t, code, "0E14")
}

func TestExprLoHiByte(t *testing.T) {
	code := "\t*= $1000\n" +
		"\t!byte <$1234\n" + // low byte
		"\t!byte >$1234\n" // high byte
	checkImage(t, code, "3412")
}

func TestExprBitwiseAndShift(t *testing.T) {
	code := "\t*= $1000\n" +
		"\t!byte $0F & $FF\n" +
		"\t!byte $01 << 4\n" +
		"\t!byte $F0 >> 4\n" +
		"\t!byte $0A | $05\n" +
		"\t!byte $FF ^ $0F\n"
	checkImage(t, code, "0F100F0FF0")
}

func TestExprComparisonOperators(t *testing.T) {
	code := "\t*= $1000\n" +
		"\t!byte 1 = 1\n" +
		"\t!byte 1 <> 2\n" +
		"\t!byte 1 < 2\n" +
		"\t!byte 2 > 1\n"
	checkImage(t, code, "01010101")
}

func TestExprUnaryNegation(t *testing.T) {
	code := "\t*= $1000\n" +
		"\t!byte -1 & $FF\n" // two's complement of 1 in a byte is $FF
	checkImage(t, code, "FF")
}

func TestExprParentheses(t *testing.T) {
	code := "\t*= $1000\n" +
		"\t!byte (1+2)*(3+4)\n" // 21
	checkImage(t, code, "15")
}

func TestExprHereOperator(t *testing.T) {
	// `*` refers to the program counter at the start of the current statement.
	code := "\t*= $1000\n" +
		"\t!byte *-$1000\n" +
		"\t!byte *-$1000\n"
	checkImage(t, code, "0001")
}
