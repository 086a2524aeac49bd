package asm

import "strconv"

// A lexer scans one logical source line into a slice of tokens. It is
// re-created for every line; no state survives from one line to the next,
// which is what keeps the `+`/`-` disambiguation a pure function of the
// current line's text.
type lexer struct {
	errs []Diagnostic
}

// lex tokenises the given line (already stripped of its trailing comment),
// returning every token up to and including a trailing tEOL.
func (lx *lexer) lex(line fstring) []token {
	var toks []token
	for {
		t, remain := lx.next(line)
		toks = append(toks, t)
		if t.kind == tEOF || t.kind == tEOL {
			break
		}
		line = remain
	}
	return toks
}

func (lx *lexer) addError(l fstring, msg string) {
	lx.errs = append(lx.errs, Diagnostic{Line: l.row, Column: l.column, Level: LevelError, Message: msg})
}

// next scans a single token from the head of line.
func (lx *lexer) next(line fstring) (token, fstring) {
	line = line.consumeWhitespace()
	if line.isEmpty() {
		return token{kind: tEOL, line: line}, line
	}

	c := line.at(0)
	switch {
	case line.startsWithChar('$'):
		return lx.lexHex(line)

	case line.startsWithChar('%') && binarynum(line.at(1)):
		return lx.lexBinary(line)

	case decimal(c):
		return lx.lexDecimal(line)

	case line.startsWithChar('\''):
		return lx.lexChar(line)

	case line.startsWithChar('"'):
		return lx.lexString(line)

	case line.startsWithChar('.') && identifierStartChar(line.at(1)):
		name, remain := line.consume(1).consumeWhile(identifierChar)
		return token{kind: tLocalIdent, line: line, name: "." + name.str}, remain

	case line.startsWithChar('!'):
		return lx.lexBang(line)

	case line.startsWithChar('+'):
		return lx.lexPlusRun(line)

	case line.startsWithChar('-'):
		return lx.lexMinusRun(line)

	case identifierStartChar(c):
		name, remain := line.consumeWhile(identifierChar)
		return token{kind: tIdent, line: line, name: name.str}, remain

	default:
		return lx.lexOperator(line)
	}
}

func (lx *lexer) lexHex(line fstring) (token, fstring) {
	digits, remain := line.consume(1).consumeWhile(hexadecimal)
	if digits.isEmpty() || len(digits.str) > 8 {
		lx.addError(line, "invalid hexadecimal literal")
		return token{kind: tNumber, line: line}, remain
	}
	v, _ := strconv.ParseUint(digits.str, 16, 64)
	return token{kind: tNumber, line: line, num: int32(uint32(v))}, remain
}

func (lx *lexer) lexBinary(line fstring) (token, fstring) {
	digits, remain := line.consume(1).consumeWhile(binarynum)
	if digits.isEmpty() || len(digits.str) > 32 {
		lx.addError(line, "invalid binary literal")
		return token{kind: tNumber, line: line}, remain
	}
	v, _ := strconv.ParseUint(digits.str, 2, 64)
	return token{kind: tNumber, line: line, num: int32(uint32(v))}, remain
}

func (lx *lexer) lexDecimal(line fstring) (token, fstring) {
	digits, remain := line.consumeWhile(decimal)
	v, err := strconv.ParseInt(digits.str, 10, 64)
	if err != nil || v > 0xFFFFFFFF {
		lx.addError(line, "numeric literal overflow")
	}
	return token{kind: tNumber, line: line, num: int32(uint32(v))}, remain
}

// escapeByte maps the lexer's supported backslash escapes; \n and \r both
// produce 0x0D, the PETSCII newline.
func escapeByte(c byte) (byte, bool) {
	switch c {
	case 'n', 'r':
		return 0x0D, true
	case 't':
		return 0x09, true
	case '\\':
		return '\\', true
	case '\'':
		return '\'', true
	case '"':
		return '"', true
	case '0':
		return 0x00, true
	}
	return 0, false
}

func (lx *lexer) lexChar(line fstring) (token, fstring) {
	rest := line.consume(1)
	if rest.isEmpty() {
		lx.addError(line, "unterminated character literal")
		return token{kind: tChar, line: line}, rest
	}
	var v byte
	if rest.at(0) == '\\' {
		if rest.isEmpty() || len(rest.str) < 2 {
			lx.addError(line, "unterminated character literal")
			return token{kind: tChar, line: line}, rest
		}
		esc, ok := escapeByte(rest.at(1))
		if !ok {
			lx.addError(line, "unknown escape sequence")
		}
		v = esc
		rest = rest.consume(2)
	} else {
		v = rest.at(0)
		rest = rest.consume(1)
	}
	if rest.isEmpty() || rest.at(0) != '\'' {
		lx.addError(line, "unterminated character literal")
		return token{kind: tChar, line: line}, rest
	}
	rest = rest.consume(1)
	return token{kind: tChar, line: line, num: int32(v)}, rest
}

func (lx *lexer) lexString(line fstring) (token, fstring) {
	rest := line.consume(1)
	var b []byte
	for {
		if rest.isEmpty() {
			lx.addError(line, "unterminated string literal")
			break
		}
		c := rest.at(0)
		if c == '"' {
			rest = rest.consume(1)
			break
		}
		if c == '\\' {
			if len(rest.str) < 2 {
				lx.addError(line, "unterminated string literal")
				rest = rest.consume(1)
				break
			}
			esc, ok := escapeByte(rest.at(1))
			if !ok {
				lx.addError(line, "unknown escape sequence")
			}
			b = append(b, esc)
			rest = rest.consume(2)
			continue
		}
		b = append(b, c)
		rest = rest.consume(1)
	}
	return token{kind: tString, line: line, str: string(b)}, rest
}

// lexBang handles `!` at the start of a token: a directive name follows a
// letter, or the fixed two-digit sequences 08/16/24/32 (08 and 16 are
// aliases for !byte/!word; 24 and 32 lex as directive names but have no
// handler); otherwise `!` alone is the logical-not operator.
func (lx *lexer) lexBang(line fstring) (token, fstring) {
	rest := line.consume(1)
	if rest.startsWith(alpha) {
		name, remain := rest.consumeWhile(identifierChar)
		return token{kind: tDirective, line: line, name: name.str}, remain
	}
	if len(rest.str) >= 2 {
		digits := rest.str[:2]
		switch digits {
		case "08", "16", "24", "32":
			return token{kind: tDirective, line: line, name: digits}, rest.consume(2)
		}
	}
	return token{kind: tBang, line: line}, rest
}

// lexPlusRun implements §4.1's macro-call / `+` operator / anonymous-forward
// disambiguation for a run of `+` characters.
func (lx *lexer) lexPlusRun(line fstring) (token, fstring) {
	run, remain := line.consumeWhile(func(c byte) bool { return c == '+' })
	n := len(run.str)

	if remain.startsWith(identifierStartChar) {
		if n == 1 && leftIsLabelStartOrTerminator(line) {
			name, after := remain.consumeWhile(identifierChar)
			return token{kind: tMacroCall, line: line, name: name.str}, after
		}
		// Inside an expression: the run is `+` operators; only the first is
		// consumed here, the rest re-tokenise on the next call.
		return token{kind: tPlus, line: line}, line.consume(1)
	}

	if remain.startsWith(primaryStartChar) {
		if n == 1 {
			return token{kind: tPlus, line: line}, remain
		}
		return token{kind: tAnonFwd, line: line, count: n}, remain
	}

	return token{kind: tAnonFwd, line: line, count: n}, remain
}

// leftIsLabelStartOrTerminator reports whether everything to the left of
// line on the current source line is blank, or the nearest non-space
// character to the left is a label-terminating `:`.
func leftIsLabelStartOrTerminator(line fstring) bool {
	left := line.leftContext()
	for i := len(left) - 1; i >= 0; i-- {
		c := left[i]
		if c == ' ' || c == '\t' {
			continue
		}
		return c == ':'
	}
	return true
}

// lexMinusRun implements the `-` half of §4.1: a run of length 1 followed
// by something that can start a primary expression is the `-` operator;
// otherwise it is an anonymous-backward token carrying the run length.
func (lx *lexer) lexMinusRun(line fstring) (token, fstring) {
	run, remain := line.consumeWhile(func(c byte) bool { return c == '-' })
	n := len(run.str)

	if n == 1 && (decimal(remain.at(0)) || remain.startsWithChar('$') || remain.startsWithChar('%') ||
		remain.startsWithChar('(') || identifierStartChar(remain.at(0))) {
		return token{kind: tMinus, line: line}, remain
	}
	return token{kind: tAnonBack, line: line, count: n}, remain
}

// lexOperator handles every remaining punctuation/operator token, matching
// two-character forms greedily before the one-character forms.
func (lx *lexer) lexOperator(line fstring) (token, fstring) {
	two := map[string]tokenKind{
		"<<": tShl, ">>": tShr, "<=": tLe, ">=": tGe, "<>": tNe,
	}
	if len(line.str) >= 2 {
		if k, ok := two[line.str[:2]]; ok {
			return token{kind: k, line: line}, line.consume(2)
		}
	}
	one := map[byte]tokenKind{
		'*': tStar, '/': tSlash, '%': tPercent, '&': tAmp, '|': tPipe,
		'^': tCaret, '~': tTilde, '<': tLt, '>': tGt, '=': tAssign,
		'(': tLParen, ')': tRParen, ',': tComma, ':': tColon, '#': tHash,
	}
	if k, ok := one[line.at(0)]; ok {
		return token{kind: k, line: line}, line.consume(1)
	}
	lx.addError(line, "unexpected character")
	return token{kind: tEOF, line: line}, line.consume(1)
}
