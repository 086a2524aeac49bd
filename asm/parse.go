package asm

import (
	"strings"

	"github.com/nst-forge/acme65/m6502"
)

// parser turns one source line into a statement. A fresh parser is not
// required per line — it only wraps an exprParser and an error sink — but
// keeping it as a value lets the driver reuse one across an entire file.
type parser struct {
	ex   exprParser
	errs []Diagnostic
}

func (p *parser) addError(l fstring, msg string) {
	p.errs = append(p.errs, Diagnostic{Line: l.row, Column: l.column, Level: LevelError, Message: msg})
}

func isPlusChar(c byte) bool  { return c == '+' }
func isMinusChar(c byte) bool { return c == '-' }

// parseStatement parses one logical source line per §4.4.
func (p *parser) parseStatement(line fstring) *statement {
	if line.isEmpty() {
		return &statement{kind: stmtEmpty, line: line}
	}

	if line.startsWith(whitespace) {
		return p.parseBody(line.consumeWhitespace(), nil, line)
	}

	label, remain, isAssign, assignName := p.parseLabelCandidate(line)
	if isAssign {
		return p.parseAssignment(remain, assignName, line)
	}
	return p.parseBody(remain, label, line)
}

// parseLabelCandidate recognises the leading label-or-assignment-target
// token of a non-indented line, per rule 2 of §4.4.
func (p *parser) parseLabelCandidate(line fstring) (*labelAttachment, fstring, bool, string) {
	var label *labelAttachment
	var remain fstring
	var rawName string

	switch {
	case line.startsWithChar('+'):
		run, r := line.consumeWhile(isPlusChar)
		label, remain = &labelAttachment{kind: labelAnonForward, count: len(run.str), line: line}, r

	case line.startsWithChar('-'):
		run, r := line.consumeWhile(isMinusChar)
		label, remain = &labelAttachment{kind: labelAnonBackward, count: len(run.str), line: line}, r

	case line.startsWithChar('.') && identifierStartChar(line.at(1)):
		name, r := line.consume(1).consumeWhile(identifierChar)
		rawName = "." + name.str
		label, remain = &labelAttachment{kind: labelLocal, name: rawName, line: line}, r

	case identifierStartChar(line.at(0)):
		name, r := line.consumeWhile(identifierChar)
		rawName = name.str
		label, remain = &labelAttachment{kind: labelGlobal, name: rawName, line: line}, r

	default:
		return nil, line, false, ""
	}

	trimmed := remain.consumeWhitespace()
	if trimmed.startsWithChar('=') {
		return nil, trimmed.consume(1).consumeWhitespace(), true, rawName
	}
	if trimmed.startsWithChar(':') {
		return label, trimmed.consume(1).consumeWhitespace(), false, ""
	}
	return label, trimmed, false, ""
}

func (p *parser) parseAssignment(remain fstring, name string, line fstring) *statement {
	e, after, err := p.ex.parse(remain, false)
	p.errs = append(p.errs, p.ex.errs...)
	if err != nil || !after.isEmpty() {
		return &statement{kind: stmtError, errMsg: "assignment without a valid right-hand side", line: line}
	}
	return &statement{kind: stmtAssignment, assign: &assignPayload{name: name, expr: e}, line: line}
}

// parseBody parses everything that can follow a label (or start a line
// with no label at all): a directive, a macro call, an instruction, an
// origin directive, or an empty tail.
func (p *parser) parseBody(remain fstring, label *labelAttachment, line fstring) *statement {
	if remain.isEmpty() {
		if label != nil {
			return &statement{kind: stmtLabelOnly, label: label, line: line}
		}
		return &statement{kind: stmtEmpty, line: line}
	}

	switch {
	case remain.startsWithChar('!'):
		return p.parseDirective(remain, label, line)

	case remain.startsWithChar('+'):
		return p.parseMacroCall(remain, label, line)

	case remain.startsWithString("*="):
		return p.parseOrigin(remain, label, line)

	case remain.startsWith(identifierStartChar):
		word, after := remain.consumeWhile(identifierChar)
		if m6502.IsMnemonic(word.str) {
			return p.parseInstruction(word.str, after, label, line)
		}
		return &statement{kind: stmtError, label: label, errMsg: "unrecognized mnemonic '" + word.str + "'", line: line}

	default:
		return &statement{kind: stmtError, label: label, errMsg: "unexpected token", line: line}
	}
}

func (p *parser) parseOrigin(remain fstring, label *labelAttachment, line fstring) *statement {
	e, after, err := p.ex.parse(remain.consume(2), false)
	p.errs = append(p.errs, p.ex.errs...)
	if err != nil || !after.isEmpty() {
		p.addError(remain, "invalid origin expression")
		return &statement{kind: stmtError, label: label, errMsg: "invalid origin expression", line: line}
	}
	return &statement{kind: stmtDirective, label: label, dir: &directivePayload{name: "org", args: []*expr{e}}, line: line}
}

func (p *parser) parseMacroCall(remain fstring, label *labelAttachment, line fstring) *statement {
	name, after := remain.consume(1).consumeWhile(identifierChar)
	after = after.consumeWhitespace()
	args := p.splitArgs(after)
	return &statement{kind: stmtMacroCall, label: label, macroCall: &macroCallPayload{name: name.str, args: args}, line: line}
}

// splitArgs splits a comma-separated macro-call argument list into raw text
// segments (no expression parsing — macro expansion is a textual
// substitution, so an argument's meaning is only resolved once it has been
// spliced into the macro body).
func (p *parser) splitArgs(remain fstring) []string {
	var args []string
	for !remain.isEmpty() {
		var seg fstring
		seg, remain = remain.consumeUntilUnquotedChar(',')
		args = append(args, trimSpace(seg.str))
		if !remain.isEmpty() {
			remain = remain.consume(1).consumeWhitespace()
		}
	}
	return args
}

func (l fstring) consumeUntilUnquotedChar(c byte) (consumed, remain fstring) {
	var quote byte
	i := 0
	for ; i < len(l.str); i++ {
		if quote == 0 {
			if l.str[i] == c {
				break
			}
			if l.str[i] == '\'' || l.str[i] == '"' {
				quote = l.str[i]
			}
		} else if l.str[i] == quote {
			quote = 0
		}
	}
	return l.trunc(i), l.consume(i)
}

func trimSpace(s string) string {
	i, j := 0, len(s)
	for i < j && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	for j > i && (s[j-1] == ' ' || s[j-1] == '\t') {
		j--
	}
	return s[i:j]
}

// isCPUDirective reports whether name is !cpu, which never takes an
// expression argument list — the CPU name
// (e.g. "65c02") does not parse as an expression, since it starts with
// digits but is not one.
func isCPUDirective(name string) bool { return strings.EqualFold(name, "cpu") }

func (p *parser) parseDirective(remain fstring, label *labelAttachment, line fstring) *statement {
	var lx lexer
	t, after := lx.next(remain)
	p.errs = append(p.errs, lx.errs...)
	if t.kind != tDirective {
		p.addError(remain, "invalid directive")
		return &statement{kind: stmtError, label: label, errMsg: "invalid directive", line: line}
	}
	after = after.consumeWhitespace()

	if isCPUDirective(t.name) {
		word, _ := after.consumeWhile(func(c byte) bool { return !whitespace(c) })
		return &statement{
			kind:  stmtDirective,
			label: label,
			dir:   &directivePayload{name: "cpu", strArg: word.str, hasStrArg: true},
			line:  line,
		}
	}

	args, strArg, hasStrArg, err := p.parseDirectiveArgs(after)
	if err != nil {
		return &statement{kind: stmtError, label: label, errMsg: "bad directive arguments", line: line}
	}
	return &statement{
		kind:  stmtDirective,
		label: label,
		dir:   &directivePayload{name: strings.ToLower(t.name), args: args, strArg: strArg, hasStrArg: hasStrArg},
		line:  line,
	}
}

func (p *parser) parseDirectiveArgs(remain fstring) (args []*expr, strArg string, hasStrArg bool, err error) {
	for !remain.isEmpty() {
		var seg fstring
		seg, remain = remain.consumeUntilUnquotedChar(',')
		if !seg.isEmpty() || len(args) == 0 {
			e, after, perr := p.ex.parse(seg, true)
			p.errs = append(p.errs, p.ex.errs...)
			if perr != nil || !after.consumeWhitespace().isEmpty() {
				return nil, "", false, errParse
			}
			args = append(args, e)
			if e.op == eString {
				strArg, hasStrArg = e.str, true
			}
		}
		if !remain.isEmpty() {
			remain = remain.consume(1).consumeWhitespace()
		}
	}
	return args, strArg, hasStrArg, nil
}

// parseInstruction parses the operand grammar of §4.4 for a recognised
// mnemonic.
func (p *parser) parseInstruction(mnemonic string, remain fstring, label *labelAttachment, line fstring) *statement {
	remain = remain.consumeWhitespace()
	instr := &instrPayload{mnemonic: mnemonic}

	switch {
	case remain.isEmpty():
		// implied/accumulator, nothing further to parse

	case remain.startsWithChar('#'):
		instr.hasHash = true
		e, after, err := p.ex.parse(remain.consume(1), false)
		p.errs = append(p.errs, p.ex.errs...)
		if err != nil {
			return &statement{kind: stmtError, label: label, errMsg: "invalid immediate operand", line: line}
		}
		instr.operand = e
		remain = after

	case remain.startsWithChar('('):
		operand, after, mode, err := p.parseIndirectOperand(remain.consume(1))
		if err != nil {
			return &statement{kind: stmtError, label: label, errMsg: "invalid indirect operand", line: line}
		}
		instr.isIndirect = true
		instr.hasXIndex = mode == m6502.IDX
		instr.hasYIndex = mode == m6502.IDY
		instr.operand = operand
		remain = after

	default:
		if isBareAccumulator(remain) && accumulatorCapable(mnemonic) {
			remain = remain.consume(1).consumeWhitespace()
			break
		}
		e, after, mode, err := p.parseIndexedOperand(remain)
		if err != nil {
			return &statement{kind: stmtError, label: label, errMsg: "invalid operand", line: line}
		}
		instr.hasXIndex = mode == m6502.ABX
		instr.hasYIndex = mode == m6502.ABY
		instr.operand = e
		remain = after
	}

	if !remain.isEmpty() {
		p.addError(remain, "trailing characters after operand")
		return &statement{kind: stmtError, label: label, errMsg: "trailing characters after operand", line: line}
	}

	return &statement{kind: stmtInstruction, label: label, instr: instr, line: line}
}

func isBareAccumulator(remain fstring) bool {
	rest := remain.consumeWhitespace()
	return (rest.at(0) == 'A' || rest.at(0) == 'a') && len(rest.str) >= 1 &&
		(len(rest.str) == 1 || whitespace(rest.at(1)))
}

func accumulatorCapable(mnemonic string) bool {
	switch mnemonic {
	case "ASL", "LSR", "ROL", "ROR":
		return true
	}
	return false
}

// parseIndirectOperand parses the tail of `(expr[,X])[,Y]` after the
// opening paren has been consumed. The expression parser balances any
// parens inside expr itself, so the comma/closing-paren scan only has to
// look at what comes back as the unconsumed remainder.
func (p *parser) parseIndirectOperand(remain fstring) (*expr, fstring, m6502.Mode, error) {
	e, after, err := p.ex.parse(remain, false)
	p.errs = append(p.errs, p.ex.errs...)
	if err != nil {
		return nil, after, 0, errParse
	}
	after = after.consumeWhitespace()

	mode := m6502.IND
	if after.startsWithString(",X") || after.startsWithString(",x") {
		mode = m6502.IDX
		after = after.consume(2).consumeWhitespace()
	}
	if !after.startsWithChar(')') {
		return nil, after, 0, errParse
	}
	after = after.consume(1).consumeWhitespace()
	if mode == m6502.IND && (after.startsWithString(",Y") || after.startsWithString(",y")) {
		mode = m6502.IDY
		after = after.consume(2)
	}
	return e, after.consumeWhitespace(), mode, nil
}

// parseIndexedOperand parses `expr[,X|Y]` for the direct/absolute form.
func (p *parser) parseIndexedOperand(remain fstring) (*expr, fstring, m6502.Mode, error) {
	e, after, err := p.ex.parse(remain, false)
	p.errs = append(p.errs, p.ex.errs...)
	if err != nil {
		return nil, after, 0, errParse
	}
	after = after.consumeWhitespace()

	mode := m6502.ABS
	if after.startsWithChar(',') {
		after = after.consume(1).consumeWhitespace()
		switch {
		case after.startsWithChar('X') || after.startsWithChar('x'):
			mode, after = m6502.ABX, after.consume(1)
		case after.startsWithChar('Y') || after.startsWithChar('y'):
			mode, after = m6502.ABY, after.consume(1)
		default:
			return nil, after, 0, errParse
		}
	}
	return e, after.consumeWhitespace(), mode, nil
}
