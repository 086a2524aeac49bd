package asm

import "fmt"

// exprParser implements the recursive-descent, precedence-climbing parser
// described by the precedence table: each level function parses everything
// at its precedence and above, deferring to the next-higher level for its
// operands. Tokens are pulled lazily from the fstring remainder one at a
// time, so backtracking is free — a level simply declines to advance line
// past a token it does not recognise.
type exprParser struct {
	lx           lexer
	allowStrings bool
	errs         []Diagnostic
}

func (p *exprParser) addError(l fstring, format string, args ...interface{}) {
	p.errs = append(p.errs, Diagnostic{Line: l.row, Column: l.column, Level: LevelError, Message: fmt.Sprintf(format, args...)})
}

// parse parses one expression from line, returning the tree and whatever
// text remains unconsumed (e.g. a trailing `,` in a directive argument
// list, or a trailing register suffix in an operand).
func (p *exprParser) parse(line fstring, allowStrings bool) (*expr, fstring, error) {
	p.errs = nil
	p.lx.errs = nil
	p.allowStrings = allowStrings
	e, remain, err := p.parseOr(line)
	p.errs = append(p.errs, p.lx.errs...)
	return e, remain, err
}

func (p *exprParser) parseOr(line fstring) (*expr, fstring, error) {
	left, remain, err := p.parseXor(line)
	if err != nil {
		return nil, remain, err
	}
	for {
		t, next := p.lx.next(remain)
		if t.kind != tPipe {
			break
		}
		right, next2, err := p.parseXor(next)
		if err != nil {
			return nil, next2, err
		}
		left, remain = binaryExpr(eOr, t.line, left, right), next2
	}
	return left, remain, nil
}

func (p *exprParser) parseXor(line fstring) (*expr, fstring, error) {
	left, remain, err := p.parseAnd(line)
	if err != nil {
		return nil, remain, err
	}
	for {
		t, next := p.lx.next(remain)
		if t.kind != tCaret {
			break
		}
		right, next2, err := p.parseAnd(next)
		if err != nil {
			return nil, next2, err
		}
		left, remain = binaryExpr(eXor, t.line, left, right), next2
	}
	return left, remain, nil
}

func (p *exprParser) parseAnd(line fstring) (*expr, fstring, error) {
	left, remain, err := p.parseCompare(line)
	if err != nil {
		return nil, remain, err
	}
	for {
		t, next := p.lx.next(remain)
		if t.kind != tAmp {
			break
		}
		right, next2, err := p.parseCompare(next)
		if err != nil {
			return nil, next2, err
		}
		left, remain = binaryExpr(eAnd, t.line, left, right), next2
	}
	return left, remain, nil
}

var compareOp = map[tokenKind]exprOp{
	tAssign: eEq, tNe: eNe, tLt: eLt, tGt: eGt, tLe: eLe, tGe: eGe,
}

func (p *exprParser) parseCompare(line fstring) (*expr, fstring, error) {
	left, remain, err := p.parseShift(line)
	if err != nil {
		return nil, remain, err
	}
	for {
		t, next := p.lx.next(remain)
		op, ok := compareOp[t.kind]
		if !ok {
			break
		}
		right, next2, err := p.parseShift(next)
		if err != nil {
			return nil, next2, err
		}
		left, remain = binaryExpr(op, t.line, left, right), next2
	}
	return left, remain, nil
}

func (p *exprParser) parseShift(line fstring) (*expr, fstring, error) {
	left, remain, err := p.parseAdditive(line)
	if err != nil {
		return nil, remain, err
	}
	for {
		t, next := p.lx.next(remain)
		var op exprOp
		switch t.kind {
		case tShl:
			op = eShl
		case tShr:
			op = eShr
		default:
			return left, remain, nil
		}
		right, next2, err := p.parseAdditive(next)
		if err != nil {
			return nil, next2, err
		}
		left, remain = binaryExpr(op, t.line, left, right), next2
	}
}

// parseAdditive implements level 6, including the anonymous-forward and
// anonymous-backward repurposing rule: once a left operand has been parsed,
// an anon token encountered here is reinterpreted as the `+`/`-` operator.
func (p *exprParser) parseAdditive(line fstring) (*expr, fstring, error) {
	left, remain, err := p.parseTerm(line)
	if err != nil {
		return nil, remain, err
	}
	for {
		t, next := p.lx.next(remain)
		var op exprOp
		switch t.kind {
		case tPlus, tAnonFwd:
			op = eAdd
		case tMinus, tAnonBack:
			op = eSub
		default:
			return left, remain, nil
		}
		right, next2, err := p.parseTerm(next)
		if err != nil {
			return nil, next2, err
		}
		left, remain = binaryExpr(op, t.line, left, right), next2
	}
}

func (p *exprParser) parseTerm(line fstring) (*expr, fstring, error) {
	left, remain, err := p.parseUnary(line)
	if err != nil {
		return nil, remain, err
	}
	for {
		t, next := p.lx.next(remain)
		var op exprOp
		switch t.kind {
		case tStar:
			op = eMul
		case tSlash:
			op = eDiv
		case tPercent:
			op = eMod
		default:
			return left, remain, nil
		}
		right, next2, err := p.parseUnary(next)
		if err != nil {
			return nil, next2, err
		}
		left, remain = binaryExpr(op, t.line, left, right), next2
	}
}

// parseUnary implements level 8 (right-associative).
func (p *exprParser) parseUnary(line fstring) (*expr, fstring, error) {
	t, next := p.lx.next(line)
	var op exprOp
	switch t.kind {
	case tMinus:
		op = eNeg
	case tTilde:
		op = eNot
	case tBang:
		op = eLogNot
	case tLt:
		op = eLo
	case tGt:
		op = eHi
	default:
		return p.parsePrimary(line)
	}
	child, remain, err := p.parseUnary(next)
	if err != nil {
		return nil, remain, err
	}
	return unaryExpr(op, t.line, child), remain, nil
}

// parsePrimary implements level 9.
func (p *exprParser) parsePrimary(line fstring) (*expr, fstring, error) {
	t, remain := p.lx.next(line)
	switch t.kind {
	case tNumber, tChar:
		return numExpr(t.line, t.num), remain, nil
	case tString:
		if !p.allowStrings {
			p.addError(t.line, "string literal not allowed here")
			return nil, remain, errParse
		}
		return stringExpr(t.line, t.str), remain, nil
	case tIdent:
		return symbolExpr(t.line, t.name), remain, nil
	case tLocalIdent:
		return symbolExpr(t.line, t.name), remain, nil
	case tAnonFwd:
		return symbolExpr(t.line, fmt.Sprintf("__anon_fwd_%d", t.count)), remain, nil
	case tAnonBack:
		return symbolExpr(t.line, fmt.Sprintf("__anon_back_%d", t.count)), remain, nil
	case tStar:
		return hereExpr(t.line), remain, nil
	case tLParen:
		inner, remain2, err := p.parseOr(remain)
		if err != nil {
			return nil, remain2, err
		}
		close, remain3 := p.lx.next(remain2)
		if close.kind != tRParen {
			p.addError(remain2, "expected ')'")
			return nil, remain2, errParse
		}
		return inner, remain3, nil
	default:
		p.addError(t.line, "expected expression")
		return nil, remain, errParse
	}
}
