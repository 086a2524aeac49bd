package asm

// exprOp is the closed tag of an expression tree node.
type exprOp byte

const (
	eNumber exprOp = iota
	eString
	eSymbol
	eHere // `*`, current PC

	// unary
	eNeg
	eNot // bitwise complement ~
	eLogNot
	eLo // < low byte
	eHi // > high byte

	// binary
	eAdd
	eSub
	eMul
	eDiv
	eMod
	eAnd
	eOr
	eXor
	eShl
	eShr
	eEq
	eNe
	eLt
	eGt
	eLe
	eGe
)

func (op exprOp) isUnary() bool {
	switch op {
	case eNeg, eNot, eLogNot, eLo, eHi:
		return true
	}
	return false
}

func (op exprOp) isBinary() bool {
	switch op {
	case eAdd, eSub, eMul, eDiv, eMod, eAnd, eOr, eXor, eShl, eShr, eEq, eNe, eLt, eGt, eLe, eGe:
		return true
	}
	return false
}

// expr is a node in an expression tree. Trees are owned by the statement
// that holds them; cloning (for macro/loop re-parses) is always deep since
// each expansion gets a freshly parsed tree.
type expr struct {
	op     exprOp
	line   fstring
	num    int32  // eNumber
	str    string // eString
	name   string // eSymbol: raw name as written, including leading '.' for locals
	child0 *expr
	child1 *expr
}

func numExpr(line fstring, v int32) *expr   { return &expr{op: eNumber, line: line, num: v} }
func stringExpr(line fstring, s string) *expr { return &expr{op: eString, line: line, str: s} }
func symbolExpr(line fstring, name string) *expr {
	return &expr{op: eSymbol, line: line, name: name}
}
func hereExpr(line fstring) *expr { return &expr{op: eHere, line: line} }
func unaryExpr(op exprOp, line fstring, child *expr) *expr {
	return &expr{op: op, line: line, child0: child}
}
func binaryExpr(op exprOp, line fstring, l, r *expr) *expr {
	return &expr{op: op, line: line, child0: l, child1: r}
}

// anonForward and anonBackward report whether e is a synthetic
// anonymous-label reference and return its run length, per §4.2's `__anon_fwd_<n>` / `__anon_back_<n>`
// naming convention.
func (e *expr) anonForward() (n int, ok bool) {
	return parseAnonName(e, "__anon_fwd_")
}

func (e *expr) anonBackward() (n int, ok bool) {
	return parseAnonName(e, "__anon_back_")
}

func parseAnonName(e *expr, prefix string) (int, bool) {
	if e.op != eSymbol || len(e.name) <= len(prefix) || e.name[:len(prefix)] != prefix {
		return 0, false
	}
	n := 0
	for _, c := range e.name[len(prefix):] {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
