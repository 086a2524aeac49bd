package asm

// evalResult is the evaluator's output per §4.3.
type evalResult struct {
	value    int32
	defined  bool
	zeropage bool
}

// evalContext carries everything the evaluator needs but does not own:
// the symbol store, the anonymous-label tracker, the current PC, the pass
// number and the active zone. The driver owns all of these; the evaluator
// changes them only by marking looked-up symbols as referenced (creating a
// placeholder for an unknown name) and by advancing the anonymous-forward
// cursor on a pass-2 `+` reference.
type evalContext struct {
	syms  *symbolStore
	anon  *anonTracker
	pc    int32
	pass  int
	zone  string
}

func zeropageOf(v int32) bool { return v >= 0 && v <= 0xFF }

// eval implements the evaluator semantics of §4.3.
func eval(e *expr, ctx *evalContext) evalResult {
	switch {
	case e.op == eNumber:
		return evalResult{value: e.num, defined: true, zeropage: zeropageOf(e.num)}

	case e.op == eHere:
		return evalResult{value: ctx.pc, defined: true, zeropage: ctx.pc <= 0xFF}

	case e.op == eString:
		// A bare string used where a value is required evaluates to its
		// first byte, matching how the lexer treats a single-quoted
		// character literal; multi-byte strings are only meaningful to
		// data directives, which read e.str directly rather than calling
		// eval.
		if len(e.str) > 0 {
			return evalResult{value: int32(e.str[0]), defined: true, zeropage: true}
		}
		return evalResult{value: 0, defined: true, zeropage: true}

	case e.op == eSymbol:
		return evalSymbol(e, ctx)

	case e.op.isUnary():
		return evalUnary(e, ctx)

	case e.op.isBinary():
		return evalBinary(e, ctx)
	}
	return evalResult{}
}

func evalSymbol(e *expr, ctx *evalContext) evalResult {
	if n, ok := e.anonForward(); ok {
		v, ok := ctx.anon.resolveForward(n, ctx.pass)
		if !ok {
			return evalResult{defined: false}
		}
		return evalResult{value: v, defined: true, zeropage: zeropageOf(v)}
	}
	if n, ok := e.anonBackward(); ok {
		v, ok := ctx.anon.resolveBackward(n)
		if !ok {
			return evalResult{defined: false}
		}
		return evalResult{value: v, defined: true, zeropage: zeropageOf(v)}
	}

	name := e.name
	if len(name) > 0 && name[0] == '.' {
		name = mangleLocal(name, ctx.zone)
	}

	sym := ctx.syms.reference(name)
	if !sym.flags.has(symDefined) {
		return evalResult{defined: false}
	}
	return evalResult{
		value:    sym.value,
		defined:  true,
		zeropage: sym.flags.has(symZeropage) || zeropageOf(sym.value),
	}
}

func evalUnary(e *expr, ctx *evalContext) evalResult {
	c := eval(e.child0, ctx)
	if !c.defined {
		return evalResult{defined: false}
	}
	switch e.op {
	case eNeg:
		return evalResult{value: -c.value, defined: true, zeropage: zeropageOf(-c.value)}
	case eNot:
		v := ^c.value
		return evalResult{value: v, defined: true, zeropage: zeropageOf(v)}
	case eLogNot:
		v := int32(0)
		if c.value == 0 {
			v = 1
		}
		return evalResult{value: v, defined: true, zeropage: true}
	case eLo:
		v := c.value & 0xFF
		return evalResult{value: v, defined: true, zeropage: true}
	case eHi:
		v := (c.value >> 8) & 0xFF
		return evalResult{value: v, defined: true, zeropage: true}
	}
	return evalResult{}
}

func evalBinary(e *expr, ctx *evalContext) evalResult {
	l := eval(e.child0, ctx)
	r := eval(e.child1, ctx)
	defined := l.defined && r.defined
	if !defined {
		return evalResult{defined: false}
	}

	a, b := l.value, r.value
	var v int32
	switch e.op {
	case eAdd:
		v = a + b
	case eSub:
		v = a - b
	case eMul:
		v = a * b
	case eDiv:
		if b == 0 {
			v = 0
		} else {
			v = a / b
		}
	case eMod:
		if b == 0 {
			v = 0
		} else {
			v = a % b
		}
	case eAnd:
		v = a & b
	case eOr:
		v = a | b
	case eXor:
		v = a ^ b
	case eShl:
		v = a << uint32(b)
	case eShr:
		// Logical shift: treat the left operand as unsigned 32-bit.
		v = int32(uint32(a) >> uint32(b))
	case eEq:
		v = boolInt(a == b)
	case eNe:
		v = boolInt(a != b)
	case eLt:
		v = boolInt(a < b)
	case eGt:
		v = boolInt(a > b)
	case eLe:
		v = boolInt(a <= b)
	case eGe:
		v = boolInt(a >= b)
	}
	return evalResult{value: v, defined: true, zeropage: zeropageOf(v)}
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
