package asm

import "github.com/nst-forge/acme65/m6502"

// selectMode implements §4.5: given the mnemonic, the operand's syntactic
// shape and the evaluator's current read on its value, choose an
// addressing mode. It is a pure function of its inputs — the "selector"
// component has no state of its own, mirroring how the teacher's
// findMatchingInstruction keeps addressing-mode choice separate from
// parsing and code generation.
func selectMode(mnemonic string, p *instrPayload, value int32, valueKnown bool) m6502.Mode {
	if m6502.IsBranch(mnemonic) {
		return m6502.REL
	}
	if p.hasHash {
		return m6502.IMM
	}
	if p.operand == nil {
		if m6502.HasMode(mnemonic, m6502.ACC) {
			return m6502.ACC
		}
		return m6502.IMP
	}
	if p.isIndirect {
		switch {
		case p.hasXIndex:
			return m6502.IDX
		case p.hasYIndex:
			return m6502.IDY
		default:
			return m6502.IND
		}
	}
	if p.hasXIndex {
		if valueKnown && zeropageOf(value) && m6502.HasMode(mnemonic, m6502.ZPX) {
			return m6502.ZPX
		}
		return m6502.ABX
	}
	if p.hasYIndex {
		if valueKnown && zeropageOf(value) && m6502.HasMode(mnemonic, m6502.ZPY) {
			return m6502.ZPY
		}
		return m6502.ABY
	}
	if valueKnown && zeropageOf(value) && m6502.HasMode(mnemonic, m6502.ZPG) {
		return m6502.ZPG
	}
	return m6502.ABS
}

// reoptimize implements the pass-2 re-optimisation rule: if pass 1 settled
// on an absolute-family mode because the operand's value was unknown, and
// the value is now known to fit zero page, and the zero-page encoding
// exists and is the same size as the already-committed absolute encoding,
// switch the opcode byte. The committed size never changes.
func reoptimize(mnemonic string, committed *m6502.Instruction, value int32, valueKnown bool) *m6502.Instruction {
	if !valueKnown || !zeropageOf(value) {
		return committed
	}
	zpMode, ok := zeropageCounterpart(committed.Mode)
	if !ok {
		return committed
	}
	zp := m6502.Lookup(mnemonic, zpMode)
	if zp == nil || zp.Length != committed.Length {
		return committed
	}
	return zp
}

// lookupForCPU returns the encoding for mnemonic in mode that the given CPU
// accepts, skipping any variant rows gated out by §4.6 (an illegal opcode on
// a strict 6502 or a 65C02, or a 65C02 extension on anything else).
func lookupForCPU(mnemonic string, mode m6502.Mode, cpu m6502.CPUType) *m6502.Instruction {
	for _, inst := range m6502.GetInstructions(mnemonic) {
		if inst.Mode == mode && inst.AllowedOn(cpu) {
			return inst
		}
	}
	return nil
}

func zeropageCounterpart(mode m6502.Mode) (m6502.Mode, bool) {
	switch mode {
	case m6502.ABS:
		return m6502.ZPG, true
	case m6502.ABX:
		return m6502.ZPX, true
	case m6502.ABY:
		return m6502.ZPY, true
	}
	return 0, false
}
