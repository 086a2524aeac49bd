package asm

import (
	"github.com/nst-forge/acme65/m6502"
)

// canonicalDirectiveName maps every alias in §4.9's directive table to the
// single name the execution switch below dispatches on.
func canonicalDirectiveName(name string) string {
	switch name {
	case "by", "db", "08":
		return "byte"
	case "wo", "dw", "16":
		return "word"
	case "tx":
		return "text"
	case "res":
		return "skip"
	case "zn":
		return "zone"
	case "src", "include":
		return "source"
	case "endm":
		return "endmacro"
	default:
		return name
	}
}

// ctx builds the evaluator context for the statement currently executing.
func (d *assembler) ctx() *evalContext {
	return &evalContext{syms: d.syms, anon: d.anon, pc: d.pc, pass: d.pass, zone: d.zone}
}

// emitBytes advances pc and realPC by len(bytes) and, when emit is true,
// writes them into the memory image at the real (true) address. pc and
// realPC always advance together regardless of pseudo-PC state; only the
// write target differs while a !pseudopc section is open.
func (d *assembler) emitBytes(bytes []byte, emit bool) {
	if emit {
		for i, b := range bytes {
			d.img.store(d.realPC+int32(i), b)
		}
	}
	d.pc += int32(len(bytes))
	d.realPC += int32(len(bytes))
}

// execStatement carries out one surviving statement's effect: label
// attachment, then its kind-specific body. Called with emit=false during
// pass 1 (sizing and symbol definition only) and emit=true during pass 2
// (final byte emission). Returns the bytes produced, if any.
func (d *assembler) execStatement(st *statement, emit bool) []byte {
	d.handleLabel(st.label)
	switch st.kind {
	case stmtAssignment:
		d.execAssignment(st)
		return nil
	case stmtInstruction:
		return d.execInstruction(st, emit)
	case stmtDirective:
		return d.execDirective(st, emit)
	default:
		return nil
	}
}

// handleLabel implements §4.7's label-definition rule: a global label
// re-binds the current zone to its own name; a local label mangles against
// the current zone; anonymous labels record their position in the tracker
// rather than the symbol table. Label definitions always succeed (they
// never carry the CONSTANT flag, so redefinition simply overwrites).
func (d *assembler) handleLabel(lbl *labelAttachment) {
	if lbl == nil {
		return
	}
	flags := symFlag(0)
	if d.pc >= 0 && d.pc <= 0xFF {
		flags |= symZeropage
	}
	switch lbl.kind {
	case labelGlobal:
		d.zone = lbl.name
		d.syms.define(defineRequest{name: lbl.name, value: d.pc, flags: flags})
	case labelLocal:
		mangled := mangleLocal(lbl.name, d.zone)
		d.syms.define(defineRequest{name: mangled, value: d.pc, flags: flags, isLocal: true})
	case labelAnonForward:
		d.anon.defineForward(d.pc, d.currentFile(), lbl.line.row)
	case labelAnonBackward:
		d.anon.defineBackward(d.pc, d.currentFile(), lbl.line.row)
	}
}

// execAssignment implements §4.7's `name = expr` flag rule: CONSTANT in
// pass 1 outside a loop, DEFINED|FORCE_UPDATE in pass 2 or inside a loop.
func (d *assembler) execAssignment(st *statement) {
	r := eval(st.assign.expr, d.ctx())
	if !r.defined {
		if d.pass == 2 {
			d.addDiag(d.currentFile(), st.line, LevelError, "undefined symbol in assignment to '%s'", st.assign.name)
		}
		return
	}
	force := d.pass == 2 || d.loopDepth > 0
	flags := symFlag(0)
	if d.pass == 1 && d.loopDepth == 0 {
		flags = symConstant
	} else {
		flags = symForceUpdate
	}
	if _, err := d.syms.define(defineRequest{name: st.assign.name, value: r.value, flags: flags, force: force}); err != nil {
		// force is always true in pass 2 (define never errors then), so a
		// duplicate-constant conflict can only be detected here, in pass 1.
		d.addDiag(d.currentFile(), st.line, LevelError, "duplicate constant '%s'", st.assign.name)
	}
}

// execInstruction implements §4.5/§4.6: pass 1 selects and pins an
// addressing mode (falling back to the absolute family on an unresolved
// forward reference); pass 2 may only swap to a same-size zero-page
// encoding (reoptimize) and then emits the opcode plus operand bytes.
func (d *assembler) execInstruction(st *statement, emit bool) []byte {
	instr := st.instr
	var value int32
	var valueKnown bool
	if instr.operand != nil {
		r := eval(instr.operand, d.ctx())
		value, valueKnown = r.value, r.defined
	}

	if d.pass == 1 {
		mode := selectMode(instr.mnemonic, instr, value, valueKnown)
		inst := lookupForCPU(instr.mnemonic, mode, d.cpu)
		if inst == nil {
			d.addDiag(d.currentFile(), st.line, LevelError, "no %s addressing mode for %s on cpu %s", mode, instr.mnemonic, d.cpu)
			return nil
		}
		instr.committed = inst
		instr.opcode, instr.size, instr.cycles = inst.Opcode, inst.Length, inst.Cycles
		instr.pagePenalty = inst.BPCycles > 0
		d.pc += int32(inst.Length)
		d.realPC += int32(inst.Length)
		return nil
	}

	committed := instr.committed
	if committed == nil {
		return nil
	}
	if instr.operand != nil && !valueKnown {
		d.addDiag(d.currentFile(), st.line, LevelError, "undefined symbol in operand of %s", instr.mnemonic)
	}
	final := reoptimize(instr.mnemonic, committed, value, valueKnown)
	bytes, err := encodeOperandBytes(final, value, d.pc)
	if err == errBranchOutOfRange {
		d.addDiag(d.currentFile(), st.line, LevelError, "branch target out of range for %s", instr.mnemonic)
	}
	if len(bytes) != int(committed.Length) {
		// Defensive: reoptimize must not change length; fall back to the
		// pass-1 committed encoding if it somehow did.
		bytes, _ = encodeOperandBytes(committed, value, d.pc)
	}
	instr.committed = final
	instr.opcode, instr.size, instr.cycles = final.Opcode, final.Length, final.Cycles
	instr.pagePenalty = final.BPCycles > 0

	d.emitBytes(bytes, emit)
	return bytes
}

// encodeOperandBytes renders one instruction's opcode and operand bytes for
// the chosen encoding, computing the relative branch displacement from pc
// (the address of the branch opcode) when inst.Mode is REL.
func encodeOperandBytes(inst *m6502.Instruction, value int32, pc int32) ([]byte, error) {
	switch inst.Mode {
	case m6502.IMP, m6502.ACC:
		return []byte{inst.Opcode}, nil
	case m6502.IMM, m6502.ZPG, m6502.ZPX, m6502.ZPY, m6502.IDX, m6502.IDY:
		return []byte{inst.Opcode, byte(value)}, nil
	case m6502.ABS, m6502.ABX, m6502.ABY, m6502.IND:
		if inst.Length == 2 {
			// 65C02 (zp) indirect: a single zero-page operand byte.
			return []byte{inst.Opcode, byte(value)}, nil
		}
		return []byte{inst.Opcode, byte(value), byte(value >> 8)}, nil
	case m6502.REL:
		offset := value - (pc + 2)
		if offset < -128 || offset > 127 {
			return []byte{inst.Opcode, 0}, errBranchOutOfRange
		}
		return []byte{inst.Opcode, byte(int8(offset))}, nil
	default:
		return []byte{inst.Opcode}, nil
	}
}

// execDirective dispatches a directive statement to its §4.9 handler.
func (d *assembler) execDirective(st *statement, emit bool) []byte {
	switch canonicalDirectiveName(st.dir.name) {
	case "byte":
		return d.execByte(st, emit)
	case "word":
		return d.execWord(st, emit)
	case "text":
		return d.execText(st, emit)
	case "pet":
		return d.execPet(st, emit)
	case "scr":
		return d.execScr(st, emit)
	case "null":
		return d.execNull(st, emit)
	case "fill":
		return d.execFill(st, emit)
	case "skip":
		d.execSkip(st)
		return nil
	case "align":
		return d.execAlign(st, emit)
	case "org":
		d.execOrg(st)
		return nil
	case "basic":
		return d.execBasic(st, emit)
	case "binary":
		return d.execBinary(st, emit)
	case "pseudopc":
		d.execPseudoPC(st)
		return nil
	case "realpc":
		d.execRealPC(st)
		return nil
	case "cpu":
		d.execCPU(st)
		return nil
	case "zone":
		d.execZone(st)
		return nil
	case "error":
		d.execErrorWarn(st, LevelError)
		return nil
	case "warn":
		d.execErrorWarn(st, LevelWarning)
		return nil
	default:
		if d.pass == 2 {
			d.addDiag(d.currentFile(), st.line, LevelWarning, "unknown directive '!%s' ignored", st.dir.name)
		}
		return nil
	}
}

func (d *assembler) execByte(st *statement, emit bool) []byte {
	bytes := make([]byte, 0, len(st.dir.args))
	for _, a := range st.dir.args {
		r := eval(a, d.ctx())
		v := int32(0)
		if r.defined {
			v = r.value
		} else if d.pass == 2 {
			d.addDiag(d.currentFile(), st.line, LevelError, "undefined symbol in !byte argument")
		}
		b, trunc := byteArg(v)
		if trunc && d.pass == 2 {
			d.addDiag(d.currentFile(), st.line, LevelWarning, "!byte value %d truncated", v)
		}
		bytes = append(bytes, b)
	}
	d.emitBytes(bytes, emit)
	return bytes
}

func (d *assembler) execWord(st *statement, emit bool) []byte {
	bytes := make([]byte, 0, len(st.dir.args)*2)
	for _, a := range st.dir.args {
		r := eval(a, d.ctx())
		v := int32(0)
		if r.defined {
			v = r.value
		} else if d.pass == 2 {
			d.addDiag(d.currentFile(), st.line, LevelError, "undefined symbol in !word argument")
		}
		bytes = append(bytes, byte(v), byte(v>>8))
	}
	d.emitBytes(bytes, emit)
	return bytes
}

func (d *assembler) execText(st *statement, emit bool) []byte {
	if !st.dir.hasStrArg {
		if d.pass == 2 {
			d.addDiag(d.currentFile(), st.line, LevelError, "!text requires a string argument")
		}
		return nil
	}
	bytes := []byte(st.dir.strArg)
	d.emitBytes(bytes, emit)
	return bytes
}

func (d *assembler) execPet(st *statement, emit bool) []byte {
	if !st.dir.hasStrArg {
		if d.pass == 2 {
			d.addDiag(d.currentFile(), st.line, LevelError, "!pet requires a string argument")
		}
		return nil
	}
	src := st.dir.strArg
	bytes := make([]byte, len(src))
	for i := 0; i < len(src); i++ {
		bytes[i] = petsciiByte(src[i])
	}
	d.emitBytes(bytes, emit)
	return bytes
}

func (d *assembler) execScr(st *statement, emit bool) []byte {
	if !st.dir.hasStrArg {
		if d.pass == 2 {
			d.addDiag(d.currentFile(), st.line, LevelError, "!scr requires a string argument")
		}
		return nil
	}
	src := st.dir.strArg
	bytes := make([]byte, len(src))
	for i := 0; i < len(src); i++ {
		bytes[i] = screenCodeByte(src[i])
	}
	d.emitBytes(bytes, emit)
	return bytes
}

func (d *assembler) execNull(st *statement, emit bool) []byte {
	if !st.dir.hasStrArg {
		if d.pass == 2 {
			d.addDiag(d.currentFile(), st.line, LevelError, "!null requires a string argument")
		}
		return nil
	}
	bytes := append([]byte(st.dir.strArg), 0x00)
	d.emitBytes(bytes, emit)
	return bytes
}

func (d *assembler) execFill(st *statement, emit bool) []byte {
	if len(st.dir.args) == 0 {
		if d.pass == 2 {
			d.addDiag(d.currentFile(), st.line, LevelError, "!fill requires a count")
		}
		return nil
	}
	nR := eval(st.dir.args[0], d.ctx())
	n := int32(0)
	if nR.defined {
		n = nR.value
	} else if d.pass == 2 {
		d.addDiag(d.currentFile(), st.line, LevelError, "!fill count must be constant")
	}
	if n < 0 || n > 65536 {
		if d.pass == 2 {
			d.addDiag(d.currentFile(), st.line, LevelError, "!fill count %d out of range", n)
		}
		n = 0
	}
	v := int32(0)
	if len(st.dir.args) > 1 {
		if r := eval(st.dir.args[1], d.ctx()); r.defined {
			v = r.value
		}
	}
	bytes := make([]byte, n)
	for i := range bytes {
		bytes[i] = byte(v)
	}
	d.emitBytes(bytes, emit)
	return bytes
}

func (d *assembler) execSkip(st *statement) {
	n := int32(0)
	if len(st.dir.args) > 0 {
		if r := eval(st.dir.args[0], d.ctx()); r.defined {
			n = r.value
		}
	}
	d.pc += n
	d.realPC += n
}

func (d *assembler) execAlign(st *statement, emit bool) []byte {
	n := int32(1)
	if len(st.dir.args) > 0 {
		if r := eval(st.dir.args[0], d.ctx()); r.defined {
			n = r.value
		}
	}
	if d.pass == 2 && !isPowerOfTwo(int(n)) {
		d.addDiag(d.currentFile(), st.line, LevelWarning, "!align value %d is not a power of two", n)
	}
	v := int32(0)
	if len(st.dir.args) > 1 {
		if r := eval(st.dir.args[1], d.ctx()); r.defined {
			v = r.value
		}
	}
	var pad int32
	if n > 0 {
		if rem := d.pc % n; rem != 0 {
			pad = n - rem
		}
	}
	bytes := make([]byte, pad)
	for i := range bytes {
		bytes[i] = byte(v)
	}
	d.emitBytes(bytes, emit)
	return bytes
}

func (d *assembler) execOrg(st *statement) {
	if len(st.dir.args) == 0 {
		return
	}
	r := eval(st.dir.args[0], d.ctx())
	if !r.defined {
		if d.pass == 2 {
			d.addDiag(d.currentFile(), st.line, LevelError, "!org target must be constant")
		}
		return
	}
	d.pc = r.value
	if !d.inPseudoPC {
		d.realPC = r.value
	}
}

func (d *assembler) execBasic(st *statement, emit bool) []byte {
	lineNo := int32(10)
	var explicitAddr *int32
	if len(st.dir.args) > 0 {
		if r := eval(st.dir.args[0], d.ctx()); r.defined {
			lineNo = r.value
		}
	}
	if len(st.dir.args) > 1 {
		if r := eval(st.dir.args[1], d.ctx()); r.defined {
			v := r.value
			explicitAddr = &v
		}
	}
	bytes := basicStubBytes(d.pc, lineNo, explicitAddr)
	d.emitBytes(bytes, emit)
	return bytes
}

func (d *assembler) execBinary(st *statement, emit bool) []byte {
	if !st.dir.hasStrArg {
		if d.pass == 2 {
			d.addDiag(d.currentFile(), st.line, LevelError, "!binary requires a filename")
		}
		return nil
	}
	path, err := d.resolver.Resolve(st.dir.strArg, d.currentFile())
	if err != nil {
		if d.pass == 2 {
			d.addDiag(d.currentFile(), st.line, LevelError, "cannot find binary file '%s'", st.dir.strArg)
		}
		return nil
	}
	data, err := d.reader.ReadFile(path)
	if err != nil {
		if d.pass == 2 {
			d.addDiag(d.currentFile(), st.line, LevelError, "cannot read binary file '%s': %v", path, err)
		}
		return nil
	}
	ln := int32(len(data))
	off := int32(0)
	if len(st.dir.args) > 1 {
		if r := eval(st.dir.args[1], d.ctx()); r.defined {
			ln = r.value
		}
	}
	if len(st.dir.args) > 2 {
		if r := eval(st.dir.args[2], d.ctx()); r.defined {
			off = r.value
		}
	}
	if off < 0 || int(off) > len(data) {
		off = int32(len(data))
	}
	end := off + ln
	if end > int32(len(data)) {
		end = int32(len(data))
	}
	if end < off {
		end = off
	}
	slice := data[off:end]
	d.emitBytes(slice, emit)
	return slice
}

func (d *assembler) execPseudoPC(st *statement) {
	if d.inPseudoPC {
		d.addDiag(d.currentFile(), st.line, LevelError, "nested !pseudopc")
		return
	}
	target := int32(0)
	if len(st.dir.args) > 0 {
		if r := eval(st.dir.args[0], d.ctx()); r.defined {
			target = r.value
		}
	}
	d.pc = target
	d.inPseudoPC = true
}

func (d *assembler) execRealPC(st *statement) {
	if !d.inPseudoPC {
		d.addDiag(d.currentFile(), st.line, LevelError, "!realpc without matching !pseudopc")
		return
	}
	d.pc = d.realPC
	d.inPseudoPC = false
}

func (d *assembler) execCPU(st *statement) {
	cpu, ok := m6502.ParseCPUType(st.dir.strArg)
	if !ok {
		if d.pass == 2 {
			d.addDiag(d.currentFile(), st.line, LevelError, "unknown cpu '%s'", st.dir.strArg)
		}
		return
	}
	d.cpu = cpu
}

func (d *assembler) execZone(st *statement) {
	name := ""
	if len(st.dir.args) > 0 {
		name = st.dir.args[0].name
	}
	if name == "" {
		name = zoneName("_zone_", d.zoneCounter)
		d.zoneCounter++
	}
	d.zone = name
}

func (d *assembler) execErrorWarn(st *statement, level Level) {
	if d.pass != 2 {
		return
	}
	msg := st.dir.strArg
	d.addDiag(d.currentFile(), st.line, level, "%s", msg)
}
