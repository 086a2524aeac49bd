package asm

import "strconv"

// lineCursor is a cursor over a sequence of already-tagged source lines. The
// same type backs both a freshly read file (built by newLineCursor) and a
// macro/loop body replay (built directly from already-expanded fstrings),
// so capture and dispatch logic never has to distinguish the two.
type lineCursor struct {
	lines []fstring
	idx   int
}

func newLineCursor(fileIndex int, src []byte) *lineCursor {
	text := string(src)
	start := 0
	var lines []fstring
	row := 1
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == '\n' {
			raw := text[start:i]
			if len(raw) > 0 && raw[len(raw)-1] == '\r' {
				raw = raw[:len(raw)-1]
			}
			lines = append(lines, newFstring(fileIndex, row, raw))
			row++
			start = i + 1
		}
	}
	return &lineCursor{lines: lines}
}

func (c *lineCursor) next() (fstring, bool) {
	if c.idx >= len(c.lines) {
		return fstring{}, false
	}
	l := c.lines[c.idx]
	c.idx++
	return l, true
}

// runPass1 reads filename (resolving and loading it through the driver's
// FileReader, or using the in-memory source handed to Assemble for the
// top-level file) and processes every line of it. fromFile/fromLine
// identify the including statement, for diagnostics.
func (d *assembler) runPass1(filename, fromFile string, fromLine fstring) error {
	if len(d.includes) >= maxIncludeDepth {
		d.addDiag(fromFile, fromLine, LevelError, "include depth exceeded resolving '%s'", filename)
		return nil
	}

	var resolved string
	var src []byte
	if len(d.includes) == 0 && d.memSource != nil && filename == d.memFile {
		resolved, src = filename, d.memSource
	} else {
		var err error
		resolved, err = d.resolver.Resolve(filename, fromFile)
		if err != nil {
			d.addDiag(fromFile, fromLine, LevelError, "cannot find '%s'", filename)
			return nil
		}
		src, err = d.reader.ReadFile(resolved)
		if err != nil {
			d.addDiag(fromFile, fromLine, LevelError, "cannot read '%s': %v", resolved, err)
			return nil
		}
	}

	fileIndex := len(d.files)
	d.files = append(d.files, resolved)
	d.includes = append(d.includes, includeFrame{fileIndex: fileIndex, filename: resolved})
	err := d.runLines(newLineCursor(fileIndex, src))
	d.includes = d.includes[:len(d.includes)-1]
	return err
}

// runLines drives the per-line loop shared by the top-level file scan,
// every recursive include, every macro expansion and every loop-body
// replay: parse one statement, then dispatch it. The only error it can
// return is errTooManyErrors; every other failure is reported as a
// diagnostic and parsing continues.
func (d *assembler) runLines(c *lineCursor) error {
	for {
		if d.errCount >= maxErrors {
			return errTooManyErrors
		}
		line, ok := c.next()
		if !ok {
			return nil
		}

		stripped := line.stripTrailingComment()
		var p parser
		st := p.parseStatement(stripped)
		for _, e := range p.errs {
			d.addDiag(d.currentFile(), fstring{row: e.Line, column: e.Column}, LevelError, "%s", e.Message)
		}
		if st.kind == stmtError {
			d.addDiag(d.currentFile(), st.line, LevelError, "%s", st.errMsg)
			continue
		}

		if err := d.dispatchPass1(st, c); err != nil {
			return err
		}
	}
}

// dispatchPass1 implements the statement-kind ordering of §4.8's pass 1
// algorithm: conditionals always update the stack; macro/loop bodies are
// always captured (to keep source-line nesting balanced) with their
// semantic effect gated on the conditional stack's active state; everything
// else is discarded outright when inactive.
func (d *assembler) dispatchPass1(st *statement, c *lineCursor) error {
	if st.dir != nil {
		switch canonicalDirectiveName(st.dir.name) {
		case "if":
			cond := false
			if len(st.dir.args) > 0 {
				r := eval(st.dir.args[0], d.ctx())
				cond = r.defined && r.value != 0
			}
			if err := d.cond.pushIf(cond); err != nil {
				d.addDiag(d.currentFile(), st.line, LevelError, "%v", err)
			}
			return nil
		case "ifdef", "ifndef":
			defined := false
			if len(st.dir.args) > 0 {
				nm := st.dir.args[0].name
				if len(nm) > 0 && nm[0] == '.' {
					nm = mangleLocal(nm, d.zone)
				}
				if sym := d.syms.lookup(nm); sym != nil {
					defined = sym.flags.has(symDefined)
				}
			}
			cond := defined
			if canonicalDirectiveName(st.dir.name) == "ifndef" {
				cond = !defined
			}
			if err := d.cond.pushIf(cond); err != nil {
				d.addDiag(d.currentFile(), st.line, LevelError, "%v", err)
			}
			return nil
		case "else":
			if err := d.cond.doElse(); err != nil {
				d.addDiag(d.currentFile(), st.line, LevelError, "%v", err)
			}
			return nil
		case "endif":
			if err := d.cond.doEndif(); err != nil {
				d.addDiag(d.currentFile(), st.line, LevelError, "%v", err)
			}
			return nil
		}
	}

	active := d.cond.active()

	if st.dir != nil {
		switch canonicalDirectiveName(st.dir.name) {
		case "macro":
			def, err := d.captureMacro(st, c)
			if err != nil {
				d.addDiag(d.currentFile(), st.line, LevelError, "%v", err)
				return nil
			}
			if def != nil && active {
				if err := d.macros.define(def); err != nil {
					d.addDiag(d.currentFile(), st.line, LevelError, "macro '%s' already defined", def.name)
				}
			}
			return nil
		case "for", "while":
			body, err := d.captureLoop(c)
			if err != nil {
				d.addDiag(d.currentFile(), st.line, LevelError, "%v", err)
				return nil
			}
			if active {
				return d.execLoopDirective(st, canonicalDirectiveName(st.dir.name), body)
			}
			return nil
		}
	}

	if !active {
		return nil
	}

	if st.kind == stmtMacroCall {
		return d.execMacroCall(st)
	}

	if st.dir != nil && canonicalDirectiveName(st.dir.name) == "source" {
		return d.execSourceInclude(st)
	}

	d.commitLine(st)
	return nil
}

// captureMacro consumes raw source lines until the !macro that opened this
// capture is matched by its !endmacro, tracking nested !macro/!endmacro
// depth so an inner macro definition's body is skipped over rather than
// misread as top-level statements. It runs unconditionally, even inside an
// inactive conditional branch, to keep the source cursor balanced; the
// caller decides whether to register the result. It returns a nil def
// (nothing to register) rather than an error when the !macro had no name.
func (d *assembler) captureMacro(st *statement, c *lineCursor) (*macroDef, error) {
	var name string
	var params []string
	if len(st.dir.args) > 0 {
		name = st.dir.args[0].name
		for _, a := range st.dir.args[1:] {
			params = append(params, a.name)
		}
	} else {
		d.addDiag(d.currentFile(), st.line, LevelError, "!macro requires a name")
	}

	depth := 1
	var body []fstring
	for {
		line, ok := c.next()
		if !ok {
			return nil, errUnterminatedMacro
		}
		stripped := line.stripTrailingComment()
		var p parser
		bst := p.parseStatement(stripped)
		if bst.dir != nil {
			switch canonicalDirectiveName(bst.dir.name) {
			case "macro":
				depth++
			case "endmacro":
				depth--
				if depth == 0 {
					if name == "" {
						return nil, nil
					}
					return &macroDef{name: name, params: params, body: body}, nil
				}
			}
		}
		body = append(body, stripped)
	}
}

// captureLoop mirrors captureMacro for !for/!while bodies: nested
// !for/!while increment depth, !end decrements it (the same terminator
// closes either construct).
func (d *assembler) captureLoop(c *lineCursor) ([]fstring, error) {
	depth := 1
	var body []fstring
	for {
		line, ok := c.next()
		if !ok {
			return nil, errUnterminatedLoop
		}
		stripped := line.stripTrailingComment()
		var p parser
		bst := p.parseStatement(stripped)
		if bst.dir != nil {
			switch canonicalDirectiveName(bst.dir.name) {
			case "for", "while":
				depth++
			case "end":
				depth--
				if depth == 0 {
					return body, nil
				}
			}
		}
		body = append(body, stripped)
	}
}

// execLoopDirective runs a captured !for/!while body, per §4.8: a !for
// binds its variable to each value in the ascending/descending inclusive
// range, substituting it textually into the body and also defining it as a
// symbol; a !while re-evaluates its condition before every iteration, capped
// at maxWhileIterations.
func (d *assembler) execLoopDirective(st *statement, name string, body []fstring) error {
	d.loopDepth++
	defer func() { d.loopDepth-- }()

	if name == "for" {
		if len(st.dir.args) < 3 {
			d.addDiag(d.currentFile(), st.line, LevelError, "!for requires a variable and two bounds")
			return nil
		}
		varName := st.dir.args[0].name
		startR := eval(st.dir.args[1], d.ctx())
		endR := eval(st.dir.args[2], d.ctx())
		if !startR.defined || !endR.defined {
			d.addDiag(d.currentFile(), st.line, LevelError, "!for bounds must be constant")
			return nil
		}
		for _, v := range forRange(startR.value, endR.value) {
			d.syms.define(defineRequest{name: varName, value: v, force: true})
			valStr := strconv.Itoa(int(v))
			lines := make([]fstring, len(body))
			for i, line := range body {
				lines[i] = newFstring(line.fileIndex, line.row, substituteWords(line.str, []string{varName}, []string{valStr}))
			}
			if err := d.runLines(&lineCursor{lines: lines}); err != nil {
				return err
			}
		}
		return nil
	}

	// !while
	if len(st.dir.args) < 1 {
		d.addDiag(d.currentFile(), st.line, LevelError, "!while requires a condition")
		return nil
	}
	iterations := 0
	for {
		r := eval(st.dir.args[0], d.ctx())
		if !r.defined || r.value == 0 {
			return nil
		}
		iterations++
		if iterations > maxWhileIterations {
			d.addDiag(d.currentFile(), st.line, LevelError, "!while iteration cap exceeded")
			return nil
		}
		if err := d.runLines(&lineCursor{lines: body}); err != nil {
			return err
		}
	}
}

// execMacroCall expands a `+name arg, arg...` call: substitute parameters
// into the captured body, install a fresh _macro_<n> zone for its duration,
// and replay the expanded lines through runLines.
func (d *assembler) execMacroCall(st *statement) error {
	def, ok := d.macros.lookup(st.macroCall.name)
	if !ok {
		d.addDiag(d.currentFile(), st.line, LevelError, "unknown macro '%s'", st.macroCall.name)
		return nil
	}
	expanded, zone, err := d.expand.expand(def, st.macroCall.args)
	if err != nil {
		d.addDiag(d.currentFile(), st.line, LevelError, "%v", err)
		return nil
	}
	savedZone := d.zone
	d.zone = zone
	d.expand.depth++
	runErr := d.runLines(&lineCursor{lines: expanded})
	d.expand.depth--
	d.zone = savedZone
	return runErr
}

// execSourceInclude handles `!source`/`!src`/`!include`: recursively
// assembles the named file in place.
func (d *assembler) execSourceInclude(st *statement) error {
	if !st.dir.hasStrArg {
		d.addDiag(d.currentFile(), st.line, LevelError, "missing include filename")
		return nil
	}
	return d.runPass1(st.dir.strArg, d.currentFile(), st.line)
}

// commitLine executes a statement that survived pass 1 (it is reachable,
// not a macro-definition body, and not a source-include) and records an
// AssembledLine snapshot of the PC/zone/pseudo-PC state it executed under,
// for pass 2 to restore and replay.
func (d *assembler) commitLine(st *statement) {
	zoneSnap := d.zone
	pcSnap := d.pc
	realSnap := d.realPC
	pseudoSnap := d.inPseudoPC

	d.execStatement(st, false)

	d.lines = append(d.lines, &AssembledLine{
		stmt:       st,
		pc:         pcSnap,
		realPC:     realSnap,
		inPseudoPC: pseudoSnap,
		zone:       zoneSnap,
		text:       st.line.full,
	})
	d.logLine(st.line, "pc=%04X", pcSnap)
}

// runPass2 walks the assembled-line vector built by pass 1 in order,
// restoring each line's recorded pc/realPC/zone/pseudo-PC state before
// re-evaluating and re-emitting its bytes with the now-complete symbol
// table. Pass 2 never re-processes conditionals, macros, loops or includes:
// every one of those was already resolved into this vector by pass 1.
func (d *assembler) runPass2() {
	for _, line := range d.lines {
		if d.errCount >= maxErrors {
			return
		}
		d.pc = line.pc
		d.realPC = line.realPC
		d.inPseudoPC = line.inPseudoPC
		d.zone = line.zone

		bytes := d.execStatement(line.stmt, true)
		line.Bytes = bytes
		if line.stmt.kind == stmtInstruction && line.stmt.instr != nil {
			line.Cycles = line.stmt.instr.cycles
		}
		d.logBytes(line.pc, bytes)
	}
}
