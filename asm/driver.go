package asm

import (
	"fmt"
	"io"
	"strings"

	"github.com/nst-forge/acme65/m6502"
)

// Option is a bitmask of driver tracing behavior, gated the same way the
// teacher gates its own verbose/non-verbose output.
type Option uint8

const (
	// Verbose prints a one-line-per-statement trace of pass activity.
	Verbose Option = 1 << iota
	// Trace additionally dumps the bytes emitted by each assembled line.
	Trace
)

// AssembledLine is the record the data model calls out: everything pass 2
// needs to re-walk and re-emit a statement that survived pass 1.
type AssembledLine struct {
	stmt       *statement
	pc         int32
	realPC     int32
	inPseudoPC bool
	zone       string
	text       string
	Bytes      []byte
	Cycles     byte
}

// Address returns the virtual program-counter value the line was assembled
// at (after pass 2 has run, this address and the line's bytes are final).
func (l *AssembledLine) Address() int32 { return l.pc }

// Text returns the original source line, for listings.
func (l *AssembledLine) Text() string { return l.text }

// Result is the outcome of a successful or partially-successful assembly.
type Result struct {
	Image       []byte
	LowestAddr  int32
	HighestAddr int32
	Symbols     []SymbolInfo
	Lines       []*AssembledLine
	Diagnostics []Diagnostic
}

// SymbolInfo is a read-only snapshot of one defined symbol, used by the
// listing package's symbol-file and listing writers.
type SymbolInfo struct {
	Name    string
	Value   int32
	Defined bool
}

type includeFrame struct {
	fileIndex int
	filename  string
}

const maxIncludeDepth = 32

// assembler is the two-pass driver's state, per §4.8. Everything below the
// driver (lexer, expression machinery, opcode table) is a pure function;
// the driver is the only thing in the package that owns mutable state.
type assembler struct {
	opt Option
	out io.Writer

	img        *image
	pc         int32
	realPC     int32
	inPseudoPC bool

	syms *symbolStore
	anon *anonTracker
	zone string

	zoneCounter int

	macros *macroTable
	expand macroExpander

	cond condStack

	includes []includeFrame
	files    []string

	cpu  m6502.CPUType
	pass int

	// loopDepth is nonzero while replaying a !for/!while body, per §4.7's
	// rule that assignments inside a loop always use FORCE_UPDATE.
	loopDepth int

	errCount  int
	warnCount int

	lines []*AssembledLine

	resolver *pathResolver
	reader   FileReader

	// memFile/memSource let Assemble hand the driver in-memory source for
	// the top-level file without going through the FileReader; every
	// recursive include still resolves and reads from disk.
	memFile   string
	memSource []byte

	diags []Diagnostic
}

// NewAssembler creates a driver ready to assemble one top-level file.
// out receives verbose/trace output; it may be nil (equivalent to
// io.Discard) when opt carries neither Verbose nor Trace.
func NewAssembler(opt Option, out io.Writer) *assembler {
	if out == nil {
		out = io.Discard
	}
	reader := osFileReader{}
	return &assembler{
		opt:      opt,
		out:      out,
		img:      newImage(),
		syms:     newSymbolStore(),
		anon:     newAnonTracker(),
		macros:   newMacroTable(),
		cpu:      m6502.C6510,
		resolver: newPathResolver(reader),
		reader:   reader,
	}
}

// AddIncludePath registers a directory searched (after the including file's
// own directory) when resolving `!source`/`!include` and `!binary` paths.
func (d *assembler) AddIncludePath(path string) { d.resolver.AddIncludePath(path) }

// AddIncludePathsFromEnv splits an environment variable on delimiter and
// registers each non-empty piece as a search path.
func (d *assembler) AddIncludePathsFromEnv(varName, delimiter string) {
	d.resolver.AddIncludePathsFromEnv(varName, delimiter)
}

// Define pre-registers a command-line `-D NAME[=VALUE]` constant. Defines
// are applied once, before pass 1 begins; the symbol store is not reset
// between passes, so they stay in effect for pass 2.
func (d *assembler) Define(name string, value int32) {
	d.syms.define(defineRequest{name: name, value: value, flags: symConstant})
}

// SetCPU overrides the default CPU gating programmatically (§6).
func (d *assembler) SetCPU(cpu m6502.CPUType) { d.cpu = cpu }

// AssembleFile reads path through the driver's FileReader and assembles it.
func AssembleFile(path string, opt Option, out io.Writer, defines map[string]int32, includePaths []string, cpu m6502.CPUType) (*Result, error) {
	d := NewAssembler(opt, out)
	d.cpu = cpu
	for _, p := range includePaths {
		d.AddIncludePath(p)
	}
	for name, v := range defines {
		d.Define(name, v)
	}
	return d.run(path, nil)
}

// Assemble assembles source text directly, as though it were the contents
// of filename (used by tests and by any caller that already has source in
// memory rather than on disk).
func Assemble(filename string, source []byte, opt Option, out io.Writer) (*Result, error) {
	d := NewAssembler(opt, out)
	return d.run(filename, source)
}

// run drives both passes over filename. When source is non-nil it is used
// directly for the top-level file (Assemble's in-memory path); otherwise
// filename is resolved and read through the FileReader like any include.
func (d *assembler) run(filename string, source []byte) (*Result, error) {
	if source != nil {
		d.memFile = filename
		d.memSource = source
	}

	d.logSection("Pass 1")
	d.pass = 1
	d.runPass1(filename, "", fstring{})
	if d.cond.unclosed() {
		d.addDiag(filename, fstring{}, LevelError, "unterminated !if at end of input")
	}

	d.logSection("Pass 2")
	d.pass = 2
	d.pc, d.realPC, d.inPseudoPC = 0, 0, false
	d.anon.resetForPass()
	d.expand.resetForPass()
	d.zoneCounter = 0
	d.zone = ""
	d.cond = condStack{}
	d.runPass2()

	res := d.result()
	if d.errCount > 0 {
		return res, ErrAssemble
	}
	return res, nil
}

func (d *assembler) result() *Result {
	var syms []SymbolInfo
	for _, s := range d.syms.table {
		syms = append(syms, SymbolInfo{Name: s.display, Value: s.value, Defined: s.flags.has(symDefined)})
	}
	return &Result{
		Image:       d.img.bytes(),
		LowestAddr:  int32(d.img.lowest),
		HighestAddr: int32(d.img.highest),
		Symbols:     syms,
		Lines:       d.lines,
		Diagnostics: d.diags,
	}
}

func (d *assembler) addDiag(file string, l fstring, level Level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	d.diags = append(d.diags, Diagnostic{File: file, Line: l.row, Column: l.column, Level: level, Message: msg})
	if level == LevelError {
		d.errCount++
	} else {
		d.warnCount++
	}
}

func (d *assembler) currentFile() string {
	if len(d.includes) == 0 {
		return ""
	}
	return d.includes[len(d.includes)-1].filename
}

func (d *assembler) fileOf(fileIndex int) string {
	if fileIndex < 0 || fileIndex >= len(d.files) {
		return ""
	}
	return d.files[fileIndex]
}

// ---- logging, gated by Option, in the teacher's fmt.Fprintf style ----

func (d *assembler) logSection(name string) {
	if d.opt&Verbose == 0 {
		return
	}
	rule := strings.Repeat("-", len(name)+6)
	fmt.Fprintln(d.out, rule)
	fmt.Fprintf(d.out, "-- %s --\n", name)
	fmt.Fprintln(d.out, rule)
}

func (d *assembler) logLine(line fstring, format string, args ...interface{}) {
	if d.opt&Verbose == 0 {
		return
	}
	detail := fmt.Sprintf(format, args...)
	fmt.Fprintf(d.out, "%-3d %-3d | %-24s | %s\n", line.row, line.column+1, detail, line.str)
}

func (d *assembler) logBytes(addr int32, b []byte) {
	if d.opt&Trace == 0 {
		return
	}
	for i, n := 0, len(b); i < n; i += 4 {
		j := i + 4
		if j > n {
			j = n
		}
		fmt.Fprintf(d.out, "%04X- %s\n", int(addr)+i, byteString(b[i:j]))
	}
}
