package asm

import "github.com/nst-forge/acme65/m6502"

// stmtKind is the closed tag of a parsed statement.
type stmtKind byte

const (
	stmtEmpty stmtKind = iota
	stmtLabelOnly
	stmtInstruction
	stmtDirective
	stmtAssignment
	stmtMacroCall
	stmtError
)

// labelKind distinguishes the four mutually exclusive label forms.
type labelKind byte

const (
	labelNone labelKind = iota
	labelGlobal
	labelLocal
	labelAnonForward
	labelAnonBackward
)

// labelAttachment is the label (if any) carried by a statement.
type labelAttachment struct {
	kind  labelKind
	name  string // raw text, including leading '.' for locals; empty for anonymous
	count int    // run length, for anonymous forms
	line  fstring
}

// instrPayload is the instruction-specific payload of a stmtInstruction.
type instrPayload struct {
	mnemonic    string
	mode        m6502.Mode
	operand     *expr // nil for implied/accumulator
	opcode      byte
	size        byte
	cycles      byte
	pagePenalty bool
	hasHash     bool
	hasXIndex   bool
	hasYIndex   bool
	isIndirect  bool

	// committed is the encoding pass 1 pinned for this line; pass 2 may
	// rewrite its opcode (never its length) via reoptimize, and updates
	// this pointer to the final choice for listings.
	committed *m6502.Instruction
}

// directivePayload is the directive-specific payload of a stmtDirective.
type directivePayload struct {
	name      string // without the leading '!', lower-cased
	args      []*expr
	strArg    string
	hasStrArg bool
}

// assignPayload is the payload of a stmtAssignment (`name = expr`).
type assignPayload struct {
	name string
	expr *expr
}

// macroCallPayload is the payload of a stmtMacroCall (`+name arg, arg...`).
// Arguments are kept as raw source text rather than parsed expressions
// because macro expansion is a textual substitution (§4.8): an argument
// may reference a symbol that only exists inside the macro body.
type macroCallPayload struct {
	name string
	args []string
}

// statement is the tagged variant produced by the statement parser.
type statement struct {
	kind      stmtKind
	label     *labelAttachment
	instr     *instrPayload
	dir       *directivePayload
	assign    *assignPayload
	macroCall *macroCallPayload
	errMsg    string
	line      fstring // original source text, kept for listings
}
