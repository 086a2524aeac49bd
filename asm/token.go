package asm

// tokenKind is the closed tag of a lexical token.
type tokenKind byte

const (
	tEOF tokenKind = iota
	tEOL
	tNumber
	tString
	tChar
	tIdent
	tLocalIdent
	tAnonFwd
	tAnonBack
	tDirective
	tMacroCall

	// punctuation / operators
	tPlus
	tMinus
	tStar
	tSlash
	tPercent
	tAmp
	tPipe
	tCaret
	tTilde
	tBang
	tLt
	tGt
	tLe
	tGe
	tEq
	tNe
	tShl
	tShr
	tLParen
	tRParen
	tComma
	tColon
	tHash
	tAssign
)

// token is a tagged variant: kind selects which payload field is live.
type token struct {
	kind  tokenKind
	line  fstring // source span of this token
	num   int32   // tNumber, tChar
	str   string  // tString (owned bytes)
	name  string  // tIdent, tLocalIdent, tDirective, tMacroCall (text, sans sigil; tLocalIdent keeps its '.')
	count int     // tAnonFwd, tAnonBack (run length)
}

func (t token) isValue() bool {
	switch t.kind {
	case tNumber, tChar, tString, tIdent, tLocalIdent, tAnonFwd, tAnonBack:
		return true
	}
	return false
}
