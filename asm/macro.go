package asm

import "strings"

// macroDef is a registered `!macro name param, param ... / !endmacro` body,
// captured as raw, unexpanded source lines (§4.8: "capture the raw source of
// the body").
type macroDef struct {
	name   string
	params []string
	body   []fstring
}

// macroTable holds every macro registered during pass 1. Pass 2 replays the
// already-expanded lines recorded by pass 1 and never consults it.
type macroTable struct {
	defs map[string]*macroDef
}

func newMacroTable() *macroTable {
	return &macroTable{defs: make(map[string]*macroDef)}
}

func (t *macroTable) define(def *macroDef) error {
	key := strings.ToUpper(def.name)
	if _, exists := t.defs[key]; exists {
		return errDuplicateMacro
	}
	t.defs[key] = def
	return nil
}

func (t *macroTable) lookup(name string) (*macroDef, bool) {
	d, ok := t.defs[strings.ToUpper(name)]
	return d, ok
}

const maxMacroDepth = 32

// macroExpander owns the unique-id counter used to mint a fresh zone name
// per expansion, and the current expansion depth.
type macroExpander struct {
	uniqueID int
	depth    int
}

func (e *macroExpander) resetForPass() { e.uniqueID = 0 }

// expand substitutes args for def's parameters, word-by-word, across every
// line of the macro body, and returns the expanded text plus the zone name
// the driver should install while assembling it.
func (e *macroExpander) expand(def *macroDef, args []string) ([]fstring, string, error) {
	if e.depth >= maxMacroDepth {
		return nil, "", errMacroDepthExceeded
	}
	zone := zoneName("_macro_", e.uniqueID)
	e.uniqueID++

	values := make([]string, len(def.params))
	for i := range def.params {
		if i < len(args) {
			values[i] = args[i]
		}
	}

	lines := make([]fstring, len(def.body))
	for i, line := range def.body {
		text := substituteWords(line.str, def.params, values)
		lines[i] = newFstring(line.fileIndex, line.row, text)
	}
	return lines, zone, nil
}

func zoneName(prefix string, n int) string {
	const digits = "0123456789"
	if n == 0 {
		return prefix + "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{digits[n%10]}, b...)
		n /= 10
	}
	return prefix + string(b)
}
