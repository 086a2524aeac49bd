package listing

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/nst-forge/acme65/asm"
)

func assembleOrFail(t *testing.T, code string) *asm.Result {
	t.Helper()
	res, err := asm.Assemble("test.asm", []byte(code), 0, io.Discard)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	return res
}

func TestPRGWritesLoadAddressHeader(t *testing.T) {
	res := assembleOrFail(t, "\t*= $C000\n\t!byte $01, $02\n")
	var buf bytes.Buffer
	if err := PRG(&buf, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := buf.Bytes()
	want := []byte{0x00, 0xC0, 0x01, 0x02}
	if !bytes.Equal(got, want) {
		t.Errorf("got %X, want %X", got, want)
	}
}

func TestRawOmitsHeader(t *testing.T) {
	res := assembleOrFail(t, "\t*= $C000\n\t!byte $01, $02\n")
	var buf bytes.Buffer
	if err := Raw(&buf, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x01, 0x02}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got %X, want %X", buf.Bytes(), want)
	}
}

func TestSymbolFileSortsByAddressThenName(t *testing.T) {
	code := "HIGH = $2000\n" +
		"LOW = $1000\n" +
		"\t*= $1000\n" +
		"\t!byte LOW, HIGH\n"
	res := assembleOrFail(t, code)
	var buf bytes.Buffer
	if err := SymbolFile(&buf, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	lowIdx := strings.Index(out, ".LOW")
	highIdx := strings.Index(out, ".HIGH")
	if lowIdx == -1 || highIdx == -1 {
		t.Fatalf("expected both symbols in output, got %q", out)
	}
	if lowIdx > highIdx {
		t.Errorf("expected LOW ($1000) to sort before HIGH ($2000), got %q", out)
	}
	if !strings.Contains(out, "al C:1000 .LOW") {
		t.Errorf("expected a VICE-style 'al C:' record, got %q", out)
	}
}

func TestSymbolFileOmitsUndefinedSymbols(t *testing.T) {
	// A symbol that is only referenced, never defined, must not appear.
	code := "\t*= $1000\n" +
		"\t!if UNDEF\n" +
		"\t!byte UNDEF\n" +
		"\t!endif\n"
	res := assembleOrFail(t, code)
	var buf bytes.Buffer
	if err := SymbolFile(&buf, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), "UNDEF") {
		t.Errorf("did not expect an undefined symbol in the symbol file, got %q", buf.String())
	}
}

func TestListingIncludesHeaderAndSymbolTable(t *testing.T) {
	code := "FOO = $10\n" +
		"\t*= $1000\n" +
		"\t!byte FOO\n"
	res := assembleOrFail(t, code)
	var buf bytes.Buffer
	if err := Listing(&buf, res, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "acme65 listing") {
		t.Errorf("expected a listing header, got %q", out)
	}
	if !strings.Contains(out, "symbol table") {
		t.Errorf("expected a trailing symbol table, got %q", out)
	}
	if !strings.Contains(out, "1000") {
		t.Errorf("expected the assembled address to appear, got %q", out)
	}
}

func TestListingWithCyclesShowsOpcodeBytes(t *testing.T) {
	code := "\t*= $1000\n\tNOP\n"
	res := assembleOrFail(t, code)
	var buf bytes.Buffer
	if err := Listing(&buf, res, Options{ShowCycles: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "EA") {
		t.Errorf("expected the NOP opcode byte in the listing, got %q", buf.String())
	}
}
