package asm

import (
	"io"
	"strings"
	"testing"
)

func assemble(t *testing.T, code string) *Result {
	t.Helper()
	res, err := Assemble("test.asm", []byte(code), 0, io.Discard)
	if err != nil {
		var msgs []string
		for _, d := range res.Diagnostics {
			msgs = append(msgs, d.Message)
		}
		t.Fatalf("assemble failed: %v (%s)", err, strings.Join(msgs, "; "))
	}
	return res
}

func assembleErr(t *testing.T, code string) *Result {
	t.Helper()
	res, err := Assemble("test.asm", []byte(code), 0, io.Discard)
	if err == nil {
		t.Fatalf("expected assembly failure, got none")
	}
	return res
}

func checkImage(t *testing.T, code string, expectedHex string) {
	t.Helper()
	res := assemble(t, code)
	got := hexString(res.Image)
	if got != expectedHex {
		t.Errorf("image mismatch\n got: %s\n exp: %s", got, expectedHex)
	}
}

func hexString(b []byte) string {
	buf := make([]byte, len(b)*2)
	for i, v := range b {
		buf[i*2+0] = hex[v>>4]
		buf[i*2+1] = hex[v&0x0f]
	}
	return string(buf)
}

func TestAbsoluteAndZeroPage(t *testing.T) {
	code := "\t*= $1000\n" +
		"\tLDA $10\n" +
		"\tLDA $1000\n"
	checkImage(t, code, "A510AD0010")
}

func TestImmediateAndImplied(t *testing.T) {
	code := "\t*= $C000\n" +
		"\tLDA #$20\n" +
		"\tTAX\n" +
		"\tRTS\n"
	checkImage(t, code, "A920AA60")
}

func TestIndexedAddressing(t *testing.T) {
	code := "\t*= $1000\n" +
		"\tLDA $2000,X\n" +
		"\tLDA $20,X\n" +
		"\tLDA $2000,Y\n"
	checkImage(t, code, "BD0020B520B90020")
}

func TestForwardReferenceStaysAbsolute(t *testing.T) {
	// ZP is defined after its first use, so pass 1 has no choice but to
	// pick the absolute family; the committed size never shrinks in pass 2
	// even though the final value turns out to fit in zero page.
	code := "\t*= $1000\n" +
		"\tLDA ZP\n" +
		"ZP = $10\n"
	checkImage(t, code, "AD1000")
}

func TestByteWordDirectives(t *testing.T) {
	code := "\t*= $1000\n" +
		"\t!byte $01, $02, 3+4\n" +
		"\t!word $1234, $0001\n"
	checkImage(t, code, "0102073412"+"0100")
}

func TestTextAndNullDirectives(t *testing.T) {
	code := "\t*= $1000\n" +
		"\t!text \"AB\"\n" +
		"\t!null \"C\"\n"
	checkImage(t, code, "41424300")
}

func TestFillAndSkip(t *testing.T) {
	code := "\t*= $1000\n" +
		"\t!fill 3, $ff\n" +
		"\t!skip 2\n" +
		"\t!byte $aa\n"
	checkImage(t, code, "FFFFFF"+"0000"+"AA")
}

func TestAlign(t *testing.T) {
	code := "\t*= $1001\n" +
		"\t!align 4\n" +
		"\t!byte $ff\n"
	checkImage(t, code, "000000FF")
}

func TestLabelsAndBranch(t *testing.T) {
	code := "\t*= $1000\n" +
		"loop\tLDA #$00\n" +
		"\tBEQ loop\n"
	checkImage(t, code, "A900F0FC")
}

func TestBranchOutOfRangeFails(t *testing.T) {
	code := "\t*= $1000\n" +
		"loop\t!fill 200, $00\n" +
		"\tBEQ loop\n"
	res := assembleErr(t, code)
	found := false
	for _, d := range res.Diagnostics {
		if strings.Contains(d.Message, "out of range") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a branch-out-of-range diagnostic, got: %v", res.Diagnostics)
	}
}

func TestPseudoPC(t *testing.T) {
	// "here" is defined at the pseudo address $2000, so both LDAs reference
	// $2000, but the bytes they occupy land at the real addresses $1000
	// and $1003 (LDA here is absolute, 3 bytes).
	code := "\t*= $1000\n" +
		"\t!pseudopc $2000\n" +
		"here\tLDA here\n" +
		"\t!realpc\n" +
		"\tLDA here\n"
	res := assemble(t, code)
	if got := hexString(res.Image); got != "AD0020AD0020" {
		t.Errorf("image mismatch: %s", got)
	}
}

func TestAnonymousLabelBranch(t *testing.T) {
	code := "\t*= $1000\n" +
		"-\tLDA #$00\n" +
		"\tBNE -\n" +
		"\tNOP\n"
	checkImage(t, code, "A900D0FCEA")
}

func TestForLoop(t *testing.T) {
	code := "\t*= $1000\n" +
		"\t!for i, 1, 3\n" +
		"\t!byte i\n" +
		"\t!end\n"
	checkImage(t, code, "010203")
}

func TestMacroExpansion(t *testing.T) {
	code := "\t!macro inc_a\n" +
		"\tCLC\n" +
		"\tADC #$01\n" +
		"\t!endmacro\n" +
		"\t*= $1000\n" +
		"\t+inc_a\n"
	checkImage(t, code, "18"+"6901")
}

func TestConditionalAssembly(t *testing.T) {
	code := "DEBUG = 0\n" +
		"\t*= $1000\n" +
		"\t!if DEBUG\n" +
		"\t!byte $ee\n" +
		"\t!else\n" +
		"\t!byte $01\n" +
		"\t!endif\n"
	checkImage(t, code, "01")
}

func TestDuplicateConstantFails(t *testing.T) {
	code := "FOO = 1\n" +
		"FOO = 2\n" +
		"\t*= $1000\n" +
		"\t!byte FOO\n"
	assembleErr(t, code)
}

func TestUndefinedSymbolFails(t *testing.T) {
	code := "\t*= $1000\n" +
		"\t!byte MISSING\n"
	assembleErr(t, code)
}

func TestBasicStub(t *testing.T) {
	code := "\t*= $0801\n" +
		"\t!basic\n" +
		"\t*= $080D\n" +
		"\tRTS\n"
	res := assemble(t, code)
	if res.Image[4] != 0x9E {
		t.Errorf("expected SYS token at offset 4, got %02X", res.Image[4])
	}
}

func TestCpuGating(t *testing.T) {
	code := "\t!cpu 65c02\n" +
		"\t*= $1000\n" +
		"\tPLX\n" +
		"\tSTZ $01\n"
	checkImage(t, code, "FA6401")
}

func TestCpuGatingRejectsCMOSOnStrict6502(t *testing.T) {
	code := "\t!cpu 6502\n" +
		"\t*= $1000\n" +
		"\tSTZ $01\n"
	assembleErr(t, code)
}
