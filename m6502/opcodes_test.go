package m6502

import "testing"

func TestLookupOfficial(t *testing.T) {
	inst := Lookup("LDA", IMM)
	if inst == nil {
		t.Fatalf("expected LDA IMM to exist")
	}
	if inst.Opcode != 0xA9 {
		t.Errorf("got opcode %#02x, want 0xA9", inst.Opcode)
	}
	if inst.Length != 2 {
		t.Errorf("got length %d, want 2", inst.Length)
	}
}

func TestLookupUnknownModeReturnsNil(t *testing.T) {
	if Lookup("LDA", IND) != nil {
		t.Errorf("expected LDA IND to not exist")
	}
}

func TestLookupUnknownMnemonicReturnsNil(t *testing.T) {
	if Lookup("XYZ", IMP) != nil {
		t.Errorf("expected an unknown mnemonic to return nil")
	}
}

func TestGetInstructionsPreservesTableOrder(t *testing.T) {
	// NOP IMP is registered as an official opcode (0xEA) before any illegal
	// NOP IMP duplicate at the same mode, so the first match for a CPU that
	// allows both must be the official encoding.
	insts := GetInstructions("NOP")
	if len(insts) == 0 {
		t.Fatalf("expected at least one NOP encoding")
	}
	var firstIMP *Instruction
	for _, inst := range insts {
		if inst.Mode == IMP {
			firstIMP = inst
			break
		}
	}
	if firstIMP == nil {
		t.Fatalf("expected a NOP IMP encoding")
	}
	if firstIMP.Opcode != 0xEA {
		t.Errorf("got opcode %#02x, want 0xEA (the official NOP)", firstIMP.Opcode)
	}
	if firstIMP.Illegal() {
		t.Errorf("expected the first NOP IMP match to be the official encoding")
	}
}

func TestHasModeAndIsMnemonic(t *testing.T) {
	if !HasMode("LDA", ZPG) {
		t.Errorf("expected LDA ZPG to exist")
	}
	if HasMode("LDA", IND) {
		t.Errorf("expected LDA IND to not exist")
	}
	if !IsMnemonic("LDA") {
		t.Errorf("expected LDA to be a known mnemonic")
	}
	if IsMnemonic("NOTANOPCODE") {
		t.Errorf("expected an unknown mnemonic to report false")
	}
}

func TestIsBranch(t *testing.T) {
	if !IsBranch("BEQ") {
		t.Errorf("expected BEQ to be a branch")
	}
	if IsBranch("LDA") {
		t.Errorf("expected LDA to not be a branch")
	}
}

func TestAllowedOnCMOSOnlyRejectedOn6502AllowedOn65C02(t *testing.T) {
	stz := Lookup("STZ", ZPG)
	if stz == nil {
		t.Fatalf("expected STZ ZPG to exist")
	}
	if stz.AllowedOn(C6502) {
		t.Errorf("expected a CMOS-only opcode to be rejected on strict 6502")
	}
	if !stz.AllowedOn(C65C02) {
		t.Errorf("expected a CMOS-only opcode to be allowed on 65C02")
	}
}

func TestAllowedOnOfficialOpcodeOnEveryCPU(t *testing.T) {
	lda := Lookup("LDA", IMM)
	if !lda.AllowedOn(C6510) || !lda.AllowedOn(C6502) || !lda.AllowedOn(C65C02) {
		t.Errorf("expected an official opcode to be allowed on every CPU")
	}
}

func TestParseCPUType(t *testing.T) {
	cases := []struct {
		in   string
		want CPUType
		ok   bool
	}{
		{"6502", C6502, true},
		{"6510", C6510, true},
		{"65C02", C65C02, true},
		{"65c02", C65C02, true},
		{"bogus", C6510, false},
	}
	for _, c := range cases {
		got, ok := ParseCPUType(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("ParseCPUType(%q) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestCPUTypeString(t *testing.T) {
	if C6502.String() != "6502" {
		t.Errorf("got %q, want %q", C6502.String(), "6502")
	}
	if C65C02.String() != "65c02" {
		t.Errorf("got %q, want %q", C65C02.String(), "65c02")
	}
	if C6510.String() != "6510" {
		t.Errorf("got %q, want %q", C6510.String(), "6510")
	}
}
