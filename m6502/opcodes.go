package m6502

import "strings"

// variant classifies an (mnemonic, mode) opcode slot by which CPU family
// exposes it.
type variant byte

const (
	official variant = iota // valid on NMOS 6502, 6510 and 65C02
	cmosOnly                // 65C02 extension
	illegal                 // NMOS "undocumented" opcode (6510 only)
)

// Instruction describes one (mnemonic, addressing mode) encoding.
type Instruction struct {
	Name     string   // canonical mnemonic, e.g. "LDA"
	Mode     Mode     // addressing mode
	Opcode   byte     // opcode byte
	Length   byte     // total encoded length in bytes, including the opcode
	Cycles   byte     // base cycle count
	BPCycles byte     // extra cycles on a page-crossing indexed access
	variant  variant
}

// Illegal reports whether the instruction is an undocumented NMOS opcode.
func (i *Instruction) Illegal() bool { return i.variant == illegal }

// CMOSOnly reports whether the instruction exists only on the 65C02.
func (i *Instruction) CMOSOnly() bool { return i.variant == cmosOnly }

// AllowedOn reports whether cpu accepts this instruction.
func (i *Instruction) AllowedOn(cpu CPUType) bool {
	switch cpu {
	case C65C02:
		return i.variant != illegal
	case C6502:
		return i.variant == official
	default: // C6510
		return i.variant != cmosOnly
	}
}

// opcodeRow is a raw table row: mnemonic, mode, opcode, length, cycles,
// boundary-page cycles, and variant. Rows are grouped below the same way
// the teacher's instructions.go groups them, by mnemonic family.
type opcodeRow struct {
	name     string
	mode     Mode
	opcode   byte
	length   byte
	cycles   byte
	bp       byte
	variant  variant
	aliasFor string // canonical mnemonic this row is an alternate name for, if any
}

// rows holds one entry per (mnemonic, mode, opcode) encoding that this
// assembler recognizes, across all three CPU variants, so one opcode value
// can appear in several rows. Rows for the same canonical mnemonic under
// different aliases (e.g. DCP/DCM) share every field except name/aliasFor.
var rows = buildRows()

func buildRows() []opcodeRow {
	var r []opcodeRow
	add := func(name string, mode Mode, opcode, length, cycles, bp byte, v variant) {
		r = append(r, opcodeRow{name: name, mode: mode, opcode: opcode, length: length, cycles: cycles, bp: bp, variant: v})
	}
	alias := func(canonical, aliasName string) {
		for _, row := range r {
			if row.name == canonical {
				row.name = aliasName
				row.aliasFor = canonical
				r = append(r, row)
			}
		}
	}

	// Official NMOS 6502 opcodes.
	add("LDA", IMM, 0xa9, 2, 2, 0, official)
	add("LDA", ZPG, 0xa5, 2, 3, 0, official)
	add("LDA", ZPX, 0xb5, 2, 4, 0, official)
	add("LDA", ABS, 0xad, 3, 4, 0, official)
	add("LDA", ABX, 0xbd, 3, 4, 1, official)
	add("LDA", ABY, 0xb9, 3, 4, 1, official)
	add("LDA", IDX, 0xa1, 2, 6, 0, official)
	add("LDA", IDY, 0xb1, 2, 5, 1, official)

	add("LDX", IMM, 0xa2, 2, 2, 0, official)
	add("LDX", ZPG, 0xa6, 2, 3, 0, official)
	add("LDX", ZPY, 0xb6, 2, 4, 0, official)
	add("LDX", ABS, 0xae, 3, 4, 0, official)
	add("LDX", ABY, 0xbe, 3, 4, 1, official)

	add("LDY", IMM, 0xa0, 2, 2, 0, official)
	add("LDY", ZPG, 0xa4, 2, 3, 0, official)
	add("LDY", ZPX, 0xb4, 2, 4, 0, official)
	add("LDY", ABS, 0xac, 3, 4, 0, official)
	add("LDY", ABX, 0xbc, 3, 4, 1, official)

	add("STA", ZPG, 0x85, 2, 3, 0, official)
	add("STA", ZPX, 0x95, 2, 4, 0, official)
	add("STA", ABS, 0x8d, 3, 4, 0, official)
	add("STA", ABX, 0x9d, 3, 5, 0, official)
	add("STA", ABY, 0x99, 3, 5, 0, official)
	add("STA", IDX, 0x81, 2, 6, 0, official)
	add("STA", IDY, 0x91, 2, 6, 0, official)

	add("STX", ZPG, 0x86, 2, 3, 0, official)
	add("STX", ZPY, 0x96, 2, 4, 0, official)
	add("STX", ABS, 0x8e, 3, 4, 0, official)

	add("STY", ZPG, 0x84, 2, 3, 0, official)
	add("STY", ZPX, 0x94, 2, 4, 0, official)
	add("STY", ABS, 0x8c, 3, 4, 0, official)

	add("STZ", ZPG, 0x64, 2, 3, 0, cmosOnly)
	add("STZ", ZPX, 0x74, 2, 4, 0, cmosOnly)
	add("STZ", ABS, 0x9c, 3, 4, 0, cmosOnly)
	add("STZ", ABX, 0x9e, 3, 5, 0, cmosOnly)

	add("ADC", IMM, 0x69, 2, 2, 0, official)
	add("ADC", ZPG, 0x65, 2, 3, 0, official)
	add("ADC", ZPX, 0x75, 2, 4, 0, official)
	add("ADC", ABS, 0x6d, 3, 4, 0, official)
	add("ADC", ABX, 0x7d, 3, 4, 1, official)
	add("ADC", ABY, 0x79, 3, 4, 1, official)
	add("ADC", IDX, 0x61, 2, 6, 0, official)
	add("ADC", IDY, 0x71, 2, 5, 1, official)
	add("ADC", IND, 0x72, 2, 5, 0, cmosOnly)

	add("SBC", IMM, 0xe9, 2, 2, 0, official)
	add("SBC", ZPG, 0xe5, 2, 3, 0, official)
	add("SBC", ZPX, 0xf5, 2, 4, 0, official)
	add("SBC", ABS, 0xed, 3, 4, 0, official)
	add("SBC", ABX, 0xfd, 3, 4, 1, official)
	add("SBC", ABY, 0xf9, 3, 4, 1, official)
	add("SBC", IDX, 0xe1, 2, 6, 0, official)
	add("SBC", IDY, 0xf1, 2, 5, 1, official)
	add("SBC", IND, 0xf2, 2, 5, 0, cmosOnly)
	add("SBC", IMM, 0xeb, 2, 2, 0, illegal) // duplicate SBC #imm encoding

	add("CMP", IMM, 0xc9, 2, 2, 0, official)
	add("CMP", ZPG, 0xc5, 2, 3, 0, official)
	add("CMP", ZPX, 0xd5, 2, 4, 0, official)
	add("CMP", ABS, 0xcd, 3, 4, 0, official)
	add("CMP", ABX, 0xdd, 3, 4, 1, official)
	add("CMP", ABY, 0xd9, 3, 4, 1, official)
	add("CMP", IDX, 0xc1, 2, 6, 0, official)
	add("CMP", IDY, 0xd1, 2, 5, 1, official)
	add("CMP", IND, 0xd2, 2, 5, 0, cmosOnly)

	add("CPX", IMM, 0xe0, 2, 2, 0, official)
	add("CPX", ZPG, 0xe4, 2, 3, 0, official)
	add("CPX", ABS, 0xec, 3, 4, 0, official)

	add("CPY", IMM, 0xc0, 2, 2, 0, official)
	add("CPY", ZPG, 0xc4, 2, 3, 0, official)
	add("CPY", ABS, 0xcc, 3, 4, 0, official)

	add("BIT", IMM, 0x89, 2, 2, 0, cmosOnly)
	add("BIT", ZPG, 0x24, 2, 3, 0, official)
	add("BIT", ZPX, 0x34, 2, 4, 0, cmosOnly)
	add("BIT", ABS, 0x2c, 3, 4, 0, official)
	add("BIT", ABX, 0x3c, 3, 4, 1, cmosOnly)

	add("CLC", IMP, 0x18, 1, 2, 0, official)
	add("SEC", IMP, 0x38, 1, 2, 0, official)
	add("CLI", IMP, 0x58, 1, 2, 0, official)
	add("SEI", IMP, 0x78, 1, 2, 0, official)
	add("CLD", IMP, 0xd8, 1, 2, 0, official)
	add("SED", IMP, 0xf8, 1, 2, 0, official)
	add("CLV", IMP, 0xb8, 1, 2, 0, official)

	add("BCC", REL, 0x90, 2, 2, 1, official)
	add("BCS", REL, 0xb0, 2, 2, 1, official)
	add("BEQ", REL, 0xf0, 2, 2, 1, official)
	add("BNE", REL, 0xd0, 2, 2, 1, official)
	add("BMI", REL, 0x30, 2, 2, 1, official)
	add("BPL", REL, 0x10, 2, 2, 1, official)
	add("BVC", REL, 0x50, 2, 2, 1, official)
	add("BVS", REL, 0x70, 2, 2, 1, official)
	add("BRA", REL, 0x80, 2, 2, 1, cmosOnly)

	add("BRK", IMP, 0x00, 1, 7, 0, official)

	add("AND", IMM, 0x29, 2, 2, 0, official)
	add("AND", ZPG, 0x25, 2, 3, 0, official)
	add("AND", ZPX, 0x35, 2, 4, 0, official)
	add("AND", ABS, 0x2d, 3, 4, 0, official)
	add("AND", ABX, 0x3d, 3, 4, 1, official)
	add("AND", ABY, 0x39, 3, 4, 1, official)
	add("AND", IDX, 0x21, 2, 6, 0, official)
	add("AND", IDY, 0x31, 2, 5, 1, official)
	add("AND", IND, 0x32, 2, 5, 0, cmosOnly)

	add("ORA", IMM, 0x09, 2, 2, 0, official)
	add("ORA", ZPG, 0x05, 2, 3, 0, official)
	add("ORA", ZPX, 0x15, 2, 4, 0, official)
	add("ORA", ABS, 0x0d, 3, 4, 0, official)
	add("ORA", ABX, 0x1d, 3, 4, 1, official)
	add("ORA", ABY, 0x19, 3, 4, 1, official)
	add("ORA", IDX, 0x01, 2, 6, 0, official)
	add("ORA", IDY, 0x11, 2, 5, 1, official)
	add("ORA", IND, 0x12, 2, 5, 0, cmosOnly)

	add("EOR", IMM, 0x49, 2, 2, 0, official)
	add("EOR", ZPG, 0x45, 2, 3, 0, official)
	add("EOR", ZPX, 0x55, 2, 4, 0, official)
	add("EOR", ABS, 0x4d, 3, 4, 0, official)
	add("EOR", ABX, 0x5d, 3, 4, 1, official)
	add("EOR", ABY, 0x59, 3, 4, 1, official)
	add("EOR", IDX, 0x41, 2, 6, 0, official)
	add("EOR", IDY, 0x51, 2, 5, 1, official)
	add("EOR", IND, 0x52, 2, 5, 0, cmosOnly)

	add("INC", ZPG, 0xe6, 2, 5, 0, official)
	add("INC", ZPX, 0xf6, 2, 6, 0, official)
	add("INC", ABS, 0xee, 3, 6, 0, official)
	add("INC", ABX, 0xfe, 3, 7, 0, official)
	add("INC", ACC, 0x1a, 1, 2, 0, cmosOnly)

	add("DEC", ZPG, 0xc6, 2, 5, 0, official)
	add("DEC", ZPX, 0xd6, 2, 6, 0, official)
	add("DEC", ABS, 0xce, 3, 6, 0, official)
	add("DEC", ABX, 0xde, 3, 7, 0, official)
	add("DEC", ACC, 0x3a, 1, 2, 0, cmosOnly)

	add("INX", IMP, 0xe8, 1, 2, 0, official)
	add("INY", IMP, 0xc8, 1, 2, 0, official)
	add("DEX", IMP, 0xca, 1, 2, 0, official)
	add("DEY", IMP, 0x88, 1, 2, 0, official)

	add("JMP", ABS, 0x4c, 3, 3, 0, official)
	add("JMP", ABX, 0x7c, 3, 6, 0, cmosOnly)
	add("JMP", IND, 0x6c, 3, 5, 0, official)

	add("JSR", ABS, 0x20, 3, 6, 0, official)
	add("RTS", IMP, 0x60, 1, 6, 0, official)
	add("RTI", IMP, 0x40, 1, 6, 0, official)

	add("NOP", IMP, 0xea, 1, 2, 0, official)

	add("TAX", IMP, 0xaa, 1, 2, 0, official)
	add("TXA", IMP, 0x8a, 1, 2, 0, official)
	add("TAY", IMP, 0xa8, 1, 2, 0, official)
	add("TYA", IMP, 0x98, 1, 2, 0, official)
	add("TXS", IMP, 0x9a, 1, 2, 0, official)
	add("TSX", IMP, 0xba, 1, 2, 0, official)

	add("TRB", ZPG, 0x14, 2, 5, 0, cmosOnly)
	add("TRB", ABS, 0x1c, 3, 6, 0, cmosOnly)
	add("TSB", ZPG, 0x04, 2, 5, 0, cmosOnly)
	add("TSB", ABS, 0x0c, 3, 6, 0, cmosOnly)

	add("PHA", IMP, 0x48, 1, 3, 0, official)
	add("PLA", IMP, 0x68, 1, 4, 0, official)
	add("PHP", IMP, 0x08, 1, 3, 0, official)
	add("PLP", IMP, 0x28, 1, 4, 0, official)
	add("PHX", IMP, 0xda, 1, 3, 0, cmosOnly)
	add("PLX", IMP, 0xfa, 1, 4, 0, cmosOnly)
	add("PHY", IMP, 0x5a, 1, 3, 0, cmosOnly)
	add("PLY", IMP, 0x7a, 1, 4, 0, cmosOnly)

	add("ASL", ACC, 0x0a, 1, 2, 0, official)
	add("ASL", ZPG, 0x06, 2, 5, 0, official)
	add("ASL", ZPX, 0x16, 2, 6, 0, official)
	add("ASL", ABS, 0x0e, 3, 6, 0, official)
	add("ASL", ABX, 0x1e, 3, 7, 0, official)

	add("LSR", ACC, 0x4a, 1, 2, 0, official)
	add("LSR", ZPG, 0x46, 2, 5, 0, official)
	add("LSR", ZPX, 0x56, 2, 6, 0, official)
	add("LSR", ABS, 0x4e, 3, 6, 0, official)
	add("LSR", ABX, 0x5e, 3, 7, 0, official)

	add("ROL", ACC, 0x2a, 1, 2, 0, official)
	add("ROL", ZPG, 0x26, 2, 5, 0, official)
	add("ROL", ZPX, 0x36, 2, 6, 0, official)
	add("ROL", ABS, 0x2e, 3, 6, 0, official)
	add("ROL", ABX, 0x3e, 3, 7, 0, official)

	add("ROR", ACC, 0x6a, 1, 2, 0, official)
	add("ROR", ZPG, 0x66, 2, 5, 0, official)
	add("ROR", ZPX, 0x76, 2, 6, 0, official)
	add("ROR", ABS, 0x6e, 3, 6, 0, official)
	add("ROR", ABX, 0x7e, 3, 7, 0, official)

	// Undocumented NMOS 6502/6510 opcodes.
	add("SLO", IDX, 0x03, 2, 8, 0, illegal)
	add("SLO", ZPG, 0x07, 2, 5, 0, illegal)
	add("SLO", ABS, 0x0f, 3, 6, 0, illegal)
	add("SLO", IDY, 0x13, 2, 8, 0, illegal)
	add("SLO", ZPX, 0x17, 2, 6, 0, illegal)
	add("SLO", ABY, 0x1b, 3, 7, 0, illegal)
	add("SLO", ABX, 0x1f, 3, 7, 0, illegal)
	alias("SLO", "ASO")

	add("RLA", IDX, 0x23, 2, 8, 0, illegal)
	add("RLA", ZPG, 0x27, 2, 5, 0, illegal)
	add("RLA", ABS, 0x2f, 3, 6, 0, illegal)
	add("RLA", IDY, 0x33, 2, 8, 0, illegal)
	add("RLA", ZPX, 0x37, 2, 6, 0, illegal)
	add("RLA", ABY, 0x3b, 3, 7, 0, illegal)
	add("RLA", ABX, 0x3f, 3, 7, 0, illegal)

	add("SRE", IDX, 0x43, 2, 8, 0, illegal)
	add("SRE", ZPG, 0x47, 2, 5, 0, illegal)
	add("SRE", ABS, 0x4f, 3, 6, 0, illegal)
	add("SRE", IDY, 0x53, 2, 8, 0, illegal)
	add("SRE", ZPX, 0x57, 2, 6, 0, illegal)
	add("SRE", ABY, 0x5b, 3, 7, 0, illegal)
	add("SRE", ABX, 0x5f, 3, 7, 0, illegal)
	alias("SRE", "LSE")

	add("RRA", IDX, 0x63, 2, 8, 0, illegal)
	add("RRA", ZPG, 0x67, 2, 5, 0, illegal)
	add("RRA", ABS, 0x6f, 3, 6, 0, illegal)
	add("RRA", IDY, 0x73, 2, 8, 0, illegal)
	add("RRA", ZPX, 0x77, 2, 6, 0, illegal)
	add("RRA", ABY, 0x7b, 3, 7, 0, illegal)
	add("RRA", ABX, 0x7f, 3, 7, 0, illegal)

	add("SAX", IDX, 0x83, 2, 6, 0, illegal)
	add("SAX", ZPG, 0x87, 2, 3, 0, illegal)
	add("SAX", ABS, 0x8f, 3, 4, 0, illegal)
	add("SAX", ZPY, 0x97, 2, 4, 0, illegal)
	alias("SAX", "AXS")

	add("LAX", IDX, 0xa3, 2, 6, 0, illegal)
	add("LAX", ZPG, 0xa7, 2, 3, 0, illegal)
	add("LAX", ABS, 0xaf, 3, 4, 0, illegal)
	add("LAX", IDY, 0xb3, 2, 5, 1, illegal)
	add("LAX", ZPY, 0xb7, 2, 4, 0, illegal)
	add("LAX", ABY, 0xbf, 3, 4, 1, illegal)

	add("DCP", IDX, 0xc3, 2, 8, 0, illegal)
	add("DCP", ZPG, 0xc7, 2, 5, 0, illegal)
	add("DCP", ABS, 0xcf, 3, 6, 0, illegal)
	add("DCP", IDY, 0xd3, 2, 8, 0, illegal)
	add("DCP", ZPX, 0xd7, 2, 6, 0, illegal)
	add("DCP", ABY, 0xdb, 3, 7, 0, illegal)
	add("DCP", ABX, 0xdf, 3, 7, 0, illegal)
	alias("DCP", "DCM")

	add("ISC", IDX, 0xe3, 2, 8, 0, illegal)
	add("ISC", ZPG, 0xe7, 2, 5, 0, illegal)
	add("ISC", ABS, 0xef, 3, 6, 0, illegal)
	add("ISC", IDY, 0xf3, 2, 8, 0, illegal)
	add("ISC", ZPX, 0xf7, 2, 6, 0, illegal)
	add("ISC", ABY, 0xfb, 3, 7, 0, illegal)
	add("ISC", ABX, 0xff, 3, 7, 0, illegal)
	alias("ISC", "ISB")

	add("ANC", IMM, 0x0b, 2, 2, 0, illegal)
	add("ANC", IMM, 0x2b, 2, 2, 0, illegal)
	add("ALR", IMM, 0x4b, 2, 2, 0, illegal)
	alias("ALR", "ASR")
	add("ARR", IMM, 0x6b, 2, 2, 0, illegal)
	add("SBX", IMM, 0xcb, 2, 2, 0, illegal)
	alias("SBX", "AXS2")
	add("XAA", IMM, 0x8b, 2, 2, 0, illegal)
	add("LXA", IMM, 0xab, 2, 2, 0, illegal)

	add("LAS", ABY, 0xbb, 3, 4, 1, illegal)
	alias("LAS", "LAR")

	add("SHA", IDY, 0x93, 2, 6, 0, illegal)
	add("SHA", ABY, 0x9f, 3, 5, 0, illegal)
	alias("SHA", "AHX")

	add("SHX", ABY, 0x9e, 3, 5, 0, illegal)
	alias("SHX", "SXA")
	add("SHY", ABX, 0x9c, 3, 5, 0, illegal)
	alias("SHY", "SYA")
	add("TAS", ABY, 0x9b, 3, 5, 0, illegal)
	alias("TAS", "XAS")

	// Undocumented multi-byte NOPs.
	for _, op := range []byte{0x1a, 0x3a, 0x5a, 0x7a, 0xda, 0xfa} {
		add("NOP", IMP, op, 1, 2, 0, illegal)
	}
	for _, op := range []byte{0x80, 0x82, 0x89, 0xc2, 0xe2} {
		add("NOP", IMM, op, 2, 2, 0, illegal)
	}
	for _, op := range []byte{0x04, 0x44, 0x64} {
		add("NOP", ZPG, op, 2, 3, 0, illegal)
	}
	for _, op := range []byte{0x14, 0x34, 0x54, 0x74, 0xd4, 0xf4} {
		add("NOP", ZPX, op, 2, 4, 0, illegal)
	}
	add("NOP", ABS, 0x0c, 3, 4, 0, illegal)
	for _, op := range []byte{0x1c, 0x3c, 0x5c, 0x7c, 0xdc, 0xfc} {
		add("NOP", ABX, op, 3, 4, 1, illegal)
	}

	// Processor-halting opcodes: HLT/KIL/JAM.
	for _, op := range []byte{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xb2, 0xd2, 0xf2} {
		add("JAM", IMP, op, 1, 0, 0, illegal)
	}
	alias("JAM", "KIL")
	alias("JAM", "HLT")

	return r
}

// byName indexes rows by upper-cased mnemonic.
var byName = func() map[string][]*Instruction {
	m := make(map[string][]*Instruction)
	for i := range rows {
		row := &rows[i]
		inst := &Instruction{
			Name:     strings.ToUpper(row.name),
			Mode:     row.mode,
			Opcode:   row.opcode,
			Length:   row.length,
			Cycles:   row.cycles,
			BPCycles: row.bp,
			variant:  row.variant,
		}
		m[inst.Name] = append(m[inst.Name], inst)
	}
	return m
}()

// GetInstructions returns every (mode, opcode) variant registered for the
// given mnemonic, case-insensitively, or nil if the mnemonic is unknown.
func GetInstructions(mnemonic string) []*Instruction {
	return byName[strings.ToUpper(mnemonic)]
}

// Lookup returns the instruction encoding for a mnemonic in a specific
// addressing mode, or nil if that combination does not exist.
func Lookup(mnemonic string, mode Mode) *Instruction {
	for _, inst := range GetInstructions(mnemonic) {
		if inst.Mode == mode {
			return inst
		}
	}
	return nil
}

// HasMode reports whether the mnemonic has any encoding using mode.
func HasMode(mnemonic string, mode Mode) bool {
	return Lookup(mnemonic, mode) != nil
}

// IsBranch reports whether the mnemonic is a relative branch instruction.
func IsBranch(mnemonic string) bool {
	return HasMode(mnemonic, REL)
}

// IsMnemonic reports whether mnemonic names any known instruction.
func IsMnemonic(mnemonic string) bool {
	return len(GetInstructions(mnemonic)) > 0
}
