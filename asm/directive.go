package asm

import "strconv"

// byteArg narrows a 32-bit evaluated value to the single byte a !byte
// argument emits, reporting whether the value fell outside the range the
// directive can represent losslessly (§4.9: "warn on truncation for values
// outside -128..=255").
func byteArg(v int32) (b byte, truncated bool) {
	return byte(v), v < -128 || v > 255
}

// petsciiByte converts one ASCII byte to its unshifted-PETSCII equivalent
// per §4.9's !pet rule: letters fold to uppercase 0x41-0x5A, 0x20-0x3F pass
// through unchanged, and a small set of punctuation remaps to the PETSCII
// graphics range.
func petsciiByte(c byte) byte {
	switch {
	case c >= 'a' && c <= 'z':
		return c - 'a' + 'A'
	case c >= 'A' && c <= 'Z':
		return c
	case c >= 0x20 && c <= 0x3F:
		return c
	case c == '\\':
		return 0x5C
	case c == '_':
		return 0xA4
	default:
		return c
	}
}

// screenCodeByte converts one ASCII byte to its C64 screen-code equivalent
// per §4.9's !scr rule (`@`->0, A-Z->1-26, and the rest of the 128-entry
// table it implies).
func screenCodeByte(c byte) byte {
	switch {
	case c >= 0x20 && c <= 0x3F:
		return c
	case c == 0x40:
		return 0
	case c >= 0x41 && c <= 0x5A:
		return c - 0x40
	case c == 0x5B:
		return 27
	case c == 0x5C:
		return 28
	case c == 0x5D:
		return 29
	case c == 0x5E:
		return 30
	case c == 0x5F:
		return 31
	case c >= 0x61 && c <= 0x7A:
		return c - 0x60
	default:
		return c
	}
}

// basicStubBytes builds a classic `10 SYS <addr>` BASIC loader stub (§4.9's
// !basic): a 2-byte next-line link, 2-byte line number, the SYS token, the
// ASCII digits of the target address, a line terminator and a two-byte
// end-of-program marker. When explicitAddr is nil the target is the byte
// immediately following the stub, which depends on the stub's own length —
// the digit count is resolved by trying 4 digits first and re-deriving with
// 5 if that guess turns out wrong.
func basicStubBytes(start int32, lineNo int32, explicitAddr *int32) []byte {
	bodyLenFor := func(digits int) int { return 6 + digits }
	// codeAddrFor is the address immediately after the whole stub (link,
	// line number, SYS token, digits and the three trailing 0x00 bytes),
	// i.e. start+8+digits — not start+bodyLenFor(digits), which is the
	// link-word's own value.
	codeAddrFor := func(digits int) int32 { return start + int32(bodyLenFor(digits)) + 2 }

	var addr int32
	if explicitAddr != nil {
		addr = *explicitAddr
	} else {
		addr = codeAddrFor(4)
		if len(strconv.Itoa(int(addr))) != 4 {
			addr = codeAddrFor(5)
		}
	}

	digits := strconv.Itoa(int(addr))
	bodyLen := bodyLenFor(len(digits))
	link := start + int32(bodyLen)

	buf := make([]byte, 0, bodyLen+2)
	buf = append(buf, byte(link), byte(link>>8))
	buf = append(buf, byte(lineNo), byte(lineNo>>8))
	buf = append(buf, 0x9E)
	buf = append(buf, digits...)
	buf = append(buf, 0x00, 0x00, 0x00)
	return buf
}
