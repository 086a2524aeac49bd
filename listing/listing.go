// Package listing renders an assembly Result into the external file formats
// described by the interface contract: a loadable PRG, a raw memory dump, a
// VICE-compatible symbol file and a plain-text listing.
package listing

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/nst-forge/acme65/asm"
)

// PRG writes the two-byte little-endian load address followed by the
// assembled image to w.
func PRG(w io.Writer, res *asm.Result) error {
	bw := bufio.NewWriter(w)
	header := []byte{byte(res.LowestAddr), byte(res.LowestAddr >> 8)}
	if _, err := bw.Write(header); err != nil {
		return err
	}
	if _, err := bw.Write(res.Image); err != nil {
		return err
	}
	return bw.Flush()
}

// Raw writes the assembled image with no load-address header.
func Raw(w io.Writer, res *asm.Result) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(res.Image); err != nil {
		return err
	}
	return bw.Flush()
}

// sortedSymbols returns the DEFINED symbols of res, ordered by (value, name)
// ascending — the byte image must never depend on hash-iteration order, so
// every symbol-bearing output sorts explicitly before writing.
func sortedSymbols(res *asm.Result) []asm.SymbolInfo {
	var out []asm.SymbolInfo
	for _, s := range res.Symbols {
		if s.Defined {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b asm.SymbolInfo) int {
		if c := cmp.Compare(a.Value, b.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// SymbolFile writes one "al C:%04X .%s" line per defined symbol, in a form
// VICE's monitor can load directly.
func SymbolFile(w io.Writer, res *asm.Result) error {
	bw := bufio.NewWriter(w)
	for _, s := range sortedSymbols(res) {
		if _, err := fmt.Fprintf(bw, "al C:%04X .%s\n", uint16(s.Value), s.Name); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Options controls optional listing content.
type Options struct {
	// ShowCycles prints each instruction's cycle count alongside its bytes.
	ShowCycles bool
}

// Listing writes a plain-text listing: a header, one record per assembled
// line (address, up to four bytes per row, optional cycle count, source
// text), and a trailing symbol table.
func Listing(w io.Writer, res *asm.Result, opt Options) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "acme65 listing")
	fmt.Fprintln(bw, "--------------")
	fmt.Fprintln(bw)

	for _, line := range res.Lines {
		b := line.Bytes
		if len(b) == 0 {
			fmt.Fprintf(bw, "%24s  %s\n", "", line.Text())
			continue
		}
		for i := 0; i < len(b); i += 4 {
			j := i + 4
			if j > len(b) {
				j = len(b)
			}
			group := b[i:j]
			hexBytes := ""
			for _, c := range group {
				hexBytes += fmt.Sprintf("%02X ", c)
			}
			if i == 0 {
				addrField := fmt.Sprintf("%04X  %-12s", uint16(line.Address()), hexBytes)
				if opt.ShowCycles && line.Cycles > 0 {
					addrField += fmt.Sprintf(" %d", line.Cycles)
				} else if opt.ShowCycles {
					addrField += "  "
				}
				fmt.Fprintf(bw, "%-24s  %s\n", addrField, line.Text())
			} else {
				cont := fmt.Sprintf("%04X  %-12s", uint16(line.Address())+uint16(i), hexBytes)
				fmt.Fprintf(bw, "%-24s\n", cont)
			}
		}
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "symbol table")
	fmt.Fprintln(bw, "------------")
	for _, s := range sortedSymbols(res) {
		fmt.Fprintf(bw, "%-24s = $%04X\n", s.Name, uint16(s.Value))
	}

	return bw.Flush()
}
