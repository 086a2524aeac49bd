package main

import (
	"fmt"
	"os"

	cli "github.com/urfave/cli/v2"

	"github.com/nst-forge/acme65/asm"
	"github.com/nst-forge/acme65/listing"
	"github.com/nst-forge/acme65/m6502"
)

func assembleCommand(c *cli.Context) error {
	args := c.Args()
	if args.Len() < 1 {
		return cli.Exit("no source file given", 1)
	}
	src := args.First()

	cpu := m6502.C6510
	if name := c.String("cpu"); name != "" {
		parsed, ok := m6502.ParseCPUType(name)
		if !ok {
			return cli.Exit(fmt.Sprintf("unknown cpu '%s'", name), 1)
		}
		cpu = parsed
	}

	defines := map[string]int32{}
	for _, d := range c.StringSlice("define") {
		name, value, err := asm.ParseDefine(d)
		if err != nil {
			return cli.Exit(fmt.Sprintf("bad -D argument '%s': %v", d, err), 1)
		}
		defines[name] = value
	}

	var opt asm.Option
	if c.Bool("verbose") {
		opt |= asm.Verbose
	}
	if c.Bool("trace") {
		opt |= asm.Trace
	}

	res, err := asm.AssembleFile(src, opt, os.Stderr, defines, c.StringSlice("include"), cpu)
	for _, diag := range res.Diagnostics {
		level := "warning"
		if diag.Level == asm.LevelError {
			level = "error"
		}
		fmt.Fprintf(os.Stderr, "%s:%d: %s: %s\n", diag.File, diag.Line, level, diag.Message)
	}
	if err != nil {
		return cli.Exit("assembly failed", 1)
	}

	if out := c.String("prg"); out != "" && len(res.Image) > 0 {
		if err := writeTo(out, func(f *os.File) error { return listing.PRG(f, res) }); err != nil {
			return cli.Exit(err, 1)
		}
	}
	if out := c.String("raw"); out != "" && len(res.Image) > 0 {
		if err := writeTo(out, func(f *os.File) error { return listing.Raw(f, res) }); err != nil {
			return cli.Exit(err, 1)
		}
	}
	if out := c.String("sym"); out != "" {
		if err := writeTo(out, func(f *os.File) error { return listing.SymbolFile(f, res) }); err != nil {
			return cli.Exit(err, 1)
		}
	}
	if out := c.String("lst"); out != "" {
		opts := listing.Options{ShowCycles: c.Bool("cycles")}
		if err := writeTo(out, func(f *os.File) error { return listing.Listing(f, res, opts) }); err != nil {
			return cli.Exit(err, 1)
		}
	}

	return nil
}

func writeTo(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}

func main() {
	app := cli.NewApp()
	app.Name = "acme65"
	app.Usage = "Two-pass ACME-compatible cross-assembler for the 6502/6510/65C02"
	app.ArgsUsage = "source.asm"
	app.Action = assembleCommand
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "prg",
			Aliases: []string{"o"},
			Usage:   "write a PRG (load-address-prefixed) file",
		},
		&cli.StringFlag{
			Name:  "raw",
			Usage: "write a raw (headerless) binary file",
		},
		&cli.StringFlag{
			Name:  "sym",
			Usage: "write a VICE-compatible symbol file",
		},
		&cli.StringFlag{
			Name:  "lst",
			Usage: "write a plain-text listing file",
		},
		&cli.BoolFlag{
			Name:  "cycles",
			Usage: "show per-instruction cycle counts in the listing",
		},
		&cli.StringSliceFlag{
			Name:    "include",
			Aliases: []string{"I"},
			Usage:   "add a directory to the include search path",
		},
		&cli.StringSliceFlag{
			Name:    "define",
			Aliases: []string{"D"},
			Usage:   "define a symbol as NAME[=VALUE]",
		},
		&cli.StringFlag{
			Name:  "cpu",
			Usage: "target cpu: 6502, 6510 or 65c02",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "trace statement-level assembly activity",
		},
		&cli.BoolFlag{
			Name:  "trace",
			Usage: "additionally trace emitted bytes",
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
