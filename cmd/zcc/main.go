// Command zcc is the compiler driver: it wires cobra flags to
// internal/config.Options and runs the pipeline stage internal/*
// implements, stopping wherever the selected mode says to.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gmofishsauce/zcc/internal/config"
	"github.com/gmofishsauce/zcc/internal/diagnostic"
	"github.com/gmofishsauce/zcc/internal/emitter"
	"github.com/gmofishsauce/zcc/internal/ir"
	"github.com/gmofishsauce/zcc/internal/lexer"
	"github.com/gmofishsauce/zcc/internal/parser"
	"github.com/gmofishsauce/zcc/internal/sema"
	"github.com/gmofishsauce/zcc/internal/selector"
	"github.com/gmofishsauce/zcc/internal/z80ic"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var modeFlag, outputFlag string

	cmd := &cobra.Command{
		Use:   "zcc <input.c>",
		Short: "Compile a C source file to Z80 assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseMode(modeFlag)
			if err != nil {
				return err
			}
			opts := config.Options{
				Mode:       mode,
				InputPath:  args[0],
				OutputPath: outputFlag,
			}
			return run(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&modeFlag, "mode", "m", "asm", "pipeline stage to stop at and print: lex, parse, ir, ic, asm")
	flags.StringVarP(&outputFlag, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func parseMode(s string) (config.Mode, error) {
	switch s {
	case "lex":
		return config.ModeLex, nil
	case "parse":
		return config.ModeParse, nil
	case "ir":
		return config.ModeIR, nil
	case "ic":
		return config.ModeIC, nil
	case "asm":
		return config.ModeAsm, nil
	default:
		return 0, fmt.Errorf("unknown mode %q: want lex, parse, ir, ic or asm", s)
	}
}

func run(opts config.Options) error {
	in, err := os.Open(opts.InputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out := os.Stdout
	if opts.OutputPath != "" {
		f, err := os.Create(opts.OutputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	lx := lexer.New(in, opts.InputPath)
	toks := lx.Lex()
	if opts.Mode == config.ModeLex {
		return writeTokens(out, toks)
	}

	log := diagnostic.NewLog()
	mod := parser.ParseModule(toks, opts.InputPath, log)
	if log.HasErrors() {
		log.Print(os.Stderr)
		return fmt.Errorf("parse failed")
	}
	if opts.Mode == config.ModeParse {
		return writeDecls(out, mod)
	}

	irMod, err := sema.New(log).Analyze(mod)
	if log.HasErrors() {
		log.Print(os.Stderr)
		return fmt.Errorf("semantic analysis failed")
	}
	if err != nil {
		return err
	}
	if opts.Mode == config.ModeIR {
		return ir.Write(out, irMod)
	}

	icMod, err := selector.Select(irMod)
	if err != nil {
		return err
	}
	if opts.Mode == config.ModeIC {
		return z80ic.Write(out, icMod)
	}

	em := emitter.New(out)
	return em.EmitModule(icMod)
}
