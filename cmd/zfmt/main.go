// Command zfmt is the style-checker driver: check mode reports every
// whitespace rule violation and exits non-zero if any were found; fix
// mode rewrites the file's whitespace in place.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gmofishsauce/zcc/internal/config"
	"github.com/gmofishsauce/zcc/internal/diagnostic"
	"github.com/gmofishsauce/zcc/internal/lexer"
	"github.com/gmofishsauce/zcc/internal/parser"
	"github.com/gmofishsauce/zcc/internal/style"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var fix bool
	var outputFlag string
	var tabWidth, maxLineLength int

	cmd := &cobra.Command{
		Use:   "zfmt <input.c>",
		Short: "Check or rewrite a C source file's indentation and whitespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := config.StyleCheck
			if fix {
				mode = config.StyleFix
			}
			opts := config.StyleOptions{
				Mode:          mode,
				InputPath:     args[0],
				OutputPath:    outputFlag,
				TabWidth:      tabWidth,
				MaxLineLength: maxLineLength,
			}
			return run(opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&fix, "fix", false, "rewrite whitespace in place instead of reporting violations")
	flags.StringVarP(&outputFlag, "output", "o", "", "fix-mode output file (default: overwrite the input)")
	flags.IntVar(&tabWidth, "tab-width", style.DefaultOptions().TabWidth, "tab width used for column accounting")
	flags.IntVar(&maxLineLength, "max-line-length", style.DefaultOptions().MaxLineLength, "longest line allowed before it's flagged")

	return cmd
}

func run(opts config.StyleOptions) error {
	src, err := os.ReadFile(opts.InputPath)
	if err != nil {
		return err
	}

	lx := lexer.New(bytes.NewReader(src), opts.InputPath)
	toks := lx.Lex()

	log := diagnostic.NewLog()
	mod := parser.ParseModule(toks, opts.InputPath, log)
	if log.HasErrors() {
		log.Print(os.Stderr)
		return fmt.Errorf("parse failed")
	}

	ann := style.Annotate(mod)
	styleOpts := style.Options{TabWidth: opts.TabWidth, MaxLineLength: opts.MaxLineLength}

	if opts.Mode == config.StyleFix {
		fixed := style.Fix(toks, ann, styleOpts)
		outPath := opts.OutputPath
		if outPath == "" {
			outPath = opts.InputPath
		}
		return os.WriteFile(outPath, []byte(fixed), 0644)
	}

	style.Check(toks, ann, styleOpts, log)
	log.Print(os.Stdout)
	for _, m := range log.Messages() {
		if m.Stage == diagnostic.StageStyle {
			return fmt.Errorf("style violations found")
		}
	}
	return nil
}
