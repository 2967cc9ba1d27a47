//go:build !js

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"golang.design/x/clipboard"
	"golang.org/x/term"

	"hackasm/pkg/disasm"
	"hackasm/pkg/hackfile"
	"hackasm/pkg/utils"
)

func newAsmCmd() *cobra.Command {
	var (
		output      string
		listing     bool
		toClipboard bool
		dumpSymbols bool
	)
	cmd := &cobra.Command{
		Use:   "asm FILE.asm",
		Short: "Assemble a program into .hack text",
		Long: `Asm assembles one source file. The .hack text goes to the file named by
-o, to standard output with -o -, or, when -o is omitted, to standard output
if it is not a terminal and to FILE.hack otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}

			var text bytes.Buffer
			if err := hackfile.Write(&text, prog.words); err != nil {
				return err
			}

			if output == "" && !term.IsTerminal(int(os.Stdout.Fd())) {
				output = "-"
			}
			if output == "" {
				output = utils.DefaultOutputPath(args[0])
			}

			// Reports go wherever the program text does not.
			report := cmd.OutOrStdout()
			if output == "-" {
				report = cmd.ErrOrStderr()
				if _, err := cmd.OutOrStdout().Write(text.Bytes()); err != nil {
					return err
				}
			} else {
				if err := os.WriteFile(output, text.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintf(report, "assembled %d words -> %s\n", len(prog.words), output)
			}

			if listing {
				if err := disasm.Listing(report, prog.words, prog.sourceMap); err != nil {
					return err
				}
			}
			if dumpSymbols {
				dumpTable(report, prog)
			}
			if toClipboard {
				if err := clipboard.Init(); err != nil {
					return fmt.Errorf("clipboard: %w", err)
				}
				clipboard.Write(clipboard.FmtText, text.Bytes())
				fmt.Fprintln(report, "copied to clipboard")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output .hack path, - for stdout")
	cmd.Flags().BoolVar(&listing, "listing", false, "print an address/binary/source listing")
	cmd.Flags().BoolVar(&toClipboard, "clipboard", false, "copy the .hack text to the system clipboard")
	cmd.Flags().BoolVar(&dumpSymbols, "dump-symbols", false, "pretty-print the labels and variables")
	return cmd
}

func dumpTable(w io.Writer, prog *program) {
	pp.Fprintf(w, "labels: %v\n", prog.symbols.Labels())
	pp.Fprintf(w, "variables: %v\n", prog.symbols.Variables())
}
