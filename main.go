//go:build !js

package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"hackasm/pkg/asm"
	"hackasm/pkg/hackfile"
	"hackasm/pkg/utils"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hackasm",
		Short: "Assembler, disassembler and runner for Hack machine language",
		Long: `hackasm translates Hack assembly (.asm) into the textual binary .hack
format, one 16-character line of 0s and 1s per instruction. It can also
disassemble .hack files, print the resolved symbol table of a program and
execute a program on an emulated Hack computer.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// glog reads its settings from the standard flag set.
			flag.CommandLine.Parse(nil)
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				pp.Default.SetColoringEnabled(false)
			}
		},
	}
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	root.AddCommand(newAsmCmd(), newDisCmd(), newRunCmd(), newSymbolsCmd())
	return root
}

func main() {
	flag.Set("logtostderr", "true")
	defer glog.Flush()

	if err := newRootCmd().Execute(); err != nil {
		glog.Flush()
		os.Exit(1)
	}
}

// program is a machine-language program plus whatever the assembler knew
// about it. Programs read from .hack files carry only the predefined symbols
// and no source map.
type program struct {
	words     []uint16
	sourceMap map[uint16]int
	symbols   *asm.SymbolTable
}

func loadProgram(path string) (*program, error) {
	fullPath, _, err := utils.GetPathInfo(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, err
	}

	if utils.IsHackFile(fullPath) {
		words, err := hackfile.Read(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		glog.V(1).Infof("read %d words from %s", len(words), fullPath)
		return &program{words: words, symbols: asm.NewSymbolTable()}, nil
	}

	a := asm.NewAssembler()
	words, sourceMap, err := a.Assemble(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	glog.V(1).Infof("assembled %d words from %s", len(words), fullPath)
	return &program{words: words, sourceMap: sourceMap, symbols: a.Symbols()}, nil
}
