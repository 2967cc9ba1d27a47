//go:build !js

package main

import (
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
)

func newSymbolsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "symbols FILE.asm",
		Short: "Pretty-print the resolved symbol table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			if all {
				pp.Fprintln(cmd.OutOrStdout(), prog.symbols.Entries())
				return nil
			}
			dumpTable(cmd.OutOrStdout(), prog)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include the predefined symbols")
	return cmd
}
