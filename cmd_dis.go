//go:build !js

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hackasm/pkg/disasm"
)

func newDisCmd() *cobra.Command {
	var listing bool
	cmd := &cobra.Command{
		Use:   "dis FILE.hack",
		Short: "Disassemble .hack text back into assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			if listing {
				return disasm.Listing(cmd.OutOrStdout(), prog.words, prog.sourceMap)
			}
			lines, err := disasm.Disassemble(prog.words)
			if err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&listing, "listing", false, "include addresses and binary words")
	return cmd
}
