//go:build !js

package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"hackasm/pkg/asm"
	"hackasm/pkg/cpu"
)

const defaultStepLimit = 10_000_000

func newRunCmd() *cobra.Command {
	var (
		steps      int
		sets       []string
		dumps      []string
		screenshot string
		snapshot   string
	)
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Execute a program on an emulated Hack computer",
		Long: `Run assembles FILE (or reads it when it ends in .hack), loads it into ROM
and executes it until it halts or the step limit is reached. A program halts
when it runs past its last instruction or enters the "@END, 0;JMP" loop.

Addresses given to --set and --dump may be numbers or any symbol the
program defines, for example --set R0=6 --dump R2 --dump SCREEN:32.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			c := cpu.NewCPU()
			if err := c.Load(prog.words); err != nil {
				return err
			}
			for _, s := range sets {
				addr, val, err := parseAssignment(prog.symbols, s)
				if err != nil {
					return err
				}
				c.WriteMem(addr, val)
			}

			out := cmd.OutOrStdout()
			n, err := c.RunUntilDone(steps)
			switch {
			case errors.Is(err, cpu.ErrStepLimit):
				glog.Warningf("%s: %v", args[0], err)
			case err != nil:
				return err
			default:
				fmt.Fprintf(out, "halted after %d steps at PC=%d\n", n, c.PC)
			}

			for _, d := range dumps {
				addr, count, err := parseRange(prog.symbols, d)
				if err != nil {
					return err
				}
				dumpRAM(out, c, addr, count)
			}
			if screenshot != "" {
				if err := c.SaveScreenshot(screenshot); err != nil {
					return err
				}
				fmt.Fprintf(out, "screen -> %s\n", screenshot)
			}
			if snapshot != "" {
				if err := c.HibernateToFile(snapshot); err != nil {
					return err
				}
				fmt.Fprintf(out, "snapshot -> %s\n", snapshot)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", defaultStepLimit, "maximum instructions to execute, 0 for no limit")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "seed memory before running, ADDR=VALUE (repeatable)")
	cmd.Flags().StringArrayVar(&dumps, "dump", nil, "print memory after running, ADDR[:COUNT] (repeatable)")
	cmd.Flags().StringVar(&screenshot, "screenshot", "", "save the screen as PNG")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "save the machine state as a ZIP archive")
	return cmd
}

// parseAddress accepts a decimal address or a symbol bound in st.
func parseAddress(st *asm.SymbolTable, s string) (uint16, error) {
	if asm.IsLiteral(s) {
		v, err := strconv.ParseUint(s, 10, 16)
		if err != nil || v > uint64(cpu.KBD) {
			return 0, fmt.Errorf("address %s out of range", s)
		}
		return uint16(v), nil
	}
	addr, ok := st.Lookup(s)
	if !ok {
		return 0, fmt.Errorf("unknown symbol %q", s)
	}
	return addr, nil
}

// parseAssignment reads ADDR=VALUE. Negative values are stored in two's
// complement.
func parseAssignment(st *asm.SymbolTable, s string) (uint16, uint16, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, fmt.Errorf("--set %q: want ADDR=VALUE", s)
	}
	addr, err := parseAddress(st, name)
	if err != nil {
		return 0, 0, fmt.Errorf("--set %q: %w", s, err)
	}
	v, err := strconv.ParseInt(value, 0, 32)
	if err != nil || v < -32768 || v > 0xFFFF {
		return 0, 0, fmt.Errorf("--set %q: value out of range", s)
	}
	return addr, uint16(v), nil
}

func parseRange(st *asm.SymbolTable, s string) (uint16, int, error) {
	name, countText, hasCount := strings.Cut(s, ":")
	addr, err := parseAddress(st, name)
	if err != nil {
		return 0, 0, fmt.Errorf("--dump %q: %w", s, err)
	}
	count := 1
	if hasCount {
		count, err = strconv.Atoi(countText)
		if err != nil || count < 1 {
			return 0, 0, fmt.Errorf("--dump %q: bad count", s)
		}
	}
	return addr, count, nil
}

func dumpRAM(w io.Writer, c *cpu.CPU, addr uint16, count int) {
	for i := 0; i < count && int(addr)+i < cpu.RAMSize; i++ {
		a := addr + uint16(i)
		v := c.ReadMem(a)
		fmt.Fprintf(w, "RAM[%5d] %6d  %016b\n", a, int16(v), v)
	}
}
