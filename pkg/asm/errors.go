package asm

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyProgram is returned when a parser is built over no lines.
	ErrEmptyProgram = errors.New("empty program")
	// ErrTraversalExhausted is returned by Advance on the last line. Passes use
	// it as their stop signal.
	ErrTraversalExhausted = errors.New("no more lines")

	ErrSymbol          = errors.New("malformed symbol")
	ErrClassification  = errors.New("unrecognised line")
	ErrMnemonic        = errors.New("unknown mnemonic")
	ErrOperandRange    = errors.New("operand out of range")
	ErrProgramTooLarge = errors.New("program too large")
	ErrRAMExhausted    = errors.New("out of variable memory")
)

// LineError ties a failure to the source line that caused it.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
