// Package disasm turns Hack machine words back into assembly text.
package disasm

import (
	"fmt"
	"io"
	"strconv"

	"hackasm/pkg/asm"
	"hackasm/pkg/hackfile"
)

// Instruction returns the assembly for one word. Address words become @n;
// compute words become dest=comp;jump with empty parts left out.
func Instruction(word uint16) (string, error) {
	if word&0x8000 == 0 {
		return "@" + strconv.Itoa(int(word)), nil
	}
	if !asm.IsCompute(word) {
		return "", fmt.Errorf("word %016b: bits 14-13 must be set on a compute instruction", word)
	}
	comp, ok := asm.DecodeComp(word)
	if !ok {
		return "", fmt.Errorf("word %016b: unknown computation", word)
	}

	text := comp
	if dest := asm.DecodeDest(word); dest != "" {
		text = dest + "=" + text
	}
	if jump := asm.DecodeJump(word); jump != "" {
		text += ";" + jump
	} else if asm.DecodeDest(word) == "" {
		// A bare computation needs ';' to read back as a compute line.
		text += ";"
	}
	return text, nil
}

func Disassemble(words []uint16) ([]string, error) {
	out := make([]string, len(words))
	for i, w := range words {
		text, err := Instruction(w)
		if err != nil {
			return nil, fmt.Errorf("ROM %d: %w", i, err)
		}
		out[i] = text
	}
	return out, nil
}

// Listing writes one row per word: ROM address, binary, assembly, and the
// source line when sourceMap has one.
func Listing(w io.Writer, words []uint16, sourceMap map[uint16]int) error {
	for i, word := range words {
		text, err := Instruction(word)
		if err != nil {
			text = "??"
		}
		row := fmt.Sprintf("%5d  %s  %-16s", i, hackfile.Format(word), text)
		if line, ok := sourceMap[uint16(i)]; ok {
			row += fmt.Sprintf("  ; line %d", line)
		}
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}
	return nil
}
