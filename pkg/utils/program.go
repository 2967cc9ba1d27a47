package utils

import (
	"fmt"
	"io"
	"os"

	"hackasm/pkg/asm"
	"hackasm/pkg/hackfile"
)

// LoadProgram reads a .hack file, or assembles any other file, into words
// ready for the CPU.
func LoadProgram(path string) ([]uint16, error) {
	fullPath, _, err := GetPathInfo(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if IsHackFile(fullPath) {
		words, err := hackfile.Read(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return words, nil
	}

	src, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	words, _, err := asm.Assemble(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}
