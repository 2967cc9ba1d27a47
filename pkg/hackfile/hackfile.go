// Package hackfile reads and writes the .hack text format: one word per line,
// written as sixteen '0' and '1' characters, most significant bit first.
package hackfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Format renders a single word.
func Format(word uint16) string {
	return fmt.Sprintf("%016b", word)
}

func Write(w io.Writer, words []uint16) error {
	bw := bufio.NewWriter(w)
	for _, word := range words {
		if _, err := bw.WriteString(Format(word) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read parses a .hack stream. Blank lines are skipped; anything else that is
// not exactly sixteen binary digits is an error.
func Read(r io.Reader) ([]uint16, error) {
	var words []uint16
	s := bufio.NewScanner(r)
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		word, err := parse(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		words = append(words, word)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

func parse(line string) (uint16, error) {
	if len(line) != 16 {
		return 0, fmt.Errorf("expected 16 binary digits, got %d characters in %q", len(line), line)
	}
	var word uint16
	for i := 0; i < 16; i++ {
		word <<= 1
		switch line[i] {
		case '1':
			word |= 1
		case '0':
		default:
			return 0, fmt.Errorf("invalid character %q in %q", line[i], line)
		}
	}
	return word, nil
}
