// Package asm assembles Hack assembly into 16-bit machine words.
//
// Assembly runs in three scans over the same cleaned lines: pass 1 binds
// labels to ROM addresses, pass 2 allocates RAM for variables and rewrites
// symbolic operands to numbers, and code generation encodes each remaining
// line into one word.
package asm

import (
	"strings"
	"unicode"

	"github.com/golang/glog"
)

// Assembler runs the passes for one program at a time. Each call to Assemble
// starts from a fresh symbol table.
type Assembler struct {
	symbols  *SymbolTable
	resolved Source
}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble cleans code and assembles it, returning the words and a map from
// ROM address to source line.
func Assemble(code string) ([]uint16, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]uint16, map[uint16]int, error) {
	return a.AssembleSource(Clean(code))
}

// AssembleSource assembles lines that are already free of comments, blanks
// and whitespace.
func (a *Assembler) AssembleSource(src Source) ([]uint16, map[uint16]int, error) {
	a.symbols = NewSymbolTable()
	a.resolved = Source{}

	p, err := NewParser(src)
	if err != nil {
		return nil, nil, err
	}
	if err := a.symbols.Pass1(p); err != nil {
		return nil, nil, err
	}
	resolved, err := a.symbols.Pass2(p)
	if err != nil {
		return nil, nil, err
	}
	a.resolved = resolved

	// A program made only of labels has nothing to encode.
	if len(resolved.Lines) == 0 {
		return []uint16{}, map[uint16]int{}, nil
	}

	gen, err := NewParser(resolved)
	if err != nil {
		return nil, nil, err
	}
	words, err := Generate(gen)
	if err != nil {
		return nil, nil, err
	}

	sourceMap := make(map[uint16]int, len(words))
	for i := range words {
		sourceMap[uint16(i)] = resolved.lineNo(i)
	}
	glog.V(1).Infof("assembled %d words", len(words))
	return words, sourceMap, nil
}

// Symbols returns the table built by the last run.
func (a *Assembler) Symbols() *SymbolTable {
	return a.symbols
}

// Resolved returns the rewritten lines of the last run: labels dropped and
// every address operand numeric.
func (a *Assembler) Resolved() Source {
	return a.resolved
}

// Clean strips comments and whitespace from code and drops lines left empty.
func Clean(code string) Source {
	var src Source
	for i, raw := range strings.Split(code, "\n") {
		line := stripComment(raw)
		line = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, line)
		if line == "" {
			continue
		}
		src.Lines = append(src.Lines, line)
		src.LineNos = append(src.LineNos, i+1)
	}
	return src
}

func stripComment(line string) string {
	before, _, _ := strings.Cut(line, "//")
	return before
}
