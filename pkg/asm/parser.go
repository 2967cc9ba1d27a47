package asm

import (
	"fmt"
	"strings"
	"unicode"
)

// Kind is the shape of a cleaned source line.
type Kind uint8

const (
	AddressKind Kind = iota + 1 // @value
	ComputeKind                 // dest=comp;jump
	LabelKind                   // (NAME)
)

func (k Kind) String() string {
	switch k {
	case AddressKind:
		return "A"
	case ComputeKind:
		return "C"
	case LabelKind:
		return "L"
	}
	return "?"
}

// Source is a cleaned instruction sequence. LineNos holds the 1-based line in
// the original text for each entry; when nil, entry i came from line i+1.
type Source struct {
	Lines   []string
	LineNos []int
}

// Lines wraps an already cleaned slice of lines.
func Lines(lines ...string) Source {
	return Source{Lines: lines}
}

func (s Source) lineNo(i int) int {
	if i < len(s.LineNos) {
		return s.LineNos[i]
	}
	return i + 1
}

// Classify reports the kind of a cleaned line. Address and label symbols are
// validated here, so a malformed symbol is caught before any pass runs.
func Classify(line string) (Kind, error) {
	switch {
	case line == "":
		return 0, fmt.Errorf("%w: blank line", ErrClassification)
	case line[0] == '@':
		if err := checkOperand(line[1:]); err != nil {
			return 0, err
		}
		return AddressKind, nil
	case strings.ContainsAny(line, "=;"):
		return ComputeKind, nil
	case len(line) >= 2 && line[0] == '(' && line[len(line)-1] == ')':
		if err := checkSymbol(line[1 : len(line)-1]); err != nil {
			return 0, err
		}
		return LabelKind, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrClassification, line)
}

// SymbolOf returns the operand of an address line or the name of a label.
func SymbolOf(line string) (string, error) {
	kind, err := Classify(line)
	if err != nil {
		return "", err
	}
	switch kind {
	case AddressKind:
		return line[1:], nil
	case LabelKind:
		return line[1 : len(line)-1], nil
	}
	return "", fmt.Errorf("%w: compute instruction has no symbol", ErrClassification)
}

// DestOf returns the text before '=' of a compute line.
func DestOf(line string) (string, bool) {
	if !isCompute(line) {
		return "", false
	}
	dest, _, found := strings.Cut(line, "=")
	if !found {
		return "", false
	}
	return dest, true
}

// CompOf returns the computation of a compute line: whatever follows '=' (if
// present) up to ';' (if present).
func CompOf(line string) (string, error) {
	if !isCompute(line) {
		return "", fmt.Errorf("%w: not a compute instruction", ErrClassification)
	}
	rest := line
	if _, after, found := strings.Cut(line, "="); found {
		rest = after
	}
	comp, _, _ := strings.Cut(rest, ";")
	return comp, nil
}

// JumpOf returns the text after ';' of a compute line.
func JumpOf(line string) (string, bool) {
	if !isCompute(line) {
		return "", false
	}
	_, jump, found := strings.Cut(line, ";")
	return jump, found
}

// IsLiteral reports whether an address operand is a decimal constant rather
// than a symbol.
func IsLiteral(operand string) bool {
	if operand == "" {
		return false
	}
	for i := 0; i < len(operand); i++ {
		if operand[i] < '0' || operand[i] > '9' {
			return false
		}
	}
	return true
}

func isCompute(line string) bool {
	return line != "" && line[0] != '@' && strings.ContainsAny(line, "=;")
}

func checkOperand(operand string) error {
	if IsLiteral(operand) {
		return nil
	}
	return checkSymbol(operand)
}

// checkSymbol accepts letters, digits, '_', '.', '$' and ':', not starting
// with a digit.
func checkSymbol(sym string) error {
	if sym == "" {
		return fmt.Errorf("%w: empty symbol", ErrSymbol)
	}
	for i, r := range sym {
		if i == 0 && unicode.IsDigit(r) {
			return fmt.Errorf("%w: %q begins with a digit", ErrSymbol, sym)
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("_.$:", r) {
			return fmt.Errorf("%w: %q contains %q", ErrSymbol, sym, r)
		}
	}
	return nil
}

// Parser is a forward-only cursor over a Source. It can be rewound with Reset
// so the same lines serve several passes.
type Parser struct {
	src Source
	pos int
}

func NewParser(src Source) (*Parser, error) {
	if len(src.Lines) == 0 {
		return nil, ErrEmptyProgram
	}
	return &Parser{src: src}, nil
}

func (p *Parser) Line() string { return p.src.Lines[p.pos] }
func (p *Parser) LineNo() int  { return p.src.lineNo(p.pos) }
func (p *Parser) Pos() int     { return p.pos }
func (p *Parser) Len() int     { return len(p.src.Lines) }

func (p *Parser) HasMore() bool {
	return p.pos < len(p.src.Lines)-1
}

// Advance moves to the next line. On the last line it returns
// ErrTraversalExhausted and the cursor stays put.
func (p *Parser) Advance() error {
	if !p.HasMore() {
		return ErrTraversalExhausted
	}
	p.pos++
	return nil
}

func (p *Parser) Reset() {
	p.pos = 0
}

func (p *Parser) Kind() (Kind, error) {
	kind, err := Classify(p.Line())
	if err != nil {
		return 0, p.lineError(err)
	}
	return kind, nil
}

func (p *Parser) Symbol() (string, error) {
	sym, err := SymbolOf(p.Line())
	if err != nil {
		return "", p.lineError(err)
	}
	return sym, nil
}

func (p *Parser) Dest() (string, bool) { return DestOf(p.Line()) }
func (p *Parser) Jump() (string, bool) { return JumpOf(p.Line()) }

func (p *Parser) Comp() (string, error) {
	comp, err := CompOf(p.Line())
	if err != nil {
		return "", p.lineError(err)
	}
	return comp, nil
}

func (p *Parser) lineError(err error) error {
	return &LineError{Line: p.LineNo(), Text: p.Line(), Err: err}
}
