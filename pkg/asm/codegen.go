package asm

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

const (
	computePrefix uint16 = 0xE000 // bits 15-13
	memoryFlag    uint16 = 1 << 12
	compShift            = 6
	destShift            = 3
	maxAddress           = 1<<15 - 1
)

// Destination bits, one per register.
const (
	DestM uint16 = 1 << (destShift + iota)
	DestD
	DestA
)

// compTable holds the ALU control bits (zx nx zy ny f no) for every
// computation written with A. The M form of each entry differs only by
// memoryFlag.
var compTable = map[string]uint16{
	"0":   0b101010,
	"1":   0b111111,
	"-1":  0b111010,
	"D":   0b001100,
	"A":   0b110000,
	"!D":  0b001101,
	"!A":  0b110001,
	"-D":  0b001111,
	"-A":  0b110011,
	"D+1": 0b011111,
	"A+1": 0b110111,
	"D-1": 0b001110,
	"A-1": 0b110010,
	"D+A": 0b000010,
	"D-A": 0b010011,
	"A-D": 0b000111,
	"D&A": 0b000000,
	"D|A": 0b010101,
}

// compAliases are commutative spellings accepted on input. They are never
// produced by DecodeComp.
var compAliases = map[string]string{
	"A+D": "D+A",
	"A&D": "D&A",
	"A|D": "D|A",
}

var jumpTable = map[string]uint16{
	"JGT": 1,
	"JEQ": 2,
	"JGE": 3,
	"JLT": 4,
	"JNE": 5,
	"JLE": 6,
	"JMP": 7,
}

var (
	compByBits = invert(compTable)
	jumpByBits = invert(jumpTable)
)

func invert(m map[string]uint16) map[uint16]string {
	out := make(map[uint16]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// EncodeAddress returns the word for a resolved address operand.
func EncodeAddress(operand string) (uint16, error) {
	if !IsLiteral(operand) {
		return 0, fmt.Errorf("%w: unresolved operand %q", ErrSymbol, operand)
	}
	v, err := strconv.ParseUint(operand, 10, 16)
	if err != nil || v > maxAddress {
		return 0, fmt.Errorf("%w: %s does not fit in 15 bits", ErrOperandRange, operand)
	}
	return uint16(v), nil
}

// EncodeDest returns the destination bits for any combination of A, D and M.
func EncodeDest(dest string) (uint16, error) {
	var bits uint16
	for _, r := range dest {
		var b uint16
		switch r {
		case 'M':
			b = DestM
		case 'D':
			b = DestD
		case 'A':
			b = DestA
		default:
			return 0, fmt.Errorf("%w: destination %q", ErrMnemonic, dest)
		}
		if bits&b != 0 {
			return 0, fmt.Errorf("%w: destination %q repeats %c", ErrMnemonic, dest, r)
		}
		bits |= b
	}
	return bits, nil
}

// EncodeComp returns the comp field, bits 12-6, for a computation.
func EncodeComp(comp string) (uint16, error) {
	var flag uint16
	key := comp
	if strings.ContainsRune(comp, 'M') {
		if strings.ContainsRune(comp, 'A') {
			return 0, fmt.Errorf("%w: computation %q", ErrMnemonic, comp)
		}
		key = strings.ReplaceAll(comp, "M", "A")
		flag = memoryFlag
	}
	if canonical, ok := compAliases[key]; ok {
		key = canonical
	}
	bits, ok := compTable[key]
	if !ok {
		return 0, fmt.Errorf("%w: computation %q", ErrMnemonic, comp)
	}
	return flag | bits<<compShift, nil
}

// EncodeJump returns the jump bits. An empty condition means no jump.
func EncodeJump(jump string) (uint16, error) {
	if jump == "" {
		return 0, nil
	}
	bits, ok := jumpTable[jump]
	if !ok {
		return 0, fmt.Errorf("%w: jump %q", ErrMnemonic, jump)
	}
	return bits, nil
}

// Encode assembles one resolved address or compute line.
func Encode(line string) (uint16, error) {
	kind, err := Classify(line)
	if err != nil {
		return 0, err
	}
	switch kind {
	case AddressKind:
		return EncodeAddress(line[1:])
	case ComputeKind:
		return encodeCompute(line)
	}
	return 0, fmt.Errorf("%w: label %s has no encoding", ErrClassification, line)
}

func encodeCompute(line string) (uint16, error) {
	word := computePrefix
	if dest, ok := DestOf(line); ok {
		bits, err := EncodeDest(dest)
		if err != nil {
			return 0, err
		}
		word |= bits
	}
	comp, err := CompOf(line)
	if err != nil {
		return 0, err
	}
	bits, err := EncodeComp(comp)
	if err != nil {
		return 0, err
	}
	word |= bits
	if jump, ok := JumpOf(line); ok {
		bits, err := EncodeJump(jump)
		if err != nil {
			return 0, err
		}
		word |= bits
	}
	return word, nil
}

// Generate encodes every line of a resolved sequence in order. A label that
// survived pass 2 is reported and skipped.
func Generate(p *Parser) ([]uint16, error) {
	p.Reset()
	words := make([]uint16, 0, p.Len())
	for {
		kind, err := p.Kind()
		if err != nil {
			return nil, err
		}
		if kind == LabelKind {
			glog.Warningf("line %d: label %s reached code generation, skipped", p.LineNo(), p.Line())
		} else {
			word, err := Encode(p.Line())
			if err != nil {
				return nil, p.lineError(err)
			}
			glog.V(2).Infof("%5d %016b %s", len(words), word, p.Line())
			words = append(words, word)
		}

		if err := p.Advance(); err != nil {
			if errors.Is(err, ErrTraversalExhausted) {
				break
			}
			return nil, err
		}
	}
	return words, nil
}

// DecodeDest is the inverse of EncodeDest, in the conventional A, D, M
// order. It returns "" when no destination bit is set.
func DecodeDest(word uint16) string {
	var sb strings.Builder
	if word&DestA != 0 {
		sb.WriteByte('A')
	}
	if word&DestD != 0 {
		sb.WriteByte('D')
	}
	if word&DestM != 0 {
		sb.WriteByte('M')
	}
	return sb.String()
}

// DecodeComp returns the canonical mnemonic of a compute word's comp field.
func DecodeComp(word uint16) (string, bool) {
	comp, ok := compByBits[(word>>compShift)&0x3F]
	if !ok {
		return "", false
	}
	if word&memoryFlag != 0 {
		if !strings.ContainsRune(comp, 'A') {
			return "", false
		}
		comp = strings.ReplaceAll(comp, "A", "M")
	}
	return comp, true
}

// DecodeJump returns the jump mnemonic, or "" when the word does not jump.
func DecodeJump(word uint16) string {
	return jumpByBits[word&0x7]
}

// IsCompute reports whether word carries the compute prefix.
func IsCompute(word uint16) bool {
	return word&computePrefix == computePrefix
}

// CompMnemonics lists every canonical computation, A and M forms, sorted.
func CompMnemonics() []string {
	out := make([]string, 0, 2*len(compTable))
	for comp := range compTable {
		out = append(out, comp)
		if strings.ContainsRune(comp, 'A') {
			out = append(out, strings.ReplaceAll(comp, "A", "M"))
		}
	}
	sort.Strings(out)
	return out
}

// JumpMnemonics lists the jump conditions in encoding order.
func JumpMnemonics() []string {
	out := make([]string, 0, len(jumpTable))
	for bits := uint16(1); bits <= 7; bits++ {
		out = append(out, jumpByBits[bits])
	}
	return out
}
