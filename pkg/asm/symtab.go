package asm

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/golang/glog"
)

const (
	// VariableBase is the first RAM address handed to a user variable.
	VariableBase uint16 = 16
	// ScreenBase and KeyboardAddr are the memory-mapped I/O addresses.
	ScreenBase   uint16 = 0x4000
	KeyboardAddr uint16 = 0x6000
	// MaxROM is the number of instructions the machine can address.
	MaxROM = 1 << 15
)

// Origin records how a symbol came to be bound.
type Origin uint8

const (
	Predefined Origin = iota
	Label
	Variable
)

func (o Origin) String() string {
	switch o {
	case Label:
		return "label"
	case Variable:
		return "variable"
	}
	return "predefined"
}

// Entry is one binding of the table.
type Entry struct {
	Name    string
	Address uint16
	Origin  Origin
}

// SymbolTable binds names to addresses for one assembly run. The first
// binding of a name wins; later binds are ignored.
type SymbolTable struct {
	symbols map[string]Entry
	rom     int
	ram     uint16
}

func NewSymbolTable() *SymbolTable {
	t := &SymbolTable{
		symbols: make(map[string]Entry),
		ram:     VariableBase,
	}
	for i, name := range []string{"SP", "LCL", "ARG", "THIS", "THAT"} {
		t.bind(name, uint16(i), Predefined)
	}
	for i := 0; i < 16; i++ {
		t.bind("R"+strconv.Itoa(i), uint16(i), Predefined)
	}
	t.bind("SCREEN", ScreenBase, Predefined)
	t.bind("KBD", KeyboardAddr, Predefined)
	return t
}

// Bind adds name at addr as a label binding. It reports whether a new
// binding was made.
func (t *SymbolTable) Bind(name string, addr uint16) bool {
	return t.bind(name, addr, Label)
}

func (t *SymbolTable) bind(name string, addr uint16, origin Origin) bool {
	if _, exists := t.symbols[name]; exists {
		return false
	}
	t.symbols[name] = Entry{Name: name, Address: addr, Origin: origin}
	return true
}

func (t *SymbolTable) Lookup(name string) (uint16, bool) {
	e, ok := t.symbols[name]
	return e.Address, ok
}

func (t *SymbolTable) Contains(name string) bool {
	_, ok := t.symbols[name]
	return ok
}

func (t *SymbolTable) Len() int {
	return len(t.symbols)
}

// Entries returns every binding ordered by address, then name.
func (t *SymbolTable) Entries() []Entry {
	return t.filter(func(Entry) bool { return true })
}

func (t *SymbolTable) Labels() []Entry {
	return t.filter(func(e Entry) bool { return e.Origin == Label })
}

func (t *SymbolTable) Variables() []Entry {
	return t.filter(func(e Entry) bool { return e.Origin == Variable })
}

func (t *SymbolTable) filter(keep func(Entry) bool) []Entry {
	out := make([]Entry, 0, len(t.symbols))
	for _, e := range t.symbols {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Address != out[j].Address {
			return out[i].Address < out[j].Address
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Pass1 walks every line from the start, counting ROM slots. Address and
// compute lines take one slot each; a label is bound to the slot of the next
// real instruction and takes none.
func (t *SymbolTable) Pass1(p *Parser) error {
	p.Reset()
	t.rom = 0
	for {
		kind, err := p.Kind()
		if err != nil {
			return err
		}

		switch kind {
		case AddressKind, ComputeKind:
			if t.rom >= MaxROM {
				return p.lineError(fmt.Errorf("%w: more than %d instructions", ErrProgramTooLarge, MaxROM))
			}
			t.rom++
		case LabelKind:
			name, err := p.Symbol()
			if err != nil {
				return err
			}
			if t.bind(name, uint16(t.rom), Label) {
				glog.V(1).Infof("label %s -> ROM %d", name, t.rom)
			} else {
				glog.V(1).Infof("label %s on line %d already bound, keeping first", name, p.LineNo())
			}
		}

		if err := p.Advance(); err != nil {
			if errors.Is(err, ErrTraversalExhausted) {
				break
			}
			return err
		}
	}
	glog.V(1).Infof("pass 1: %d instructions, %d symbols", t.rom, len(t.symbols))
	return nil
}

// Pass2 walks the lines again, allocating RAM for unbound address symbols in
// first-use order, and returns the rewritten sequence: symbolic operands
// replaced by their decimal address and label lines dropped.
func (t *SymbolTable) Pass2(p *Parser) (Source, error) {
	p.Reset()
	out := Source{
		Lines:   make([]string, 0, p.Len()),
		LineNos: make([]int, 0, p.Len()),
	}
	for {
		kind, err := p.Kind()
		if err != nil {
			return Source{}, err
		}

		line := p.Line()
		switch kind {
		case AddressKind:
			operand, err := p.Symbol()
			if err != nil {
				return Source{}, err
			}
			if !IsLiteral(operand) {
				addr, err := t.resolve(operand)
				if err != nil {
					return Source{}, p.lineError(err)
				}
				line = "@" + strconv.Itoa(int(addr))
			}
			fallthrough
		case ComputeKind:
			glog.V(2).Infof("%4d: %-16s -> %s", p.LineNo(), p.Line(), line)
			out.Lines = append(out.Lines, line)
			out.LineNos = append(out.LineNos, p.LineNo())
		}

		if err := p.Advance(); err != nil {
			if errors.Is(err, ErrTraversalExhausted) {
				break
			}
			return Source{}, err
		}
	}
	glog.V(1).Infof("pass 2: %d variables, next free RAM %d", t.ram-VariableBase, t.ram)
	return out, nil
}

func (t *SymbolTable) resolve(name string) (uint16, error) {
	if addr, ok := t.Lookup(name); ok {
		return addr, nil
	}
	if t.ram >= ScreenBase {
		return 0, fmt.Errorf("%w: %q would overlap the screen map", ErrRAMExhausted, name)
	}
	addr := t.ram
	t.bind(name, addr, Variable)
	t.ram++
	glog.V(1).Infof("variable %s -> RAM %d", name, addr)
	return addr, nil
}
