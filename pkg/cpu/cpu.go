package cpu

import (
	"errors"
	"fmt"
)

const (
	ROMSize = 32768
	// RAMSize covers data memory, the screen map and the keyboard register.
	RAMSize = 24577

	ScreenBase   uint16 = 0x4000
	ScreenWords         = 8192
	ScreenWidth         = 512
	ScreenHeight        = 256
	KBD          uint16 = 0x6000
)

// Bits of a compute instruction.
const (
	flagCompute uint16 = 0x8000
	flagMemory  uint16 = 0x1000
	destA       uint16 = 0x0020
	destD       uint16 = 0x0010
	destM       uint16 = 0x0008
	jumpLT      uint16 = 0x0004
	jumpEQ      uint16 = 0x0002
	jumpGT      uint16 = 0x0001
)

// ALU control bits, as they sit in bits 11-6 of a compute instruction.
const (
	ctrlZX uint16 = 1 << (5 - iota)
	ctrlNX
	ctrlZY
	ctrlNY
	ctrlF
	ctrlNO
)

var (
	ErrProgramTooLarge = errors.New("program too large for ROM")
	ErrStepLimit       = errors.New("step limit reached before halt")
)

// CPU is a Hack computer: instruction ROM, data RAM with the memory-mapped
// screen and keyboard, and the A, D and PC registers.
type CPU struct {
	A, D, PC uint16

	ROM [ROMSize]uint16
	RAM [RAMSize]uint16

	// ProgramLen is the number of loaded instructions. Running past it halts.
	ProgramLen int

	// Halted is set when the program runs off its end or settles into the
	// conventional "@END, 0;JMP" self-loop.
	Halted bool

	Cycles uint64
}

func NewCPU() *CPU {
	return &CPU{}
}

// Load copies program into ROM and resets the registers. RAM is left alone
// so callers can seed inputs before or after loading.
func (c *CPU) Load(program []uint16) error {
	if len(program) > ROMSize {
		return fmt.Errorf("%w: %d words > %d", ErrProgramTooLarge, len(program), ROMSize)
	}
	c.ROM = [ROMSize]uint16{}
	copy(c.ROM[:], program)
	c.ProgramLen = len(program)
	c.Reset()
	return nil
}

// Reset restarts execution from address 0.
func (c *CPU) Reset() {
	c.A, c.D, c.PC = 0, 0, 0
	c.Halted = false
	c.Cycles = 0
}

// ReadMem reads data memory. Addresses past the keyboard read as zero.
func (c *CPU) ReadMem(addr uint16) uint16 {
	if int(addr) < RAMSize {
		return c.RAM[addr]
	}
	return 0
}

// WriteMem writes data memory. The keyboard register and anything past it
// are read-only to programs.
func (c *CPU) WriteMem(addr uint16, val uint16) {
	if addr < KBD {
		c.RAM[addr] = val
	}
}

// SetKey sets the keyboard register; 0 means no key is held.
func (c *CPU) SetKey(code uint16) {
	c.RAM[KBD] = code
}

func (c *CPU) Key() uint16 {
	return c.RAM[KBD]
}

// ALU computes one Hack ALU operation. control holds zx nx zy ny f no in
// bits 5-0. zr and ng report a zero and a negative result.
func ALU(x, y, control uint16) (out uint16, zr, ng bool) {
	if control&ctrlZX != 0 {
		x = 0
	}
	if control&ctrlNX != 0 {
		x = ^x
	}
	if control&ctrlZY != 0 {
		y = 0
	}
	if control&ctrlNY != 0 {
		y = ^y
	}
	if control&ctrlF != 0 {
		out = x + y
	} else {
		out = x & y
	}
	if control&ctrlNO != 0 {
		out = ^out
	}
	return out, out == 0, out&0x8000 != 0
}

func (c *CPU) Step() {
	if c.Halted {
		return
	}
	if int(c.PC) >= c.ProgramLen {
		c.Halted = true
		return
	}

	instr := c.ROM[c.PC]
	c.Cycles++

	if instr&flagCompute == 0 {
		c.A = instr
		c.PC++
		return
	}

	addr := c.A
	y := c.A
	if instr&flagMemory != 0 {
		y = c.ReadMem(addr)
	}
	out, zr, ng := ALU(c.D, y, (instr>>6)&0x3F)

	if instr&destM != 0 {
		c.WriteMem(addr, out)
	}
	if instr&destD != 0 {
		c.D = out
	}
	if instr&destA != 0 {
		c.A = out
	}

	taken := (instr&jumpLT != 0 && ng) ||
		(instr&jumpEQ != 0 && zr) ||
		(instr&jumpGT != 0 && !zr && !ng)
	if !taken {
		c.PC++
		return
	}

	// A jump with no side effects back onto the "@self" that loaded its
	// target can never leave.
	if instr&(destA|destD|destM) == 0 && c.PC > 0 && addr == c.PC-1 && c.ROM[addr] == addr {
		c.Halted = true
	}
	c.PC = addr
}

// Run steps until the CPU halts or maxSteps instructions have executed.
// maxSteps <= 0 means no limit. It returns the number of steps taken.
func (c *CPU) Run(maxSteps int) int {
	steps := 0
	for !c.Halted && (maxSteps <= 0 || steps < maxSteps) {
		c.Step()
		steps++
	}
	return steps
}

// RunUntilDone runs like Run but reports ErrStepLimit when the program is
// still going after maxSteps instructions.
func (c *CPU) RunUntilDone(maxSteps int) (int, error) {
	steps := c.Run(maxSteps)
	if !c.Halted {
		return steps, fmt.Errorf("%w: %d steps, PC=%d", ErrStepLimit, steps, c.PC)
	}
	return steps, nil
}
