package cpu

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Archive members of a snapshot.
const (
	stateEntry = "cpu_state.json"
	romEntry   = "rom.bin"
	ramEntry   = "ram.bin"
)

// registers is the JSON part of a snapshot.
type registers struct {
	A          uint16 `json:"a"`
	D          uint16 `json:"d"`
	PC         uint16 `json:"pc"`
	Halted     bool   `json:"halted"`
	Cycles     uint64 `json:"cycles"`
	ProgramLen int    `json:"program_len"`
}

// HibernateToBytes packs the machine into a ZIP archive holding the
// registers as JSON and the loaded ROM and all of RAM as little-endian words.
func (c *CPU) HibernateToBytes() ([]byte, error) {
	regs, err := json.MarshalIndent(registers{
		A:          c.A,
		D:          c.D,
		PC:         c.PC,
		Halted:     c.Halted,
		Cycles:     c.Cycles,
		ProgramLen: c.ProgramLen,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", stateEntry, err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	members := []struct {
		name string
		data []byte
	}{
		{stateEntry, regs},
		{romEntry, encodeWords(c.ROM[:c.ProgramLen])},
		{ramEntry, encodeWords(c.RAM[:])},
	}
	for _, m := range members {
		w, err := zw.Create(m.name)
		if err != nil {
			return nil, fmt.Errorf("add %s: %w", m.name, err)
		}
		if _, err := w.Write(m.data); err != nil {
			return nil, fmt.Errorf("write %s: %w", m.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RestoreFromBytes replaces the machine state with a snapshot made by
// HibernateToBytes. The CPU is left untouched when the archive is invalid.
func (c *CPU) RestoreFromBytes(data []byte) error {
	members, err := readArchive(data)
	if err != nil {
		return err
	}
	for _, name := range []string{stateEntry, romEntry, ramEntry} {
		if _, ok := members[name]; !ok {
			return fmt.Errorf("snapshot has no %s", name)
		}
	}

	var regs registers
	if err := json.Unmarshal(members[stateEntry], &regs); err != nil {
		return fmt.Errorf("decode %s: %w", stateEntry, err)
	}
	if regs.ProgramLen < 0 || regs.ProgramLen > ROMSize {
		return fmt.Errorf("%s: program length %d out of range", stateEntry, regs.ProgramLen)
	}
	rom := members[romEntry]
	if len(rom) != regs.ProgramLen*2 {
		return fmt.Errorf("%s holds %d bytes, want %d", romEntry, len(rom), regs.ProgramLen*2)
	}

	c.ROM = [ROMSize]uint16{}
	decodeWords(c.ROM[:regs.ProgramLen], rom)
	c.RAM = [RAMSize]uint16{}
	decodeWords(c.RAM[:], members[ramEntry])
	c.A, c.D, c.PC = regs.A, regs.D, regs.PC
	c.Halted = regs.Halted
	c.Cycles = regs.Cycles
	c.ProgramLen = regs.ProgramLen
	return nil
}

func (c *CPU) HibernateToFile(path string) error {
	data, err := c.HibernateToBytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *CPU) RestoreFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.RestoreFromBytes(data)
}

// readArchive returns the contents of every member of a ZIP archive.
func readArchive(data []byte) (map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	members := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		members[f.Name] = b
	}
	return members, nil
}

func encodeWords(words []uint16) []byte {
	out := make([]byte, 2*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint16(out[2*i:], w)
	}
	return out
}

// decodeWords fills dst from src. Words missing from a short src stay zero.
func decodeWords(dst []uint16, src []byte) {
	for i := range dst {
		if 2*i+1 >= len(src) {
			return
		}
		dst[i] = binary.LittleEndian.Uint16(src[2*i:])
	}
}
