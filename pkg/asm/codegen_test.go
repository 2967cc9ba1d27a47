package asm

import (
	"errors"
	"strconv"
	"strings"
	"testing"
)

func TestEncodeCompute(t *testing.T) {
	tests := map[string]string{
		"MD=A-1;JGE": "1110110010011011",
		"A-1;JMP":    "1110110010000111",
		"D=M":        "1111110000010000",
		"D=D-M":      "1111010011010000",
		"D;JGT":      "1110001100000001",
		"0;JMP":      "1110101010000111",
		"M=D":        "1110001100001000",
		"AMD=D|M":    "1111010101111000",
		"M=M+1":      "1111110111001000",
		"D=A+D":      "1110000010010000",
		"M=-1":       "1110111010001000",
		"D=!M;JLE":   "1111110001010110",
		"A=D&A;JLT":  "1110000000100100",
	}
	for line, want := range tests {
		got, err := Encode(line)
		if err != nil {
			t.Errorf("Encode(%q) error: %v", line, err)
			continue
		}
		if s := strconv.FormatUint(uint64(got), 2); strings.Repeat("0", 16-len(s))+s != want {
			t.Errorf("Encode(%q) = %016b; want %s", line, got, want)
		}
	}
}

func TestEncodeAddressRange(t *testing.T) {
	for n := 0; n <= 32767; n++ {
		got, err := Encode("@" + strconv.Itoa(n))
		if err != nil {
			t.Fatalf("Encode(@%d) error: %v", n, err)
		}
		if int(got) != n || got&0x8000 != 0 {
			t.Fatalf("Encode(@%d) = %#04x", n, got)
		}
	}
	for _, operand := range []string{"32768", "65535", "99999999999"} {
		if _, err := EncodeAddress(operand); !errors.Is(err, ErrOperandRange) {
			t.Errorf("EncodeAddress(%s) error = %v; want ErrOperandRange", operand, err)
		}
	}
	if _, err := EncodeAddress("foo"); !errors.Is(err, ErrSymbol) {
		t.Errorf("EncodeAddress(foo) error = %v; want ErrSymbol", err)
	}
}

func TestEncodeDest(t *testing.T) {
	tests := []struct {
		dest string
		want uint16
	}{
		{"", 0},
		{"M", 0b001000},
		{"D", 0b010000},
		{"MD", 0b011000},
		{"DM", 0b011000},
		{"A", 0b100000},
		{"AM", 0b101000},
		{"AD", 0b110000},
		{"AMD", 0b111000},
		{"ADM", 0b111000},
	}
	for _, tc := range tests {
		got, err := EncodeDest(tc.dest)
		if err != nil || got != tc.want {
			t.Errorf("EncodeDest(%q) = %06b, %v; want %06b", tc.dest, got, err, tc.want)
		}
	}
	for _, bad := range []string{"X", "MM", "Am", "null"} {
		if _, err := EncodeDest(bad); !errors.Is(err, ErrMnemonic) {
			t.Errorf("EncodeDest(%q) error = %v; want ErrMnemonic", bad, err)
		}
	}
}

func TestEncodeCompMemoryFlag(t *testing.T) {
	for comp := range compTable {
		if !strings.ContainsRune(comp, 'A') {
			continue
		}
		a, err := EncodeComp(comp)
		if err != nil {
			t.Fatalf("EncodeComp(%q): %v", comp, err)
		}
		mForm := strings.ReplaceAll(comp, "A", "M")
		m, err := EncodeComp(mForm)
		if err != nil {
			t.Fatalf("EncodeComp(%q): %v", mForm, err)
		}
		if m != a|memoryFlag {
			t.Errorf("%s = %013b, %s = %013b; want them to differ only by bit 12", comp, a, mForm, m)
		}
	}
}

func TestEncodeUnknownMnemonics(t *testing.T) {
	tests := []string{
		"D=D+2",
		"D=A+M",
		"D=",
		"X=D",
		"D;JXX",
		"0;jmp",
		"D=M;JMP;JMP",
	}
	for _, line := range tests {
		if _, err := Encode(line); !errors.Is(err, ErrMnemonic) {
			t.Errorf("Encode(%q) error = %v; want ErrMnemonic", line, err)
		}
	}
}

func TestFieldRoundTrip(t *testing.T) {
	dests := []string{"", "M", "D", "DM", "A", "AM", "AD", "ADM"}
	jumps := append([]string{""}, JumpMnemonics()...)
	seen := make(map[uint16]string)

	for _, comp := range CompMnemonics() {
		bits, err := EncodeComp(comp)
		if err != nil {
			t.Fatalf("EncodeComp(%q): %v", comp, err)
		}
		if prev, dup := seen[bits]; dup {
			t.Errorf("%q and %q share comp pattern %09b", prev, comp, bits>>compShift)
		}
		seen[bits] = comp

		for _, dest := range dests {
			for _, jump := range jumps {
				line := comp
				if dest != "" {
					line = dest + "=" + line
				}
				if jump != "" || dest == "" {
					line += ";" + jump
				}
				word, err := Encode(line)
				if err != nil {
					t.Fatalf("Encode(%q): %v", line, err)
				}
				if !IsCompute(word) {
					t.Fatalf("Encode(%q) = %016b lacks the compute prefix", line, word)
				}
				gotComp, ok := DecodeComp(word)
				if !ok || gotComp != comp {
					t.Errorf("DecodeComp(Encode(%q)) = %q, %v", line, gotComp, ok)
				}
				if got := DecodeDest(word); got != dest {
					t.Errorf("DecodeDest(Encode(%q)) = %q; want %q", line, got, dest)
				}
				if got := DecodeJump(word); got != jump {
					t.Errorf("DecodeJump(Encode(%q)) = %q; want %q", line, got, jump)
				}
			}
		}
	}
	if len(seen) != 28 {
		t.Errorf("%d distinct computations; want 28", len(seen))
	}
}

func TestGenerateSkipsStrayLabel(t *testing.T) {
	p := mustParser(t, "@1", "(STRAY)", "D=A")
	words, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(words) != 2 || words[0] != 1 || words[1] != 0xEC10 {
		t.Errorf("Generate = %#v; want [0x1 0xec10]", words)
	}
}

func TestGenerateReportsLine(t *testing.T) {
	src := Source{Lines: []string{"@1", "D=Q"}, LineNos: []int{4, 9}}
	p, _ := NewParser(src)
	_, err := Generate(p)
	var lineErr *LineError
	if !errors.As(err, &lineErr) {
		t.Fatalf("Generate error = %v; want *LineError", err)
	}
	if lineErr.Line != 9 || !errors.Is(err, ErrMnemonic) {
		t.Errorf("error = %v; want line 9 wrapping ErrMnemonic", err)
	}
	if !strings.Contains(err.Error(), `"Q"`) {
		t.Errorf("error %q does not name the token", err)
	}
}
