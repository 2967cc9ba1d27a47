package utils

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"hackasm/pkg/asm"
)

func TestDefaultOutputPath(t *testing.T) {
	tests := map[string]string{
		"Max.asm":            "Max.hack",
		"dir/Pong.asm":       "dir/Pong.hack",
		"noext":              "noext.hack",
		"a.b/prog.s":         "a.b/prog.hack",
		"already.hack":       "already.hack",
		"../rel/Rect.v1.asm": "../rel/Rect.v1.hack",
	}
	for in, want := range tests {
		if got := DefaultOutputPath(in); got != want {
			t.Errorf("DefaultOutputPath(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestIsHackFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"Max.hack", true},
		{"MAX.HACK", true},
		{"Max.asm", false},
		{"hack", false},
	}
	for _, tc := range tests {
		if got := IsHackFile(tc.path); got != tc.want {
			t.Errorf("IsHackFile(%q) = %v; want %v", tc.path, got, tc.want)
		}
	}
}

func TestGetPathInfo(t *testing.T) {
	full, dir, err := GetPathInfo("x/../prog.asm")
	if err != nil {
		t.Fatalf("GetPathInfo: %v", err)
	}
	if !filepath.IsAbs(full) || filepath.Base(full) != "prog.asm" {
		t.Errorf("fullPath = %q", full)
	}
	if filepath.Dir(full) != dir {
		t.Errorf("parentDir = %q; want %q", dir, filepath.Dir(full))
	}
}

func TestLoadProgram(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "p.asm")
	if err := os.WriteFile(src, []byte("@i\nM=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	words, err := LoadProgram(src)
	if err != nil || len(words) != 2 || words[0] != 16 {
		t.Errorf("LoadProgram(asm) = %v, %v", words, err)
	}

	bin := filepath.Join(dir, "p.hack")
	if err := os.WriteFile(bin, []byte("0000000000010000\n1110111111001000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	fromHack, err := LoadProgram(bin)
	if err != nil || !reflect.DeepEqual(fromHack, words) {
		t.Errorf("LoadProgram(hack) = %v, %v; want %v", fromHack, err, words)
	}

	bad := filepath.Join(dir, "bad.asm")
	os.WriteFile(bad, []byte("D=Q\n"), 0o644)
	if _, err := LoadProgram(bad); !errors.Is(err, asm.ErrMnemonic) {
		t.Errorf("LoadProgram(bad) error = %v", err)
	}
}
