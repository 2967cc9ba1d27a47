package hackfile

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, []uint16{0, 0x0010, 0xEA87}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "0000000000000000\n0000000000010000\n1110101010000111\n"
	if buf.String() != want {
		t.Errorf("Write = %q; want %q", buf.String(), want)
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	words := []uint16{0, 1, 0x7FFF, 0x8000, 0xFFFF, 0xFC88}
	var buf bytes.Buffer
	if err := Write(&buf, words); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(got, words) {
		t.Errorf("Read(Write(words)) = %v; want %v", got, words)
	}
}

func TestRead(t *testing.T) {
	tests := []struct {
		input   string
		want    []uint16
		wantErr string
	}{
		{"0000000000000010\r\n\n1110110000010000\n", []uint16{2, 0xEC10}, ""},
		{"", nil, ""},
		// Invalid cases
		{"000000000000001\n", nil, "line 1"},
		{"0000000000000000\n00000000000000002\n", nil, "line 2"},
		{"000000000000000x\n", nil, "invalid character"},
	}
	for _, tc := range tests {
		got, err := Read(strings.NewReader(tc.input))
		if tc.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Read(%q) error = %v; want it to mention %q", tc.input, err, tc.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("Read(%q) unexpected error: %v", tc.input, err)
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Read(%q) = %v; want %v", tc.input, got, tc.want)
		}
	}
}
