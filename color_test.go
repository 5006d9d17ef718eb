package px

import (
	"image/color"
	"testing"
)

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#fff", White},
		{"000", Black},
		{"f008", Color{R: 255, A: 136}},
		{"#102030", RGB(0x10, 0x20, 0x30)},
		{"10203040", Color{R: 0x10, G: 0x20, B: 0x30, A: 0x40}},
		{"", Transparent},
		{"12345", Transparent},
		{"zzzzzz", Transparent},
	}
	for _, tt := range tests {
		if got := Hex(tt.in); got != tt.want {
			t.Errorf("Hex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestColorConversions(t *testing.T) {
	c := RGBA(10, 20, 30, 40)
	if got := FromColor(c.NRGBA()); got != c {
		t.Errorf("FromColor(NRGBA()) = %v, want %v", got, c)
	}
	if got := FromColor(color.Black); got != Black {
		t.Errorf("FromColor(color.Black) = %v, want %v", got, Black)
	}
	if got := c.String(); got != "#0a141e28" {
		t.Errorf("String() = %q", got)
	}
	if Transparent.IsOpaque() || !White.IsOpaque() {
		t.Error("IsOpaque mismatch")
	}
	r, _, _, a := White.Floats()
	if r != 1 || a != 1 {
		t.Errorf("Floats() = %v, %v", r, a)
	}
}
