package px

import (
	"fmt"
	"image/color"
)

// Color is an 8-bit per channel, non-premultiplied RGBA color.
// Its memory layout matches the RGBA8Unorm texture format, so a slice of
// colors can be uploaded to a texture as is.
type Color struct {
	R, G, B, A uint8
}

// Common colors.
var (
	Transparent = Color{}
	Black       = Color{A: 255}
	White       = Color{R: 255, G: 255, B: 255, A: 255}
)

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// RGBA returns a color with the given alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// IsOpaque reports whether the alpha channel is fully set.
func (c Color) IsOpaque() bool {
	return c.A == 255
}

// Floats returns the channels normalized to [0, 1].
func (c Color) Floats() (r, g, b, a float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255
}

// NRGBA converts c to the standard library's non-premultiplied color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// FromColor converts any color.Color to a Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// String formats the color as #RRGGBBAA.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Hex parses a color from a hex string.
// Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA", with an optional
// leading '#'. Invalid strings yield Transparent.
func Hex(hex string) Color {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var v [4]uint8
	v[3] = 255
	switch len(hex) {
	case 3, 4:
		for i := range len(hex) {
			n, ok := hexDigit(hex[i])
			if !ok {
				return Transparent
			}
			v[i] = n * 17
		}
	case 6, 8:
		for i := 0; i < len(hex); i += 2 {
			hi, ok1 := hexDigit(hex[i])
			lo, ok2 := hexDigit(hex[i+1])
			if !ok1 || !ok2 {
				return Transparent
			}
			v[i/2] = hi<<4 | lo
		}
	default:
		return Transparent
	}
	return Color{R: v[0], G: v[1], B: v[2], A: v[3]}
}

func hexDigit(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
