package mesh

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a linear RGBA color with components in [0, 1]
type Color struct {
	R, G, B, A float64
}

// RGB creates an opaque color
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// Gray is used when nothing better is known about a surface
var Gray = RGB(0.5, 0.5, 0.5)

// IsNearWhite reports whether all color channels are above 0.9
func (c Color) IsNearWhite() bool {
	return c.R > 0.9 && c.G > 0.9 && c.B > 0.9
}

// Hex formats the color as #rrggbb
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

// RGBA8 returns the color as 8-bit channels
func (c Color) RGBA8() (r, g, b, a uint8) {
	return channel(c.R), channel(c.G), channel(c.B), channel(c.A)
}

func channel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// ParseHexColor parses #rgb, #rrggbb or #rrggbbaa (the leading # is optional)
func ParseHexColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid color %q: expected #rgb, #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}

// Material is an opaque rendering material reference
type Material interface {
	MaterialName() string
}

// BaseColorer is implemented by materials that expose a queryable base color
type BaseColorer interface {
	BaseColor() (Color, bool)
}

// BasicMaterial is a named material with a flat base color
type BasicMaterial struct {
	Name  string
	Color Color
}

// MaterialName returns the material name
func (m BasicMaterial) MaterialName() string { return m.Name }

// BaseColor returns the flat color of the material
func (m BasicMaterial) BaseColor() (Color, bool) { return m.Color, true }

// CapMaterial is the synthesized material for cut caps: unlit, double sided, untextured
type CapMaterial struct {
	Color       Color
	Unlit       bool
	DoubleSided bool
}

// NewCapMaterial creates the flat cap material for a color
func NewCapMaterial(c Color) CapMaterial {
	return CapMaterial{Color: c, Unlit: true, DoubleSided: true}
}

// MaterialName returns a name derived from the cap color
func (m CapMaterial) MaterialName() string { return "cap " + m.Color.Hex() }

// BaseColor returns the cap color
func (m CapMaterial) BaseColor() (Color, bool) { return m.Color, true }

// White is the neutral tint of textured materials
var White = RGB(1, 1, 1)

// TexturedMaterial carries an image texture modulated by a tint. The tint is
// the only color known without sampling the texture.
type TexturedMaterial struct {
	Name    string
	Texture string
	Tint    Color
}

// MaterialName returns the material name
func (m TexturedMaterial) MaterialName() string { return m.Name }

// BaseColor returns the tint
func (m TexturedMaterial) BaseColor() (Color, bool) { return m.Tint, true }
