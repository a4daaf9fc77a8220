package slicer

import (
	"strings"

	"github.com/philipparndt/goslice/pkg/mesh"
)

type paletteEntry struct {
	keyword string
	color   mesh.Color
}

// flesh colors by fruit name; order matters, "greenapple" must match before "apple"
var fleshPalette = []paletteEntry{
	{"banana", mesh.RGB(1.0, 0.95, 0.8)},
	{"coconut", mesh.RGB(0.98, 0.92, 0.84)},
	{"greenapple", mesh.RGB(0.8, 0.95, 0.7)},
	{"orange", mesh.RGB(1.0, 0.65, 0.3)},
	{"pear", mesh.RGB(0.98, 0.95, 0.8)},
	{"redapple", mesh.RGB(0.95, 0.8, 0.8)},
	{"tomato", mesh.RGB(0.95, 0.7, 0.6)},
	{"watermelon", mesh.RGB(0.95, 0.6, 0.6)},
	{"apple", mesh.RGB(0.9, 0.8, 0.8)},
}

var (
	unnamedFleshColor = mesh.RGB(0.9, 0.6, 0.3)
	defaultFleshColor = mesh.RGB(0.9, 0.7, 0.5)
)

// FleshColorByName guesses the interior color of a fruit from its object name
func FleshColorByName(name string) mesh.Color {
	if name == "" {
		return unnamedFleshColor
	}
	lower := strings.ToLower(name)
	for _, e := range fleshPalette {
		if strings.Contains(lower, e.keyword) {
			return e.color
		}
	}
	return defaultFleshColor
}

// CapColor resolves the color of the cut surface. An explicit override wins,
// then the material base color unless it is near white, then the name palette.
// Without a material the cap is gray.
func CapColor(override *mesh.Color, material mesh.Material, name string) mesh.Color {
	if override != nil {
		return *override
	}
	if material == nil {
		return mesh.Gray
	}
	if bc, ok := material.(mesh.BaseColorer); ok {
		if c, ok := bc.BaseColor(); ok && !c.IsNearWhite() {
			return c
		}
	}
	return FleshColorByName(name)
}
