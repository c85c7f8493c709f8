/*
Package colormap implements the fixed table of system colors that every
palette indexes into.

A ColorMap is read-only once constructed. Setup code that needs to adjust
individual entries must explicitly unfreeze the map first and freeze it again
afterwards.
*/
package colormap

import (
	"errors"
	"image/color"
)

var (
	// ErrFrozen is returned when modifying a frozen color map
	ErrFrozen = errors.New("colormap: color map is frozen")
	// ErrRange is returned for an index outside of the color map
	ErrRange = errors.New("colormap: index out of range")
	// ErrEmpty is returned when constructing a color map with no colors
	ErrEmpty = errors.New("colormap: no colors")
	// ErrUnknownPreset is returned when resolving an unknown preset name
	ErrUnknownPreset = errors.New("colormap: unknown preset")
)

// Black is the fallback color used for lookup misses
var Black = Color{}

// Color is a 24-bit RGB color. It implements the color.Color interface and
// is always fully opaque.
type Color struct {
	R, G, B uint8
}

// RGB returns the color built from a packed 0xRRGGBB value
func RGB(v uint32) Color {
	return Color{uint8(v >> 16), uint8(v >> 8), uint8(v)}
}

// RGBA implements the color.Color interface
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// Uint32 returns the color packed as 0xRRGGBB
func (c Color) Uint32() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Model converts any color to the nearest 24-bit RGB color, ignoring alpha
var Model = color.ModelFunc(func(c color.Color) color.Color {
	if rgb, ok := c.(Color); ok {
		return rgb
	}
	r, g, b, _ := c.RGBA()
	return Color{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
})

// ColorMap is an ordered sequence of system colors
type ColorMap struct {
	colors []Color
	frozen bool
}

// New returns a frozen color map containing a copy of colors
func New(colors []Color) (*ColorMap, error) {
	if len(colors) == 0 {
		return nil, ErrEmpty
	}
	return &ColorMap{
		colors: append(colors[:0:0], colors...),
		frozen: true,
	}, nil
}

// Len returns the number of colors in the map
func (m *ColorMap) Len() int {
	return len(m.colors)
}

// At returns the color at index i. Indices outside of the map return black
// and false.
func (m *ColorMap) At(i int) (Color, bool) {
	if i < 0 || i >= len(m.colors) {
		return Black, false
	}
	return m.colors[i], true
}

// Frozen reports whether the map currently rejects modification
func (m *ColorMap) Frozen() bool {
	return m.frozen
}

// Unfreeze allows Set to modify the map. It is only meant to be used during
// initial setup.
func (m *ColorMap) Unfreeze() {
	m.frozen = false
}

// Freeze makes the map read-only again
func (m *ColorMap) Freeze() {
	m.frozen = true
}

// Set replaces the color at index i
func (m *ColorMap) Set(i int, c Color) error {
	if m.frozen {
		return ErrFrozen
	}
	if i < 0 || i >= len(m.colors) {
		return ErrRange
	}
	m.colors[i] = c
	return nil
}

// Index returns the first index holding exactly c
func (m *ColorMap) Index(c Color) (int, bool) {
	for i, v := range m.colors {
		if v == c {
			return i, true
		}
	}
	return 0, false
}

// Copied from color.sqDiff
func sqDiff(x, y uint32) uint32 {
	d := x - y
	return (d * d) >> 2
}

// Nearest returns the index of the color closest to c in Euclidean RGB
// space. Ties go to the lowest index.
func (m *ColorMap) Nearest(c color.Color) int {
	cr, cg, cb, _ := c.RGBA()
	ret, bestSum := 0, uint32(1<<32-1)
	for i, v := range m.colors {
		vr, vg, vb, _ := v.RGBA()
		sum := sqDiff(cr, vr) + sqDiff(cg, vg) + sqDiff(cb, vb)
		if sum < bestSum {
			if sum == 0 {
				return i
			}
			ret, bestSum = i, sum
		}
	}
	return ret
}

// Palette returns the map as a color.Palette
func (m *ColorMap) Palette() color.Palette {
	p := make(color.Palette, len(m.colors))
	for i, c := range m.colors {
		p[i] = c
	}
	return p
}
