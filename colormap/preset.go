package colormap

import (
	"fmt"
	"sort"
	"strings"
)

var pico8 = []uint32{
	0x000000, 0x1d2b53, 0x7e2553, 0x008751, 0xab5236, 0x5f574f, 0xc2c3c7, 0xfff1e8,
	0xff004d, 0xffa300, 0xffec27, 0x00e436, 0x29adff, 0x83769c, 0xff77a8, 0xffccaa,
}

// http://www.thealmightyguru.com/Games/Hacking/Wiki/index.php/NES_Palette
var nes = []uint32{
	0x7c7c7c, 0x0000fc, 0x0000bc, 0x4428bc, 0x940084, 0xa80020, 0xa81000, 0x881400,
	0x503000, 0x007800, 0x006800, 0x005800, 0x004058, 0x000000, 0x000000, 0x000000,
	0xbcbcbc, 0x0078f8, 0x0058f8, 0x6844fc, 0xd800cc, 0xe40058, 0xf83800, 0xe45c10,
	0xac7c00, 0x00b800, 0x00a800, 0x00a844, 0x008888, 0x000000, 0x000000, 0x000000,
	0xf8f8f8, 0x3cbcfc, 0x6888fc, 0x9878f8, 0xf878f8, 0xf85898, 0xf87858, 0xfca044,
	0xf8b800, 0xb8f818, 0x58d854, 0x58f898, 0x00e8d8, 0x787878, 0x000000, 0x000000,
	0xfcfcfc, 0xa4e4fc, 0xb8b8f8, 0xd8b8f8, 0xf8b8f8, 0xf8a4c0, 0xf0d0b0, 0xfce0a8,
	0xf8d878, 0xd8f878, 0xb8f8b8, 0xb8f8d8, 0x00fcfc, 0xf8d8f8, 0x000000, 0x000000,
}

var cga = []uint32{
	0x000000, 0x0000aa, 0x00aa00, 0x00aaaa, 0xaa0000, 0xaa00aa, 0xaa5500, 0xaaaaaa,
	0x555555, 0x5555ff, 0x55ff55, 0x55ffff, 0xff5555, 0xff55ff, 0xffff55, 0xffffff,
}

var gameboy = []uint32{
	0x9bbc0f, 0x8bac0f, 0x306230, 0x0f380f,
}

func packed(values []uint32) []Color {
	colors := make([]Color, len(values))
	for i, v := range values {
		colors[i] = RGB(v)
	}
	return colors
}

// expand3 scales a 3-bit channel to 8 bits
func expand3(v uint8) uint8 {
	return v<<5 | v<<2 | v>>1
}

// megaDrive returns every color of the 9-bit BGR color space, indexed as
// 0bBBBGGGRRR
func megaDrive() []Color {
	colors := make([]Color, 0, 512)
	for b := uint8(0); b < 8; b++ {
		for g := uint8(0); g < 8; g++ {
			for r := uint8(0); r < 8; r++ {
				colors = append(colors, Color{expand3(r), expand3(g), expand3(b)})
			}
		}
	}
	return colors
}

var presets = map[string]func() []Color{
	"pico8":     func() []Color { return packed(pico8) },
	"nes":       func() []Color { return packed(nes) },
	"cga":       func() []Color { return packed(cga) },
	"gameboy":   func() []Color { return packed(gameboy) },
	"megadrive": megaDrive,
}

// Presets returns the names of the built-in color maps
func Presets() []string {
	names := make([]string, 0, len(presets))
	for k := range presets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

type sourceKind int

const (
	sourceNone sourceKind = iota
	sourcePreset
	sourceColors
)

// Source describes where a color map comes from, either a named preset or
// an explicit list of colors. It is resolved once into a ColorMap.
type Source struct {
	kind   sourceKind
	name   string
	colors []Color
}

// Preset returns a Source for the named built-in color map
func Preset(name string) Source {
	return Source{kind: sourcePreset, name: strings.ToLower(name)}
}

// Colors returns a Source for an explicit list of colors
func Colors(colors ...Color) Source {
	return Source{kind: sourceColors, colors: colors}
}

// Packed returns a Source for an explicit list of 0xRRGGBB values
func Packed(values ...uint32) Source {
	return Colors(packed(values)...)
}

// String returns a short description of the source
func (s Source) String() string {
	switch s.kind {
	case sourcePreset:
		return s.name
	case sourceColors:
		return fmt.Sprintf("%d colors", len(s.colors))
	default:
		return "none"
	}
}

// Resolve builds the color map described by s
func (s Source) Resolve() (*ColorMap, error) {
	switch s.kind {
	case sourcePreset:
		f, ok := presets[s.name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, s.name)
		}
		return New(f())
	case sourceColors:
		return New(s.colors)
	default:
		return nil, ErrEmpty
	}
}
