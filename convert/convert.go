/*
Package convert reduces decoded images to indexed planes and palettes.

Pack follows the approach of fitting a truecolor picture into a tile based
display: colors are snapped to the color map, each tile is reduced to no
more than one piece worth of colors by merging its closest pair, and the
per-tile color sets are packed into pieces. If the sets do not pack, the
image is quantized to fewer colors and the process repeats.
*/
package convert

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sort"

	"github.com/bodgit/retro/attribute"
	"github.com/bodgit/retro/colormap"
	"github.com/bodgit/retro/grid"
	"github.com/bodgit/retro/palette"
	"github.com/ericpauley/go-quantize/quantize"
)

var (
	// ErrImageSize is returned when an image is not a whole number of tiles
	ErrImageSize = errors.New("convert: image is not a whole number of tiles")
	// ErrOptions is returned for invalid packing options
	ErrOptions = errors.New("convert: invalid options")
	// ErrPack is returned when no reduction of the image packs
	ErrPack = errors.New("convert: unable to pack colors")
)

// Options configure Pack. Zero values are replaced with 8x8 tiles, 16 color
// pieces and 4 pieces.
type Options struct {
	TileWidth  int
	TileHeight int
	PieceSize  int
	MaxPieces  int
}

func (o Options) withDefaults() Options {
	if o.TileWidth == 0 {
		o.TileWidth = 8
	}
	if o.TileHeight == 0 {
		o.TileHeight = 8
	}
	if o.PieceSize == 0 {
		o.PieceSize = 16
	}
	if o.MaxPieces == 0 {
		o.MaxPieces = 4
	}
	return o
}

// Indexed returns a plane holding the nearest color map index of each pixel
// of m. Indices above 255 are clamped, so it is only useful with color maps
// of no more than 256 colors.
func Indexed(m image.Image, cmap *colormap.ColorMap) *grid.Plane {
	b := m.Bounds()
	p := grid.New(b.Dx(), b.Dy())
	cache := make(map[color.Color]uint8)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := p.Row(y - b.Min.Y)
		for x := b.Min.X; x < b.Max.X; x++ {
			c := m.At(x, y)
			v, ok := cache[c]
			if !ok {
				i := cmap.Nearest(c)
				if i > 0xff {
					i = 0xff
				}
				v = uint8(i)
				cache[c] = v
			}
			row[x-b.Min.X] = v
		}
	}
	return p
}

// Quantize reduces m to at most n colors using median cut
func Quantize(m image.Image, n int) *image.Paletted {
	b := m.Bounds()
	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, n), m))
	draw.Draw(pm, b, m, b.Min, draw.Src)
	return pm
}

// snap returns the nearest color map index of each pixel of m in row-major
// order
func snap(m image.Image, cmap *colormap.ColorMap) []int {
	b := m.Bounds()
	out := make([]int, 0, b.Dx()*b.Dy())
	cache := make(map[color.Color]int)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := m.At(x, y)
			i, ok := cache[c]
			if !ok {
				i = cmap.Nearest(c)
				cache[c] = i
			}
			out = append(out, i)
		}
	}
	return out
}

func countColors(pix []int) map[int]int {
	h := make(map[int]int)
	for _, i := range pix {
		h[i]++
	}
	return h
}

type layout struct {
	width, height int
	tw, th        int
}

func (l layout) tiles() int {
	return (l.width / l.tw) * (l.height / l.th)
}

// each calls f with the offset of every pixel of tile t
func (l layout) each(t int, f func(int)) {
	tx, ty := t%(l.width/l.tw), t/(l.width/l.tw)
	for y := ty * l.th; y < (ty+1)*l.th; y++ {
		for x := tx * l.tw; x < (tx+1)*l.tw; x++ {
			f(y*l.width + x)
		}
	}
}

// uniqueColors returns the distinct color map indices used by tile t in
// ascending order
func (l layout) uniqueColors(pix []int, t int) []int {
	seen := make(map[int]struct{})
	var u []int
	l.each(t, func(o int) {
		if _, ok := seen[pix[o]]; !ok {
			seen[pix[o]] = struct{}{}
			u = append(u, pix[o])
		}
	})
	sort.Ints(u)
	return u
}

func sqDiff(x, y uint8) int {
	d := int(x) - int(y)
	return d * d
}

// Return the two closest colors of a set
func closestColors(set []int, cmap *colormap.ColorMap) (int, int) {
	var rc1, rc2 int
	best := -1
	for i, c1 := range set {
		a, _ := cmap.At(c1)
		for _, c2 := range set[i+1:] {
			b, _ := cmap.At(c2)
			sum := sqDiff(a.R, b.R) + sqDiff(a.G, b.G) + sqDiff(a.B, b.B)
			if best < 0 || sum < best {
				best, rc1, rc2 = sum, c1, c2
			}
		}
	}
	return rc1, rc2
}

// reduceTiles merges colors until no tile uses more than pieceSize of them.
// The globally less frequent color of the closest pair is replaced
// everywhere in the image.
func (l layout) reduceTiles(pix []int, cmap *colormap.ColorMap, pieceSize int) [][]int {
	global := countColors(pix)
	for t := 0; t < l.tiles(); t++ {
		set := l.uniqueColors(pix, t)
		for len(set) > pieceSize {
			c1, c2 := closestColors(set, cmap)
			from, to := c1, c2
			if global[c1] > global[c2] {
				from, to = c2, c1
			}
			for o, i := range pix {
				if i == from {
					pix[o] = to
				}
			}
			global[to] += global[from]
			delete(global, from)
			set = l.uniqueColors(pix, t)
		}
	}

	// Merging in a later tile can only shrink an earlier one
	sets := make([][]int, l.tiles())
	for t := range sets {
		sets[t] = l.uniqueColors(pix, t)
	}
	return sets
}

// Pack converts m into a plane of absolute palette slots and the palette
// they index. Every tile of the plane uses the colors of a single piece,
// so the result normalizes without loss.
func Pack(m image.Image, cmap *colormap.ColorMap, opts Options) (*grid.Plane, *palette.Palette, error) {
	opts = opts.withDefaults()
	if opts.TileWidth < 0 || opts.TileHeight < 0 || opts.PieceSize < 0 || opts.MaxPieces < 0 || opts.PieceSize*opts.MaxPieces > 256 {
		return nil, nil, ErrOptions
	}

	b := m.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || b.Dx()%opts.TileWidth != 0 || b.Dy()%opts.TileHeight != 0 {
		return nil, nil, ErrImageSize
	}
	l := layout{b.Dx(), b.Dy(), opts.TileWidth, opts.TileHeight}

	// Try the image as it is first
	pix := snap(m, cmap)
	max := len(countColors(pix))
	if plane, pal, ok := pack(l, pix, cmap, opts); ok {
		return plane, pal, nil
	}

	if limit := opts.PieceSize * opts.MaxPieces; max > limit {
		max = limit
	} else {
		max--
	}

	// Keep reducing the colors until the sets can be packed
	for i := max; i >= opts.PieceSize; i-- {
		if plane, pal, ok := pack(l, snap(Quantize(m, i), cmap), cmap, opts); ok {
			return plane, pal, nil
		}
	}

	return nil, nil, ErrPack
}

func pack(l layout, pix []int, cmap *colormap.ColorMap, opts Options) (*grid.Plane, *palette.Palette, bool) {
	sets := l.reduceTiles(pix, cmap, opts.PieceSize)

	colors := make([][]colormap.Color, len(sets))
	for t, set := range sets {
		for _, i := range set {
			c, _ := cmap.At(i)
			colors[t] = append(colors[t], c)
		}
	}

	pieces, table, ok := attribute.Pack(colors, opts.PieceSize, opts.MaxPieces)
	if !ok {
		return nil, nil, false
	}

	// Pad each piece with black
	black := cmap.Nearest(colormap.Black)
	entries := make([]int, 0, len(pieces)*opts.PieceSize)
	offsets := make([]map[colormap.Color]int, len(pieces))
	for p, piece := range pieces {
		offsets[p] = make(map[colormap.Color]int, len(piece))
		for k := 0; k < opts.PieceSize; k++ {
			if k >= len(piece) {
				entries = append(entries, black)
				continue
			}
			i, _ := cmap.Index(piece[k])
			entries = append(entries, i)
			offsets[p][piece[k]] = k
		}
	}

	pal, err := palette.New(cmap, entries, opts.PieceSize)
	if err != nil {
		return nil, nil, false
	}

	plane := grid.New(l.width, l.height)
	for t := 0; t < l.tiles(); t++ {
		p := table[t]
		l.each(t, func(o int) {
			c, _ := cmap.At(pix[o])
			plane.Pix[o] = uint8(p*opts.PieceSize + offsets[p][c])
		})
	}

	return plane, pal, true
}
