package attribute

import (
	"bytes"
	"errors"
	"image"
	"log"
	"testing"

	"github.com/bodgit/retro/colormap"
	"github.com/bodgit/retro/grid"
	"github.com/bodgit/retro/palette"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pico8(t *testing.T) *colormap.ColorMap {
	m, err := colormap.Preset("pico8").Resolve()
	require.NoError(t, err)
	return m
}

func newPalette(t *testing.T, entries []int, pieceSize int) *palette.Palette {
	p, err := palette.New(pico8(t), entries, pieceSize)
	require.NoError(t, err)
	return p
}

func fillTile(tile *grid.Plane, vals ...uint8) {
	for y := 0; y < tile.Height; y++ {
		for x := 0; x < tile.Width; x++ {
			tile.Set(x, y, vals[(x+y)%len(vals)])
		}
	}
}

func TestNormalizeTileset(t *testing.T) {
	pal := newPalette(t, []int{
		0, 1, 2, 3, // 0
		0, 8, 12, 7, // 1
		0, 8, 12, 10, // 2
	}, 4)

	ts, err := grid.NewTileset(3, 8, 8)
	require.NoError(t, err)
	tile0, _ := ts.Tile(0)
	fillTile(tile0, 0, 5, 6) // black from piece 0, red and blue from piece 1
	tile1, _ := ts.Tile(1)
	fillTile(tile1, 8, 9, 11) // only piece 2 holds yellow
	tile2, _ := ts.Tile(2)
	fillTile(tile2, 4) // black fits everywhere

	b := NewBuilder(nil, Options{})
	report, err := b.NormalizeTileset(ts, pal)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 0}, report.Pieces)
	assert.Empty(t, report.Skipped)

	want, _ := grid.NewTileset(3, 8, 8)
	w0, _ := want.Tile(0)
	fillTile(w0, 4, 5, 6)
	w1, _ := want.Tile(1)
	fillTile(w1, 8, 9, 11)
	w2, _ := want.Tile(2)
	fillTile(w2, 0)

	for id := 0; id < 3; id++ {
		got, _ := ts.Tile(id)
		exp, _ := want.Tile(id)
		if diff := deep.Equal(got, exp); diff != nil {
			t.Errorf("tile %d: %v\n%s", id, diff, spew.Sdump(report))
		}
	}
	// 21 of the 64 pixels of tile 0 were black from slot 0, all of tile 2
	assert.Equal(t, 21+64, report.Rewritten)

	// A second pass changes nothing
	again, err := b.NormalizeTileset(ts, pal)
	require.NoError(t, err)
	assert.Equal(t, report.Pieces, again.Pieces)
	assert.Zero(t, again.Rewritten)
}

func TestNormalizeTilesetUnsatisfiable(t *testing.T) {
	pal, err := palette.Identity(pico8(t), 4)
	require.NoError(t, err)

	ts, err := grid.NewTileset(2, 8, 8)
	require.NoError(t, err)
	// 0x000000, 0x7e2553, 0xab5236, 0xff004d, 0xff77a8
	bad, _ := ts.Tile(0)
	fillTile(bad, 0, 2, 4, 8, 14)
	good, _ := ts.Tile(1)
	fillTile(good, 12, 13)

	before := bad.Clone()

	buf := new(bytes.Buffer)
	b := NewBuilder(log.New(buf, "", 0), Options{})
	report, err := b.NormalizeTileset(ts, pal)
	require.NoError(t, err)

	assert.Equal(t, []int{0}, report.Skipped)
	assert.Equal(t, []int{palette.NoPiece, 3}, report.Pieces)
	assert.True(t, bad.Equal(before))
	assert.Contains(t, buf.String(), "tile 0")
}

func TestNormalizeTilesetAliased(t *testing.T) {
	pal := newPalette(t, []int{0, 8, 0, 12}, 2)

	src := grid.New(4, 2)
	copy(src.Pix, []uint8{
		0, 1, 0, 3,
		1, 0, 3, 0,
	})
	ts, err := grid.SliceTileset(src, 2, 2)
	require.NoError(t, err)

	report, err := NewBuilder(nil, Options{}).NormalizeTileset(ts, pal)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, report.Pieces)

	// The parent plane sees the rewritten tiles
	assert.Equal(t, []uint8{
		0, 1, 2, 3,
		1, 0, 3, 2,
	}, src.Pix)
}

// threeCells returns a 24x8 plane split into three 8x8 attribute cells
func threeCells(t *testing.T) (*grid.Plane, *grid.Attributes) {
	g := grid.New(24, 8)
	attrs, err := grid.NewAttributes(24, 8, 8, 8)
	require.NoError(t, err)

	fillTile(g.Sub(attrs.Block(0, 0)), 5, 6, 0)
	fillTile(g.Sub(attrs.Block(1, 0)), 1, 3, 0)
	attrs.Put(1, 0, 1)
	fillTile(g.Sub(attrs.Block(2, 0)), 8, 3, 7)
	return g, attrs
}

func gridPalette(t *testing.T) *palette.Palette {
	return newPalette(t, []int{
		0, 7, 8, 12, // black, white, red, blue
		0, 8, 12, 11, // black, red, blue, green
		1, 2, 3, 4, // navy, plum, dark green, brown
	}, 4)
}

func TestNormalizeGrid(t *testing.T) {
	pal := gridPalette(t)
	g, attrs := threeCells(t)

	buf := new(bytes.Buffer)
	b := NewBuilder(log.New(buf, "", 0), Options{})
	report, err := b.NormalizeGrid(g, attrs, pal)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 1}, report.Pieces)
	assert.Equal(t, []image.Point{{2, 0}}, report.Unsatisfied)
	assert.Contains(t, buf.String(), "Cell (2, 0)")

	assert.Equal(t, uint8(0), attrs.Piece(0, 0))
	assert.Equal(t, uint8(1), attrs.Piece(1, 0))
	assert.Equal(t, uint8(1), attrs.Piece(2, 0))

	want := grid.New(24, 8)
	fillTile(want.Sub(attrs.Block(0, 0)), 2, 3, 0)
	fillTile(want.Sub(attrs.Block(1, 0)), 1, 3, 0)
	// Navy is lost to black, blue moves into piece 1
	fillTile(want.Sub(attrs.Block(2, 0)), 0, 2, 3)
	if diff := deep.Equal(g, want); diff != nil {
		t.Error(diff)
	}
}

func TestNormalizeGridIdempotent(t *testing.T) {
	pal := gridPalette(t)
	g, attrs := threeCells(t)
	b := NewBuilder(nil, Options{})

	_, err := b.NormalizeGrid(g, attrs, pal)
	require.NoError(t, err)
	first, firstAttrs := g.Clone(), attrs.Clone()

	report, err := b.NormalizeGrid(g, attrs, pal)
	require.NoError(t, err)

	if diff := deep.Equal(g, first); diff != nil {
		t.Errorf("plane changed: %v", diff)
	}
	if diff := deep.Equal(attrs.Plane, firstAttrs); diff != nil {
		t.Errorf("attributes changed: %v", diff)
	}
	assert.Zero(t, report.Rewritten)
	assert.Empty(t, report.Unsatisfied)
}

func TestNormalizeGridColors(t *testing.T) {
	pal := gridPalette(t)
	g, attrs := threeCells(t)

	// Capture the colors of the satisfiable cells beforehand
	colorAt := func(x, y int, piece int) colormap.Color {
		v := int(g.Get(x, y))
		if v < pal.PieceSize() {
			v = pal.Realize(v, piece)
		}
		c, _ := pal.Lookup(v)
		return c
	}
	before := make(map[image.Point]colormap.Color)
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			before[image.Pt(x, y)] = colorAt(x, y, int(attrs.PieceAt(x, y)))
		}
	}

	_, err := NewBuilder(nil, Options{}).NormalizeGrid(g, attrs, pal)
	require.NoError(t, err)

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			v := int(g.Get(x, y))
			piece := int(attrs.PieceAt(x, y))
			require.True(t, v >= 0 && v < pal.PieceSize())
			assert.Equal(t, v, pal.Realize(v, piece)%pal.PieceSize())
			if c, ok := before[image.Pt(x, y)]; ok {
				got, _ := pal.Lookup(pal.Realize(v, piece))
				assert.Equal(t, c, got, "(%d, %d)", x, y)
			}
		}
	}
}

func TestNormalizeGridPriorOutOfRange(t *testing.T) {
	pal := gridPalette(t)
	g := grid.New(8, 8)
	fillTile(g, 9, 10) // plum and dark green, absolute
	attrs, err := grid.NewAttributes(8, 8, 8, 8)
	require.NoError(t, err)
	attrs.Put(0, 0, 7)

	report, err := NewBuilder(nil, Options{}).NormalizeGrid(g, attrs, pal)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, report.Pieces)
	assert.Equal(t, uint8(1), g.Get(0, 0))
	assert.Equal(t, uint8(2), g.Get(1, 0))
}

func TestNormalizeErrors(t *testing.T) {
	pal := gridPalette(t)
	b := NewBuilder(nil, Options{})

	_, err := b.NormalizeTileset(nil, pal)
	assert.Equal(t, ErrNilInput, err)

	ts, _ := grid.NewTileset(1, 8, 8)
	_, err = b.NormalizeTileset(ts, nil)
	assert.Equal(t, ErrNilInput, err)

	attrs, _ := grid.NewAttributes(8, 8, 8, 8)
	_, err = b.NormalizeGrid(grid.New(16, 8), attrs, pal)
	assert.True(t, errors.Is(err, ErrAttributeSize))

	big, err := palette.Identity(mustMegaDrive(t), 16)
	require.NoError(t, err)
	_, err = b.NormalizeTileset(ts, big)
	assert.Equal(t, ErrPaletteSize, err)

	none := palette.RankerFunc(func([]colormap.Color, *palette.Palette) []int { return nil })
	tile, _ := ts.Tile(0)
	fillTile(tile, 8, 9, 10, 1, 2)
	_, err = NewBuilder(nil, Options{Ranker: none}).NormalizeTileset(ts, pal)
	assert.True(t, errors.Is(err, palette.ErrNoPieces))
}

func mustMegaDrive(t *testing.T) *colormap.ColorMap {
	m, err := colormap.Preset("megadrive").Resolve()
	require.NoError(t, err)
	return m
}
