/*
Package attribute rewrites indexed pixel data so that every tile or
attribute cell can be colored by exactly one palette piece.

Tile sets are normalized tile by tile with no memory of earlier runs; a tile
whose colors do not all fit in a single piece is logged and left untouched.
Planes paired with an attribute grid are normalized cell by cell, keeping
each cell's current piece whenever it still fits, and storing only the
offset within the piece in each pixel so that the piece can be chosen again
at render time.
*/
package attribute

import (
	"errors"
	"fmt"
	"image"
	"io/ioutil"
	"log"
	"sort"

	"github.com/bodgit/retro/colormap"
	"github.com/bodgit/retro/grid"
	"github.com/bodgit/retro/palette"
)

// maxSlots is the number of palette slots a pixel value can address
const maxSlots = 256

var (
	// ErrNilInput is returned when a required argument is nil
	ErrNilInput = errors.New("attribute: nil input")
	// ErrAttributeSize is returned when an attribute grid does not cover
	// every pixel of the plane it annotates
	ErrAttributeSize = errors.New("attribute: attribute grid does not cover plane")
	// ErrPaletteSize is returned for a palette with more slots than a pixel
	// can address
	ErrPaletteSize = errors.New("attribute: palette has more than 256 slots")
)

// Options configure a Builder
type Options struct {
	// Ranker picks a piece when none holds every needed color. Defaults to
	// palette.CoverageRanker.
	Ranker palette.Ranker
}

// Report describes the outcome of a normalization pass
type Report struct {
	// Pieces holds the chosen piece per tile, or per cell in row-major
	// order. Skipped tiles hold palette.NoPiece.
	Pieces []int
	// Skipped lists the ids of tiles left untouched
	Skipped []int
	// Unsatisfied lists the cells whose piece came from the ranking
	// fallback and so lost colors
	Unsatisfied []image.Point
	// Rewritten counts the pixels whose value changed
	Rewritten int
}

// Builder normalizes tile sets and attribute mapped planes against a
// palette
type Builder struct {
	logger *log.Logger
	ranker palette.Ranker
}

// NewBuilder returns a Builder logging to logger, which may be nil
func NewBuilder(logger *log.Logger, opts Options) *Builder {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	return &Builder{
		logger: logger,
		ranker: opts.Ranker,
	}
}

func checkPalette(pal *palette.Palette) error {
	if pal == nil {
		return ErrNilInput
	}
	if pal.Len() > maxSlots {
		return ErrPaletteSize
	}
	return nil
}

// colorNeeds returns the distinct colors of the given palette slots,
// ordered by color map index. Slots missing from the palette need black.
func colorNeeds(pal *palette.Palette, slots map[int]struct{}) []colormap.Color {
	type need struct {
		entry int
		color colormap.Color
	}
	needs := make([]need, 0, len(slots))
	for s := range slots {
		e, ok := pal.Entry(s)
		if !ok {
			e = -1
		}
		c, _ := pal.Lookup(s)
		needs = append(needs, need{e, c})
	}
	sort.Slice(needs, func(i, j int) bool {
		if needs[i].entry == needs[j].entry {
			return needs[i].color.Uint32() < needs[j].color.Uint32()
		}
		return needs[i].entry < needs[j].entry
	})

	seen := make(map[colormap.Color]struct{}, len(needs))
	colors := make([]colormap.Color, 0, len(needs))
	for _, n := range needs {
		if _, ok := seen[n.color]; ok {
			continue
		}
		seen[n.color] = struct{}{}
		colors = append(colors, n.color)
	}
	return colors
}

// relocate returns the offset within piece used to draw slot. A slot
// already in piece keeps its offset.
func relocate(r *palette.Resolver, slot, piece int) (int, bool) {
	size := r.Palette().PieceSize()
	if slot >= piece*size && slot < (piece+1)*size {
		return slot - piece*size, true
	}
	return r.RelocateIndex(slot, piece)
}

// NormalizeTileset rewrites every tile in ts so that all of its pixels are
// slots of a single piece of pal. Tiles whose colors do not fit in any piece
// are logged, reported as skipped and left unmodified.
func (b *Builder) NormalizeTileset(ts *grid.Tileset, pal *palette.Palette) (*Report, error) {
	if ts == nil {
		return nil, ErrNilInput
	}
	if err := checkPalette(pal); err != nil {
		return nil, err
	}

	r := palette.NewResolver(pal, b.ranker)
	report := &Report{
		Pieces: make([]int, ts.Len()),
	}

	for id := 0; id < ts.Len(); id++ {
		tile, _ := ts.Tile(id)

		slots := make(map[int]struct{})
		for y := 0; y < tile.Height; y++ {
			for _, v := range tile.Row(y) {
				slots[int(v)] = struct{}{}
			}
		}
		needs := colorNeeds(pal, slots)

		choice, err := r.Resolve(needs, palette.NoPiece)
		if err != nil {
			return report, fmt.Errorf("tile %d: %w", id, err)
		}
		if !choice.Exact {
			b.logger.Printf("Skipping tile %d, no piece holds all of its %d colors\n", id, len(needs))
			report.Pieces[id] = palette.NoPiece
			report.Skipped = append(report.Skipped, id)
			continue
		}
		report.Pieces[id] = choice.Piece

		base := choice.Piece * pal.PieceSize()
		for y := 0; y < tile.Height; y++ {
			row := tile.Row(y)
			for x, v := range row {
				off, ok := relocate(r, int(v), choice.Piece)
				if !ok {
					// Can't happen for an exact choice
					return report, fmt.Errorf("tile %d: slot %d not found in piece %d", id, v, choice.Piece)
				}
				if n := uint8(base + off); n != v {
					row[x] = n
					report.Rewritten++
				}
			}
		}
	}

	return report, nil
}

// NormalizeGrid chooses a piece for every cell of attrs and rewrites the
// pixels of g it governs to offsets within that piece. Pixel values below
// the piece size are read relative to the cell's current piece, larger
// values as absolute palette slots.
func (b *Builder) NormalizeGrid(g *grid.Plane, attrs *grid.Attributes, pal *palette.Palette) (*Report, error) {
	if g == nil || attrs == nil {
		return nil, ErrNilInput
	}
	if err := checkPalette(pal); err != nil {
		return nil, err
	}
	if !attrs.Covers(g.Width, g.Height) {
		return nil, fmt.Errorf("%w: %dx%d cells of %dx%d, plane %dx%d", ErrAttributeSize, attrs.Width, attrs.Height, attrs.BlockWidth, attrs.BlockHeight, g.Width, g.Height)
	}

	r := palette.NewResolver(pal, b.ranker)
	size := pal.PieceSize()
	report := &Report{
		Pieces: make([]int, 0, attrs.Width*attrs.Height),
	}

	slot := func(v uint8, piece int) int {
		if int(v) >= size {
			return int(v)
		}
		return pal.Realize(int(v), piece)
	}

	for cy := 0; cy < attrs.Height; cy++ {
		for cx := 0; cx < attrs.Width; cx++ {
			block := g.Sub(attrs.Block(cx, cy))

			current := int(attrs.Piece(cx, cy))
			prior := current
			if current >= pal.NumPieces() {
				prior, current = palette.NoPiece, 0
			}

			slots := make(map[int]struct{})
			for y := 0; y < block.Height; y++ {
				for _, v := range block.Row(y) {
					slots[slot(v, current)] = struct{}{}
				}
			}
			needs := colorNeeds(pal, slots)

			choice, err := r.Resolve(needs, prior)
			if err != nil {
				return report, fmt.Errorf("cell (%d, %d): %w", cx, cy, err)
			}
			if !choice.Exact {
				b.logger.Printf("Cell (%d, %d) needs %d colors, no piece holds them all, using piece %d\n", cx, cy, len(needs), choice.Piece)
				report.Unsatisfied = append(report.Unsatisfied, image.Pt(cx, cy))
			}
			attrs.Put(cx, cy, uint8(choice.Piece))
			report.Pieces = append(report.Pieces, choice.Piece)

			for y := 0; y < block.Height; y++ {
				row := block.Row(y)
				for x, v := range row {
					s := slot(v, current)
					off, ok := relocate(r, s, choice.Piece)
					if !ok {
						off = s % size
					}
					if n := uint8(off); n != v {
						row[x] = n
						report.Rewritten++
					}
				}
			}
		}
	}

	return report, nil
}
