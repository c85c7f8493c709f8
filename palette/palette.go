/*
Package palette implements an indexed palette partitioned into equal sized
pieces, and the resolver that decides which piece should color a region of
pixels.

Each palette slot holds an index into a colormap.ColorMap. A palette of
length N with a piece size of S has N/S pieces; piece p covers slots
p*S through p*S+S-1.
*/
package palette

import (
	"errors"
	"fmt"

	"github.com/bodgit/retro/colormap"
)

var (
	// ErrPieceSize is returned when the palette length is not a whole
	// number of pieces or the piece size is not positive
	ErrPieceSize = errors.New("palette: palette length is not a multiple of the piece size")
	// ErrNoPieces is returned when a palette has no pieces to choose from
	ErrNoPieces = errors.New("palette: no pieces")
	// ErrEntryRange is returned for an entry outside of the color map
	ErrEntryRange = errors.New("palette: entry outside of color map")
	// ErrSlotRange is returned for a slot outside of the palette
	ErrSlotRange = errors.New("palette: slot out of range")
)

// Palette is an ordered sequence of color map indices
type Palette struct {
	colors    *colormap.ColorMap
	entries   []int
	pieceSize int
}

// New returns a palette over colors. The palette length must be a non-zero
// multiple of pieceSize and every entry must be a valid color map index.
func New(colors *colormap.ColorMap, entries []int, pieceSize int) (*Palette, error) {
	if pieceSize <= 0 || len(entries)%pieceSize != 0 {
		return nil, fmt.Errorf("%w: length %d, piece size %d", ErrPieceSize, len(entries), pieceSize)
	}
	if len(entries) == 0 {
		return nil, ErrNoPieces
	}
	for i, e := range entries {
		if e < 0 || e >= colors.Len() {
			return nil, fmt.Errorf("%w: slot %d holds %d", ErrEntryRange, i, e)
		}
	}
	return &Palette{
		colors:    colors,
		entries:   append(entries[:0:0], entries...),
		pieceSize: pieceSize,
	}, nil
}

// Identity returns a palette whose slot i holds color map index i
func Identity(colors *colormap.ColorMap, pieceSize int) (*Palette, error) {
	entries := make([]int, colors.Len())
	for i := range entries {
		entries[i] = i
	}
	return New(colors, entries, pieceSize)
}

// ColorMap returns the color map the palette indexes into
func (p *Palette) ColorMap() *colormap.ColorMap {
	return p.colors
}

// Len returns the number of slots
func (p *Palette) Len() int {
	return len(p.entries)
}

// PieceSize returns the number of slots per piece
func (p *Palette) PieceSize() int {
	return p.pieceSize
}

// NumPieces returns the number of pieces
func (p *Palette) NumPieces() int {
	return len(p.entries) / p.pieceSize
}

// Entry returns the color map index held by slot
func (p *Palette) Entry(slot int) (int, bool) {
	if slot < 0 || slot >= len(p.entries) {
		return 0, false
	}
	return p.entries[slot], true
}

// Lookup returns the color of slot. A missing slot resolves to black.
func (p *Palette) Lookup(slot int) (colormap.Color, bool) {
	e, ok := p.Entry(slot)
	if !ok {
		return colormap.Black, false
	}
	return p.colors.At(e)
}

// Set assigns color map index entry to slot
func (p *Palette) Set(slot, entry int) error {
	if slot < 0 || slot >= len(p.entries) {
		return ErrSlotRange
	}
	if entry < 0 || entry >= p.colors.Len() {
		return ErrEntryRange
	}
	p.entries[slot] = entry
	return nil
}

// Piece returns the colors of each slot in piece
func (p *Palette) Piece(piece int) []colormap.Color {
	if piece < 0 || piece >= p.NumPieces() {
		return nil
	}
	colors := make([]colormap.Color, p.pieceSize)
	for i := range colors {
		colors[i], _ = p.Lookup(piece*p.pieceSize + i)
	}
	return colors
}

// Cycle rotates the entries of piece by n slots, so slot i takes the entry
// previously held by slot i+n
func (p *Palette) Cycle(piece, n int) {
	if piece < 0 || piece >= p.NumPieces() {
		return
	}
	s := p.entries[piece*p.pieceSize : (piece+1)*p.pieceSize]
	n = ((n % len(s)) + len(s)) % len(s)
	if n == 0 {
		return
	}
	tmp := append(s[:0:0], s...)
	for i := range s {
		s[i] = tmp[(i+n)%len(s)]
	}
}

// Realize returns the slot used to color raw within piece
func (p *Palette) Realize(raw, piece int) int {
	return RealizeColor(raw, piece, p.pieceSize)
}

// RealizeColor returns (raw mod pieceSize) + piece*pieceSize
func RealizeColor(raw, piece, pieceSize int) int {
	return raw%pieceSize + piece*pieceSize
}
