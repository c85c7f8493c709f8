/*
Package tile implements a tile sheet decoder and encoder.

A sheet holds a set of 8 by 8 tiles with 4 bits per pixel, the palette piece
each tile is drawn with and a palette of up to 16 pieces of 16 colors. Each
color is stored as a packed 9-bit value so sheets map directly onto the
"megadrive" color map.

The file is written as the 4 byte magic "RTS1", the number of tiles per row
and the number of tiles as little endian 16-bit values and the number of
pieces as a single byte. This is followed by 32 bytes of pixel information
per tile with the left pixel of each pair in the upper nibble, one piece
index byte per tile and finally 32 bytes per piece of 16 colors, each
packed as 0000BBB0GGG0RRR0.
*/
package tile

import (
	"errors"
	"image"

	"github.com/bodgit/retro/grid"
	"github.com/bodgit/retro/palette"
)

const (
	magic            = "RTS1"
	headerBytes      = len(magic) + 2 + 2 + 1
	tileWidth        = 8
	tileHeight       = tileWidth
	tileBytes        = tileWidth * tileHeight >> 1
	colorsPerPalette = 16
	maxPalettes      = 16
	maxTiles         = 0xffff
)

var (
	// ErrFormat is returned when the data is not a tile sheet
	ErrFormat = errors.New("tile: not a tile sheet")
	// ErrNotEnough is returned for truncated data
	ErrNotEnough = errors.New("tile: not enough sheet data")
	// ErrTooMuch is returned when data follows the sheet
	ErrTooMuch = errors.New("tile: too much sheet data")
	// ErrBadPalette is returned for a tile referencing a missing piece
	ErrBadPalette = errors.New("tile: invalid palette index")
	// ErrTileSize is returned when the tiles are not 8 by 8 pixels
	ErrTileSize = errors.New("tile: tiles must be 8x8")
	// ErrPieceSize is returned when the palette pieces are not 16 colors
	ErrPieceSize = errors.New("tile: palette pieces must be 16 colors")
	// ErrCount is returned when the number of tiles, pieces or columns
	// can't be stored
	ErrCount = errors.New("tile: invalid count")
)

// Sheet is a set of tiles together with the palette they are drawn with.
// Each pixel of a tile is an absolute palette slot, so the low 4 bits are
// the color within the tile's piece.
type Sheet struct {
	// Columns is the number of tiles per row when the sheet is laid out
	// as a picture
	Columns int
	Tiles   *grid.Tileset
	// Pieces holds the palette piece used by each tile
	Pieces  []uint8
	Palette *palette.Palette
}

// Config describes a sheet without its pixel data
type Config struct {
	Columns int
	Tiles   int
	Pieces  int
}

// Rows returns the number of rows of tiles in the layout
func (s *Sheet) Rows() int {
	if s.Columns == 0 {
		return 0
	}
	return (s.Tiles.Len() + s.Columns - 1) / s.Columns
}

// Plane lays the tiles out in rows of Columns tiles and returns the
// resulting picture of absolute palette slots
func (s *Sheet) Plane() *grid.Plane {
	p := grid.New(s.Columns*tileWidth, s.Rows()*tileHeight)
	for id := 0; id < s.Tiles.Len(); id++ {
		tile, _ := s.Tiles.Tile(id)
		dst := p.Sub(image.Rect(0, 0, tileWidth, tileHeight).Add(image.Pt(id%s.Columns*tileWidth, id/s.Columns*tileHeight)))
		for y := 0; y < tileHeight; y++ {
			copy(dst.Row(y), tile.Row(y))
		}
	}
	return p
}

// Attributes returns the piece of each tile as an attribute grid matching
// Plane
func (s *Sheet) Attributes() *grid.Attributes {
	a, _ := grid.NewAttributes(s.Columns*tileWidth, s.Rows()*tileHeight, tileWidth, tileHeight)
	for id, piece := range s.Pieces {
		a.Put(id%s.Columns, id/s.Columns, piece)
	}
	return a
}

func (s *Sheet) validate() error {
	switch {
	case s == nil || s.Tiles == nil || s.Palette == nil:
		return ErrFormat
	case s.Tiles.TileWidth() != tileWidth || s.Tiles.TileHeight() != tileHeight:
		return ErrTileSize
	case s.Palette.PieceSize() != colorsPerPalette:
		return ErrPieceSize
	case s.Tiles.Len() > maxTiles || s.Palette.NumPieces() > maxPalettes || len(s.Pieces) != s.Tiles.Len():
		return ErrCount
	case s.Columns <= 0 || s.Columns > maxTiles:
		return ErrCount
	}
	for _, p := range s.Pieces {
		if int(p) >= s.Palette.NumPieces() {
			return ErrBadPalette
		}
	}
	return nil
}
