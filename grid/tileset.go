package grid

import (
	"errors"
	"fmt"
	"image"
)

// ErrTileSize is returned when tiles have no area or a plane is not a whole
// number of tiles
var ErrTileSize = errors.New("grid: invalid tile size")

// Tileset is a fixed collection of equally sized tiles addressed by id. The
// tiles either own their storage or are views into a parent plane. A tileset
// is never resized.
type Tileset struct {
	tiles  []*Plane
	width  int
	height int
	parent *Plane
}

// NewTileset returns n zeroed tiles of width by height pixels
func NewTileset(n, width, height int) (*Tileset, error) {
	if width <= 0 || height <= 0 || n < 0 {
		return nil, ErrTileSize
	}
	ts := &Tileset{
		tiles:  make([]*Plane, n),
		width:  width,
		height: height,
	}
	for i := range ts.tiles {
		ts.tiles[i] = New(width, height)
	}
	return ts, nil
}

// SliceTileset cuts src into tiles of width by height pixels, numbered in
// row-major order. The tiles are views, so writing to a tile writes to src.
func SliceTileset(src *Plane, width, height int) (*Tileset, error) {
	if width <= 0 || height <= 0 || src.Width%width != 0 || src.Height%height != 0 {
		return nil, fmt.Errorf("%w: %dx%d plane, %dx%d tiles", ErrTileSize, src.Width, src.Height, width, height)
	}
	cols, rows := src.Width/width, src.Height/height
	ts := &Tileset{
		tiles:  make([]*Plane, 0, cols*rows),
		width:  width,
		height: height,
		parent: src,
	}
	for ty := 0; ty < rows; ty++ {
		for tx := 0; tx < cols; tx++ {
			ts.tiles = append(ts.tiles, src.Sub(image.Rect(tx*width, ty*height, (tx+1)*width, (ty+1)*height)))
		}
	}
	return ts, nil
}

// Len returns the number of tiles
func (ts *Tileset) Len() int {
	return len(ts.tiles)
}

// TileWidth returns the width of every tile
func (ts *Tileset) TileWidth() int {
	return ts.width
}

// TileHeight returns the height of every tile
func (ts *Tileset) TileHeight() int {
	return ts.height
}

// Tile returns tile id
func (ts *Tileset) Tile(id int) (*Plane, bool) {
	if id < 0 || id >= len(ts.tiles) {
		return nil, false
	}
	return ts.tiles[id], true
}

// Parent returns the plane the tiles are views into, or nil if the tiles
// own their storage
func (ts *Tileset) Parent() *Plane {
	return ts.parent
}
