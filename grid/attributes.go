package grid

import "image"

// Attributes is a coarse plane where each cell holds the palette piece used
// by a BlockWidth by BlockHeight block of pixels
type Attributes struct {
	*Plane
	BlockWidth  int
	BlockHeight int
}

// NewAttributes returns an attribute grid covering width by height pixels
// with the given block size. Partial blocks on the right and bottom edges
// get a cell of their own.
func NewAttributes(width, height, blockWidth, blockHeight int) (*Attributes, error) {
	if blockWidth <= 0 || blockHeight <= 0 || width < 0 || height < 0 {
		return nil, ErrSize
	}
	return &Attributes{
		Plane:       New((width+blockWidth-1)/blockWidth, (height+blockHeight-1)/blockHeight),
		BlockWidth:  blockWidth,
		BlockHeight: blockHeight,
	}, nil
}

// Put sets the piece for cell (cx, cy)
func (a *Attributes) Put(cx, cy int, piece uint8) {
	a.Set(cx, cy, piece)
}

// Piece returns the piece for cell (cx, cy)
func (a *Attributes) Piece(cx, cy int) uint8 {
	return a.Get(cx, cy)
}

// PieceAt returns the piece governing pixel (x, y)
func (a *Attributes) PieceAt(x, y int) uint8 {
	if x < 0 || y < 0 {
		return 0
	}
	return a.Get(x/a.BlockWidth, y/a.BlockHeight)
}

// Block returns the pixel rectangle governed by cell (cx, cy)
func (a *Attributes) Block(cx, cy int) image.Rectangle {
	return image.Rect(cx*a.BlockWidth, cy*a.BlockHeight, (cx+1)*a.BlockWidth, (cy+1)*a.BlockHeight)
}

// Covers reports whether every pixel of a width by height plane falls in a
// cell
func (a *Attributes) Covers(width, height int) bool {
	return a.Width*a.BlockWidth >= width && a.Height*a.BlockHeight >= height
}
