/*
Package grid implements the indexed pixel buffers used throughout the
renderer: planes of small integer values with an explicit row pitch, tile
sets built from them, and coarse attribute grids that select a palette piece
per block of pixels.

Reads outside of a plane return 0 and writes outside of a plane are dropped,
which keeps scroll-wrapped and overscanning access simple.
*/
package grid

import (
	"errors"
	"image"
)

var (
	// ErrPitch is returned when the pitch is narrower than the width
	ErrPitch = errors.New("grid: pitch is less than width")
	// ErrSize is returned for a negative width or height
	ErrSize = errors.New("grid: invalid size")
)

// Plane is a two dimensional buffer of color indices or attribute values.
// Row y starts at Pix[y*Pitch]. A Plane may be a view into the buffer of a
// larger plane, in which case writes are visible to both.
type Plane struct {
	Pix    []uint8
	Width  int
	Height int
	Pitch  int
}

// New returns a zeroed plane with a pitch equal to its width
func New(width, height int) *Plane {
	p, _ := NewPitch(width, height, width)
	return p
}

// NewPitch returns a zeroed plane with the given pitch
func NewPitch(width, height, pitch int) (*Plane, error) {
	if width < 0 || height < 0 {
		return nil, ErrSize
	}
	if pitch < width {
		return nil, ErrPitch
	}
	return &Plane{
		Pix:    make([]uint8, height*pitch),
		Width:  width,
		Height: height,
		Pitch:  pitch,
	}, nil
}

// Bounds returns the rectangle covered by the plane
func (p *Plane) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.Width, p.Height)
}

func (p *Plane) in(x, y int) bool {
	return x >= 0 && y >= 0 && x < p.Width && y < p.Height
}

// Get returns the value at (x, y), or 0 outside of the plane
func (p *Plane) Get(x, y int) uint8 {
	if !p.in(x, y) {
		return 0
	}
	return p.Pix[y*p.Pitch+x]
}

// Set stores v at (x, y). Writes outside of the plane are ignored.
func (p *Plane) Set(x, y int, v uint8) {
	if !p.in(x, y) {
		return
	}
	p.Pix[y*p.Pitch+x] = v
}

// Row returns the Width values of row y, sharing the plane's storage
func (p *Plane) Row(y int) []uint8 {
	if y < 0 || y >= p.Height {
		return nil
	}
	i := y * p.Pitch
	return p.Pix[i : i+p.Width : i+p.Width]
}

// Fill sets every value in the plane to v
func (p *Plane) Fill(v uint8) {
	for y := 0; y < p.Height; y++ {
		row := p.Row(y)
		for x := range row {
			row[x] = v
		}
	}
}

// Sub returns a view of the part of the plane inside r. The view keeps the
// parent's pitch and shares its storage.
func (p *Plane) Sub(r image.Rectangle) *Plane {
	r = r.Intersect(p.Bounds())
	if r.Empty() {
		return &Plane{Pitch: p.Pitch}
	}
	start := r.Min.Y*p.Pitch + r.Min.X
	end := (r.Max.Y-1)*p.Pitch + r.Max.X
	return &Plane{
		Pix:    p.Pix[start:end:end],
		Width:  r.Dx(),
		Height: r.Dy(),
		Pitch:  p.Pitch,
	}
}

// Clone returns a copy of the plane with its own tightly packed storage
func (p *Plane) Clone() *Plane {
	c := New(p.Width, p.Height)
	for y := 0; y < p.Height; y++ {
		copy(c.Row(y), p.Row(y))
	}
	return c
}

// Equal reports whether both planes hold the same values, ignoring pitch
func (p *Plane) Equal(o *Plane) bool {
	if p.Width != o.Width || p.Height != o.Height {
		return false
	}
	for y := 0; y < p.Height; y++ {
		a, b := p.Row(y), o.Row(y)
		for x := range a {
			if a[x] != b[x] {
				return false
			}
		}
	}
	return true
}
