package raster

import (
	"image"

	"github.com/bodgit/retro/colormap"
)

// Surface is a rendered frame of RGBA bytes in row-major order. Alpha is
// always 0xff. A surface returned by Render is overwritten by the next call.
type Surface struct {
	Width  int
	Height int
	Pitch  int
	Pix    []byte
}

func newSurface(width, height int) *Surface {
	return &Surface{
		Width:  width,
		Height: height,
		Pitch:  width * 4,
		Pix:    make([]byte, width*height*4),
	}
}

// At returns the color at (x, y), or black outside of the surface
func (s *Surface) At(x, y int) colormap.Color {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return colormap.Black
	}
	i := y*s.Pitch + x*4
	return colormap.Color{R: s.Pix[i], G: s.Pix[i+1], B: s.Pix[i+2]}
}

// Image returns an image sharing the surface's storage
func (s *Surface) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    s.Pix,
		Stride: s.Pitch,
		Rect:   image.Rect(0, 0, s.Width, s.Height),
	}
}

// Clone returns a copy of the surface that is safe to keep across renders
func (s *Surface) Clone() *Surface {
	return &Surface{
		Width:  s.Width,
		Height: s.Height,
		Pitch:  s.Pitch,
		Pix:    append(s.Pix[:0:0], s.Pix...),
	}
}
