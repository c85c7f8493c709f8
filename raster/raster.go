/*
Package raster implements the scanline compositor that turns indexed planes
into RGBA surfaces.

A frame is rendered top to bottom in bands of scanlines separated by
interrupts. Every layer is rendered for a band before that band's interrupt
runs, so an interrupt can change scroll offsets, palette entries,
attributes or tile ids and have the change picked up by the rest of the
frame. This is how split-screen scrolling and mid-frame color changes are
produced.

Scrolling wraps horizontally and vertically. Each destination row is copied
as at most a few contiguous runs of the source row either side of the wrap
point rather than taking a modulo per pixel.
*/
package raster

import (
	"errors"
	"fmt"
	"math"

	"github.com/bodgit/retro/colormap"
	"github.com/bodgit/retro/grid"
	"github.com/bodgit/retro/palette"
)

var (
	// ErrNoLayers is returned when attaching a scene with no layers
	ErrNoLayers = errors.New("raster: no layers")
	// ErrNoGrid is returned for a layer without a plane
	ErrNoGrid = errors.New("raster: layer has no plane")
	// ErrColors is returned unless a layer has exactly one of a palette
	// or a color map
	ErrColors = errors.New("raster: layer needs exactly one of a palette or a color map")
	// ErrAttributes is returned for a layer with attributes but no palette
	ErrAttributes = errors.New("raster: attributes need a palette")
	// ErrSize is returned when the output or a source has no area
	ErrSize = errors.New("raster: invalid size")
	// ErrNotAttached is returned when rendering before a scene is attached
	ErrNotAttached = errors.New("raster: no scene attached")
	// ErrMissingTile is returned when a plane references a tile id that
	// the tileset does not have
	ErrMissingTile = errors.New("raster: missing tile")
)

// Layer is one indexed plane to render. If Tileset is set then each value
// of Grid is a tile id, otherwise it is a color index. Colors come from
// either Palette or, for a plain color set, Colors.
//
// Attribute cells are addressed by destination pixel, so they stay fixed
// on screen while the content scrolls beneath them. With ScrollAttributes
// set they are addressed by source pixel instead and move with the content.
type Layer struct {
	Grid             *grid.Plane
	Tileset          *grid.Tileset
	Palette          *palette.Palette
	Colors           *colormap.ColorMap
	Attributes       *grid.Attributes
	ScrollAttributes bool
	ScrollX          float64
	ScrollY          float64
}

// size returns the dimensions of the layer's source in pixels
func (l *Layer) size() (int, int) {
	if l.Tileset != nil {
		return l.Grid.Width * l.Tileset.TileWidth(), l.Grid.Height * l.Tileset.TileHeight()
	}
	return l.Grid.Width, l.Grid.Height
}

func (l *Layer) validate() error {
	if l == nil || l.Grid == nil {
		return ErrNoGrid
	}
	if (l.Palette == nil) == (l.Colors == nil) {
		return ErrColors
	}
	if l.Attributes != nil && l.Palette == nil {
		return ErrAttributes
	}
	if w, h := l.size(); w <= 0 || h <= 0 {
		return ErrSize
	}
	return nil
}

// Scene is everything the compositor renders each frame
type Scene struct {
	Layers     []*Layer
	Interrupts []Interrupt
}

// Config sets the output size. A zero width or height is taken from the
// first layer's source.
type Config struct {
	Width  int
	Height int
}

// Compositor renders an attached scene into reusable surfaces, one per
// layer. It is not safe for concurrent use.
type Compositor struct {
	cfg        Config
	scene      Scene
	width      int
	height     int
	boundaries []boundary
	surfaces   []*Surface
	sources    []*grid.Plane
}

// New returns a compositor with the given output configuration
func New(cfg Config) *Compositor {
	return &Compositor{
		cfg: cfg,
	}
}

// Attach validates scene and makes it the one rendered by Render.
func (c *Compositor) Attach(scene Scene) error {
	if len(scene.Layers) == 0 {
		return ErrNoLayers
	}
	for i, l := range scene.Layers {
		if err := l.validate(); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}

	width, height := scene.Layers[0].size()
	if c.cfg.Width != 0 {
		width = c.cfg.Width
	}
	if c.cfg.Height != 0 {
		height = c.cfg.Height
	}
	if width <= 0 || height <= 0 {
		return ErrSize
	}

	b, err := boundaries(scene.Interrupts, height)
	if err != nil {
		return err
	}

	if width != c.width || height != c.height || len(scene.Layers) != len(c.surfaces) {
		c.surfaces = nil
	}
	c.scene = scene
	c.width, c.height = width, height
	c.boundaries = b
	c.sources = nil
	c.allocate()

	return nil
}

func (c *Compositor) allocate() {
	if c.surfaces == nil {
		c.surfaces = make([]*Surface, len(c.scene.Layers))
		for i := range c.surfaces {
			c.surfaces[i] = newSurface(c.width, c.height)
		}
	}
	if c.sources == nil {
		c.sources = make([]*grid.Plane, len(c.scene.Layers))
		for i, l := range c.scene.Layers {
			if l.Tileset != nil {
				c.sources[i] = grid.New(l.size())
			}
		}
	}
}

// Width returns the output width
func (c *Compositor) Width() int {
	return c.width
}

// Height returns the output height
func (c *Compositor) Height() int {
	return c.height
}

// Surfaces returns the surfaces being rendered into, one per layer
func (c *Compositor) Surfaces() []*Surface {
	return c.surfaces
}

// Flush releases the cached surfaces and tile expansion buffers. They are
// reallocated by the next render.
func (c *Compositor) Flush() {
	c.surfaces = nil
	c.sources = nil
}

// Render renders one frame of the attached scene, running each interrupt
// once, in order, after the band of scanlines above it. It returns one
// surface per layer; the surfaces are reused by the next call.
func (c *Compositor) Render() ([]*Surface, error) {
	if len(c.scene.Layers) == 0 {
		return nil, ErrNotAttached
	}
	c.allocate()

	top := 0
	for _, b := range c.boundaries {
		if err := c.band(top, b.line); err != nil {
			return nil, err
		}
		if b.f != nil {
			b.f(b.line)
		}
		top = b.line
	}
	if err := c.band(top, c.height); err != nil {
		return nil, err
	}

	return c.surfaces, nil
}

// band renders scanlines [top, bottom) of every layer
func (c *Compositor) band(top, bottom int) error {
	for i := range c.scene.Layers {
		if err := c.renderLayer(i, top, bottom); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return nil
}

// wrap normalizes v into [0, n)
func wrap(v, n int) int {
	return ((v % n) + n) % n
}

func (c *Compositor) renderLayer(i, top, bottom int) error {
	l := c.scene.Layers[i]
	s := c.surfaces[i]
	sw, sh := l.size()

	src := l.Grid
	if l.Tileset != nil {
		src = c.sources[i]
	}

	scrollX := wrap(int(math.Floor(l.ScrollX)), sw)
	scrollY := wrap(int(math.Floor(l.ScrollY)), sh)

	for y := top; y < bottom; y++ {
		sy := (y + scrollY) % sh
		if l.Tileset != nil {
			if err := expandRow(l, src, sy); err != nil {
				return err
			}
		}
		row := src.Row(sy)
		out := s.Pix[y*s.Pitch : y*s.Pitch+c.width*4]

		// Copy the run from the scroll position to the right edge of
		// the source, then whole source rows from the left edge
		for x, sx := 0, scrollX; x < c.width; x, sx = x+sw-sx, 0 {
			n := sw - sx
			if n > c.width-x {
				n = c.width - x
			}
			if l.ScrollAttributes {
				l.span(out[x*4:(x+n)*4], row[sx:sx+n], sx, sy)
			} else {
				l.span(out[x*4:(x+n)*4], row[sx:sx+n], x, y)
			}
		}
	}

	return nil
}

// expandRow fills row sy of dst with the pixels of the tiles referenced by
// the layer's plane
func expandRow(l *Layer, dst *grid.Plane, sy int) error {
	tw, th := l.Tileset.TileWidth(), l.Tileset.TileHeight()
	ty, py := sy/th, sy%th
	row := dst.Row(sy)
	for tx := 0; tx < l.Grid.Width; tx++ {
		id := int(l.Grid.Get(tx, ty))
		tile, ok := l.Tileset.Tile(id)
		if !ok {
			return fmt.Errorf("%w: id %d at (%d, %d)", ErrMissingTile, id, tx, ty)
		}
		copy(row[tx*tw:(tx+1)*tw], tile.Row(py))
	}
	return nil
}

// span resolves the colors of a run of source pixels and writes them to
// out. (ax, ay) is where the run starts for attribute lookups.
func (l *Layer) span(out []byte, pix []uint8, ax, ay int) {
	for j, v := range pix {
		var c colormap.Color
		switch {
		case l.Attributes != nil:
			piece := int(l.Attributes.PieceAt(ax+j, ay))
			c, _ = l.Palette.Lookup(l.Palette.Realize(int(v), piece))
		case l.Palette != nil:
			c, _ = l.Palette.Lookup(int(v))
		default:
			c, _ = l.Colors.At(int(v))
		}
		o := j * 4
		out[o] = c.R
		out[o+1] = c.G
		out[o+2] = c.B
		out[o+3] = 0xff
	}
}
