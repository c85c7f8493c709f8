/*
Package retro is a library for converting pictures into palette constrained
tile sheets and rendering them with scanline effects.

Images are snapped to a color map, packed into 16 color palette pieces with
every 8 by 8 tile drawn from a single piece and stored as tile sheets.
Sheets are cached in a SQLite database keyed by the SHA-1 of the source
image so repeated conversions are free.
*/
package retro

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/bodgit/retro/attribute"
	"github.com/bodgit/retro/colormap"
	"github.com/bodgit/retro/convert"
	"github.com/bodgit/retro/grid"
	"github.com/bodgit/retro/palette"
	"github.com/bodgit/retro/raster"
	"github.com/bodgit/retro/tile"
	xdraw "golang.org/x/image/draw"
)

const (
	// DefaultPreset is the color map used when none is given
	DefaultPreset = "megadrive"

	tileSize  = 8
	pieceSize = 16
	maxPieces = 4
)

// ErrTooSmall is returned for an image smaller than a single tile
var ErrTooSmall = errors.New("retro: image is smaller than a tile")

// Retro converts and renders images, caching the converted sheets
type Retro struct {
	db     *SceneDB
	logger *log.Logger
}

// New returns a Retro using the database in file, creating it if
// necessary. The logger may be nil.
func New(file string, logger *log.Logger) (*Retro, error) {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}

	db, err := NewSceneDB(file)
	if err != nil {
		return nil, err
	}

	return &Retro{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the database
func (r *Retro) Close() error {
	return r.db.Close()
}

func decodeFile(file string) (image.Image, string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	h := sha1.New()
	m, _, err := image.Decode(io.TeeReader(f, h))
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", file, err)
	}

	return m, fmt.Sprintf("%X", h.Sum(nil)), nil
}

// crop trims m to a whole number of tiles anchored at the top-left corner
func crop(m image.Image) (image.Image, error) {
	b := m.Bounds()
	w, h := b.Dx()/tileSize*tileSize, b.Dy()/tileSize*tileSize
	if w == 0 || h == 0 {
		return nil, ErrTooSmall
	}
	if w == b.Dx() && h == b.Dy() {
		return m, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), m, b.Min, draw.Src)
	return dst, nil
}

func (r *Retro) toSheet(m image.Image, cmap *colormap.ColorMap) (*tile.Sheet, error) {
	m, err := crop(m)
	if err != nil {
		return nil, err
	}

	plane, pal, err := convert.Pack(m, cmap, convert.Options{
		TileWidth:  tileSize,
		TileHeight: tileSize,
		PieceSize:  pieceSize,
		MaxPieces:  maxPieces,
	})
	if err != nil {
		return nil, err
	}

	ts, err := grid.SliceTileset(plane, tileSize, tileSize)
	if err != nil {
		return nil, err
	}

	report, err := attribute.NewBuilder(r.logger, attribute.Options{}).NormalizeTileset(ts, pal)
	if err != nil {
		return nil, err
	}

	pieces := make([]uint8, len(report.Pieces))
	for i, p := range report.Pieces {
		if p != palette.NoPiece {
			pieces[i] = uint8(p)
		}
	}

	return &tile.Sheet{
		Columns: plane.Width / tileSize,
		Tiles:   ts,
		Pieces:  pieces,
		Palette: pal,
	}, nil
}

// Normalize converts the image in file to an encoded tile sheet using the
// named color map preset. The result is cached.
func (r *Retro) Normalize(file, preset string) ([]byte, error) {
	if preset == "" {
		preset = DefaultPreset
	}

	cmap, err := colormap.Preset(preset).Resolve()
	if err != nil {
		return nil, err
	}

	m, sha, err := decodeFile(file)
	if err != nil {
		return nil, err
	}

	b, err := r.db.Find(sha, preset)
	if err != nil {
		return nil, err
	}
	if b != nil {
		r.logger.Printf("Using cached sheet for \"%s\", with SHA-1 \"%s\"\n", file, sha)
		return b, nil
	}

	s, err := r.toSheet(m, cmap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	buf := new(bytes.Buffer)
	if err := tile.Encode(buf, s); err != nil {
		return nil, err
	}

	if err := r.db.Store(sha, preset, buf.Bytes()); err != nil {
		return nil, err
	}
	r.logger.Printf("Converted \"%s\" to %d tiles and %d pieces\n", file, s.Tiles.Len(), s.Palette.NumPieces())

	return buf.Bytes(), nil
}

// Split changes the horizontal scroll from a scanline onwards
type Split struct {
	Line    int
	ScrollX float64
}

// RenderOptions configure Render. The zero value renders the whole sheet
// unscrolled at its natural size.
type RenderOptions struct {
	// Preset is the color map the image is converted with. The sheet
	// format stores 9-bit colors, so the rendered picture always uses the
	// megadrive color map's nearest equivalents, whatever the preset.
	Preset  string
	ScrollX float64
	ScrollY float64
	// Width and Height of the output before scaling, defaulting to the
	// size of the sheet
	Width  int
	Height int
	// Scale enlarges the output with nearest neighbor scaling
	Scale float64
	// Splits must be in scanline order
	Splits []Split
	// Attributes renders through an attribute grid, one cell per tile,
	// rather than absolute palette slots
	Attributes bool
}

// Scene builds a renderable scene from a sheet
func (r *Retro) Scene(s *tile.Sheet, opts RenderOptions) (raster.Scene, error) {
	l := &raster.Layer{
		Grid:    s.Plane(),
		Palette: s.Palette,
		ScrollX: opts.ScrollX,
		ScrollY: opts.ScrollY,
	}

	if opts.Attributes {
		l.Attributes = s.Attributes()
		l.ScrollAttributes = true
		if _, err := attribute.NewBuilder(r.logger, attribute.Options{}).NormalizeGrid(l.Grid, l.Attributes, s.Palette); err != nil {
			return raster.Scene{}, err
		}
	}

	scene := raster.Scene{
		Layers: []*raster.Layer{l},
	}
	for _, split := range opts.Splits {
		scrollX := split.ScrollX
		scene.Interrupts = append(scene.Interrupts, raster.Interrupt{
			Line: split.Line,
			Func: func(int) {
				l.ScrollX = scrollX
			},
		})
	}

	return scene, nil
}

// Render converts the image in file, renders it and writes the result to
// w as a PNG
func (r *Retro) Render(file string, w io.Writer, opts RenderOptions) error {
	data, err := r.Normalize(file, opts.Preset)
	if err != nil {
		return err
	}

	s, err := tile.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}

	scene, err := r.Scene(s, opts)
	if err != nil {
		return err
	}

	c := raster.New(raster.Config{Width: opts.Width, Height: opts.Height})
	if err := c.Attach(scene); err != nil {
		return err
	}

	surfaces, err := c.Render()
	if err != nil {
		return err
	}

	var m image.Image = surfaces[0].Image()
	if opts.Scale > 0 && opts.Scale != 1.0 {
		b := m.Bounds()
		d := image.NewNRGBA(image.Rect(0, 0, int(float64(b.Dx())*opts.Scale), int(float64(b.Dy())*opts.Scale)))
		xdraw.NearestNeighbor.Scale(d, d.Bounds(), m, b, xdraw.Over, nil)
		m = d
	}

	return png.Encode(w, m)
}
