package tile

import (
	"encoding/binary"
	"io"

	"github.com/bodgit/retro/colormap"
	"github.com/bodgit/retro/grid"
	"github.com/bodgit/retro/palette"
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func upperNibble(b byte) byte {
	return b & 0xf0
}

func lowerNibble(b byte) byte {
	return b & 0x0f
}

type decoder struct {
	r io.Reader

	columns   int
	numTiles  int
	numPieces int

	pixels  []byte
	pieces  []byte
	entries []int
}

func (d *decoder) readHeader() error {
	var header [headerBytes]byte
	if err := readFull(d.r, header[:]); err != nil {
		return err
	}
	if string(header[:len(magic)]) != magic {
		return ErrFormat
	}
	d.columns = int(binary.LittleEndian.Uint16(header[4:]))
	d.numTiles = int(binary.LittleEndian.Uint16(header[6:]))
	d.numPieces = int(header[8])
	if d.columns == 0 || d.numPieces == 0 || d.numPieces > maxPalettes {
		return ErrCount
	}
	return nil
}

func (d *decoder) readPixelsAndPaletteIndices() error {
	d.pixels = make([]byte, d.numTiles*tileBytes)
	if err := readFull(d.r, d.pixels); err != nil {
		return err
	}

	d.pieces = make([]byte, d.numTiles)
	if err := readFull(d.r, d.pieces); err != nil {
		return err
	}

	for _, b := range d.pieces {
		if int(b) >= d.numPieces {
			return ErrBadPalette
		}
	}
	return nil
}

func (d *decoder) readPalette() error {
	d.entries = make([]int, colorsPerPalette*d.numPieces)
	for i := range d.entries {
		var tmp [2]byte
		if err := readFull(d.r, tmp[:]); err != nil {
			return err
		}
		// Color is packed as 0000BBB0GGG0RRR0, the "megadrive" color map
		// is indexed as 0bBBBGGGRRR
		b := int(lowerNibble(tmp[0]) >> 1)
		g := int(upperNibble(tmp[1]) >> 5)
		r := int(lowerNibble(tmp[1]) >> 1)
		d.entries[i] = b<<6 | g<<3 | r
	}
	return nil
}

func (d *decoder) decode(r io.Reader) error {
	d.r = r

	if err := d.readHeader(); err != nil {
		if err != io.ErrUnexpectedEOF {
			return err
		}
		return ErrNotEnough
	}

	if err := d.readPixelsAndPaletteIndices(); err != nil {
		if err != io.ErrUnexpectedEOF {
			return err
		}
		return ErrNotEnough
	}

	if err := d.readPalette(); err != nil {
		if err != io.ErrUnexpectedEOF {
			return err
		}
		return ErrNotEnough
	}

	var tmp [1]byte
	if n, err := r.Read(tmp[:]); n != 0 || (err != io.EOF && err != io.ErrUnexpectedEOF) {
		if err != nil {
			return err
		}
		return ErrTooMuch
	}

	return nil
}

func (d *decoder) sheet() (*Sheet, error) {
	cmap, err := colormap.Preset("megadrive").Resolve()
	if err != nil {
		return nil, err
	}
	pal, err := palette.New(cmap, d.entries, colorsPerPalette)
	if err != nil {
		return nil, err
	}

	ts, err := grid.NewTileset(d.numTiles, tileWidth, tileHeight)
	if err != nil {
		return nil, err
	}
	for id := 0; id < d.numTiles; id++ {
		tile, _ := ts.Tile(id)
		p := d.pieces[id] * colorsPerPalette
		for y := 0; y < tileHeight; y++ {
			row := tile.Row(y)
			for x := 0; x < tileWidth>>1; x++ {
				b := d.pixels[id*tileBytes+y*tileWidth>>1+x]
				row[x<<1] = p + upperNibble(b)>>4
				row[x<<1+1] = p + lowerNibble(b)
			}
		}
	}

	return &Sheet{
		Columns: d.columns,
		Tiles:   ts,
		Pieces:  d.pieces,
		Palette: pal,
	}, nil
}

// Decode reads a tile sheet from r. The palette of the returned sheet
// indexes the "megadrive" color map.
func Decode(r io.Reader) (*Sheet, error) {
	var d decoder
	if err := d.decode(r); err != nil {
		return nil, err
	}
	return d.sheet()
}

// DecodeConfig returns the dimensions of a tile sheet without building
// its tiles.
func DecodeConfig(r io.Reader) (Config, error) {
	var d decoder
	if err := d.decode(r); err != nil {
		return Config{}, err
	}
	return Config{
		Columns: d.columns,
		Tiles:   d.numTiles,
		Pieces:  d.numPieces,
	}, nil
}
