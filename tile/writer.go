package tile

import (
	"encoding/binary"
	"io"
)

type encoder struct {
	w io.Writer
}

func (e *encoder) encode(s *Sheet) error {
	var header [headerBytes]byte
	copy(header[:], magic)
	binary.LittleEndian.PutUint16(header[4:], uint16(s.Columns))
	binary.LittleEndian.PutUint16(header[6:], uint16(s.Tiles.Len()))
	header[8] = byte(s.Palette.NumPieces())
	if _, err := e.w.Write(header[:]); err != nil {
		return err
	}

	// Write out pixel information
	var tmp [tileBytes]byte
	for id := 0; id < s.Tiles.Len(); id++ {
		tile, _ := s.Tiles.Tile(id)
		for y := 0; y < tileHeight; y++ {
			row := tile.Row(y)
			for x := 0; x < tileWidth>>1; x++ {
				// This is masking off any bits leaving a 0-15 value
				tmp[y*tileWidth>>1+x] = row[x<<1]&0x0f<<4 | row[x<<1+1]&0x0f
			}
		}
		if _, err := e.w.Write(tmp[:]); err != nil {
			return err
		}
	}

	// Write out palette indices
	if _, err := e.w.Write(s.Pieces); err != nil {
		return err
	}

	// Write out palette(s), which are already a multiple of 16 colors
	var c [2]byte
	for slot := 0; slot < s.Palette.Len(); slot++ {
		rgb, _ := s.Palette.Lookup(slot)

		c[0] = rgb.B >> 4 & 0x0e
		c[1] = rgb.G&0xe0 | rgb.R>>4&0x0e

		if _, err := e.w.Write(c[:]); err != nil {
			return err
		}
	}

	return nil
}

// Encode writes the sheet s to w. Colors are truncated to 3 bits per
// channel.
func Encode(w io.Writer, s *Sheet) error {
	if err := s.validate(); err != nil {
		return err
	}

	e := encoder{w: w}

	return e.encode(s)
}
