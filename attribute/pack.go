package attribute

import (
	"sort"

	"github.com/bodgit/retro/colormap"
)

type pieceMap struct {
	colors []colormap.Color
	tiles  []int
}

// Colors in c2 but not in c1
func colorDifference(c1, c2 []colormap.Color) (d []colormap.Color) {
	m := make(map[colormap.Color]struct{}, len(c1))
	for _, c := range c1 {
		m[c] = struct{}{}
	}
	for _, c := range c2 {
		if _, ok := m[c]; !ok {
			d = append(d, c)
		}
	}
	return
}

// Variation of bin-packing problem; maxPieces number of bins each with
// capacity of pieceSize. Based on First Fit Decreasing algorithm; relies on
// the incoming sets being sorted in decreasing size
func packPieces(in, out []pieceMap, pieceSize, maxPieces int) ([]pieceMap, bool) {
	switch {
	case len(out) > maxPieces:
		return out, false
	case len(out) == 0: // First step, use the first (biggest) set
		return packPieces(in[1:], append(out, in[0]), pieceSize, maxPieces)
	case len(in) == 0:
		return out, true
	default:
		// Loop over each current bin (piece)
		for i := range out {
			d := colorDifference(out[i].colors, in[0].colors)

			// Either the candidate set is a subset or the difference
			// can fit in the current piece
			if len(d) == 0 || len(d)+len(out[i].colors) <= pieceSize {
				dup := append(out[:0:0], out...)
				dup[i].colors = append(dup[i].colors[:len(dup[i].colors):len(dup[i].colors)], d...)
				dup[i].tiles = append(dup[i].tiles[:len(dup[i].tiles):len(dup[i].tiles)], in[0].tiles...)
				if ret, ok := packPieces(in[1:], dup, pieceSize, maxPieces); ok {
					return ret, true
				}
			}
		}
		// Last resort, start a new bin (piece)
		return packPieces(in[1:], append(out[:len(out):len(out)], in[0]), pieceSize, maxPieces)
	}
}

// Pack groups the color sets of individual tiles into at most maxPieces
// pieces of no more than pieceSize colors each. It returns the colors of
// each piece, the piece chosen for each tile and whether packing succeeded.
func Pack(sets [][]colormap.Color, pieceSize, maxPieces int) ([][]colormap.Color, []int, bool) {
	if pieceSize <= 0 || maxPieces <= 0 {
		return nil, nil, false
	}
	if len(sets) == 0 {
		return nil, nil, true
	}

	maps := make([]pieceMap, 0, len(sets))
	for i, s := range sets {
		if len(s) > pieceSize {
			return nil, nil, false
		}
		maps = append(maps, pieceMap{
			colors: append(s[:0:0], s...),
			tiles:  []int{i},
		})
	}

	// Sort with biggest sets first
	sort.SliceStable(maps, func(i, j int) bool {
		return len(maps[i].colors) > len(maps[j].colors)
	})

	packed, ok := packPieces(maps, nil, pieceSize, maxPieces)
	if !ok {
		return nil, nil, false
	}

	pieces := make([][]colormap.Color, len(packed))
	table := make([]int, len(sets))
	for i, p := range packed {
		pieces[i] = p.colors
		for _, t := range p.tiles {
			table[t] = i
		}
	}
	return pieces, table, true
}
