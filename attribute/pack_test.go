package attribute

import (
	"testing"

	"github.com/bodgit/retro/colormap"
	"github.com/stretchr/testify/assert"
)

var (
	black  = colormap.RGB(0x000000)
	red    = colormap.RGB(0xff004d)
	blue   = colormap.RGB(0x29adff)
	yellow = colormap.RGB(0xffec27)
)

func TestPack(t *testing.T) {
	tests := []struct {
		name      string
		sets      [][]colormap.Color
		pieceSize int
		maxPieces int
		pieces    [][]colormap.Color
		table     []int
		ok        bool
	}{
		{
			name:      "merge",
			sets:      [][]colormap.Color{{black, red}, {red, blue}, {yellow}},
			pieceSize: 3,
			maxPieces: 2,
			pieces:    [][]colormap.Color{{black, red, blue}, {yellow}},
			table:     []int{0, 0, 1},
			ok:        true,
		},
		{
			name:      "subset",
			sets:      [][]colormap.Color{{red}, {black, red, blue}},
			pieceSize: 3,
			maxPieces: 1,
			pieces:    [][]colormap.Color{{black, red, blue}},
			table:     []int{0, 0},
			ok:        true,
		},
		{
			name:      "too few pieces",
			sets:      [][]colormap.Color{{black, red}, {red, blue}, {yellow}},
			pieceSize: 3,
			maxPieces: 1,
		},
		{
			name:      "set bigger than piece",
			sets:      [][]colormap.Color{{black, red, blue, yellow}},
			pieceSize: 3,
			maxPieces: 4,
		},
		{
			name:      "nothing to pack",
			pieceSize: 3,
			maxPieces: 4,
			ok:        true,
		},
		{
			name:      "invalid piece size",
			sets:      [][]colormap.Color{{black}},
			maxPieces: 4,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			pieces, table, ok := Pack(test.sets, test.pieceSize, test.maxPieces)
			assert.Equal(t, test.ok, ok)
			assert.Equal(t, test.pieces, pieces)
			assert.Equal(t, test.table, table)
		})
	}
}

func TestPackDoesNotModifyInput(t *testing.T) {
	sets := [][]colormap.Color{{black, red}, {red, blue}}
	Pack(sets, 3, 1)
	assert.Equal(t, [][]colormap.Color{{black, red}, {red, blue}}, sets)
}
