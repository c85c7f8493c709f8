package palette

import (
	"sort"

	"github.com/bodgit/retro/colormap"
)

// NoPiece is the absent prior piece
const NoPiece = -1

// A Ranker orders the pieces of a palette from best to worst for a set of
// needed colors. Only the first piece returned is used.
type Ranker interface {
	Rank(needs []colormap.Color, p *Palette) []int
}

// RankerFunc adapts an ordinary function to the Ranker interface
type RankerFunc func(needs []colormap.Color, p *Palette) []int

// Rank calls f(needs, p)
func (f RankerFunc) Rank(needs []colormap.Color, p *Palette) []int {
	return f(needs, p)
}

// coverage counts how many of needs are present in piece
func coverage(needs []colormap.Color, p *Palette, piece int) int {
	have := make(map[colormap.Color]struct{}, p.pieceSize)
	for _, c := range p.Piece(piece) {
		have[c] = struct{}{}
	}
	n := 0
	for _, c := range needs {
		if _, ok := have[c]; ok {
			n++
		}
	}
	return n
}

// CoverageRanker ranks pieces by how many of the needed colors they already
// contain. Equal scores keep the lower piece first.
var CoverageRanker = RankerFunc(func(needs []colormap.Color, p *Palette) []int {
	pieces := make([]int, p.NumPieces())
	scores := make([]int, len(pieces))
	for i := range pieces {
		pieces[i] = i
		scores[i] = coverage(needs, p, i)
	}
	sort.SliceStable(pieces, func(i, j int) bool {
		return scores[pieces[i]] > scores[pieces[j]]
	})
	return pieces
})

// Choice is the outcome of resolving a region's colors
type Choice struct {
	Piece int
	// Exact is true when the piece contains every needed color, false when
	// it was picked by the ranking fallback
	Exact bool
}

// Resolver picks the palette piece for a region of pixels. It holds no
// state between calls other than what the caller supplies.
type Resolver struct {
	palette *Palette
	ranker  Ranker
}

// NewResolver returns a resolver over p. A nil ranker uses CoverageRanker.
func NewResolver(p *Palette, ranker Ranker) *Resolver {
	if ranker == nil {
		ranker = CoverageRanker
	}
	return &Resolver{
		palette: p,
		ranker:  ranker,
	}
}

// Palette returns the palette being resolved against
func (r *Resolver) Palette() *Palette {
	return r.palette
}

// Winners returns every piece containing all of needs, in ascending order
func (r *Resolver) Winners(needs []colormap.Color) []int {
	var winners []int
	for piece := 0; piece < r.palette.NumPieces(); piece++ {
		if coverage(needs, r.palette, piece) == len(needs) {
			winners = append(winners, piece)
		}
	}
	return winners
}

// Resolve chooses the piece for needs. A prior piece that still contains
// every needed color is kept, otherwise the lowest such piece wins. When no
// piece contains them all the ranker's top piece is returned with Exact set
// to false, regardless of prior.
func (r *Resolver) Resolve(needs []colormap.Color, prior int) (Choice, error) {
	winners := r.Winners(needs)
	if len(winners) > 0 {
		for _, w := range winners {
			if w == prior {
				return Choice{Piece: prior, Exact: true}, nil
			}
		}
		return Choice{Piece: winners[0], Exact: true}, nil
	}

	ranked := r.ranker.Rank(needs, r.palette)
	if len(ranked) == 0 {
		return Choice{Piece: NoPiece}, ErrNoPieces
	}
	return Choice{Piece: ranked[0]}, nil
}

// ChoosePiece returns the piece that should color a region needing the
// given colors. prior is NoPiece when there is no previous assignment.
func (r *Resolver) ChoosePiece(needs []colormap.Color, prior int) (int, error) {
	c, err := r.Resolve(needs, prior)
	if err != nil {
		return NoPiece, err
	}
	return c.Piece, nil
}

// RelocateIndex returns the offset within piece of the first slot with the
// same color as slot. A slot missing from the palette is treated as black.
func (r *Resolver) RelocateIndex(slot, piece int) (int, bool) {
	p := r.palette
	if piece < 0 || piece >= p.NumPieces() {
		return 0, false
	}
	c, _ := p.Lookup(slot)
	base := piece * p.pieceSize
	for i := 0; i < p.pieceSize; i++ {
		if v, _ := p.Lookup(base + i); v == c {
			return i, true
		}
	}
	return 0, false
}

// RealizeColor returns the palette slot coloring raw within piece
func (r *Resolver) RealizeColor(raw, piece int) int {
	return r.palette.Realize(raw, piece)
}
