package raster

import (
	"errors"
	"fmt"
)

var (
	// ErrInterruptOrder is returned when interrupts are not in
	// non-decreasing scanline order
	ErrInterruptOrder = errors.New("raster: interrupts out of order")
	// ErrInterruptRange is returned for an interrupt outside of the frame
	// or with an empty line range
	ErrInterruptRange = errors.New("raster: interrupt outside of frame")
)

// Interrupt is a callback run between two bands of scanlines. Func is
// called with line once every scanline above line has been rendered and
// before line itself is. If End is non-zero the interrupt covers every line
// in [Line, End) and Func is called once for each of them.
//
// Func may change scroll offsets, palette entries, attributes or tile ids;
// the following band is rendered with the new state.
type Interrupt struct {
	Line int
	End  int
	Func func(line int)
}

type boundary struct {
	line int
	f    func(int)
}

// boundaries validates interrupts against a frame of height scanlines and
// flattens line ranges into one boundary per line. Interrupts are never
// reordered.
func boundaries(interrupts []Interrupt, height int) ([]boundary, error) {
	var b []boundary
	last := 0
	for i, in := range interrupts {
		end := in.End
		if end == 0 {
			end = in.Line + 1
		}
		if in.Line < 0 || in.Line > height || end <= in.Line || end-1 > height {
			return nil, fmt.Errorf("%w: interrupt %d covers [%d, %d), frame height %d", ErrInterruptRange, i, in.Line, end, height)
		}
		if in.Line < last {
			return nil, fmt.Errorf("%w: interrupt %d at line %d follows line %d", ErrInterruptOrder, i, in.Line, last)
		}
		for line := in.Line; line < end; line++ {
			b = append(b, boundary{line, in.Func})
		}
		last = end - 1
	}
	return b, nil
}
