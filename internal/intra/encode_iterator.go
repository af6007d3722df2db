package intra

import (
	"github.com/deepteams/h264/internal/dsp"
	"github.com/deepteams/h264/internal/grid"
)

// MBIterator provides raster-scan iteration over macroblocks and gathers
// prediction borders from already reconstructed neighbors.
type MBIterator struct {
	enc *Encoder

	// Current macroblock position.
	X, Y int
	// Linear macroblock index.
	MBIdx int
}

// InitIterator resets the iterator to the first macroblock.
func (enc *Encoder) InitIterator() {
	enc.it = MBIterator{enc: enc}
}

// IsDone reports whether all macroblocks have been visited.
func (it *MBIterator) IsDone() bool {
	return it.Y >= it.enc.frame.Rows
}

// Next advances to the next macroblock in raster-scan order.
// Returns false when all macroblocks have been visited.
func (it *MBIterator) Next() bool {
	it.X++
	it.MBIdx++
	if it.X >= it.enc.frame.Cols {
		it.X = 0
		it.Y++
	}
	return !it.IsDone()
}

// MB returns the current macroblock.
func (it *MBIterator) MB() *grid.MacroBlock {
	return it.enc.frame.MB(it.MBIdx)
}

// neighbor returns a finalized neighbor macroblock of the current one, or
// nil when it is outside the picture.
func (it *MBIterator) neighbor(d grid.Direction) *grid.MacroBlock {
	idx, ok := it.enc.frame.Neighbor(it.MBIdx, d)
	if !ok {
		return nil
	}
	mb := it.enc.frame.MB(idx)
	if !mb.Finalized {
		panic("intra: prediction read a macroblock that is not reconstructed")
	}
	return mb
}

// Border16 collects the luma borders of the current macroblock.
func (it *MBIterator) Border16() dsp.Border16 {
	var b dsp.Border16
	if up := it.neighbor(grid.Up); up != nil {
		b.Up = true
		copy(b.P[1:17], up.RecY[15*16:])
	}
	if left := it.neighbor(grid.Left); left != nil {
		b.Left = true
		for y := 0; y < 16; y++ {
			b.P[17+y] = left.RecY[y*16+15]
		}
	}
	if ul := it.neighbor(grid.UpLeft); ul != nil {
		b.UpLeft = true
		b.P[0] = ul.RecY[255]
	}
	b.Fill()
	return b
}

// Border8 collects the borders of chroma plane 0 (Cb) or 1 (Cr).
func (it *MBIterator) Border8(plane int) dsp.Border8 {
	rec := func(mb *grid.MacroBlock) *[64]uint8 {
		if plane == 0 {
			return &mb.RecCb
		}
		return &mb.RecCr
	}
	var b dsp.Border8
	if up := it.neighbor(grid.Up); up != nil {
		b.Up = true
		copy(b.P[1:9], rec(up)[7*8:])
	}
	if left := it.neighbor(grid.Left); left != nil {
		b.Left = true
		r := rec(left)
		for y := 0; y < 8; y++ {
			b.P[9+y] = r[y*8+7]
		}
	}
	if ul := it.neighbor(grid.UpLeft); ul != nil {
		b.UpLeft = true
		b.P[0] = rec(ul)[63]
	}
	b.Fill()
	return b
}

// Border4 collects the borders of luma block blk (coding order). Samples
// inside the current macroblock come from cur, the reconstruction built so
// far by the 4x4 search.
func (it *MBIterator) Border4(blk int, cur *[256]uint8) dsp.Border4 {
	f := it.enc.frame
	samples := func(r grid.Ref) (*[256]uint8, int, int) {
		x, y := grid.BlockXY(r.Block)
		if r.Kind == grid.Local {
			return cur, x * 4, y * 4
		}
		mb := f.MB(r.MB)
		if !mb.Finalized {
			panic("intra: prediction read a macroblock that is not reconstructed")
		}
		return &mb.RecY, x * 4, y * 4
	}
	bottomRow := func(r grid.Ref, dst []uint8) {
		rec, x, y := samples(r)
		copy(dst, rec[(y+3)*16+x:(y+3)*16+x+4])
	}

	var b dsp.Border4
	if r := f.LumaNeighbor(it.MBIdx, blk, grid.Up); r.Available() {
		b.Up = true
		bottomRow(r, b.P[1:5])
	}
	if r := f.LumaNeighbor(it.MBIdx, blk, grid.UpRight); r.Available() {
		b.UpRight = true
		bottomRow(r, b.P[5:9])
	}
	if r := f.LumaNeighbor(it.MBIdx, blk, grid.Left); r.Available() {
		b.Left = true
		rec, x, y := samples(r)
		for j := 0; j < 4; j++ {
			b.P[9+j] = rec[(y+j)*16+x+3]
		}
	}
	if r := f.LumaNeighbor(it.MBIdx, blk, grid.UpLeft); r.Available() {
		b.UpLeft = true
		rec, x, y := samples(r)
		b.P[0] = rec[(y+3)*16+x+3]
	}
	b.Fill()
	return b
}
