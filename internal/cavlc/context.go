package cavlc

import "github.com/deepteams/h264/internal/grid"

// pcmCount is the coefficient count an I_PCM macroblock contributes to its
// neighbors' nC.
const pcmCount = 16

// Context records the TotalCoeff of every coded 4x4 block in a frame so the
// coeff_token table of later blocks can be chosen from their left and upper
// neighbors. A Context belongs to one frame's encoding pass.
type Context struct {
	f    *grid.Frame
	luma [][grid.LumaBlocks]uint8 // indexed by block coding order
	cb   [][grid.ChromaBlock]uint8
	cr   [][grid.ChromaBlock]uint8
}

// NewContext creates an empty context for f.
func NewContext(f *grid.Frame) *Context {
	n := f.NumMBs()
	return &Context{
		f:    f,
		luma: make([][grid.LumaBlocks]uint8, n),
		cb:   make([][grid.ChromaBlock]uint8, n),
		cr:   make([][grid.ChromaBlock]uint8, n),
	}
}

// Reset clears all recorded counts.
func (c *Context) Reset() {
	clear(c.luma)
	clear(c.cb)
	clear(c.cr)
}

// LumaNC returns nC for luma block blk (coding order) of macroblock mb.
// The Intra16x16 DC block uses blk 0.
func (c *Context) LumaNC(mb, blk int) int {
	count := func(r grid.Ref) int { return int(c.luma[r.MB][r.Block]) }
	return average(c.f.LumaNeighbor(mb, blk, grid.Left), c.f.LumaNeighbor(mb, blk, grid.Up), count)
}

// ChromaNC returns nC for AC block blk (raster order) of chroma plane
// (0 = Cb, 1 = Cr) in macroblock mb.
func (c *Context) ChromaNC(mb, plane, blk int) int {
	table := c.cb
	if plane == 1 {
		table = c.cr
	}
	count := func(r grid.Ref) int { return int(table[r.MB][r.Block]) }
	return average(c.f.ChromaNeighbor(mb, blk, grid.Left), c.f.ChromaNeighbor(mb, blk, grid.Up), count)
}

// SetLuma records the TotalCoeff of a luma block.
func (c *Context) SetLuma(mb, blk, n int) {
	c.luma[mb][blk] = uint8(n)
}

// SetChroma records the TotalCoeff of a chroma AC block.
func (c *Context) SetChroma(mb, plane, blk, n int) {
	if plane == 0 {
		c.cb[mb][blk] = uint8(n)
	} else {
		c.cr[mb][blk] = uint8(n)
	}
}

// SetPCM marks every block of an I_PCM macroblock as fully coded.
func (c *Context) SetPCM(mb int) {
	for i := range c.luma[mb] {
		c.luma[mb][i] = pcmCount
	}
	for i := range c.cb[mb] {
		c.cb[mb][i] = pcmCount
		c.cr[mb][i] = pcmCount
	}
}

// average combines the counts of the left (a) and upper (b) neighbors:
// the rounded mean when both exist, the single one otherwise, else 0.
func average(a, b grid.Ref, count func(grid.Ref) int) int {
	switch {
	case a.Available() && b.Available():
		return (count(a) + count(b) + 1) >> 1
	case a.Available():
		return count(a)
	case b.Available():
		return count(b)
	}
	return 0
}
