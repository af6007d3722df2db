package grid

// Direction names a spatial neighbor.
type Direction int

const (
	UpLeft Direction = iota
	Up
	UpRight
	Left
	Right
)

var directionNames = [...]string{"up-left", "up", "up-right", "left", "right"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return "unknown"
	}
	return directionNames[d]
}

// offset returns the (column, row) step for d.
func (d Direction) offset() (dx, dy int) {
	switch d {
	case UpLeft:
		return -1, -1
	case Up:
		return 0, -1
	case UpRight:
		return 1, -1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	panic("grid: unknown direction")
}

// Neighbor returns the raster index of macroblock i's neighbor in direction
// d, or ok == false when that neighbor lies outside the picture. Rows never
// wrap: the left neighbor of a column-0 macroblock is unavailable.
func (f *Frame) Neighbor(i int, d Direction) (idx int, ok bool) {
	if i < 0 || i >= len(f.MBs) {
		return 0, false
	}
	dx, dy := d.offset()
	col := i%f.Cols + dx
	row := i/f.Cols + dy
	if col < 0 || col >= f.Cols || row < 0 || row >= f.Rows {
		return 0, false
	}
	return row*f.Cols + col, true
}

// RefKind tags a Ref.
type RefKind uint8

const (
	// Unavailable means the neighbor lies outside the picture or has not
	// been coded yet.
	Unavailable RefKind = iota
	// Local means the neighbor block is in the same macroblock.
	Local
	// External means the neighbor block is in another macroblock.
	External
)

// Ref locates a neighboring 4x4 block.
type Ref struct {
	Kind  RefKind
	MB    int // raster index of the owning macroblock
	Block int // block index inside that macroblock
}

// Available reports whether r points at a coded block.
func (r Ref) Available() bool {
	return r.Kind != Unavailable
}

// LumaNeighbor returns the 4x4 luma block next to block blk (coding order)
// of macroblock mb. Up-right references are only returned when the decoder
// has reconstructed that block before blk.
func (f *Frame) LumaNeighbor(mb, blk int, d Direction) Ref {
	x, y := BlockXY(blk)
	r := f.blockNeighbor(mb, x, y, 4, d)
	if !r.Available() {
		return r
	}
	nx, ny := r.Block%4, r.Block/4
	r.Block = BlockIndex(nx, ny)
	if d == UpRight && r.Kind == Local && r.Block > blk {
		return Ref{}
	}
	return r
}

// ChromaNeighbor returns the 4x4 chroma block next to block blk (raster
// order within the 8x8 plane) of macroblock mb.
func (f *Frame) ChromaNeighbor(mb, blk int, d Direction) Ref {
	r := f.blockNeighbor(mb, blk%2, blk/2, 2, d)
	if d == UpRight && r.Kind == Local && r.Block > blk {
		return Ref{}
	}
	return r
}

// blockNeighbor steps from block (x, y) of an n x n block grid inside
// macroblock mb. Block indexes in the result are raster order.
func (f *Frame) blockNeighbor(mb, x, y, n int, d Direction) Ref {
	dx, dy := d.offset()
	nx, ny := x+dx, y+dy
	if nx >= 0 && nx < n && ny >= 0 && ny < n {
		return Ref{Kind: Local, MB: mb, Block: ny*n + nx}
	}
	var md Direction
	switch {
	case ny < 0 && nx < 0:
		md = UpLeft
	case ny < 0 && nx >= n:
		md = UpRight
	case ny < 0:
		md = Up
	case nx < 0:
		md = Left
	case nx >= n && ny >= 0:
		if d == UpRight {
			// Right of an inner row is decoded after this block.
			return Ref{}
		}
		md = Right
	default:
		return Ref{}
	}
	idx, ok := f.Neighbor(mb, md)
	if !ok {
		return Ref{}
	}
	nx = (nx + n) % n
	ny = (ny + n) % n
	return Ref{Kind: External, MB: idx, Block: ny*n + nx}
}
