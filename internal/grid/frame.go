// Package grid partitions a padded 4:2:0 picture into macroblocks and answers
// neighbor queries between macroblocks and between 4x4 blocks.
package grid

import (
	"github.com/pkg/errors"

	"github.com/deepteams/h264/internal/bitio"
)

// Macroblock geometry.
const (
	MBSize      = 16 // luma samples per macroblock side
	ChromaSize  = 8  // chroma samples per macroblock side (4:2:0)
	BlockSize   = 4  // transform block side
	LumaBlocks  = 16 // 4x4 luma blocks per macroblock
	ChromaBlock = 4  // 4x4 blocks per chroma plane
)

// ErrDimension is returned when a picture size is not a positive multiple of
// the macroblock size, or its raw size exceeds the padded size.
var ErrDimension = errors.New("grid: invalid picture dimensions")

// MacroBlock is one 16x16 coding unit with its source samples, the
// reconstruction the decoder will produce, and every decision made for it.
type MacroBlock struct {
	Index    int // raster index
	Row, Col int

	// Source samples.
	Y      [MBSize * MBSize]uint8
	Cb, Cr [ChromaSize * ChromaSize]uint8

	// Reconstructed samples, used as prediction borders by later macroblocks.
	RecY      [MBSize * MBSize]uint8
	RecCb     [ChromaSize * ChromaSize]uint8
	RecCr     [ChromaSize * ChromaSize]uint8
	Finalized bool

	// Prediction decisions.
	Intra16x16 bool
	Mode16     int
	Modes4     [LumaBlocks]int // indexed by block coding order
	ChromaMode int
	PCM        bool

	// Coded block pattern: bit b of CBPLuma covers 8x8 quadrant b,
	// CBPChroma is 0 (none), 1 (DC only) or 2 (DC and AC).
	CBPLuma   int
	CBPChroma int

	// Quantized levels in raster coefficient order. LumaAC is indexed by
	// block coding order; for Intra16x16 position 0 of each block is unused
	// and the DC levels live in LumaDC, a 4x4 matrix with one entry per
	// block position. ChromaDC is the 2x2 matrix of each plane.
	LumaDC   [LumaBlocks]int32
	LumaAC   [LumaBlocks][16]int32
	ChromaDC [2][ChromaBlock]int32
	ChromaAC [2][ChromaBlock][16]int32

	// Cost of the chosen luma and chroma prediction.
	LumaCost, ChromaCost int

	// Bits holds the entropy coded residual for this macroblock.
	Bits *bitio.Writer
}

// Reset clears the per-frame decisions and keeps the source samples.
func (mb *MacroBlock) Reset() {
	mb.Finalized = false
	mb.Intra16x16 = false
	mb.Mode16 = 0
	mb.Modes4 = [LumaBlocks]int{}
	mb.ChromaMode = 0
	mb.PCM = false
	mb.CBPLuma = 0
	mb.CBPChroma = 0
	mb.LumaDC = [LumaBlocks]int32{}
	mb.LumaAC = [LumaBlocks][16]int32{}
	mb.ChromaDC = [2][ChromaBlock]int32{}
	mb.ChromaAC = [2][ChromaBlock][16]int32{}
	mb.LumaCost = 0
	mb.ChromaCost = 0
	if mb.Bits != nil {
		mb.Bits.Reset()
	}
}

// Frame owns the macroblock grid for one picture.
type Frame struct {
	Width, Height       int // padded size, multiples of 16
	RawWidth, RawHeight int // visible size before padding
	Cols, Rows          int // size in macroblocks

	MBs []MacroBlock
}

// NewFrame validates the picture size and builds an empty grid. width and
// height are the padded dimensions; rawWidth and rawHeight the visible ones
// (pass the padded size when the picture was not padded).
func NewFrame(width, height, rawWidth, rawHeight int) (*Frame, error) {
	if err := CheckDimensions(width, height); err != nil {
		return nil, err
	}
	if rawWidth <= 0 || rawHeight <= 0 || rawWidth > width || rawHeight > height {
		return nil, errors.Wrapf(ErrDimension, "raw size %dx%d does not fit padded size %dx%d",
			rawWidth, rawHeight, width, height)
	}
	f := &Frame{
		Width:     width,
		Height:    height,
		RawWidth:  rawWidth,
		RawHeight: rawHeight,
		Cols:      width / MBSize,
		Rows:      height / MBSize,
	}
	f.MBs = make([]MacroBlock, f.Cols*f.Rows)
	for i := range f.MBs {
		mb := &f.MBs[i]
		mb.Index = i
		mb.Row = i / f.Cols
		mb.Col = i % f.Cols
	}
	return f, nil
}

// CheckDimensions reports an ErrDimension unless width and height are
// positive multiples of the macroblock size.
func CheckDimensions(width, height int) error {
	if width <= 0 || height <= 0 || width%MBSize != 0 || height%MBSize != 0 {
		return errors.Wrapf(ErrDimension, "%dx%d is not a multiple of %d", width, height, MBSize)
	}
	return nil
}

// NumMBs returns the number of macroblocks in the frame.
func (f *Frame) NumMBs() int {
	return len(f.MBs)
}

// MB returns the macroblock at raster index i.
func (f *Frame) MB(i int) *MacroBlock {
	return &f.MBs[i]
}

// Load copies planar 4:2:0 samples into the macroblocks' source buffers.
// yStride and cStride are the row pitches of the luma and chroma planes.
func (f *Frame) Load(y, cb, cr []byte, yStride, cStride int) error {
	if yStride < f.Width || cStride < f.Width/2 {
		return errors.Wrapf(ErrDimension, "strides %d/%d too small for width %d", yStride, cStride, f.Width)
	}
	if len(y) < yStride*(f.Height-1)+f.Width ||
		len(cb) < cStride*(f.Height/2-1)+f.Width/2 ||
		len(cr) < cStride*(f.Height/2-1)+f.Width/2 {
		return errors.Wrapf(ErrDimension, "planes too short for %dx%d", f.Width, f.Height)
	}
	for i := range f.MBs {
		mb := &f.MBs[i]
		mb.Reset()
		px, py := mb.Col*MBSize, mb.Row*MBSize
		for r := 0; r < MBSize; r++ {
			copy(mb.Y[r*MBSize:(r+1)*MBSize], y[(py+r)*yStride+px:])
		}
		cx, cy := mb.Col*ChromaSize, mb.Row*ChromaSize
		for r := 0; r < ChromaSize; r++ {
			copy(mb.Cb[r*ChromaSize:(r+1)*ChromaSize], cb[(cy+r)*cStride+cx:])
			copy(mb.Cr[r*ChromaSize:(r+1)*ChromaSize], cr[(cy+r)*cStride+cx:])
		}
	}
	return nil
}

// StoreRecon writes the reconstructed picture into planar buffers with the
// given strides.
func (f *Frame) StoreRecon(y, cb, cr []byte, yStride, cStride int) {
	for i := range f.MBs {
		mb := &f.MBs[i]
		px, py := mb.Col*MBSize, mb.Row*MBSize
		for r := 0; r < MBSize; r++ {
			copy(y[(py+r)*yStride+px:], mb.RecY[r*MBSize:(r+1)*MBSize])
		}
		cx, cy := mb.Col*ChromaSize, mb.Row*ChromaSize
		for r := 0; r < ChromaSize; r++ {
			copy(cb[(cy+r)*cStride+cx:], mb.RecCb[r*ChromaSize:(r+1)*ChromaSize])
			copy(cr[(cy+r)*cStride+cx:], mb.RecCr[r*ChromaSize:(r+1)*ChromaSize])
		}
	}
}
