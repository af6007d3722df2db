// Package yuv holds planar 4:2:0 pictures padded to whole macroblocks, and
// converts images and raw I420 files into them.
package yuv

import (
	"io"

	"github.com/pkg/errors"

	"github.com/deepteams/h264/internal/grid"
	"github.com/deepteams/h264/internal/pool"
)

// ErrDimension is returned for picture sizes that cannot be coded.
var ErrDimension = grid.ErrDimension

// Frame is an I420 picture whose planes are padded to a multiple of 16 luma
// samples by replicating the right column and bottom row.
type Frame struct {
	Width, Height       int // padded size
	RawWidth, RawHeight int // visible size

	Y, Cb, Cr        []byte
	YStride, CStride int

	buf []byte
}

// PaddedSize rounds a visible size up to whole macroblocks.
func PaddedSize(width, height int) (int, int) {
	return (width + grid.MBSize - 1) &^ (grid.MBSize - 1), (height + grid.MBSize - 1) &^ (grid.MBSize - 1)
}

// CheckSize reports an ErrDimension unless width and height are positive
// and even, as 4:2:0 cropping requires.
func CheckSize(width, height int) error {
	if width <= 0 || height <= 0 || width%2 != 0 || height%2 != 0 {
		return errors.Wrapf(ErrDimension, "%dx%d must be positive and even", width, height)
	}
	return nil
}

// NewFrame allocates a padded frame for a visible size of width x height.
// Call Release when the frame is no longer used.
func NewFrame(width, height int) (*Frame, error) {
	if err := CheckSize(width, height); err != nil {
		return nil, err
	}
	pw, ph := PaddedSize(width, height)
	ySize, cSize := pw*ph, pw*ph/4
	buf := pool.GetZeroed(ySize + 2*cSize)
	return &Frame{
		Width:     pw,
		Height:    ph,
		RawWidth:  width,
		RawHeight: height,
		Y:         buf[:ySize:ySize],
		Cb:        buf[ySize : ySize+cSize : ySize+cSize],
		Cr:        buf[ySize+cSize : ySize+2*cSize : ySize+2*cSize],
		YStride:   pw,
		CStride:   pw / 2,
		buf:       buf,
	}, nil
}

// Release returns the frame's planes to the buffer pool. The frame must not
// be used afterwards.
func (f *Frame) Release() {
	if f.buf != nil {
		pool.Put(f.buf)
	}
	f.buf, f.Y, f.Cb, f.Cr = nil, nil, nil, nil
}

// Pad fills the area outside the visible picture by replicating the last
// visible column and row of each plane.
func (f *Frame) Pad() {
	padPlane(f.Y, f.YStride, f.RawWidth, f.RawHeight, f.Width, f.Height)
	cw, ch := f.RawWidth/2, f.RawHeight/2
	padPlane(f.Cb, f.CStride, cw, ch, f.Width/2, f.Height/2)
	padPlane(f.Cr, f.CStride, cw, ch, f.Width/2, f.Height/2)
}

func padPlane(p []byte, stride, w, h, pw, ph int) {
	if w < pw {
		for y := 0; y < h; y++ {
			row := p[y*stride : y*stride+pw]
			v := row[w-1]
			for x := w; x < pw; x++ {
				row[x] = v
			}
		}
	}
	last := p[(h-1)*stride : (h-1)*stride+pw]
	for y := h; y < ph; y++ {
		copy(p[y*stride:y*stride+pw], last)
	}
}

// ReadI420 reads one raw planar frame of f's visible size from r and pads
// it. It returns io.EOF when r is exhausted before the frame starts and
// io.ErrUnexpectedEOF when it ends inside the frame.
func ReadI420(r io.Reader, f *Frame) error {
	first := true
	read := func(p []byte) error {
		_, err := io.ReadFull(r, p)
		if err == io.EOF && !first {
			err = io.ErrUnexpectedEOF
		}
		first = false
		return err
	}
	for y := 0; y < f.RawHeight; y++ {
		if err := read(f.Y[y*f.YStride : y*f.YStride+f.RawWidth]); err != nil {
			return err
		}
	}
	cw, ch := f.RawWidth/2, f.RawHeight/2
	for _, p := range [][]byte{f.Cb, f.Cr} {
		for y := 0; y < ch; y++ {
			if err := read(p[y*f.CStride : y*f.CStride+cw]); err != nil {
				return err
			}
		}
	}
	f.Pad()
	return nil
}

// WriteI420 writes the visible part of f as raw planar samples.
func WriteI420(w io.Writer, f *Frame) error {
	for y := 0; y < f.RawHeight; y++ {
		if _, err := w.Write(f.Y[y*f.YStride : y*f.YStride+f.RawWidth]); err != nil {
			return errors.Wrap(err, "yuv: write luma")
		}
	}
	cw, ch := f.RawWidth/2, f.RawHeight/2
	for _, p := range [][]byte{f.Cb, f.Cr} {
		for y := 0; y < ch; y++ {
			if _, err := w.Write(p[y*f.CStride : y*f.CStride+cw]); err != nil {
				return errors.Wrap(err, "yuv: write chroma")
			}
		}
	}
	return nil
}
