package h264

import (
	"image"
	"io"

	"github.com/pkg/errors"

	"github.com/deepteams/h264/internal/bitio"
	"github.com/deepteams/h264/internal/grid"
	"github.com/deepteams/h264/internal/intra"
	"github.com/deepteams/h264/internal/nal"
	"github.com/deepteams/h264/yuv"
)

// EncoderUUID tags the SEI user data written from Options.UserData.
var EncoderUUID = nal.EncoderUUID

// FrameStats describes one encoded frame.
type FrameStats struct {
	Index  int // frame number in the stream, from 0
	I4x4   int // macroblocks coded with Intra4x4 prediction
	I16x16 int // macroblocks coded with Intra16x16 prediction
	PCM    int // macroblocks sent as raw samples
	Bits   int // size of the macroblock layer in bits
	Bytes  int // bytes written for the frame, including parameter sets
}

// Encoder writes a sequence of equally sized frames as an H.264 Annex B
// stream. Each frame becomes one IDR access unit. An Encoder is not safe for
// concurrent use.
type Encoder struct {
	width, height int
	opts          Options

	sps *nal.SPS
	pps *nal.PPS

	frame *grid.Frame
	core  *intra.Encoder
	bw    *bitio.Writer
	out   *nal.Writer

	frames int
	closed bool
}

// NewEncoder returns an Encoder writing to w for pictures of width x height
// luma samples. Both must be positive and even. Sizes that are not
// multiples of 16 are padded internally and cropped in the stream. If opts
// is nil, DefaultOptions() is used.
func NewEncoder(w io.Writer, width, height int, opts *Options) (*Encoder, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := yuv.CheckSize(width, height); err != nil {
		return nil, err
	}
	pw, ph := yuv.PaddedSize(width, height)
	cols, rows := pw/grid.MBSize, ph/grid.MBSize
	sps, err := nal.NewSPS(cols, rows, width, height, opts.FrameCount)
	if err != nil {
		return nil, errors.Wrapf(ErrDimension, "%dx%d: %v", width, height, err)
	}
	if opts.Level != 0 {
		if err := nal.CheckLevel(opts.Level, cols, rows); err != nil {
			return nil, errors.Wrap(ErrInvalidOptions, err.Error())
		}
		sps.LevelIDC = opts.Level
	}
	frame, err := grid.NewFrame(pw, ph, width, height)
	if err != nil {
		return nil, err
	}
	cfg := opts.config()
	offset, _ := cfg.ChromaQPOffset()
	pps := &nal.PPS{
		PicInitQP:           opts.LumaQP,
		ChromaQPIndexOffset: offset,
		DeblockingControl:   true,
	}

	return &Encoder{
		width:  width,
		height: height,
		opts:   *opts,
		sps:    sps,
		pps:    pps,
		frame:  frame,
		core:   intra.NewEncoder(frame, cfg),
		bw:     bitio.NewWriter(pw * ph / 2),
		out:    nal.NewWriter(w),
	}, nil
}

// Width returns the visible picture width.
func (e *Encoder) Width() int { return e.width }

// Height returns the visible picture height.
func (e *Encoder) Height() int { return e.height }

// Frames returns the number of frames encoded so far.
func (e *Encoder) Frames() int { return e.frames }

// EncodeFrame encodes f, whose visible size must match the encoder's. The
// first call also writes the parameter sets. After a write error the
// encoder keeps returning that error.
func (e *Encoder) EncodeFrame(f *yuv.Frame) (FrameStats, error) {
	if e.closed {
		return FrameStats{}, ErrClosed
	}
	if err := e.out.Err(); err != nil {
		return FrameStats{}, err
	}
	if f.RawWidth != e.width || f.RawHeight != e.height || f.Width != e.frame.Width || f.Height != e.frame.Height {
		return FrameStats{}, errors.Wrapf(ErrDimension, "frame is %dx%d, encoder expects %dx%d",
			f.RawWidth, f.RawHeight, e.width, e.height)
	}
	if err := e.frame.Load(f.Y, f.Cb, f.Cr, f.YStride, f.CStride); err != nil {
		return FrameStats{}, err
	}

	idx := e.frames
	e.bw.Reset()
	hdr := nal.SliceHeader{
		SliceType: nal.SliceIAll,
		IDR:       true,
		IDRPicID:  idx % 65536,
		// Each frame is a lone IDR, so frame_num stays 0 and only the
		// picture order count advances.
		POCLsb:            2 * idx % (1 << uint(e.sps.Log2MaxPOCLsb)),
		DisableDeblocking: 1,
	}
	hdr.Write(e.bw, e.sps, e.pps)
	e.core.Encode(e.bw)
	e.bw.TrailingBits()

	units := make([]nal.Unit, 0, 4)
	if idx == 0 {
		units = append(units, e.sps.Unit(), e.pps.Unit())
		if e.opts.UserData != nil {
			units = append(units, nal.UserData{UUID: EncoderUUID, Payload: e.opts.UserData}.Unit())
		}
	}
	units = append(units, nal.Unit{RefIdc: nal.RefIdcHighest, Type: nal.TypeIDR, RBSP: e.bw.Bytes()})

	before := e.out.Written()
	if err := e.out.WriteUnits(units...); err != nil {
		return FrameStats{}, err
	}
	e.frames++

	st := e.core.Stats()
	return FrameStats{
		Index:  idx,
		I4x4:   st.I4x4,
		I16x16: st.I16x16,
		PCM:    st.PCM,
		Bits:   st.Bits,
		Bytes:  int(e.out.Written() - before),
	}, nil
}

// EncodeImage converts img to 4:2:0 and encodes it. The bounds of img must
// have the encoder's size.
func (e *Encoder) EncodeImage(img image.Image) (FrameStats, error) {
	if e.closed {
		return FrameStats{}, ErrClosed
	}
	b := img.Bounds()
	if b.Dx() != e.width || b.Dy() != e.height {
		return FrameStats{}, errors.Wrapf(ErrDimension, "image is %dx%d, encoder expects %dx%d",
			b.Dx(), b.Dy(), e.width, e.height)
	}
	f, err := yuv.FromImage(img)
	if err != nil {
		return FrameStats{}, err
	}
	defer f.Release()
	return e.EncodeFrame(f)
}

// Recon copies the decoder-side reconstruction of the last encoded frame
// into dst, which must have the encoder's size.
func (e *Encoder) Recon(dst *yuv.Frame) error {
	if e.frames == 0 {
		return errors.New("h264: no frame encoded yet")
	}
	if dst.Width != e.frame.Width || dst.Height != e.frame.Height {
		return errors.Wrapf(ErrDimension, "recon frame is %dx%d, want %dx%d",
			dst.Width, dst.Height, e.frame.Width, e.frame.Height)
	}
	e.frame.StoreRecon(dst.Y, dst.Cb, dst.Cr, dst.YStride, dst.CStride)
	return nil
}

// Close finishes the stream. It does not close the underlying writer and
// returns the first write error, if any. Later calls to EncodeFrame fail
// with ErrClosed.
func (e *Encoder) Close() error {
	if e.closed {
		return ErrClosed
	}
	e.closed = true
	return e.out.Err()
}
