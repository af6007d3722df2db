package h264

import (
	"github.com/pkg/errors"

	"github.com/deepteams/h264/internal/intra"
)

// Options controls the encoder. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	// LumaQP is the quantization parameter of every luma block (0-51).
	// Lower values give better quality and larger output.
	LumaQP int

	// ChromaQP is the quantization parameter of the chroma blocks (0-51).
	// It is signalled through chroma_qp_index_offset, so it must lie within
	// 12 index steps of LumaQP after the standard QPc mapping.
	ChromaQP int

	// FrameCount is the number of frames the caller expects to encode. It
	// sizes frame_num and pic_order_cnt_lsb in the headers; encoding more
	// frames is allowed and makes the picture order count wrap. Values below
	// 1 are treated as 1.
	FrameCount int

	// LumaPCMThreshold and ChromaPCMThreshold are the prediction SAD above
	// which a macroblock is sent as raw I_PCM samples. Zero or negative
	// disables the fallback for that component.
	LumaPCMThreshold   int
	ChromaPCMThreshold int

	// Level is level_idc times ten (for example 31 for level 3.1). Zero
	// selects the lowest level whose frame size limit covers the picture.
	Level int

	// UserData, when non-nil, is written once after the parameter sets as
	// an SEI user_data_unregistered message tagged with EncoderUUID.
	UserData []byte
}

// DefaultOptions returns QP 28 for luma and chroma, a single expected frame
// and the standard PCM thresholds of 2000 (luma) and 1000 (chroma).
func DefaultOptions() *Options {
	return &Options{
		LumaQP:             28,
		ChromaQP:           28,
		FrameCount:         1,
		LumaPCMThreshold:   intra.DefaultLumaPCMThreshold,
		ChromaPCMThreshold: intra.DefaultChromaPCMThreshold,
	}
}

// Validate returns an error wrapping ErrInvalidOptions describing the first
// invalid field, or nil.
func (o *Options) Validate() error {
	if o.LumaQP < 0 || o.LumaQP > 51 {
		return errors.Wrapf(ErrInvalidOptions, "LumaQP %d (must be 0-51)", o.LumaQP)
	}
	if o.ChromaQP < 0 || o.ChromaQP > 51 {
		return errors.Wrapf(ErrInvalidOptions, "ChromaQP %d (must be 0-51)", o.ChromaQP)
	}
	if _, ok := o.config().ChromaQPOffset(); !ok {
		return errors.Wrapf(ErrInvalidOptions, "ChromaQP %d cannot be signalled with LumaQP %d", o.ChromaQP, o.LumaQP)
	}
	if o.Level < 0 {
		return errors.Wrapf(ErrInvalidOptions, "Level %d", o.Level)
	}
	return nil
}

func (o *Options) config() intra.Config {
	return intra.Config{
		LumaQP:             o.LumaQP,
		ChromaQP:           o.ChromaQP,
		LumaPCMThreshold:   o.LumaPCMThreshold,
		ChromaPCMThreshold: o.ChromaPCMThreshold,
	}
}
