package nal

import (
	"math/bits"

	"github.com/pkg/errors"

	"github.com/deepteams/h264/internal/bitio"
)

// ProfileBaseline is profile_idc of the streams the encoder produces.
const ProfileBaseline = 66

// ErrUnsupported is returned when parsing meets syntax the package does not
// handle.
var ErrUnsupported = errors.New("nal: unsupported syntax")

// SPS is a sequence parameter set. Only the fields of a frame-only stream
// without VUI are kept.
type SPS struct {
	ProfileIDC      int
	ConstraintFlags uint8 // constraint_set0..5 flags and reserved bits
	LevelIDC        int
	ID              int

	Log2MaxFrameNum int // 4..16
	POCType         int
	Log2MaxPOCLsb   int // 4..16, POC type 0
	NumRefFrames    int

	WidthMBs, HeightMBs int

	// Frame cropping in chroma sample units (two luma samples).
	CropLeft, CropRight, CropTop, CropBottom int
}

// level is one row of Table A-1: the largest frame size in macroblocks a
// level admits.
type level struct {
	idc   int
	maxFS int
}

var levels = []level{
	{10, 99}, {11, 396}, {12, 396}, {13, 396}, {20, 396}, {21, 792},
	{22, 1620}, {30, 1620}, {31, 3600}, {32, 5120}, {40, 8192}, {41, 8192},
	{42, 8704}, {50, 22080}, {51, 36864}, {52, 36864}, {60, 139264},
	{61, 139264}, {62, 139264},
}

// LevelFor returns the lowest level_idc whose frame size limits cover a
// picture of widthMBs x heightMBs macroblocks, and false when none does.
func LevelFor(widthMBs, heightMBs int) (int, bool) {
	fs := widthMBs * heightMBs
	for _, l := range levels {
		// Each side is also bounded by sqrt(8 * MaxFS).
		side := 8 * l.maxFS
		if fs <= l.maxFS && widthMBs*widthMBs <= side && heightMBs*heightMBs <= side {
			return l.idc, true
		}
	}
	return 0, false
}

// CheckLevel reports whether level_idc idc exists and admits a picture of
// widthMBs x heightMBs macroblocks.
func CheckLevel(idc, widthMBs, heightMBs int) error {
	for _, l := range levels {
		if l.idc != idc {
			continue
		}
		side := 8 * l.maxFS
		if widthMBs*heightMBs > l.maxFS || widthMBs*widthMBs > side || heightMBs*heightMBs > side {
			return errors.Errorf("nal: level %d admits at most %d macroblocks, picture has %dx%d",
				idc, l.maxFS, widthMBs, heightMBs)
		}
		return nil
	}
	return errors.Errorf("nal: unknown level_idc %d", idc)
}

// Log2MaxForFrames sizes log2_max_frame_num and log2_max_pic_order_cnt_lsb
// from the expected number of frames: max(0, floor(log2(frames)) - 4) + 4,
// at most 16.
func Log2MaxForFrames(frames int) int {
	if frames < 1 {
		frames = 1
	}
	minus4 := bits.Len(uint(frames)) - 1 - 4
	return max(0, min(12, minus4)) + 4
}

// NewSPS returns the parameter set of a baseline intra stream of
// widthMBs x heightMBs macroblocks whose visible picture is rawWidth x
// rawHeight luma samples.
func NewSPS(widthMBs, heightMBs, rawWidth, rawHeight, frames int) (*SPS, error) {
	lvl, ok := LevelFor(widthMBs, heightMBs)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupported, "%dx%d macroblocks exceed every level", widthMBs, heightMBs)
	}
	log2 := Log2MaxForFrames(frames)
	return &SPS{
		ProfileIDC:      ProfileBaseline,
		LevelIDC:        lvl,
		Log2MaxFrameNum: log2,
		Log2MaxPOCLsb:   log2,
		WidthMBs:        widthMBs,
		HeightMBs:       heightMBs,
		CropRight:       (widthMBs*16 - rawWidth) / 2,
		CropBottom:      (heightMBs*16 - rawHeight) / 2,
	}, nil
}

// Cropped reports whether frame_cropping_flag is set.
func (s *SPS) Cropped() bool {
	return s.CropLeft|s.CropRight|s.CropTop|s.CropBottom != 0
}

// Width returns the visible width in luma samples.
func (s *SPS) Width() int {
	return s.WidthMBs*16 - 2*(s.CropLeft+s.CropRight)
}

// Height returns the visible height in luma samples.
func (s *SPS) Height() int {
	return s.HeightMBs*16 - 2*(s.CropTop+s.CropBottom)
}

// WriteRBSP writes seq_parameter_set_rbsp() including the trailing bits.
func (s *SPS) WriteRBSP(w *bitio.Writer) {
	w.PutBits(uint32(s.ProfileIDC), 8)
	w.PutBits(uint32(s.ConstraintFlags), 8)
	w.PutBits(uint32(s.LevelIDC), 8)
	w.PutUE(uint32(s.ID))
	w.PutUE(uint32(s.Log2MaxFrameNum - 4))
	w.PutUE(uint32(s.POCType))
	if s.POCType == 0 {
		w.PutUE(uint32(s.Log2MaxPOCLsb - 4))
	}
	w.PutUE(uint32(s.NumRefFrames))
	w.PutFlag(false) // gaps_in_frame_num_value_allowed_flag
	w.PutUE(uint32(s.WidthMBs - 1))
	w.PutUE(uint32(s.HeightMBs - 1))
	w.PutFlag(true)  // frame_mbs_only_flag
	w.PutFlag(false) // direct_8x8_inference_flag
	w.PutFlag(s.Cropped())
	if s.Cropped() {
		w.PutUE(uint32(s.CropLeft))
		w.PutUE(uint32(s.CropRight))
		w.PutUE(uint32(s.CropTop))
		w.PutUE(uint32(s.CropBottom))
	}
	w.PutFlag(false) // vui_parameters_present_flag
	w.TrailingBits()
}

// Unit wraps the parameter set in a NAL unit.
func (s *SPS) Unit() Unit {
	w := bitio.NewWriter(32)
	s.WriteRBSP(w)
	return Unit{RefIdc: RefIdcHighest, Type: TypeSPS, RBSP: w.Bytes()}
}

// ParseSPS decodes seq_parameter_set_rbsp(). Streams with interlaced
// coding or separate colour planes are rejected.
func ParseSPS(rbsp []byte) (*SPS, error) {
	r := bitio.NewReader(rbsp)
	s := &SPS{
		ProfileIDC:      int(r.ReadBits(8)),
		ConstraintFlags: uint8(r.ReadBits(8)),
		LevelIDC:        int(r.ReadBits(8)),
		ID:              int(r.ReadUE()),
	}
	switch s.ProfileIDC {
	case 100, 110, 122, 244, 44, 83, 86, 118, 128, 138, 139, 134, 135:
		chromaFormat := r.ReadUE()
		if chromaFormat == 3 && r.ReadFlag() {
			return nil, errors.Wrap(ErrUnsupported, "separate colour planes")
		}
		r.ReadUE()  // bit_depth_luma_minus8
		r.ReadUE()  // bit_depth_chroma_minus8
		r.ReadBit() // qpprime_y_zero_transform_bypass_flag
		if r.ReadFlag() {
			lists := 8
			if chromaFormat == 3 {
				lists = 12
			}
			for i := 0; i < lists; i++ {
				if !r.ReadFlag() {
					continue
				}
				size := 16
				if i >= 6 {
					size = 64
				}
				skipScalingList(r, size)
			}
		}
	}
	s.Log2MaxFrameNum = int(r.ReadUE()) + 4
	s.POCType = int(r.ReadUE())
	switch s.POCType {
	case 0:
		s.Log2MaxPOCLsb = int(r.ReadUE()) + 4
	case 1:
		r.ReadBit() // delta_pic_order_always_zero_flag
		r.ReadSE()  // offset_for_non_ref_pic
		r.ReadSE()  // offset_for_top_to_bottom_field
		n := r.ReadUE()
		if n > 255 {
			return nil, errors.Wrapf(ErrUnsupported, "%d frames in POC cycle", n)
		}
		for i := uint32(0); i < n; i++ {
			r.ReadSE()
		}
	}
	s.NumRefFrames = int(r.ReadUE())
	r.ReadBit() // gaps_in_frame_num_value_allowed_flag
	s.WidthMBs = int(r.ReadUE()) + 1
	s.HeightMBs = int(r.ReadUE()) + 1
	if frameOnly := r.ReadFlag(); !frameOnly && r.Err() == nil {
		return nil, errors.Wrap(ErrUnsupported, "field coding")
	}
	r.ReadBit() // direct_8x8_inference_flag
	if r.ReadFlag() {
		s.CropLeft = int(r.ReadUE())
		s.CropRight = int(r.ReadUE())
		s.CropTop = int(r.ReadUE())
		s.CropBottom = int(r.ReadUE())
	}
	if err := r.Err(); err != nil {
		return nil, errors.Wrap(ErrTruncated, "sequence parameter set")
	}
	if s.Width() <= 0 || s.Height() <= 0 {
		return nil, errors.Errorf("nal: cropping leaves an empty %dx%d picture", s.Width(), s.Height())
	}
	return s, nil
}

func skipScalingList(r *bitio.Reader, size int) {
	last, next := int32(8), int32(8)
	for j := 0; j < size; j++ {
		if next != 0 {
			next = (last + r.ReadSE() + 256) % 256
		}
		if next != 0 {
			last = next
		}
	}
}
