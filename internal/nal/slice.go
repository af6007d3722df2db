package nal

import (
	"github.com/pkg/errors"

	"github.com/deepteams/h264/internal/bitio"
)

// Slice types (Table 7-6). Values 5..9 additionally promise that every
// slice of the picture has the same type.
const (
	SliceP    = 0
	SliceI    = 2
	SliceIAll = 7
)

// SliceHeader holds slice_header() fields of an I slice.
type SliceHeader struct {
	FirstMB   int
	SliceType int
	PPSID     int
	FrameNum  int
	IDR       bool
	IDRPicID  int
	POCLsb    int
	QPDelta   int

	NoOutputOfPriorPics bool
	LongTermReference   bool

	// DisableDeblocking is disable_deblocking_filter_idc. It is written
	// only when the PPS has deblocking control.
	DisableDeblocking int
}

// Write writes slice_header() into w. The slice data follows directly,
// without alignment.
func (h *SliceHeader) Write(w *bitio.Writer, sps *SPS, pps *PPS) {
	w.PutUE(uint32(h.FirstMB))
	w.PutUE(uint32(h.SliceType))
	w.PutUE(uint32(h.PPSID))
	w.PutBits(uint32(h.FrameNum)&(1<<uint(sps.Log2MaxFrameNum)-1), sps.Log2MaxFrameNum)
	if h.IDR {
		w.PutUE(uint32(h.IDRPicID))
	}
	if sps.POCType == 0 {
		w.PutBits(uint32(h.POCLsb)&(1<<uint(sps.Log2MaxPOCLsb)-1), sps.Log2MaxPOCLsb)
	}
	// dec_ref_pic_marking() of a reference slice. I slices carry no
	// ref_pic_list_modification().
	if h.IDR {
		w.PutFlag(h.NoOutputOfPriorPics)
		w.PutFlag(h.LongTermReference)
	} else {
		w.PutFlag(false) // adaptive_ref_pic_marking_mode_flag
	}
	w.PutSE(int32(h.QPDelta))
	if pps.DeblockingControl {
		w.PutUE(uint32(h.DisableDeblocking))
		if h.DisableDeblocking != 1 {
			w.PutSE(0) // slice_alpha_c0_offset_div2
			w.PutSE(0) // slice_beta_offset_div2
		}
	}
}

// ParseSliceHeader reads the slice header of an I slice from r, leaving r
// at the first bit of slice_data().
func ParseSliceHeader(r *bitio.Reader, u Unit, sps *SPS, pps *PPS) (*SliceHeader, error) {
	h := &SliceHeader{
		FirstMB:   int(r.ReadUE()),
		SliceType: int(r.ReadUE()),
		PPSID:     int(r.ReadUE()),
		IDR:       u.Type == TypeIDR,
	}
	if r.Err() == nil && h.SliceType%5 != SliceI {
		return nil, errors.Wrapf(ErrUnsupported, "slice type %d", h.SliceType)
	}
	h.FrameNum = int(r.ReadBits(sps.Log2MaxFrameNum))
	if h.IDR {
		h.IDRPicID = int(r.ReadUE())
	}
	if sps.POCType == 0 {
		h.POCLsb = int(r.ReadBits(sps.Log2MaxPOCLsb))
	}
	if u.RefIdc != 0 {
		if h.IDR {
			h.NoOutputOfPriorPics = r.ReadFlag()
			h.LongTermReference = r.ReadFlag()
		} else if r.ReadFlag() {
			return nil, errors.Wrap(ErrUnsupported, "adaptive reference marking")
		}
	}
	h.QPDelta = int(r.ReadSE())
	if pps.DeblockingControl {
		h.DisableDeblocking = int(r.ReadUE())
		if h.DisableDeblocking != 1 {
			r.ReadSE()
			r.ReadSE()
		}
	}
	if err := r.Err(); err != nil {
		return nil, errors.Wrap(ErrTruncated, "slice header")
	}
	return h, nil
}
