package nal

import (
	"github.com/pkg/errors"

	"github.com/deepteams/h264/internal/bitio"
)

// PPS is a picture parameter set for CAVLC coding with one slice group.
type PPS struct {
	ID, SPSID int

	PicInitQP           int // pic_init_qp_minus26 + 26
	ChromaQPIndexOffset int // -12..12

	// DeblockingControl sets deblocking_filter_control_present_flag so
	// slices can turn the loop filter off.
	DeblockingControl bool
}

// WriteRBSP writes pic_parameter_set_rbsp() including the trailing bits.
func (p *PPS) WriteRBSP(w *bitio.Writer) {
	w.PutUE(uint32(p.ID))
	w.PutUE(uint32(p.SPSID))
	w.PutFlag(false) // entropy_coding_mode_flag: CAVLC
	w.PutFlag(false) // bottom_field_pic_order_in_frame_present_flag
	w.PutUE(0)       // num_slice_groups_minus1
	w.PutUE(0)       // num_ref_idx_l0_default_active_minus1
	w.PutUE(0)       // num_ref_idx_l1_default_active_minus1
	w.PutFlag(false) // weighted_pred_flag
	w.PutBits(0, 2)  // weighted_bipred_idc
	w.PutSE(int32(p.PicInitQP - 26))
	w.PutSE(0) // pic_init_qs_minus26
	w.PutSE(int32(p.ChromaQPIndexOffset))
	w.PutFlag(p.DeblockingControl)
	w.PutFlag(false) // constrained_intra_pred_flag
	w.PutFlag(false) // redundant_pic_cnt_present_flag
	w.TrailingBits()
}

// Unit wraps the parameter set in a NAL unit.
func (p *PPS) Unit() Unit {
	w := bitio.NewWriter(16)
	p.WriteRBSP(w)
	return Unit{RefIdc: RefIdcHighest, Type: TypePPS, RBSP: w.Bytes()}
}

// ParsePPS decodes the part of pic_parameter_set_rbsp() the package writes.
// CABAC and slice groups are rejected.
func ParsePPS(rbsp []byte) (*PPS, error) {
	r := bitio.NewReader(rbsp)
	p := &PPS{
		ID:    int(r.ReadUE()),
		SPSID: int(r.ReadUE()),
	}
	if r.ReadFlag() {
		return nil, errors.Wrap(ErrUnsupported, "CABAC")
	}
	r.ReadBit()
	if r.ReadUE() != 0 {
		return nil, errors.Wrap(ErrUnsupported, "slice groups")
	}
	r.ReadUE()
	r.ReadUE()
	r.ReadBit()
	r.ReadBits(2)
	p.PicInitQP = int(r.ReadSE()) + 26
	r.ReadSE()
	p.ChromaQPIndexOffset = int(r.ReadSE())
	p.DeblockingControl = r.ReadFlag()
	r.ReadBit()
	r.ReadBit()
	if err := r.Err(); err != nil {
		return nil, errors.Wrap(ErrTruncated, "picture parameter set")
	}
	return p, nil
}
