package h264

import (
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/deepteams/h264/internal/bitio"
	"github.com/deepteams/h264/internal/nal"
)

// UnitInfo describes one NAL unit of a stream.
type UnitInfo struct {
	Type   int    // nal_unit_type
	Name   string // short name of the type
	RefIdc int    // nal_ref_idc
	Size   int    // bytes after the start code, including the header
}

// SliceInfo holds the header fields of one coded slice.
type SliceInfo struct {
	FirstMB   int
	IDR       bool
	SliceType int
	IDRPicID  int
	FrameNum  int
	POCLsb    int
	QP        int
}

// UserData is one SEI user_data_unregistered message.
type UserData struct {
	UUID    uuid.UUID
	Payload []byte
}

// StreamInfo summarizes an Annex B stream.
type StreamInfo struct {
	Profile int // profile_idc
	Level   int // level_idc

	Width, Height       int // visible size after cropping
	WidthMBs, HeightMBs int

	Log2MaxFrameNum     int
	Log2MaxPOCLsb       int
	PicInitQP           int
	ChromaQPIndexOffset int
	DeblockingControl   bool

	Units    []UnitInfo
	Slices   []SliceInfo
	UserData []UserData
}

// Frames returns the number of slices that start a picture.
func (s *StreamInfo) Frames() int {
	n := 0
	for _, sl := range s.Slices {
		if sl.FirstMB == 0 {
			n++
		}
	}
	return n
}

// Info reads an Annex B stream from r and decodes its parameter sets and
// slice headers. Slice data is not decoded.
func Info(r io.Reader) (*StreamInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "h264: read stream")
	}
	info := &StreamInfo{}
	var (
		sps *nal.SPS
		pps *nal.PPS
	)
	for _, raw := range nal.Split(data) {
		u, err := nal.ParseUnit(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "unit %d", len(info.Units))
		}
		info.Units = append(info.Units, UnitInfo{
			Type:   u.Type,
			Name:   nal.TypeName(u.Type),
			RefIdc: u.RefIdc,
			Size:   len(raw),
		})
		switch u.Type {
		case nal.TypeSPS:
			if sps, err = nal.ParseSPS(u.RBSP); err != nil {
				return nil, err
			}
			info.Profile = sps.ProfileIDC
			info.Level = sps.LevelIDC
			info.Width, info.Height = sps.Width(), sps.Height()
			info.WidthMBs, info.HeightMBs = sps.WidthMBs, sps.HeightMBs
			info.Log2MaxFrameNum = sps.Log2MaxFrameNum
			info.Log2MaxPOCLsb = sps.Log2MaxPOCLsb
		case nal.TypePPS:
			if pps, err = nal.ParsePPS(u.RBSP); err != nil {
				return nil, err
			}
			info.PicInitQP = pps.PicInitQP
			info.ChromaQPIndexOffset = pps.ChromaQPIndexOffset
			info.DeblockingControl = pps.DeblockingControl
		case nal.TypeSEI:
			msgs, err := nal.ParseUserData(u.RBSP)
			if err != nil {
				return nil, err
			}
			for _, m := range msgs {
				info.UserData = append(info.UserData, UserData{UUID: m.UUID, Payload: m.Payload})
			}
		case nal.TypeSlice, nal.TypeIDR:
			if sps == nil || pps == nil {
				return nil, errors.Wrapf(ErrNoParameterSets, "slice in unit %d", len(info.Units)-1)
			}
			h, err := nal.ParseSliceHeader(bitio.NewReader(u.RBSP), u, sps, pps)
			if err != nil {
				return nil, err
			}
			info.Slices = append(info.Slices, SliceInfo{
				FirstMB:   h.FirstMB,
				IDR:       h.IDR,
				SliceType: h.SliceType,
				IDRPicID:  h.IDRPicID,
				FrameNum:  h.FrameNum,
				POCLsb:    h.POCLsb,
				QP:        pps.PicInitQP + h.QPDelta,
			})
		}
	}
	if sps == nil || pps == nil {
		return nil, ErrNoParameterSets
	}
	return info, nil
}
