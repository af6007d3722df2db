// Package nal packages RBSP payloads into H.264 NAL units and Annex B byte
// streams, and writes and parses the parameter sets and slice header of a
// baseline intra stream.
package nal

import (
	"github.com/pkg/errors"

	"github.com/deepteams/h264/internal/bitio"
)

// NAL unit types used by the encoder (Table 7-1).
const (
	TypeSlice = 1
	TypeIDR   = 5
	TypeSEI   = 6
	TypeSPS   = 7
	TypePPS   = 8
	TypeAUD   = 9
)

// Reference priority of parameter sets and IDR slices.
const RefIdcHighest = 3

// StartCode prefixes every NAL unit the encoder writes.
var StartCode = []byte{0, 0, 0, 1}

// Errors.
var (
	ErrTruncated = errors.New("nal: truncated data")
	ErrForbidden = errors.New("nal: forbidden_zero_bit set")
)

// Unit is one NAL unit before emulation prevention.
type Unit struct {
	RefIdc int    // nal_ref_idc, 0..3
	Type   int    // nal_unit_type, 0..31
	RBSP   []byte // payload including rbsp_trailing_bits
}

// Header returns the one-byte NAL unit header.
func (u Unit) Header() byte {
	return byte(u.RefIdc&3)<<5 | byte(u.Type&31)
}

// Marshal returns the unit as it appears in an Annex B stream: start code,
// header and the escaped payload.
func (u Unit) Marshal() []byte {
	return u.AppendTo(make([]byte, 0, len(StartCode)+1+len(u.RBSP)+len(u.RBSP)/64+1))
}

// AppendTo appends the Annex B form of u to dst.
func (u Unit) AppendTo(dst []byte) []byte {
	dst = append(dst, StartCode...)
	dst = append(dst, u.Header())
	return bitio.AppendEBSP(dst, u.RBSP)
}

// ParseUnit decodes a NAL unit without start code and removes emulation
// prevention bytes from its payload.
func ParseUnit(data []byte) (Unit, error) {
	if len(data) == 0 {
		return Unit{}, errors.Wrap(ErrTruncated, "empty NAL unit")
	}
	if data[0]&0x80 != 0 {
		return Unit{}, ErrForbidden
	}
	return Unit{
		RefIdc: int(data[0] >> 5 & 3),
		Type:   int(data[0] & 31),
		RBSP:   bitio.EBSPToRBSP(data[1:]),
	}, nil
}

// TypeName returns a short name for a NAL unit type.
func TypeName(t int) string {
	switch t {
	case TypeSlice:
		return "slice"
	case TypeIDR:
		return "IDR"
	case TypeSEI:
		return "SEI"
	case TypeSPS:
		return "SPS"
	case TypePPS:
		return "PPS"
	case TypeAUD:
		return "AUD"
	}
	return "other"
}

// Split cuts an Annex B byte stream at its 3- and 4-byte start codes and
// returns the NAL units without start codes. Bytes before the first start
// code are ignored.
func Split(stream []byte) [][]byte {
	var units [][]byte
	start := -1
	for i := 0; i+2 < len(stream); {
		if stream[i+2] > 1 {
			i += 3
			continue
		}
		if stream[i] != 0 || stream[i+1] != 0 || stream[i+2] != 1 {
			i++
			continue
		}
		if start >= 0 {
			end := i
			for end > start && stream[end-1] == 0 {
				end--
			}
			if end > start {
				units = append(units, stream[start:end])
			}
		}
		i += 3
		start = i
	}
	if start >= 0 && start < len(stream) {
		units = append(units, stream[start:])
	}
	return units
}
