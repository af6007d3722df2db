package nal

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/deepteams/h264/internal/bitio"
)

// seiUserDataUnregistered is the payloadType of user_data_unregistered().
const seiUserDataUnregistered = 5

// EncoderUUID identifies user data written by this encoder.
var EncoderUUID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/deepteams/h264"))

// UserData is a user_data_unregistered SEI message.
type UserData struct {
	UUID    uuid.UUID
	Payload []byte
}

// Unit wraps the message in an SEI NAL unit.
func (d UserData) Unit() Unit {
	size := len(d.UUID) + len(d.Payload)
	w := bitio.NewWriter(size + 8)
	putSEIValue(w, seiUserDataUnregistered)
	putSEIValue(w, size)
	w.PutBytes(d.UUID[:])
	w.PutBytes(d.Payload)
	w.TrailingBits()
	return Unit{Type: TypeSEI, RBSP: w.Bytes()}
}

// putSEIValue writes payloadType or payloadSize: a run of 0xFF bytes and a
// final byte below 0xFF.
func putSEIValue(w *bitio.Writer, v int) {
	for ; v >= 0xff; v -= 0xff {
		w.PutBits(0xff, 8)
	}
	w.PutBits(uint32(v), 8)
}

// ParseUserData returns the user_data_unregistered messages of an SEI RBSP.
// Other message types are skipped.
func ParseUserData(rbsp []byte) ([]UserData, error) {
	var out []UserData
	p := rbsp
	// A message needs at least the type and size bytes; the trailing bits
	// byte 0x80 ends the list.
	for len(p) > 1 || (len(p) == 1 && p[0] != 0x80) {
		typ, n, ok := seiValue(p)
		if !ok {
			return nil, errors.Wrap(ErrTruncated, "SEI payload type")
		}
		p = p[n:]
		size, n, ok := seiValue(p)
		if !ok {
			return nil, errors.Wrap(ErrTruncated, "SEI payload size")
		}
		p = p[n:]
		if size > len(p) {
			return nil, errors.Wrapf(ErrTruncated, "SEI payload of %d bytes, %d left", size, len(p))
		}
		if typ == seiUserDataUnregistered {
			if size < len(uuid.UUID{}) {
				return nil, errors.Wrap(ErrTruncated, "user data without UUID")
			}
			var d UserData
			copy(d.UUID[:], p)
			d.Payload = append([]byte(nil), p[len(d.UUID):size]...)
			out = append(out, d)
		}
		p = p[size:]
	}
	return out, nil
}

func seiValue(p []byte) (v, n int, ok bool) {
	for n < len(p) {
		b := p[n]
		n++
		v += int(b)
		if b != 0xff {
			return v, n, true
		}
	}
	return 0, 0, false
}
