package bitio

import "github.com/pkg/errors"

// ErrUnexpectedEOF is returned when a read runs past the end of the data.
var ErrUnexpectedEOF = errors.New("bitio: read past end of data")

// Reader reads MSB-first bit fields from an RBSP.
//
// Errors are sticky: once a read fails every following read returns zero
// and Err reports the first failure, so a parser can read a whole syntax
// structure and check the error once.
type Reader struct {
	buf []byte
	pos int // bit position
	err error
}

// NewReader creates a Reader over data. data should already have its
// emulation prevention bytes removed.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// ReadBits reads n bits (0 <= n <= 32).
func (r *Reader) ReadBits(n int) uint32 {
	if r.err != nil || n <= 0 {
		return 0
	}
	if r.pos+n > len(r.buf)*8 {
		r.err = errors.Wrapf(ErrUnexpectedEOF, "reading %d bits at bit %d", n, r.pos)
		return 0
	}
	var v uint32
	for i := 0; i < n; i++ {
		b := r.buf[r.pos>>3] >> uint(7-r.pos&7) & 1
		v = v<<1 | uint32(b)
		r.pos++
	}
	return v
}

// ReadBit reads one bit.
func (r *Reader) ReadBit() int {
	return int(r.ReadBits(1))
}

// ReadFlag reads one bit as a boolean.
func (r *Reader) ReadFlag() bool {
	return r.ReadBits(1) == 1
}

// ReadUE reads an unsigned Exp-Golomb code.
func (r *Reader) ReadUE() uint32 {
	zeros := 0
	for r.err == nil && r.ReadBits(1) == 0 {
		zeros++
		if zeros > 31 {
			r.err = errors.Errorf("bitio: exp-golomb prefix too long at bit %d", r.pos)
			return 0
		}
	}
	if r.err != nil {
		return 0
	}
	return uint32((uint64(1)<<uint(zeros) | uint64(r.ReadBits(zeros))) - 1)
}

// ReadSE reads a signed Exp-Golomb code.
func (r *Reader) ReadSE() int32 {
	k := int64(r.ReadUE())
	if k&1 == 1 {
		return int32((k + 1) / 2)
	}
	return int32(-k / 2)
}

// ByteAligned reports whether the read position is on a byte boundary.
func (r *Reader) ByteAligned() bool {
	return r.pos&7 == 0
}

// BitPos returns the current bit offset.
func (r *Reader) BitPos() int {
	return r.pos
}

// BitsLeft returns the number of unread bits.
func (r *Reader) BitsLeft() int {
	return len(r.buf)*8 - r.pos
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error {
	return r.err
}
