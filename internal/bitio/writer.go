package bitio

import "math/bits"

// Writer is an MSB-first bit writer for H.264 syntax structures.
//
// Complete bytes are appended to buf as soon as they are formed. Up to seven
// pending bits stay right-aligned in acc until the next write completes the
// byte. Fragments produced by separate Writers can be joined at bit
// granularity with Append, which is how per-macroblock residual data is
// merged into slice data.
type Writer struct {
	buf  []byte // completed bytes
	acc  uint64 // pending bits, right-aligned
	nacc int    // number of pending bits in acc (0..7 between calls)
}

// NewWriter creates a Writer with room for expectedSize bytes.
func NewWriter(expectedSize int) *Writer {
	if expectedSize < 16 {
		expectedSize = 16
	}
	return &Writer{buf: make([]byte, 0, expectedSize)}
}

// Reset empties the writer and keeps its buffer.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.acc = 0
	w.nacc = 0
}

// PutBits writes the low n bits of v (0 <= n <= 32), most significant first.
func (w *Writer) PutBits(v uint32, n int) {
	if n <= 0 {
		return
	}
	if n < 32 {
		v &= 1<<uint(n) - 1
	}
	w.acc = w.acc<<uint(n) | uint64(v)
	w.nacc += n
	for w.nacc >= 8 {
		w.nacc -= 8
		w.buf = append(w.buf, byte(w.acc>>uint(w.nacc)))
	}
	w.acc &= 1<<uint(w.nacc) - 1
}

// PutBit writes a single bit; any non-zero b writes 1.
func (w *Writer) PutBit(b int) {
	if b != 0 {
		w.PutBits(1, 1)
	} else {
		w.PutBits(0, 1)
	}
}

// PutFlag writes a boolean as one bit.
func (w *Writer) PutFlag(f bool) {
	if f {
		w.PutBits(1, 1)
	} else {
		w.PutBits(0, 1)
	}
}

// PutUE writes x as an unsigned Exp-Golomb code ue(v): the binary expansion
// of x+1 preceded by one fewer zero bits than its length. x must be below
// 1<<32 - 1.
func (w *Writer) PutUE(x uint32) {
	v := uint64(x) + 1
	n := bits.Len64(v)
	w.PutBits(0, n-1)
	w.PutBits(uint32(v), n)
}

// PutSE writes n as a signed Exp-Golomb code se(v). Positive values map to
// 2n-1 and the rest to -2n.
func (w *Writer) PutSE(n int32) {
	if n > 0 {
		w.PutUE(uint32(2*int64(n) - 1))
	} else {
		w.PutUE(uint32(-2 * int64(n)))
	}
}

// PutBytes writes whole bytes at the current bit position.
func (w *Writer) PutBytes(p []byte) {
	if w.nacc == 0 {
		w.buf = append(w.buf, p...)
		return
	}
	for _, b := range p {
		w.PutBits(uint32(b), 8)
	}
}

// Append concatenates the bits of o onto w. o does not need to be byte
// aligned and is left unchanged.
func (w *Writer) Append(o *Writer) {
	if o == nil {
		return
	}
	w.PutBytes(o.buf)
	w.PutBits(uint32(o.acc), o.nacc)
}

// ByteAligned reports whether the bit length is a multiple of 8.
func (w *Writer) ByteAligned() bool {
	return w.nacc == 0
}

// AlignZero pads with zero bits up to the next byte boundary.
func (w *Writer) AlignZero() {
	if w.nacc != 0 {
		w.PutBits(0, 8-w.nacc)
	}
}

// TrailingBits writes rbsp_trailing_bits(): a stop bit equal to 1 followed
// by zero bits up to the byte boundary.
func (w *Writer) TrailingBits() {
	w.PutBits(1, 1)
	w.AlignZero()
}

// BitLen returns the total number of bits written.
func (w *Writer) BitLen() int {
	return len(w.buf)*8 + w.nacc
}

// Bytes returns the written bits as bytes. A partial final byte is padded
// with zero bits; the writer itself is not modified.
func (w *Writer) Bytes() []byte {
	if w.nacc == 0 {
		return w.buf
	}
	out := make([]byte, len(w.buf), len(w.buf)+1)
	copy(out, w.buf)
	return append(out, byte(w.acc<<uint(8-w.nacc)))
}
