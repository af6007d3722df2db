package nal

import (
	"io"

	"github.com/pkg/errors"

	"github.com/deepteams/h264/internal/pool"
)

// Writer emits NAL units as an Annex B byte stream. It is not safe for
// concurrent use. After a failed write every later call returns the same
// error.
type Writer struct {
	w   io.Writer
	n   int64
	err error
}

// NewWriter returns a Writer appending to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteUnits writes units with their start codes in a single call to the
// underlying writer, so a frame is either handed over whole or not at all.
func (w *Writer) WriteUnits(units ...Unit) error {
	if w.err != nil {
		return w.err
	}
	size := 0
	for _, u := range units {
		// Worst case one escape byte per two payload bytes.
		size += len(StartCode) + 1 + len(u.RBSP)*3/2 + 1
	}
	buf := pool.Get(size)[:0]
	for _, u := range units {
		buf = u.AppendTo(buf)
	}
	n, err := w.w.Write(buf)
	w.n += int64(n)
	pool.Put(buf)
	if err == nil && n < len(buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		w.err = errors.Wrap(err, "nal: write byte stream")
	}
	return w.err
}

// Written returns the number of bytes handed to the underlying writer.
func (w *Writer) Written() int64 {
	return w.n
}

// Err returns the first write error, if any.
func (w *Writer) Err() error {
	return w.err
}
