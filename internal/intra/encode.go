// Package intra encodes one picture as an H.264 baseline I slice.
//
// Encoding runs in three passes over the macroblock grid, all in raster
// order: analysis (mode decision, PCM fallback, transform, quantization and
// reconstruction), residual coding with CAVLC into each macroblock's bit
// fragment, and finally the slice_data() syntax.
package intra

import (
	"github.com/deepteams/h264/internal/bitio"
	"github.com/deepteams/h264/internal/cavlc"
	"github.com/deepteams/h264/internal/dsp"
	"github.com/deepteams/h264/internal/grid"
)

// Default PCM fallback thresholds on the SAD of the chosen prediction.
const (
	DefaultLumaPCMThreshold   = 2000
	DefaultChromaPCMThreshold = 1000
)

// Config holds the per-stream coding parameters. It is assumed valid; the
// public API validates it.
type Config struct {
	LumaQP   int // 0..51
	ChromaQP int // QPc used for both chroma planes

	// A macroblock whose best luma (chroma) prediction SAD exceeds the
	// threshold is sent as I_PCM. Zero or negative disables the fallback
	// for that component.
	LumaPCMThreshold   int
	ChromaPCMThreshold int
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		LumaQP:             28,
		ChromaQP:           28,
		LumaPCMThreshold:   DefaultLumaPCMThreshold,
		ChromaPCMThreshold: DefaultChromaPCMThreshold,
	}
}

// ChromaQPOffset returns chroma_qp_index_offset for the configured QPs and
// whether it is representable (in [-12, 12]).
func (c Config) ChromaQPOffset() (int, bool) {
	qpi, ok := dsp.ChromaQPIndex(c.ChromaQP)
	if !ok {
		return 0, false
	}
	off := qpi - c.LumaQP
	return off, off >= -12 && off <= 12
}

// Stats summarizes the decisions made for one frame.
type Stats struct {
	I4x4   int // macroblocks coded Intra4x4
	I16x16 int // macroblocks coded Intra16x16
	PCM    int // macroblocks sent raw
	Bits   int // size of slice_data() in bits
}

// Encoder encodes frames of a fixed grid geometry.
type Encoder struct {
	cfg   Config
	qpc   int
	frame *grid.Frame
	ctx   *cavlc.Context
	it    MBIterator
	stats Stats

	// Intra4x4 search scratch: working reconstruction, modes and levels.
	rec4    [grid.MBSize * grid.MBSize]uint8
	modes4  [grid.LumaBlocks]int
	levels4 [grid.LumaBlocks][16]int32
}

// NewEncoder creates an encoder for frames with f's geometry.
func NewEncoder(f *grid.Frame, cfg Config) *Encoder {
	off, ok := cfg.ChromaQPOffset()
	if !ok {
		panic("intra: chroma QP not representable")
	}
	return &Encoder{
		cfg:   cfg,
		qpc:   dsp.ChromaQP(cfg.LumaQP + off),
		frame: f,
		ctx:   cavlc.NewContext(f),
	}
}

// Frame returns the grid the encoder works on. Load new samples into it
// before each call to Encode.
func (enc *Encoder) Frame() *grid.Frame {
	return enc.frame
}

// Stats returns the statistics of the last encoded frame.
func (enc *Encoder) Stats() Stats {
	return enc.stats
}

// Encode codes the loaded frame and appends slice_data() to w. w must
// already hold the slice header so that PCM alignment is relative to the
// start of the NAL unit payload.
func (enc *Encoder) Encode(w *bitio.Writer) {
	enc.stats = Stats{}
	enc.ctx.Reset()
	for i := range enc.frame.MBs {
		mb := &enc.frame.MBs[i]
		mb.Reset()
		if mb.Bits == nil {
			mb.Bits = bitio.NewWriter(64)
		}
	}

	for enc.InitIterator(); !enc.it.IsDone(); enc.it.Next() {
		enc.analyzeMB(enc.it.MB())
	}
	for enc.InitIterator(); !enc.it.IsDone(); enc.it.Next() {
		enc.codeResidual(enc.it.MB())
	}

	start := w.BitLen()
	for enc.InitIterator(); !enc.it.IsDone(); enc.it.Next() {
		mb := enc.it.MB()
		enc.writeMB(w, mb)
		switch {
		case mb.PCM:
			enc.stats.PCM++
		case mb.Intra16x16:
			enc.stats.I16x16++
		default:
			enc.stats.I4x4++
		}
	}
	enc.stats.Bits = w.BitLen() - start
}
