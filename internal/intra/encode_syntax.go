package intra

import (
	"github.com/deepteams/h264/internal/bitio"
	"github.com/deepteams/h264/internal/dsp"
	"github.com/deepteams/h264/internal/grid"
)

// mb_type values of an I slice (Table 7-11).
const (
	mbTypeI4x4 = 0
	mbTypeI16  = 1
	mbTypePCM  = 25
)

// intraCBPCode maps coded_block_pattern (luma | chroma<<4) to its me(v)
// codeNum for intra macroblocks (Table 9-4).
var intraCBPCode = [48]uint32{
	3, 29, 30, 17, 31, 18, 37, 8, 32, 38, 19, 9, 20, 10, 11, 2,
	16, 33, 34, 21, 35, 22, 39, 4, 36, 40, 23, 5, 24, 6, 7, 1,
	41, 42, 43, 25, 44, 26, 46, 12, 45, 47, 27, 13, 28, 14, 15, 0,
}

// MBType returns mb_type for a finalized macroblock.
func MBType(mb *grid.MacroBlock) int {
	switch {
	case mb.PCM:
		return mbTypePCM
	case mb.Intra16x16:
		t := mbTypeI16 + mb.Mode16 + 4*mb.CBPChroma
		if mb.CBPLuma != 0 {
			t += 12
		}
		return t
	}
	return mbTypeI4x4
}

// writeMB writes macroblock_layer() of mb to w.
func (enc *Encoder) writeMB(w *bitio.Writer, mb *grid.MacroBlock) {
	w.PutUE(uint32(MBType(mb)))
	if mb.PCM {
		w.AlignZero()
		w.PutBytes(mb.Y[:])
		w.PutBytes(mb.Cb[:])
		w.PutBytes(mb.Cr[:])
		return
	}

	if !mb.Intra16x16 {
		for blk := 0; blk < grid.LumaBlocks; blk++ {
			mode, pred := mb.Modes4[blk], enc.predictedMode4(mb, blk)
			if mode == pred {
				w.PutBit(1)
				continue
			}
			w.PutBit(0)
			if mode > pred {
				mode--
			}
			w.PutBits(uint32(mode), 3)
		}
	}
	w.PutUE(uint32(mb.ChromaMode))

	if mb.Intra16x16 {
		w.PutSE(0)
		w.Append(mb.Bits)
		return
	}
	cbp := mb.CBPLuma | mb.CBPChroma<<4
	w.PutUE(intraCBPCode[cbp])
	if cbp > 0 {
		w.PutSE(0)
		w.Append(mb.Bits)
	}
}

// predictedMode4 returns predIntra4x4PredMode of block blk (8.3.1.1). A
// missing neighbor makes the prediction DC; a neighbor not coded Intra4x4
// contributes DC.
func (enc *Encoder) predictedMode4(mb *grid.MacroBlock, blk int) int {
	left := enc.frame.LumaNeighbor(mb.Index, blk, grid.Left)
	up := enc.frame.LumaNeighbor(mb.Index, blk, grid.Up)
	if !left.Available() || !up.Available() {
		return dsp.I4DC
	}
	return min(enc.neighborMode4(mb, left), enc.neighborMode4(mb, up))
}

func (enc *Encoder) neighborMode4(cur *grid.MacroBlock, r grid.Ref) int {
	mb := cur
	if r.Kind == grid.External {
		mb = enc.frame.MB(r.MB)
	}
	if mb.PCM || mb.Intra16x16 {
		return dsp.I4DC
	}
	return mb.Modes4[r.Block]
}
