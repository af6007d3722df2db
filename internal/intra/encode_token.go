package intra

import (
	"github.com/deepteams/h264/internal/cavlc"
	"github.com/deepteams/h264/internal/grid"
)

// codeResidual writes residual() of mb with CAVLC into mb.Bits and records
// the coefficient counts later macroblocks need for their nC.
func (enc *Encoder) codeResidual(mb *grid.MacroBlock) {
	w := mb.Bits
	w.Reset()
	if mb.PCM {
		enc.ctx.SetPCM(mb.Index)
		return
	}

	var buf [16]int32
	if mb.Intra16x16 {
		cavlc.EncodeBlock(w, scan(&mb.LumaDC, 0, buf[:0]), enc.ctx.LumaNC(mb.Index, 0))
	}
	start := 0
	if mb.Intra16x16 {
		start = 1
	}
	for blk := 0; blk < grid.LumaBlocks; blk++ {
		if mb.CBPLuma&(1<<uint(blk/4)) == 0 {
			continue
		}
		n := cavlc.EncodeBlock(w, scan(&mb.LumaAC[blk], start, buf[:0]), enc.ctx.LumaNC(mb.Index, blk))
		enc.ctx.SetLuma(mb.Index, blk, n)
	}

	if mb.CBPChroma == 0 {
		return
	}
	for p := 0; p < 2; p++ {
		cavlc.EncodeBlock(w, mb.ChromaDC[p][:], cavlc.ChromaDCNC)
	}
	if mb.CBPChroma < 2 {
		return
	}
	for p := 0; p < 2; p++ {
		for blk := 0; blk < grid.ChromaBlock; blk++ {
			n := cavlc.EncodeBlock(w, scan(&mb.ChromaAC[p][blk], 1, buf[:0]), enc.ctx.ChromaNC(mb.Index, p, blk))
			enc.ctx.SetChroma(mb.Index, p, blk, n)
		}
	}
}

// scan appends the levels of a 4x4 block from zig-zag position start on to
// dst.
func scan(levels *[16]int32, start int, dst []int32) []int32 {
	for k := start; k < 16; k++ {
		dst = append(dst, levels[grid.CoeffScan[k]])
	}
	return dst
}
