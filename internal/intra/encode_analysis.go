package intra

import (
	"github.com/deepteams/h264/internal/dsp"
	"github.com/deepteams/h264/internal/grid"
)

// analyzeMB chooses the prediction of the current macroblock, quantizes its
// residual and reconstructs it. After it returns the macroblock is final and
// may serve as a prediction border.
func (enc *Encoder) analyzeMB(mb *grid.MacroBlock) {
	b16 := enc.it.Border16()
	var pred16 [256]uint8
	mode16, cost16 := bestLuma16(&b16, &mb.Y, &pred16)
	cost4 := enc.searchLuma4(mb)

	bcb, bcr := enc.it.Border8(0), enc.it.Border8(1)
	var predCb, predCr [64]uint8
	chromaMode, chromaCost := bestChroma(&bcb, &bcr, mb, &predCb, &predCr)

	mb.Intra16x16 = cost4 >= cost16
	mb.LumaCost = min(cost4, cost16)
	mb.ChromaCost = chromaCost

	if exceeds(mb.LumaCost, enc.cfg.LumaPCMThreshold) || exceeds(chromaCost, enc.cfg.ChromaPCMThreshold) {
		enc.setPCM(mb)
		return
	}

	if mb.Intra16x16 {
		mb.Mode16 = mode16
		enc.codeLuma16(mb, &pred16)
	} else {
		mb.Modes4 = enc.modes4
		mb.LumaAC = enc.levels4
		mb.RecY = enc.rec4
		for b8 := 0; b8 < 4; b8++ {
			for blk := b8 * 4; blk < b8*4+4; blk++ {
				if nonZero(mb.LumaAC[blk][:]) {
					mb.CBPLuma |= 1 << uint(b8)
					break
				}
			}
		}
	}

	mb.ChromaMode = chromaMode
	enc.codeChroma(mb, 0, &predCb)
	enc.codeChroma(mb, 1, &predCr)
	mb.CBPChroma = chromaPattern(mb)
	mb.Finalized = true
}

func exceeds(cost, threshold int) bool {
	return threshold > 0 && cost > threshold
}

// chromaPattern returns 2 when any chroma AC level is set, 1 when only DC
// levels are, and 0 otherwise.
func chromaPattern(mb *grid.MacroBlock) int {
	for p := range mb.ChromaAC {
		for blk := range mb.ChromaAC[p] {
			if nonZero(mb.ChromaAC[p][blk][1:]) {
				return 2
			}
		}
	}
	if nonZero(mb.ChromaDC[0][:]) || nonZero(mb.ChromaDC[1][:]) {
		return 1
	}
	return 0
}

func nonZero(levels []int32) bool {
	for _, l := range levels {
		if l != 0 {
			return true
		}
	}
	return false
}

// setPCM turns mb into an I_PCM macroblock: the decoder copies the source
// samples, so they are the reconstruction too.
func (enc *Encoder) setPCM(mb *grid.MacroBlock) {
	mb.PCM = true
	mb.Intra16x16 = false
	mb.CBPLuma, mb.CBPChroma = 0, 0
	mb.RecY = mb.Y
	mb.RecCb = mb.Cb
	mb.RecCr = mb.Cr
	mb.Finalized = true
}

// bestLuma16 returns the legal 16x16 mode with the lowest SAD and leaves its
// prediction in pred.
func bestLuma16(b *dsp.Border16, src, pred *[256]uint8) (mode, cost int) {
	var tmp [256]uint8
	mode = -1
	for m := 0; m < dsp.NumI16Modes; m++ {
		if !dsp.Luma16ModeLegal(m, b) {
			continue
		}
		dsp.PredLuma16(m, b, &tmp)
		if c := dsp.SAD(src[:], tmp[:]); mode < 0 || c < cost {
			mode, cost = m, c
			*pred = tmp
		}
	}
	return mode, cost
}

// bestChroma picks one mode for both chroma planes by the sum of their
// SADs.
func bestChroma(bcb, bcr *dsp.Border8, mb *grid.MacroBlock, predCb, predCr *[64]uint8) (mode, cost int) {
	var tcb, tcr [64]uint8
	mode = -1
	for m := 0; m < dsp.NumChromaModes; m++ {
		if !dsp.ChromaModeLegal(m, bcb) {
			continue
		}
		dsp.PredChroma8(m, bcb, &tcb)
		dsp.PredChroma8(m, bcr, &tcr)
		c := dsp.SAD(mb.Cb[:], tcb[:]) + dsp.SAD(mb.Cr[:], tcr[:])
		if mode < 0 || c < cost {
			mode, cost = m, c
			*predCb, *predCr = tcb, tcr
		}
	}
	return mode, cost
}

// searchLuma4 runs the Intra4x4 decision block by block. Each block is
// quantized and reconstructed before the next one is predicted, as the
// decoder will do. Results go to enc.modes4, enc.levels4 and enc.rec4.
func (enc *Encoder) searchLuma4(mb *grid.MacroBlock) int {
	qp := enc.cfg.LumaQP
	total := 0
	var src, pred, tmp, rec [16]uint8
	var coeffs [16]int32
	for blk := 0; blk < grid.LumaBlocks; blk++ {
		bx, by := grid.BlockXY(blk)
		getBlock(mb.Y[:], 16, bx*4, by*4, &src)
		b := enc.it.Border4(blk, &enc.rec4)

		best, bestCost := -1, 0
		for m := 0; m < dsp.NumI4Modes; m++ {
			if !dsp.Luma4ModeLegal(m, &b) {
				continue
			}
			dsp.PredLuma4(m, &b, &tmp)
			if c := dsp.SAD(src[:], tmp[:]); best < 0 || c < bestCost {
				best, bestCost = m, c
				pred = tmp
			}
		}
		enc.modes4[blk] = best
		total += bestCost

		residual(&src, &pred, &coeffs)
		dsp.Quantize(&coeffs, &enc.levels4[blk], qp, 0)
		dsp.Dequantize(&enc.levels4[blk], &coeffs, qp, 0)
		reconstruct(&pred, &coeffs, &rec)
		putBlock(enc.rec4[:], 16, bx*4, by*4, &rec)
	}
	return total
}

// codeLuma16 transforms and quantizes the Intra16x16 residual against pred
// and reconstructs the macroblock.
func (enc *Encoder) codeLuma16(mb *grid.MacroBlock, pred16 *[256]uint8) {
	qp := enc.cfg.LumaQP
	var src, pred, rec [16]uint8
	var coeffs [grid.LumaBlocks][16]int32
	var dc, hd [16]int32
	for blk := 0; blk < grid.LumaBlocks; blk++ {
		bx, by := grid.BlockXY(blk)
		getBlock(mb.Y[:], 16, bx*4, by*4, &src)
		getBlock(pred16[:], 16, bx*4, by*4, &pred)
		residual(&src, &pred, &coeffs[blk])
		dc[by*4+bx] = coeffs[blk][0]
		dsp.Quantize(&coeffs[blk], &mb.LumaAC[blk], qp, 1)
	}
	dsp.FHadamard4x4(&dc, &hd)
	dsp.QuantizeDC(hd[:], mb.LumaDC[:], qp)

	dsp.IHadamard4x4(&mb.LumaDC, &dc)
	dsp.DequantLumaDC(&dc, qp)
	for blk := 0; blk < grid.LumaBlocks; blk++ {
		bx, by := grid.BlockXY(blk)
		d := &coeffs[blk]
		d[0] = dc[by*4+bx]
		dsp.Dequantize(&mb.LumaAC[blk], d, qp, 1)
		getBlock(pred16[:], 16, bx*4, by*4, &pred)
		reconstruct(&pred, d, &rec)
		putBlock(mb.RecY[:], 16, bx*4, by*4, &rec)
		if nonZero(mb.LumaAC[blk][1:]) {
			mb.CBPLuma = 15
		}
	}
}

// codeChroma transforms, quantizes and reconstructs chroma plane 0 (Cb) or
// 1 (Cr) against pred.
func (enc *Encoder) codeChroma(mb *grid.MacroBlock, plane int, pred8 *[64]uint8) {
	qp := enc.qpc
	srcPlane, recPlane := mb.Cb[:], mb.RecCb[:]
	if plane == 1 {
		srcPlane, recPlane = mb.Cr[:], mb.RecCr[:]
	}
	var src, pred, rec [16]uint8
	var coeffs [grid.ChromaBlock][16]int32
	var dc, hd [4]int32
	for blk := 0; blk < grid.ChromaBlock; blk++ {
		bx, by := blk%2, blk/2
		getBlock(srcPlane, 8, bx*4, by*4, &src)
		getBlock(pred8[:], 8, bx*4, by*4, &pred)
		residual(&src, &pred, &coeffs[blk])
		dc[blk] = coeffs[blk][0]
		dsp.Quantize(&coeffs[blk], &mb.ChromaAC[plane][blk], qp, 1)
	}
	dsp.Hadamard2x2(&dc, &hd)
	dsp.QuantizeDC(hd[:], mb.ChromaDC[plane][:], qp)

	dsp.Hadamard2x2(&mb.ChromaDC[plane], &dc)
	dsp.DequantChromaDC(&dc, qp)
	for blk := 0; blk < grid.ChromaBlock; blk++ {
		bx, by := blk%2, blk/2
		d := &coeffs[blk]
		d[0] = dc[blk]
		dsp.Dequantize(&mb.ChromaAC[plane][blk], d, qp, 1)
		getBlock(pred8[:], 8, bx*4, by*4, &pred)
		reconstruct(&pred, d, &rec)
		putBlock(recPlane, 8, bx*4, by*4, &rec)
	}
}

// residual computes the forward core transform of src - pred.
func residual(src, pred *[16]uint8, out *[16]int32) {
	var diff [16]int32
	for i := range diff {
		diff[i] = int32(src[i]) - int32(pred[i])
	}
	dsp.FTransform(&diff, out)
}

// reconstruct adds the inverse transform of the scaled coefficients to pred.
func reconstruct(pred *[16]uint8, coeffs *[16]int32, dst *[16]uint8) {
	var res [16]int32
	dsp.ITransform(coeffs, &res)
	for i := range dst {
		dst[i] = dsp.Clip8(int32(pred[i]) + res[i])
	}
}

func getBlock(plane []uint8, stride, x, y int, dst *[16]uint8) {
	for j := 0; j < 4; j++ {
		copy(dst[j*4:j*4+4], plane[(y+j)*stride+x:])
	}
}

func putBlock(plane []uint8, stride, x, y int, src *[16]uint8) {
	for j := 0; j < 4; j++ {
		copy(plane[(y+j)*stride+x:(y+j)*stride+x+4], src[j*4:j*4+4])
	}
}
