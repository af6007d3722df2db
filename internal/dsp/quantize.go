package dsp

// MaxLevel bounds quantized magnitudes so every level fits a CAVLC escape
// code with level_prefix <= 15, as baseline profile requires.
const MaxLevel = 2063

// quantMF holds the forward multiplication factors MF[qp%6][class] where
// class 0 covers positions with both coordinates even, class 1 both odd and
// class 2 the rest.
var quantMF = [6][3]int32{
	{13107, 5243, 8066},
	{11916, 4660, 7490},
	{10082, 4194, 6554},
	{9362, 3647, 5825},
	{8192, 3355, 5243},
	{7282, 2893, 4559},
}

// dequantV holds the decoder scaling factors v[qp%6][class] (8.5.9).
var dequantV = [6][3]int32{
	{10, 16, 13},
	{11, 18, 14},
	{13, 20, 16},
	{14, 23, 18},
	{16, 25, 20},
	{18, 29, 23},
}

// posClass maps a raster coefficient position to its scaling class.
var posClass = [16]int{
	0, 2, 0, 2,
	2, 1, 2, 1,
	0, 2, 0, 2,
	2, 1, 2, 1,
}

func clampLevel(v int32) int32 {
	if v > MaxLevel {
		return MaxLevel
	}
	return v
}

// Quantize quantizes the transform coefficients of one 4x4 block with the
// intra rounding offset (one third of a step). Positions below start are
// left at zero, so start = 1 skips the DC coefficient. It returns the number
// of non-zero levels.
func Quantize(coeffs, levels *[16]int32, qp, start int) int {
	qbits := uint(15 + qp/6)
	f := int32(1) << qbits / 3
	mf := &quantMF[qp%6]
	nz := 0
	for i := 0; i < 16; i++ {
		if i < start {
			levels[i] = 0
			continue
		}
		c := coeffs[i]
		neg := c < 0
		if neg {
			c = -c
		}
		l := clampLevel(int32((int64(c)*int64(mf[posClass[i]]) + int64(f)) >> qbits))
		if neg {
			l = -l
		}
		levels[i] = l
		if l != 0 {
			nz++
		}
	}
	return nz
}

// QuantizeDC quantizes Hadamard-transformed DC coefficients (luma 16x16 or
// chroma) with one extra bit of precision and a doubled offset. It returns
// the number of non-zero levels.
func QuantizeDC(coeffs, levels []int32, qp int) int {
	qbits := uint(16 + qp/6)
	f := int64(1) << (qbits - 1) / 3 * 2
	mf := int64(quantMF[qp%6][0])
	nz := 0
	for i, c := range coeffs {
		neg := c < 0
		if neg {
			c = -c
		}
		l := clampLevel(int32((int64(c)*mf + f) >> qbits))
		if neg {
			l = -l
		}
		levels[i] = l
		if l != 0 {
			nz++
		}
	}
	return nz
}

// Dequantize scales the levels of one 4x4 block for the inverse transform
// (8.5.12.1). Positions below start are copied from coeffs unchanged, which
// lets the caller place an already scaled DC value there.
func Dequantize(levels, coeffs *[16]int32, qp, start int) {
	v := &dequantV[qp%6]
	shift := uint(qp / 6)
	for i := start; i < 16; i++ {
		coeffs[i] = levels[i] * v[posClass[i]] << shift
	}
}

// DequantLumaDC scales inverse Hadamard output of an Intra16x16 macroblock
// (8.5.10).
func DequantLumaDC(dc *[16]int32, qp int) {
	ls := 16 * dequantV[qp%6][0]
	if qp >= 36 {
		shift := uint(qp/6 - 6)
		for i := range dc {
			dc[i] = dc[i] * ls << shift
		}
		return
	}
	shift := uint(6 - qp/6)
	round := int32(1) << (shift - 1)
	for i := range dc {
		dc[i] = (dc[i]*ls + round) >> shift
	}
}

// DequantChromaDC scales inverse Hadamard output of a chroma plane
// (8.5.11.2).
func DequantChromaDC(dc *[4]int32, qp int) {
	ls := 16 * dequantV[qp%6][0]
	shift := uint(qp / 6)
	for i := range dc {
		dc[i] = (dc[i] * ls << shift) >> 5
	}
}

// chromaQPTable maps qPI in 30..51 to QPc (Table 8-15). Below 30 they are
// equal.
var chromaQPTable = [22]int{
	29, 30, 31, 32, 32, 33, 34, 34, 35, 35, 36,
	36, 37, 37, 37, 38, 38, 38, 39, 39, 39, 39,
}

// MaxQP is the largest quantization parameter for 8-bit video.
const MaxQP = 51

// ChromaQP returns the chroma quantization parameter QPc for qPI, which is
// the luma QP plus chroma_qp_index_offset clipped to [0, 51].
func ChromaQP(qpi int) int {
	qpi = max(0, min(MaxQP, qpi))
	if qpi < 30 {
		return qpi
	}
	return chromaQPTable[qpi-30]
}

// ChromaQPIndex returns the smallest qPI whose QPc equals qpc, or false
// when no qPI maps to it.
func ChromaQPIndex(qpc int) (int, bool) {
	for qpi := 0; qpi <= MaxQP; qpi++ {
		if ChromaQP(qpi) == qpc {
			return qpi, true
		}
	}
	return 0, false
}
