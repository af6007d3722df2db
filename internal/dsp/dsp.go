// Package dsp provides the sample-level kernels of the H.264 intra encoder:
// intra prediction, SAD cost, the 4x4 integer core transform, the Hadamard
// DC transforms, and scalar quantization.
//
// All kernels work on fixed-size arrays in raster order. Luma macroblocks are
// 16x16 (stride 16), chroma planes 8x8 (stride 8) and transform blocks 4x4.
package dsp

// Intra 4x4 luma prediction modes (Table 8-2).
const (
	I4Vertical = iota
	I4Horizontal
	I4DC
	I4DiagDownLeft
	I4DiagDownRight
	I4VerticalRight
	I4HorizontalDown
	I4VerticalLeft
	I4HorizontalUp
	NumI4Modes
)

// Intra 16x16 luma prediction modes (Table 8-4).
const (
	I16Vertical = iota
	I16Horizontal
	I16DC
	I16Plane
	NumI16Modes
)

// Intra chroma prediction modes (Table 8-5). Note the order differs from
// the luma 16x16 modes.
const (
	ChromaDC = iota
	ChromaHorizontal
	ChromaVertical
	ChromaPlane
	NumChromaModes
)

// defaultSample replaces unavailable border samples.
const defaultSample = 128

// Clip8 clips v to [0, 255].
func Clip8(v int32) uint8 {
	if uint32(v) <= 255 {
		return uint8(v)
	}
	if v < 0 {
		return 0
	}
	return 255
}

// SAD returns the sum of absolute differences between a and b over
// len(a) samples.
func SAD(a, b []uint8) int {
	b = b[:len(a)]
	sum := 0
	for i := range a {
		d := int(a[i]) - int(b[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum
}

// avg3 returns (a + 2*b + c + 2) >> 2.
func avg3(a, b, c uint8) uint8 {
	return uint8((int(a) + 2*int(b) + int(c) + 2) >> 2)
}

// avg2 returns (a + b + 1) >> 1.
func avg2(a, b uint8) uint8 {
	return uint8((int(a) + int(b) + 1) >> 1)
}
