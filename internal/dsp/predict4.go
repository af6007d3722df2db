package dsp

// Border4 holds the reconstructed samples around a 4x4 luma block.
//
// P[0] is the up-left corner (Q), P[1..4] the row above (A..D), P[5..8] the
// row above and to the right (E..H) and P[9..12] the column to the left
// (I..L). Samples of unavailable neighbors must already be substituted by
// the caller (128, or D replicated for a missing up-right block).
type Border4 struct {
	P [13]uint8

	Up, Left, UpRight, UpLeft bool
}

// Fill sets unavailable border samples to their substitutes.
func (b *Border4) Fill() {
	if !b.Up {
		for i := 1; i <= 4; i++ {
			b.P[i] = defaultSample
		}
	}
	if !b.UpRight {
		for i := 5; i <= 8; i++ {
			b.P[i] = b.P[4]
		}
	}
	if !b.Left {
		for i := 9; i <= 12; i++ {
			b.P[i] = defaultSample
		}
	}
	if !b.UpLeft {
		b.P[0] = defaultSample
	}
}

// Luma4ModeLegal reports whether mode only reads available borders.
func Luma4ModeLegal(mode int, b *Border4) bool {
	switch mode {
	case I4Vertical, I4DiagDownLeft, I4VerticalLeft:
		return b.Up
	case I4Horizontal, I4HorizontalUp:
		return b.Left
	case I4DC:
		return true
	case I4DiagDownRight, I4VerticalRight, I4HorizontalDown:
		return b.Up && b.Left && b.UpLeft
	}
	return false
}

// PredLuma4 writes the 4x4 prediction for mode into dst (raster, stride 4).
func PredLuma4(mode int, b *Border4, dst *[16]uint8) {
	// e is the edge walked from the bottom-left to the top-right:
	// L K J I Q A B C D E F G H.
	var e [13]uint8
	e[0], e[1], e[2], e[3] = b.P[12], b.P[11], b.P[10], b.P[9]
	copy(e[4:], b.P[:9])
	top := func(x int) uint8 { return e[5+x] }  // x in -1..7
	left := func(y int) uint8 { return e[3-y] } // y in -1..3

	switch mode {
	case I4Vertical:
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				dst[y*4+x] = top(x)
			}
		}
	case I4Horizontal:
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				dst[y*4+x] = left(y)
			}
		}
	case I4DC:
		v := dc4(b)
		for i := range dst {
			dst[i] = v
		}
	case I4DiagDownLeft:
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				if x == 3 && y == 3 {
					dst[15] = avg3(top(6), top(7), top(7))
				} else {
					dst[y*4+x] = avg3(top(x+y), top(x+y+1), top(x+y+2))
				}
			}
		}
	case I4DiagDownRight:
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				k := 4 + x - y
				dst[y*4+x] = avg3(e[k-1], e[k], e[k+1])
			}
		}
	case I4VerticalRight:
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				z := 2*x - y
				i := x - y>>1
				switch {
				case z >= 0 && z&1 == 0:
					dst[y*4+x] = avg2(top(i-1), top(i))
				case z >= 0:
					dst[y*4+x] = avg3(top(i-2), top(i-1), top(i))
				case z == -1:
					dst[y*4+x] = avg3(left(0), left(-1), top(0))
				default:
					dst[y*4+x] = avg3(left(y-1), left(y-2), left(y-3))
				}
			}
		}
	case I4HorizontalDown:
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				z := 2*y - x
				i := y - x>>1
				switch {
				case z >= 0 && z&1 == 0:
					dst[y*4+x] = avg2(left(i-1), left(i))
				case z >= 0:
					dst[y*4+x] = avg3(left(i-2), left(i-1), left(i))
				case z == -1:
					dst[y*4+x] = avg3(left(0), left(-1), top(0))
				default:
					dst[y*4+x] = avg3(top(x-1), top(x-2), top(x-3))
				}
			}
		}
	case I4VerticalLeft:
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				i := x + y>>1
				if y&1 == 0 {
					dst[y*4+x] = avg2(top(i), top(i+1))
				} else {
					dst[y*4+x] = avg3(top(i), top(i+1), top(i+2))
				}
			}
		}
	case I4HorizontalUp:
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				z := x + 2*y
				i := y + x>>1
				switch {
				case z > 5:
					dst[y*4+x] = left(3)
				case z == 5:
					dst[y*4+x] = avg3(left(2), left(3), left(3))
				case z&1 == 0:
					dst[y*4+x] = avg2(left(i), left(i+1))
				default:
					dst[y*4+x] = avg3(left(i), left(i+1), left(i+2))
				}
			}
		}
	default:
		panic("dsp: invalid intra 4x4 mode")
	}
}

func dc4(b *Border4) uint8 {
	sumTop := int(b.P[1]) + int(b.P[2]) + int(b.P[3]) + int(b.P[4])
	sumLeft := int(b.P[9]) + int(b.P[10]) + int(b.P[11]) + int(b.P[12])
	switch {
	case b.Up && b.Left:
		return uint8((sumTop + sumLeft + 4) >> 3)
	case b.Left:
		return uint8((sumLeft + 2) >> 2)
	case b.Up:
		return uint8((sumTop + 2) >> 2)
	}
	return defaultSample
}
