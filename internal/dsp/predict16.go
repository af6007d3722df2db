package dsp

// Border16 holds the reconstructed samples around a 16x16 luma block:
// P[0] is the up-left corner, P[1..16] the row above and P[17..32] the
// column to the left.
type Border16 struct {
	P [33]uint8

	Up, Left, UpLeft bool
}

// Fill sets unavailable border samples to 128.
func (b *Border16) Fill() {
	if !b.Up {
		for i := 1; i <= 16; i++ {
			b.P[i] = defaultSample
		}
	}
	if !b.Left {
		for i := 17; i <= 32; i++ {
			b.P[i] = defaultSample
		}
	}
	if !b.UpLeft {
		b.P[0] = defaultSample
	}
}

// Luma16ModeLegal reports whether mode only reads available borders.
func Luma16ModeLegal(mode int, b *Border16) bool {
	switch mode {
	case I16Vertical:
		return b.Up
	case I16Horizontal:
		return b.Left
	case I16DC:
		return true
	case I16Plane:
		return b.Up && b.Left && b.UpLeft
	}
	return false
}

// PredLuma16 writes the 16x16 prediction for mode into dst (stride 16).
func PredLuma16(mode int, b *Border16, dst *[256]uint8) {
	up := b.P[1:17]
	left := b.P[17:33]
	switch mode {
	case I16Vertical:
		for y := 0; y < 16; y++ {
			copy(dst[y*16:y*16+16], up)
		}
	case I16Horizontal:
		for y := 0; y < 16; y++ {
			row := dst[y*16 : y*16+16]
			for x := range row {
				row[x] = left[y]
			}
		}
	case I16DC:
		sumUp, sumLeft := 0, 0
		for i := 0; i < 16; i++ {
			sumUp += int(up[i])
			sumLeft += int(left[i])
		}
		v := uint8(defaultSample)
		switch {
		case b.Up && b.Left:
			v = uint8((sumUp + sumLeft + 16) >> 5)
		case b.Left:
			v = uint8((sumLeft + 8) >> 4)
		case b.Up:
			v = uint8((sumUp + 8) >> 4)
		}
		for i := range dst {
			dst[i] = v
		}
	case I16Plane:
		// up(-1) and left(-1) are the corner sample.
		at := func(s []uint8, i int) int32 {
			if i < 0 {
				return int32(b.P[0])
			}
			return int32(s[i])
		}
		var h, v int32
		for i := 0; i < 8; i++ {
			h += int32(i+1) * (at(up, 8+i) - at(up, 6-i))
			v += int32(i+1) * (at(left, 8+i) - at(left, 6-i))
		}
		a := 16 * (int32(left[15]) + int32(up[15]))
		bb := (5*h + 32) >> 6
		c := (5*v + 32) >> 6
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				dst[y*16+x] = Clip8((a + bb*int32(x-7) + c*int32(y-7) + 16) >> 5)
			}
		}
	default:
		panic("dsp: invalid intra 16x16 mode")
	}
}

// Border8 holds the reconstructed samples around an 8x8 chroma block:
// P[0] is the up-left corner, P[1..8] the row above and P[9..16] the column
// to the left.
type Border8 struct {
	P [17]uint8

	Up, Left, UpLeft bool
}

// Fill sets unavailable border samples to 128.
func (b *Border8) Fill() {
	if !b.Up {
		for i := 1; i <= 8; i++ {
			b.P[i] = defaultSample
		}
	}
	if !b.Left {
		for i := 9; i <= 16; i++ {
			b.P[i] = defaultSample
		}
	}
	if !b.UpLeft {
		b.P[0] = defaultSample
	}
}

// ChromaModeLegal reports whether mode only reads available borders.
func ChromaModeLegal(mode int, b *Border8) bool {
	switch mode {
	case ChromaDC:
		return true
	case ChromaHorizontal:
		return b.Left
	case ChromaVertical:
		return b.Up
	case ChromaPlane:
		return b.Up && b.Left && b.UpLeft
	}
	return false
}

// PredChroma8 writes the 8x8 chroma prediction for mode into dst (stride 8).
func PredChroma8(mode int, b *Border8, dst *[64]uint8) {
	up := b.P[1:9]
	left := b.P[9:17]
	switch mode {
	case ChromaDC:
		for by := 0; by < 2; by++ {
			for bx := 0; bx < 2; bx++ {
				v := dcChroma4(b, bx, by)
				for y := by * 4; y < by*4+4; y++ {
					for x := bx * 4; x < bx*4+4; x++ {
						dst[y*8+x] = v
					}
				}
			}
		}
	case ChromaHorizontal:
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				dst[y*8+x] = left[y]
			}
		}
	case ChromaVertical:
		for y := 0; y < 8; y++ {
			copy(dst[y*8:y*8+8], up)
		}
	case ChromaPlane:
		at := func(s []uint8, i int) int32 {
			if i < 0 {
				return int32(b.P[0])
			}
			return int32(s[i])
		}
		var h, v int32
		for i := 0; i < 4; i++ {
			h += int32(i+1) * (at(up, 4+i) - at(up, 2-i))
			v += int32(i+1) * (at(left, 4+i) - at(left, 2-i))
		}
		a := 16 * (int32(left[7]) + int32(up[7]))
		bb := (34*h + 32) >> 6
		c := (34*v + 32) >> 6
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				dst[y*8+x] = Clip8((a + bb*int32(x-3) + c*int32(y-3) + 16) >> 5)
			}
		}
	default:
		panic("dsp: invalid intra chroma mode")
	}
}

// dcChroma4 returns the DC value of the 4x4 quadrant (bx, by). The
// top-left and bottom-right quadrants average both borders; the top-right
// one prefers the row above and the bottom-left one the left column.
func dcChroma4(b *Border8, bx, by int) uint8 {
	sumUp, sumLeft := 0, 0
	for i := 0; i < 4; i++ {
		sumUp += int(b.P[1+bx*4+i])
		sumLeft += int(b.P[9+by*4+i])
	}
	upDC := func() uint8 { return uint8((sumUp + 2) >> 2) }
	leftDC := func() uint8 { return uint8((sumLeft + 2) >> 2) }

	switch {
	case bx == by:
		switch {
		case b.Up && b.Left:
			return uint8((sumUp + sumLeft + 4) >> 3)
		case b.Left:
			return leftDC()
		case b.Up:
			return upDC()
		}
	case bx == 1 && by == 0:
		if b.Up {
			return upDC()
		}
		if b.Left {
			return leftDC()
		}
	default:
		if b.Left {
			return leftDC()
		}
		if b.Up {
			return upDC()
		}
	}
	return defaultSample
}
