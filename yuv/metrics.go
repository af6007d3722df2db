package yuv

import "math"

// PSNR returns the peak signal-to-noise ratio in dB of each plane of b
// against a over the visible area. Identical planes report +Inf.
func PSNR(a, b *Frame) (y, cb, cr float64) {
	y = planePSNR(a.Y, b.Y, a.YStride, b.YStride, a.RawWidth, a.RawHeight)
	cb = planePSNR(a.Cb, b.Cb, a.CStride, b.CStride, a.RawWidth/2, a.RawHeight/2)
	cr = planePSNR(a.Cr, b.Cr, a.CStride, b.CStride, a.RawWidth/2, a.RawHeight/2)
	return y, cb, cr
}

func planePSNR(a, b []byte, sa, sb, w, h int) float64 {
	var sse int64
	for y := 0; y < h; y++ {
		ra, rb := a[y*sa:y*sa+w], b[y*sb:y*sb+w]
		for x := range ra {
			d := int64(ra[x]) - int64(rb[x])
			sse += d * d
		}
	}
	if sse == 0 {
		return math.Inf(1)
	}
	mse := float64(sse) / float64(w*h)
	return 10 * math.Log10(255*255/mse)
}

// SSIM returns the mean structural similarity of the visible luma of b
// against a, in [0, 1]. Every sample is the centre of a 7x7 window weighted
// by a hat kernel; windows are clipped at the picture edges.
func SSIM(a, b *Frame) float64 {
	w, h := a.RawWidth, a.RawHeight
	var sum float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum += windowSSIM(a.Y, a.YStride, b.Y, b.YStride, x, y, w, h)
		}
	}
	return sum / float64(w*h)
}

const ssimRadius = 3

var ssimWeight = [2*ssimRadius + 1]uint32{1, 2, 3, 4, 3, 2, 1}

// ssimStats accumulates weighted sums over a window.
type ssimStats struct {
	w             uint32
	xm, ym        uint32
	xxm, xym, yym uint32
}

func (s *ssimStats) add(x, y uint8, w uint32) {
	s.w += w
	s.xm += w * uint32(x)
	s.ym += w * uint32(y)
	s.xxm += w * uint32(x) * uint32(x)
	s.xym += w * uint32(x) * uint32(y)
	s.yym += w * uint32(y) * uint32(y)
}

func windowSSIM(a []byte, sa int, b []byte, sb, xo, yo, w, h int) float64 {
	var s ssimStats
	for y := max(0, yo-ssimRadius); y <= min(h-1, yo+ssimRadius); y++ {
		wy := ssimWeight[ssimRadius+y-yo]
		for x := max(0, xo-ssimRadius); x <= min(w-1, xo+ssimRadius); x++ {
			s.add(a[y*sa+x], b[y*sb+x], wy*ssimWeight[ssimRadius+x-xo])
		}
	}
	return s.value()
}

// value evaluates SSIM in integer arithmetic scaled by the total weight.
func (s *ssimStats) value() float64 {
	n := uint64(s.w)
	n2 := n * n
	c1, c2 := 20*n2, 60*n2
	dark := 64 * n2

	xmxm := uint64(s.xm) * uint64(s.xm)
	ymym := uint64(s.ym) * uint64(s.ym)
	if xmxm+ymym < dark {
		return 1
	}
	xmym := uint64(s.xm) * uint64(s.ym)
	sxy := int64(uint64(s.xym)*n) - int64(xmym)
	sxx := uint64(s.xxm)*n - xmxm
	syy := uint64(s.yym)*n - ymym
	var cov uint64
	if sxy > 0 {
		cov = uint64(sxy)
	}
	// Both factors are shifted down so the product fits 64 bits.
	num := (2*xmym + c1) * ((2*cov + c2) >> 8)
	den := (xmxm + ymym + c1) * ((sxx + syy + c2) >> 8)
	if den == 0 {
		return 1
	}
	return float64(num) / float64(den)
}
