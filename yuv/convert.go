package yuv

import (
	"image"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// BT.601 limited-range RGB -> YCbCr in 16-bit fixed point.
const (
	yuvFix  = 16
	yuvHalf = 1 << (yuvFix - 1)

	kRGBToY0 = 16839 // 0.2568 * (1 << 16)
	kRGBToY1 = 33059 // 0.5041 * (1 << 16)
	kRGBToY2 = 6420  // 0.0979 * (1 << 16)
	kRGBToU0 = -9719
	kRGBToU1 = -19081
	kRGBToU2 = 28800
	kRGBToV0 = 28800
	kRGBToV1 = -24116
	kRGBToV2 = -4684
)

func rgbToY(r, g, b int) uint8 {
	return uint8((kRGBToY0*r + kRGBToY1*g + kRGBToY2*b + yuvHalf + (16 << yuvFix)) >> yuvFix)
}

// clipUV scales a chroma value accumulated over four pixels.
func clipUV(uv int) uint8 {
	uv = (uv + yuvHalf<<2 + (128 << (yuvFix + 2))) >> (yuvFix + 2)
	if uv&^0xff == 0 {
		return uint8(uv)
	}
	if uv < 0 {
		return 0
	}
	return 255
}

// FromImage converts img to a padded I420 frame. A 4:2:0 *image.YCbCr is
// copied directly; anything else goes through RGBA. Odd sizes are rounded
// down to even.
func FromImage(img image.Image) (*Frame, error) {
	b := img.Bounds()
	w, h := b.Dx()&^1, b.Dy()&^1
	f, err := NewFrame(w, h)
	if err != nil {
		return nil, errors.Wrap(err, "yuv: convert image")
	}
	if src, ok := img.(*image.YCbCr); ok && src.SubsampleRatio == image.YCbCrSubsampleRatio420 {
		copyYCbCr(f, src)
	} else {
		rgba, ok := img.(*image.RGBA)
		if !ok || rgba.Bounds().Min != (image.Point{}) {
			rgba = image.NewRGBA(image.Rect(0, 0, w, h))
			draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
		}
		convertRGBA(f, rgba)
	}
	f.Pad()
	return f, nil
}

// Scale resizes img to width x height with Catmull-Rom interpolation and
// converts the result.
func Scale(img image.Image, width, height int) (*Frame, error) {
	if err := CheckSize(width, height); err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return FromImage(dst)
}

func copyYCbCr(f *Frame, src *image.YCbCr) {
	b := src.Rect
	for y := 0; y < f.RawHeight; y++ {
		off := src.YOffset(b.Min.X, b.Min.Y+y)
		copy(f.Y[y*f.YStride:y*f.YStride+f.RawWidth], src.Y[off:])
	}
	for y := 0; y < f.RawHeight/2; y++ {
		off := src.COffset(b.Min.X, b.Min.Y+2*y)
		copy(f.Cb[y*f.CStride:y*f.CStride+f.RawWidth/2], src.Cb[off:])
		copy(f.Cr[y*f.CStride:y*f.CStride+f.RawWidth/2], src.Cr[off:])
	}
}

func convertRGBA(f *Frame, src *image.RGBA) {
	for y := 0; y < f.RawHeight; y++ {
		row := src.Pix[y*src.Stride:]
		dst := f.Y[y*f.YStride:]
		for x := 0; x < f.RawWidth; x++ {
			p := row[x*4:]
			dst[x] = rgbToY(int(p[0]), int(p[1]), int(p[2]))
		}
	}
	for y := 0; y < f.RawHeight/2; y++ {
		r0 := src.Pix[2*y*src.Stride:]
		r1 := src.Pix[(2*y+1)*src.Stride:]
		for x := 0; x < f.RawWidth/2; x++ {
			var r, g, b int
			for _, p := range [][]byte{r0[8*x:], r0[8*x+4:], r1[8*x:], r1[8*x+4:]} {
				r += int(p[0])
				g += int(p[1])
				b += int(p[2])
			}
			f.Cb[y*f.CStride+x] = clipUV(kRGBToU0*r + kRGBToU1*g + kRGBToU2*b)
			f.Cr[y*f.CStride+x] = clipUV(kRGBToV0*r + kRGBToV1*g + kRGBToV2*b)
		}
	}
}
