package h264

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/deepteams/h264/yuv"
)

func loadTestFrame(b *testing.B, w, h int) *yuv.Frame {
	f, err := yuv.NewFrame(w, h)
	if err != nil {
		b.Fatal(err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Y[y*f.YStride+x] = uint8((x ^ y) + x/3)
		}
	}
	for y := 0; y < h/2; y++ {
		for x := 0; x < w/2; x++ {
			f.Cb[y*f.CStride+x] = uint8(96 + x%64)
			f.Cr[y*f.CStride+x] = uint8(160 - y%64)
		}
	}
	f.Pad()
	return f
}

func benchmarkEncode(b *testing.B, w, h int, opts *Options) {
	f := loadTestFrame(b, w, h)
	defer f.Release()
	buf := &bytes.Buffer{}
	enc, err := NewEncoder(buf, w, h, opts)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		if _, err := enc.EncodeFrame(f); err != nil {
			b.Fatal(err)
		}
	}
	b.SetBytes(int64(w * h * 3 / 2))
}

func BenchmarkEncode_QP28(b *testing.B) {
	benchmarkEncode(b, 640, 480, nil)
}

func BenchmarkEncode_QP20(b *testing.B) {
	opts := DefaultOptions()
	opts.LumaQP, opts.ChromaQP = 20, 20
	benchmarkEncode(b, 640, 480, opts)
}

func BenchmarkEncode_NoPCM(b *testing.B) {
	opts := DefaultOptions()
	opts.LumaPCMThreshold, opts.ChromaPCMThreshold = 0, 0
	benchmarkEncode(b, 640, 480, opts)
}

func BenchmarkEncode_Sizes(b *testing.B) {
	// A range image from a 64-beam lidar, then common video sizes.
	for _, size := range [][2]int{{1024, 64}, {352, 288}, {1280, 720}} {
		b.Run(fmt.Sprintf("%dx%d", size[0], size[1]), func(b *testing.B) {
			benchmarkEncode(b, size[0], size[1], nil)
		})
	}
}

func BenchmarkInfo(b *testing.B) {
	f := loadTestFrame(b, 640, 480)
	defer f.Release()
	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, 640, 480, nil)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if _, err := enc.EncodeFrame(f); err != nil {
			b.Fatal(err)
		}
	}
	data := buf.Bytes()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Info(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
	b.SetBytes(int64(len(data)))
}
