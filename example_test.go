package h264_test

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/deepteams/h264"
)

func ExampleNewEncoder() {
	img := image.NewGray(image.Rect(0, 0, 64, 48))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}

	var buf bytes.Buffer
	enc, err := h264.NewEncoder(&buf, 64, 48, nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	st, err := enc.EncodeImage(img)
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := enc.Close(); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("macroblocks: %d, pcm: %d\n", st.I4x4+st.I16x16+st.PCM, st.PCM)
	// Output:
	// macroblocks: 12, pcm: 0
}

func ExampleInfo() {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.NRGBA{uint8(2 * x), uint8(4 * y), 128, 255})
		}
	}
	opts := h264.DefaultOptions()
	opts.LumaQP = 24
	opts.ChromaQP = 26

	var buf bytes.Buffer
	enc, err := h264.NewEncoder(&buf, 100, 60, opts)
	if err != nil {
		fmt.Println(err)
		return
	}
	if _, err := enc.EncodeImage(img); err != nil {
		fmt.Println(err)
		return
	}
	enc.Close()

	info, err := h264.Info(&buf)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%dx%d profile %d level %d qp %d offset %d\n",
		info.Width, info.Height, info.Profile, info.Level, info.PicInitQP, info.ChromaQPIndexOffset)
	for _, u := range info.Units {
		fmt.Println(u.Name)
	}
	// Output:
	// 100x60 profile 66 level 10 qp 24 offset 2
	// SPS
	// PPS
	// IDR
}

func ExampleDefaultOptions() {
	opts := h264.DefaultOptions()
	fmt.Printf("qp %d/%d, pcm thresholds %d/%d\n",
		opts.LumaQP, opts.ChromaQP, opts.LumaPCMThreshold, opts.ChromaPCMThreshold)
	// Output:
	// qp 28/28, pcm thresholds 2000/1000
}
