package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepteams/h264"
)

func newCLI(stdin []byte) (*cli, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &cli{stdin: bytes.NewReader(stdin), stdout: &stdout, stderr: &stderr}, &stdout, &stderr
}

// rawFrames returns n I420 frames of w x h with a moving gradient.
func rawFrames(w, h, n int) []byte {
	var out []byte
	for i := 0; i < n; i++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out = append(out, byte(3*x+2*y+5*i))
			}
		}
		for p := 0; p < 2; p++ {
			for y := 0; y < h/2; y++ {
				for x := 0; x < w/2; x++ {
					out = append(out, byte(100+x+y+p*20))
				}
			}
		}
	}
	return out
}

func createTestPNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 10), uint8(y * 10), 128, 255})
		}
	}
	path := filepath.Join(dir, "test.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func streamInfo(t *testing.T, path string) *h264.StreamInfo {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	info, err := h264.Info(f)
	require.NoError(t, err)
	return info
}

func TestEnc_I420(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.yuv")
	require.NoError(t, os.WriteFile(input, rawFrames(32, 16, 3), 0o644))
	output := filepath.Join(dir, "out.264")
	recon := filepath.Join(dir, "rec.yuv")

	c, _, stderr := newCLI(nil)
	err := c.runEnc([]string{"-width", "32", "-height", "16", "-qp", "30", "-o", output, "-recon", recon, "-psnr", "-v", input})
	require.NoError(t, err, stderr.String())

	info := streamInfo(t, output)
	require.Equal(t, 3, info.Frames())
	require.Equal(t, 32, info.Width)
	require.Equal(t, 16, info.Height)
	require.Equal(t, 30, info.PicInitQP)
	require.Equal(t, 4, info.Log2MaxFrameNum)

	fi, err := os.Stat(recon)
	require.NoError(t, err)
	require.Equal(t, int64(3*32*16*3/2), fi.Size())

	log := stderr.String()
	require.Equal(t, 3, strings.Count(log, "msg=frame"))
	require.Contains(t, log, "psnr_y=")
	require.Contains(t, log, "msg=encoded")
}

func TestEnc_I420Stdin(t *testing.T) {
	c, stdout, stderr := newCLI(rawFrames(16, 16, 2))
	err := c.runEnc([]string{"-width", "16", "-height", "16", "-frames", "1", "-o", "-", "-"})
	require.NoError(t, err, stderr.String())

	info, err := h264.Info(stdout)
	require.NoError(t, err)
	require.Equal(t, 1, info.Frames())
}

func TestEnc_PartialFrame(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.264")
	raw := rawFrames(16, 16, 2)
	c, _, _ := newCLI(raw[:len(raw)-10])
	err := c.runEnc([]string{"-width", "16", "-height", "16", "-o", output, "-"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "read frame 1")
	_, err = os.Stat(output)
	require.True(t, os.IsNotExist(err), "partial output left behind")
}

func TestEnc_PNG(t *testing.T) {
	dir := t.TempDir()
	input := createTestPNG(t, dir, 20, 12)
	output := filepath.Join(dir, "scan.264")

	c, _, stderr := newCLI(nil)
	require.NoError(t, c.runEnc([]string{"-o", output, "-sei", "lidar", input}), stderr.String())

	info := streamInfo(t, output)
	require.Equal(t, 20, info.Width)
	require.Equal(t, 12, info.Height)
	require.Len(t, info.UserData, 1)
	require.Equal(t, []byte("lidar"), info.UserData[0].Payload)

	// Scaled on the way in.
	require.NoError(t, c.runEnc([]string{"-o", output, "-width", "40", "-height", "24", input}))
	info = streamInfo(t, output)
	require.Equal(t, 40, info.Width)
	require.Equal(t, 24, info.Height)
}

func TestEnc_Config(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.yuv")
	require.NoError(t, os.WriteFile(input, rawFrames(48, 32, 2), 0o644))
	output := filepath.Join(dir, "out.264")
	cfgPath := filepath.Join(dir, "gh264.yaml")
	cfg := "input:\n  path: " + input + "\n  width: 48\n  height: 32\n" +
		"output:\n  path: " + output + "\n" +
		"encoder:\n  luma_qp: 20\n  chroma_qp: 22\n  level: 21\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	c, _, stderr := newCLI(nil)
	require.NoError(t, c.runEnc([]string{"-config", cfgPath, "-qp", "24"}), stderr.String())

	info := streamInfo(t, output)
	require.Equal(t, 2, info.Frames())
	require.Equal(t, 24, info.PicInitQP)
	require.Equal(t, -2, info.ChromaQPIndexOffset)
	require.Equal(t, 21, info.Level)
}

func TestEnc_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing input", nil, "missing input"},
		{"no size", []string{"-o", filepath.Join(dir, "a.264"), "in.yuv"}, "width and height"},
		{"bad format", []string{"-format", "avi", "-width", "16", "-height", "16", "in.yuv"}, "input.format"},
		{"bad qp", []string{"-qp", "99", "-width", "16", "-height", "16", "in.yuv"}, "LumaQP"},
		{"missing config", []string{"-config", filepath.Join(dir, "none.yaml")}, "config"},
		{"nonexistent", []string{"-width", "16", "-height", "16", "-o", filepath.Join(dir, "b.264"), filepath.Join(dir, "none.yuv")}, "none.yuv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newCLI(nil)
			err := c.runEnc(tt.args)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestInfo(t *testing.T) {
	dir := t.TempDir()
	input := createTestPNG(t, dir, 20, 12)
	output := filepath.Join(dir, "out.264")
	c, stdout, _ := newCLI(nil)
	require.NoError(t, c.runEnc([]string{"-o", output, input}))

	require.NoError(t, c.runInfo([]string{output}))
	got := stdout.String()
	require.Contains(t, got, "Profile:     66")
	require.Contains(t, got, "Level:       1.0")
	require.Contains(t, got, "Dimensions:  20 x 12 (2 x 1 macroblocks)")
	require.Contains(t, got, "Frames:      1")
	require.Contains(t, got, "File size:")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	c, stdout, _ = newCLI(data)
	require.NoError(t, c.runInfo([]string{"-"}))
	require.Contains(t, stdout.String(), "<stdin>")

	require.Error(t, c.runInfo(nil))
	c, _, _ = newCLI([]byte("not a stream"))
	require.Error(t, c.runInfo([]string{"-"}))
}

func TestDefaultOutput(t *testing.T) {
	require.Equal(t, "output.264", defaultOutput("-"))
	require.Equal(t, "scan.264", defaultOutput("/data/scan.png"))
	require.Equal(t, "frames.264", defaultOutput("frames.yuv"))
}
