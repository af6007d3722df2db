package nal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/deepteams/h264/internal/bitio"
)

func TestUnitMarshal(t *testing.T) {
	u := Unit{RefIdc: RefIdcHighest, Type: TypeSPS, RBSP: []byte{0x00, 0x00, 0x01, 0x80}}
	want := []byte{0, 0, 0, 1, 0x67, 0x00, 0x00, 0x03, 0x01, 0x80}
	if got := u.Marshal(); !bytes.Equal(got, want) {
		t.Fatalf("Marshal = % x, want % x", got, want)
	}
	if h := (Unit{Type: TypeIDR, RefIdc: 3}).Header(); h != 0x65 {
		t.Fatalf("IDR header = %#x, want 0x65", h)
	}

	back, err := ParseUnit(want[4:])
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(u, back); diff != "" {
		t.Fatalf("ParseUnit mismatch (-want +got):\n%s", diff)
	}
	if _, err := ParseUnit([]byte{0x80}); errors.Cause(err) != ErrForbidden {
		t.Fatalf("forbidden bit: got %v", err)
	}
	if _, err := ParseUnit(nil); errors.Cause(err) != ErrTruncated {
		t.Fatalf("empty unit: got %v", err)
	}
}

func TestSPS_Bytes(t *testing.T) {
	sps, err := NewSPS(1, 1, 16, 16, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x42, 0x00, 0x0a, 0xfb, 0x88}
	if got := sps.Unit().RBSP; !bytes.Equal(got, want) {
		t.Fatalf("SPS RBSP = % x, want % x", got, want)
	}
}

func TestSPS_RoundTrip(t *testing.T) {
	tests := []struct {
		name                   string
		wmb, hmb, rawW, rawH   int
		frames                 int
		wantLevel, wantLog2Max int
	}{
		{"qcif", 11, 9, 176, 144, 1, 10, 4},
		{"cropped 1080p", 120, 68, 1920, 1080, 300, 40, 8},
		{"odd crop", 3, 2, 40, 26, 65536, 10, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sps, err := NewSPS(tt.wmb, tt.hmb, tt.rawW, tt.rawH, tt.frames)
			if err != nil {
				t.Fatal(err)
			}
			if sps.LevelIDC != tt.wantLevel || sps.Log2MaxFrameNum != tt.wantLog2Max {
				t.Fatalf("level %d log2 %d, want %d %d", sps.LevelIDC, sps.Log2MaxFrameNum, tt.wantLevel, tt.wantLog2Max)
			}
			got, err := ParseSPS(sps.Unit().RBSP)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(sps, got); diff != "" {
				t.Fatalf("round trip (-want +got):\n%s", diff)
			}
			if got.Width() != tt.rawW || got.Height() != tt.rawH {
				t.Fatalf("visible size %dx%d, want %dx%d", got.Width(), got.Height(), tt.rawW, tt.rawH)
			}
		})
	}
}

func TestParseSPS_Truncated(t *testing.T) {
	if _, err := ParseSPS([]byte{0x42, 0x00}); errors.Cause(err) != ErrTruncated {
		t.Fatalf("got %v, want ErrTruncated", err)
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		w, h int
		want int
	}{
		{1, 1, 10},
		{11, 9, 10},   // QCIF
		{22, 18, 11},  // CIF
		{45, 36, 22},  // 720x576
		{80, 45, 31},  // 720p
		{120, 68, 40}, // 1080p
		{300, 1, 50},  // long strip is bounded by its side length
		{1000, 1000, 0},
	}
	for _, tt := range tests {
		got, ok := LevelFor(tt.w, tt.h)
		if tt.want == 0 {
			if ok {
				t.Errorf("LevelFor(%d, %d) = %d, want none", tt.w, tt.h, got)
			}
			continue
		}
		if !ok || got != tt.want {
			t.Errorf("LevelFor(%d, %d) = %d, %v, want %d", tt.w, tt.h, got, ok, tt.want)
		}
	}
}

func TestLog2MaxForFrames(t *testing.T) {
	tests := []struct{ frames, want int }{
		{0, 4}, {1, 4}, {31, 4}, {32, 5}, {100, 6}, {1 << 16, 16}, {1 << 30, 16},
	}
	for _, tt := range tests {
		if got := Log2MaxForFrames(tt.frames); got != tt.want {
			t.Errorf("Log2MaxForFrames(%d) = %d, want %d", tt.frames, got, tt.want)
		}
	}
}

func TestPPS(t *testing.T) {
	p := &PPS{PicInitQP: 28, DeblockingControl: true}
	want := []byte{0xce, 0x09, 0xc8}
	rbsp := p.Unit().RBSP
	if !bytes.Equal(rbsp, want) {
		t.Fatalf("PPS RBSP = % x, want % x", rbsp, want)
	}

	p = &PPS{PicInitQP: 40, ChromaQPIndexOffset: -3, DeblockingControl: true}
	got, err := ParsePPS(p.Unit().RBSP)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(p, got); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestSliceHeader_RoundTrip(t *testing.T) {
	sps, err := NewSPS(4, 3, 64, 48, 1000)
	if err != nil {
		t.Fatal(err)
	}
	pps := &PPS{PicInitQP: 26, DeblockingControl: true}
	h := &SliceHeader{
		SliceType:         SliceIAll,
		IDR:               true,
		IDRPicID:          77,
		POCLsb:            2*513 % (1 << uint(sps.Log2MaxPOCLsb)),
		DisableDeblocking: 1,
	}
	w := bitio.NewWriter(0)
	h.Write(w, sps, pps)
	w.PutBits(0x2a, 6) // slice data
	w.TrailingBits()

	u := Unit{RefIdc: RefIdcHighest, Type: TypeIDR, RBSP: w.Bytes()}
	r := bitio.NewReader(u.RBSP)
	got, err := ParseSliceHeader(r, u, sps, pps)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(h, got); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
	if v := r.ReadBits(6); v != 0x2a {
		t.Fatalf("slice data starts with %#x, want 0x2a", v)
	}
}

func TestSliceHeader_RejectsP(t *testing.T) {
	sps, _ := NewSPS(1, 1, 16, 16, 1)
	pps := &PPS{PicInitQP: 26}
	w := bitio.NewWriter(0)
	(&SliceHeader{SliceType: SliceP}).Write(w, sps, pps)
	w.TrailingBits()
	u := Unit{RefIdc: 1, Type: TypeSlice, RBSP: w.Bytes()}
	if _, err := ParseSliceHeader(bitio.NewReader(u.RBSP), u, sps, pps); errors.Cause(err) != ErrUnsupported {
		t.Fatalf("got %v, want ErrUnsupported", err)
	}
}

func TestUserData(t *testing.T) {
	long := []byte(strings.Repeat("x", 300))
	msgs := []UserData{
		{UUID: EncoderUUID, Payload: []byte("h264 intra")},
		{UUID: EncoderUUID, Payload: long},
	}
	for _, m := range msgs {
		u := m.Unit()
		if u.Type != TypeSEI || u.RefIdc != 0 {
			t.Fatalf("unit type %d ref %d", u.Type, u.RefIdc)
		}
		got, err := ParseUserData(u.RBSP)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]UserData{m}, got); diff != "" {
			t.Fatalf("round trip (-want +got):\n%s", diff)
		}
	}
	// payloadSize 316 is coded as 0xff 0x3d.
	rbsp := msgs[1].Unit().RBSP
	if !bytes.Equal(rbsp[:3], []byte{0x05, 0xff, 0x3d}) {
		t.Fatalf("SEI prefix % x", rbsp[:3])
	}
	if _, err := ParseUserData([]byte{0x05, 0x20, 0x01}); errors.Cause(err) != ErrTruncated {
		t.Fatalf("short payload: got %v", err)
	}
}

func TestSplit(t *testing.T) {
	stream := []byte{
		0xde, 0xad, // garbage before the first start code
		0, 0, 0, 1, 0x67, 0x42,
		0, 0, 1, 0x68, 0xce,
		0, 0, 0, 1, 0x65, 0x88, 0x00, 0x00, 0x03, 0x01,
		0, 0, 0, 0, 1, 0x06, 0x05, // trailing_zero_8bits before the start code
	}
	want := [][]byte{
		{0x67, 0x42},
		{0x68, 0xce},
		{0x65, 0x88, 0x00, 0x00, 0x03, 0x01},
		{0x06, 0x05},
	}
	if diff := cmp.Diff(want, Split(stream)); diff != "" {
		t.Fatalf("Split mismatch (-want +got):\n%s", diff)
	}
	if got := Split([]byte{1, 2, 3}); len(got) != 0 {
		t.Fatalf("no start code: got %d units", len(got))
	}
}

type failWriter struct{ n int }

func (w *failWriter) Write(p []byte) (int, error) {
	w.n++
	return 0, errors.New("disk full")
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	units := []Unit{
		{RefIdc: 3, Type: TypeSPS, RBSP: []byte{0x42, 0x80}},
		{RefIdc: 3, Type: TypePPS, RBSP: []byte{0xce, 0x00, 0x00, 0x00, 0x80}},
	}
	if err := w.WriteUnits(units...); err != nil {
		t.Fatal(err)
	}
	want := append(units[0].Marshal(), units[1].Marshal()...)
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("stream % x, want % x", buf.Bytes(), want)
	}
	if w.Written() != int64(len(want)) {
		t.Fatalf("Written = %d, want %d", w.Written(), len(want))
	}

	fw := &failWriter{}
	w = NewWriter(fw)
	err := w.WriteUnits(units...)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("got %v, want wrapped write error", err)
	}
	if err2 := w.WriteUnits(units[0]); err2 != err || fw.n != 1 {
		t.Fatalf("writer kept writing after a failure: %v, %d calls", err2, fw.n)
	}
}

func TestCheckLevel(t *testing.T) {
	if err := CheckLevel(31, 80, 45); err != nil {
		t.Fatalf("720p at level 3.1: %v", err)
	}
	if err := CheckLevel(35, 11, 9); err == nil {
		t.Fatal("level_idc 35 does not exist")
	}
	if err := CheckLevel(10, 22, 18); err == nil {
		t.Fatal("CIF does not fit level 1.0")
	}
}
