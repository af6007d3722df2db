package intra

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/deepteams/h264/internal/bitio"
	"github.com/deepteams/h264/internal/dsp"
	"github.com/deepteams/h264/internal/grid"
)

// newTestEncoder builds an encoder over a w x h picture whose planes are
// filled by fill(plane, x, y), plane 0 being luma.
func newTestEncoder(t *testing.T, w, h int, cfg Config, fill func(plane, x, y int) uint8) *Encoder {
	t.Helper()
	f, err := grid.NewFrame(w, h, w, h)
	if err != nil {
		t.Fatal(err)
	}
	y := make([]byte, w*h)
	cb := make([]byte, w*h/4)
	cr := make([]byte, w*h/4)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			y[j*w+i] = fill(0, i, j)
		}
	}
	for j := 0; j < h/2; j++ {
		for i := 0; i < w/2; i++ {
			cb[j*w/2+i] = fill(1, i, j)
			cr[j*w/2+i] = fill(2, i, j)
		}
	}
	if err := f.Load(y, cb, cr, w, w/2); err != nil {
		t.Fatal(err)
	}
	return NewEncoder(f, cfg)
}

func TestEncode_FlatMacroblock(t *testing.T) {
	enc := newTestEncoder(t, 16, 16, DefaultConfig(), func(int, int, int) uint8 { return 128 })
	w := bitio.NewWriter(0)
	enc.Encode(w)

	mb := enc.Frame().MB(0)
	if !mb.Intra16x16 || mb.Mode16 != dsp.I16DC {
		t.Fatalf("got intra16=%v mode=%d, want Intra16x16 DC", mb.Intra16x16, mb.Mode16)
	}
	if mb.LumaCost != 0 || mb.ChromaCost != 0 {
		t.Fatalf("costs %d/%d, want 0/0", mb.LumaCost, mb.ChromaCost)
	}
	if mb.CBPLuma != 0 || mb.CBPChroma != 0 {
		t.Fatalf("cbp %d/%d, want 0/0", mb.CBPLuma, mb.CBPChroma)
	}
	// mb_type 3, intra_chroma_pred_mode 0, mb_qp_delta 0, empty luma DC.
	if got, want := bits(w), "00100"+"1"+"1"+"1"; got != want {
		t.Fatalf("slice data %s, want %s", got, want)
	}
	if st := enc.Stats(); st.I16x16 != 1 || st.Bits != 8 {
		t.Fatalf("stats %+v", st)
	}
	for i, v := range mb.RecY {
		if v != 128 {
			t.Fatalf("RecY[%d] = %d, want 128", i, v)
		}
	}
}

func TestEncode_PCMFallback(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	enc := newTestEncoder(t, 16, 16, DefaultConfig(), func(int, int, int) uint8 { return uint8(rng.Intn(256)) })
	src := *enc.Frame().MB(0)

	w := bitio.NewWriter(0)
	w.PutBits(0x5, 3) // stand-in for a slice header
	enc.Encode(w)

	mb := enc.Frame().MB(0)
	if !mb.PCM {
		t.Fatalf("costs %d/%d did not trigger PCM", mb.LumaCost, mb.ChromaCost)
	}
	if mb.LumaCost <= DefaultLumaPCMThreshold || mb.ChromaCost <= DefaultChromaPCMThreshold {
		t.Fatalf("costs %d/%d do not exceed both thresholds", mb.LumaCost, mb.ChromaCost)
	}
	got := bits(w)
	// Header bits, ue(25), then zero padding to the byte boundary.
	if want := "101" + "000011010" + "0000"; got[:16] != want {
		t.Fatalf("prefix %s, want %s", got[:16], want)
	}
	raw := w.Bytes()[2:]
	want := append(append(append([]byte{}, src.Y[:]...), src.Cb[:]...), src.Cr[:]...)
	if !bytes.Equal(raw, want) {
		t.Fatalf("raw samples differ from the source:\n%s", cmp.Diff(want, raw))
	}
	if st := enc.Stats(); st.PCM != 1 || st.Bits != 16+384*8-3 {
		t.Fatalf("stats %+v", st)
	}
	if mb.RecY != src.Y || mb.RecCb != src.Cb || mb.RecCr != src.Cr {
		t.Fatal("PCM reconstruction must equal the source")
	}
}

func TestEncode_PCMDisabled(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	cfg := DefaultConfig()
	cfg.LumaPCMThreshold, cfg.ChromaPCMThreshold = 0, 0
	enc := newTestEncoder(t, 16, 16, cfg, func(int, int, int) uint8 { return uint8(rng.Intn(256)) })
	enc.Encode(bitio.NewWriter(0))
	if enc.Frame().MB(0).PCM {
		t.Fatal("PCM chosen with the fallback disabled")
	}
}

func gradient(plane, x, y int) uint8 {
	switch plane {
	case 0:
		return uint8(2*x + y)
	case 1:
		return uint8(100 + x)
	}
	return uint8(160 - y)
}

func TestEncode_LegalModes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LumaPCMThreshold, cfg.ChromaPCMThreshold = 0, 0
	enc := newTestEncoder(t, 64, 48, cfg, gradient)
	enc.Encode(bitio.NewWriter(0))
	f := enc.Frame()

	mb0 := f.MB(0)
	if mb0.Intra16x16 && mb0.Mode16 != dsp.I16DC {
		t.Fatalf("top-left Intra16x16 mode %d, want DC", mb0.Mode16)
	}
	if !mb0.Intra16x16 && mb0.Modes4[0] != dsp.I4DC {
		t.Fatalf("top-left block mode %d, want DC", mb0.Modes4[0])
	}
	if mb0.ChromaMode != dsp.ChromaDC {
		t.Fatalf("top-left chroma mode %d, want DC", mb0.ChromaMode)
	}

	for i := range f.MBs {
		mb := f.MB(i)
		_, up := f.Neighbor(i, grid.Up)
		_, left := f.Neighbor(i, grid.Left)
		_, ul := f.Neighbor(i, grid.UpLeft)
		b8 := dsp.Border8{Up: up, Left: left, UpLeft: ul}
		if !dsp.ChromaModeLegal(mb.ChromaMode, &b8) {
			t.Errorf("mb %d: illegal chroma mode %d", i, mb.ChromaMode)
		}
		if mb.Intra16x16 {
			b := dsp.Border16{Up: up, Left: left, UpLeft: ul}
			if !dsp.Luma16ModeLegal(mb.Mode16, &b) {
				t.Errorf("mb %d: illegal 16x16 mode %d", i, mb.Mode16)
			}
			continue
		}
		for blk := 0; blk < grid.LumaBlocks; blk++ {
			b := dsp.Border4{
				Up:      f.LumaNeighbor(i, blk, grid.Up).Available(),
				Left:    f.LumaNeighbor(i, blk, grid.Left).Available(),
				UpLeft:  f.LumaNeighbor(i, blk, grid.UpLeft).Available(),
				UpRight: f.LumaNeighbor(i, blk, grid.UpRight).Available(),
			}
			if !dsp.Luma4ModeLegal(mb.Modes4[blk], &b) {
				t.Errorf("mb %d block %d: illegal 4x4 mode %d", i, blk, mb.Modes4[blk])
			}
		}
	}
	st := enc.Stats()
	if st.I4x4+st.I16x16+st.PCM != f.NumMBs() {
		t.Fatalf("stats %+v do not cover %d macroblocks", st, f.NumMBs())
	}
}

func TestEncode_Reconstruction(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LumaPCMThreshold, cfg.ChromaPCMThreshold = 0, 0
	const w, h = 64, 48
	enc := newTestEncoder(t, w, h, cfg, gradient)
	enc.Encode(bitio.NewWriter(0))

	y := make([]byte, w*h)
	cb := make([]byte, w*h/4)
	cr := make([]byte, w*h/4)
	enc.Frame().StoreRecon(y, cb, cr, w, w/2)
	sum := 0
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			d := int(y[j*w+i]) - int(gradient(0, i, j))
			if d < 0 {
				d = -d
			}
			sum += d
		}
	}
	if mae := float64(sum) / (w * h); mae > 4 {
		t.Fatalf("luma mean absolute error %.2f, want <= 4", mae)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	enc := newTestEncoder(t, 48, 32, DefaultConfig(), gradient)
	a := bitio.NewWriter(0)
	enc.Encode(a)
	b := bitio.NewWriter(0)
	enc.Encode(b)
	if a.BitLen() != b.BitLen() || !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("re-encoding the same frame changed the output")
	}
}

func TestPredictedMode4(t *testing.T) {
	f, err := grid.NewFrame(32, 16, 32, 16)
	if err != nil {
		t.Fatal(err)
	}
	enc := NewEncoder(f, DefaultConfig())
	left, cur := f.MB(0), f.MB(1)
	for i := range left.Modes4 {
		left.Modes4[i] = dsp.I4Horizontal
	}
	cur.Modes4[0] = dsp.I4Vertical

	tests := []struct {
		blk  int
		want int
	}{
		{0, dsp.I4DC}, // no upper neighbor
		{1, dsp.I4DC},
		{2, dsp.I4Vertical}, // min(left Horizontal, up Vertical)
	}
	for _, tt := range tests {
		if got := enc.predictedMode4(cur, tt.blk); got != tt.want {
			t.Errorf("block %d: got %d, want %d", tt.blk, got, tt.want)
		}
	}

	left.Intra16x16 = true
	cur.Modes4[0] = dsp.I4VerticalRight
	if got := enc.predictedMode4(cur, 2); got != dsp.I4DC {
		t.Errorf("Intra16x16 neighbor: got %d, want DC", got)
	}
}

func TestMBType(t *testing.T) {
	tests := []struct {
		mb   grid.MacroBlock
		want int
	}{
		{grid.MacroBlock{}, 0},
		{grid.MacroBlock{PCM: true}, 25},
		{grid.MacroBlock{Intra16x16: true, Mode16: dsp.I16DC}, 3},
		{grid.MacroBlock{Intra16x16: true, Mode16: dsp.I16Plane, CBPChroma: 2, CBPLuma: 15}, 24},
		{grid.MacroBlock{Intra16x16: true, Mode16: dsp.I16Vertical, CBPChroma: 1}, 5},
	}
	for _, tt := range tests {
		if got := MBType(&tt.mb); got != tt.want {
			t.Errorf("MBType(%+v) = %d, want %d", tt.mb.Mode16, got, tt.want)
		}
	}
}

func bits(w *bitio.Writer) string {
	b := w.Bytes()
	var sb strings.Builder
	for i := 0; i < w.BitLen(); i++ {
		if b[i>>3]>>uint(7-i&7)&1 == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
