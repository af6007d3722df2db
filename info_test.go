package h264

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func encodeFlat(t *testing.T, w, h, frames int) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, w, h, nil)
	require.NoError(t, err)
	f := newFrame(t, w, h, func(int, int, int) uint8 { return 128 })
	defer f.Release()
	for i := 0; i < frames; i++ {
		_, err := enc.EncodeFrame(f)
		require.NoError(t, err)
	}
	require.NoError(t, enc.Close())
	return buf.Bytes()
}

func TestInfo(t *testing.T) {
	stream := encodeFlat(t, 16, 16, 2)
	info, err := Info(bytes.NewReader(stream))
	require.NoError(t, err)
	require.Equal(t, 2, info.Frames())
	require.Equal(t, 16, info.Width)
	require.Equal(t, 16, info.Height)
	require.Empty(t, info.UserData)

	want := []UnitInfo{
		{Type: 7, Name: "SPS", RefIdc: 3, Size: 6},
		{Type: 8, Name: "PPS", RefIdc: 3, Size: 4},
		{Type: 5, Name: "IDR", RefIdc: 3, Size: 6},
		{Type: 5, Name: "IDR", RefIdc: 3, Size: 6},
	}
	require.Equal(t, want, info.Units)
	require.Equal(t, 1, info.Slices[1].IDRPicID)
}

func TestInfo_Errors(t *testing.T) {
	_, err := Info(strings.NewReader(""))
	require.Equal(t, ErrNoParameterSets, err)

	stream := encodeFlat(t, 16, 16, 1)

	// Slice without parameter sets.
	_, err = Info(bytes.NewReader(stream[18:]))
	require.True(t, errors.Is(err, ErrNoParameterSets), "got %v", err)

	// SPS cut after level_idc.
	_, err = Info(bytes.NewReader(stream[:8]))
	require.True(t, errors.Is(err, ErrTruncated), "got %v", err)

	// forbidden_zero_bit.
	bad := append([]byte{}, stream...)
	bad[4] |= 0x80
	_, err = Info(bytes.NewReader(bad))
	require.Error(t, err)
}
