// Package h264 provides a pure Go H.264 encoder for intra-only baseline
// profile streams.
//
// Every frame is coded as a single IDR picture made of one I slice with
// CAVLC entropy coding. The encoder chooses per macroblock between Intra4x4
// and Intra16x16 prediction by sum of absolute differences, and falls back
// to raw I_PCM samples when no prediction is close enough. The output is an
// Annex B byte stream that any conforming decoder can play.
//
// The package supports:
//   - Intra4x4 (9 modes), Intra16x16 (4 modes) and chroma (4 modes) prediction
//   - Integer core transform with Hadamard DC transforms and flat quantization
//   - CAVLC residual coding with neighbor nC contexts
//   - I_PCM fallback for macroblocks with large prediction error
//   - Frame cropping for sizes that are not multiples of 16
//   - Optional SEI user data
//   - Stream inspection with Info
//
// Basic usage:
//
//	enc, err := h264.NewEncoder(w, 640, 480, nil)
//	if err != nil {
//		return err
//	}
//	for _, img := range frames {
//		if _, err := enc.EncodeImage(img); err != nil {
//			return err
//		}
//	}
//	return enc.Close()
package h264
