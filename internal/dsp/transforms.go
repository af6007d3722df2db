package dsp

// H.264 4x4 integer transforms. Blocks are raster order (index = row*4 + col).
// The forward core transform is Cf * X * Cf^T with
//
//	Cf = | 1  1  1  1 |
//	     | 2  1 -1 -2 |
//	     | 1 -1 -1  1 |
//	     | 1 -2  2 -1 |
//
// and its scaling is folded into quantization.

// FTransform computes the forward core transform of a residual block.
func FTransform(in, out *[16]int32) {
	var tmp [16]int32
	for i := 0; i < 4; i++ {
		p := in[i*4 : i*4+4]
		t0 := p[0] + p[3]
		t1 := p[1] + p[2]
		t2 := p[1] - p[2]
		t3 := p[0] - p[3]
		tmp[i*4+0] = t0 + t1
		tmp[i*4+1] = 2*t3 + t2
		tmp[i*4+2] = t0 - t1
		tmp[i*4+3] = t3 - 2*t2
	}
	for i := 0; i < 4; i++ {
		t0 := tmp[i] + tmp[12+i]
		t1 := tmp[4+i] + tmp[8+i]
		t2 := tmp[4+i] - tmp[8+i]
		t3 := tmp[i] - tmp[12+i]
		out[i] = t0 + t1
		out[4+i] = 2*t3 + t2
		out[8+i] = t0 - t1
		out[12+i] = t3 - 2*t2
	}
}

// ITransform computes the inverse core transform of scaled coefficients
// (8.5.12.2) and writes the residual, already rounded by (x + 32) >> 6.
func ITransform(in, out *[16]int32) {
	var tmp [16]int32
	for i := 0; i < 4; i++ {
		d := in[i*4 : i*4+4]
		e0 := d[0] + d[2]
		e1 := d[0] - d[2]
		e2 := d[1]>>1 - d[3]
		e3 := d[1] + d[3]>>1
		tmp[i*4+0] = e0 + e3
		tmp[i*4+1] = e1 + e2
		tmp[i*4+2] = e1 - e2
		tmp[i*4+3] = e0 - e3
	}
	for i := 0; i < 4; i++ {
		e0 := tmp[i] + tmp[8+i]
		e1 := tmp[i] - tmp[8+i]
		e2 := tmp[4+i]>>1 - tmp[12+i]
		e3 := tmp[4+i] + tmp[12+i]>>1
		out[i] = (e0 + e3 + 32) >> 6
		out[4+i] = (e1 + e2 + 32) >> 6
		out[8+i] = (e1 - e2 + 32) >> 6
		out[12+i] = (e0 - e3 + 32) >> 6
	}
}

// FHadamard4x4 transforms the 16 luma DC coefficients of an Intra16x16
// macroblock. The result is halved with rounding as in the reference
// encoder.
func FHadamard4x4(in, out *[16]int32) {
	var tmp [16]int32
	hadamardRows(in, &tmp)
	for i := 0; i < 4; i++ {
		a := tmp[i] + tmp[12+i]
		b := tmp[4+i] + tmp[8+i]
		c := tmp[4+i] - tmp[8+i]
		d := tmp[i] - tmp[12+i]
		out[i] = (a + b + 1) >> 1
		out[4+i] = (d + c + 1) >> 1
		out[8+i] = (a - b + 1) >> 1
		out[12+i] = (d - c + 1) >> 1
	}
}

// IHadamard4x4 is the decoder-side luma DC transform (8.5.10). It applies
// no scaling.
func IHadamard4x4(in, out *[16]int32) {
	var tmp [16]int32
	hadamardRows(in, &tmp)
	for i := 0; i < 4; i++ {
		a := tmp[i] + tmp[12+i]
		b := tmp[4+i] + tmp[8+i]
		c := tmp[4+i] - tmp[8+i]
		d := tmp[i] - tmp[12+i]
		out[i] = a + b
		out[4+i] = d + c
		out[8+i] = a - b
		out[12+i] = d - c
	}
}

func hadamardRows(in, out *[16]int32) {
	for i := 0; i < 4; i++ {
		p := in[i*4 : i*4+4]
		a := p[0] + p[3]
		b := p[1] + p[2]
		c := p[1] - p[2]
		d := p[0] - p[3]
		out[i*4+0] = a + b
		out[i*4+1] = d + c
		out[i*4+2] = a - b
		out[i*4+3] = d - c
	}
}

// Hadamard2x2 transforms the four chroma DC coefficients (raster order).
// The matrix is its own inverse up to scaling, so the decoder uses the same
// function (8.5.11.1).
func Hadamard2x2(in, out *[4]int32) {
	a, b, c, d := in[0], in[1], in[2], in[3]
	out[0] = a + b + c + d
	out[1] = a - b + c - d
	out[2] = a + b - c - d
	out[3] = a - b - c + d
}
