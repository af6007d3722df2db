package bitio

// emulationPrevention is the escape byte inserted into NAL payloads.
const emulationPrevention = 0x03

// RBSPToEBSP inserts an emulation prevention byte wherever two zero bytes
// are followed by a byte in 0x00..0x03, so the payload can never contain a
// start code prefix. The zero run resets on every non-zero byte and after
// each inserted escape.
func RBSPToEBSP(rbsp []byte) []byte {
	return AppendEBSP(make([]byte, 0, len(rbsp)+len(rbsp)/64+1), rbsp)
}

// AppendEBSP appends the escaped form of rbsp to dst.
func AppendEBSP(dst, rbsp []byte) []byte {
	zeros := 0
	for _, b := range rbsp {
		if zeros == 2 && b <= emulationPrevention {
			dst = append(dst, emulationPrevention)
			zeros = 0
		}
		dst = append(dst, b)
		if b == 0 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return dst
}

// EBSPToRBSP removes emulation prevention bytes, reversing RBSPToEBSP.
func EBSPToRBSP(ebsp []byte) []byte {
	out := make([]byte, 0, len(ebsp))
	zeros := 0
	for _, b := range ebsp {
		if zeros == 2 && b == emulationPrevention {
			zeros = 0
			continue
		}
		out = append(out, b)
		if b == 0 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return out
}
