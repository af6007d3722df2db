// Package cavlc implements the context-adaptive variable-length coding of
// H.264 residual blocks (residual_block_cavlc, 7.3.5.3.2 and 9.2).
package cavlc

import (
	"fmt"

	"github.com/deepteams/h264/internal/bitio"
)

// Block sizes accepted by EncodeBlock.
const (
	MaxCoeff4x4     = 16 // Intra4x4 luma blocks and Intra16x16 DC
	MaxCoeffAC      = 15 // AC blocks (DC coded separately)
	MaxCoeffChromaD = 4  // chroma DC 2x2
)

// ChromaDCNC is the nC value selecting the chroma DC coeff_token table.
const ChromaDCNC = -1

// tokenTable maps nC to an index in coeffTokenTables.
func tokenTable(nC int) int {
	switch {
	case nC == ChromaDCNC:
		return 4
	case nC < 2:
		return 0
	case nC < 4:
		return 1
	case nC < 8:
		return 2
	}
	return 3
}

func putVLC(w *bitio.Writer, c vlc) {
	if c.n == 0 {
		panic("cavlc: codeword missing from table")
	}
	w.PutBits(uint32(c.code), int(c.n))
}

// EncodeBlock writes one residual block and returns its TotalCoeff.
// coeffs holds the levels in zig-zag scan order; its length is the block's
// maxNumCoeff (16, 15 or 4). nC selects the coeff_token table.
func EncodeBlock(w *bitio.Writer, coeffs []int32, nC int) int {
	maxCoeff := len(coeffs)

	// Levels and runs from the highest frequency down.
	var levels [16]int32
	var runs [16]int
	total, last := 0, -1
	for i, c := range coeffs {
		if c != 0 {
			total++
			last = i
		}
	}
	n := 0
	for i := last; i >= 0; i-- {
		if coeffs[i] == 0 {
			continue
		}
		levels[n] = coeffs[i]
		r := 0
		for j := i - 1; j >= 0 && coeffs[j] == 0; j-- {
			r++
		}
		runs[n] = r
		n++
	}
	totalZeros := last + 1 - total

	trailingOnes := 0
	for trailingOnes < total && trailingOnes < 3 &&
		(levels[trailingOnes] == 1 || levels[trailingOnes] == -1) {
		trailingOnes++
	}

	putVLC(w, coeffTokenTables[tokenTable(nC)][total][trailingOnes])
	if total == 0 {
		return 0
	}

	for i := 0; i < trailingOnes; i++ {
		w.PutFlag(levels[i] < 0)
	}

	suffixLength := 0
	if total > 10 && trailingOnes < 3 {
		suffixLength = 1
	}
	for i := trailingOnes; i < total; i++ {
		l := levels[i]
		var levelCode int
		if l > 0 {
			levelCode = int(2*l - 2)
		} else {
			levelCode = int(-2*l - 1)
		}
		if i == trailingOnes && trailingOnes < 3 {
			levelCode -= 2
		}
		putLevel(w, levelCode, suffixLength)

		if suffixLength == 0 {
			suffixLength = 1
		}
		if abs32(l) > 3<<uint(suffixLength-1) && suffixLength < 6 {
			suffixLength++
		}
	}

	if total < maxCoeff {
		if maxCoeff == MaxCoeffChromaD {
			putVLC(w, totalZerosChromaDC[total][totalZeros])
		} else {
			putVLC(w, totalZerosTable[total][totalZeros])
		}
	}

	zerosLeft := totalZeros
	for i := 0; i < total-1 && zerosLeft > 0; i++ {
		putVLC(w, runBeforeTable[min(zerosLeft, 7)][runs[i]])
		zerosLeft -= runs[i]
	}
	return total
}

// putLevel writes level_prefix and level_suffix for levelCode.
func putLevel(w *bitio.Writer, levelCode, suffixLength int) {
	var prefix, suffix, suffixSize int
	switch {
	case suffixLength == 0 && levelCode < 14:
		prefix = levelCode
	case suffixLength == 0 && levelCode < 30:
		prefix, suffix, suffixSize = 14, levelCode-14, 4
	case suffixLength == 0:
		prefix, suffix, suffixSize = 15, levelCode-30, 12
	case levelCode < 15<<uint(suffixLength):
		prefix = levelCode >> uint(suffixLength)
		suffix = levelCode & (1<<uint(suffixLength) - 1)
		suffixSize = suffixLength
	default:
		prefix, suffix, suffixSize = 15, levelCode-15<<uint(suffixLength), 12
	}
	if suffix >= 1<<uint(suffixSize) && suffixSize > 0 {
		panic(fmt.Sprintf("cavlc: level code %d exceeds escape range", levelCode))
	}
	w.PutBits(0, prefix)
	w.PutBits(1, 1)
	w.PutBits(uint32(suffix), suffixSize)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
