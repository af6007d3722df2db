// Package pool recycles the byte buffers the encoder assembles Annex B
// frames and planar pictures in. Buffers are bucketed by size class so a
// stream of same-sized frames reuses the same allocations.
package pool

import "sync"

// Size classes for bucketed pools.
const (
	Size4K  = 4 << 10
	Size64K = 64 << 10
	Size1M  = 1 << 20
	Size8M  = 8 << 20
)

var sizes = [...]int{Size4K, Size64K, Size1M, Size8M}

var pools [len(sizes)]sync.Pool

// bucketIndex returns the pool index for a given size, or -1 for sizes
// above the largest class.
func bucketIndex(size int) int {
	for i, s := range sizes {
		if size <= s {
			return i
		}
	}
	return -1
}

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i].New = func() any {
			b := make([]byte, sz)
			return &b
		}
	}
}

// Get returns a byte slice of length size. Its contents are undefined.
// Sizes above Size8M are allocated directly.
func Get(size int) []byte {
	idx := bucketIndex(size)
	if idx < 0 {
		return make([]byte, size)
	}
	bp := pools[idx].Get().(*[]byte)
	return (*bp)[:size]
}

// GetZeroed is Get with the returned bytes cleared.
func GetZeroed(size int) []byte {
	b := Get(size)
	clear(b)
	return b
}

// Put returns b to the pool of its capacity class. Slices that do not fill
// a class exactly are dropped, so a buffer grown by append past its class
// never lands in a smaller bucket.
func Put(b []byte) {
	c := cap(b)
	idx := bucketIndex(c)
	if idx < 0 || sizes[idx] != c {
		return
	}
	b = b[:c]
	pools[idx].Put(&b)
}
