package grid

// blockOrder maps a 4x4 luma block's coding-order index to its raster index
// inside the macroblock, and back (the permutation is its own inverse):
//
//	 0  1  4  5
//	 2  3  6  7
//	 8  9 12 13
//	10 11 14 15
var blockOrder = [LumaBlocks]int{0, 1, 4, 5, 2, 3, 6, 7, 8, 9, 12, 13, 10, 11, 14, 15}

// CoeffScan lists raster coefficient positions of a 4x4 block in zig-zag
// scan order.
var CoeffScan = [16]int{0, 1, 4, 8, 5, 2, 3, 6, 9, 12, 13, 10, 7, 11, 14, 15}

// BlockRaster converts a coding-order block index to raster order.
func BlockRaster(blk int) int {
	return blockOrder[blk]
}

// BlockIndex returns the coding-order index of the block at column x and
// row y (in 4x4 block units).
func BlockIndex(x, y int) int {
	return blockOrder[y*4+x]
}

// BlockXY returns the column and row (in 4x4 block units) of a coding-order
// block index.
func BlockXY(blk int) (x, y int) {
	r := blockOrder[blk]
	return r % 4, r / 4
}
