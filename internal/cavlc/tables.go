package cavlc

// vlc is a variable-length codeword: the low n bits of code, MSB first.
type vlc struct {
	code uint16
	n    uint8
}

// coeffTokenTables[table][totalCoeff][trailingOnes] (Table 9-5). The table
// index comes from tokenTable.
var coeffTokenTables = [5][17][4]vlc{
	{ // 0 <= nC < 2
		{{0x1, 1}, {}, {}, {}},
		{{0x5, 6}, {0x1, 2}, {}, {}},
		{{0x7, 8}, {0x4, 6}, {0x1, 3}, {}},
		{{0x7, 9}, {0x6, 8}, {0x5, 7}, {0x3, 5}},
		{{0x7, 10}, {0x6, 9}, {0x5, 8}, {0x3, 6}},
		{{0x7, 11}, {0x6, 10}, {0x5, 9}, {0x4, 7}},
		{{0xf, 13}, {0x6, 11}, {0x5, 10}, {0x4, 8}},
		{{0xb, 13}, {0xe, 13}, {0x5, 11}, {0x4, 9}},
		{{0x8, 13}, {0xa, 13}, {0xd, 13}, {0x4, 10}},
		{{0xf, 14}, {0xe, 14}, {0x9, 13}, {0x4, 11}},
		{{0xb, 14}, {0xa, 14}, {0xd, 14}, {0xc, 13}},
		{{0xf, 15}, {0xe, 15}, {0x9, 14}, {0xc, 14}},
		{{0xb, 15}, {0xa, 15}, {0xd, 15}, {0x8, 14}},
		{{0xf, 16}, {0x1, 15}, {0x9, 15}, {0xc, 15}},
		{{0xb, 16}, {0xe, 16}, {0xd, 16}, {0x8, 15}},
		{{0x7, 16}, {0xa, 16}, {0x9, 16}, {0xc, 16}},
		{{0x4, 16}, {0x6, 16}, {0x5, 16}, {0x8, 16}},
	},
	{ // 2 <= nC < 4
		{{0x3, 2}, {}, {}, {}},
		{{0xb, 6}, {0x2, 2}, {}, {}},
		{{0x7, 6}, {0x7, 5}, {0x3, 3}, {}},
		{{0x7, 7}, {0xa, 6}, {0x9, 6}, {0x5, 4}},
		{{0x7, 8}, {0x6, 6}, {0x5, 6}, {0x4, 4}},
		{{0x4, 8}, {0x6, 7}, {0x5, 7}, {0x6, 5}},
		{{0x7, 9}, {0x6, 8}, {0x5, 8}, {0x8, 6}},
		{{0xf, 11}, {0x6, 9}, {0x5, 9}, {0x4, 6}},
		{{0xb, 11}, {0xe, 11}, {0xd, 11}, {0x4, 7}},
		{{0xf, 12}, {0xa, 11}, {0x9, 11}, {0x4, 9}},
		{{0xb, 12}, {0xe, 12}, {0xd, 12}, {0xc, 11}},
		{{0x8, 12}, {0xa, 12}, {0x9, 12}, {0x8, 11}},
		{{0xf, 13}, {0xe, 13}, {0xd, 13}, {0xc, 12}},
		{{0xb, 13}, {0xa, 13}, {0x9, 13}, {0xc, 13}},
		{{0x7, 13}, {0xb, 14}, {0x6, 13}, {0x8, 13}},
		{{0x9, 14}, {0x8, 14}, {0xa, 14}, {0x1, 13}},
		{{0x7, 14}, {0x6, 14}, {0x5, 14}, {0x4, 14}},
	},
	{ // 4 <= nC < 8
		{{0xf, 4}, {}, {}, {}},
		{{0xf, 6}, {0xe, 4}, {}, {}},
		{{0xb, 6}, {0xf, 5}, {0xd, 4}, {}},
		{{0x8, 6}, {0xc, 5}, {0xe, 5}, {0xc, 4}},
		{{0xf, 7}, {0xa, 5}, {0xb, 5}, {0xb, 4}},
		{{0xb, 7}, {0x8, 5}, {0x9, 5}, {0xa, 4}},
		{{0x9, 7}, {0xe, 6}, {0xd, 6}, {0x9, 4}},
		{{0x8, 7}, {0xa, 6}, {0x9, 6}, {0x8, 4}},
		{{0xf, 8}, {0xe, 7}, {0xd, 7}, {0xd, 5}},
		{{0xb, 8}, {0xe, 8}, {0xa, 7}, {0xc, 6}},
		{{0xf, 9}, {0xa, 8}, {0xd, 8}, {0xc, 7}},
		{{0xb, 9}, {0xe, 9}, {0x9, 8}, {0xc, 8}},
		{{0x8, 9}, {0xa, 9}, {0xd, 9}, {0x8, 8}},
		{{0xd, 10}, {0x7, 9}, {0x9, 9}, {0xc, 9}},
		{{0x9, 10}, {0xc, 10}, {0xb, 10}, {0xa, 10}},
		{{0x5, 10}, {0x8, 10}, {0x7, 10}, {0x6, 10}},
		{{0x1, 10}, {0x4, 10}, {0x3, 10}, {0x2, 10}},
	},
	{ // nC >= 8 (6-bit fixed length)
		{{0x3, 6}, {}, {}, {}},
		{{0x0, 6}, {0x1, 6}, {}, {}},
		{{0x4, 6}, {0x5, 6}, {0x6, 6}, {}},
		{{0x8, 6}, {0x9, 6}, {0xa, 6}, {0xb, 6}},
		{{0xc, 6}, {0xd, 6}, {0xe, 6}, {0xf, 6}},
		{{0x10, 6}, {0x11, 6}, {0x12, 6}, {0x13, 6}},
		{{0x14, 6}, {0x15, 6}, {0x16, 6}, {0x17, 6}},
		{{0x18, 6}, {0x19, 6}, {0x1a, 6}, {0x1b, 6}},
		{{0x1c, 6}, {0x1d, 6}, {0x1e, 6}, {0x1f, 6}},
		{{0x20, 6}, {0x21, 6}, {0x22, 6}, {0x23, 6}},
		{{0x24, 6}, {0x25, 6}, {0x26, 6}, {0x27, 6}},
		{{0x28, 6}, {0x29, 6}, {0x2a, 6}, {0x2b, 6}},
		{{0x2c, 6}, {0x2d, 6}, {0x2e, 6}, {0x2f, 6}},
		{{0x30, 6}, {0x31, 6}, {0x32, 6}, {0x33, 6}},
		{{0x34, 6}, {0x35, 6}, {0x36, 6}, {0x37, 6}},
		{{0x38, 6}, {0x39, 6}, {0x3a, 6}, {0x3b, 6}},
		{{0x3c, 6}, {0x3d, 6}, {0x3e, 6}, {0x3f, 6}},
	},
	{ // nC == -1 (chroma DC)
		{{0x1, 2}, {}, {}, {}},
		{{0x7, 6}, {0x1, 1}, {}, {}},
		{{0x4, 6}, {0x6, 6}, {0x1, 3}, {}},
		{{0x3, 6}, {0x3, 7}, {0x2, 7}, {0x5, 6}},
		{{0x2, 6}, {0x3, 8}, {0x2, 8}, {0x0, 7}},
		{{}, {}, {}, {}},
		{{}, {}, {}, {}},
		{{}, {}, {}, {}},
		{{}, {}, {}, {}},
		{{}, {}, {}, {}},
		{{}, {}, {}, {}},
		{{}, {}, {}, {}},
		{{}, {}, {}, {}},
		{{}, {}, {}, {}},
		{{}, {}, {}, {}},
		{{}, {}, {}, {}},
		{{}, {}, {}, {}},
	},
}

// totalZerosTable[totalCoeff][totalZeros] for 4x4 blocks (Tables 9-7, 9-8).
var totalZerosTable = [16][16]vlc{
	{},
	{{0x1, 1}, {0x3, 3}, {0x2, 3}, {0x3, 4}, {0x2, 4}, {0x3, 5}, {0x2, 5}, {0x3, 6}, {0x2, 6}, {0x3, 7}, {0x2, 7}, {0x3, 8}, {0x2, 8}, {0x3, 9}, {0x2, 9}, {0x1, 9}},
	{{0x7, 3}, {0x6, 3}, {0x5, 3}, {0x4, 3}, {0x3, 3}, {0x5, 4}, {0x4, 4}, {0x3, 4}, {0x2, 4}, {0x3, 5}, {0x2, 5}, {0x3, 6}, {0x2, 6}, {0x1, 6}, {0x0, 6}},
	{{0x5, 4}, {0x7, 3}, {0x6, 3}, {0x5, 3}, {0x4, 4}, {0x3, 4}, {0x4, 3}, {0x3, 3}, {0x2, 4}, {0x3, 5}, {0x2, 5}, {0x1, 6}, {0x1, 5}, {0x0, 6}},
	{{0x3, 5}, {0x7, 3}, {0x5, 4}, {0x4, 4}, {0x6, 3}, {0x5, 3}, {0x4, 3}, {0x3, 4}, {0x3, 3}, {0x2, 4}, {0x2, 5}, {0x1, 5}, {0x0, 5}},
	{{0x5, 4}, {0x4, 4}, {0x3, 4}, {0x7, 3}, {0x6, 3}, {0x5, 3}, {0x4, 3}, {0x3, 3}, {0x2, 4}, {0x1, 5}, {0x1, 4}, {0x0, 5}},
	{{0x1, 6}, {0x1, 5}, {0x7, 3}, {0x6, 3}, {0x5, 3}, {0x4, 3}, {0x3, 3}, {0x2, 3}, {0x1, 4}, {0x1, 3}, {0x0, 6}},
	{{0x1, 6}, {0x1, 5}, {0x5, 3}, {0x4, 3}, {0x3, 3}, {0x3, 2}, {0x2, 3}, {0x1, 4}, {0x1, 3}, {0x0, 6}},
	{{0x1, 6}, {0x1, 4}, {0x1, 5}, {0x3, 3}, {0x3, 2}, {0x2, 2}, {0x2, 3}, {0x1, 3}, {0x0, 6}},
	{{0x1, 6}, {0x0, 6}, {0x1, 4}, {0x3, 2}, {0x2, 2}, {0x1, 3}, {0x1, 2}, {0x1, 5}},
	{{0x1, 5}, {0x0, 5}, {0x1, 3}, {0x3, 2}, {0x2, 2}, {0x1, 2}, {0x1, 4}},
	{{0x0, 4}, {0x1, 4}, {0x1, 3}, {0x2, 3}, {0x1, 1}, {0x3, 3}},
	{{0x0, 4}, {0x1, 4}, {0x1, 2}, {0x1, 1}, {0x1, 3}},
	{{0x0, 3}, {0x1, 3}, {0x1, 1}, {0x1, 2}},
	{{0x0, 2}, {0x1, 2}, {0x1, 1}},
	{{0x0, 1}, {0x1, 1}},
}

// totalZerosChromaDC[totalCoeff][totalZeros] for 2x2 chroma DC blocks (Table 9-9a).
var totalZerosChromaDC = [4][4]vlc{
	{},
	{{0x1, 1}, {0x1, 2}, {0x1, 3}, {0x0, 3}},
	{{0x1, 1}, {0x1, 2}, {0x0, 2}},
	{{0x1, 1}, {0x0, 1}},
}

// runBeforeTable[min(zerosLeft, 7)][runBefore] (Table 9-10).
var runBeforeTable = [8][15]vlc{
	{},
	{{0x1, 1}, {0x0, 1}},
	{{0x1, 1}, {0x1, 2}, {0x0, 2}},
	{{0x3, 2}, {0x2, 2}, {0x1, 2}, {0x0, 2}},
	{{0x3, 2}, {0x2, 2}, {0x1, 2}, {0x1, 3}, {0x0, 3}},
	{{0x3, 2}, {0x2, 2}, {0x3, 3}, {0x2, 3}, {0x1, 3}, {0x0, 3}},
	{{0x3, 2}, {0x0, 3}, {0x1, 3}, {0x3, 3}, {0x2, 3}, {0x5, 3}, {0x4, 3}},
	{{0x7, 3}, {0x6, 3}, {0x5, 3}, {0x4, 3}, {0x3, 3}, {0x2, 3}, {0x1, 3}, {0x1, 4}, {0x1, 5}, {0x1, 6}, {0x1, 7}, {0x1, 8}, {0x1, 9}, {0x1, 10}, {0x1, 11}},
}
