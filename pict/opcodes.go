// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package pict

// Variable-length payload kinds. Negative entries in the opcode tables are
// -1-kind; this must stay synchronized with the handler table in pict.go.
const (
	kindVersion = iota
	kindEnd
	kindData16
	kindData32
	kindLongComment
	kindRegion
	kindPattern
	kindText
	kindNotDetermined
	kindPolygon
	kindPixelData
	kindQuickTime
)

const (
	opVersion        = 0x11
	opPackBitsRect   = 0x98
	opDirectBitsRect = 0x9a
	opLongComment    = 0xa1
	opEndPic         = 0xff
	opHeaderOp       = 0x0c00
)

// payload returns the table entry for kind k.
func payload(k int) int16 { return int16(-1 - k) }

// opcodeData gives the payload of each one-byte opcode: a fixed byte count
// when non-negative, otherwise -1-kind. From Imaging With QuickDraw,
// appendix A, table A-2.
var opcodeData = [256]int16{
	0x00: 0,                     // NOP
	0x01: payload(kindRegion),   // Clip
	0x02: payload(kindPattern),  // BkPat
	0x03: 2,                     // TxFont
	0x04: 1,                     // TxFace
	0x05: 2,                     // TxMode
	0x06: 4,                     // SpExtra
	0x07: 4,                     // PnSize
	0x08: 2,                     // PnMode
	0x09: payload(kindPattern),  // PnPat
	0x0a: payload(kindPattern),  // FillPat
	0x0b: 4,                     // OvSize
	0x0c: 4,                     // Origin
	0x0d: 2,                     // TxSize
	0x0e: 4,                     // FgColor
	0x0f: 4,                     // BkColor
	0x10: 8,                     // TxRatio
	0x11: payload(kindVersion),  // VersionOp
	0x12: payload(kindPattern),  // BkPixPat
	0x13: payload(kindPattern),  // PnPixPat
	0x14: payload(kindPattern),  // FillPixPat
	0x15: 2,                     // PnLocHFrac
	0x16: 2,                     // ChExtra
	0x17: 0,                     // reserved
	0x18: 0,                     // reserved
	0x19: 0,                     // reserved
	0x1a: 6,                     // RGBFgCol
	0x1b: 6,                     // RGBBkCol
	0x1c: 0,                     // HiliteMode
	0x1d: 6,                     // HiliteColor
	0x1e: 0,                     // DefHilite
	0x1f: 6,                     // OpColor
	0x20: 8,                     // Line
	0x21: 4,                     // LineFrom
	0x22: 6,                     // ShortLine
	0x23: 2,                     // ShortLineFrom
	0x24: payload(kindData16),   // reserved
	0x25: payload(kindData16),   // reserved
	0x26: payload(kindData16),   // reserved
	0x27: payload(kindData16),   // reserved
	0x28: payload(kindText),     // LongText
	0x29: payload(kindText),     // DHText
	0x2a: payload(kindText),     // DVText
	0x2b: payload(kindText),     // DHDVText
	0x2c: payload(kindData16),   // fontName
	0x2d: payload(kindData16),   // lineJustify
	0x2e: payload(kindData16),   // glyphState
	0x2f: payload(kindData16),   // reserved
	0xa0: 2,                     // ShortComment
	0xa1: payload(kindLongComment),
	0xff: payload(kindEnd), // OpEndPic
}

func init() {
	fill := func(lo, hi int, v int16) {
		for op := lo; op <= hi; op++ {
			opcodeData[op] = v
		}
	}
	fill(0x30, 0x37, 8)                        // frameRect family
	fill(0x38, 0x3f, 0)                        // frameSameRect family
	fill(0x40, 0x47, 8)                        // frameRRect family
	fill(0x48, 0x4f, 0)
	fill(0x50, 0x57, 8) // frameOval family
	fill(0x58, 0x5f, 0)
	fill(0x60, 0x67, 12) // frameArc family
	fill(0x68, 0x6f, 4)
	fill(0x70, 0x77, payload(kindPolygon))
	fill(0x78, 0x7f, 0)
	fill(0x80, 0x87, payload(kindRegion))
	fill(0x88, 0x8f, 0)
	fill(0x90, 0x91, payload(kindPixelData)) // BitsRect, BitsRgn
	fill(0x92, 0x97, payload(kindData16))    // reserved
	fill(0x98, 0x9b, payload(kindPixelData)) // PackBits/DirectBits families
	fill(0x9c, 0x9f, payload(kindData16))    // reserved
	fill(0xa2, 0xaf, payload(kindData16))    // reserved
	fill(0xb0, 0xcf, 0)                      // reserved
	fill(0xd0, 0xfe, payload(kindData32))    // reserved
}

// opcodeRange describes a range of two-byte opcodes. The table is ordered
// by start and scanned linearly; it is small.
type opcodeRange struct {
	start, end uint16
	name       string
	data       int16
}

var opcodeRanges = []opcodeRange{
	{0x0c00, 0x0c00, "HeaderOp", 24},
	{0x8100, 0x81ff, "", payload(kindData32)},
	{0x8200, 0x8200, "CompressedQuickTime", payload(kindQuickTime)},
	{0x8201, 0x8201, "UncompressedQuickTime", payload(kindQuickTime)},
}

// findData returns the payload descriptor for a two-byte opcode above
// 0xff, or false if the opcode is unknown.
func findData(opcode int) (int16, bool) {
	for _, r := range opcodeRanges {
		if opcode >= int(r.start) && opcode <= int(r.end) {
			return r.data, true
		}
	}
	switch {
	case opcode >= 0x0100 && opcode <= 0x7fff:
		// Reserved for Apple: the data length is twice the opcode's high
		// byte (IWQD table A-5).
		return int16(2 * (opcode >> 8)), true
	case opcode >= 0x8000 && opcode <= 0x80ff:
		return 0, true
	case opcode >= 0x8202 && opcode <= 0xffff:
		return payload(kindData32), true
	}
	return 0, false
}

var opcodeNames = map[int]string{
	0x00: "NOP",
	0x01: "Clip",
	0x02: "BkPat",
	0x03: "TxFont",
	0x04: "TxFace",
	0x05: "TxMode",
	0x06: "SpExtra",
	0x07: "PnSize",
	0x08: "PnMode",
	0x09: "PnPat",
	0x0a: "FillPat",
	0x0b: "OvSize",
	0x0c: "Origin",
	0x0d: "TxSize",
	0x0e: "FgColor",
	0x0f: "BkColor",
	0x10: "TxRatio",
	0x11: "VersionOp",
	0x12: "BkPixPat",
	0x13: "PnPixPat",
	0x14: "FillPixPat",
	0x15: "PnLocHFrac",
	0x16: "ChExtra",
	0x1a: "RGBFgCol",
	0x1b: "RGBBkCol",
	0x1c: "HiliteMode",
	0x1d: "HiliteColor",
	0x1e: "DefHilite",
	0x1f: "OpColor",
	0x20: "Line",
	0x21: "LineFrom",
	0x22: "ShortLine",
	0x23: "ShortLineFrom",
	0x28: "LongText",
	0x29: "DHText",
	0x2a: "DVText",
	0x2b: "DHDVText",
	0x2c: "fontName",
	0x2d: "lineJustify",
	0x2e: "glyphState",
	0x30: "frameRect",
	0x31: "paintRect",
	0x32: "eraseRect",
	0x33: "invertRect",
	0x34: "fillRect",
	0x38: "frameSameRect",
	0x39: "paintSameRect",
	0x3a: "eraseSameRect",
	0x3b: "invertSameRect",
	0x3c: "fillSameRect",
	0x40: "frameRRect",
	0x41: "paintRRect",
	0x42: "eraseRRect",
	0x43: "invertRRect",
	0x44: "fillRRect",
	0x48: "frameSameRRect",
	0x49: "paintSameRRect",
	0x4a: "eraseSameRRect",
	0x4b: "invertSameRRect",
	0x4c: "fillSameRRect",
	0x50: "frameOval",
	0x51: "paintOval",
	0x52: "eraseOval",
	0x53: "invertOval",
	0x54: "fillOval",
	0x58: "frameSameOval",
	0x59: "paintSameOval",
	0x5a: "eraseSameOval",
	0x5b: "invertSameOval",
	0x5c: "fillSameOval",
	0x60: "frameArc",
	0x61: "paintArc",
	0x62: "eraseArc",
	0x63: "invertArc",
	0x64: "fillArc",
	0x68: "frameSameArc",
	0x69: "paintSameArc",
	0x6a: "eraseSameArc",
	0x6b: "invertSameArc",
	0x6c: "fillSameArc",
	0x70: "framePoly",
	0x71: "paintPoly",
	0x72: "erasePoly",
	0x73: "invertPoly",
	0x74: "fillPoly",
	0x78: "frameSamePoly",
	0x79: "paintSamePoly",
	0x7a: "eraseSamePoly",
	0x7b: "invertSamePoly",
	0x7c: "fillSamePoly",
	0x80: "frameRgn",
	0x81: "paintRgn",
	0x82: "eraseRgn",
	0x83: "invertRgn",
	0x84: "fillRgn",
	0x88: "frameSameRgn",
	0x89: "paintSameRgn",
	0x8a: "eraseSameRgn",
	0x8b: "invertSameRgn",
	0x8c: "fillSameRgn",
	0x90: "BitsRect",
	0x91: "BitsRgn",
	0x98: "PackBitsRect",
	0x99: "PackBitsRgn",
	0x9a: "DirectBitsRect",
	0x9b: "DirectBitsRgn",
	0xa0: "ShortComment",
	0xa1: "LongComment",
	0xff: "OpEndPic",
	0x0c00: "HeaderOp",
	0x8200: "CompressedQuickTime",
	0x8201: "UncompressedQuickTime",
}

// OpName returns the QuickDraw name of a picture opcode, or "" if the
// opcode is reserved or unknown.
func OpName(opcode int) string {
	return opcodeNames[opcode]
}
