// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package pict

import (
	"encoding/binary"

	"github.com/depp/unrez"
)

// A Color is a 16-bit RGB color from a picture's color table.
type Color struct {
	// According to QuickDraw, "index or other value". Safe to ignore.
	V int16
	// Color components, with the full 16-bit range preserved.
	R, G, B uint16
}

// PixData is unpacked pixel data from a picture, with the associated color
// table and blit operation. Data holds the raster in rows of RowBytes
// bytes; pixels are DataPixelSize bits each, unshuffled, in native byte
// order.
type PixData struct {
	Data []byte
	// DataPixelSize is the size of each unpacked pixel in bits: 8 for
	// indexed pixels, 16 for packed 5-bit RGB words, 32 for R G B 0 bytes.
	DataPixelSize int
	// The QuickDraw PixMap fields, under their original names.
	RowBytes  int
	Bounds    Rect
	PackType  int
	PackSize  int
	HRes      int
	VRes      int
	PixelType int
	PixelSize int
	CmpCount  int
	CmpSize   int
	// Color palette, for indexed pixels.
	CTTable []Color
	// Blit operation.
	SrcRect  Rect
	DestRect Rect
	Mode     int
}

// readPixMap reads the 46 bytes of a PixMap starting at rowBytes, i.e.
// with no baseAddr.
//
// From Imaging With QuickDraw p. 4-10, or struct PixMap in QuickDraw.h:
// off len
//
//	 0   4  baseAddr (skipped by our callers)
//	 4   2  rowBytes
//	 6   8  bounds
//	14   2  pmVersion (ignored)
//	16   2  packType
//	18   4  packSize
//	22   4  hRes
//	26   4  vRes
//	30   2  pixelType
//	32   2  pixelSize
//	34   2  cmpCount
//	36   2  cmpSize
//	38   4  planeBytes (ignored)
//	42   4  pmTable (ignored)
//	46   4  pmExt (ignored)
func readPixMap(p []byte) PixData {
	var m PixData
	m.RowBytes = int(binary.BigEndian.Uint16(p) & 0x7fff)
	m.Bounds = readRect(p[2:])
	m.PackType = int(int16(binary.BigEndian.Uint16(p[12:])))
	m.PackSize = int(int32(binary.BigEndian.Uint32(p[14:])))
	m.HRes = int(int32(binary.BigEndian.Uint32(p[18:])))
	m.VRes = int(int32(binary.BigEndian.Uint32(p[22:])))
	m.PixelType = int(int16(binary.BigEndian.Uint16(p[26:])))
	m.PixelSize = int(int16(binary.BigEndian.Uint16(p[28:])))
	m.CmpCount = int(int16(binary.BigEndian.Uint16(p[30:])))
	m.CmpSize = int(int16(binary.BigEndian.Uint16(p[32:])))
	return m
}

// dataPixelData handles the CopyBits opcodes: the source PixMap, an
// optional color table, the blit rectangles, and the packed raster are
// copied directly into the picture. Only PackBitsRect and DirectBitsRect
// are supported.
func dataPixelData(cb *Callbacks, version, opcode int, data []byte) int {
	var pix PixData
	ptr := data

	switch opcode {
	case opPackBitsRect:
		// len
		//  46  PixMap, no baseAddr
		// >=8  ColorTable (len = 8 + 8 * (ctSize+1))
		//   8  srcRect
		//   8  destRect
		//   2  mode
		if len(ptr) < 46+8 {
			return pictEOF(cb, opcode)
		}
		pix = readPixMap(ptr)
		ptr = ptr[46:]
		// ColorTable: ctSeed int32, ctFlags int16, ctSize int16, then
		// ctSize+1 colors of {value int16, r, g, b uint16}.
		n := int(int16(binary.BigEndian.Uint16(ptr[6:]))) + 1
		ptr = ptr[8:]
		if n < 0 || n > 256 {
			return errorf(cb, unrez.ErrInvalid, opcode, "invalid color table size: %d", n)
		}
		if len(ptr) < 8*n+18 {
			return pictEOF(cb, opcode)
		}
		colors := make([]Color, n)
		for i := range colors {
			colors[i] = Color{
				V: int16(binary.BigEndian.Uint16(ptr)),
				R: binary.BigEndian.Uint16(ptr[2:]),
				G: binary.BigEndian.Uint16(ptr[4:]),
				B: binary.BigEndian.Uint16(ptr[6:]),
			}
			ptr = ptr[8:]
		}
		pix.CTTable = colors
	case opDirectBitsRect:
		// len
		//  50  PixMap, with baseAddr = $000000FF for compatibility
		//   8  srcRect
		//   8  destRect
		//   2  mode
		if len(ptr) < 68 {
			return pictEOF(cb, opcode)
		}
		pix = readPixMap(ptr[4:])
		ptr = ptr[50:]
	default:
		return errorf(cb, unrez.ErrUnsupported, opcode, "unsupported pixel data opcode")
	}

	pix.SrcRect = readRect(ptr)
	pix.DestRect = readRect(ptr[8:])
	pix.Mode = int(int16(binary.BigEndian.Uint16(ptr[16:])))
	ptr = ptr[18:]

	srcRowBytes := pix.RowBytes
	if srcRowBytes&1 != 0 || srcRowBytes <= 0 || srcRowBytes > 0x4000 {
		return errorf(cb, unrez.ErrInvalid, opcode, "bad rowBytes value: %d", pix.RowBytes)
	}
	height := int(pix.Bounds.Bottom) - int(pix.Bounds.Top)
	width := int(pix.Bounds.Right) - int(pix.Bounds.Left)
	if height <= 0 || width <= 0 {
		return errorf(cb, unrez.ErrInvalid, opcode,
			"invalid bounds: top=%d, left=%d, bottom=%d, right=%d",
			pix.Bounds.Top, pix.Bounds.Left, pix.Bounds.Bottom, pix.Bounds.Right)
	}

	var destRowBytes int
	switch pix.PixelSize {
	case 8:
		pix.DataPixelSize = 8
		destRowBytes = (width + 3) &^ 3
		if srcRowBytes < width {
			return errorf(cb, unrez.ErrInvalid, opcode, "bad rowBytes value: %d", pix.RowBytes)
		}
	case 16:
		pix.DataPixelSize = 16
		destRowBytes = width * 2
		if srcRowBytes < width*2 {
			return errorf(cb, unrez.ErrInvalid, opcode, "bad rowBytes value: %d", pix.RowBytes)
		}
	case 32:
		pix.DataPixelSize = 32
		destRowBytes = width * 4
		if srcRowBytes&3 != 0 {
			return errorf(cb, unrez.ErrInvalid, opcode, "bad rowBytes value: %d", pix.RowBytes)
		}
		// Row storage is three planes of width samples; the declared
		// rowBytes counts four components.
		srcRowBytes = srcRowBytes * 3 >> 2
		if srcRowBytes < width*3 {
			return errorf(cb, unrez.ErrInvalid, opcode, "bad rowBytes value: %d", pix.RowBytes)
		}
	default:
		return errorf(cb, unrez.ErrInvalid, opcode, "bad pixelSize value: %d", pix.PixelSize)
	}
	if height > (1<<30)/destRowBytes {
		return errorf(cb, unrez.ErrInvalid, opcode, "image too large")
	}
	pix.Data = make([]byte, destRowBytes*height)
	pix.RowBytes = destRowBytes

	packType := pix.PackType
	if srcRowBytes < 8 {
		packType = 1
	}
	var consumed, badPix int
	var err error
	switch packType {
	case 0:
		if pix.PixelSize != 8 {
			badPix = pix.PixelSize
			break
		}
		consumed, err = readPacked8(height, width, pix.Data, destRowBytes, ptr, srcRowBytes)
	case 1:
		switch pix.PixelSize {
		case 8:
			consumed, err = readUnpacked8(height, width, pix.Data, destRowBytes, ptr, srcRowBytes)
		case 16:
			consumed, err = readUnpacked16(height, width, pix.Data, destRowBytes, ptr, srcRowBytes)
		case 32:
			consumed, err = readUnpacked32(height, width, pix.Data, destRowBytes, ptr, srcRowBytes)
		default:
			badPix = pix.PixelSize
		}
	case 3:
		if pix.PixelSize != 16 {
			badPix = pix.PixelSize
			break
		}
		consumed, err = readPacked16(height, width, pix.Data, destRowBytes, ptr, srcRowBytes)
	case 4:
		if pix.PixelSize != 32 {
			badPix = pix.PixelSize
			break
		}
		consumed, err = readPacked32(height, width, pix.Data, destRowBytes, ptr, srcRowBytes)
	default:
		return errorf(cb, unrez.ErrUnsupported, opcode, "unsupported packType value: %d", pix.PackType)
	}
	if badPix != 0 {
		return errorf(cb, unrez.ErrInvalid, opcode, "bad pixelSize value: %d", badPix)
	}
	switch err {
	case nil:
	case errEOF:
		return pictEOF(cb, opcode)
	default:
		return errorf(cb, unrez.ErrInvalid, opcode, "invalid pixel data")
	}
	ptr = ptr[consumed:]

	if cb.Pixels(opcode, &pix) != 0 {
		return -1
	}
	return len(data) - len(ptr)
}

// readPacked8 reads a PackBits 8-bit raster. Each row is preceded by its
// packed length: one byte when the row is at most 250 bytes, two
// otherwise.
func readPacked8(height, width int, dst []byte, drowbytes int, src []byte, srowbytes int) (int, error) {
	pos := 0
	scratch := make([]byte, srowbytes)
	for y := 0; y < height; y++ {
		rowsize, n, err := packedRowSize(src[pos:], srowbytes)
		if err != nil {
			return 0, err
		}
		pos += n
		if len(src)-pos < rowsize {
			return 0, errEOF
		}
		if err := unpackBytes(scratch, src[pos:pos+rowsize]); err != nil {
			return 0, err
		}
		row := dst[y*drowbytes:][:drowbytes]
		clear(row[copy(row, scratch[:min(srowbytes, drowbytes)]):])
		pos += rowsize
	}
	return pos, nil
}

// readUnpacked8 reads rows stored verbatim.
func readUnpacked8(height, width int, dst []byte, drowbytes int, src []byte, srowbytes int) (int, error) {
	if len(src) < srowbytes*height {
		return 0, errEOF
	}
	for y := 0; y < height; y++ {
		row := dst[y*drowbytes:][:drowbytes]
		clear(row[copy(row, src[y*srowbytes:][:min(srowbytes, drowbytes)]):])
	}
	return srowbytes * height, nil
}

// readPacked16 reads a PackBits raster of 16-bit units, storing each pixel
// in native byte order.
func readPacked16(height, width int, dst []byte, drowbytes int, src []byte, srowbytes int) (int, error) {
	pos := 0
	scratch := make([]uint16, srowbytes/2)
	for y := 0; y < height; y++ {
		rowsize, n, err := packedRowSize(src[pos:], srowbytes)
		if err != nil {
			return 0, err
		}
		pos += n
		if len(src)-pos < rowsize {
			return 0, errEOF
		}
		if err := unpackWords(scratch, src[pos:pos+rowsize]); err != nil {
			return 0, err
		}
		row := dst[y*drowbytes:]
		for x := 0; x < width; x++ {
			binary.NativeEndian.PutUint16(row[x*2:], scratch[x])
		}
		pos += rowsize
	}
	return pos, nil
}

// readUnpacked16 reads rows of big-endian 16-bit pixels, storing each in
// native byte order.
func readUnpacked16(height, width int, dst []byte, drowbytes int, src []byte, srowbytes int) (int, error) {
	if len(src) < srowbytes*height {
		return 0, errEOF
	}
	for y := 0; y < height; y++ {
		in := src[y*srowbytes:]
		row := dst[y*drowbytes:]
		for x := 0; x < width; x++ {
			binary.NativeEndian.PutUint16(row[x*2:], binary.BigEndian.Uint16(in[x*2:]))
		}
	}
	return srowbytes * height, nil
}

// interleave32 turns one planar row into R G B 0 pixels. Unpacked 32-bit
// rows are stored by component, then column: all the red samples, all the
// green, then all the blue.
func interleave32(dst, src []byte, width int) {
	for cmp := 0; cmp < 3; cmp++ {
		for x := 0; x < width; x++ {
			dst[x*4+cmp] = src[cmp*width+x]
		}
	}
	for x := 0; x < width; x++ {
		dst[x*4+3] = 0
	}
}

// readUnpacked32 reads planar rows stored verbatim.
func readUnpacked32(height, width int, dst []byte, drowbytes int, src []byte, srowbytes int) (int, error) {
	if len(src) < srowbytes*height {
		return 0, errEOF
	}
	for y := 0; y < height; y++ {
		row := dst[y*drowbytes:][:drowbytes]
		interleave32(row, src[y*srowbytes:], width)
		clear(row[width*4:])
	}
	return srowbytes * height, nil
}

// readPacked32 reads a PackBits 8-bit stream per row, holding three planes
// of width samples, and interleaves them to R G B 0.
func readPacked32(height, width int, dst []byte, drowbytes int, src []byte, srowbytes int) (int, error) {
	pos := 0
	scratch := make([]byte, srowbytes)
	for y := 0; y < height; y++ {
		rowsize, n, err := packedRowSize(src[pos:], srowbytes)
		if err != nil {
			return 0, err
		}
		pos += n
		if len(src)-pos < rowsize {
			return 0, errEOF
		}
		if err := unpackBytes(scratch, src[pos:pos+rowsize]); err != nil {
			return 0, err
		}
		row := dst[y*drowbytes:][:drowbytes]
		interleave32(row, scratch, width)
		clear(row[width*4:])
		pos += rowsize
	}
	return pos, nil
}

// packedRowSize reads the per-row packed length prefix: one byte for rows
// of up to 250 bytes, two bytes for longer rows.
func packedRowSize(src []byte, srowbytes int) (rowsize, n int, err error) {
	if srowbytes <= 250 {
		if len(src) < 1 {
			return 0, 0, errEOF
		}
		return int(src[0]), 1, nil
	}
	if len(src) < 2 {
		return 0, 0, errEOF
	}
	return int(binary.BigEndian.Uint16(src)), 2, nil
}

// PixData16To32 converts 16-bit pixel data to 32-bit pixel data. The
// packed 5-bit components are expanded to 8 bits, replicating the high
// bits into the low bits.
func PixData16To32(pix *PixData) error {
	width := pix.RowBytes >> 1
	height := int(pix.Bounds.Bottom) - int(pix.Bounds.Top)
	if pix.DataPixelSize != 16 || pix.RowBytes&1 != 0 || width <= 0 || height <= 0 {
		return unrez.ErrInvalid
	}
	dest := make([]byte, width*height*4)
	for i := 0; i < width*height; i++ {
		v := binary.NativeEndian.Uint16(pix.Data[i*2:])
		dest[i*4+0] = byte(v>>7)&0xf8 | byte(v>>12)&7
		dest[i*4+1] = byte(v>>2)&0xf8 | byte(v>>7)&7
		dest[i*4+2] = byte(v<<3)&0xf8 | byte(v>>2)&7
		dest[i*4+3] = 0
	}
	pix.Data = dest
	pix.RowBytes = width * 4
	pix.DataPixelSize = 32
	pix.PixelSize = 32
	pix.CmpSize = 8
	return nil
}
