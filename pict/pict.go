// Copyright (c) The UnRez Authors
// Licensed under the MIT license

// Package pict decodes QuickDraw pictures.
//
// The picture format is defined in "Inside Macintosh: Imaging With
// QuickDraw" (1994). Chapter 7 describes how pictures work and appendix A
// lists the opcodes. A picture is a short fixed header followed by a
// stream of opcodes, each with a fixed- or variable-length payload;
// version 1 pictures use one-byte opcodes, version 2 pictures use
// two-byte opcodes aligned to even offsets.
//
// Decoding is driven by callbacks rather than an intermediate tree: the
// decoder walks the stream once and reports the header, each opcode, and
// any unpacked pixel data as it goes. This is a low-level interface;
// errors are signalled through the error callback, not a return value.
package pict

import (
	"encoding/binary"
	"fmt"

	"github.com/depp/unrez"
)

// HeaderSize is the size of the header preceding a QuickDraw picture
// stored in a data fork. The header should be skipped; it is not present
// in pictures stored in a resource fork.
const HeaderSize = 512

// A Rect is a rectangle in a picture. Coordinates start from the top left.
type Rect struct {
	Top, Left, Bottom, Right int16
}

func readRect(p []byte) Rect {
	return Rect{
		Top:    int16(binary.BigEndian.Uint16(p)),
		Left:   int16(binary.BigEndian.Uint16(p[2:])),
		Bottom: int16(binary.BigEndian.Uint16(p[4:])),
		Right:  int16(binary.BigEndian.Uint16(p[6:])),
	}
}

// Callbacks receives the decoded picture stream. All callbacks must be
// set. Callbacks returning an int should return 0 to continue processing
// the picture, or nonzero to stop.
type Callbacks struct {
	// Header handles the picture header.
	Header func(version int, frame Rect) int
	// Opcode handles one opcode and its payload.
	Opcode func(opcode int, data []byte) int
	// Pixels handles unpacked pixel data. The decoder does not retain pix
	// after the callback returns, so the callback may keep it.
	Pixels func(opcode int, pix *PixData) int
	// Error handles an error in the picture data. If the error happens
	// outside an opcode, opcode is -1. The message may be empty, but err
	// is always set. Decoding stops after the first error.
	Error func(err error, opcode int, msg string)
}

const msgUnexpectedEOF = "unexpected end of file"

// Decode decodes a QuickDraw picture, passing the stream of opcodes to the
// supplied callbacks.
func Decode(cb *Callbacks, data []byte) {
	if len(data) < 11 {
		cb.Error(unrez.ErrInvalid, -1, msgUnexpectedEOF)
		return
	}

	// Header, from Imaging With QuickDraw p. 7-28:
	// off len
	//   0   2  size for a version 1 picture (ignored for version 2)
	//   2   8  frame rect
	//  10 var  picture
	frame := readRect(data[2:])
	ptr := data[10:]

	// Since $00 is a no-op, $0011 works as a version opcode under both
	// 8-bit and 16-bit opcode reading. It is followed by $FF, which tells
	// version 1 parsers to stop; version 2 parsers skip the $FF because
	// the version payload is an odd number of bytes and opcodes are read
	// on 16-bit boundaries.
	version := 1
	if len(ptr) >= 2 && binary.BigEndian.Uint16(ptr) == 0x0011 {
		version = 2
	}

	if cb.Header(version, frame) != 0 {
		return
	}

	lastPayload := 0
	for {
		var opcode, opdata int
		if version == 1 {
			if len(ptr) == 0 {
				break
			}
			opcode = int(ptr[0])
			ptr = ptr[1:]
			opdata = int(opcodeData[opcode])
		} else {
			pad := lastPayload & 1
			if len(ptr) < 2+pad {
				break
			}
			ptr = ptr[pad:]
			opcode = int(binary.BigEndian.Uint16(ptr))
			ptr = ptr[2:]
			if opcode <= 0xff {
				opdata = int(opcodeData[opcode])
			} else {
				d, ok := findData(opcode)
				if !ok {
					cb.Error(unrez.ErrInvalid, opcode, "unknown opcode")
					return
				}
				opdata = int(d)
			}
		}
		if opdata >= 0 {
			if len(ptr) < opdata {
				cb.Error(unrez.ErrInvalid, opcode, msgUnexpectedEOF)
				return
			}
			if cb.Opcode(opcode, ptr[:opdata]) != 0 {
				return
			}
			ptr = ptr[opdata:]
			lastPayload = opdata
		} else {
			n := dataHandlers[-1-opdata](cb, version, opcode, ptr)
			if n < 0 {
				return
			}
			ptr = ptr[n:]
			lastPayload = n
		}
	}

	cb.Error(unrez.ErrInvalid, -1, msgUnexpectedEOF)
}

// A dataHandler consumes a variable-length payload, invoking callbacks. It
// returns the number of bytes consumed, or -1 to stop decoding (at the end
// of the picture, after an error, or after a callback cancellation).
type dataHandler func(cb *Callbacks, version, opcode int, data []byte) int

// Indexed by payload kind.
var dataHandlers = [...]dataHandler{
	kindVersion:       dataVersion,
	kindEnd:           dataEnd,
	kindData16:        dataData16,
	kindData32:        dataData32,
	kindLongComment:   dataLongComment,
	kindRegion:        dataRegion,
	kindPattern:       dataPattern,
	kindText:          dataText,
	kindNotDetermined: dataNotDetermined,
	kindPolygon:       dataPolygon,
	kindPixelData:     dataPixelData,
	kindQuickTime:     dataQuickTime,
}

func pictEOF(cb *Callbacks, opcode int) int {
	cb.Error(unrez.ErrInvalid, opcode, msgUnexpectedEOF)
	return -1
}

func dataVersion(cb *Callbacks, version, opcode int, data []byte) int {
	if len(data) == 0 {
		return pictEOF(cb, opcode)
	}
	if int(data[0]) != version {
		cb.Error(unrez.ErrInvalid, opcode, "invalid format version")
		return -1
	}
	if cb.Opcode(opcode, data[:1]) != 0 {
		return -1
	}
	return 1
}

func dataEnd(cb *Callbacks, version, opcode int, data []byte) int {
	// End of picture: stop cleanly.
	return -1
}

func dataData16(cb *Callbacks, version, opcode int, data []byte) int {
	if len(data) < 2 {
		return pictEOF(cb, opcode)
	}
	size := int(int16(binary.BigEndian.Uint16(data)))
	if size < 0 {
		cb.Error(unrez.ErrInvalid, opcode, "invalid length")
		return -1
	}
	if size > len(data)-2 {
		return pictEOF(cb, opcode)
	}
	if cb.Opcode(opcode, data[:2+size]) != 0 {
		return -1
	}
	return 2 + size
}

func dataData32(cb *Callbacks, version, opcode int, data []byte) int {
	if len(data) < 4 {
		return pictEOF(cb, opcode)
	}
	size := int(int32(binary.BigEndian.Uint32(data)))
	if size < 0 {
		cb.Error(unrez.ErrInvalid, opcode, "invalid length")
		return -1
	}
	if size > len(data)-4 {
		return pictEOF(cb, opcode)
	}
	if cb.Opcode(opcode, data[:4+size]) != 0 {
		return -1
	}
	return 4 + size
}

func dataLongComment(cb *Callbacks, version, opcode int, data []byte) int {
	// 16-bit kind, 16-bit size, then the comment payload.
	if len(data) < 4 {
		return pictEOF(cb, opcode)
	}
	size := int(int16(binary.BigEndian.Uint16(data[2:])))
	if size < 0 {
		cb.Error(unrez.ErrInvalid, opcode, "invalid length")
		return -1
	}
	if size > len(data)-4 {
		return pictEOF(cb, opcode)
	}
	if cb.Opcode(opcode, data[:4+size]) != 0 {
		return -1
	}
	return 4 + size
}

func dataRegion(cb *Callbacks, version, opcode int, data []byte) int {
	if len(data) < 2 {
		return pictEOF(cb, opcode)
	}
	size := int(binary.BigEndian.Uint16(data))
	if size < 2 {
		cb.Error(unrez.ErrInvalid, opcode, "invalid region size")
		return -1
	}
	if size != 10 {
		// Only rectangular regions are understood.
		cb.Error(unrez.ErrUnsupported, opcode, "unsupported region format")
		return -1
	}
	if size > len(data) {
		return pictEOF(cb, opcode)
	}
	if cb.Opcode(opcode, data[:size]) != 0 {
		return -1
	}
	return size
}

func dataPattern(cb *Callbacks, version, opcode int, data []byte) int {
	cb.Error(unrez.ErrUnsupported, opcode, "patterns not supported")
	return -1
}

func dataText(cb *Callbacks, version, opcode int, data []byte) int {
	cb.Error(unrez.ErrUnsupported, opcode, "text not supported")
	return -1
}

func dataNotDetermined(cb *Callbacks, version, opcode int, data []byte) int {
	cb.Error(unrez.ErrInvalid, opcode, "reserved opcode has undetermined size")
	return -1
}

func dataPolygon(cb *Callbacks, version, opcode int, data []byte) int {
	cb.Error(unrez.ErrUnsupported, opcode, "polygons not supported")
	return -1
}

func dataQuickTime(cb *Callbacks, version, opcode int, data []byte) int {
	cb.Error(unrez.ErrUnsupported, opcode, "embedded QuickTime images not supported")
	return -1
}

func errorf(cb *Callbacks, err error, opcode int, format string, args ...any) int {
	cb.Error(err, opcode, fmt.Sprintf(format, args...))
	return -1
}
