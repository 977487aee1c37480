// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package pict

import "encoding/binary"

// PackBits is the byte-oriented RLE scheme used throughout QuickDraw. See
// "TN1023: Understanding PackBits". Each run starts with a signed control
// byte: n >= 0 means n+1 literal units follow, -128 is a no-op, and any
// other n means the next unit repeats (-n)+1 times.

var (
	errEOF       = errorString("unexpected end of input")
	errBadPixels = errorString("invalid pixel data")
)

type errorString string

func (e errorString) Error() string { return string(e) }

// unpackBytes decodes PackBits data over byte units into dst, which must
// be exactly one row. Output left over after the input is exhausted is
// zero-filled.
func unpackBytes(dst, src []byte) error {
	for len(src) > 0 {
		control := int(int8(src[0]))
		src = src[1:]
		if control >= 0 {
			// Literal data follows.
			run := control + 1
			if len(src) < run {
				return errEOF
			}
			if len(dst) < run {
				return errBadPixels
			}
			copy(dst, src[:run])
			src = src[run:]
			dst = dst[run:]
		} else if control != -128 {
			// Repeated data follows.
			run := -control + 1
			if len(src) < 1 {
				return errEOF
			}
			if len(dst) < run {
				return errBadPixels
			}
			for i := 0; i < run; i++ {
				dst[i] = src[0]
			}
			src = src[1:]
			dst = dst[run:]
		}
		// Control 0x80 is ignored, see the tech note.
	}
	clear(dst)
	return nil
}

// unpackWords decodes PackBits data over 16-bit units into dst, converting
// each big-endian word to native order.
func unpackWords(dst []uint16, src []byte) error {
	for len(src) > 0 {
		control := int(int8(src[0]))
		src = src[1:]
		if control >= 0 {
			run := control + 1
			if len(src) < run*2 {
				return errEOF
			}
			if len(dst) < run {
				return errBadPixels
			}
			for i := 0; i < run; i++ {
				dst[i] = binary.BigEndian.Uint16(src[i*2:])
			}
			src = src[run*2:]
			dst = dst[run:]
		} else if control != -128 {
			run := -control + 1
			if len(src) < 2 {
				return errEOF
			}
			if len(dst) < run {
				return errBadPixels
			}
			v := binary.BigEndian.Uint16(src)
			src = src[2:]
			for i := 0; i < run; i++ {
				dst[i] = v
			}
			dst = dst[run:]
		}
	}
	clear(dst)
	return nil
}

// PackBytes encodes src with PackBits over byte units. The output decodes
// back to src exactly; runs of three or more identical bytes compress.
func PackBytes(src []byte) []byte {
	var out []byte
	for len(src) > 0 {
		// Measure the repeat run at the front.
		run := 1
		for run < len(src) && run < 128 && src[run] == src[0] {
			run++
		}
		if run >= 3 {
			out = append(out, byte(-(run-1)), src[0])
			src = src[run:]
			continue
		}
		// Literal segment: up to the next compressible run or 128 bytes.
		lit := run
		for lit < len(src) && lit < 128 {
			if lit+2 < len(src) && src[lit] == src[lit+1] && src[lit] == src[lit+2] {
				break
			}
			lit++
		}
		out = append(out, byte(lit-1))
		out = append(out, src[:lit]...)
		src = src[lit:]
	}
	return out
}

// UnpackBytes decodes PackBits data over byte units, the inverse of
// PackBytes, without a fixed output size.
func UnpackBytes(src []byte) ([]byte, error) {
	var out []byte
	for len(src) > 0 {
		control := int(int8(src[0]))
		src = src[1:]
		if control >= 0 {
			run := control + 1
			if len(src) < run {
				return nil, errEOF
			}
			out = append(out, src[:run]...)
			src = src[run:]
		} else if control != -128 {
			run := -control + 1
			if len(src) < 1 {
				return nil, errEOF
			}
			for i := 0; i < run; i++ {
				out = append(out, src[0])
			}
			src = src[1:]
		}
	}
	return out, nil
}
