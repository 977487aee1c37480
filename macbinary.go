// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package unrez

import (
	"encoding/binary"
	"io"
	"os"
)

/*
From:
- http://www.lazerware.com/macbinary/macbinary.html
- http://www.lazerware.com/macbinary/macbinary_ii.html
- http://www.lazerware.com/macbinary/macbinary_iii.html

off len
  0  1  Zero
  1  1  Filename length
  2 63  Filename
 65  4  File Type
 69  4  File Creator
 73  1  Finder Flags
 74  1  Zero
 75  2  Vertical Position
 77  2  Horizontal Position
 79  2  Window / folder ID
 81  1  "Protected" flag
 82  1  Zero
 83  4  Data fork length
 87  4  Resource fork length
 91  4  Creation date
 95  4  Modification date
 99  2  Get Info comment length
-- Version >= 2 --
101  1  More finder flags
102  4  Signature "mBin" (version 3)
106  1  Filename script (version 3)
107  1  Extended Finder flags (version 3)
116  4  Something to do with compression
120  2  Future expansion
122  1  Version number of MacBinary
        (129 for MacBinary II, 130 for MacBinary III)
123  1  Minimum version number for extraction
124  2  CRC
126  2  Reserved

The header is followed by the data fork, padded to a multiple of 128 bytes,
then the resource fork, similarly padded, then the file's comment.
*/

const macBinaryHeaderSize = 128

func align128(v int64) int64 {
	return (v + 127) &^ 127
}

// macBinaryCRC is the CRC-16 used by MacBinary II: polynomial 0x1021,
// initial value 0, processed MSB first. Bit by bit is slow, but only 124
// bytes are ever summed.
func macBinaryCRC(data []byte) uint16 {
	var result uint16
	for _, b := range data {
		d := uint16(b) << 8
		for bit := 0; bit < 8; bit++ {
			if (d^result)&0x8000 != 0 {
				result = result<<1 ^ 0x1021
			} else {
				result = result << 1
			}
			d <<= 1
		}
	}
	return result
}

// ParseMacBinary parses the MacBinary header of f. fsize is the file's
// size, or -1 if unknown. MacBinary magic is weak, so callers gate this on
// the ".bin" extension; a CRC or header field mismatch is ErrFormat so that
// detection can fall through to the next candidate. Once the header is
// accepted, fork lengths that run past the end of the file are ErrInvalid.
func ParseMacBinary(f *os.File, fsize int64) (*Metadata, error) {
	if fsize < 0 {
		st, err := f.Stat()
		if err != nil {
			return nil, err
		}
		fsize = st.Size()
	}

	var header [macBinaryHeaderSize]byte
	n, err := f.ReadAt(header[:], 0)
	if n < len(header) {
		if err != nil && err != io.EOF {
			return nil, err
		}
		// Shorter than a MacBinary header, so not MacBinary.
		return nil, ErrFormat
	}
	if header[0] != 0 || header[74] != 0 || header[82] != 0 ||
		header[1] > 63 || header[123] > 129 {
		return nil, ErrFormat
	}
	fileCRC := binary.BigEndian.Uint16(header[124:])
	if fileCRC != macBinaryCRC(header[:124]) {
		return nil, ErrFormat
	}

	dsize := int64(binary.BigEndian.Uint32(header[83:]))
	rsize := int64(binary.BigEndian.Uint32(header[87:]))
	doff := int64(macBinaryHeaderSize)
	roff := align128(doff + dsize)
	if dsize > fsize-doff || roff > fsize || rsize > fsize-roff {
		return nil, ErrInvalid
	}

	md := &Metadata{
		Type:           TypeMacBinary,
		Filename:       append([]byte(nil), header[2:2+header[1]]...),
		FilenameScript: int(header[106]),
		FinderFlags:    int(header[73])<<8 | int(header[101]),
		VPos:           int(int16(binary.BigEndian.Uint16(header[75:]))),
		HPos:           int(int16(binary.BigEndian.Uint16(header[77:]))),
		WindowID:       int(binary.BigEndian.Uint16(header[79:])),
		Protected:      header[81] != 0,
		ModTime:        macTime(binary.BigEndian.Uint32(header[95:])),
		DataOffset:     doff,
		DataSize:       dsize,
		RsrcOffset:     roff,
		RsrcSize:       rsize,
	}
	copy(md.TypeCode[:], header[65:])
	copy(md.CreatorCode[:], header[69:])
	return md, nil
}
