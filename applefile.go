// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package unrez

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"time"
)

/*
From:
- http://users.phg-online.de/tk/netatalk/doc/Apple/v2/

Header (26 bytes):
off len
 0   4  Magic number (0x00051600 = single, 0x00051607 = double)
 4   4  Version number
 8  16  Home file system, space padded (such as 'Macintosh       ')
24   2  Number of entries

Entries (12 bytes):
off len
 0   4  Entry ID
 4   4  Data offset
 8   4  Data length
*/

var (
	appleDoubleMagic = []byte{0x00, 0x05, 0x16, 0x07}
	appleSingleMagic = []byte{0x00, 0x05, 0x16, 0x00}
)

// AppleSingle/AppleDouble entry IDs.
const (
	entryData          = 1
	entryRsrc          = 2
	entryRealName      = 3
	entryComment       = 4
	entryFileDatesInfo = 8
	entryFinderInfo    = 9
	entryMacFileInfo   = 10
)

const (
	appleFileHeaderSize = 26
	appleFileEntrySize  = 12
	// A reasonable maximum; more entries than this is suspicious.
	appleFileMaxEntries = 16
)

var appleDoubleEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// ParseAppleFile parses an AppleSingle or AppleDouble file and returns its
// metadata. fsize is the file's size, or -1 if unknown. A magic mismatch is
// ErrFormat; once the magic matches, inconsistencies are ErrInvalid.
func ParseAppleFile(f *os.File, fsize int64) (*Metadata, error) {
	if fsize < 0 {
		st, err := f.Stat()
		if err != nil {
			return nil, err
		}
		fsize = st.Size()
	}

	var header [appleFileHeaderSize + appleFileEntrySize*appleFileMaxEntries]byte
	amt, err := f.ReadAt(header[:], 0)
	if amt < appleFileHeaderSize {
		if err != nil && err != io.EOF {
			return nil, err
		}
		return nil, ErrFormat
	}

	md := &Metadata{}
	switch {
	case bytes.Equal(header[:4], appleDoubleMagic):
		md.Type = TypeAppleDouble
	case bytes.Equal(header[:4], appleSingleMagic):
		md.Type = TypeAppleSingle
	default:
		return nil, ErrFormat
	}

	version := binary.BigEndian.Uint32(header[4:])
	if version > 0x00020000 {
		return nil, ErrUnsupported
	}

	numEntries := int(binary.BigEndian.Uint16(header[24:]))
	headerSize := appleFileHeaderSize + numEntries*appleFileEntrySize
	if int64(headerSize) > fsize {
		return nil, ErrInvalid
	}
	if numEntries > appleFileMaxEntries {
		return nil, ErrUnsupported
	}
	if headerSize > amt {
		return nil, ErrInvalid
	}

	var hasData, hasRsrc bool
	for i := 0; i < numEntries; i++ {
		e := header[appleFileHeaderSize+appleFileEntrySize*i:]
		eid := binary.BigEndian.Uint32(e)
		eoffset := int64(binary.BigEndian.Uint32(e[4:]))
		esize := int64(binary.BigEndian.Uint32(e[8:]))
		if eoffset > fsize || esize > fsize-eoffset {
			return nil, ErrInvalid
		}
		switch eid {
		case entryData:
			if hasData {
				return nil, ErrInvalid
			}
			hasData = true
			md.DataOffset = eoffset
			md.DataSize = esize
		case entryRsrc:
			if hasRsrc {
				return nil, ErrInvalid
			}
			hasRsrc = true
			md.RsrcOffset = eoffset
			md.RsrcSize = esize
		case entryRealName:
			if md.Filename, err = readEntry(f, eoffset, esize); err != nil {
				return nil, err
			}
		case entryComment:
			if md.Comment, err = readEntry(f, eoffset, esize); err != nil {
				return nil, err
			}
		case entryFileDatesInfo:
			data, err := readEntry(f, eoffset, esize)
			if err != nil {
				return nil, err
			}
			if len(data) >= 16 {
				// Creation, modification, backup, access: signed seconds
				// from the year 2000.
				mod := int32(binary.BigEndian.Uint32(data[4:]))
				md.ModTime = appleDoubleEpoch.Add(time.Duration(mod) * time.Second)
			}
		case entryFinderInfo:
			data, err := readEntry(f, eoffset, esize)
			if err != nil {
				return nil, err
			}
			if len(data) >= 16 {
				copy(md.TypeCode[:], data[0:])
				copy(md.CreatorCode[:], data[4:])
				md.FinderFlags = int(binary.BigEndian.Uint16(data[8:]))
				md.VPos = int(int16(binary.BigEndian.Uint16(data[10:])))
				md.HPos = int(int16(binary.BigEndian.Uint16(data[12:])))
				md.WindowID = int(int16(binary.BigEndian.Uint16(data[14:])))
			}
		case entryMacFileInfo:
			data, err := readEntry(f, eoffset, esize)
			if err != nil {
				return nil, err
			}
			if len(data) >= 4 {
				md.Locked = data[0]&0x80 != 0
				md.Protected = data[0]&0x40 != 0
			}
		}
	}
	return md, nil
}

// readEntry reads a short metadata record. Entry sizes are bounded above by
// the file size check but a pathological record could still be huge, so cap
// what we bring into memory.
func readEntry(f *os.File, offset, size int64) ([]byte, error) {
	const maxRecord = 1 << 16
	if size == 0 {
		return nil, nil
	}
	if size > maxRecord {
		return nil, ErrInvalid
	}
	buf := make([]byte, size)
	n, err := f.ReadAt(buf, offset)
	if n < len(buf) {
		if err != nil && err != io.EOF {
			return nil, err
		}
		return nil, ErrInvalid
	}
	return buf, nil
}
