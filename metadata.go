// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package unrez

import "time"

// ContainerType identifies how a resource fork is attached to a file on
// disk.
type ContainerType int

const (
	// TypeNone means no resource fork is present.
	TypeNone ContainerType = iota
	// TypeMacBinary means the file is MacBinary encoded.
	TypeMacBinary
	// TypeAppleDouble means the resource fork lives in a "._" side file.
	TypeAppleDouble
	// TypeAppleSingle means both forks live in one AppleSingle file.
	TypeAppleSingle
	// TypeNative means the filesystem itself stores the resource fork.
	TypeNative
)

func (t ContainerType) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeMacBinary:
		return "MacBinary"
	case TypeAppleDouble:
		return "AppleDouble"
	case TypeAppleSingle:
		return "AppleSingle"
	case TypeNative:
		return "native"
	}
	return "unknown"
}

// Metadata is the Finder metadata recovered from a container header. Every
// field is optional: absent strings are empty, absent times are zero, and
// absent forks have zero size.
type Metadata struct {
	// Type is the container the metadata was parsed from.
	Type ContainerType

	// Filename is the original (Mac-side) filename, in the legacy encoding
	// identified by FilenameScript (0 = Mac Roman).
	Filename       []byte
	FilenameScript int

	// Comment is the Finder "Get Info" comment, in Mac Roman.
	Comment []byte

	TypeCode    [4]byte
	CreatorCode [4]byte
	FinderFlags int
	VPos, HPos  int
	WindowID    int
	Protected   bool
	Locked      bool
	ModTime     time.Time

	// Discovered fork regions within the parsed file.
	DataOffset, DataSize int64
	RsrcOffset, RsrcSize int64
}

var macEpoch = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)

// macTime converts a classic Mac timestamp (seconds since 1904). Zero means
// "not set".
func macTime(secs uint32) time.Time {
	if secs == 0 {
		return time.Time{}
	}
	return macEpoch.Add(time.Duration(secs) * time.Second)
}
