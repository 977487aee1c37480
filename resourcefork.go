// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package unrez

import (
	"encoding/binary"
	"os"
)

/*
The resource fork format is found in Inside Macintosh: More Macintosh
Toolbox, p. 1-121.

A resource fork consists of a header, some data, and a resource map.

Resource Header, length 16
off len
 0   4  data offset (from start of fork)
 4   4  map offset
 8   4  data length
12   4  map length

Resource Data entry, length 4 + variable
off len
 0   4  resource data length
 4  var resource data

Resource Map header, length 30
off len
 0  22  don't care
22   2  attributes
24   2  offset from map start to type list, minus two
26   2  offset from map start to name list
28   2  number of types minus one

Resource Type entry, length 8
off len
 0   4  type code
 4   2  number of resources of this type minus one
 6   2  offset from type list start to ref list for this type

Resource Ref entry, length 12
off len
 0   2  resource ID
 2   2  offset from beginning of names to this resource's name
 4   1  attributes
 5   3  offset from data start to this resource's data
 8   4  don't care

Resource Name entry, length 1 + variable
off len
 0   1  name length
 1  var name
*/

// maxResourceForkSize is 32 MiB. The maximum amount of data in a resource
// fork is 16 MiB, but there could theoretically be extra map data which
// pushes it over.
const maxResourceForkSize = 1 << 25

// A ResourceFork is an open resource fork. Types are accessed by index in
// the order they appear in the file, and resources within a type by index
// in their order for that type, because users of this library usually want
// to enumerate everything rather than look up one resource.
//
// Loading a type mutates the fork, so a ResourceFork must not be shared
// between goroutines while types are still being loaded; once every type
// of interest is loaded, concurrent readers are fine.
type ResourceFork struct {
	// Resource map and data sections, slices into the fork's bytes.
	rmap []byte
	data []byte
	// Fork attributes from the map header.
	Attr uint16
	// Type list and name list offsets within the map.
	toff int
	noff int
	// Types lists every resource type in the fork. A type with a nonzero
	// Count whose Resources field is nil has not had its reference list
	// loaded yet; use LoadType. A type with Count 0 keeps a nil Resources.
	Types []ResourceType
	// Owner of the fork's bytes, nil when opened over caller memory.
	owner *Data
}

// A ResourceType is one type in an open resource fork.
type ResourceType struct {
	Code      [4]byte
	Resources []Resource
	Count     int
	refOffset int
}

// A Resource is one resource in a resource fork. Its size starts at -1
// because the size is stored with the data, apart from the rest of the
// resource's description, and is read on first access.
type Resource struct {
	ID         int16
	NameOffset int16
	Attr       uint8
	offset     int32
	size       int32
}

// OpenResourceForkMem opens a resource fork from a buffer in memory. The
// buffer is not modified and not owned; it must outlive the returned fork.
func OpenResourceForkMem(data []byte) (*ResourceFork, error) {
	if len(data) < 16 {
		return nil, ErrInvalid
	}
	doff := int32(binary.BigEndian.Uint32(data[0:]))
	moff := int32(binary.BigEndian.Uint32(data[4:]))
	dsize := int32(binary.BigEndian.Uint32(data[8:]))
	msize := int32(binary.BigEndian.Uint32(data[12:]))
	if moff < 0 || msize < 30 || int64(moff) > int64(len(data)) ||
		int64(msize) > int64(len(data))-int64(moff) {
		// Bad map location.
		return nil, ErrInvalid
	}
	if doff < 0 || dsize < 0 || int64(doff) > int64(len(data)) ||
		int64(dsize) > int64(len(data))-int64(doff) {
		// Bad data location.
		return nil, ErrInvalid
	}
	rf := &ResourceFork{
		rmap: data[moff : moff+msize],
		data: data[doff : doff+dsize],
	}

	rf.Attr = binary.BigEndian.Uint16(rf.rmap[22:])
	toff := int(int16(binary.BigEndian.Uint16(rf.rmap[24:])))
	rf.toff = toff
	rf.noff = int(int16(binary.BigEndian.Uint16(rf.rmap[26:])))
	// The stored count is count-1; a stored -1 means no types at all.
	tcount := int(int16(binary.BigEndian.Uint16(rf.rmap[28:]))) + 1
	if tcount <= 0 {
		return rf, nil
	}
	if toff < 0 || tcount*8+2 > int(msize)-toff {
		return nil, ErrInvalid
	}

	rf.Types = make([]ResourceType, tcount)
	for i := range rf.Types {
		t := &rf.Types[i]
		// Having read the docs a few times, we still can't figure out
		// where the +2 comes from. The current theory is that the docs
		// are incorrect.
		te := rf.rmap[toff+2+8*i:]
		copy(t.Code[:], te)
		if rmax := int(int16(binary.BigEndian.Uint16(te[4:]))); rmax >= 0 {
			t.Count = rmax + 1
		}
		t.refOffset = int(int16(binary.BigEndian.Uint16(te[6:])))
	}
	return rf, nil
}

// OpenResourceFork opens a resource fork from an open fork of a file,
// reading the whole fork into memory. The file may be closed while the
// resource fork is still in use.
func OpenResourceFork(fork *Fork) (*ResourceFork, error) {
	switch {
	case fork.Size == 0:
		return nil, ErrNoResourceFork
	case fork.Size > maxResourceForkSize:
		return nil, ErrResourceForkTooLarge
	case fork.Size < 16:
		return nil, ErrInvalid
	}
	d, err := ReadFork(fork)
	if err != nil {
		return nil, err
	}
	rf, err := OpenResourceForkMem(d.Bytes())
	if err != nil {
		d.Close()
		return nil, err
	}
	rf.owner = d
	return rf, nil
}

// OpenResourceForkFile opens the resource fork of the file at path, using
// the container heuristics of OpenForks.
func OpenResourceForkFile(path string) (*ResourceFork, error) {
	ff, err := OpenForks(path)
	if err != nil {
		return nil, err
	}
	defer ff.Close()
	return OpenResourceFork(&ff.Rsrc)
}

// OpenResourceForkAt is OpenResourceForkFile relative to a directory.
func OpenResourceForkAt(dir *os.Root, name string) (*ResourceFork, error) {
	ff, err := OpenForksAt(dir, name)
	if err != nil {
		return nil, err
	}
	defer ff.Close()
	return OpenResourceFork(&ff.Rsrc)
}

// Close releases the fork's memory. The fork, and any data slices obtained
// from it, must not be used afterwards.
func (rf *ResourceFork) Close() error {
	rf.rmap = nil
	rf.data = nil
	rf.Types = nil
	if rf.owner != nil {
		d := rf.owner
		rf.owner = nil
		return d.Close()
	}
	return nil
}

// FindType returns the index of the first type with the given code, or -1.
// A linear scan: type counts are small.
func (rf *ResourceFork) FindType(code [4]byte) int {
	for i := range rf.Types {
		if rf.Types[i].Code == code {
			return i
		}
	}
	return -1
}

// LoadType reads the reference list for the type at the given index, if it
// has not been read yet.
func (rf *ResourceFork) LoadType(typeIndex int) error {
	t := &rf.Types[typeIndex]
	if t.Resources != nil || t.Count == 0 {
		return nil
	}
	if t.refOffset < 0 {
		return ErrInvalid
	}
	roff := rf.toff + t.refOffset
	if t.Count*12 > len(rf.rmap) || roff > len(rf.rmap)-t.Count*12 {
		return ErrInvalid
	}
	resources := make([]Resource, t.Count)
	for i := range resources {
		re := rf.rmap[roff+12*i:]
		resources[i] = Resource{
			ID:         int16(binary.BigEndian.Uint16(re[0:])),
			NameOffset: int16(binary.BigEndian.Uint16(re[2:])),
			Attr:       re[4],
			// A 24 bit integer, big endian.
			offset: int32(re[5])<<16 | int32(re[6])<<8 | int32(re[7]),
			size:   -1,
		}
	}
	t.Resources = resources
	return nil
}

// FindID returns the index of the resource with the given ID within a
// loaded type, or -1 if it is not present.
func (rf *ResourceFork) FindID(typeIndex int, id int) int {
	for i, r := range rf.Types[typeIndex].Resources {
		if int(r.ID) == id {
			return i
		}
	}
	return -1
}

// GetData returns the bytes of a resource, reading and memoizing its size
// on first access. The slice points into the fork's memory and is valid
// until Close.
func (rf *ResourceFork) GetData(typeIndex, rsrcIndex int) ([]byte, error) {
	r := &rf.Types[typeIndex].Resources[rsrcIndex]
	roff := r.offset
	rsize := r.size
	if rsize < 0 {
		dsize := int32(len(rf.data))
		if dsize < 4 || roff < 0 || roff > dsize-4 {
			return nil, ErrInvalid
		}
		rsize = int32(binary.BigEndian.Uint32(rf.data[roff:]))
		if rsize < 0 || rsize > dsize-4-roff {
			return nil, ErrInvalid
		}
		r.size = rsize
	}
	return rf.data[roff+4 : roff+4+rsize], nil
}

// GetName returns a resource's name in Mac Roman, or nil if the resource
// has none.
func (rf *ResourceFork) GetName(typeIndex, rsrcIndex int) ([]byte, error) {
	r := &rf.Types[typeIndex].Resources[rsrcIndex]
	if r.NameOffset < 0 {
		return nil, nil
	}
	if rf.noff < 0 || int(r.NameOffset) >= len(rf.rmap)-rf.noff {
		return nil, ErrInvalid
	}
	ndata := rf.rmap[rf.noff+int(r.NameOffset):]
	nsize := int(ndata[0])
	if nsize > len(ndata)-1 {
		return nil, ErrInvalid
	}
	return ndata[1 : 1+nsize], nil
}

// FindResource finds a resource by type code and ID and returns its data,
// loading the type's reference list if needed.
func (rf *ResourceFork) FindResource(code [4]byte, id int) ([]byte, error) {
	ti := rf.FindType(code)
	if ti < 0 {
		return nil, ErrResourceNotFound
	}
	if err := rf.LoadType(ti); err != nil {
		return nil, err
	}
	ri := rf.FindID(ti, id)
	if ri < 0 {
		return nil, ErrResourceNotFound
	}
	return rf.GetData(ti, ri)
}
