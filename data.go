// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package unrez

import (
	"io"
	"math"
	"os"
)

// mmapMinimum is the smallest fork worth memory-mapping. Below this a plain
// read is cheaper than the mapping syscalls.
const mmapMinimum = 16 * 1024

// Data is a block of bytes backed either by an owned buffer or by a borrowed
// view into a read-only memory mapping. Consumers see only Bytes; Close
// releases whatever backs it. The zero value is an empty block with a no-op
// Close.
type Data struct {
	bytes []byte
	mem   []byte // full mapping, nil for owned buffers
}

// Bytes returns the block's contents. The slice is only valid until Close.
func (d *Data) Bytes() []byte {
	return d.bytes
}

// Close releases the backing buffer or mapping. The block must not be used
// afterwards.
func (d *Data) Close() error {
	mem := d.mem
	d.bytes = nil
	d.mem = nil
	if mem != nil {
		return unmap(mem)
	}
	return nil
}

// ReadFork reads an entire fork into memory. Forks of mmapMinimum bytes or
// more are memory-mapped read-only where the platform allows, with the
// mapping aligned down to a page boundary; smaller forks, and any fork whose
// mapping fails, are read into an owned buffer.
func ReadFork(fork *Fork) (*Data, error) {
	if fork.Size < 0 {
		return nil, os.ErrInvalid
	}
	if uint64(fork.Size) > math.MaxInt {
		return nil, ErrTooLarge
	}
	size := int(fork.Size)
	if size >= mmapMinimum {
		if d, err := mapFork(fork.File, fork.Offset, size); err == nil {
			return d, nil
		}
		// Fall through to an ordinary read.
	}
	buf := make([]byte, size)
	pos := 0
	for pos < size {
		// os.File.ReadAt retries EINTR internally and does not return
		// short counts without an error.
		n, err := fork.File.ReadAt(buf[pos:], fork.Offset+int64(pos))
		pos += n
		if err == io.EOF && pos < size {
			// The fork claims bytes the file does not have.
			return nil, ErrInvalid
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		if n == 0 && err == nil {
			return nil, ErrInvalid
		}
	}
	return &Data{bytes: buf}, nil
}
