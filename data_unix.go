// Copyright (c) The UnRez Authors
// Licensed under the MIT license

//go:build unix

package unrez

import (
	"os"

	"golang.org/x/sys/unix"
)

func mapFork(f *os.File, offset int64, size int) (*Data, error) {
	pageSize := int64(os.Getpagesize())
	mapStart := offset &^ (pageSize - 1)
	mapSize := int(offset-mapStart) + size
	mem, err := unix.Mmap(int(f.Fd()), mapStart, mapSize, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &Data{
		bytes: mem[offset-mapStart : int(offset-mapStart)+size],
		mem:   mem,
	}, nil
}

func unmap(mem []byte) error {
	return unix.Munmap(mem)
}
