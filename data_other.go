// Copyright (c) The UnRez Authors
// Licensed under the MIT license

//go:build !unix

package unrez

import "os"

func mapFork(f *os.File, offset int64, size int) (*Data, error) {
	return nil, os.ErrInvalid
}

func unmap(mem []byte) error {
	return nil
}
