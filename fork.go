// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package unrez

import "os"

// A Fork is one fork of a file: a region of an underlying open file. A nil
// File or a zero Size means the fork is absent. Different forks may share
// the same file.
type Fork struct {
	File   *os.File
	Offset int64
	Size   int64
}
