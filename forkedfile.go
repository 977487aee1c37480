// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package unrez

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Side-stream paths for native resource forks. These could be probed only
// on certain platforms, but it is simpler to probe for them everywhere and
// let the open fail.
var nativeForkPaths = [...]string{"..namedfork/rsrc", "rsrc"}

const appleDoublePrefix = "._"

// A ForkedFile is a file which may have a data fork, a resource fork, or
// both. An empty fork and a missing fork are not distinguished, since not
// all encodings preserve the distinction.
type ForkedFile struct {
	Data     Fork
	Rsrc     Fork
	Metadata Metadata
}

// OpenForks opens both forks of the file at path. The encoding is chosen
// automatically: AppleSingle/AppleDouble is tried first if the name starts
// with "._", MacBinary is tried if the name ends with ".bin", then
// AppleSingle/AppleDouble, then a companion "._" file, then the native
// filesystem's side streams. This order attempts to preserve the user's
// intent, since MacBinary is the most intentional way to attach a resource
// fork to a file, while an AppleDouble side file can easily appear next to
// an unrelated file just to preserve its metadata.
func OpenForks(path string) (*ForkedFile, error) {
	dirname, name := filepath.Split(path)
	if dirname == "" {
		dirname = "."
	}
	dir, err := os.OpenRoot(dirname)
	if err != nil {
		return nil, err
	}
	defer dir.Close()
	return OpenForksAt(dir, name)
}

// OpenForksAt is the same as OpenForks, with the name relative to dir. All
// lookups go through dir so that the decision is immune to concurrent
// renames of the parent path.
func OpenForksAt(dir *os.Root, name string) (*ForkedFile, error) {
	base := filepath.Base(name)

	f1, err := openRegular(dir, name)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if f1 != nil {
		st1, err := f1.Stat()
		if err != nil {
			f1.Close()
			return nil, err
		}

		// The file itself may be AppleSingle or AppleDouble.
		if strings.HasPrefix(base, appleDoublePrefix) {
			ff, err := openAppleFile(dir, name, base, f1, st1.Size())
			if err == nil || err != ErrFormat {
				return ff, err
			}
		}

		// MacBinary has particularly weak magic, resulting in false
		// positives, so only try it if the filename matches. This is
		// particularly bad with QuickDraw picture files, which tend to
		// start with a header of 512 zeroes; parsed as MacBinary, the
		// checksum matches.
		if strings.HasSuffix(base, ".bin") {
			md, err := ParseMacBinary(f1, st1.Size())
			if err == nil {
				return &ForkedFile{
					Data:     Fork{File: f1, Offset: md.DataOffset, Size: md.DataSize},
					Rsrc:     Fork{File: f1, Offset: md.RsrcOffset, Size: md.RsrcSize},
					Metadata: *md,
				}, nil
			}
			if err != ErrFormat {
				f1.Close()
				return nil, err
			}
		}

		// AppleSingle or AppleDouble without the "._" name.
		md, err := ParseAppleFile(f1, st1.Size())
		if err == nil {
			return &ForkedFile{
				Data:     Fork{File: f1, Offset: md.DataOffset, Size: md.DataSize},
				Rsrc:     Fork{File: f1, Offset: md.RsrcOffset, Size: md.RsrcSize},
				Metadata: *md,
			}, nil
		}
		if err != ErrFormat {
			f1.Close()
			return nil, err
		}
	}

	// A separate AppleDouble next to the main file.
	companion := name[:len(name)-len(base)] + appleDoublePrefix + base
	f2, err := openRegular(dir, companion)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		closeFile(f1)
		return nil, err
	}
	if f2 != nil {
		st2, err := f2.Stat()
		if err != nil {
			closeFile(f1)
			f2.Close()
			return nil, err
		}
		ff := &ForkedFile{}
		if f1 != nil {
			st1, err := f1.Stat()
			if err != nil {
				f1.Close()
				f2.Close()
				return nil, err
			}
			ff.Data = Fork{File: f1, Size: st1.Size()}
		}
		md, err := ParseAppleFile(f2, st2.Size())
		switch {
		case err == nil:
			ff.Rsrc = Fork{File: f2, Offset: md.RsrcOffset, Size: md.RsrcSize}
			ff.Metadata = *md
			return ff, nil
		case err == ErrFormat:
			// A "._" neighbor that is not AppleDouble: ignore it and go on
			// to the native side streams.
			f2.Close()
		default:
			closeFile(f1)
			f2.Close()
			return nil, err
		}
	}

	// Native side streams.
	for _, sub := range nativeForkPaths {
		f2, err := dir.Open(name + "/" + sub)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) ||
				errors.Is(err, syscall.EINVAL) {
				continue
			}
			closeFile(f1)
			return nil, err
		}
		st2, err := f2.Stat()
		if err != nil {
			closeFile(f1)
			f2.Close()
			return nil, err
		}
		ff := &ForkedFile{
			Rsrc:     Fork{File: f2, Size: st2.Size()},
			Metadata: Metadata{Type: TypeNative},
		}
		if f1 != nil {
			st1, err := f1.Stat()
			if err != nil {
				f1.Close()
				f2.Close()
				return nil, err
			}
			ff.Data = Fork{File: f1, Size: st1.Size()}
		}
		return ff, nil
	}

	// No resource fork present.
	if f1 == nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	st1, err := f1.Stat()
	if err != nil {
		f1.Close()
		return nil, err
	}
	return &ForkedFile{Data: Fork{File: f1, Size: st1.Size()}}, nil
}

// openAppleFile handles a "._" file opened directly: AppleSingle embeds
// both forks, while AppleDouble's data fork lives in the companion file
// named without the prefix.
func openAppleFile(dir *os.Root, name, base string, f1 *os.File, fsize int64) (*ForkedFile, error) {
	md, err := ParseAppleFile(f1, fsize)
	if err != nil {
		if err != ErrFormat {
			f1.Close()
		}
		return nil, err
	}
	ff := &ForkedFile{
		Rsrc:     Fork{File: f1, Offset: md.RsrcOffset, Size: md.RsrcSize},
		Metadata: *md,
	}
	if md.Type == TypeAppleSingle {
		ff.Data = Fork{File: f1, Offset: md.DataOffset, Size: md.DataSize}
		return ff, nil
	}
	companion := name[:len(name)-len(base)] + strings.TrimPrefix(base, appleDoublePrefix)
	f2, err := openRegular(dir, companion)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ff, nil
		}
		f1.Close()
		return nil, err
	}
	st2, err := f2.Stat()
	if err != nil {
		f1.Close()
		f2.Close()
		return nil, err
	}
	ff.Data = Fork{File: f2, Size: st2.Size()}
	return ff, nil
}

// openRegular opens a file and insists that it is a regular file: EISDIR
// for directories, ErrNotExist for sockets and other oddities.
func openRegular(dir *os.Root, name string) (*os.File, error) {
	f, err := dir.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !st.Mode().IsRegular() {
		f.Close()
		if st.IsDir() {
			return nil, &fs.PathError{Op: "open", Path: name, Err: syscall.EISDIR}
		}
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return f, nil
}

func closeFile(f *os.File) {
	if f != nil {
		f.Close()
	}
}

// Close closes both forks. Forks sharing one file are closed once.
func (ff *ForkedFile) Close() error {
	var err error
	if ff.Data.File != nil {
		err = ff.Data.File.Close()
	}
	if ff.Rsrc.File != nil && ff.Rsrc.File != ff.Data.File {
		if e := ff.Rsrc.File.Close(); err == nil {
			err = e
		}
	}
	ff.Data.File = nil
	ff.Rsrc.File = nil
	return err
}
