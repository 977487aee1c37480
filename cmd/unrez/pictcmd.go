// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/depp/unrez"
	"github.com/depp/unrez/pict"
)

const (
	toolDump = iota + 1
	tool2PNG
)

const (
	modeData = iota
	modeRsrc
	modeRsrcAll
)

var pictCode = [4]byte{'P', 'I', 'C', 'T'}

type pictState struct {
	tool       int
	mode       int
	id         int
	noHeader   bool
	dir        string
	out        string
	errorCount int
	dirMade    bool
	// Hashes of already converted pictures, so that -all-picts does not
	// write the same artwork over and over under different IDs.
	seen map[uint64]int
}

func pictdumpUsage(w *os.File) {
	fmt.Fprintln(w, "usage: unrez pictdump [<options>] <file>...")
}

func pict2pngUsage(w *os.File) {
	fmt.Fprintln(w, "usage: unrez pict2png [<options>] <file>...")
}

func pictdumpExec(args []string) {
	st := &pictState{tool: toolDump}
	fs := flag.NewFlagSet("pictdump", flag.ExitOnError)
	fs.Usage = func() { pictdumpUsage(os.Stderr); os.Exit(exUsage) }
	st.parseCommon(fs, args)
	st.run(fs.Args())
}

func pict2pngExec(args []string) {
	st := &pictState{tool: tool2PNG, seen: make(map[uint64]int)}
	fs := flag.NewFlagSet("pict2png", flag.ExitOnError)
	fs.Usage = func() { pict2pngUsage(os.Stderr); os.Exit(exUsage) }
	fs.StringVar(&st.dir, "dir", "", "write PNG files to this directory")
	fs.StringVar(&st.out, "out", "", "write output to this file")
	st.parseCommon(fs, args)
	if st.out != "" {
		if len(fs.Args()) > 1 || st.mode == modeRsrcAll {
			dief(exUsage, "-out cannot be used with multiple pictures")
		}
	} else if st.dir == "" {
		dief(exUsage, "either -out or -dir must be specified")
	}
	st.run(fs.Args())
}

func (st *pictState) parseCommon(fs *flag.FlagSet, args []string) {
	all := fs.Bool("all-picts", false, "process all PICT resources")
	id := fs.Int("id", 0, "process one PICT resource")
	fs.BoolVar(&st.noHeader, "no-header", false, "the picture has no 512-byte header")
	fs.Parse(args)
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "id" {
			st.mode = modeRsrc
			st.id = *id
		}
	})
	if *all {
		st.mode = modeRsrcAll
	}
	if st.id > 0x7fff || st.id < -0x8000 {
		dief(exUsage, "resource id %d out of range, must be between -32768 and +32767", st.id)
	}
}

func (st *pictState) run(args []string) {
	if len(args) < 1 {
		errorf("expected 1 or more arguments")
		os.Exit(exUsage)
	}
	for _, file := range expandArgs(args) {
		if st.mode == modeData {
			st.pictData(file)
		} else {
			st.pictRsrc(file)
		}
	}
	if st.errorCount > 0 {
		errorf("some pictures could not be decoded")
		os.Exit(exDataErr)
	}
}

// pictData decodes a picture stored in a file's data fork, where it is
// normally preceded by a 512-byte header.
func (st *pictState) pictData(file string) {
	ff, err := unrez.OpenForks(file)
	if err != nil {
		dieErrf(inputStatus(err), err, "%s", file)
	}
	d, err := unrez.ReadFork(&ff.Data)
	ff.Close()
	if err != nil {
		dieErrf(exOSErr, err, "%s", file)
	}
	defer d.Close()
	data := d.Bytes()
	if !st.noHeader {
		if len(data) < pict.HeaderSize {
			dief(exDataErr, "%s: missing header", file)
		}
		data = data[pict.HeaderSize:]
	}
	switch st.tool {
	case toolDump:
		fmt.Printf("%s data:\n", file)
		st.dump(data)
	case tool2PNG:
		st.convert(file, false, 0, data)
	}
}

// pictRsrc decodes PICT resources from a file's resource fork.
func (st *pictState) pictRsrc(file string) {
	rf, err := unrez.OpenResourceForkFile(file)
	if err != nil {
		dieErrf(inputStatus(err), err, "%s", file)
	}
	defer rf.Close()
	ti := rf.FindType(pictCode)
	if ti < 0 {
		return
	}
	if err := rf.LoadType(ti); err != nil {
		dieErrf(exDataErr, err, "%s", file)
	}
	if st.mode == modeRsrc {
		ri := rf.FindID(ti, st.id)
		if ri < 0 {
			dief(exNoInput, "resource not found: 'PICT' #%d", st.id)
		}
		st.pictRsrc1(file, rf, ti, ri)
		return
	}
	for ri := range rf.Types[ti].Resources {
		st.pictRsrc1(file, rf, ti, ri)
	}
}

func (st *pictState) pictRsrc1(file string, rf *unrez.ResourceFork, ti, ri int) {
	id := int(rf.Types[ti].Resources[ri].ID)
	data, err := rf.GetData(ti, ri)
	if err != nil {
		dieErrf(exDataErr, err, "%s 'PICT' #%d", file, id)
	}
	switch st.tool {
	case toolDump:
		fmt.Printf("%s PICT #%d:\n", file, id)
		st.dump(data)
	case tool2PNG:
		if st.mode == modeRsrcAll {
			hash := xxhash.Sum64(data)
			if prev, ok := st.seen[hash]; ok {
				fmt.Printf("skipping PICT #%d (same picture as #%d)\n", id, prev)
				return
			}
			st.seen[hash] = id
		}
		st.convert(file, true, id, data)
	}
}

// cbError reports a picture error the way the pictdump output formats it,
// with the opcode named when known.
func (st *pictState) cbError(err error, opcode int, msg string) {
	st.errorCount++
	fmt.Print("  error: ")
	if opcode >= 0 {
		fmt.Printf("in op $%04x", opcode)
		if name := pict.OpName(opcode); name != "" {
			fmt.Printf(" %s", name)
		}
		fmt.Print(": ")
	}
	fmt.Print(err)
	if msg != "" {
		fmt.Printf(": %s", msg)
	}
	fmt.Println()
	var lib unrez.Error
	if !errors.As(err, &lib) {
		os.Exit(exOSErr)
	}
}

func (st *pictState) dump(data []byte) {
	fmt.Printf("  size = %s\n", sprintSize(int64(len(data)), false))
	cb := pict.Callbacks{
		Header: func(version int, frame pict.Rect) int {
			fmt.Printf("  version = %d\n", version)
			fmt.Printf("  frame = {top = %d, left = %d, bottom = %d, right = %d}\n",
				frame.Top, frame.Left, frame.Bottom, frame.Right)
			return 0
		},
		Opcode: func(opcode int, data []byte) int {
			showOpcode(opcode)
			return 0
		},
		Pixels: func(opcode int, pix *pict.PixData) int {
			showOpcode(opcode)
			fmt.Printf("    rowBytes = %d\n", pix.RowBytes)
			fmt.Printf("    bounds = {top = %d, left = %d, bottom = %d, right = %d}\n",
				pix.Bounds.Top, pix.Bounds.Left, pix.Bounds.Bottom, pix.Bounds.Right)
			fmt.Printf("    packType = %d\n", pix.PackType)
			fmt.Printf("    packSize = %d\n", pix.PackSize)
			fmt.Printf("    hRes = %d\n", pix.HRes)
			fmt.Printf("    vRes = %d\n", pix.VRes)
			fmt.Printf("    pixelType = %d\n", pix.PixelType)
			fmt.Printf("    pixelSize = %d\n", pix.PixelSize)
			fmt.Printf("    cmpCount = %d\n", pix.CmpCount)
			fmt.Printf("    cmpSize = %d\n", pix.CmpSize)
			return 0
		},
		Error: st.cbError,
	}
	pict.Decode(&cb, data)
	fmt.Println()
}

func showOpcode(opcode int) {
	fmt.Printf("  op $%04x", opcode)
	if name := pict.OpName(opcode); name != "" {
		fmt.Printf(" %s", name)
	}
	fmt.Println()
}

// convert decodes one picture and writes its raster as a PNG.
func (st *pictState) convert(file string, isRsrc bool, id int, data []byte) {
	outfile := st.out
	if outfile == "" {
		st.makeDir()
		base := filepath.Base(file)
		if isRsrc {
			outfile = filepath.Join(st.dir, fmt.Sprintf("%s.%d.png", base, id))
		} else {
			outfile = filepath.Join(st.dir, base+".png")
		}
	}
	fmt.Printf("writing %s...\n", outfile)
	var wroteError, success bool
	cb := pict.Callbacks{
		Header: func(version int, frame pict.Rect) int { return 0 },
		Opcode: func(opcode int, data []byte) int { return 0 },
		Pixels: func(opcode int, pix *pict.PixData) int {
			if pix.DataPixelSize == 16 {
				if err := pict.PixData16To32(pix); err != nil {
					dieErrf(exSoftware, err, "16to32")
				}
			}
			if err := writePNG(outfile, pix); err != nil {
				dieErrf(exCantCreat, err, "%s", outfile)
			}
			success = true
			return 0
		},
		Error: func(err error, opcode int, msg string) {
			wroteError = true
			st.cbError(err, opcode, msg)
		},
	}
	pict.Decode(&cb, data)
	if !wroteError && !success {
		st.errorCount++
		fmt.Fprintln(os.Stderr, "  error: picture has no bitmap")
	}
}

func (st *pictState) makeDir() {
	if st.dirMade {
		return
	}
	if err := os.MkdirAll(st.dir, 0o777); err != nil {
		dieErrf(exCantCreat, err, "%s", st.dir)
	}
	st.dirMade = true
}

func pictdumpHelp() {
	pictdumpUsage(os.Stdout)
	fmt.Print(
		"Dump opcodes from a QuickDraw picture.\n" +
			"\n" +
			"options:\n" +
			"  -all-picts    dump all PICT resources\n" +
			"  -id <id>      dump PICT resource id <id>\n" +
			"  -no-header    the picture does not have a 512-byte header\n")
}

func pict2pngHelp() {
	pict2pngUsage(os.Stdout)
	fmt.Print(
		"Convert QuickDraw pictures to PNG.\n" +
			"\n" +
			"options:\n" +
			"  -all-picts    convert all PICT resources\n" +
			"  -dir <dir>    write PNG files to <dir>\n" +
			"  -id <id>      convert PICT resource id <id>\n" +
			"  -out <file>   write output to <file> (if only one output)\n" +
			"  -no-header    the pictures do not have a 512-byte header\n")
}
