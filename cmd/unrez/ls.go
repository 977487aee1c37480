// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package main

import (
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/depp/unrez"
)

type rsrcLine struct {
	typ  string
	id   int
	size int64
}

type lsOptions struct {
	bytes   bool
	flat    bool
	sort    string
	reverse bool
}

func lsUsage(w *os.File) {
	fmt.Fprintln(w, "usage: unrez ls [<options>] <file> [<type> [<id>]]")
}

func lsExec(args []string) {
	var opts lsOptions
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	fs.Usage = func() { lsUsage(os.Stderr); os.Exit(exUsage) }
	fs.BoolVar(&opts.bytes, "bytes", false, "display sizes in bytes")
	fs.BoolVar(&opts.flat, "flat", false, "display all resources in one list")
	fs.StringVar(&opts.sort, "sort", "id", "sort key: id, index, or size")
	fs.BoolVar(&opts.reverse, "reverse", false, "reverse sort order")
	fs.Parse(args)
	args = fs.Args()
	switch opts.sort {
	case "id", "index", "size":
	default:
		dief(exUsage, "-sort: unknown sort key '%s'", opts.sort)
	}
	if len(args) < 1 || len(args) > 3 {
		errorf("expected 1-3 arguments")
		lsUsage(os.Stderr)
		os.Exit(exUsage)
	}

	var code [4]byte
	if len(args) >= 2 {
		var err error
		code, err = unrez.TypeFromString(args[1])
		if err != nil {
			dief(exUsage, "invalid resource type: '%s'", args[1])
		}
	}

	file := args[0]
	rf, err := unrez.OpenResourceForkFile(file)
	if err != nil {
		dieErrf(inputStatus(err), err, "%s", file)
	}
	defer rf.Close()

	switch len(args) {
	case 1:
		var all []rsrcLine
		var totalSize int64
		for ti := range rf.Types {
			lines := lsType(rf, ti, &opts)
			for _, l := range lines {
				totalSize += l.size
			}
			if opts.flat {
				all = append(all, lines...)
			}
		}
		if opts.flat {
			fmt.Printf("%d resources, %s:\n", len(all), sprintSize(totalSize, opts.bytes))
			printLines(all, &opts)
		}
	case 2:
		ti := rf.FindType(code)
		if ti < 0 {
			dief(exDataErr, "resource type not found: %s", args[1])
		}
		lines := lsType(rf, ti, &opts)
		if opts.flat {
			var totalSize int64
			for _, l := range lines {
				totalSize += l.size
			}
			fmt.Printf("%d resources, %s:\n", len(lines), sprintSize(totalSize, opts.bytes))
			printLines(lines, &opts)
		}
	case 3:
		id := parseID(args[2])
		data, err := rf.FindResource(code, id)
		if err != nil {
			dieErrf(exDataErr, err, "could not load resource %s #%d", unrez.TypeString(code), id)
		}
		fmt.Printf("%s  #%d  %s\n", unrez.TypeString(code), id, sprintSize(int64(len(data)), opts.bytes))
	}
}

// lsType loads one type and returns its lines, printing the per-type
// section unless the listing is flat.
func lsType(rf *unrez.ResourceFork, typeIndex int, opts *lsOptions) []rsrcLine {
	t := &rf.Types[typeIndex]
	styp := unrez.TypeString(t.Code)
	if err := rf.LoadType(typeIndex); err != nil {
		dieErrf(exDataErr, err, "could not load type %s", styp)
	}
	lines := make([]rsrcLine, 0, len(t.Resources))
	var totalSize int64
	for ri := range t.Resources {
		data, err := rf.GetData(typeIndex, ri)
		if err != nil {
			dieErrf(exDataErr, err, "could not load resource %s #%d", styp, t.Resources[ri].ID)
		}
		lines = append(lines, rsrcLine{typ: styp, id: int(t.Resources[ri].ID), size: int64(len(data))})
		totalSize += int64(len(data))
	}
	if !opts.flat {
		fmt.Printf("type %s (%d resources, %s):\n", styp, len(lines), sprintSize(totalSize, opts.bytes))
		printLines(lines, opts)
		fmt.Println()
	}
	return lines
}

func printLines(lines []rsrcLine, opts *lsOptions) {
	switch opts.sort {
	case "id":
		slices.SortStableFunc(lines, func(a, b rsrcLine) int { return a.id - b.id })
	case "size":
		slices.SortStableFunc(lines, func(a, b rsrcLine) int {
			switch {
			case a.size < b.size:
				return -1
			case a.size > b.size:
				return 1
			}
			return 0
		})
	}
	if opts.reverse {
		slices.Reverse(lines)
	}
	for _, l := range lines {
		sid := fmt.Sprintf("#%d", l.id)
		ssize := sprintSize(l.size, opts.bytes)
		if opts.flat {
			fmt.Printf("%s  %7s  %10s\n", l.typ, sid, ssize)
		} else {
			fmt.Printf("    %7s  %10s\n", sid, ssize)
		}
	}
}

func lsHelp() {
	lsUsage(os.Stdout)
	fmt.Print(
		"List resources in a file's resource fork.\n" +
			"\n" +
			"options:\n" +
			"  -bytes        display sizes in bytes instead of using prefixes\n" +
			"  -sort <key>   sort resources, key can be id (default), index, or size\n" +
			"  -flat         display all resources in one list, instead of one per type\n" +
			"  -reverse      reverse sort order\n")
}
