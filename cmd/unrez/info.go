// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/depp/unrez"
)

func infoUsage(w *os.File) {
	fmt.Fprintln(w, "usage: unrez info [<options>] <file>...")
}

func infoExec(args []string) {
	var bytes bool
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Usage = func() { infoUsage(os.Stderr); os.Exit(exUsage) }
	fs.BoolVar(&bytes, "bytes", false, "display sizes in bytes")
	fs.Parse(args)
	for _, file := range expandArgs(fs.Args()) {
		ff, err := unrez.OpenForks(file)
		if err != nil {
			dieErrf(inputStatus(err), err, "%s", file)
		}
		ds, rs := "--", "--"
		if ff.Data.Size > 0 {
			ds = sprintSize(ff.Data.Size, bytes)
		}
		if ff.Rsrc.Size > 0 {
			rs = sprintSize(ff.Rsrc.Size, bytes)
		}
		fmt.Printf("%10s data,  %10s rsrc  %s\n", ds, rs, file)
		ff.Close()
	}
}

func infoHelp() {
	infoUsage(os.Stdout)
	fmt.Print(
		"Print information about a file and its resource fork.\n" +
			"\n" +
			"options:\n" +
			"  -bytes        display sizes in bytes instead of using prefixes\n")
}
