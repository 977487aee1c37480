// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package main

import (
	"fmt"
	"os"

	"github.com/depp/unrez"
)

func catUsage(w *os.File) {
	fmt.Fprintln(w, "usage: unrez cat <file> <type> <id>")
}

func catExec(args []string) {
	if len(args) != 3 {
		errorf("expected three arguments")
		catUsage(os.Stderr)
		os.Exit(exUsage)
	}
	file := args[0]
	code, err := unrez.TypeFromString(args[1])
	if err != nil {
		dief(exUsage, "invalid type code: '%s'", args[1])
	}
	id := parseID(args[2])
	rf, err := unrez.OpenResourceForkFile(file)
	if err != nil {
		dieErrf(inputStatus(err), err, "%s", file)
	}
	defer rf.Close()
	data, err := rf.FindResource(code, id)
	if err != nil {
		dieErrf(exDataErr, err, "could not find resource %s #%d", unrez.TypeString(code), id)
	}
	if _, err := os.Stdout.Write(data); err != nil {
		dieErrf(exOSErr, err, "could not write output")
	}
}

func catHelp() {
	catUsage(os.Stdout)
	fmt.Print("Print a resource from a file's resource fork to standard output.\n")
}
