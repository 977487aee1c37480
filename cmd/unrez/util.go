// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/depp/unrez"
)

// Exit statuses, following the classic sysexits.h conventions.
const (
	exUsage    = 64
	exDataErr  = 65
	exNoInput  = 66
	exSoftware = 70
	exOSErr    = 71
	exCantCreat = 73
)

// errorf prints a formatted error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: %s\n", fmt.Sprintf(format, args...))
}

// errorErrf prints a formatted error message with an error appended.
func errorErrf(err error, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: %s: %s\n", fmt.Sprintf(format, args...), err)
}

// dief prints an error message and exits with the supplied status.
func dief(status int, format string, args ...any) {
	errorf(format, args...)
	os.Exit(status)
}

// dieErrf prints an error message with an error appended and exits.
func dieErrf(status int, err error, format string, args ...any) {
	errorErrf(err, format, args...)
	os.Exit(status)
}

// inputStatus picks the exit status for a failure to open input: library
// errors mean the data was bad, anything else is a missing or unreadable
// file.
func inputStatus(err error) int {
	var lib unrez.Error
	if errors.As(err, &lib) {
		return exDataErr
	}
	return exNoInput
}

// parseID parses a resource ID, which must fit in 16 bits.
func parseID(s string) int {
	value, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		dief(exUsage, "invalid resource id '%s'", s)
	}
	if value > 0x7fff || value < -0x8000 {
		dief(exUsage, "resource id %d out of range, must be between -32768 and +32767", value)
	}
	return int(value)
}

// expandArgs expands glob patterns in file arguments. Shells normally do
// this for us, but not on every platform, and patterns like "**/*.bin"
// are useful with deep directory trees.
func expandArgs(args []string) []string {
	var out []string
	for _, arg := range args {
		if !containsGlobMeta(arg) {
			out = append(out, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil || len(matches) == 0 {
			// Not a usable pattern; let the open fail with a clear message.
			out = append(out, arg)
			continue
		}
		out = append(out, matches...)
	}
	return out
}

func containsGlobMeta(s string) bool {
	for _, c := range s {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
