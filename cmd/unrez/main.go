// Copyright (c) The UnRez Authors
// Licensed under the MIT license

// Command unrez reads the resource forks of classic Macintosh files and
// decodes QuickDraw pictures.
package main

import (
	"fmt"
	"os"
)

type command struct {
	name        string
	description string
	exec        func(args []string)
	help        func()
}

var commands []command

func init() {
	commands = []command{
		{"cat", "print resource contents on standard output", catExec, catHelp},
		{"help", "print help", helpExec, helpHelp},
		{"info", "print information about a file and its resource fork", infoExec, infoHelp},
		{"ls", "list resource fork contents", lsExec, lsHelp},
		{"pict2png", "convert a QuickDraw picture to PNG", pict2pngExec, pict2pngHelp},
		{"pictdump", "dump QuickDraw picture opcodes", pictdumpExec, pictdumpHelp},
		{"version", "print the version", versionExec, versionHelp},
	}
}

func findCommand(name string) *command {
	for i := range commands {
		if commands[i].name == name {
			return &commands[i]
		}
	}
	return nil
}

func main() {
	if len(os.Args) <= 1 {
		usage(os.Stderr)
		os.Exit(exUsage)
	}
	arg := os.Args[1]
	if arg[0] != '-' {
		cmd := findCommand(arg)
		if cmd == nil {
			dief(exUsage, "unknown command '%s'", arg)
		}
		cmd.exec(os.Args[2:])
		return
	}
	opt := arg[1:]
	if len(opt) > 0 && opt[0] == '-' {
		opt = opt[1:]
	}
	switch opt {
	case "help", "h":
		helpExec(os.Args[2:])
	case "version":
		versionExec(os.Args[2:])
	default:
		dief(exUsage, "unknown option '%s'", arg)
	}
}

func usage(w *os.File) {
	fmt.Fprint(w, "usage: unrez <command> [<args>]\n\ncommands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s  %s\n", c.name, c.description)
	}
}

func helpExec(args []string) {
	if len(args) == 0 {
		usage(os.Stdout)
		return
	}
	arg := args[0]
	if arg[0] == '-' {
		dief(exUsage, "unknown option '%s'", arg)
	}
	cmd := findCommand(arg)
	if cmd == nil {
		dief(exUsage, "unknown command '%s'", arg)
	}
	cmd.help()
}

func helpHelp() {
	fmt.Print("usage: unrez help [<command>]\nPrint help for unrez or an unrez command.\n")
}

func versionExec(args []string) {
	fmt.Println("unrez version 0.0")
}

func versionHelp() {
	fmt.Print("usage: unrez version\nPrint the UnRez version.\n")
}
