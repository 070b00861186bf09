// Command apack is the reference CLI for the APACK container format:
// create/extract/list/info/verify, built directly on the archive package.
package main

import (
	"fmt"
	"log/slog"
	"os"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var code int
	switch os.Args[1] {
	case "create":
		code = runCreate(os.Args[2:])
	case "extract":
		code = runExtract(os.Args[2:])
	case "list":
		code = runList(os.Args[2:])
	case "info":
		code = runInfo(os.Args[2:])
	case "verify":
		code = runVerify(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		code = 0
	default:
		fmt.Fprintf(os.Stderr, "apack: unknown command %q\n", os.Args[1])
		usage()
		code = 1
	}
	os.Exit(code)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: apack <command> [flags]

commands:
  create   build an archive from one or more inputs
  extract  extract an archive's entries to a directory
  list     list an archive's entries
  info     print archive-level metadata
  verify   check an archive's integrity without extracting
`)
}
