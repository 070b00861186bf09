package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/apackfmt/apack/errs"
)

func runExtract(args []string) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	outDir := fs.String("o", ".", "output directory")
	password := fs.String("p", "", "password (prompted if omitted and the archive is encrypted)")
	overwrite := fs.Bool("overwrite", false, "overwrite existing files")
	verbose := fs.Bool("v", false, "verbose output")
	dryRun := fs.Bool("dry-run", false, "list what would be extracted without writing files")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		return fatalf("extract: usage: extract <archive> [flags]")
	}

	r, err := openArchive(fs.Arg(0), *password)
	if err != nil {
		return fatalf("extract: %v", err)
	}
	defer r.Close()

	var failed bool
	for _, entry := range r.Entries() {
		header, rd, err := r.ByID(entry.EntryID)
		if err != nil {
			logEntryError("extract", fmt.Sprintf("entry %d", entry.EntryID), err)
			failed = true
			continue
		}
		if err := extractEntry(*outDir, header.Name, rd, *overwrite, *dryRun, *verbose); err != nil {
			logEntryError("extract", header.Name, err)
			failed = true
		}
	}
	if failed {
		return 1
	}
	return 0
}

func extractEntry(outDir, name string, rd io.Reader, overwrite, dryRun, verbose bool) error {
	dest := filepath.Join(outDir, filepath.FromSlash(name))
	if dryRun {
		if verbose {
			slog.Info("would extract", "name", name, "dest", dest)
		}
		_, err := io.Copy(io.Discard, rd)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(dest, flags, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, rd); err != nil {
		return err
	}
	if verbose {
		slog.Info("extracted", "name", name, "dest", dest)
	}
	return nil
}
