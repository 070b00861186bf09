package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/apackfmt/apack/archive"
)

func runCreate(args []string) int {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	compression := fs.String("c", "none", "compression: zstd, lz4, none")
	level := fs.Int("l", 0, "compression level (0 = provider default)")
	encryption := fs.String("e", "", "encryption: aes-256-gcm, chacha20-poly1305 (empty = none)")
	password := fs.String("p", "", "password (prompted if omitted and encryption requested)")
	chunkSizeKiB := fs.Int("chunk-size", archive.DefaultChunkSize/1024, "chunk size in KiB")
	recursive := fs.Bool("r", false, "recurse into directory inputs")
	verbose := fs.Bool("v", false, "verbose output")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	inputs := fs.Args()
	if len(inputs) < 2 {
		return fatalf("create: usage: create <output> <input>... [flags]")
	}
	output := inputs[0]
	inputs = inputs[1:]

	pass, err := resolvePassword(*password, *encryption != "")
	if err != nil {
		return fatalf("create: %v", err)
	}

	f, err := os.Create(output)
	if err != nil {
		return fatalf("create: %v", err)
	}
	defer f.Close()

	w, err := archive.NewWriter(f, archive.WriterConfig{
		Compression:      *compression,
		CompressionLevel: *level,
		Encryption:       *encryption,
		Password:         pass,
		ChunkSize:        *chunkSizeKiB * 1024,
	})
	if err != nil {
		return fatalf("create: %v", err)
	}

	var failed bool
	for _, input := range inputs {
		if err := addPath(w, input, *recursive, *verbose); err != nil {
			fmt.Fprintf(os.Stderr, "apack: create: %s: %v\n", input, err)
			failed = true
		}
	}

	if err := w.Close(); err != nil {
		return fatalf("create: finalizing archive: %v", err)
	}
	if failed {
		return 1
	}
	return 0
}

func addPath(w *archive.Writer, root string, recursive bool, verbose bool) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return addFile(w, root, filepath.Base(root), verbose)
	}
	if !recursive {
		return fmt.Errorf("is a directory, pass -r to include directory contents")
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(filepath.Dir(root), path)
		if err != nil {
			return err
		}
		return addFile(w, path, filepath.ToSlash(rel), verbose)
	})
}

func addFile(w *archive.Writer, path, name string, verbose bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ew, err := w.AddEntry(archive.EntryOptions{Name: name})
	if err != nil {
		return err
	}
	if _, err := io.Copy(ew, f); err != nil {
		ew.Close()
		return err
	}
	if err := ew.Close(); err != nil {
		return err
	}
	if verbose {
		slog.Info("added entry", "name", name)
	}
	return nil
}
