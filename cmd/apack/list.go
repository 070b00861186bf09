package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
)

type listRow struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Mime         string `json:"mime,omitempty"`
	OriginalSize uint64 `json:"original_size"`
	StoredSize   uint64 `json:"stored_size"`
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	long := fs.Bool("l", false, "show mime type and stored size alongside original size")
	jsonOut := fs.Bool("json", false, "emit JSON instead of a text table")
	password := fs.String("p", "", "password, if the archive is encrypted")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		return fatalf("list: usage: list <archive> [flags]")
	}

	r, err := openArchive(fs.Arg(0), *password)
	if err != nil {
		return fatalf("list: %v", err)
	}
	defer r.Close()

	rows := make([]listRow, 0, r.EntryCount())
	for _, toc := range r.Entries() {
		header, _, err := r.ByID(toc.EntryID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "apack: list: entry %d: %v\n", toc.EntryID, err)
			return 1
		}
		rows = append(rows, listRow{
			ID:           toc.EntryID,
			Name:         header.Name,
			Mime:         header.Mime,
			OriginalSize: toc.OriginalSize,
			StoredSize:   toc.StoredSize,
		})
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return fatalf("list: %v", err)
		}
		return 0
	}

	for _, row := range rows {
		if *long {
			fmt.Printf("%-8d %-10s %10d %10d  %s\n", row.ID, row.Mime, row.OriginalSize, row.StoredSize, row.Name)
		} else {
			fmt.Printf("%-8d %10d  %s\n", row.ID, row.OriginalSize, row.Name)
		}
	}
	return 0
}
