package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
)

type archiveInfo struct {
	VersionMajor      uint16 `json:"version_major"`
	StreamMode        bool   `json:"stream_mode"`
	Encrypted         bool   `json:"encrypted"`
	ChecksumAlgorithm string `json:"checksum_algorithm"`
	ChunkSize         uint32 `json:"chunk_size"`
	EntryCount        uint64 `json:"entry_count"`
	TotalOriginalSize uint64 `json:"total_original_size"`
	TotalStoredSize   uint64 `json:"total_stored_size"`
}

func runInfo(args []string) int {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit JSON instead of a text summary")
	password := fs.String("p", "", "password, if the archive is encrypted")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		return fatalf("info: usage: info <archive> [flags]")
	}

	r, err := openArchive(fs.Arg(0), *password)
	if err != nil {
		return fatalf("info: %v", err)
	}
	defer r.Close()

	fh := r.FileHeader()
	trailer := r.Trailer()
	info := archiveInfo{
		VersionMajor:      fh.VersionMajor,
		StreamMode:        r.StreamMode(),
		Encrypted:         r.Encrypted(),
		ChecksumAlgorithm: r.ChecksumName(),
		ChunkSize:         fh.ChunkSize,
		EntryCount:        uint64(r.EntryCount()),
		TotalOriginalSize: trailer.TotalOriginalSize,
		TotalStoredSize:   trailer.TotalStoredSize,
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(info); err != nil {
			return fatalf("info: %v", err)
		}
		return 0
	}

	mode := "container"
	if info.StreamMode {
		mode = "stream"
	}
	fmt.Printf("version:       %d\n", info.VersionMajor)
	fmt.Printf("mode:          %s\n", mode)
	fmt.Printf("encrypted:     %t\n", info.Encrypted)
	fmt.Printf("checksum:      %s\n", info.ChecksumAlgorithm)
	fmt.Printf("chunk size:    %d\n", info.ChunkSize)
	fmt.Printf("entries:       %d\n", info.EntryCount)
	fmt.Printf("original size: %d\n", info.TotalOriginalSize)
	fmt.Printf("stored size:   %d\n", info.TotalStoredSize)
	return 0
}
