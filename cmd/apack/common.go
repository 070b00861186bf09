package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/apackfmt/apack/archive"
	"github.com/apackfmt/apack/errs"
)

// promptPassword reads a password from the controlling terminal when -p
// was not supplied. The retrieved pack carries no terminal-echo-suppression
// library (no golang.org/x/term usage anywhere in it), so this falls back
// to a plain line read; the CLI therefore only disables this prompt (and
// requires -p instead) when stdin is not a terminal.
func promptPassword(prompt string) ([]byte, error) {
	if stat, err := os.Stdin.Stat(); err != nil || (stat.Mode()&os.ModeCharDevice) == 0 {
		return nil, fmt.Errorf("password required: pass -p or run with a controlling terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return nil, fmt.Errorf("no password entered")
	}
	return []byte(scanner.Text()), nil
}

// resolvePassword returns explicit, or prompts for one if want is true and
// explicit is empty.
func resolvePassword(explicit string, want bool) ([]byte, error) {
	if explicit != "" {
		return []byte(explicit), nil
	}
	if !want {
		return nil, nil
	}
	return promptPassword("password: ")
}

func fatalf(format string, args ...any) int {
	fmt.Fprintf(os.Stderr, "apack: "+format+"\n", args...)
	return 1
}

// logEntryError reports a per-entry failure under cmd, prefixing it with
// the taxonomy kind (format/integrity/authentication/configuration/
// state/i/o) when err carries one, per spec.md §7's "verbose mode
// elaborates" contract.
func logEntryError(cmd, name string, err error) {
	if kind, ok := errs.KindOf(err); ok {
		fmt.Fprintf(os.Stderr, "apack: %s: %s: [%s] %v\n", cmd, name, kind, err)
		return
	}
	fmt.Fprintf(os.Stderr, "apack: %s: %s: %v\n", cmd, name, err)
}

// openArchive opens path, retrying once with a prompted password if the
// archive turns out to be encrypted and explicitPassword was empty. Source
// is stateless over ReadAt, so the same handle is reused across attempts.
func openArchive(path, explicitPassword string) (*archive.Reader, error) {
	src, err := archive.OpenFile(path)
	if err != nil {
		return nil, err
	}

	pass, err := resolvePassword(explicitPassword, false)
	if err != nil {
		return nil, err
	}

	r, err := archive.Open(src, archive.ReaderConfig{Password: pass})
	if err != nil && errors.Is(err, errs.ErrNoKeyConfigured) {
		pass, err = resolvePassword(explicitPassword, true)
		if err != nil {
			return nil, err
		}
		r, err = archive.Open(src, archive.ReaderConfig{Password: pass})
	}
	return r, err
}
