package archive

import (
	"fmt"
	"os"

	"github.com/apackfmt/apack/errs"
)

// fileSource implements Source over an *os.File, cloning by reopening
// the same path with its own file descriptor and read position.
type fileSource struct {
	f    *os.File
	path string
	size int64
}

// OpenFile opens path as a Source for archive.Open.
func OpenFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	return &fileSource{f: f, path: path, size: info.Size()}, nil
}

func (s *fileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}

func (s *fileSource) Size() int64 { return s.size }

func (s *fileSource) Close() error { return s.f.Close() }

func (s *fileSource) Clone() (Source, error) {
	return OpenFile(s.path)
}
