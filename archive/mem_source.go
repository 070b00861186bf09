package archive

import "bytes"

// memSource implements Source over an in-memory byte slice, for tests
// and for callers that already hold the whole archive in memory.
// bytes.Reader.ReadAt is stateless (it never touches a shared read
// position), so every clone can safely share the same backing slice.
type memSource struct {
	r *bytes.Reader
}

// NewMemorySource wraps data as a Source. data must not be modified
// while the Source (or any of its clones) is in use.
func NewMemorySource(data []byte) Source {
	return &memSource{r: bytes.NewReader(data)}
}

func (s *memSource) ReadAt(p []byte, off int64) (int, error) { return s.r.ReadAt(p, off) }
func (s *memSource) Size() int64                             { return s.r.Size() }
func (s *memSource) Close() error                             { return nil }
func (s *memSource) Clone() (Source, error)                  { return s, nil }
