package provider

import (
	"fmt"
	"hash"
	"hash/crc32"

	"github.com/apackfmt/apack/apackformat"
	"github.com/apackfmt/apack/errs"
	"github.com/zeebo/xxh3"
)

// ChecksumProvider builds incremental hashers and offers a one-shot
// compute over a whole slice. Per spec.md §5, the returned hash.Hash is
// not safe for concurrent use; each write or read path must own its own
// instance.
type ChecksumProvider interface {
	ID() uint8
	Name() string
	OutputSize() int
	New() hash.Hash32
	Compute(data []byte) uint32
}

var checksumByID = map[uint8]ChecksumProvider{}
var checksumByName = map[string]ChecksumProvider{}

func registerChecksum(p ChecksumProvider) {
	checksumByID[p.ID()] = p
	checksumByName[p.Name()] = p
}

func init() {
	registerChecksum(crc32Checksum{})
	registerChecksum(xxh3Checksum{})
}

// ChecksumByID looks up a checksum provider by its numeric id.
func ChecksumByID(id uint8) (ChecksumProvider, error) {
	if p, ok := checksumByID[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: checksum id %d", errs.ErrUnknownAlgorithm, id)
}

// ChecksumByName looks up a checksum provider by its name.
func ChecksumByName(name string) (ChecksumProvider, error) {
	if p, ok := checksumByName[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: checksum %q", errs.ErrUnknownAlgorithm, name)
}

type crc32Checksum struct{}

func (crc32Checksum) ID() uint8        { return apackformat.ChecksumCRC32 }
func (crc32Checksum) Name() string     { return "crc32" }
func (crc32Checksum) OutputSize() int  { return 4 }
func (crc32Checksum) New() hash.Hash32 { return crc32.NewIEEE() }
func (crc32Checksum) Compute(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// xxh3Checksum truncates XXH3-64 (github.com/zeebo/xxh3, a native Go
// port of the real XXH3 algorithm — not to be confused with XXH64, an
// older, non-interoperable member of the xxHash family) to 32 bits, the
// format's ChecksumXXH364 choice.
type xxh3Checksum struct{}

func (xxh3Checksum) ID() uint8       { return apackformat.ChecksumXXH364 }
func (xxh3Checksum) Name() string    { return "xxh3-64" }
func (xxh3Checksum) OutputSize() int { return 4 }

func (xxh3Checksum) New() hash.Hash32 { return &xxh3Truncated{d: xxh3.New()} }

func (xxh3Checksum) Compute(data []byte) uint32 {
	return uint32(xxh3.Hash(data))
}

// xxh3Truncated adapts xxh3.Hasher (a hash.Hash64) to hash.Hash32 by
// truncating Sum64 to its low 32 bits, matching xxh3Checksum.Compute.
type xxh3Truncated struct {
	d *xxh3.Hasher
}

func (x *xxh3Truncated) Write(p []byte) (int, error) { return x.d.Write(p) }
func (x *xxh3Truncated) Sum(b []byte) []byte {
	sum := x.Sum32()
	return append(b, byte(sum>>24), byte(sum>>16), byte(sum>>8), byte(sum))
}
func (x *xxh3Truncated) Reset()         { x.d.Reset() }
func (x *xxh3Truncated) Size() int      { return 4 }
func (x *xxh3Truncated) BlockSize() int { return x.d.BlockSize() }
func (x *xxh3Truncated) Sum32() uint32  { return uint32(x.d.Sum64()) }
