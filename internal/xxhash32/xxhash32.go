// Package xxhash32 computes the TOC name hash: XXH3-64 truncated to its
// low 32 bits over the UTF-8 entry name.
package xxhash32

import "github.com/zeebo/xxh3"

// Sum computes the 32-bit name hash of name, for use as a TocEntry.NameHash
// lookup key. Collisions are expected and must be resolved by the caller
// comparing entry names after probing the hash bucket; Sum itself makes no
// uniqueness guarantee.
func Sum(name string) uint32 {
	return uint32(xxh3.HashString(name))
}

// SumBytes is the []byte counterpart of Sum.
func SumBytes(name []byte) uint32 {
	return uint32(xxh3.Hash(name))
}
