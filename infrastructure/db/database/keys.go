package database

import (
	"bytes"
	"encoding/hex"
)

var bucketSeparator = []byte("/")

// Bucket is a key namespace. Its path is the slash-joined list of its
// names, always followed by a trailing slash, so that a prefix scan of one
// bucket never reaches a sibling whose name merely starts the same way.
type Bucket struct {
	path [][]byte
}

// MakeBucket returns the bucket named by path.
func MakeBucket(path ...[]byte) *Bucket {
	return &Bucket{path: path}
}

// Bucket returns the child bucket called name.
func (b *Bucket) Bucket(name []byte) *Bucket {
	childPath := make([][]byte, 0, len(b.path)+1)
	childPath = append(childPath, b.path...)
	return MakeBucket(append(childPath, name)...)
}

// Key returns the key called suffix inside b.
func (b *Bucket) Key(suffix []byte) *Key {
	return &Key{bucket: b, suffix: suffix}
}

// Path returns the byte prefix shared by every key in b.
func (b *Bucket) Path() []byte {
	path := bytes.Join(b.path, bucketSeparator)
	return append(path, bucketSeparator...)
}

// Key is a suffix inside a Bucket.
type Key struct {
	bucket *Bucket
	suffix []byte
}

// Bytes returns the bucket path followed by the suffix.
func (k *Key) Bytes() []byte {
	return append(k.bucket.Path(), k.suffix...)
}

func (k *Key) String() string {
	return hex.EncodeToString(k.Bytes())
}

func (k *Key) Bucket() *Bucket {
	return k.bucket
}

func (k *Key) Suffix() []byte {
	return k.suffix
}
