package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters, enough to tell snapshots apart in a report header.
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// SnapshotHash fingerprints a dataset snapshot.
type SnapshotHash Hash

func (h SnapshotHash) String() string { return Hash(h).String() }
func (h SnapshotHash) Short() string  { return Hash(h).Short() }

// ComputeSnapshotHash hashes header order plus every row in order. Fields are
// separated by unit/record separators so that ("ab","c") and ("a","bc") differ.
func ComputeSnapshotHash(headers []string, rows [][]string) SnapshotHash {
	var data strings.Builder
	data.WriteString(strings.Join(headers, "\x1f"))
	data.WriteString("\x1e")
	for _, row := range rows {
		data.WriteString(strings.Join(row, "\x1f"))
		data.WriteString("\x1e")
	}
	return SnapshotHash(NewHash([]byte(data.String())))
}
