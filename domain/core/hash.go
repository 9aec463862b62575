package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
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

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// RowHash is the fingerprint of a single record, used for duplicate detection.
type RowHash Hash

func (h RowHash) String() string { return Hash(h).String() }

// ComputeRowHash fingerprints a record by its sorted field names and
// stringified values. Records with identical field sets and values hash
// equal regardless of map iteration order.
func ComputeRowHash(record map[string]interface{}) RowHash {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString("=")
		data.WriteString(fmt.Sprintf("%v", record[key]))
		data.WriteString(";")
	}

	return RowHash(NewHash([]byte(data.String())))
}
