package jsondelta

import (
	"hash"
	"io"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// NewHash returns a new hash interface, wrapped in a function for easy
// hash algorithm switching, package consumers can override NewHash
// with their own desired hash.Hash64 implementation. default is 64-bit
// xxhash for fast, cheap, (non-cryptographic) hashing
var NewHash = func() hash.Hash64 {
	return xxhash.New()
}

// Fingerprint hashes the identifying fields of a delta. Values are hashed in
// their rendered form so equal values hash equally no matter how they were
// constructed
func Fingerprint(op Operation, path string, oldValue, newValue interface{}) string {
	h := NewHash()
	for _, part := range []string{string(op), path, Render(oldValue), Render(newValue)} {
		io.WriteString(h, part)
		// separator keeps ("ab", "c") & ("a", "bc") apart
		h.Write([]byte{0})
	}
	return hashStr(h.Sum64())
}

// hashStr converts a hash sum to a string
// localized here for easy encoding swapping
func hashStr(sum uint64) string {
	return strconv.FormatUint(sum, 10)
}
