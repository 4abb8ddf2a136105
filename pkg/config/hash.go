package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns a short stable digest of the decoded configuration,
// recorded in the export metadata so a dataset can be traced back to the
// exact configuration that produced it. Hashing the decoded structure
// rather than the file bytes means formatting-only edits (whitespace,
// comments, key order) do not change the digest.
func (c *Config) Hash() string {
	// json.Marshal emits map keys in sorted order and struct fields in
	// declaration order, so the serialization is canonical.
	data, _ := json.Marshal(c)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}
