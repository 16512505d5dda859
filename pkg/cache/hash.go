package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 of data. DOT sources are identified by it, and
// FileCache uses it to name entry files.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// layoutKey returns "<kind>:" followed by the hash of the DOT source hash and
// the JSON form of its render options. Options that marshal identically share
// a key.
func layoutKey(kind, dotHash string, opts ArtifactKeyOpts) string {
	data, _ := json.Marshal(struct {
		DOT  string          `json:"dot"`
		Opts ArtifactKeyOpts `json:"opts"`
	}{dotHash, opts})
	return kind + ":" + Hash(data)
}
