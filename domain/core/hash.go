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

// InputFingerprint hashes the shape of a run's input so repeat runs over the
// same workbook and configuration can be recognized in the manifest.
type InputFingerprint Hash

func (f InputFingerprint) String() string { return Hash(f).String() }

// ComputeInputFingerprint builds a fingerprint from sheet names with their
// dimensions plus the flattened configuration values. Map iteration order is
// neutralized by sorting.
func ComputeInputFingerprint(sheetDims map[string][2]int, configValues map[string]string) InputFingerprint {
	sheets := make([]string, 0, len(sheetDims))
	for name := range sheetDims {
		sheets = append(sheets, name)
	}
	sort.Strings(sheets)

	var data strings.Builder
	for _, name := range sheets {
		dims := sheetDims[name]
		data.WriteString(fmt.Sprintf("%s:%dx%d;", name, dims[0], dims[1]))
	}

	keys := make([]string, 0, len(configValues))
	for k := range configValues {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		data.WriteString(key)
		data.WriteString("=")
		data.WriteString(configValues[key])
		data.WriteString(";")
	}

	return InputFingerprint(NewHash([]byte(data.String())))
}
