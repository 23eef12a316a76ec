// Package contenthash computes stable, non-cryptographic fingerprints of
// byte content.
//
// Fingerprints use SeaHash with its standard fixed seeds, so a given input
// yields the same 64-bit value in every process on every platform. The text
// form is that value written in base 36 and is suitable as a cache key or
// file name component.
//
// Changing the algorithm invalidates every stored fingerprint; Algorithm is
// persisted next to cached values so a future change can be detected.
//
// This package has no celldump-specific dependencies and could be extracted
// as a standalone library.
package contenthash

import (
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/blainsmith/seahash"

	"celldump/internal/radix"
)

// Algorithm names the hash function behind every fingerprint.
const Algorithm = "seahash"

// EmptySum is the fingerprint of zero-length input.
const EmptySum uint64 = 14492805990617963705

// Sum64 returns the 64-bit fingerprint of data.
func Sum64(data []byte) uint64 {
	return seahash.Sum64(data)
}

// String returns the base-36 text form of Sum64(data).
func String(data []byte) string {
	return Format(Sum64(data))
}

// Format renders a fingerprint value in its base-36 text form.
func Format(sum uint64) string {
	return radix.Encode(sum, radix.Base36)
}

// Parse converts a base-36 fingerprint back to its numeric value.
func Parse(text string) (uint64, error) {
	return radix.Decode(text, radix.Base36)
}

// New returns a streaming hasher producing the same values as Sum64.
func New() hash.Hash64 {
	return seahash.New()
}

// SumReader hashes everything readable from r.
func SumReader(r io.Reader) (uint64, error) {
	h := New()
	buf := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return 0, fmt.Errorf("hash content: %w", err)
	}
	return h.Sum64(), nil
}

// SumFile hashes the file at path without loading it fully into memory.
func SumFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sum, err := SumReader(f)
	if err != nil {
		return 0, fmt.Errorf("hash %s: %w", path, err)
	}
	return sum, nil
}
