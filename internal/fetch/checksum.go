package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/zeebo/blake3"
)

// verifyDigests checks the downloaded bytes against every declared digest.
// With no digests declared it is a no-op: the workspace author has opted out
// of pinning for that archive. A mismatch is fatal; unverified bytes are
// never extracted.
func verifyDigests(path, name, sha256Hex, blake3Hex string) error {
	if sha256Hex == "" && blake3Hex == "" {
		return nil
	}

	// Single pass over the file feeds every requested hash at once.
	var hashers []io.Writer
	var shaHash, b3Hash hash.Hash
	if sha256Hex != "" {
		shaHash = sha256.New()
		hashers = append(hashers, shaHash)
	}
	if blake3Hex != "" {
		b3Hash = blake3.New()
		hashers = append(hashers, b3Hash)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("archive %q: failed to open for verification: %w", name, err)
	}
	defer f.Close()
	if _, err := io.Copy(io.MultiWriter(hashers...), f); err != nil {
		return fmt.Errorf("archive %q: failed to hash downloaded bytes: %w", name, err)
	}

	if shaHash != nil {
		got := hex.EncodeToString(shaHash.Sum(nil))
		if !strings.EqualFold(got, sha256Hex) {
			return &ChecksumError{Name: name, Algorithm: "sha256", Want: strings.ToLower(sha256Hex), Got: got}
		}
	}
	if b3Hash != nil {
		got := hex.EncodeToString(b3Hash.Sum(nil))
		if !strings.EqualFold(got, blake3Hex) {
			return &ChecksumError{Name: name, Algorithm: "blake3", Want: strings.ToLower(blake3Hex), Got: got}
		}
	}
	return nil
}
