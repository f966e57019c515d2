package file

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/OneOfOne/xxhash"
	"github.com/spf13/afero"
)

func HashFile(fs afero.Fs, path string, hasher hash.Hash) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file '%s': %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("failed to hash file '%s': %w", path, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Digest computes the xxh64 digest of the file at path.
func Digest(fs afero.Fs, path string) (string, error) {
	return HashFile(fs, path, xxhash.New64())
}

// ValidateDigest compares the file's xxh64 digest against an expected value.
func ValidateDigest(fs afero.Fs, path, expected string) error {
	actual, err := Digest(fs, path)
	if err != nil {
		return err
	}
	if actual != expected {
		return fmt.Errorf("digest mismatch for %q: expected %s, got %s", path, expected, actual)
	}
	return nil
}
