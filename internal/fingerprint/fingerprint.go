// Package fingerprint computes BLAKE3 digests of corpus files so two module
// installs can be compared byte for byte.
package fingerprint

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/swordverse/core/ztext"
)

// Digest is the fingerprint of one file.
type Digest struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	BLAKE3 string `json:"blake3"`
}

// Bytes returns the hex BLAKE3-256 digest of data.
func Bytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// File returns the hex BLAKE3-256 digest of the file at path, streaming its
// contents.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Module digests every corpus file of m in testament order.
func Module(m *ztext.Module) ([]Digest, error) {
	info, err := m.Info()
	if err != nil {
		return nil, err
	}

	var digests []Digest
	for _, t := range info.Testaments {
		for _, f := range t.Files {
			sum, err := File(f.Path)
			if err != nil {
				return nil, err
			}
			digests = append(digests, Digest{Name: f.Name, Size: f.Size, BLAKE3: sum})
		}
	}
	return digests, nil
}
