// Package corpus defines the shared conventions of the standards corpus:
// manifests, content hashes, path normalization, category layout and
// ignore rules.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// HashPattern matches a lowercase hex SHA-256 digest.
var HashPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Manifest maps a slash-normalized relative path to the SHA-256 hash of the
// file's content at one point in time.
type Manifest map[string]string

// ValidHash reports whether h is a well-formed content hash.
func ValidHash(h string) bool {
	return HashPattern.MatchString(h)
}

// Paths returns the manifest's paths in sorted order.
func (m Manifest) Paths() []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Clone returns a shallow copy of the manifest.
func (m Manifest) Clone() Manifest {
	out := make(Manifest, len(m))
	for p, h := range m {
		out[p] = h
	}
	return out
}

// NormPath converts p to the canonical manifest key form: forward slashes,
// cleaned, no leading "./".
func NormPath(p string) string {
	p = path.Clean(filepath.ToSlash(p))
	return strings.TrimPrefix(p, "./")
}

// HashBytes returns the hex SHA-256 digest of content.
func HashBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HashFile streams the file at path through SHA-256 and returns the hex digest.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
