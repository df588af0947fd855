package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// Fingerprint returns a sha256 over the file content followed by each extra
// part. Parse results are cached under this key, so two requests only share
// an entry when the PDF bytes and every parse option match.
func Fingerprint(path string, parts ...string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	for _, p := range parts {
		_, _ = h.Write([]byte{0})
		_, _ = io.WriteString(h, p)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
