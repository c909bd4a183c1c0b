package dataprocessing

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint hashes the input files of specs with BLAKE2b-256, in order. Missing
// files contribute their name only, so adding a file changes the fingerprint.
func Fingerprint(dataDir string, specs []DatasetSpec) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	for _, spec := range specs {
		fmt.Fprintf(h, "%s\x00", spec.File)
		f, err := os.Open(filepath.Join(dataDir, spec.File))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("fingerprint %s: %w", spec.File, err)
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("fingerprint %s: %w", spec.File, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
