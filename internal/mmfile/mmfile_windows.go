//go:build windows

package mmfile

import (
	"os"
)

// Map reads the whole file; Windows callers get a private copy instead of a
// mapping so the file stays unlocked while a document is open.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return data, func() error { return nil }, nil
}
