// Package zip builds in-memory archives for content exports.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Entry is one file to place in the archive.
type Entry struct {
	Filename string
	Data     []byte
}

// Archive writes the entries into a zip and returns its bytes.
func Archive(entries []Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, e := range entries {
		w, err := zw.Create(e.Filename)
		if err != nil {
			return nil, fmt.Errorf("zip: create %s: %w", e.Filename, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, fmt.Errorf("zip: write %s: %w", e.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close: %w", err)
	}
	return buf.Bytes(), nil
}
