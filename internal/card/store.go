package card

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
)

// SaveReferenceDB persists the reference entries to a gzip-compressed
// gob file. Only names and hash bits are stored, never pixels.
func SaveReferenceDB(path string, entries []ReferenceEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create reference database: %w", err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	if err := gob.NewEncoder(zw).Encode(entries); err != nil {
		zw.Close()
		return fmt.Errorf("failed to encode reference database: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish reference database: %w", err)
	}
	return nil
}

// LoadReferenceDB reads reference entries written by SaveReferenceDB.
func LoadReferenceDB(path string) ([]ReferenceEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference database: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference database: %w", err)
	}
	defer zr.Close()

	var entries []ReferenceEntry
	if err := gob.NewDecoder(zr).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode reference database: %w", err)
	}
	return entries, nil
}
