// Command hashtrain builds a reference hash database from a directory of
// card images. Only names and perceptual hashes are stored; the images
// themselves are not needed at recognition time.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mtg-scanner/internal/card"
	"mtg-scanner/internal/phash"
	"mtg-scanner/internal/version"
)

func main() {
	refDir := flag.String("refs", "", "Directory of reference card images")
	outPath := flag.String("out", "reference.hashdb", "Output database path")
	hashSize := flag.Int("hashsize", phash.DefaultSize, "Perceptual hash edge length")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("hashtrain %s (%s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}
	if *refDir == "" {
		fmt.Println("Usage: hashtrain -refs <dir> [-out reference.hashdb] [-hashsize 32]")
		os.Exit(1)
	}

	entries, err := os.ReadDir(*refDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read reference directory: %v\n", err)
		os.Exit(1)
	}

	opts := card.DefaultContrastOptions()
	var refs []card.ReferenceEntry
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png", ".tif", ".tiff":
		default:
			continue
		}

		ref, err := card.LoadReferenceEntry(filepath.Join(*refDir, entry.Name()), *hashSize, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", entry.Name(), err)
			continue
		}
		refs = append(refs, ref)
		if len(refs)%100 == 0 {
			fmt.Printf("Hashed %d images...\n", len(refs))
		}
	}

	if len(refs) == 0 {
		fmt.Fprintln(os.Stderr, "No reference images found")
		os.Exit(1)
	}

	if err := card.SaveReferenceDB(*outPath, refs); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save database: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d entries to %s\n", len(refs), *outPath)
}
