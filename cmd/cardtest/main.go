// Command cardtest recognizes Magic cards in photographs and outputs results.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"mtg-scanner/internal/card"
	"mtg-scanner/internal/pipeline"
	"mtg-scanner/internal/version"
)

func main() {
	imagePath := flag.String("image", "", "Path to a photograph (JPEG, PNG, or TIFF)")
	imageDir := flag.String("dir", "", "Directory of photographs to process")
	dbPath := flag.String("db", "", "Path to the reference hash database")
	outDir := flag.String("out", "", "Directory for annotated result images (optional)")
	workers := flag.Int("workers", 1, "Number of images processed concurrently")
	threshold := flag.Float64("threshold", 4.0, "Hash separation acceptance threshold")
	verbose := flag.Bool("verbose", false, "Log the segmentation and recognition trail")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("cardtest %s (%s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}
	if *imagePath == "" && *imageDir == "" {
		fmt.Println("Usage: cardtest -db <hashdb> (-image <path> | -dir <path>) [-out <dir>] [-workers 1]")
		os.Exit(1)
	}
	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "A reference database is required (-db)")
		os.Exit(1)
	}

	log.SetFlags(log.Ltime)

	refs, err := card.LoadReferenceDB(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load reference database: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d reference entries from %s\n", len(refs), *dbPath)

	cfg := pipeline.DefaultConfig().
		WithThreshold(*threshold).
		WithVerbose(*verbose)

	paths, err := collectImagePaths(*imagePath, *imageDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	var images []*card.TestImage
	for _, path := range paths {
		testImage, err := card.LoadTestImage(path, cfg.MaxDimension, cfg.ContrastOptions())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", path, err)
			continue
		}
		images = append(images, testImage)
	}
	if len(images) == 0 {
		fmt.Fprintln(os.Stderr, "No readable images found")
		os.Exit(1)
	}
	defer func() {
		for _, testImage := range images {
			testImage.Close()
		}
	}()

	fmt.Printf("\nRecognizing cards in %d image(s)...\n", len(images))
	if err := pipeline.RunAll(context.Background(), images, refs, cfg, *workers); err != nil {
		fmt.Fprintf(os.Stderr, "Recognition failed: %v\n", err)
		os.Exit(1)
	}

	total := 0
	for _, testImage := range images {
		recognized := testImage.Recognized()
		total += len(recognized)

		fmt.Printf("\n%s: %d card(s)\n", testImage.Name, len(recognized))
		fmt.Printf("%-40s %8s %10s\n", "Name", "Score", "Area")
		for _, c := range recognized {
			fmt.Printf("%-40s %8.2f %9.1f%%\n", c.Name, c.RecognitionScore, 100*c.ImageAreaFraction)
		}

		if *outDir != "" {
			base := strings.TrimSuffix(testImage.Name, filepath.Ext(testImage.Name))
			outPath := filepath.Join(*outDir, "recognized_"+base+".jpg")
			if err := testImage.RenderToFile(outPath); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to save annotated image: %v\n", err)
			}
		}
	}

	fmt.Printf("\nTotal: %d card(s) recognized\n", total)
}

// collectImagePaths gathers the input files from either a single path or
// a directory of images.
func collectImagePaths(imagePath, imageDir string) ([]string, error) {
	if imagePath != "" {
		return []string{imagePath}, nil
	}

	entries, err := os.ReadDir(imageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png", ".tif", ".tiff":
			paths = append(paths, filepath.Join(imageDir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no images found in %s", imageDir)
	}
	return paths, nil
}
