// Package pipeline orchestrates card detection for one image: repeated
// segmentation passes with different thresholding modes, candidate
// recognition, fragment suppression, and early termination.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"mtg-scanner/internal/card"
	"mtg-scanner/internal/quadfit"
	"mtg-scanner/internal/recognize"
	"mtg-scanner/internal/rectify"
	"mtg-scanner/internal/segment"
	"mtg-scanner/pkg/geometry"

	"golang.org/x/sync/errgroup"
)

// Run recognizes the cards in one test image. The image's candidate list
// is rebuilt on every segmentation pass; after the final pass it holds
// only recognized, non-fragment candidates. An empty reference list is
// not an error: every candidate simply stays unrecognized.
func Run(ctx context.Context, testImage *card.TestImage, refs []card.ReferenceEntry, cfg Config) error {
	if testImage == nil || testImage.Adjusted.Empty() {
		return fmt.Errorf("empty test image")
	}

	recogCfg := cfg.recognizeConfig()
	for _, mode := range cfg.Modes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if cfg.Verbose {
			log.Printf("%s: segmenting with %s thresholding", testImage.Name, mode)
		}

		// Step 1: segment the image into card candidates, largest first
		testImage.ClearCandidates()
		if err := segmentImage(ctx, testImage, mode, cfg); err != nil {
			return err
		}
		if cfg.Verbose {
			log.Printf("%s: found %d candidates", testImage.Name, len(testImage.Candidates))
		}

		// Step 2+3: suppress candidates contained in an already recognized
		// card, then recognize the rest
		for _, candidate := range testImage.Candidates {
			for _, other := range testImage.Candidates {
				if other != candidate && other.IsRecognized &&
					!other.IsFragment && other.Contains(candidate) {
					candidate.IsFragment = true
				}
			}
			if candidate.IsFragment {
				continue
			}
			res := recognize.Compare(candidate.Warped, refs, recogCfg)
			candidate.IsRecognized = res.IsRecognized
			candidate.RecognitionScore = res.Score
			candidate.Name = res.Name
		}

		// Step 4: overlap-based fragment suppression across all candidates
		testImage.MarkFragments()

		// Step 5: keep only recognized, non-fragment candidates
		testImage.DiscardUnrecognized()
		if cfg.Verbose {
			for _, c := range testImage.Recognized() {
				log.Printf("%s: recognized %s (score %.2f)", testImage.Name, c.Name, c.RecognitionScore)
			}
		}

		// Step 6: stop when the frame is essentially accounted for
		if !testImage.MayContainMoreCards() || len(testImage.Recognized()) > cfg.MaxCards {
			break
		}
	}
	return nil
}

// RunAll recognizes cards in several images concurrently. Per-image work
// is independent; the reference list is shared read-only. A workers
// count below 1 runs the images sequentially.
func RunAll(ctx context.Context, images []*card.TestImage, refs []card.ReferenceEntry, cfg Config, workers int) error {
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, testImage := range images {
		g.Go(func() error {
			return Run(ctx, testImage, refs, cfg)
		})
	}
	return g.Wait()
}

// segmentImage extracts contours with the given thresholding mode and
// appends the accepted, rectified card candidates to the image.
// Contours are processed in size order; processing stops as soon as the
// remaining contours are too small to hold a card.
func segmentImage(ctx context.Context, testImage *card.TestImage, mode segment.Mode, cfg Config) error {
	imageArea := testImage.ImageArea()
	// Sentinel below any real pixel area; replaced by the first accepted
	// candidate's quad area, which then sets the size floor for the rest
	maxSegmentArea := 0.01

	contours, err := segment.Contours(testImage.Adjusted, mode, cfg.segmentOptions())
	if err != nil {
		return fmt.Errorf("segmentation failed: %w", err)
	}

	crit := cfg.criteria()
	for _, contour := range contours {
		if err := ctx.Err(); err != nil {
			return err
		}

		res := quadfit.Characterize(contour, maxSegmentArea, imageArea, crit)
		if !res.Continue {
			break
		}
		if !res.IsCandidate {
			continue
		}

		quadArea := geometry.ShoelaceArea(res.BoundingQuad)
		if maxSegmentArea < 0.1 {
			maxSegmentArea = quadArea
		}

		cropped := geometry.ScaleAboutCentroid(res.BoundingQuad, res.CropFactor)
		warpedMat, err := rectify.FourPointTransform(testImage.Adjusted, cropped)
		if err != nil {
			if cfg.Verbose {
				log.Printf("%s: dropping degenerate contour: %v", testImage.Name, err)
			}
			continue
		}
		warped, err := card.MatToImage(warpedMat)
		warpedMat.Close()
		if err != nil {
			continue
		}

		testImage.Candidates = append(testImage.Candidates, &card.CardCandidate{
			Warped:            warped,
			BoundingQuad:      res.BoundingQuad,
			ImageAreaFraction: quadArea / imageArea,
		})
	}
	return nil
}
