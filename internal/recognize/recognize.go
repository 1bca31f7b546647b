// Package recognize matches warped card segments against a pre-hashed
// reference set using perceptual hash comparison with rotation search.
package recognize

import (
	"image"
	"strings"

	"mtg-scanner/internal/card"
	"mtg-scanner/internal/phash"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/stat"
)

// RotationMode selects how the four cardinal rotations are scored.
type RotationMode int

const (
	// RotationShortCircuit accepts the first rotation in 0, 90, 180, 270
	// order whose separation score exceeds the threshold while being the
	// running maximum of the rotations scored so far.
	RotationShortCircuit RotationMode = iota
	// RotationGlobalArgmax scores all four rotations and accepts the
	// global maximum if it exceeds the threshold.
	RotationGlobalArgmax
)

// NameMode selects how reference names are reported on a match.
type NameMode int

const (
	// NameFirstToken keeps only the first whitespace-separated token of
	// the reference name. Printings whose names share a base token
	// collapse to one identity.
	NameFirstToken NameMode = iota
	// NameFull keeps the reference name intact.
	NameFull
)

// Config holds the recognition parameters.
type Config struct {
	Threshold    float64 // separation score acceptance threshold
	HashSize     int     // perceptual hash edge length H
	RotationMode RotationMode
	NameMode     NameMode
}

// DefaultConfig returns the standard recognition parameters.
func DefaultConfig() Config {
	return Config{
		Threshold:    4.0,
		HashSize:     phash.DefaultSize,
		RotationMode: RotationShortCircuit,
		NameMode:     NameFirstToken,
	}
}

// Result is the outcome of recognizing one segment.
type Result struct {
	IsRecognized bool
	Score        float64 // normalized so 1.0 equals the acceptance threshold
	Name         string
}

// Compare matches a warped segment against every reference entry across
// the four cardinal rotations. For each rotation, the Hamming distances
// from the segment hash to all reference hashes are summarized by the
// separation score (mean_of_others - min) / std_of_others; a high score
// means the best match stands well apart from the rest of the set.
// With fewer than two references the score is always 0 and nothing is
// ever recognized.
func Compare(seg image.Image, refs []card.ReferenceEntry, cfg Config) Result {
	if seg == nil || len(refs) == 0 {
		return Result{}
	}

	scores := make([]float64, 0, 4)
	bestRefs := make([]int, 0, 4)
	for rot := 0; rot < 4; rot++ {
		h := phash.Compute(rotate(seg, rot), cfg.HashSize)

		dists := make([]float64, len(refs))
		minDist := float64(h.BitLen() + 1)
		best := 0
		for i := range refs {
			d := float64(h.Distance(refs[i].PHash))
			dists[i] = d
			if d < minDist {
				minDist = d
				best = i
			}
		}

		var rest []float64
		for _, d := range dists {
			if d > minDist {
				rest = append(rest, d)
			}
		}

		score := 0.0
		if len(rest) > 0 {
			if sigma := stat.PopStdDev(rest, nil); sigma > 0 {
				score = (stat.Mean(rest, nil) - minDist) / sigma
			}
		}
		scores = append(scores, score)
		bestRefs = append(bestRefs, best)

		if cfg.RotationMode == RotationShortCircuit &&
			score > cfg.Threshold && argmax(scores) == rot {
			return accept(refs[best].Name, score, cfg)
		}
	}

	if cfg.RotationMode == RotationGlobalArgmax {
		rot := argmax(scores)
		if scores[rot] > cfg.Threshold {
			return accept(refs[bestRefs[rot]].Name, scores[rot], cfg)
		}
	}
	return Result{}
}

func accept(name string, score float64, cfg Config) Result {
	return Result{
		IsRecognized: true,
		Score:        score / cfg.Threshold,
		Name:         canonicalize(name, cfg.NameMode),
	}
}

// canonicalize strips the common .jpg suffix left over from reference
// file names and applies the configured name mode.
func canonicalize(name string, mode NameMode) string {
	name = strings.TrimSuffix(name, ".jpg")
	if mode == NameFirstToken {
		if fields := strings.Fields(name); len(fields) > 0 {
			return fields[0]
		}
	}
	return name
}

// rotate returns the segment rotated by quarter turns. Only cardinal
// rotations are supported so no interpolation loss occurs.
func rotate(seg image.Image, quarters int) image.Image {
	switch quarters % 4 {
	case 1:
		return imaging.Rotate90(seg)
	case 2:
		return imaging.Rotate180(seg)
	case 3:
		return imaging.Rotate270(seg)
	default:
		return seg
	}
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
