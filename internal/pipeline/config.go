package pipeline

import (
	"mtg-scanner/internal/card"
	"mtg-scanner/internal/phash"
	"mtg-scanner/internal/quadfit"
	"mtg-scanner/internal/recognize"
	"mtg-scanner/internal/segment"
)

// Config collects every tunable the recognition pipeline honors.
type Config struct {
	// Recognition
	HashSeparationThreshold float64 // acceptance threshold on the separation score
	HashSize                int     // perceptual hash edge length H (hash width H*H bits)
	RotationMode            recognize.RotationMode
	NameMode                recognize.NameMode

	// Segmentation
	Modes         []segment.Mode // thresholding modes tried in order
	GrayThreshold float64        // fixed threshold level for gray mode
	RGBThreshold  float64        // per-channel threshold level for rgb mode
	MaxContours   int            // safety ceiling on contours per pass

	// Contrast enhancement
	CLAHEClipLimit float64
	CLAHETileSize  int

	// Input
	MaxDimension int // downscaling trigger for the shortest image side

	// Shape acceptance
	LengthCutoff  float64 // polygon simplification edge cutoff
	FormFactorMin float64
	FormFactorMax float64
	CornerDiffMax float64
	CropSlope     float64

	// Driver
	MaxCards int  // stop once more than this many cards are recognized
	Verbose  bool // log the per-image segmentation and recognition trail
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		HashSeparationThreshold: 4.0,
		HashSize:                phash.DefaultSize,
		RotationMode:            recognize.RotationShortCircuit,
		NameMode:                recognize.NameFirstToken,
		Modes:                   []segment.Mode{segment.ModeAdaptive, segment.ModeRGB},
		GrayThreshold:           70,
		RGBThreshold:            110,
		MaxContours:             100,
		CLAHEClipLimit:          2.0,
		CLAHETileSize:           8,
		MaxDimension:            1000,
		LengthCutoff:            0.15,
		FormFactorMin:           0.25,
		FormFactorMax:           0.33,
		CornerDiffMax:           0.35,
		CropSlope:               0.22,
		MaxCards:                5,
	}
}

// WithThreshold returns a copy of the config with a custom hash
// separation threshold.
func (c Config) WithThreshold(threshold float64) Config {
	c.HashSeparationThreshold = threshold
	return c
}

// WithHashSize returns a copy of the config with a custom hash edge length.
func (c Config) WithHashSize(size int) Config {
	c.HashSize = size
	return c
}

// WithModes returns a copy of the config with a custom thresholding
// mode sequence.
func (c Config) WithModes(modes ...segment.Mode) Config {
	c.Modes = modes
	return c
}

// WithNameMode returns a copy of the config with a custom name
// canonicalization mode.
func (c Config) WithNameMode(mode recognize.NameMode) Config {
	c.NameMode = mode
	return c
}

// WithRotationMode returns a copy of the config with a custom rotation
// scoring mode.
func (c Config) WithRotationMode(mode recognize.RotationMode) Config {
	c.RotationMode = mode
	return c
}

// WithVerbose returns a copy of the config with verbose logging enabled
// or disabled.
func (c Config) WithVerbose(verbose bool) Config {
	c.Verbose = verbose
	return c
}

// ContrastOptions returns the CLAHE settings for image preparation.
func (c Config) ContrastOptions() card.ContrastOptions {
	return card.ContrastOptions{
		ClipLimit: c.CLAHEClipLimit,
		TileSize:  c.CLAHETileSize,
	}
}

func (c Config) segmentOptions() segment.Options {
	return segment.Options{
		GrayThreshold: c.GrayThreshold,
		RGBThreshold:  c.RGBThreshold,
		ClipLimit:     c.CLAHEClipLimit,
		TileSize:      c.CLAHETileSize,
		MaxContours:   c.MaxContours,
	}
}

func (c Config) criteria() quadfit.Criteria {
	return quadfit.Criteria{
		LengthCutoff:  c.LengthCutoff,
		FormFactorMin: c.FormFactorMin,
		FormFactorMax: c.FormFactorMax,
		CornerDiffMax: c.CornerDiffMax,
		CropSlope:     c.CropSlope,
	}
}

func (c Config) recognizeConfig() recognize.Config {
	return recognize.Config{
		Threshold:    c.HashSeparationThreshold,
		HashSize:     c.HashSize,
		RotationMode: c.RotationMode,
		NameMode:     c.NameMode,
	}
}
