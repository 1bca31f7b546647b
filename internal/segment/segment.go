// Package segment produces candidate contours from a test image using
// multiple thresholding strategies.
package segment

import (
	"fmt"
	"image"
	"sort"

	"mtg-scanner/pkg/geometry"

	"gocv.io/x/gocv"
)

// Mode selects the thresholding strategy used before contour extraction.
type Mode int

const (
	// ModeGray applies a fixed greyscale threshold.
	ModeGray Mode = iota
	// ModeAdaptive applies an adaptive Gaussian greyscale threshold.
	ModeAdaptive
	// ModeRGB thresholds each contrast-enhanced color channel separately
	// and combines the contours of all three.
	ModeRGB
	// ModeAll combines the contours of all strategies.
	ModeAll
)

func (m Mode) String() string {
	switch m {
	case ModeGray:
		return "gray"
	case ModeAdaptive:
		return "adaptive"
	case ModeRGB:
		return "rgb"
	case ModeAll:
		return "all"
	default:
		return "unknown"
	}
}

// Options holds the thresholding parameters.
type Options struct {
	GrayThreshold float64 // fixed threshold level for ModeGray
	RGBThreshold  float64 // per-channel threshold level for ModeRGB
	ClipLimit     float64 // CLAHE clip limit for ModeRGB channel enhancement
	TileSize      int     // CLAHE tile grid size for ModeRGB
	MaxContours   int     // safety ceiling on returned contours
}

// DefaultOptions returns the standard thresholding parameters.
func DefaultOptions() Options {
	return Options{
		GrayThreshold: 70,
		RGBThreshold:  110,
		ClipLimit:     2.0,
		TileSize:      8,
		MaxContours:   100,
	}
}

// Contour is a closed ring of contour points in image coordinates.
type Contour []geometry.Point2D

// Contours extracts card candidate contours from a BGR image mat using
// the given thresholding mode. The result is sorted by area, largest
// first, and capped at Options.MaxContours.
func Contours(img gocv.Mat, mode Mode, opts Options) ([]Contour, error) {
	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	var contours []Contour
	switch mode {
	case ModeGray:
		contours = grayContours(img, false, opts)
	case ModeAdaptive:
		contours = grayContours(img, true, opts)
	case ModeRGB:
		contours = rgbContours(img, opts)
	case ModeAll:
		contours = grayContours(img, false, opts)
		contours = append(contours, grayContours(img, true, opts)...)
		contours = append(contours, rgbContours(img, opts)...)
	default:
		return nil, fmt.Errorf("unknown segmentation mode %d", mode)
	}

	sort.SliceStable(contours, func(i, j int) bool {
		return geometry.ShoelaceArea(contours[i]) > geometry.ShoelaceArea(contours[j])
	})
	if opts.MaxContours > 0 && len(contours) > opts.MaxContours {
		contours = contours[:opts.MaxContours]
	}
	return contours, nil
}

// grayContours thresholds the greyscale image, either at a fixed level or
// adaptively with a Gaussian window scaled to the image size.
func grayContours(img gocv.Mat, adaptive bool, opts Options) []Contour {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	thresh := gocv.NewMat()
	defer thresh.Close()
	if adaptive {
		minSide := img.Rows()
		if img.Cols() < minSide {
			minSide = img.Cols()
		}
		// Window grows with image size; 1+2k keeps it odd
		window := 1 + 2*(minSide/20)
		gocv.AdaptiveThreshold(gray, &thresh, 255,
			gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, window, 10)
	} else {
		gocv.Threshold(gray, &thresh, float32(opts.GrayThreshold), 255, gocv.ThresholdBinary)
	}

	return findContours(thresh)
}

// rgbContours enhances each color channel with CLAHE, thresholds it at a
// fixed level, and combines the contours from all three channels.
func rgbContours(img gocv.Mat, opts Options) []Contour {
	channels := gocv.Split(img)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()

	clahe := gocv.NewCLAHEWithParams(opts.ClipLimit, image.Pt(opts.TileSize, opts.TileSize))
	defer clahe.Close()

	var contours []Contour
	for i := range channels {
		enhanced := gocv.NewMat()
		clahe.Apply(channels[i], &enhanced)

		thresh := gocv.NewMat()
		gocv.Threshold(enhanced, &thresh, float32(opts.RGBThreshold), 255, gocv.ThresholdBinary)
		enhanced.Close()

		contours = append(contours, findContours(thresh)...)
		thresh.Close()
	}
	return contours
}

// findContours runs the tree-topology contour retrieval with simple chain
// approximation and converts the results to geometry rings.
func findContours(binary gocv.Mat) []Contour {
	found := gocv.FindContours(binary, gocv.RetrievalTree, gocv.ChainApproxSimple)
	defer found.Close()

	contours := make([]Contour, 0, found.Size())
	for i := 0; i < found.Size(); i++ {
		pts := found.At(i).ToPoints()
		if len(pts) < 3 {
			continue
		}
		ring := make(Contour, len(pts))
		for j, p := range pts {
			ring[j] = geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
		}
		contours = append(contours, ring)
	}
	return contours
}
