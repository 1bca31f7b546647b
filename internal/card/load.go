package card

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"mtg-scanner/internal/phash"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/tiff"
)

// ContrastOptions controls the contrast limited adaptive histogram
// equalization (CLAHE) applied to the lightness channel of images
// before hashing and segmentation.
type ContrastOptions struct {
	ClipLimit float64
	TileSize  int
}

// DefaultContrastOptions returns the standard CLAHE settings.
func DefaultContrastOptions() ContrastOptions {
	return ContrastOptions{ClipLimit: 2.0, TileSize: 8}
}

// NewTestImage builds a TestImage from decoded pixels. Images whose
// shortest side exceeds maxDim are downscaled proportionally with
// area-averaging before entering the pipeline. A maxDim of 0 disables
// downscaling.
func NewTestImage(name string, src image.Image, maxDim int, opts ContrastOptions) (*TestImage, error) {
	mat, err := ImageToMat(src)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}

	h, w := mat.Rows(), mat.Cols()
	minSide := h
	if w < minSide {
		minSide = w
	}
	if maxDim > 0 && minSide > maxDim {
		scale := float64(maxDim) / float64(minSide)
		scaled := gocv.NewMat()
		gocv.Resize(mat, &scaled, image.Point{}, scale, scale, gocv.InterpolationArea)
		mat.Close()
		mat = scaled
	}

	original, err := MatToImage(mat)
	if err != nil {
		mat.Close()
		return nil, fmt.Errorf("failed to convert mat: %w", err)
	}

	adjusted := adjustContrast(mat, opts)
	mat.Close()

	return &TestImage{
		Name:     name,
		Original: original,
		Adjusted: adjusted,
	}, nil
}

// LoadTestImage reads and decodes an image file (JPEG, PNG, or TIFF) and
// prepares it for recognition.
func LoadTestImage(path string, maxDim int, opts ContrastOptions) (*TestImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return NewTestImage(filepath.Base(path), img, maxDim, opts)
}

// NewReferenceEntry hashes a reference card image after the same
// local-contrast enhancement the test images get. The name is kept
// verbatim; canonicalization happens at recognition time.
func NewReferenceEntry(name string, src image.Image, hashSize int, opts ContrastOptions) (ReferenceEntry, error) {
	mat, err := ImageToMat(src)
	if err != nil {
		return ReferenceEntry{}, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	adjusted := adjustContrast(mat, opts)
	defer adjusted.Close()

	img, err := MatToImage(adjusted)
	if err != nil {
		return ReferenceEntry{}, fmt.Errorf("failed to convert mat: %w", err)
	}

	return ReferenceEntry{
		Name:  name,
		PHash: phash.Compute(img, hashSize),
	}, nil
}

// LoadReferenceEntry reads one reference image file and hashes it.
func LoadReferenceEntry(path string, hashSize int, opts ContrastOptions) (ReferenceEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return ReferenceEntry{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return ReferenceEntry{}, fmt.Errorf("failed to decode image: %w", err)
	}

	return NewReferenceEntry(filepath.Base(path), img, hashSize, opts)
}

// adjustContrast applies CLAHE to the lightness channel in Lab space,
// leaving the color channels untouched, and returns a new BGR mat.
func adjustContrast(bgr gocv.Mat, opts ContrastOptions) gocv.Mat {
	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(bgr, &lab, gocv.ColorBGRToLab)

	channels := gocv.Split(lab)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()

	clahe := gocv.NewCLAHEWithParams(opts.ClipLimit, image.Pt(opts.TileSize, opts.TileSize))
	defer clahe.Close()

	enhanced := gocv.NewMat()
	defer enhanced.Close()
	clahe.Apply(channels[0], &enhanced)
	enhanced.CopyTo(&channels[0])

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge(channels, &merged)

	adjusted := gocv.NewMat()
	gocv.CvtColor(merged, &adjusted, gocv.ColorLabToBGR)
	return adjusted
}
