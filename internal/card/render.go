package card

import (
	"fmt"
	"image"
	"strings"
	"unicode"

	"mtg-scanner/pkg/colorutil"
	"mtg-scanner/pkg/geometry"

	"gocv.io/x/gocv"
)

// Render draws the non-fragment candidates onto a copy of the original
// image: bounding quads in green, the card name centered in the quad.
// Recognized candidates get a white label, unrecognized ones red.
// The annotated image is a convenience output and not part of the
// recognition contract.
func (t *TestImage) Render() (image.Image, error) {
	mat, err := ImageToMat(t.Original)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	for _, c := range t.Candidates {
		if c.IsFragment {
			continue
		}

		quad := c.BoundingQuad
		for i := range quad {
			p1 := image.Pt(int(quad[i].X), int(quad[i].Y))
			p2 := image.Pt(int(quad[(i+1)%len(quad)].X), int(quad[(i+1)%len(quad)].Y))
			gocv.Line(&mat, p1, p2, colorutil.Green, 2)
		}

		label := capitalize(c.Name)
		if label == "" {
			label = "unknown"
		}
		labelColor := colorutil.Red
		if c.IsRecognized {
			labelColor = colorutil.White
		}

		// Scale the label with the quad size relative to the image
		scale := 2.0 * geometry.Perimeter(quad) / float64(mat.Cols()*3)
		if scale < 0.4 {
			scale = 0.4
		}
		size := gocv.GetTextSize(label, gocv.FontHersheySimplex, scale, 2)
		center := geometry.Centroid(quad)
		org := image.Pt(int(center.X)-size.X/2, int(center.Y)+size.Y/2)
		gocv.PutText(&mat, label, org, gocv.FontHersheySimplex, scale, labelColor, 2)
	}

	return MatToImage(mat)
}

// RenderToFile writes the annotated result image next to the recognition
// output. Failures here do not affect the recognition result.
func (t *TestImage) RenderToFile(path string) error {
	annotated, err := t.Render()
	if err != nil {
		return err
	}
	mat, err := ImageToMat(annotated)
	if err != nil {
		return fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	if ok := gocv.IMWrite(path, mat); !ok {
		return fmt.Errorf("failed to write annotated image to %s", path)
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
