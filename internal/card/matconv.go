package card

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ImageToMat converts a Go image.Image to a BGR gocv.Mat.
func ImageToMat(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return gocv.Mat{}, fmt.Errorf("empty image bounds %v", bounds)
	}

	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// OpenCV uses BGR channel order
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat, nil
}

// MatToImage converts a BGR gocv.Mat to a Go image.Image.
func MatToImage(mat gocv.Mat) (image.Image, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("empty mat")
	}
	h, w := mat.Rows(), mat.Cols()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := img.PixOffset(x, y)
			img.Pix[off+0] = mat.GetUCharAt(y, x*3+2)
			img.Pix[off+1] = mat.GetUCharAt(y, x*3+1)
			img.Pix[off+2] = mat.GetUCharAt(y, x*3+0)
			img.Pix[off+3] = 255
		}
	}
	return img, nil
}
