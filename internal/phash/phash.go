// Package phash computes DCT-based perceptual hashes of image segments.
//
// The hash is a fixed-width bit-string: the image is resized to H x H,
// converted to greyscale, transformed with a 2D type-II DCT, and each
// coefficient is compared against the median of the non-DC coefficients.
// Visually similar images produce hashes with small Hamming distance.
package phash

import (
	"image"
	"image/color"
	"math"
	"math/bits"
	"sort"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"
)

// DefaultSize is the default hash edge length H. The hash width is H*H bits.
const DefaultSize = 32

// Hash is a perceptual hash bit-string. Bits are packed into 64-bit words
// in row-major coefficient order. Size is the edge length H of the DCT
// coefficient block, so the hash holds Size*Size bits.
type Hash struct {
	Bits []uint64
	Size int
}

// BitLen returns the number of bits in the hash.
func (h Hash) BitLen() int {
	return h.Size * h.Size
}

// Distance returns the Hamming distance to another hash. Hashes of
// different sizes are maximally distant.
func (h Hash) Distance(other Hash) int {
	if h.Size != other.Size || len(h.Bits) != len(other.Bits) {
		return h.BitLen()
	}
	dist := 0
	for i := range h.Bits {
		dist += bits.OnesCount64(h.Bits[i] ^ other.Bits[i])
	}
	return dist
}

// Compute calculates the perceptual hash of an image with edge length size.
// A size of 0 or less falls back to DefaultSize.
func Compute(img image.Image, size int) Hash {
	if size <= 0 {
		size = DefaultSize
	}

	// Resize to size x size and reduce to greyscale intensities.
	small := imaging.Resize(img, size, size, imaging.Lanczos)
	gray := make([]float64, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			g := color.GrayModel.Convert(small.At(x, y)).(color.Gray)
			gray[y*size+x] = float64(g.Y)
		}
	}

	coefs := dct2(gray, size)

	// Median of the coefficients, excluding the DC term at (0, 0).
	rest := make([]float64, len(coefs)-1)
	copy(rest, coefs[1:])
	sort.Float64s(rest)
	var median float64
	mid := len(rest) / 2
	if len(rest)%2 == 1 {
		median = rest[mid]
	} else {
		median = (rest[mid-1] + rest[mid]) / 2
	}

	h := Hash{
		Bits: make([]uint64, (size*size+63)/64),
		Size: size,
	}
	for i, c := range coefs {
		if c > median {
			h.Bits[i/64] |= 1 << uint(i%64)
		}
	}
	return h
}

// dct2 computes the 2D type-II DCT of an n x n row-major block as
// T * P * T^t, where T is the DCT-II basis matrix.
func dct2(pixels []float64, n int) []float64 {
	basis := dctBasis(n)
	p := mat.NewDense(n, n, pixels)

	var tmp, out mat.Dense
	tmp.Mul(basis, p)
	out.Mul(&tmp, basis.T())

	coefs := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			coefs[i*n+j] = out.At(i, j)
		}
	}
	return coefs
}

// dctBasis builds the orthonormal DCT-II basis matrix for size n.
func dctBasis(n int) *mat.Dense {
	basis := mat.NewDense(n, n, nil)
	scale0 := math.Sqrt(1 / float64(n))
	scale := math.Sqrt(2 / float64(n))
	for i := 0; i < n; i++ {
		s := scale
		if i == 0 {
			s = scale0
		}
		for j := 0; j < n; j++ {
			basis.Set(i, j, s*math.Cos(float64(2*j+1)*float64(i)*math.Pi/float64(2*n)))
		}
	}
	return basis
}
