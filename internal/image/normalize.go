package image

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// DefaultSize is the edge length of the normalised grid.
const DefaultSize = 10

// ErrInvalidSize is returned when the requested canvas size is not positive.
var ErrInvalidSize = errors.New("normalisation size must be positive")

// Normalize fits src inside a size×size transparent canvas.
//
// The image is scaled uniformly so its longer side equals size, resampled
// with nearest-neighbour (no new blended colours are introduced), and pasted
// at offset floor((size-dim)/2) on each axis. Pixels the scaled image does
// not cover stay fully transparent. Sources without an alpha channel come
// out fully opaque.
func Normalize(src image.Image, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	canvas := image.NewNRGBA(image.Rect(0, 0, size, size))
	if w == 0 || h == 0 {
		return canvas, nil
	}

	// Integer division keeps the longer side exactly size.
	longest := max(w, h)
	newW := max(w*size/longest, 1)
	newH := max(h*size/longest, 1)

	offX := (size - newW) / 2
	offY := (size - newH) / 2
	dst := image.Rect(offX, offY, offX+newW, offY+newH)

	draw.NearestNeighbor.Scale(canvas, dst, toNRGBA(src), b, draw.Src, nil)
	return canvas, nil
}

// toNRGBA returns src as straight-alpha NRGBA so colour channels of
// semi-transparent pixels are preserved through resampling.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}

	b := src.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.SetNRGBA(x, y, color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA))
		}
	}
	return out
}
