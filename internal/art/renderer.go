// Package art renders a normalised icon as a grid of palette emoji and a
// parallel double-width ASCII grid.
package art

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/mattn/go-runewidth"
	"gonum.org/v1/gonum/stat"

	"github.com/jmylchreest/emojiart/internal/colour"
)

const (
	// Blank is the full-width cell marker used for transparent pixels in
	// both grids (U+3000 IDEOGRAPHIC SPACE).
	Blank = "\u3000"

	// DefaultAlphaThreshold is the alpha below which a pixel is blank.
	DefaultAlphaThreshold uint8 = 128
)

// Options controls rendering.
type Options struct {
	// AlphaThreshold marks pixels with alpha below it as blank.
	// Zero keeps every pixel.
	AlphaThreshold uint8
}

// DefaultOptions returns Options with DefaultAlphaThreshold.
func DefaultOptions() Options {
	return Options{AlphaThreshold: DefaultAlphaThreshold}
}

// Result is the rendering of one image.
type Result struct {
	// MeanError is the mean CIEDE2000 distance over opaque pixels.
	// It is 0 when the image has no opaque pixels.
	MeanError float64

	// EmojiArt is the newline-separated symbol grid.
	EmojiArt string

	// ASCIIArt is the newline-separated grid of two-character tokens.
	ASCIIArt string

	// Symbols lists the palette symbols used, in palette order.
	Symbols []colour.Symbol

	// OpaquePixels is the number of pixels that contributed to MeanError.
	OpaquePixels int
}

// Empty reports whether no pixel was opaque.
func (r *Result) Empty() bool {
	return r.OpaquePixels == 0
}

// Columns returns the terminal display width of the widest emoji row.
func (r *Result) Columns() int {
	widest := 0
	for _, row := range strings.Split(r.EmojiArt, "\n") {
		widest = max(widest, runewidth.StringWidth(row))
	}
	return widest
}

// Render walks img in row-major order and quantizes every opaque pixel to
// the nearest palette entry. Both grids are written from the same pixel
// sequence, so row count and blank positions always agree.
func Render(img image.Image, p *colour.Palette, opts Options) (*Result, error) {
	if p.Len() == 0 {
		return nil, colour.ErrEmptyPalette
	}
	threshold := opts.AlphaThreshold

	b := img.Bounds()
	emojiRows := make([]string, 0, b.Dy())
	asciiRows := make([]string, 0, b.Dy())
	used := make(map[colour.Symbol]bool)
	diffs := make([]float64, 0, b.Dx()*b.Dy())

	var emojiLine, asciiLine strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y++ {
		emojiLine.Reset()
		asciiLine.Reset()
		for x := b.Min.X; x < b.Max.X; x++ {
			px := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if px.A < threshold {
				emojiLine.WriteString(Blank)
				asciiLine.WriteString(Blank)
				continue
			}

			e, d, err := colour.Nearest(colour.RGB{R: px.R, G: px.G, B: px.B}, p)
			if err != nil {
				return nil, fmt.Errorf("quantize pixel (%d,%d): %w", x, y, err)
			}
			emojiLine.WriteString(string(e.Symbol))
			asciiLine.WriteString(e.Token())
			used[e.Symbol] = true
			diffs = append(diffs, d)
		}
		emojiRows = append(emojiRows, emojiLine.String())
		asciiRows = append(asciiRows, asciiLine.String())
	}

	res := &Result{
		EmojiArt:     strings.Join(emojiRows, "\n"),
		ASCIIArt:     strings.Join(asciiRows, "\n"),
		Symbols:      p.Order(used),
		OpaquePixels: len(diffs),
	}
	if len(diffs) > 0 {
		res.MeanError = stat.Mean(diffs, nil)
	}
	return res, nil
}
