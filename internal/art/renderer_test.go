package art

import (
	"errors"
	"image"
	"image/color"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/jmylchreest/emojiart/internal/colour"
)

func TestRenderTwoByTwo(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 222, G: 37, B: 43, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 242, G: 242, B: 243, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{R: 242, G: 242, B: 243, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 222, G: 37, B: 43, A: 255})

	res, err := Render(img, colour.DefaultPalette(), DefaultOptions())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if want := "🟥⬜\n⬜🟥"; res.EmojiArt != want {
		t.Errorf("EmojiArt = %q, want %q", res.EmojiArt, want)
	}
	if want := "@@..\n..@@"; res.ASCIIArt != want {
		t.Errorf("ASCIIArt = %q, want %q", res.ASCIIArt, want)
	}
	if len(res.Symbols) != 2 || res.Symbols[0] != "🟥" || res.Symbols[1] != "⬜" {
		t.Errorf("Symbols = %v, want [🟥 ⬜]", res.Symbols)
	}
	if res.MeanError != 0 {
		t.Errorf("MeanError = %f, want 0 for exact palette colours", res.MeanError)
	}
	if res.OpaquePixels != 4 {
		t.Errorf("OpaquePixels = %d, want 4", res.OpaquePixels)
	}
	if res.Columns() != 4 {
		t.Errorf("Columns() = %d, want 4", res.Columns())
	}
}

func TestRenderFullyTransparent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))

	res, err := Render(img, colour.DefaultPalette(), DefaultOptions())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	rows := strings.Split(res.EmojiArt, "\n")
	if len(rows) != 10 {
		t.Fatalf("EmojiArt rows = %d, want 10", len(rows))
	}
	wantRow := strings.Repeat(Blank, 10)
	for i, row := range rows {
		if row != wantRow {
			t.Errorf("row %d = %q, want 10 blanks", i, row)
		}
	}
	if res.ASCIIArt != res.EmojiArt {
		t.Errorf("ASCIIArt should equal EmojiArt for a blank grid")
	}
	if len(res.Symbols) != 0 {
		t.Errorf("Symbols = %v, want empty", res.Symbols)
	}
	if res.MeanError != 0 || !res.Empty() {
		t.Errorf("MeanError = %f, Empty() = %v; want 0, true", res.MeanError, res.Empty())
	}
	if res.Columns() != 20 {
		t.Errorf("Columns() = %d, want 20", res.Columns())
	}
}

func TestRenderAlphaThreshold(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 44, G: 44, B: 46, A: 127})
	img.SetNRGBA(1, 0, color.NRGBA{R: 44, G: 44, B: 46, A: 128})
	img.SetNRGBA(2, 0, color.NRGBA{R: 44, G: 44, B: 46, A: 255})

	tests := []struct {
		name      string
		threshold uint8
		want      string
	}{
		{name: "default threshold", threshold: DefaultAlphaThreshold, want: Blank + "⬛⬛"},
		{name: "zero threshold keeps every pixel", threshold: 0, want: "⬛⬛⬛"},
		{name: "strict threshold", threshold: 200, want: Blank + Blank + "⬛"},
		{name: "lenient threshold", threshold: 1, want: "⬛⬛⬛"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Render(img, colour.DefaultPalette(), Options{AlphaThreshold: tt.threshold})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if res.EmojiArt != tt.want {
				t.Errorf("EmojiArt = %q, want %q", res.EmojiArt, tt.want)
			}
		})
	}
}

func TestRenderZeroThresholdQuantizesFaintPixel(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 222, G: 37, B: 43, A: 50})

	res, err := Render(img, colour.DefaultPalette(), Options{AlphaThreshold: 0})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if res.EmojiArt != "\U0001F7E5" || res.ASCIIArt != "@@" || res.OpaquePixels != 1 {
		t.Errorf("Render() = %q / %q, opaque %d; want red square", res.EmojiArt, res.ASCIIArt, res.OpaquePixels)
	}

	res, err = Render(img, colour.DefaultPalette(), DefaultOptions())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if res.EmojiArt != Blank || !res.Empty() {
		t.Errorf("Render() with default threshold = %q, want blank", res.EmojiArt)
	}
}

func randomImage(rng *rand.Rand, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.IntN(256))
	}
	return img
}

func TestRenderLockstep(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 20; i++ {
		res, err := Render(randomImage(rng, 10, 10), colour.DefaultPalette(), DefaultOptions())
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if err := CheckLockstep(res.EmojiArt, res.ASCIIArt); err != nil {
			t.Fatalf("grids out of lockstep: %v\n%s\n%s", err, res.EmojiArt, res.ASCIIArt)
		}
	}
}

func TestRenderSubsetCannotDecreaseError(t *testing.T) {
	full := colour.DefaultPalette()
	subset, err := full.Subset("🟥", "⬛", "⬜")
	if err != nil {
		t.Fatalf("Subset() error = %v", err)
	}

	rng := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 20; i++ {
		img := randomImage(rng, 8, 8)
		a, err := Render(img, full, DefaultOptions())
		if err != nil {
			t.Fatalf("Render(full) error = %v", err)
		}
		b, err := Render(img, subset, DefaultOptions())
		if err != nil {
			t.Fatalf("Render(subset) error = %v", err)
		}
		if b.MeanError < a.MeanError {
			t.Errorf("subset mean error %f < full mean error %f", b.MeanError, a.MeanError)
		}
	}
}

func TestRenderEmptyPalette(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	if _, err := Render(img, nil, DefaultOptions()); !errors.Is(err, colour.ErrEmptyPalette) {
		t.Errorf("Render(nil palette) error = %v, want ErrEmptyPalette", err)
	}
}

func TestCheckLockstep(t *testing.T) {
	tests := []struct {
		name    string
		emoji   string
		ascii   string
		wantErr bool
	}{
		{name: "matching", emoji: "🟥" + Blank + "\n⬜⬜", ascii: "@@" + Blank + "\n...."},
		{name: "row count", emoji: "🟥\n🟥", ascii: "@@", wantErr: true},
		{name: "cell count", emoji: "🟥🟥", ascii: "@@", wantErr: true},
		{name: "blank position", emoji: Blank + "🟥", ascii: "@@" + Blank, wantErr: true},
		{name: "malformed token", emoji: "🟥", ascii: "@%", wantErr: true},
		{name: "variation selector", emoji: "⬛\uFE0F" + Blank, ascii: "::" + Blank},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckLockstep(tt.emoji, tt.ascii)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckLockstep() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
