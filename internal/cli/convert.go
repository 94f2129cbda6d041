package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/emojiart/internal/art"
	"github.com/jmylchreest/emojiart/internal/colour"
	"github.com/jmylchreest/emojiart/internal/dataset"
	"github.com/jmylchreest/emojiart/internal/image"
)

type convertOptions struct {
	size           int
	alphaThreshold uint8
	threshold      float64
	symbols        []string
	plain          bool
}

func newConvertCmd() *cobra.Command {
	opts := &convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert <icon>",
		Short: "Render one icon as emoji art in the terminal",
		Long: `Render a single icon with the same settings as build and print both
grids, the mean colour difference and whether the icon would pass the
quality gate. Borders and colour swatches are only drawn when writing to a
terminal.

Examples:
  emojiart convert emojis/1f34e.png

  # Try a reduced palette
  emojiart convert emojis/1f34e.png --symbols 🟥,⬜,⬛`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.size, "size", image.DefaultSize, "grid edge length")
	cmd.Flags().Uint8Var(&opts.alphaThreshold, "alpha-threshold", art.DefaultAlphaThreshold, "pixels with lower alpha are blank")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", dataset.DefaultThreshold, "maximum mean colour difference")
	cmd.Flags().StringSliceVar(&opts.symbols, "symbols", nil, "restrict the palette to these symbols")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print grids without borders or swatches")

	return cmd
}

func runConvert(cmd *cobra.Command, path string, opts *convertOptions) error {
	palette := colour.DefaultPalette()
	if len(opts.symbols) > 0 {
		symbols := make([]colour.Symbol, len(opts.symbols))
		for i, s := range opts.symbols {
			symbols[i] = colour.Symbol(strings.TrimSpace(s))
		}
		var err error
		palette, err = palette.Subset(symbols...)
		if err != nil {
			return fmt.Errorf("invalid --symbols: %w", err)
		}
	}

	img, err := image.NewFileLoader().Load(path)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	norm, err := image.Normalize(img, opts.size)
	if err != nil {
		return err
	}
	res, err := art.Render(norm, palette, art.Options{AlphaThreshold: opts.alphaThreshold})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	verdict := "accepted"
	if res.MeanError > opts.threshold {
		verdict = "rejected"
	}

	if opts.plain || !isTerminal(out) {
		fmt.Fprintf(out, "%s\n\n%s\n\n", res.EmojiArt, res.ASCIIArt)
		fmt.Fprintf(out, "mean error %.2f (threshold %.2f): %s\n", res.MeanError, opts.threshold, verdict)
		return nil
	}

	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	fmt.Fprintln(out, lipgloss.JoinHorizontal(lipgloss.Top, box.Render(res.EmojiArt), " ", box.Render(res.ASCIIArt)))
	fmt.Fprintln(out, swatches(palette, res.Symbols))

	status := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	if verdict == "rejected" {
		status = status.Foreground(lipgloss.Color("1"))
	}
	fmt.Fprintf(out, "mean error %.2f over %d pixels (threshold %.2f): %s\n",
		res.MeanError, res.OpaquePixels, opts.threshold, status.Render(verdict))
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// swatches renders a colour block, the symbol and its ASCII token for each
// used symbol.
func swatches(p *colour.Palette, used []colour.Symbol) string {
	if len(used) == 0 {
		return "(no opaque pixels)"
	}
	parts := make([]string, 0, len(used))
	for _, s := range used {
		e, ok := p.Lookup(s)
		if !ok {
			continue
		}
		block := lipgloss.NewStyle().Background(lipgloss.Color(e.Colour.Hex())).Render("  ")
		parts = append(parts, fmt.Sprintf("%s %s %s", block, e.Symbol, e.Token()))
	}
	return strings.Join(parts, "  ")
}
