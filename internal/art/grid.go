package art

import (
	"fmt"
	"strings"
)

// variationSelector requests emoji presentation of the preceding glyph.
const variationSelector = '\uFE0F'

// Cells splits an emoji-art row into its cells. Every cell is either Blank
// or a single palette glyph; palette glyphs are one rune, with an optional
// trailing variation selector.
func Cells(row string) []string {
	var cells []string
	for _, r := range row {
		if r == variationSelector && len(cells) > 0 {
			cells[len(cells)-1] += string(r)
			continue
		}
		cells = append(cells, string(r))
	}
	return cells
}

// asciiCells splits an ASCII-art row into cells: Blank or a two-byte token.
func asciiCells(row string) ([]string, error) {
	var cells []string
	for len(row) > 0 {
		if strings.HasPrefix(row, Blank) {
			cells = append(cells, Blank)
			row = row[len(Blank):]
			continue
		}
		if len(row) < 2 || row[0] != row[1] || row[0] >= 0x80 {
			return nil, fmt.Errorf("malformed ASCII cell at %q", row)
		}
		cells = append(cells, row[:2])
		row = row[2:]
	}
	return cells, nil
}

// CheckLockstep verifies that an emoji grid and an ASCII grid describe the
// same cells: equal row counts, equal cells per row, and blanks in the same
// positions.
func CheckLockstep(emojiArt, asciiArt string) error {
	emojiRows := strings.Split(emojiArt, "\n")
	asciiRows := strings.Split(asciiArt, "\n")
	if len(emojiRows) != len(asciiRows) {
		return fmt.Errorf("row count mismatch: emoji %d, ascii %d", len(emojiRows), len(asciiRows))
	}

	for i := range emojiRows {
		ec := Cells(emojiRows[i])
		ac, err := asciiCells(asciiRows[i])
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if len(ec) != len(ac) {
			return fmt.Errorf("row %d: cell count mismatch: emoji %d, ascii %d", i, len(ec), len(ac))
		}
		for j := range ec {
			if (ec[j] == Blank) != (ac[j] == Blank) {
				return fmt.Errorf("row %d cell %d: blank mismatch", i, j)
			}
		}
	}
	return nil
}
