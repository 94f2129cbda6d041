package registry

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	groupPrefix = "# group:"

	// emojiPresentation is U+FE0F VARIATION SELECTOR-16.
	emojiPresentation = "\uFE0F"
)

// CategoryIndex maps an emoji glyph to its Unicode group name.
type CategoryIndex map[string]string

// Lookup returns the category of a glyph. Glyphs are tried as given, then
// with the emoji presentation selector added or removed.
func (c CategoryIndex) Lookup(glyph string) (string, bool) {
	if cat, ok := c[glyph]; ok {
		return cat, true
	}
	if trimmed, ok := strings.CutSuffix(glyph, emojiPresentation); ok {
		cat, ok := c[trimmed]
		return cat, ok
	}
	cat, ok := c[glyph+emojiPresentation]
	return cat, ok
}

// ParseCategories parses the Unicode emoji-test.txt format. "# group: X"
// comment lines set the current group; data lines of the form
// "<hex code points> ; <status> # ..." are assigned to it.
func ParseCategories(r io.Reader) (CategoryIndex, error) {
	index := make(CategoryIndex)
	group := ""
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if after, ok := strings.CutPrefix(line, groupPrefix); ok {
			group = strings.TrimSpace(after)
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		fields, _, ok := strings.Cut(line, ";")
		if !ok {
			return nil, &ParseError{Line: lineNo, Text: line, Reason: "missing ';' after code points"}
		}
		if group == "" {
			return nil, &ParseError{Line: lineNo, Text: line, Reason: "entry before any group header"}
		}

		glyph, err := decodeCodePoints(fields)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: line, Reason: err.Error()}
		}
		index[glyph] = group
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read category index: %w", err)
	}
	return index, nil
}

// decodeCodePoints turns "1F468 200D 1F4BB" into the corresponding string.
func decodeCodePoints(s string) (string, error) {
	var b strings.Builder
	for _, f := range strings.Fields(s) {
		v, err := strconv.ParseUint(f, 16, 32)
		if err != nil {
			return "", fmt.Errorf("invalid code point %q", f)
		}
		b.WriteRune(rune(v))
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no code points")
	}
	return b.String(), nil
}
