// Package registry loads the lookup tables used to name icons: the
// glyph/name/filename list, the Unicode emoji-test category index and the
// curated allow-list of display names.
package registry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	// nameSeparator delimits the fields of a name-list line.
	nameSeparator = " - "

	// UnknownCategory is assigned when no category index is configured.
	UnknownCategory = "Unknown"
)

// ParseError describes a malformed input line.
type ParseError struct {
	Source string
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s:%d: %s: %q", e.Source, e.Line, e.Reason, e.Text)
	}
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// NameEntry is a single line of the name list.
type NameEntry struct {
	Glyph    string
	Name     string
	Filename string
}

// Code returns the code-point identifier, the filename without extension.
func (n NameEntry) Code() string {
	return strings.TrimSuffix(n.Filename, filepath.Ext(n.Filename))
}

// ParseNameList parses lines of the form "<glyph> - <name> - <filename>".
// Blank lines and lines without the separator are ignored. A line that has
// the separator but not three non-empty fields is rejected.
func ParseNameList(r io.Reader) ([]NameEntry, error) {
	var entries []NameEntry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.Contains(line, nameSeparator) {
			continue
		}

		parts := strings.Split(line, nameSeparator)
		if len(parts) < 3 {
			return nil, &ParseError{Line: lineNo, Text: line, Reason: "expected glyph, name and filename"}
		}
		entry := NameEntry{
			Glyph:    strings.TrimSpace(parts[0]),
			Name:     strings.TrimSpace(parts[1]),
			Filename: strings.TrimSpace(parts[2]),
		}
		if entry.Glyph == "" || entry.Name == "" || entry.Filename == "" {
			return nil, &ParseError{Line: lineNo, Text: line, Reason: "empty field"}
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read name list: %w", err)
	}
	return entries, nil
}

// Entry is a resolved icon: code point, glyph, display name and category.
type Entry struct {
	Code     string
	Glyph    string
	Name     string
	Category string
}

// Registry maps code-point identifiers to names and categories.
// It is built once and read-only afterwards.
type Registry struct {
	entries map[string]Entry

	// Uncategorised counts name-list entries dropped because the category
	// index had no group for their glyph.
	Uncategorised int
}

// New joins the name list with a category index. When cats is nil every
// entry is kept under UnknownCategory; otherwise entries whose glyph has no
// category are dropped.
func New(names []NameEntry, cats CategoryIndex) *Registry {
	reg := &Registry{entries: make(map[string]Entry, len(names))}
	for _, n := range names {
		category := UnknownCategory
		if cats != nil {
			c, ok := cats.Lookup(n.Glyph)
			if !ok {
				reg.Uncategorised++
				continue
			}
			category = c
		}
		reg.entries[n.Code()] = Entry{
			Code:     n.Code(),
			Glyph:    n.Glyph,
			Name:     n.Name,
			Category: category,
		}
	}
	return reg
}

// Lookup returns the entry for a code-point identifier.
func (r *Registry) Lookup(code string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	e, ok := r.entries[code]
	return e, ok
}

// Len returns the number of resolved entries.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Load reads the name list and, when categoriesPath is not empty, the
// emoji-test category index, and joins them.
func Load(namesPath, categoriesPath string) (*Registry, error) {
	names, err := LoadNames(namesPath)
	if err != nil {
		return nil, err
	}

	var cats CategoryIndex
	if categoriesPath != "" {
		cats, err = LoadCategories(categoriesPath)
		if err != nil {
			return nil, err
		}
	}

	return New(names, cats), nil
}

// LoadNames reads a name list file.
func LoadNames(path string) ([]NameEntry, error) {
	f, err := os.Open(path) // #nosec G304 - User-specified registry file
	if err != nil {
		return nil, fmt.Errorf("failed to open name list: %w", err)
	}
	defer f.Close()

	names, err := ParseNameList(f)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = path
		}
		return nil, err
	}
	return names, nil
}

// LoadCategories reads an emoji-test category file.
func LoadCategories(path string) (CategoryIndex, error) {
	f, err := os.Open(path) // #nosec G304 - User-specified category file
	if err != nil {
		return nil, fmt.Errorf("failed to open category index: %w", err)
	}
	defer f.Close()

	cats, err := ParseCategories(f)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = path
		}
		return nil, err
	}
	return cats, nil
}
