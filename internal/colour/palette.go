// Package colour provides the fixed block-emoji palette, the perceptual colour
// metric used to compare pixels against it, and nearest-entry quantization.
package colour

import (
	"errors"
	"fmt"
	"strings"
)

// Symbol is a palette glyph, e.g. "🟥".
type Symbol string

// Entry is a single palette colour with its display glyph and ASCII token.
type Entry struct {
	Symbol Symbol `json:"symbol"`
	Colour RGB    `json:"colour"`
	ASCII  byte   `json:"ascii"`
}

// Token returns the two-character ASCII rendering of the entry.
func (e Entry) Token() string {
	return string([]byte{e.ASCII, e.ASCII})
}

var (
	// ErrEmptyPalette is returned when a palette has no entries.
	ErrEmptyPalette = errors.New("palette has no entries")

	// ErrUnknownSymbol is returned when a symbol is not part of a palette.
	ErrUnknownSymbol = errors.New("symbol not in palette")
)

// Palette is an ordered, immutable set of entries. Iteration order is the
// order entries were supplied in and is the tie-break order for Nearest.
type Palette struct {
	entries []Entry
	index   map[Symbol]int
}

// defaultEntries is the 9-colour block-emoji palette.
var defaultEntries = []Entry{
	{Symbol: "🟥", Colour: RGB{R: 222, G: 37, B: 43}, ASCII: '@'},
	{Symbol: "🟧", Colour: RGB{R: 255, G: 125, B: 41}, ASCII: '%'},
	{Symbol: "🟨", Colour: RGB{R: 253, G: 203, B: 50}, ASCII: '*'},
	{Symbol: "🟩", Colour: RGB{R: 59, G: 183, B: 95}, ASCII: '+'},
	{Symbol: "🟦", Colour: RGB{R: 47, G: 112, B: 205}, ASCII: '='},
	{Symbol: "🟪", Colour: RGB{R: 151, G: 75, B: 181}, ASCII: '-'},
	{Symbol: "⬛", Colour: RGB{R: 44, G: 44, B: 46}, ASCII: ':'},
	{Symbol: "🟫", Colour: RGB{R: 121, G: 70, B: 45}, ASCII: '#'},
	{Symbol: "⬜", Colour: RGB{R: 242, G: 242, B: 243}, ASCII: '.'},
}

var defaultPalette = mustPalette(defaultEntries)

// DefaultPalette returns the shared 9-entry block-emoji palette.
// The returned palette must be treated as read-only.
func DefaultPalette() *Palette {
	return defaultPalette
}

// NewPalette validates entries and builds a palette from them.
func NewPalette(entries []Entry) (*Palette, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyPalette
	}

	p := &Palette{
		entries: make([]Entry, len(entries)),
		index:   make(map[Symbol]int, len(entries)),
	}
	for i, e := range entries {
		if e.Symbol == "" {
			return nil, fmt.Errorf("entry %d: empty symbol", i)
		}
		if _, dup := p.index[e.Symbol]; dup {
			return nil, fmt.Errorf("entry %d: duplicate symbol %s", i, e.Symbol)
		}
		if e.ASCII < 0x21 || e.ASCII > 0x7e {
			return nil, fmt.Errorf("entry %d (%s): ASCII token must be a printable character", i, e.Symbol)
		}
		p.entries[i] = e
		p.index[e.Symbol] = i
	}
	return p, nil
}

func mustPalette(entries []Entry) *Palette {
	p, err := NewPalette(entries)
	if err != nil {
		panic(err)
	}
	return p
}

// Len returns the number of entries in the palette.
func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// Entries returns a copy of the palette entries in order.
func (p *Palette) Entries() []Entry {
	if p == nil {
		return nil
	}
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Lookup returns the entry for a symbol.
func (p *Palette) Lookup(s Symbol) (Entry, bool) {
	if p == nil {
		return Entry{}, false
	}
	i, ok := p.index[s]
	if !ok {
		return Entry{}, false
	}
	return p.entries[i], true
}

// Subset returns a palette restricted to the given symbols, preserving the
// receiver's order.
func (p *Palette) Subset(symbols ...Symbol) (*Palette, error) {
	keep := make(map[Symbol]bool, len(symbols))
	for _, s := range symbols {
		if _, ok := p.Lookup(s); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, s)
		}
		keep[s] = true
	}

	var entries []Entry
	for _, e := range p.entries {
		if keep[e.Symbol] {
			entries = append(entries, e)
		}
	}
	return NewPalette(entries)
}

// Order returns the given symbols sorted by palette position.
// Symbols not in the palette are dropped.
func (p *Palette) Order(symbols map[Symbol]bool) []Symbol {
	out := make([]Symbol, 0, len(symbols))
	for _, e := range p.Entries() {
		if symbols[e.Symbol] {
			out = append(out, e.Symbol)
		}
	}
	return out
}

// String returns a human-readable string representation of the palette.
func (p *Palette) String() string {
	if p.Len() == 0 {
		return "Empty palette"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Palette with %d colours:\n", len(p.entries))
	for i, e := range p.entries {
		fmt.Fprintf(&b, "  %d: %s %s %s (%s)\n", i+1, e.Symbol, e.Token(), e.Colour.Hex(), e.Colour.String())
	}
	return b.String()
}
