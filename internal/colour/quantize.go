package colour

import "math"

// Nearest returns the palette entry closest to px under Distance, together
// with that distance.
//
// Entries are scanned in palette order and only a strictly smaller distance
// replaces the current best, so when several entries tie the first one wins.
func Nearest(px RGB, p *Palette) (Entry, float64, error) {
	if p.Len() == 0 {
		return Entry{}, 0, ErrEmptyPalette
	}

	best := 0
	bestDist := math.Inf(1)
	for i, e := range p.entries {
		d := Distance(px, e.Colour)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return p.entries[best], bestDist, nil
}
