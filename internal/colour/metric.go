package colour

// labScale converts go-colorful's CIEDE2000 result, computed on L in [0,1],
// to the conventional scale where L spans [0,100]. Quality thresholds are
// expressed on that scale.
const labScale = 100.0

// Distance returns the CIEDE2000 colour difference between a and b.
// Both colours are interpreted as sRGB under a D65 white point and
// converted to CIE L*a*b* before comparison.
//
// The formula is deterministic but not guaranteed to be exactly symmetric
// in floating point.
func Distance(a, b RGB) float64 {
	if a == b {
		return 0
	}
	return a.colorful().DistanceCIEDE2000(b.colorful()) * labScale
}

// Lab returns the colour in CIE L*a*b* with L in [0,100].
func Lab(c RGB) (l, a, b float64) {
	l, a, b = c.colorful().Lab()
	return l * labScale, a * labScale, b * labScale
}
