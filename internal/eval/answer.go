package eval

import (
	"regexp"
	"strings"
)

// Letters are the choice labels in display order.
const Letters = "ABCD"

var letterRE = regexp.MustCompile(`(?i)\b([A-D])\b`)

// Letter returns the label for choice index i, or "" when i is out of range.
func Letter(i int) string {
	if i < 0 || i >= len(Letters) {
		return ""
	}
	return Letters[i : i+1]
}

// ExtractAnswer picks the answer letter out of a free-text response.
//
// The last standalone letter A-D (either case) wins. Without one, the choice
// whose text occurs last in the response wins; when two choices occur at
// the same position the earlier choice is taken. ok is false when neither
// rule finds anything.
func ExtractAnswer(response string, choices []string) (string, bool) {
	response = strings.TrimSpace(response)

	if matches := letterRE.FindAllStringSubmatch(response, -1); len(matches) > 0 {
		return strings.ToUpper(matches[len(matches)-1][1]), true
	}

	lower := strings.ToLower(response)
	best, bestPos := -1, -1
	for i, choice := range choices {
		if i >= len(Letters) {
			break
		}
		pos := lastOccurrence(lower, strings.ToLower(choice))
		if pos > bestPos {
			best, bestPos = i, pos
		}
	}
	if best < 0 {
		return "", false
	}
	return Letter(best), true
}

// lastOccurrence returns the start of the last non-overlapping match of sub
// in s, scanning left to right, or -1.
func lastOccurrence(s, sub string) int {
	if sub == "" {
		return -1
	}
	last, offset := -1, 0
	for {
		i := strings.Index(s[offset:], sub)
		if i < 0 {
			return last
		}
		last = offset + i
		offset = last + len(sub)
	}
}

// Grade reports whether response answers with target.
func Grade(response, target string, choices []string) bool {
	got, ok := ExtractAnswer(response, choices)
	return ok && got == target
}
