package fuzzy

import (
	"strings"
	"unicode/utf8"
)

// Weight calculates the weighting used to order a name relative to other
// names for the same filter:
//   - every matched character is worth a point, and each character that
//     continues a matched run is worth two, so contiguous matches rank above
//     scattered ones;
//   - a matched run that begins a word earns an extra point. A word begins at
//     the start of the name or right after a space, so for "sp" the name
//     "Split Pane" ranks above "Close Pane".
//
// Weight returns 0 when the segmentation has no matched segment, which callers
// treat as "do not show" for a non-empty filter.
func Weight(s Segmentation) int {
	result := 0
	wordStart := true

	for _, seg := range s {
		n := utf8.RuneCountInString(seg.Text)

		if seg.IsMatch {
			if n <= 1 {
				result += n
			} else {
				result += 1 + 2*(n-1)
			}

			if wordStart {
				result++
			}
		}

		// Only a plain space starts a word.
		wordStart = n > 0 && strings.HasSuffix(seg.Text, " ")
	}

	return result
}

// Weight is shorthand for Weight(s).
func (s Segmentation) Weight() int {
	return Weight(s)
}
