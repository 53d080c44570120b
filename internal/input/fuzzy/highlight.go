package fuzzy

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Segment is a maximal run of name characters that share the same match state.
type Segment struct {
	// Text is the run of characters, taken verbatim from the name.
	Text string

	// IsMatch reports whether the run was matched by filter characters.
	IsMatch bool
}

// Segmentation is an ordered list of segments. The segment texts
// concatenate to the original name.
type Segmentation []Segment

// Highlight looks up the filter characters within name.
//
// Each filter character is paired with the first case-insensitive occurrence
// of that character in the part of name that follows the previous match. The
// name is then split into segments of matched and unmatched characters.
//
// If any filter character cannot be found, the entire name is returned as a
// single unmatched segment. An empty filter yields the same result.
func Highlight(name, filter string) Segmentation {
	if filter == "" {
		return unmatched(name)
	}

	segments := make(Segmentation, 0, 2*utf8.RuneCountInString(filter)+1)
	inMatch := false
	start := 0  // byte offset of the first character not yet reported
	offset := 0 // byte offset of the next character to scan

	for _, fc := range filter {
		want := unicode.ToLower(fc)
		for {
			if offset == len(name) {
				// Filter characters remain but the name is exhausted.
				return unmatched(name)
			}

			r, size := utf8.DecodeRuneInString(name[offset:])
			matched := unicode.ToLower(r) == want
			if matched != inMatch {
				// Skip empty runs, which happen when the first character matches.
				if offset > start {
					segments = append(segments, Segment{Text: name[start:offset], IsMatch: inMatch})
					start = offset
				}
				inMatch = matched
			}

			offset += size
			if matched {
				break
			}
		}
	}

	// The loop always ends right after a match.
	if inMatch && offset > start {
		segments = append(segments, Segment{Text: name[start:offset], IsMatch: true})
		start = offset
	}

	if start < len(name) {
		segments = append(segments, Segment{Text: name[start:], IsMatch: false})
	}

	return segments
}

func unmatched(name string) Segmentation {
	return Segmentation{{Text: name, IsMatch: false}}
}

// Text returns the concatenation of all segment texts.
func (s Segmentation) Text() string {
	if len(s) == 1 {
		return s[0].Text
	}
	var b strings.Builder
	for _, seg := range s {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// Matched reports whether any segment is matched.
func (s Segmentation) Matched() bool {
	for _, seg := range s {
		if seg.IsMatch {
			return true
		}
	}
	return false
}

// MatchedRunes returns the rune indices of all matched characters.
func (s Segmentation) MatchedRunes() []int {
	var indices []int
	pos := 0
	for _, seg := range s {
		n := utf8.RuneCountInString(seg.Text)
		if seg.IsMatch {
			for i := 0; i < n; i++ {
				indices = append(indices, pos+i)
			}
		}
		pos += n
	}
	return indices
}

// Clone returns a copy of the segmentation.
func (s Segmentation) Clone() Segmentation {
	if s == nil {
		return nil
	}
	out := make(Segmentation, len(s))
	copy(out, s)
	return out
}
