// Package fuzzy implements the matcher behind the command palette filter.
//
// Matching is a single pass, case-insensitive, order-preserving subsequence
// match. Every filter character is paired with the first occurrence of that
// character in the remaining suffix of the name. There is no backtracking,
// no transposition handling and no edit distance.
//
// # Segmentation
//
// Highlight splits a name into maximal runs of matched and unmatched
// characters:
//
//	fuzzy.Highlight("close all tabs after this", "clts")
//	// ("cl", true) ("ose all ", false) ("t", true) ("ab", false)
//	// ("s", true) (" after this", false)
//
// When the filter cannot be matched in order the whole name is returned as a
// single unmatched segment.
//
// # Weight
//
// Weight turns a segmentation into a score. Each matched run of n characters
// is worth 1+2(n-1) points, so contiguous matches beat scattered ones, and a
// run that starts a word (the start of the name, or right after a space)
// earns one more point. A weight of 0 means "no match".
//
// # Ordering
//
// Less orders ranked pairs by weight descending, then by name in ordinal
// byte order. All sorts in this package are stable, so fully tied items keep
// their input order.
//
// # Usage
//
//	matcher := fuzzy.NewMatcher(fuzzy.DefaultOptions())
//	items := []fuzzy.Item{
//	    {Text: "New Tab", Data: cmd1},
//	    {Text: "Open Settings", Data: cmd2},
//	}
//	for _, r := range matcher.Match("open", items, 10) {
//	    fmt.Printf("%s (weight: %d)\n", r.Item.Text, r.Weight)
//	}
//
// # Thread Safety
//
// Highlight, Weight, Less and Compare are pure functions. The Matcher and
// its cache are safe for concurrent use.
package fuzzy
