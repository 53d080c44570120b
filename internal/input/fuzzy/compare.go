package fuzzy

import (
	"cmp"
	"slices"
	"strings"
)

// Ranked is the sort key of a filtered item.
type Ranked struct {
	Weight int
	Name   string
}

// Less reports whether a should be listed before b: higher weight first,
// then names in ordinal byte order. Fully tied pairs report false both ways;
// stable sorts keep them in their original order.
func Less(a, b Ranked) bool {
	return Compare(a, b) < 0
}

// Compare is the three-way form of Less, suitable for slices.SortStableFunc.
func Compare(a, b Ranked) int {
	if a.Weight != b.Weight {
		// Higher weight sorts first.
		return cmp.Compare(b.Weight, a.Weight)
	}
	return strings.Compare(a.Name, b.Name)
}

// Sort orders ranked pairs with Compare, keeping ties in input order.
func Sort(r []Ranked) {
	slices.SortStableFunc(r, Compare)
}
