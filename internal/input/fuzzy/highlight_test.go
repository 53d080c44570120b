package fuzzy

import (
	"reflect"
	"testing"
)

func TestHighlight(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		filter string
		want   Segmentation
	}{
		{
			name:   "scattered matches",
			text:   "close all tabs after this",
			filter: "clts",
			want: Segmentation{
				{Text: "cl", IsMatch: true},
				{Text: "ose all ", IsMatch: false},
				{Text: "t", IsMatch: true},
				{Text: "ab", IsMatch: false},
				{Text: "s", IsMatch: true},
				{Text: " after this", IsMatch: false},
			},
		},
		{
			name:   "contiguous prefix",
			text:   "Open Settings",
			filter: "open",
			want: Segmentation{
				{Text: "Open", IsMatch: true},
				{Text: " Settings", IsMatch: false},
			},
		},
		{
			name:   "no match falls back to whole name",
			text:   "New Tab",
			filter: "xyz",
			want:   Segmentation{{Text: "New Tab", IsMatch: false}},
		},
		{
			name:   "empty filter",
			text:   "Tab",
			filter: "",
			want:   Segmentation{{Text: "Tab", IsMatch: false}},
		},
		{
			name:   "empty name and filter",
			text:   "",
			filter: "",
			want:   Segmentation{{Text: "", IsMatch: false}},
		},
		{
			name:   "empty name",
			text:   "",
			filter: "a",
			want:   Segmentation{{Text: "", IsMatch: false}},
		},
		{
			name:   "filter longer than name",
			text:   "ab",
			filter: "abc",
			want:   Segmentation{{Text: "ab", IsMatch: false}},
		},
		{
			name:   "out of order",
			text:   "ba",
			filter: "ab",
			want:   Segmentation{{Text: "ba", IsMatch: false}},
		},
		{
			name:   "whole name",
			text:   "Tab",
			filter: "TAB",
			want:   Segmentation{{Text: "Tab", IsMatch: true}},
		},
		{
			name:   "match at the end",
			text:   "New Tab",
			filter: "b",
			want: Segmentation{
				{Text: "New Ta", IsMatch: false},
				{Text: "b", IsMatch: true},
			},
		},
		{
			name:   "greedy leftmost",
			text:   "aXa",
			filter: "a",
			want: Segmentation{
				{Text: "a", IsMatch: true},
				{Text: "Xa", IsMatch: false},
			},
		},
		{
			name:   "spaces in filter",
			text:   "Split Pane",
			filter: "t p",
			want: Segmentation{
				{Text: "Spli", IsMatch: false},
				{Text: "t P", IsMatch: true},
				{Text: "ane", IsMatch: false},
			},
		},
		{
			name:   "non-ascii",
			text:   "Файл открыть",
			filter: "фо",
			want: Segmentation{
				{Text: "Ф", IsMatch: true},
				{Text: "айл ", IsMatch: false},
				{Text: "о", IsMatch: true},
				{Text: "ткрыть", IsMatch: false},
			},
		},
		{
			name:   "invalid utf-8 is kept verbatim",
			text:   "a\xffb",
			filter: "b",
			want: Segmentation{
				{Text: "a\xff", IsMatch: false},
				{Text: "b", IsMatch: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Highlight(tt.text, tt.filter)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Highlight(%q, %q) = %+v, want %+v", tt.text, tt.filter, got, tt.want)
			}
		})
	}
}

// invariantNames and invariantFilters are combined pairwise in the property
// tests below.
var (
	invariantNames = []string{
		"",
		" ",
		"a",
		"Tab",
		"New Tab",
		"close all tabs after this",
		"[ | ] Split Vertical",
		"Open Media Controls",
		"aaaa",
		"Ünïcödé Nàmé",
		"x\xff\xfey",
	}
	invariantFilters = []string{
		"",
		" ",
		"a",
		"A",
		"tab",
		"clts",
		"sv",
		"aa",
		"aaaaa",
		"zz",
		"ü",
		"é",
		"\xff",
		"open media controls",
	}
)

func TestHighlightCoversName(t *testing.T) {
	for _, name := range invariantNames {
		for _, filter := range invariantFilters {
			segments := Highlight(name, filter)
			if got := segments.Text(); got != name {
				t.Errorf("Highlight(%q, %q): segments join to %q", name, filter, got)
			}
		}
	}
}

func TestHighlightAlternates(t *testing.T) {
	for _, name := range invariantNames {
		for _, filter := range invariantFilters {
			segments := Highlight(name, filter)
			for i := 1; i < len(segments); i++ {
				if segments[i].IsMatch == segments[i-1].IsMatch {
					t.Errorf("Highlight(%q, %q): adjacent segments %d and %d share state", name, filter, i-1, i)
				}
			}
			if len(segments) > 1 {
				for i, seg := range segments {
					if seg.Text == "" {
						t.Errorf("Highlight(%q, %q): empty segment at %d", name, filter, i)
					}
				}
			}
		}
	}
}

func TestHighlightFallback(t *testing.T) {
	tests := []struct {
		name   string
		filter string
	}{
		{"New Tab", "xyz"},
		{"New Tab", "new tabs"},
		{"New Tab", "tn"},
		{"abc", "abcc"},
		{"", "a"},
	}

	for _, tt := range tests {
		got := Highlight(tt.name, tt.filter)
		want := Segmentation{{Text: tt.name, IsMatch: false}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Highlight(%q, %q) = %+v, want fallback", tt.name, tt.filter, got)
		}
	}
}

func TestSegmentationMatchedRunes(t *testing.T) {
	segments := Highlight("close all tabs after this", "clts")
	want := []int{0, 1, 10, 13}
	if got := segments.MatchedRunes(); !reflect.DeepEqual(got, want) {
		t.Errorf("MatchedRunes() = %v, want %v", got, want)
	}

	segments = Highlight("Файл", "йл")
	want = []int{2, 3}
	if got := segments.MatchedRunes(); !reflect.DeepEqual(got, want) {
		t.Errorf("MatchedRunes() = %v, want %v", got, want)
	}

	if got := Highlight("Tab", "x").MatchedRunes(); got != nil {
		t.Errorf("MatchedRunes() = %v, want nil", got)
	}
}

func TestSegmentationClone(t *testing.T) {
	original := Highlight("Open Settings", "open")
	clone := original.Clone()
	clone[0].Text = "changed"

	if original[0].Text != "Open" {
		t.Error("Clone should not share backing storage")
	}
	if Segmentation(nil).Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}
