package palette

import (
	"reflect"
	"testing"

	"github.com/dshills/cmdpalette/internal/input/fuzzy"
)

func TestFilteredCommandInitial(t *testing.T) {
	f := NewFilteredCommand(&Command{ID: "tab.new", Name: "New Tab"}, nil)

	if f.Filter() != "" {
		t.Errorf("Filter() = %q, want empty", f.Filter())
	}
	if f.Weight() != 0 {
		t.Errorf("Weight() = %d, want 0", f.Weight())
	}
	want := fuzzy.Segmentation{{Text: "New Tab", IsMatch: false}}
	if got := f.HighlightedName(); !reflect.DeepEqual(got, want) {
		t.Errorf("HighlightedName() = %+v, want %+v", got, want)
	}
}

func TestFilteredCommandUpdateFilter(t *testing.T) {
	f := NewFilteredCommand(&Command{ID: "settings.open", Name: "Open Settings"}, fuzzy.NewMatcher(fuzzy.DefaultOptions()))

	if !f.UpdateFilter("open") {
		t.Fatal("UpdateFilter should report a change")
	}
	if f.Weight() != 8 {
		t.Errorf("Weight() = %d, want 8", f.Weight())
	}
	want := fuzzy.Segmentation{
		{Text: "Open", IsMatch: true},
		{Text: " Settings", IsMatch: false},
	}
	if got := f.HighlightedName(); !reflect.DeepEqual(got, want) {
		t.Errorf("HighlightedName() = %+v, want %+v", got, want)
	}

	if f.UpdateFilter("open") {
		t.Error("UpdateFilter with the same filter should be a no-op")
	}

	f.UpdateFilter("xyz")
	if f.Weight() != 0 {
		t.Errorf("Weight() = %d, want 0", f.Weight())
	}
}

func TestFilteredCommandRefresh(t *testing.T) {
	cmd := &Command{ID: "tab.new", Name: "New Tab"}
	f := NewFilteredCommand(cmd, nil)
	f.UpdateFilter("open")

	if f.Refresh() {
		t.Error("Refresh without a name change should be a no-op")
	}

	cmd.Name = "Open New Tab"
	if !f.Refresh() {
		t.Fatal("Refresh should pick up the new name")
	}
	if f.Weight() != 8 {
		t.Errorf("Weight() = %d, want 8", f.Weight())
	}
	if got := f.Ranked(); got != (fuzzy.Ranked{Weight: 8, Name: "Open New Tab"}) {
		t.Errorf("Ranked() = %+v", got)
	}
}

func TestFilteredCommandHighlightIsCopy(t *testing.T) {
	f := NewFilteredCommand(&Command{ID: "tab.new", Name: "New Tab"}, nil)
	f.UpdateFilter("new")

	segments := f.HighlightedName()
	segments[0].Text = "changed"

	if f.HighlightedName()[0].Text != "New" {
		t.Error("HighlightedName should return a copy")
	}
}
