// Package palette provides the command palette model.
//
// A Palette owns the registered commands and a FilteredCommand view model
// for each of them. Setting a filter recomputes the highlighted name and the
// weight of every command in one pass and then re-sorts the visible list:
//
//	p := palette.New()
//	p.Register(&palette.Command{ID: "tab.new", Name: "New Tab"})
//	p.Register(&palette.Command{ID: "settings.open", Name: "Open Settings"})
//
//	p.SetFilter("open")
//	for _, r := range p.Visible(10) {
//	    // r.Segments holds the matched and unmatched runs of r.Command.Name
//	}
//
// With a non-empty filter only commands with a positive weight are visible,
// ordered by weight and then by name. With an empty filter every command is
// visible, recently executed ones first.
//
// Commands do not notify the palette when they change. Callers rename
// commands through Palette.Rename, or replace the whole list with
// Palette.Replace, and the palette recomputes the affected entries.
//
// # Thread Safety
//
// All Palette operations are safe for concurrent use. FilteredCommand is not;
// the palette guards its own entries.
package palette
