package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/dshills/cmdpalette/internal/input/palette"
)

const ansiReset = "\x1b[0m"

// Printer writes ranked commands as text lines:
//
//	<name>\t<id>[\t<keybinding>]
type Printer struct {
	// Theme supplies the match color for ANSI output.
	Theme Theme
	// ANSI enables bold colored highlighting of matched characters.
	ANSI bool
}

// Print writes results to w with the default theme.
func Print(w io.Writer, results []palette.SearchResult, ansi bool) error {
	return Printer{Theme: DefaultTheme(), ANSI: ansi}.Print(w, results)
}

// Print writes one line per result.
func (p Printer) Print(w io.Writer, results []palette.SearchResult) error {
	var b strings.Builder
	match := ansiForeground(p.Theme.Match)

	for _, r := range results {
		if p.ANSI && len(r.Segments) > 0 {
			for _, seg := range r.Segments {
				if seg.IsMatch {
					b.WriteString(match)
					b.WriteString(seg.Text)
					b.WriteString(ansiReset)
				} else {
					b.WriteString(seg.Text)
				}
			}
		} else {
			b.WriteString(r.Command.Name)
		}

		b.WriteByte('\t')
		b.WriteString(r.Command.ID)
		if r.Command.Keybinding != "" {
			b.WriteByte('\t')
			b.WriteString(r.Command.Keybinding)
		}
		b.WriteByte('\n')
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// ansiForeground returns the escape sequence for bold text in c.
func ansiForeground(c tcell.Color) string {
	if !c.IsRGB() {
		return "\x1b[1m"
	}
	r, g, b := c.RGB()
	return fmt.Sprintf("\x1b[1;38;2;%d;%d;%dm", r, g, b)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
