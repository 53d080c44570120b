package view

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/cmdpalette/internal/config"
)

// Theme holds the view colors.
type Theme struct {
	// Text is the foreground of command names and the filter.
	Text tcell.Color
	// Match is the foreground of matched characters.
	Match tcell.Color
	// Selected is the background of the selected row.
	Selected tcell.Color
	// Prompt is the foreground of the prompt marker and counters.
	Prompt tcell.Color
}

// DefaultTheme returns the theme for the default config colors.
func DefaultTheme() Theme {
	t, err := NewTheme(config.DefaultTheme())
	if err != nil {
		panic(err) // default colors are constants
	}
	return t
}

// NewTheme converts hex config colors into a Theme.
func NewTheme(c config.Theme) (Theme, error) {
	var t Theme
	for _, v := range []struct {
		name string
		hex  string
		dst  *tcell.Color
	}{
		{"text", c.Text, &t.Text},
		{"match", c.Match, &t.Match},
		{"selected", c.Selected, &t.Selected},
		{"prompt", c.Prompt, &t.Prompt},
	} {
		color, err := hexColor(v.hex)
		if err != nil {
			return Theme{}, fmt.Errorf("theme %s color: %w", v.name, err)
		}
		*v.dst = color
	}
	return t, nil
}

func hexColor(hex string) (tcell.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return tcell.ColorDefault, err
	}
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b)), nil
}

// textStyle is the style of unmatched text in a row.
func (t Theme) textStyle(selected bool) tcell.Style {
	s := tcell.StyleDefault.Foreground(t.Text)
	if selected {
		s = s.Background(t.Selected)
	}
	return s
}

// matchStyle is the style of matched characters in a row.
func (t Theme) matchStyle(selected bool) tcell.Style {
	return t.textStyle(selected).Foreground(t.Match).Bold(true)
}

func (t Theme) promptStyle() tcell.Style {
	return tcell.StyleDefault.Foreground(t.Prompt).Bold(true)
}

// dimStyle is used for keybindings and the counter.
func (t Theme) dimStyle(selected bool) tcell.Style {
	return t.textStyle(selected).Dim(true)
}
