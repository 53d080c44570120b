package palette

import (
	"fmt"
	"strings"
	"unicode"
)

// CommandHandler is a function that executes a command.
type CommandHandler func(args map[string]any) error

// Command represents a registered command in the palette.
type Command struct {
	// ID is the unique command identifier (e.g., "tab.new").
	ID string

	// Name is the display name shown in the palette and matched against
	// the filter. Use Palette.Rename to change it once registered.
	Name string

	// Description provides additional context about the command.
	Description string

	// Category groups related commands (e.g., "Tab", "Pane", "Window").
	Category string

	// Keybinding shows the keyboard shortcut (for display only).
	Keybinding string

	// Handler executes the command.
	Handler CommandHandler

	// Args are the parameters passed to Handler. Missing values take
	// their default.
	Args []Arg

	// Source indicates where the command was registered.
	// e.g., "builtin", "user", or the path of the file it was loaded from.
	Source string
}

// Execute resolves args against the command's parameters and calls the
// handler. The caller's map is not modified.
func (c *Command) Execute(args map[string]any) error {
	if c.Handler == nil {
		return fmt.Errorf("command %q has no handler", c.ID)
	}

	resolved, err := ResolveArgs(c.Args, args)
	if err != nil {
		return fmt.Errorf("command %q: %w", c.ID, err)
	}
	return c.Handler(resolved)
}

// Validate checks the fields the palette relies on.
func (c *Command) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("command ID cannot be empty")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("command %q: name cannot be empty", c.ID)
	}
	if err := ValidateArgDefs(c.Args); err != nil {
		return fmt.Errorf("command %q: %w", c.ID, err)
	}
	return nil
}

// IDFromName derives a command ID from a display name, e.g.
// "[ | ] Split Vertical" becomes "split.vertical".
func IDFromName(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, ".")
}
