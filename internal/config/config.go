package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/cmdpalette/internal/input/palette"
)

// Settings configures the palette.
type Settings struct {
	// CacheSize is the number of memoized segmentations (0 disables).
	CacheSize int

	// HistorySize is the number of executed commands remembered.
	HistorySize int

	// Workers is the number of ranking goroutines (0 means one per CPU).
	Workers int

	// AsyncThreshold is the command count from which the view ranks in the
	// background instead of on the event loop.
	AsyncThreshold int

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// Theme holds the view colors.
	Theme Theme
}

// Theme holds hex colors ("#rrggbb") for the view.
type Theme struct {
	Match    string
	Text     string
	Selected string
	Prompt   string
}

// CommandSpec is a command as written in a palette file.
type CommandSpec struct {
	ID          string
	Name        string
	Description string
	Category    string
	Keybinding  string
	Args        []ArgSpec
}

// ArgSpec is a command parameter as written in a palette file. Type is one
// of string, number, boolean, file, enum; empty means string.
type ArgSpec struct {
	Name        string
	Type        string
	Required    bool
	Default     any
	Description string
	Options     []string
}

// paletteArgs converts the parameters of c.
func (c *CommandSpec) paletteArgs() ([]palette.Arg, error) {
	if len(c.Args) == 0 {
		return nil, nil
	}
	args := make([]palette.Arg, len(c.Args))
	for i, a := range c.Args {
		kind, err := palette.ParseArgKind(a.Type)
		if err != nil {
			return nil, &ValidationError{Field: fmt.Sprintf("args[%d].type", i), Message: err.Error(), Value: a.Type}
		}
		args[i] = palette.Arg{
			Name:        a.Name,
			Kind:        kind,
			Required:    a.Required,
			Default:     a.Default,
			Description: a.Description,
			Options:     a.Options,
		}
	}
	if err := palette.ValidateArgDefs(args); err != nil {
		return nil, &ValidationError{Field: "args", Message: err.Error()}
	}
	return args, nil
}

// File is a parsed palette file.
type File struct {
	// Path is where the file was loaded from.
	Path string

	Settings Settings
	Commands []CommandSpec
}

// DefaultSettings returns the settings used for missing values.
func DefaultSettings() Settings {
	return Settings{
		CacheSize:      1000,
		HistorySize:    palette.DefaultHistorySize,
		Workers:        0,
		AsyncThreshold: 5000,
		LogLevel:       "info",
		Theme:          DefaultTheme(),
	}
}

// DefaultTheme returns the default view colors.
func DefaultTheme() Theme {
	return Theme{
		Match:    "#e5c07b",
		Text:     "#abb2bf",
		Selected: "#3e4451",
		Prompt:   "#61afef",
	}
}

// Validate checks the settings and fills in derived command IDs.
// It returns the first problem as a *ValidationError.
func (f *File) Validate() error {
	if err := f.Settings.Validate(); err != nil {
		return err
	}

	seen := make(map[string]int, len(f.Commands))
	for i := range f.Commands {
		c := &f.Commands[i]
		field := fmt.Sprintf("commands[%d]", i)

		if strings.TrimSpace(c.Name) == "" {
			return &ValidationError{Field: field + ".name", Message: "name cannot be empty", Value: c.Name}
		}
		if c.ID == "" {
			c.ID = palette.IDFromName(c.Name)
		}
		if c.ID == "" {
			return &ValidationError{Field: field + ".id", Message: "cannot derive an ID from the name", Value: c.Name}
		}
		if prev, ok := seen[c.ID]; ok {
			return &ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("duplicate of commands[%d]", prev),
				Value:   c.ID,
			}
		}
		seen[c.ID] = i

		if _, err := c.paletteArgs(); err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				verr.Field = field + "." + verr.Field
			}
			return err
		}
	}
	return nil
}

// Validate checks the settings values.
func (s Settings) Validate() error {
	for _, v := range []struct {
		field string
		value int
	}{
		{"settings.cache_size", s.CacheSize},
		{"settings.history_size", s.HistorySize},
		{"settings.workers", s.Workers},
		{"settings.async_threshold", s.AsyncThreshold},
	} {
		if v.value < 0 {
			return &ValidationError{Field: v.field, Message: "must not be negative", Value: v.value}
		}
	}

	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{
			Field:   "settings.log_level",
			Message: "must be debug, info, warn, or error",
			Value:   s.LogLevel,
		}
	}

	return s.Theme.Validate()
}

// Validate checks that every theme color parses.
func (t Theme) Validate() error {
	for _, c := range []struct {
		field string
		value string
	}{
		{"settings.theme.match", t.Match},
		{"settings.theme.text", t.Text},
		{"settings.theme.selected", t.Selected},
		{"settings.theme.prompt", t.Prompt},
	} {
		if _, err := colorful.Hex(c.value); err != nil {
			return &ValidationError{Field: c.field, Message: "invalid hex color", Value: c.value}
		}
	}
	return nil
}

// PaletteOptions returns the palette options for the settings.
func (s Settings) PaletteOptions() palette.Options {
	return palette.Options{
		HistorySize: s.HistorySize,
		CacheSize:   s.CacheSize,
		Workers:     s.Workers,
	}
}

// PaletteCommands converts the command specs into palette commands.
// handler is attached to every command; it may be nil.
func (f *File) PaletteCommands(handler func(id string) palette.CommandHandler) []*palette.Command {
	commands := make([]*palette.Command, len(f.Commands))
	for i, c := range f.Commands {
		cmd := &palette.Command{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Category:    c.Category,
			Keybinding:  c.Keybinding,
			Source:      f.Path,
		}
		// Validate has checked the parameters.
		cmd.Args, _ = c.paletteArgs()
		if handler != nil {
			cmd.Handler = handler(c.ID)
		}
		commands[i] = cmd
	}
	return commands
}
