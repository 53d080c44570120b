// Package loader reads palette files.
//
// The format is chosen by file extension: .toml, .yaml/.yml, or
// .json/.jsonc. Every loader produces a validated *config.File with
// defaults applied to missing settings.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/cmdpalette/internal/config"
)

// Decoder parses the content of a palette file.
type Decoder interface {
	// Decode parses data read from path into file. Settings already in file
	// are defaults; values present in data override them.
	Decode(path string, data []byte, file *config.File) error
}

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// Loader loads palette files from a file system.
type Loader struct {
	fs       FileSystem
	decoders map[string]Decoder
	env      *EnvLoader
}

// New creates a loader reading from the OS file system with environment
// overrides under the CMDPALETTE_ prefix.
func New() *Loader {
	return NewWithFS(DefaultFS())
}

// NewWithFS creates a loader with a custom file system.
func NewWithFS(fsys FileSystem) *Loader {
	jsonDecoder := JSONDecoder{}
	yamlDecoder := YAMLDecoder{}
	return &Loader{
		fs: fsys,
		decoders: map[string]Decoder{
			".toml":  TOMLDecoder{},
			".yaml":  yamlDecoder,
			".yml":   yamlDecoder,
			".json":  jsonDecoder,
			".jsonc": jsonDecoder,
		},
		env: NewEnvLoader(DefaultEnvPrefix),
	}
}

// SetEnv replaces the environment loader. nil disables overrides.
func (l *Loader) SetEnv(env *EnvLoader) {
	l.env = env
}

// Load reads, decodes and validates the palette file at path.
func (l *Loader) Load(path string) (*config.File, error) {
	dec, ok := l.decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", config.ErrUnsupportedFormat, path)
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", config.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading palette file %s: %w", path, err)
	}

	file := &config.File{
		Path:     path,
		Settings: config.DefaultSettings(),
	}
	if err := dec.Decode(path, data, file); err != nil {
		return nil, err
	}

	if l.env != nil {
		if err := l.env.Apply(&file.Settings); err != nil {
			return nil, err
		}
	}

	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("palette file %s: %w", path, err)
	}
	return file, nil
}

// Default returns a file with default settings and no commands, used when
// no palette file is given.
func Default() *config.File {
	return &config.File{Settings: config.DefaultSettings()}
}

// LoadDefault returns Default with the environment overrides applied.
func (l *Loader) LoadDefault() (*config.File, error) {
	file := Default()
	if l.env != nil {
		if err := l.env.Apply(&file.Settings); err != nil {
			return nil, err
		}
	}
	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	return file, nil
}

// settingsDoc mirrors config.Settings for TOML and YAML decoding.
// Pointers distinguish missing values from zero values.
type settingsDoc struct {
	CacheSize      *int     `toml:"cache_size" yaml:"cache_size"`
	HistorySize    *int     `toml:"history_size" yaml:"history_size"`
	Workers        *int     `toml:"workers" yaml:"workers"`
	AsyncThreshold *int     `toml:"async_threshold" yaml:"async_threshold"`
	LogLevel       *string  `toml:"log_level" yaml:"log_level"`
	Theme          themeDoc `toml:"theme" yaml:"theme"`
}

type themeDoc struct {
	Match    *string `toml:"match" yaml:"match"`
	Text     *string `toml:"text" yaml:"text"`
	Selected *string `toml:"selected" yaml:"selected"`
	Prompt   *string `toml:"prompt" yaml:"prompt"`
}

type commandDoc struct {
	ID          string   `toml:"id" yaml:"id"`
	Name        string   `toml:"name" yaml:"name"`
	Description string   `toml:"description" yaml:"description"`
	Category    string   `toml:"category" yaml:"category"`
	Keybinding  string   `toml:"keybinding" yaml:"keybinding"`
	Args        []argDoc `toml:"args" yaml:"args"`
}

type argDoc struct {
	Name        string   `toml:"name" yaml:"name"`
	Type        string   `toml:"type" yaml:"type"`
	Required    bool     `toml:"required" yaml:"required"`
	Default     any      `toml:"default" yaml:"default"`
	Description string   `toml:"description" yaml:"description"`
	Options     []string `toml:"options" yaml:"options"`
}

type document struct {
	Settings settingsDoc  `toml:"settings" yaml:"settings"`
	Commands []commandDoc `toml:"commands" yaml:"commands"`
}

// apply copies the decoded document into file.
func (d *document) apply(file *config.File) {
	s := &file.Settings
	setInt(&s.CacheSize, d.Settings.CacheSize)
	setInt(&s.HistorySize, d.Settings.HistorySize)
	setInt(&s.Workers, d.Settings.Workers)
	setInt(&s.AsyncThreshold, d.Settings.AsyncThreshold)
	setString(&s.LogLevel, d.Settings.LogLevel)
	setString(&s.Theme.Match, d.Settings.Theme.Match)
	setString(&s.Theme.Text, d.Settings.Theme.Text)
	setString(&s.Theme.Selected, d.Settings.Theme.Selected)
	setString(&s.Theme.Prompt, d.Settings.Theme.Prompt)

	for _, c := range d.Commands {
		spec := config.CommandSpec{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Category:    c.Category,
			Keybinding:  c.Keybinding,
		}
		for _, a := range c.Args {
			spec.Args = append(spec.Args, config.ArgSpec(a))
		}
		file.Commands = append(file.Commands, spec)
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
