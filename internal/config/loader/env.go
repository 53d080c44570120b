package loader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dshills/cmdpalette/internal/config"
)

// DefaultEnvPrefix is the prefix of the environment overrides.
const DefaultEnvPrefix = "CMDPALETTE_"

// EnvLoader applies settings overrides from environment variables.
type EnvLoader struct {
	prefix string
	lookup func(string) (string, bool)
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "CMDPALETTE_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix: prefix,
		lookup: os.LookupEnv,
	}
}

// NewEnvLoaderWithLookup creates a loader reading variables through lookup
// instead of the process environment.
func NewEnvLoaderWithLookup(prefix string, lookup func(string) (string, bool)) *EnvLoader {
	return &EnvLoader{
		prefix: prefix,
		lookup: lookup,
	}
}

// Apply overrides fields of s with the variables that are set.
// Empty values are treated as set and rejected for integer fields.
func (l *EnvLoader) Apply(s *config.Settings) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"CACHE_SIZE", &s.CacheSize},
		{"HISTORY_SIZE", &s.HistorySize},
		{"WORKERS", &s.Workers},
		{"ASYNC_THRESHOLD", &s.AsyncThreshold},
	}
	for _, v := range ints {
		env := l.prefix + v.name
		val, ok := l.lookup(env)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("environment variable %s: %w", env, err)
		}
		*v.dst = n
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{"LOG_LEVEL", &s.LogLevel},
		{"THEME_MATCH", &s.Theme.Match},
		{"THEME_TEXT", &s.Theme.Text},
		{"THEME_SELECTED", &s.Theme.Selected},
		{"THEME_PROMPT", &s.Theme.Prompt},
	}
	for _, v := range strs {
		if val, ok := l.lookup(l.prefix + v.name); ok {
			*v.dst = val
		}
	}
	s.LogLevel = strings.ToLower(s.LogLevel)
	return nil
}
