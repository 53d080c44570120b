// Package config defines the palette file: settings plus a list of commands.
//
// A palette file can be written in TOML, YAML or JSON. JSON files may contain
// comments and may be terminal settings files that list their commands under
// "actions". The loader sub-package parses all formats into a File:
//
//	[settings]
//	log_level = "info"
//	cache_size = 1000
//
//	[settings.theme]
//	match = "#e5c07b"
//
//	[[commands]]
//	id = "tab.new"
//	name = "New Tab"
//	keybinding = "ctrl+shift+t"
//
//	[[commands.args]]
//	name = "profile"
//	default = "pwsh"
//
// Command args are passed to the handler, with defaults filled in. In
// terminal settings files the extra keys of a "command" object are args.
//
// # Sub-packages
//
//   - loader: file loading (TOML, YAML, JSON) and environment overrides
//   - watcher: fsnotify based live reload of the palette file
//
// Environment variables override file settings, also when no file is given:
//
//	CMDPALETTE_LOG_LEVEL, CMDPALETTE_CACHE_SIZE, CMDPALETTE_HISTORY_SIZE,
//	CMDPALETTE_WORKERS, CMDPALETTE_ASYNC_THRESHOLD, CMDPALETTE_THEME_MATCH,
//	CMDPALETTE_THEME_TEXT, CMDPALETTE_THEME_SELECTED, CMDPALETTE_THEME_PROMPT
package config
