package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"

	"github.com/dshills/cmdpalette/internal/config"
)

// JSONDecoder decodes JSON palette files. Comments and trailing commas are
// allowed. Commands come from "commands", or from "actions" in the layout
// of a Windows Terminal settings file:
//
//	{"actions": [{"name": "New Tab", "command": "newTab", "keys": "ctrl+t"}]}
//
// Parse errors carry the line and column of the offending value when it
// can be located.
type JSONDecoder struct{}

// Decode implements Decoder.
func (JSONDecoder) Decode(path string, data []byte, file *config.File) error {
	// jsonc blanks comments in place, so offsets still point into data.
	doc := jsonc.ToJSON(data)
	if !gjson.ValidBytes(doc) {
		perr := &config.ParseError{Path: path, Message: "invalid JSON"}
		var raw json.RawMessage
		var serr *json.SyntaxError
		if err := json.Unmarshal(doc, &raw); errors.As(err, &serr) {
			perr.Message = serr.Error()
			perr.Line, perr.Column = position(data, int(serr.Offset))
		}
		return perr
	}
	d := jsonDoc{path: path, data: data}

	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		return d.errorAt(root, "top level value must be an object")
	}

	settings := root.Get("settings")
	if settings.Exists() && !settings.IsObject() {
		return d.errorAt(settings, `"settings" must be an object`)
	}
	s := &file.Settings
	for _, v := range []struct {
		key string
		dst *int
	}{
		{"cache_size", &s.CacheSize},
		{"history_size", &s.HistorySize},
		{"workers", &s.Workers},
		{"async_threshold", &s.AsyncThreshold},
	} {
		r := root.Get("settings." + v.key)
		if !r.Exists() {
			continue
		}
		if r.Type != gjson.Number || r.Num != math.Trunc(r.Num) {
			return d.errorAt(r, "settings."+v.key+" must be an integer")
		}
		*v.dst = int(r.Int())
	}
	for _, v := range []struct {
		key string
		dst *string
	}{
		{"log_level", &s.LogLevel},
		{"theme.match", &s.Theme.Match},
		{"theme.text", &s.Theme.Text},
		{"theme.selected", &s.Theme.Selected},
		{"theme.prompt", &s.Theme.Prompt},
	} {
		if r := root.Get("settings." + v.key); r.Exists() {
			*v.dst = r.String()
		}
	}

	if commands := root.Get("commands"); commands.Exists() {
		if !commands.IsArray() {
			return d.errorAt(commands, `"commands" must be an array`)
		}
		for _, c := range commands.Array() {
			spec, err := d.commandSpec(c)
			if err != nil {
				return err
			}
			file.Commands = append(file.Commands, spec)
		}
	}

	if actions := root.Get("actions"); actions.Exists() {
		if !actions.IsArray() {
			return d.errorAt(actions, `"actions" must be an array`)
		}
		for _, a := range actions.Array() {
			if spec, ok := actionSpec(a); ok {
				file.Commands = append(file.Commands, spec)
			}
		}
	}
	return nil
}

// jsonDoc is the file being decoded, for error positions.
type jsonDoc struct {
	path string
	data []byte
}

func (d jsonDoc) errorAt(r gjson.Result, msg string) *config.ParseError {
	perr := &config.ParseError{Path: d.path, Message: msg}
	if r.Index > 0 {
		perr.Line, perr.Column = position(d.data, r.Index)
	}
	return perr
}

func (d jsonDoc) commandSpec(c gjson.Result) (config.CommandSpec, error) {
	spec := config.CommandSpec{
		ID:          c.Get("id").String(),
		Name:        c.Get("name").String(),
		Description: c.Get("description").String(),
		Category:    c.Get("category").String(),
		Keybinding:  c.Get("keybinding").String(),
	}

	args := c.Get("args")
	if !args.Exists() {
		return spec, nil
	}
	if !args.IsArray() {
		return spec, d.errorAt(args, `"args" must be an array`)
	}
	for _, a := range args.Array() {
		if !a.IsObject() {
			return spec, d.errorAt(a, "argument must be an object")
		}
		arg := config.ArgSpec{
			Name:        a.Get("name").String(),
			Type:        a.Get("type").String(),
			Required:    a.Get("required").Bool(),
			Description: a.Get("description").String(),
			Default:     a.Get("default").Value(),
		}
		for _, o := range a.Get("options").Array() {
			arg.Options = append(arg.Options, o.String())
		}
		spec.Args = append(spec.Args, arg)
	}
	return spec, nil
}

// actionSpec converts a Windows Terminal action. Actions without a name
// are key bindings only and are not listed in the palette.
func actionSpec(a gjson.Result) (config.CommandSpec, bool) {
	name := a.Get("name").String()
	if name == "" {
		return config.CommandSpec{}, false
	}

	spec := config.CommandSpec{
		ID:   a.Get("id").String(),
		Name: name,
	}

	// "command" is either the action name or an object with an "action"
	// key. The other scalar keys of the object are the action's arguments,
	// e.g. {"action": "splitPane", "split": "vertical"}.
	command := a.Get("command")
	if command.IsObject() {
		spec.Category = command.Get("action").String()
		command.ForEach(func(key, value gjson.Result) bool {
			if key.String() == "action" {
				return true
			}
			if arg, ok := actionArg(key.String(), value); ok {
				spec.Args = append(spec.Args, arg)
			}
			return true
		})
	} else {
		spec.Category = command.String()
	}

	// "keys" is a chord string or a list of chords; the first one is shown.
	keys := a.Get("keys")
	if keys.IsArray() {
		keys = keys.Get("0")
	}
	spec.Keybinding = keys.String()
	return spec, true
}

// actionArg turns a scalar action property into an argument defaulting to
// its value. Nested objects and arrays are skipped.
func actionArg(name string, v gjson.Result) (config.ArgSpec, bool) {
	arg := config.ArgSpec{Name: name, Default: v.Value()}
	switch v.Type {
	case gjson.String:
		arg.Type = "string"
	case gjson.Number:
		arg.Type = "number"
	case gjson.True, gjson.False:
		arg.Type = "boolean"
	default:
		return config.ArgSpec{}, false
	}
	return arg, true
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int) (line, column int) {
	offset = min(max(offset, 0), len(data))
	before := data[:offset]
	line = bytes.Count(before, []byte{'\n'}) + 1
	column = offset - bytes.LastIndexByte(before, '\n')
	return line, column
}
