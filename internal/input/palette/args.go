package palette

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrInvalidArg is returned when an argument value does not fit its
// parameter.
var ErrInvalidArg = errors.New("invalid argument")

// ArgKind is the kind of value an Arg accepts.
type ArgKind uint8

const (
	ArgString ArgKind = iota
	ArgNumber
	ArgBoolean
	ArgFile
	ArgEnum
)

var argKindNames = [...]string{
	ArgString:  "string",
	ArgNumber:  "number",
	ArgBoolean: "boolean",
	ArgFile:    "file",
	ArgEnum:    "enum",
}

func (k ArgKind) String() string {
	if int(k) < len(argKindNames) {
		return argKindNames[k]
	}
	return fmt.Sprintf("ArgKind(%d)", k)
}

// ParseArgKind returns the kind named s. The empty string is ArgString.
func ParseArgKind(s string) (ArgKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ArgString, nil
	}
	for k, name := range argKindNames {
		if name == s {
			return ArgKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown argument type %q", s)
}

// Arg is a parameter of a command, for example the direction of a
// "Split Pane" command.
type Arg struct {
	Name        string
	Kind        ArgKind
	Required    bool
	Default     any
	Description string

	// Options lists the accepted values of an ArgEnum.
	Options []string
}

// Check reports whether value is acceptable. A nil value is accepted
// unless the argument is required.
func (a *Arg) Check(value any) error {
	if value == nil {
		if a.Required {
			return fmt.Errorf("%w: %q is required", ErrInvalidArg, a.Name)
		}
		return nil
	}

	var ok bool
	switch a.Kind {
	case ArgString, ArgFile:
		_, ok = value.(string)
	case ArgNumber:
		ok = isNumber(value)
	case ArgBoolean:
		_, ok = value.(bool)
	case ArgEnum:
		s, isString := value.(string)
		if isString && !slices.Contains(a.Options, s) {
			return fmt.Errorf("%w: %q must be one of %s", ErrInvalidArg, a.Name, strings.Join(a.Options, ", "))
		}
		ok = isString
	}
	if !ok {
		return fmt.Errorf("%w: %q must be a %s, got %T", ErrInvalidArg, a.Name, a.Kind, value)
	}
	return nil
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

// ValidateArgDefs checks a parameter list: names are set and unique, enums
// have options, and defaults fit their parameter.
func ValidateArgDefs(defs []Arg) error {
	seen := make(map[string]struct{}, len(defs))
	for i := range defs {
		a := &defs[i]
		if a.Name == "" {
			return fmt.Errorf("argument %d has no name", i)
		}
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("duplicate argument %q", a.Name)
		}
		seen[a.Name] = struct{}{}

		if a.Kind == ArgEnum && len(a.Options) == 0 {
			return fmt.Errorf("enum argument %q has no options", a.Name)
		}
		if a.Default != nil {
			if err := a.Check(a.Default); err != nil {
				return fmt.Errorf("default: %w", err)
			}
		}
	}
	return nil
}

// ResolveArgs checks args against defs and returns a new map with the
// defaults of missing parameters filled in. Keys without a parameter are
// passed through.
func ResolveArgs(defs []Arg, args map[string]any) (map[string]any, error) {
	resolved := make(map[string]any, len(args)+len(defs))
	maps.Copy(resolved, args)

	for i := range defs {
		a := &defs[i]
		value, ok := resolved[a.Name]
		if !ok {
			value = a.Default
		}
		if err := a.Check(value); err != nil {
			return nil, err
		}
		if value != nil {
			resolved[a.Name] = value
		}
	}
	return resolved, nil
}
