package loader

import (
	"bytes"
	"errors"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/cmdpalette/internal/config"
)

// TOMLDecoder decodes TOML palette files. Unknown keys are rejected.
type TOMLDecoder struct{}

// Decode implements Decoder.
func (TOMLDecoder) Decode(path string, data []byte, file *config.File) error {
	var doc document
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		perr := &config.ParseError{
			Path:    path,
			Message: err.Error(),
			Err:     err,
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return perr
	}

	doc.apply(file)
	return nil
}
