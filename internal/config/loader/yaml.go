package loader

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dshills/cmdpalette/internal/config"
)

// YAMLDecoder decodes YAML palette files. Unknown keys are rejected.
type YAMLDecoder struct{}

// Decode implements Decoder.
func (YAMLDecoder) Decode(path string, data []byte, file *config.File) error {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return &config.ParseError{
			Path:    path,
			Message: err.Error(),
			Err:     err,
		}
	}

	doc.apply(file)
	return nil
}
