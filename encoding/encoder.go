// Package encoding provides the output and input formats of the toolset CLI.
package encoding

import (
	"path/filepath"
	"strings"

	jsonenc "github.com/Deduction-Dev/composio/encoding/json"
	tomlenc "github.com/Deduction-Dev/composio/encoding/toml"
	yamlenc "github.com/Deduction-Dev/composio/encoding/yaml"
	"github.com/cockroachdb/errors"
)

type Encoder interface {
	Marshal(v any) ([]byte, error)
	Unmarshal([]byte, any) error
}

// Exampler produces an example of the encoder's type, filled with fake data.
type Exampler interface {
	Example() ([]byte, error)
}

type Validator interface {
	Validate(any) error
}

type Format = string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatDefault is the default format of the encoder.
// Allow to override in apps
var FormatDefault = FormatJSON

// NewEncoder returns Encoder of the format,
// req is the value of the type used for examples, can be nil.
func NewEncoder(format Format, req any) (Encoder, error) {
	if format == "" {
		format = FormatDefault
	}
	switch strings.ToLower(format) {
	case FormatJSON:
		return jsonenc.NewEncoder(req), nil
	case FormatYAML, "yml":
		return yamlenc.NewEncoder(req), nil
	case FormatTOML:
		return tomlenc.NewEncoder(req), nil
	default:
		return nil, errors.Newf("unsupported format: %q", format)
	}
}

// FormatFromFile returns the format by the file extension,
// FormatDefault if the extension is not known.
func FormatFromFile(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatDefault
	}
}

// Decode decodes the data in the format.
func Decode(format Format, data []byte, v any) error {
	enc, err := NewEncoder(format, nil)
	if err != nil {
		return err
	}
	if err = enc.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "failed to decode %s", format)
	}
	return nil
}

// StrictUnmarshaler decodes rejecting fields unknown to the target.
type StrictUnmarshaler interface {
	UnmarshalStrict(bs []byte, ret any) error
}

// DecodeStrict decodes the data in the format,
// unknown fields fail the decoding.
func DecodeStrict(format Format, data []byte, v any) error {
	enc, err := NewEncoder(format, nil)
	if err != nil {
		return err
	}
	strict, ok := enc.(StrictUnmarshaler)
	if !ok {
		return errors.Newf("format %s does not support strict decoding", format)
	}
	if err = strict.UnmarshalStrict(data, v); err != nil {
		return errors.Wrapf(err, "failed to decode %s", format)
	}
	return nil
}

var (
	_ Encoder = (*jsonenc.Encoder)(nil)
	_ Encoder = (*tomlenc.Encoder)(nil)
	_ Encoder = (*yamlenc.Encoder)(nil)
	_ Encoder = (*TemplateEncoder)(nil)

	_ Exampler = (*jsonenc.Encoder)(nil)
	_ Exampler = (*tomlenc.Encoder)(nil)
	_ Exampler = (*yamlenc.Encoder)(nil)

	_ Validator = (*jsonenc.Encoder)(nil)
	_ Validator = (*tomlenc.Encoder)(nil)
	_ Validator = (*yamlenc.Encoder)(nil)

	_ StrictUnmarshaler = (*jsonenc.Encoder)(nil)
	_ StrictUnmarshaler = (*tomlenc.Encoder)(nil)
	_ StrictUnmarshaler = (*yamlenc.Encoder)(nil)
)
