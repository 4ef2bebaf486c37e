package schema

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidArguments is returned when tool arguments can not be parsed
// or do not satisfy the parameters schema.
var ErrInvalidArguments = errors.New("invalid tool arguments")

// Parameters is the converted parameters schema of a remote action.
type Parameters struct {
	// Root is the parsed schema tree, always KindObject
	Root *Node
	// Schema is the function parameters definition
	Schema *jsonschema.Schema

	validator *gojsonschema.Schema
}

// Convert parses the raw parameters schema of an action.
// Empty or null schema converts to an object without properties.
func Convert(raw json.RawMessage) (*Parameters, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return FromNode(&Node{Kind: KindObject, Properties: map[string]*Node{}})
	}

	root, err := ParseNode(trimmed)
	if err != nil {
		return nil, err
	}
	return FromNode(root)
}

// FromNode returns Parameters for the object Node.
func FromNode(root *Node) (*Parameters, error) {
	if root == nil || root.Kind != KindObject {
		return nil, conversionError("$", "parameters must be an object")
	}

	validator, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(root.Document()))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "unable to compile schema"), ErrSchemaConversion)
	}

	return &Parameters{
		Root:      root,
		Schema:    root.JSONSchema(),
		validator: validator,
	}, nil
}

// Validate checks the arguments against the schema.
func (p *Parameters) Validate(args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	res, err := p.validator.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return errors.Mark(errors.Wrap(err, "unable to validate arguments"), ErrInvalidArguments)
	}
	if res.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.Mark(errors.Newf("invalid arguments: %s", strings.Join(msgs, "; ")), ErrInvalidArguments)
}

// String returns the indented JSON of the parameters definition.
func (p *Parameters) String() string {
	js, _ := json.MarshalIndent(p.Schema, "", "\t")
	return string(js)
}
