package schema

import (
	"encoding/json"
	"slices"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrSchemaConversion is returned when a parameter schema is structurally invalid.
var ErrSchemaConversion = errors.New("invalid parameter schema")

// Kind is the variant of a schema Node.
type Kind string

const (
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindEnum    Kind = "enum"
)

// Node is one element of a parameter schema tree.
// Only the fields relevant to the Kind are set.
type Node struct {
	Kind        Kind
	Title       string
	Description string
	Default     any
	Nullable    bool

	// Properties and Required are set for KindObject
	Properties map[string]*Node
	Required   []string

	// Items is set for KindArray, nil means items of any type
	Items *Node

	// Enum and EnumType are set for KindEnum,
	// EnumType is empty when the schema did not declare the value type
	Enum     []any
	EnumType Kind
}

// ParseNode parses a JSON schema document into a Node tree.
func ParseNode(raw json.RawMessage) (*Node, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "unable to decode schema"), ErrSchemaConversion)
	}
	if m == nil {
		return nil, errors.Mark(errors.New("schema must be an object"), ErrSchemaConversion)
	}
	return NodeFromMap(m)
}

// NodeFromMap builds a Node tree from a decoded JSON schema document.
func NodeFromMap(m map[string]any) (*Node, error) {
	return parseNode("$", m)
}

func conversionError(path, format string, args ...any) error {
	return errors.Mark(errors.Newf("%s: "+format, append([]any{path}, args...)...), ErrSchemaConversion)
}

func parseNode(path string, m map[string]any) (*Node, error) {
	typ, nullable, err := readType(path, m["type"])
	if err != nil {
		return nil, err
	}

	n := &Node{
		Kind:     typ,
		Nullable: nullable,
		Default:  m["default"],
	}
	if v, ok := m["title"].(string); ok {
		n.Title = v
	}
	if v, ok := m["description"].(string); ok {
		n.Description = v
	}

	if raw, ok := m["enum"]; ok {
		values, ok := raw.([]any)
		if !ok || len(values) == 0 {
			return nil, conversionError(path, "enum must be a non-empty list")
		}
		switch typ {
		case "", KindString, KindNumber, KindInteger, KindBoolean:
		default:
			return nil, conversionError(path, "enum of type %q is not supported", typ)
		}
		n.Kind = KindEnum
		n.EnumType = typ
		n.Enum = values
		return n, nil
	}

	switch typ {
	case "":
		return nil, conversionError(path, "missing type")
	case KindObject:
		if err := parseProperties(path, m, n); err != nil {
			return nil, err
		}
	case KindArray:
		if raw, ok := m["items"]; ok && raw != nil {
			items, ok := raw.(map[string]any)
			if !ok {
				return nil, conversionError(path, "items must be a schema object")
			}
			n.Items, err = parseNode(path+"[]", items)
			if err != nil {
				return nil, err
			}
		}
	case KindString, KindNumber, KindInteger, KindBoolean:
	default:
		return nil, conversionError(path, "unsupported type %q", typ)
	}
	return n, nil
}

func parseProperties(path string, m map[string]any, n *Node) error {
	n.Properties = map[string]*Node{}
	if raw, ok := m["properties"]; ok && raw != nil {
		props, ok := raw.(map[string]any)
		if !ok {
			return conversionError(path, "properties must be an object")
		}
		for name, v := range props {
			pm, ok := v.(map[string]any)
			if !ok {
				return conversionError(path+"."+name, "property must be a schema object")
			}
			child, err := parseNode(path+"."+name, pm)
			if err != nil {
				return err
			}
			n.Properties[name] = child
		}
	}

	if raw, ok := m["required"]; ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return conversionError(path, "required must be a list")
		}
		for _, v := range list {
			name, ok := v.(string)
			if !ok {
				return conversionError(path, "required must contain property names")
			}
			if _, ok := n.Properties[name]; !ok {
				return conversionError(path, "required property %q is not defined", name)
			}
			if !slices.Contains(n.Required, name) {
				n.Required = append(n.Required, name)
			}
		}
	}
	return nil
}

// readType returns the declared type, "null" in a type list marks the node nullable
func readType(path string, raw any) (Kind, bool, error) {
	switch v := raw.(type) {
	case nil:
		return "", false, nil
	case string:
		if v == "null" {
			return "", false, conversionError(path, "type null is not supported")
		}
		return Kind(v), false, nil
	case []any:
		var (
			types    []string
			nullable bool
		)
		for _, t := range v {
			s, ok := t.(string)
			if !ok {
				return "", false, conversionError(path, "type must be a string or list of strings")
			}
			if s == "null" {
				nullable = true
				continue
			}
			types = append(types, s)
		}
		if len(types) != 1 {
			return "", false, conversionError(path, "type list must contain exactly one non-null type")
		}
		return Kind(types[0]), nullable, nil
	default:
		return "", false, conversionError(path, "type must be a string or list of strings")
	}
}

// PropertyNames returns sorted names of the object properties.
func (n *Node) PropertyNames() []string {
	names := make([]string, 0, len(n.Properties))
	for name := range n.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// JSONSchema returns the function parameters model of the Node.
func (n *Node) JSONSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{
		Title:       n.Title,
		Description: n.Description,
		Default:     n.Default,
	}

	switch n.Kind {
	case KindEnum:
		s.Type = string(n.EnumType)
		s.Enum = slices.Clone(n.Enum)
	case KindObject:
		s.Type = string(KindObject)
		props := orderedmap.New[string, *jsonschema.Schema]()
		for _, name := range n.PropertyNames() {
			props.Set(name, n.Properties[name].JSONSchema())
		}
		s.Properties = props
		s.Required = slices.Clone(n.Required)
	case KindArray:
		s.Type = string(KindArray)
		if n.Items != nil {
			s.Items = n.Items.JSONSchema()
		}
	default:
		s.Type = string(n.Kind)
	}

	if n.Nullable {
		s.Extras = map[string]any{"nullable": true}
	}
	return s
}

// Document returns the Node as a plain JSON schema document,
// suitable for validators and SDKs accepting map based schemas.
func (n *Node) Document() map[string]any {
	doc := map[string]any{}
	if n.Title != "" {
		doc["title"] = n.Title
	}
	if n.Description != "" {
		doc["description"] = n.Description
	}
	if n.Default != nil {
		doc["default"] = n.Default
	}

	var typ string
	switch n.Kind {
	case KindEnum:
		typ = string(n.EnumType)
		enum := slices.Clone(n.Enum)
		if n.Nullable {
			enum = append(enum, nil)
		}
		doc["enum"] = enum
	case KindObject:
		typ = string(KindObject)
		props := map[string]any{}
		for name, child := range n.Properties {
			props[name] = child.Document()
		}
		doc["properties"] = props
		if len(n.Required) > 0 {
			req := make([]any, len(n.Required))
			for i, r := range n.Required {
				req[i] = r
			}
			doc["required"] = req
		}
	case KindArray:
		typ = string(KindArray)
		if n.Items != nil {
			doc["items"] = n.Items.Document()
		}
	default:
		typ = string(n.Kind)
	}

	if typ != "" {
		if n.Nullable {
			doc["type"] = []any{typ, "null"}
		} else {
			doc["type"] = typ
		}
	}
	return doc
}
