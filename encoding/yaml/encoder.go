package yaml

import (
	"io"
	"reflect"
	"regexp"
	"strings"

	"github.com/Deduction-Dev/composio/pkg/llmutils"
	"github.com/Deduction-Dev/composio/pkg/schema"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type CommentStyle int

const (
	NoComment CommentStyle = iota
	HeadComment
	LineComment
	FootComment
)

var descriptionRegex = regexp.MustCompile(`description=([^,]+)`)

type Encoder struct {
	reqType      reflect.Type
	commentStyle CommentStyle
}

func NewEncoder(req any) *Encoder {
	t := reflect.TypeOf(req)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return &Encoder{
		reqType:      t,
		commentStyle: NoComment,
	}
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	if e.commentStyle == NoComment {
		return yaml.Marshal(v)
	}
	node, err := e.commentedNode(v)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	data := llmutils.TrimBackticks(string(bs))
	return yaml.Unmarshal([]byte(data), ret)
}

// UnmarshalStrict is Unmarshal failing on fields not defined in ret.
func (e *Encoder) UnmarshalStrict(bs []byte, ret any) error {
	data := llmutils.TrimBackticks(string(bs))
	dec := yaml.NewDecoder(strings.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(ret); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (e *Encoder) Validate(req any) error {
	validate := validator.New()
	return validate.Struct(req)
}

// WithCommentStyle sets the style of comments produced from
// `comment` or jsonschema description struct tags.
func (e *Encoder) WithCommentStyle(style CommentStyle) *Encoder {
	e.commentStyle = style
	return e
}

func (e *Encoder) Example() ([]byte, error) {
	if e.reqType == nil {
		return nil, errors.New("example type is not set")
	}
	return e.Marshal(schema.Fake(e.reqType))
}

func (e *Encoder) commentedNode(v any) (*yaml.Node, error) {
	val := reflect.ValueOf(v)
	for val.Kind() == reflect.Ptr && !val.IsNil() {
		val = val.Elem()
	}
	if val.IsValid() && val.Kind() != reflect.Ptr && val.Kind() != reflect.Struct {
		return nil, errors.Newf("expected struct, got %s", val.Kind())
	}

	doc := new(yaml.Node)
	if err := doc.Encode(v); err != nil {
		return nil, errors.WithStack(err)
	}
	if val.IsValid() && val.Kind() == reflect.Struct {
		e.annotate(doc, val.Type())
	}
	return doc, nil
}

// annotate sets comments of the mapping keys from the struct tags of t
func (e *Encoder) annotate(node *yaml.Node, t reflect.Type) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch node.Kind {
	case yaml.DocumentNode:
		for _, c := range node.Content {
			e.annotate(c, t)
		}
	case yaml.SequenceNode:
		if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
			for _, c := range node.Content {
				e.annotate(c, t.Elem())
			}
		}
	case yaml.MappingNode:
		if t.Kind() != reflect.Struct {
			return
		}
		fields := fieldsByKey(t)
		for i := 0; i+1 < len(node.Content); i += 2 {
			field, ok := fields[node.Content[i].Value]
			if !ok {
				continue
			}
			e.setComment(node.Content[i], fieldComment(field))
			e.annotate(node.Content[i+1], field.Type)
		}
	}
}

func (e *Encoder) setComment(key *yaml.Node, comment string) {
	if comment == "" {
		return
	}
	switch e.commentStyle {
	case HeadComment:
		key.HeadComment = comment
	case LineComment:
		key.LineComment = comment
	case FootComment:
		key.FootComment = comment
	}
}

// fieldsByKey returns exported fields of the struct by their YAML key
func fieldsByKey(t reflect.Type) map[string]reflect.StructField {
	res := make(map[string]reflect.StructField, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		key, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		switch key {
		case "-":
			continue
		case "":
			key = strings.ToLower(field.Name)
		}
		res[key] = field
	}
	return res
}

// fieldComment returns `comment` tag, or description of `jsonschema` tag
func fieldComment(field reflect.StructField) string {
	if c := field.Tag.Get("comment"); c != "" {
		return c
	}
	if m := descriptionRegex.FindStringSubmatch(field.Tag.Get("jsonschema")); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}
