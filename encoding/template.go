package encoding

import (
	"bytes"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/cockroachdb/errors"
)

// TemplateEncoder renders values with a Go text template,
// sprig functions are available in the template.
type TemplateEncoder struct {
	tmpl *template.Template
}

// NewTemplateEncoder parses the template text.
func NewTemplateEncoder(text string) (*TemplateEncoder, error) {
	tmpl, err := template.New("output").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse template")
	}
	return &TemplateEncoder{tmpl: tmpl}, nil
}

func (e *TemplateEncoder) Marshal(v any) ([]byte, error) {
	var b bytes.Buffer
	if err := e.tmpl.Execute(&b, v); err != nil {
		return nil, errors.Wrap(err, "failed to execute template")
	}
	return b.Bytes(), nil
}

func (e *TemplateEncoder) Unmarshal([]byte, any) error {
	return errors.New("template format does not support decoding")
}
