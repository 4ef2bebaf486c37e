package json

import (
	"bytes"
	"encoding/json"
	"io"
	"reflect"

	"github.com/Deduction-Dev/composio/pkg/llmutils"
	"github.com/Deduction-Dev/composio/pkg/schema"
	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
)

type Encoder struct {
	reqType reflect.Type
}

func NewEncoder(req any) *Encoder {
	t := reflect.TypeOf(req)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return &Encoder{
		reqType: t,
	}
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "\t")
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	data := llmutils.CleanJSON(bs)
	return ljson.Unmarshal(data, ret)
}

// UnmarshalStrict decodes standard JSON failing on fields not defined in ret.
func (e *Encoder) UnmarshalStrict(bs []byte, ret any) error {
	dec := json.NewDecoder(bytes.NewReader(llmutils.CleanJSON(bs)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(ret); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (e *Encoder) Validate(req any) error {
	validate := validator.New()
	return validate.Struct(req)
}

// Schema returns the JSON schema of the encoder's type.
func (e *Encoder) Schema() *jsonschema.Schema {
	if e.reqType == nil {
		return nil
	}
	return schema.Reflect(e.reqType)
}

func (e *Encoder) Example() ([]byte, error) {
	if e.reqType == nil {
		return nil, errors.New("example type is not set")
	}
	return e.Marshal(schema.Fake(e.reqType))
}
