package toml

import (
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Deduction-Dev/composio/pkg/llmutils"
	"github.com/Deduction-Dev/composio/pkg/schema"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
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
	return toml.Marshal(v)
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	data := llmutils.TrimBackticks(string(bs))
	return toml.Unmarshal([]byte(data), ret)
}

// UnmarshalStrict is Unmarshal failing on keys not defined in ret.
func (e *Encoder) UnmarshalStrict(bs []byte, ret any) error {
	data := llmutils.TrimBackticks(string(bs))
	md, err := toml.Decode(data, ret)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.Newf("unknown fields: %s", strings.Join(keys, ", "))
	}
	return nil
}

func (e *Encoder) Validate(req any) error {
	validate := validator.New()
	return validate.Struct(req)
}

func (e *Encoder) Example() ([]byte, error) {
	if e.reqType == nil {
		return nil, errors.New("example type is not set")
	}
	return e.Marshal(schema.Fake(e.reqType))
}
