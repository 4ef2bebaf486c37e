package toolset

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/Deduction-Dev/composio/pkg/composio"
	"github.com/Deduction-Dev/composio/pkg/schema"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
)

// ErrInvalidFilter is returned when the filter fails validation.
var ErrInvalidFilter = errors.New("invalid filter")

var validate = validator.New()

// Filter specifies criteria of the actions to fetch.
// All fields are optional, the platform defines how they combine.
type Filter struct {
	Actions               []string `json:"actions,omitempty" yaml:"actions,omitempty" toml:"actions,omitempty" jsonschema:"title=Actions,description=Action names" validate:"omitempty,dive,required" fake:"skip"`
	Apps                  []string `json:"apps,omitempty" yaml:"apps,omitempty" toml:"apps,omitempty" jsonschema:"title=Apps,description=Application names" validate:"omitempty,dive,required" fake:"{randomstring:[github,slack,gmail]}" fakesize:"1"`
	Tags                  []string `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags,omitempty" jsonschema:"title=Tags,description=Action tags" validate:"omitempty,dive,required" fake:"skip"`
	UseCase               string   `json:"useCase,omitempty" yaml:"use_case,omitempty" toml:"use_case,omitempty" jsonschema:"title=Use case,description=Natural language description of the task" fake:"{sentence:5}"`
	UseCaseLimit          int      `json:"usecaseLimit,omitempty" yaml:"use_case_limit,omitempty" toml:"use_case_limit,omitempty" jsonschema:"title=Use case limit,description=Max number of actions matching the use case" validate:"gte=0" fake:"{number:1,10}"`
	FilterByAvailableApps bool     `json:"filterByAvailableApps,omitempty" yaml:"filter_by_available_apps,omitempty" toml:"filter_by_available_apps,omitempty" jsonschema:"title=Available apps only,description=Only apps with an active connection" fake:"true"`
}

// Validate returns ErrInvalidFilter if the filter is malformed.
func (f *Filter) Validate() error {
	if f == nil {
		return nil
	}
	if err := validate.Struct(f); err != nil {
		return errors.Mark(errors.Wrap(err, "invalid filter"), ErrInvalidFilter)
	}
	return nil
}

// Request returns the listing request for the filter.
func (f *Filter) Request() *composio.ListActionsRequest {
	if f == nil {
		return &composio.ListActionsRequest{}
	}
	return &composio.ListActionsRequest{
		Actions:               f.Actions,
		Apps:                  f.Apps,
		Tags:                  f.Tags,
		UseCase:               f.UseCase,
		UseCaseLimit:          f.UseCaseLimit,
		FilterByAvailableApps: f.FilterByAvailableApps,
	}
}

// ParseFilter decodes JSON filter, unknown or mis-typed fields are rejected.
func ParseFilter(data []byte) (*Filter, error) {
	f := new(Filter)
	if len(bytes.TrimSpace(data)) == 0 {
		return f, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(f); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "invalid filter"), ErrInvalidFilter)
	}
	if dec.More() {
		return nil, errors.Mark(errors.New("invalid filter: unexpected data after filter"), ErrInvalidFilter)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// FilterSchema returns JSON schema of Filter.
func FilterSchema() *jsonschema.Schema {
	return schema.Reflect(reflect.TypeOf(Filter{}))
}
