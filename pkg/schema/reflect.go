package schema

import (
	"encoding/json"
	"reflect"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/invopop/jsonschema"
)

var (
	cache   = make(map[reflect.Type]*jsonschema.Schema)
	cacheMu sync.Mutex
)

// Reflect returns the parameters definition of a Go struct type,
// used to describe local inputs like the tools filter.
func Reflect(t reflect.Type) *jsonschema.Schema {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if s, ok := cache[t]; ok {
		return s
	}

	raw := JSONSchema(t)
	s := &jsonschema.Schema{
		Type:        raw.Type,
		Description: raw.Description,
		Properties:  raw.Properties,
		Required:    raw.Required,
	}
	cache[t] = s
	return s
}

// JSONSchema return the json schema of the type
func JSONSchema(t reflect.Type) *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}

	// structs with the same name from different packages must not collide
	r.Namer = func(t reflect.Type) string {
		name := t.Name()
		if t.Kind() == reflect.Struct {
			fullname := t.PkgPath() + "/" + t.Name()
			name = t.Name() + "@" + strconv.FormatUint(xxhash.Sum64String(fullname), 10)
		}
		return name
	}

	return r.ReflectFromType(t)
}

// ToJSON returns the indented JSON of the schema.
func ToJSON(s *jsonschema.Schema) string {
	js, _ := json.MarshalIndent(s, "", "\t")
	return string(js)
}
