package schema

import (
	"reflect"

	"github.com/brianvoe/gofakeit/v7"
)

// Faker is a interface for generating structures
// with fake data. It is used for generating examples.
type Faker interface {
	Fake() any
}

// Fake returns a pointer to a new value of the type filled with fake data,
// `fake` and `fakesize` struct tags control the generated values.
func Fake(t reflect.Type) any {
	tValue := reflect.New(t)
	if f, ok := tValue.Elem().Interface().(Faker); ok {
		return f.Fake()
	}
	instance := tValue.Interface()
	_ = gofakeit.Struct(instance)
	return instance
}
