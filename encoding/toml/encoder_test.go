package toml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Details struct {
	Location string `fake:"Beijing"`
	Gender   string `fake:"male"`
}

type Person struct {
	Name       string    `fake:"Syd Xu"`
	Age        *int      `fake:"24"`
	Details    *Details  `validate:"required"`
	DetailList []Details `fakesize:"1"`
}

func TestExample(t *testing.T) {
	enc := NewEncoder(&Person{})
	exp := `Name = "Syd Xu"
Age = 24

[Details]
  Location = "Beijing"
  Gender = "male"

[[DetailList]]
  Location = "Beijing"
  Gender = "male"
`
	bs, err := enc.Example()
	require.NoError(t, err)
	assert.Equal(t, exp, string(bs))

	var p Person
	require.NoError(t, enc.Unmarshal(bs, &p))
	assert.Equal(t, "Syd Xu", p.Name)
	require.NotNil(t, p.Details)
	assert.Equal(t, "Beijing", p.Details.Location)
	assert.NoError(t, enc.Validate(p))
	assert.Error(t, enc.Validate(Person{}))
}
