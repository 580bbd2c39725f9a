package binding_test

import (
	"testing"

	"github.com/aretw0/formtree/pkg/binding"
	"github.com/aretw0/formtree/pkg/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Address struct {
	Street string `form:"street"`
	City   string `form:"city"`
}

type Profile struct {
	Name      string    `form:"name"`
	Age       int       `form:"age"`
	Addresses []Address `form:"addresses"`
}

func profileForm(t *testing.T) *form.Group {
	t.Helper()
	z := form.WithZone(form.NewZone())
	address := form.MustGroup(map[string]form.Control{
		"street": form.NewField("Main St", z),
		"city":   form.NewField("Lisbon", z),
	}, z)
	return form.MustGroup(map[string]form.Control{
		"name":      form.NewField("ada", z),
		"age":       form.NewField("36", z),
		"addresses": form.MustArray([]form.Control{address}, z),
	}, z)
}

func TestDecode(t *testing.T) {
	var p Profile
	require.NoError(t, binding.Decode(profileForm(t), &p))

	assert.Equal(t, Profile{
		Name:      "ada",
		Age:       36,
		Addresses: []Address{{Street: "Main St", City: "Lisbon"}},
	}, p)
}

func TestDecode_Field(t *testing.T) {
	z := form.WithZone(form.NewZone())
	var age int
	f := form.NewField("41", z)
	require.NoError(t, binding.Decode(f, &age))
	assert.Equal(t, 41, age)

	var bad struct {
		Age int `form:"age"`
	}
	g := form.MustGroup(map[string]form.Control{"age": form.NewField("old", z)}, z)
	assert.ErrorContains(t, binding.Decode(g, &bad), "decode root")
}

func TestEncode(t *testing.T) {
	v, err := binding.Encode(&Profile{
		Name:      "grace",
		Age:       45,
		Addresses: []Address{{Street: "Elm", City: "NYC"}},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"name": "grace",
		"age":  45,
		"addresses": []any{
			map[string]any{"street": "Elm", "city": "NYC"},
		},
	}, v)

	v, err = binding.Encode((*Profile)(nil))
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = binding.Encode(map[int]string{1: "a"})
	assert.Error(t, err)
}

func TestSetAndPatch(t *testing.T) {
	g := profileForm(t)

	require.NoError(t, binding.Set(g, Profile{
		Name:      "grace",
		Age:       45,
		Addresses: []Address{{Street: "Elm", City: "NYC"}, {Street: "Oak", City: "SF"}},
	}))

	var p Profile
	require.NoError(t, binding.Decode(g, &p))
	assert.Equal(t, "grace", p.Name)
	assert.Len(t, p.Addresses, 2, "arrays grow to fit")

	require.NoError(t, binding.Patch(g, map[string]any{"name": "ada"}))
	require.NoError(t, binding.Decode(g, &p))
	assert.Equal(t, "ada", p.Name)
	assert.Equal(t, 45, p.Age)
}
