package definition_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/formtree/pkg/definition"
	"github.com/aretw0/formtree/pkg/form"
	"github.com/aretw0/formtree/pkg/registry"
	"github.com/aretw0/formtree/pkg/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signup = `
controls:
  email:
    value: ""
    validators:
      - name: required
      - name: email
    debounce: 300ms
  age:
    value: 17
    validators:
      - name: min
        args: {value: 18}
  newsletter:
    value: false
    disabled: true
  tags:
    item:
      validators:
        - name: maxLength
          args: {n: 3}
    value: [go, redis]
`

func build(t *testing.T, def *definition.Definition) form.Control {
	t.Helper()
	c, err := definition.NewBuilder(nil, definition.WithZone(form.NewZone())).Build(def)
	require.NoError(t, err)
	return c
}

func TestParse_YAML(t *testing.T) {
	def, err := definition.Parse([]byte(signup), definition.FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, definition.KindGroup, def.ResolvedKind())
	require.Contains(t, def.Controls, "email")
	email := def.Controls["email"]
	assert.Equal(t, definition.KindField, email.ResolvedKind())
	require.NotNil(t, email.Debounce)
	assert.Equal(t, 300*time.Millisecond, *email.Debounce)
	assert.Equal(t, []definition.Rule{{Name: "required"}, {Name: "email"}}, email.Validators)
	assert.Equal(t, definition.KindArray, def.Controls["tags"].ResolvedKind())
}

func TestParse_JSON(t *testing.T) {
	doc := `{"kind": "array", "items": [{"value": "a"}, {"value": "b"}], "debounce": 1000000}`

	def, err := definition.Parse([]byte(doc), definition.FormatJSON)
	require.NoError(t, err)

	assert.Len(t, def.Items, 2)
	assert.Equal(t, time.Millisecond, *def.Debounce)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "controls: {a: {valeu: 1}}"},
		{"unknown kind", "kind: matrix"},
		{"field with items", "kind: field\nitems: [{}]"},
		{"group with items", "kind: group\nitems: [{}]"},
		{"array with controls", "kind: array\ncontrols: {a: {}}"},
		{"array item template", "item: {controls: {a: {}}}"},
		{"dotted key", `controls: {"a.b": {}}`},
		{"empty control", "controls: {a: }"},
		{"nameless rule", "validators: [{args: {n: 1}}]"},
		{"negative debounce", "debounce: -1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := definition.Parse([]byte(tt.doc), definition.FormatYAML)
			assert.ErrorIs(t, err, definition.ErrInvalidDefinition)
		})
	}

	_, err := definition.Parse([]byte("{"), definition.FormatJSON)
	assert.Error(t, err)
	_, err = definition.Parse(nil, "toml")
	assert.ErrorIs(t, err, definition.ErrUnknownFormat)
}

func TestBuild(t *testing.T) {
	def, err := definition.Parse([]byte(signup), definition.FormatYAML)
	require.NoError(t, err)

	root := build(t, def)
	g, ok := root.(*form.Group)
	require.True(t, ok)

	assert.Equal(t, []string{"age", "email", "newsletter", "tags"}, g.Keys())
	assert.True(t, g.Invalid())
	assert.True(t, g.HasError(validators.CodeRequired, "email"))
	assert.True(t, g.HasError(validators.CodeMin, "age"))

	newsletter, err := g.Get("newsletter")
	require.NoError(t, err)
	assert.True(t, newsletter.Disabled())
	assert.NotContains(t, g.Value(), "newsletter")

	tags, err := g.Get("tags")
	require.NoError(t, err)
	assert.Equal(t, []any{"go", "redis"}, tags.Value())
	assert.True(t, g.HasError(validators.CodeMaxLength, "tags.1"), "grown items use the item template")
	assert.True(t, g.Pristine())
}

func TestBuild_UnknownValidator(t *testing.T) {
	def, err := definition.Parse([]byte("controls: {a: {validators: [{name: nope}]}}"), definition.FormatYAML)
	require.NoError(t, err)

	_, err = definition.NewBuilder(registry.NewRegistry()).Build(def)
	assert.ErrorIs(t, err, registry.ErrNotFound)
	assert.ErrorContains(t, err, "a:")
}

func TestBuild_GroupValue(t *testing.T) {
	def, err := definition.Parse([]byte("controls: {a: {}, b: {value: 2}}\nvalue: {a: 1}"), definition.FormatYAML)
	require.NoError(t, err)

	c := build(t, def)
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, c.Value())
}

func TestBuild_NonNullable(t *testing.T) {
	def, err := definition.Parse([]byte("value: x\nnonNullable: true\ntouched: true"), definition.FormatYAML)
	require.NoError(t, err)

	c := build(t, def)
	assert.True(t, c.Touched())
	require.NoError(t, c.Reset(nil))
	assert.Equal(t, "x", c.Value())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "signup.yaml")
	jsonPath := filepath.Join(dir, "signup.JSON")
	require.NoError(t, os.WriteFile(yamlPath, []byte(signup), 0o600))
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"controls": {"a": {"value": 1}}}`), 0o600))

	def, err := definition.Load(yamlPath)
	require.NoError(t, err)
	assert.Len(t, def.Controls, 4)

	def, err = definition.Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, float64(1), def.Controls["a"].Value)

	_, err = definition.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
