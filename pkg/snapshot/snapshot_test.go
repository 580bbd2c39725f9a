package snapshot_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/formtree/pkg/form"
	"github.com/aretw0/formtree/pkg/snapshot"
	"github.com/aretw0/formtree/pkg/validators"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sample(t *testing.T) *form.Group {
	t.Helper()
	z := form.WithZone(form.NewZone())
	email := form.NewField("", z, form.WithValidators(validators.Required()))
	tags := form.MustArray([]form.Control{form.NewField("go", z)}, z)
	g := form.MustGroup(map[string]form.Control{"email": email, "tags": tags}, z)
	email.Focus()
	tags.MarkAsTouched()
	return g
}

func TestTake(t *testing.T) {
	n := snapshot.Take(sample(t))

	assert.Equal(t, snapshot.KindGroup, n.Kind)
	assert.Equal(t, form.Invalid, n.Status)
	assert.Empty(t, n.Errors)
	assert.True(t, n.Touched)
	require.Len(t, n.Children, 2)

	email := n.Children[0]
	assert.Equal(t, "email", email.Key)
	assert.Equal(t, "email", email.Path)
	assert.True(t, email.Focused)
	assert.Equal(t, form.ValidationErrors{validators.CodeRequired: true}, email.Errors)

	tags := n.Children[1]
	assert.Equal(t, snapshot.KindArray, tags.Kind)
	require.Len(t, tags.Children, 1)
	assert.Equal(t, "tags.0", tags.Children[0].Path)
	assert.Equal(t, "0", tags.Children[0].Key)
}

func TestInvalid(t *testing.T) {
	invalid := snapshot.Take(sample(t)).Invalid()

	require.Len(t, invalid, 1)
	assert.Equal(t, "email", invalid[0].Path)
}

func TestEncode_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, snapshot.Take(sample(t)).Encode(&buf, snapshot.FormatJSON))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "INVALID", doc["status"])
	assert.Equal(t, map[string]any{"email": "", "tags": []any{"go"}}, doc["value"])
	assert.NotContains(t, doc, "errors")
}

func TestEncode_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, snapshot.Take(sample(t)).Encode(&buf, snapshot.FormatYAML))

	var doc struct {
		Status   string `yaml:"status"`
		Children []struct {
			Path   string         `yaml:"path"`
			Errors map[string]any `yaml:"errors"`
		} `yaml:"children"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "INVALID", doc.Status)
	require.Len(t, doc.Children, 2)
	assert.Equal(t, map[string]any{"required": true}, doc.Children[0].Errors)
}

func TestEncode_UnknownFormat(t *testing.T) {
	assert.Error(t, snapshot.Take(sample(t)).Encode(&bytes.Buffer{}, "xml"))
}
