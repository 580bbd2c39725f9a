package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/formtree/pkg/form"
	"github.com/aretw0/formtree/pkg/snapshot"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func sample() snapshot.Node {
	return snapshot.Node{
		Kind:     snapshot.KindGroup,
		Status:   form.Invalid,
		Pristine: true,
		Children: []snapshot.Node{
			{
				Key: "name", Path: "name", Kind: snapshot.KindField, Value: "", Status: form.Invalid,
				Errors: form.ValidationErrors{"required": true}, Touched: true, Pristine: true,
			},
			{Key: "age", Path: "age", Kind: snapshot.KindField, Value: 36, Status: form.Valid, Pristine: false},
			{Key: "tags", Path: "tags", Kind: snapshot.KindArray, Status: form.Disabled, Pristine: true},
		},
	}
}

func TestRenderer_Tree(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf, termenv.Ascii).Tree(sample())

	assert.Equal(t, ""+
		"✗ (root)\n"+
		"  ✗ name = \"\" (touched)\n"+
		"    ✗ required: true\n"+
		"  ✔ age = 36 (dirty)\n"+
		"  ○ tags (disabled)\n",
		buf.String())
}

func TestRenderer_Summary(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, termenv.Ascii)

	r.Summary(sample())
	assert.Equal(t, "✗ form is invalid: name\n", buf.String())

	buf.Reset()
	r.Summary(snapshot.Node{Status: form.Valid})
	assert.Equal(t, "✔ form is valid\n", buf.String())
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3", termenv.Ascii)
	assert.Contains(t, buf.String(), "v1.2.3")
	assert.NotContains(t, buf.String(), "\x1b[")
}
