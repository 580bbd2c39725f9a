package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/formtree/internal/presentation/graph"
	"github.com/aretw0/formtree/pkg/form"
	"github.com/aretw0/formtree/pkg/snapshot"
	"github.com/stretchr/testify/assert"
)

func tree() snapshot.Node {
	return snapshot.Node{
		Kind:   snapshot.KindGroup,
		Status: form.Invalid,
		Children: []snapshot.Node{
			{Key: "name", Path: "name", Kind: snapshot.KindField, Value: "", Status: form.Invalid},
			{Key: "first-tag", Path: "first-tag", Kind: snapshot.KindField, Value: nil, Status: form.Disabled},
			{
				Key: "tags", Path: "tags", Kind: snapshot.KindArray, Status: form.Pending,
				Children: []snapshot.Node{
					{Key: "0", Path: "tags.0", Kind: snapshot.KindField, Value: `say "hi"`, Status: form.Pending},
				},
			},
		},
	}
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		overlay  bool
		contains []string
		excludes []string
	}{
		{
			name: "Shapes",
			contains: []string{
				`form[["form"]]`,
				`form_tags[/"tags"/]`,
				`form_name["name = "]`,
			},
		},
		{
			name: "Edges",
			contains: []string{
				"form --> form_name",
				"form --> form_tags",
				"form_tags --> form_tags_0",
			},
		},
		{
			name: "ID Sanitization And Quoting",
			contains: []string{
				`form_first_tag["first-tag = ∅"]`,
				`form_tags_0["0 = say 'hi'"]`,
			},
		},
		{
			name:     "No Overlay",
			excludes: []string{"classDef"},
		},
		{
			name:    "Status Overlay",
			overlay: true,
			contains: []string{
				"classDef invalid",
				"class form,form_name invalid;",
				"class form_tags,form_tags_0 pending;",
				"class form_first_tag disabled;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := graph.GenerateMermaid(tree(), tt.overlay)
			assert.True(t, strings.HasPrefix(out, "graph TD\n"))
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}
