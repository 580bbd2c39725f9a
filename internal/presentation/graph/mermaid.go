package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/formtree/pkg/form"
	"github.com/aretw0/formtree/pkg/snapshot"
)

// rootID names the root node, whose path is empty.
const rootID = "form"

// GenerateMermaid produces a Mermaid flowchart of a snapshot tree.
// It applies semantic styling:
// - Group: [[Subroutine]]
// - Array: [/Parallelogram/]
// - Field: [Rectangle]
// With overlay set, nodes are also classed by status.
func GenerateMermaid(root snapshot.Node, overlay bool) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	byStatus := make(map[form.Status][]string)
	root.Walk(func(n snapshot.Node) {
		id := nodeID(n.Path)

		opener, closer := "[", "]"
		switch n.Kind {
		case snapshot.KindGroup:
			opener, closer = "[[", "]]"
		case snapshot.KindArray:
			opener, closer = "[/", "/]"
		}

		label := n.Key
		if n.Path == "" {
			label = rootID
		}
		if n.Kind == snapshot.KindField {
			label = fmt.Sprintf("%s = %s", label, quote(n.Value))
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, label, closer)

		for _, child := range n.Children {
			fmt.Fprintf(&sb, "    %s --> %s\n", id, nodeID(child.Path))
		}
		byStatus[n.Status] = append(byStatus[n.Status], id)
	})

	if overlay {
		sb.WriteString("\n    %% Status Styles\n")
		// Force black text for contrast regardless of theme.
		sb.WriteString("    classDef invalid fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef pending fill:#fff8e1,stroke:#f9a825,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef disabled fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4,color:#000;\n")
		for _, st := range []form.Status{form.Invalid, form.Pending, form.Disabled} {
			if ids := byStatus[st]; len(ids) > 0 {
				fmt.Fprintf(&sb, "    class %s %s;\n", strings.Join(ids, ","), strings.ToLower(string(st)))
			}
		}
	}

	return sb.String()
}

func nodeID(path string) string {
	if path == "" {
		return rootID
	}
	return rootID + "_" + sanitizeMermaidID(path)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

func quote(v any) string {
	s := fmt.Sprint(v)
	if v == nil {
		s = "∅"
	}
	if r := []rune(s); len(r) > 24 {
		s = string(r[:21]) + "..."
	}
	return strings.ReplaceAll(s, "\"", "'")
}
