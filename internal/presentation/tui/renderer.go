package tui

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/formtree/pkg/form"
	"github.com/aretw0/formtree/pkg/snapshot"
	"github.com/goccy/go-json"
	"github.com/muesli/termenv"
)

// Renderer prints snapshot trees with one line per control.
type Renderer struct {
	w       io.Writer
	profile termenv.Profile
}

// NewRenderer writes to w using the given colour profile. Pass termenv.Ascii
// for plain output.
func NewRenderer(w io.Writer, profile termenv.Profile) *Renderer {
	return &Renderer{w: w, profile: profile}
}

// Tree prints n and its descendants, indented by depth.
func (r *Renderer) Tree(n snapshot.Node) {
	r.node(n, 0)
}

func (r *Renderer) node(n snapshot.Node, depth int) {
	name := n.Key
	if n.Path == "" {
		name = "(root)"
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(r.status(n.Status))
	sb.WriteString(" ")
	sb.WriteString(r.profile.String(name).Bold().String())
	if n.Kind == snapshot.KindField {
		sb.WriteString(" = ")
		sb.WriteString(value(n.Value))
	}
	if flags := flags(n); flags != "" {
		sb.WriteString(" ")
		sb.WriteString(r.profile.String(flags).Faint().String())
	}
	fmt.Fprintln(r.w, sb.String())

	for _, code := range slices.Sorted(maps.Keys(n.Errors)) {
		line := fmt.Sprintf("%s  ✗ %s: %s", strings.Repeat("  ", depth), code, value(n.Errors[code]))
		fmt.Fprintln(r.w, r.profile.String(line).Foreground(r.profile.Color("#ef4444")))
	}
	for _, c := range n.Children {
		r.node(c, depth+1)
	}
}

// Summary prints one line naming the overall status and the invalid paths.
func (r *Renderer) Summary(n snapshot.Node) {
	invalid := n.Invalid()
	if len(invalid) == 0 {
		fmt.Fprintf(r.w, "%s form is %s\n", r.status(n.Status), strings.ToLower(string(n.Status)))
		return
	}
	paths := make([]string, len(invalid))
	for i, in := range invalid {
		paths[i] = in.Path
		if paths[i] == "" {
			paths[i] = "(root)"
		}
	}
	fmt.Fprintf(r.w, "%s form is %s: %s\n", r.status(n.Status), strings.ToLower(string(n.Status)), strings.Join(paths, ", "))
}

func (r *Renderer) status(s form.Status) string {
	var symbol, color string
	switch s {
	case form.Valid:
		symbol, color = "✔", "#22c55e"
	case form.Invalid:
		symbol, color = "✗", "#ef4444"
	case form.Pending:
		symbol, color = "…", "#eab308"
	default:
		symbol, color = "○", "#9ca3af"
	}
	return r.profile.String(symbol).Foreground(r.profile.Color(color)).String()
}

func flags(n snapshot.Node) string {
	var out []string
	if !n.Pristine {
		out = append(out, "dirty")
	}
	if n.Touched {
		out = append(out, "touched")
	}
	if n.Focused {
		out = append(out, "focused")
	}
	if n.Status == form.Disabled {
		out = append(out, "disabled")
	}
	if len(out) == 0 {
		return ""
	}
	return "(" + strings.Join(out, ", ") + ")"
}

func value(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
