package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/formtree/internal/presentation/graph"
	"github.com/aretw0/formtree/internal/presentation/tui"
	"github.com/aretw0/formtree/pkg/form"
	"github.com/aretw0/formtree/pkg/snapshot"
)

var (
	// ErrInvalid is returned by RunCheck when the form settles invalid.
	ErrInvalid = errors.New("form is invalid")
	// ErrUnknownOutput is returned for an unsupported Options.Output.
	ErrUnknownOutput = errors.New("unknown output format")
)

// RunCheck builds the form, waits for async validation and prints the result
// to w. It returns ErrInvalid when the settled form is invalid.
func RunCheck(ctx context.Context, opts Options, w io.Writer) error {
	if err := checkOutput(opts.Output); err != nil {
		return err
	}

	s, err := createSession(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(ctx, opts.timeout())
	defer cancel()

	status, err := form.Settle(ctx, s.Root)
	if err != nil {
		return fmt.Errorf("validation did not settle: %w", err)
	}
	s.Logger.Info("form settled", "status", status)

	if err := render(w, snapshot.Take(s.Root), opts); err != nil {
		return err
	}
	if status == form.Invalid {
		return ErrInvalid
	}
	return nil
}

func checkOutput(output string) error {
	switch output {
	case "", "text", "json", "yaml", "mermaid":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutput, output)
	}
}

func render(w io.Writer, snap snapshot.Node, opts Options) error {
	switch opts.Output {
	case "json":
		return snap.Encode(w, snapshot.FormatJSON)
	case "yaml":
		return snap.Encode(w, snapshot.FormatYAML)
	case "mermaid":
		_, err := io.WriteString(w, graph.GenerateMermaid(snap, true))
		return err
	default:
		r := tui.NewRenderer(w, ColorProfile(w, opts.NoColor))
		r.Tree(snap)
		fmt.Fprintln(w)
		r.Summary(snap)
		return nil
	}
}
