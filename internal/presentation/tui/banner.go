package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the formtree banner and version to w.
func PrintBanner(w io.Writer, version string, profile termenv.Profile) {
	lines := []struct {
		text, color string
	}{
		{"   __                     _                 ", "#34d399"},
		{"  / _|___  _ _ _ __  ___ | |_ _ _ ___ ___  ", "#2dd4bf"},
		{" |  _/ _ \\| '_| '  \\|___||  _| '_/ -_) -_) ", "#22d3ee"},
		{" |_| \\___/|_| |_|_|_|     \\__|_| \\___\\___| ", "#38bdf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, profile.String(l.text).Foreground(profile.Color(l.color)))
	}
	fmt.Fprintln(w, profile.String(" v"+version).Faint())
	fmt.Fprintln(w)
}
