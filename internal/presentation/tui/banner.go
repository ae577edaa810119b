package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the provview banner with the given version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  _ __  _ __ _____   ____   _(_) _____      __", "#34d399"},
		{" | '_ \\| '__/ _ \\ \\ / /\\ \\ / / |/ _ \\ \\ /\\ / /", "#2dd4bf"},
		{" | |_) | | | (_) \\ V /  \\ V /| |  __/\\ V  V / ", "#22d3ee"},
		{" | .__/|_|  \\___/ \\_/    \\_/ |_|\\___| \\_/\\_/  ", "#38bdf8"},
		{" |_|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, termenv.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
