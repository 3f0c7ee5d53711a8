package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the graphnav banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"                       _                        ", "#818cf8"},
		{"   __ _ _ __ __ _ _ __ | |__  _ __   __ ___   __", "#a78bfa"},
		{"  / _` | '__/ _` | '_ \\| '_ \\| '_ \\ / _` \\ \\ / /", "#c084fc"},
		{" | (_| | | | (_| | |_) | | | | | | | (_| |\\ V / ", "#e879f9"},
		{"  \\__, |_|  \\__,_| .__/|_| |_|_| |_|\\__,_| \\_/  ", "#f472b6"},
		{"  |___/          |_|                            ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
