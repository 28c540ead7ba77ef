package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the nodecalc ASCII banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"                 _                _      ", "#34d399"},
		{"  _ __   ___   __| | ___  ___ __ _| | ___ ", "#2dd4bf"},
		{" | '_ \\ / _ \\ / _` |/ _ \\/ __/ _` | |/ __|", "#22d3ee"},
		{" | | | | (_) | (_| |  __/ (_| (_| | | (__ ", "#38bdf8"},
		{" |_| |_|\\___/ \\__,_|\\___|\\___\\__,_|_|\\___|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
