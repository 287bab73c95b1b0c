package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ha1tch/hubview/pkg/hub"
)

// Output colors
var (
	Brand  = color.New(color.FgHiCyan, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
)

var severityColors = map[hub.Severity]*color.Color{
	hub.SeverityMajor:    color.New(color.FgRed, color.Bold),
	hub.SeverityModerate: color.New(color.FgYellow),
	hub.SeverityMinor:    color.New(color.FgHiBlack),
}

func severityText(s hub.Severity) string {
	if c, ok := severityColors[s]; ok {
		return c.Sprint(s.String())
	}
	return Warn.Sprint(s.String())
}

// table prints aligned columns. Widths are measured on the plain cells so
// colored cells are padded by their visible length.
func table(w io.Writer, headers []string, rows [][]string, plain [][]string) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range plain {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	header, sep := "  ", "  "
	for i, h := range headers {
		header += fmt.Sprintf("%-*s  ", widths[i], h)
		sep += strings.Repeat("─", widths[i]) + "  "
	}
	Subtle.Fprintln(w, header)
	Subtle.Fprintln(w, sep)

	for r, row := range rows {
		line := "  "
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			pad := widths[i] - len(plain[r][i])
			line += cell + strings.Repeat(" ", pad) + "  "
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

func statusIcon(ok bool) string {
	if ok {
		return Good.Sprint("✓")
	}
	return Bad.Sprint("✗")
}
