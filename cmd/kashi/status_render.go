package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"kashi/internal/preflight"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

const (
	statusLabelWidth = 18
	statusIndent     = "  "
)

// renderCheckLine formats one preflight result as "  Label:  [OK] detail".
func renderCheckLine(r preflight.Result, colorize bool) string {
	label, color := "ERROR", ansiRed
	if r.Passed {
		label, color = "OK", ansiGreen
	}
	status := fmt.Sprintf("[%s]", label)
	if r.Detail != "" {
		status += " " + r.Detail
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, r.Name+":", status)
	if colorize {
		return color + line + ansiReset
	}
	return line
}

func checkLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results)+1)
	for _, r := range results {
		lines = append(lines, renderCheckLine(r, colorize))
	}
	failed := len(preflight.Failed(results))
	summary := preflight.Result{Name: "Summary", Passed: failed == 0, Detail: "all checks passed"}
	if failed > 0 {
		summary.Detail = fmt.Sprintf("%d of %d checks failed", failed, len(results))
	}
	return append(lines, renderCheckLine(summary, colorize))
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
