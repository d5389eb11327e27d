package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/kieli-lang/kieli/internal/lsp"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

func colorEnabled() bool {
	return !flagNoColor && isatty.IsTerminal(os.Stderr.Fd())
}

func severityLabel(severity lsp.Severity) (label, color string) {
	switch severity {
	case lsp.SeverityError:
		return "error", ansiRed
	case lsp.SeverityWarning:
		return "warning", ansiYellow
	default:
		return "info", ansiCyan
	}
}

func printDiagnostic(path string, diagnostic lsp.Diagnostic) {
	label, color := severityLabel(diagnostic.Severity)
	if colorEnabled() {
		label = color + label + ansiReset
	}
	fmt.Fprintf(os.Stderr, "%s:%d:%d: %s: %s\n",
		path,
		diagnostic.Range.Start.Line+1,
		diagnostic.Range.Start.Character+1,
		label,
		diagnostic.Message)
	for _, related := range diagnostic.Related {
		fmt.Fprintf(os.Stderr, "    %d:%d: %s\n",
			related.Location.Range.Start.Line+1,
			related.Location.Range.Start.Character+1,
			related.Message)
	}
}
