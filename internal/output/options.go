// Package output renders a lint report for people (colored text) and for
// tools (JSON).
package output

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Format selects the report renderer.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat parses "text" or "json".
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (valid: text, json)", s)
}

// TextOpts configures Text.
type TextOpts struct {
	Color bool
	// Quiet suppresses the summary when the report is clean.
	Quiet bool
}

// UseColor resolves a color mode (auto, always, never) for f. Auto enables
// color only on a terminal with NO_COLOR unset.
func UseColor(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return IsTerminal(f)
}

// IsTerminal reports whether f is a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
