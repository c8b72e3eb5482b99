// Package ui decides how command output is rendered: rich terminal styling,
// plain text, or JSON for scripting.
package ui

import (
	"os"
	"strings"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format is the output format of a command
type Format int

const (
	// FormatAuto picks term or text based on the output's capabilities
	FormatAuto Format = iota
	// FormatTerminal renders styled terminal output
	FormatTerminal
	// FormatText renders plain text
	FormatText
	// FormatJSON renders machine-readable JSON
	FormatJSON
)

// String returns the format's flag value
func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatTerminal:
		return "term"
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseFormat parses a --format flag value
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return FormatAuto, nil
	case "term", "terminal":
		return FormatTerminal, nil
	case "text", "plain":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatAuto, errors.Newf(errors.ErrInvalidInput, "unknown format: %q", s)
}

// Resolve turns FormatAuto into a concrete format for the given output;
// explicit formats pass through untouched.
func (f Format) Resolve(output *os.File) Format {
	if f != FormatAuto {
		return f
	}
	return detect(output)
}

// detect inspects the environment and the output's terminal capabilities.
// NO_COLOR, pipes and dumb terminals all downgrade to plain text.
func detect(output *os.File) Format {
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}
	if !isatty.IsTerminal(output.Fd()) && !isatty.IsCygwinTerminal(output.Fd()) {
		return FormatText
	}
	if termenv.ColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}
