// Package logging builds the slog loggers used by provview.
//
// Log records always go to stderr by default: stdout carries command output
// such as `tree --json`, search ids and the MCP stdio transport.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Formats accepted by ParseFormat.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options configures NewWithOptions.
type Options struct {
	Level  slog.Level
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New returns a text logger on stderr at level.
func New(level slog.Level) *slog.Logger {
	return NewWithOptions(Options{Level: level})
}

// NewWithOptions returns a logger writing records in the requested format.
// The "error" attribute is renamed to "err" in both formats.
func NewWithOptions(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{
		Level:       opts.Level,
		ReplaceAttr: renameError,
	}
	if opts.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(out, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(out, handlerOpts))
}

func renameError(groups []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}

// ParseFormat accepts "text" or "json"; empty means text.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown log format %q", s)
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
