// Package logging configures the hclog loggers used across tabtint.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Options controls logger construction.
type Options struct {
	Name    string
	Verbose bool
	Quiet   bool
	// Output defaults to os.Stderr.
	Output io.Writer
	JSON   bool
}

// New creates the root logger. Verbose enables debug output, Quiet
// silences everything; Quiet wins when both are set.
func New(opts Options) hclog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := hclog.Info
	switch {
	case opts.Quiet:
		level = hclog.Off
		out = io.Discard
	case opts.Verbose:
		level = hclog.Debug
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       opts.Name,
		Output:     out,
		Level:      level,
		JSONFormat: opts.JSON,
	})
}

// Discard returns a logger that drops everything.
func Discard() hclog.Logger {
	return hclog.NewNullLogger()
}
