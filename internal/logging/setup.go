package logging

import (
	"fmt"
	"io"
	"os"
)

// Options selects where and how the root logger writes.
type Options struct {
	Level string // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	Style string // "pretty" | "json"
	File  string // optional; appended to in JSON form alongside the console
}

// Open builds the root logger described by opts. The returned closer releases
// the log file, if any, and is never nil.
func Open(opts Options) (*Logger, io.Closer, error) {
	var console io.Writer = os.Stderr
	if opts.Style != "json" {
		console = ConsoleWriter(os.Stderr)
	}

	if opts.File == "" {
		return New(console, opts.Level), nopCloser{}, nil
	}

	f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", opts.File, err)
	}
	return New(io.MultiWriter(console, f), opts.Level), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
