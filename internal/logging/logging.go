// Package logging installs the process-wide slog handler. Development gets
// human-readable text on stdout, production gets JSON. When a log file is
// configured, records are also written as JSON to a size-rotated file.
package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls Setup.
type Options struct {
	Env   string // "development" selects the text handler
	File  string // optional path of the rotated JSON log
	Level slog.Level
}

// Setup builds the handler described by opts, installs it as the slog
// default and returns a closer for the log file (a no-op when File is empty).
func Setup(opts Options) io.Closer {
	handler, closer := newHandler(os.Stdout, opts)
	slog.SetDefault(slog.New(handler))
	return closer
}

func newHandler(stdout io.Writer, opts Options) (slog.Handler, io.Closer) {
	hopts := &slog.HandlerOptions{Level: opts.Level}

	var console slog.Handler
	if opts.Env == "development" {
		console = slog.NewTextHandler(stdout, hopts)
	} else {
		console = slog.NewJSONHandler(stdout, hopts)
	}

	if opts.File == "" {
		return console, nopCloser{}
	}

	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    50, // MB
		MaxBackups: 7,
		MaxAge:     14, // days
		Compress:   true,
	}
	return NewMultiHandler(console, slog.NewJSONHandler(file, hopts)), file
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
