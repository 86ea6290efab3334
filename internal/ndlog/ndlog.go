// Package ndlog builds the process-wide slog.Logger: JSON to stderr,
// optionally tee'd to a rotating file, at a level selected by -v/-vv.
package ndlog

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the default logger. LogFile is empty when no
// rotating file sink was requested.
type Options struct {
	Verbosity int // 0 = warn, 1 = info, 2+ = debug
	LogFile   string
}

func level(verbosity int) slog.Level {
	switch {
	case verbosity >= 2:
		return slog.LevelDebug
	case verbosity == 1:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

// Setup builds a slog.Logger from opts and installs it as the process
// default, returning it (and the rotating file writer, if any, so the
// caller can flush/close it on shutdown).
func Setup(opts Options) (*slog.Logger, *lumberjack.Logger) {
	var w io.Writer = os.Stderr
	var rotator *lumberjack.Logger

	if opts.LogFile != "" {
		rotator = &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		w = io.MultiWriter(os.Stderr, rotator)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level(opts.Verbosity)})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger, rotator
}
