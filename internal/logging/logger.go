package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup initializes the global slog logger with JSON output to stdout.
// Development builds also emit debug records.
func Setup(appEnv string) {
	slog.SetDefault(slog.New(NewStdoutHandler(os.Stdout, appEnv)))
}

// NewStdoutHandler returns the JSON handler used for console output.
func NewStdoutHandler(w io.Writer, appEnv string) slog.Handler {
	level := slog.LevelInfo
	if appEnv == "development" {
		level = slog.LevelDebug
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// AttachSink routes records to stdout and to sink, and makes that the
// default logger.
func AttachSink(w io.Writer, appEnv string, sink slog.Handler) {
	slog.SetDefault(slog.New(NewMultiHandler(NewStdoutHandler(w, appEnv), sink)))
}
