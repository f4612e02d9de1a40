package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs a JSON slog logger on stdout and returns its handler so
// callers can fan it out later.
func Setup(appEnv string) slog.Handler {
	return SetupWriter(os.Stdout, appEnv)
}

func SetupWriter(w io.Writer, appEnv string) slog.Handler {
	level := slog.LevelInfo
	if appEnv == "development" {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return handler
}
