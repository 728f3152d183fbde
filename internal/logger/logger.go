package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/avisgenius/backend-go/internal/config"
)

func New(cfg *config.Config) *slog.Logger {
	logger := newWithWriter(os.Stdout, cfg)
	slog.SetDefault(logger)
	return logger
}

func newWithWriter(w io.Writer, cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	if strings.ToLower(cfg.AppEnv) == "production" {
		// JSON format
		handler = slog.NewJSONHandler(w, opts)
	} else {
		// Human-readable format
		handler = slog.NewTextHandler(w, opts)
	}

	// Every line carries the service identity so aggregated logs stay filterable.
	return slog.New(handler).With(
		slog.String("service", "avisgenius-api"),
		slog.String("env", cfg.AppEnv),
	)
}
