package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
)

// New returns a slog.Logger writing human-readable lines to w through
// zerolog's console writer. level is one of debug, info, warn or error.
func New(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Stamp}
	zl := zerolog.New(output).With().Timestamp().Logger()

	return slog.New(zeroslog.NewHandler(zl, &zeroslog.HandlerOptions{Level: lvl})), nil
}

// ParseLevel maps a config log level onto slog. An empty string is info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", level)
	}
}
