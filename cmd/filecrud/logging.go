package main

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/Yashchauhan008/file-crud/config"
)

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// parseLevel falls back to info for unknown names; config validation has
// already rejected them by the time the server starts.
func parseLevel(s string) slog.Level {
	if l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l
	}
	return slog.LevelInfo
}

// newLogHandler emits JSON with a UTC "ts" key in production and colored
// tint output with source locations otherwise.
func newLogHandler(w io.Writer, production bool, level slog.Leveler, color bool) slog.Handler {
	if production {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if len(groups) > 0 || a.Key != slog.TimeKey {
					return a
				}
				return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339Nano))
			},
		})
	}

	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		AddSource:  true,
		TimeFormat: "15:04:05.000",
		NoColor:    !color,
	})
}

// setupLogging installs the default slog logger and routes the standard
// library logger (used by net/http) through it.
func setupLogging(cfg *config.Config) {
	color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	logger := slog.New(newLogHandler(os.Stdout, cfg.Env().IsProduction(), parseLevel(cfg.Log.Level), color))
	slog.SetDefault(logger)

	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(logger.Handler(), slog.LevelInfo).Writer())
}
