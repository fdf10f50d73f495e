// Package cli wires the astrowheel commands together.
//
// Every command reads a chart document (JSON or TOML), hands it to a shared
// pipeline.Runner and presents the result: a table or JSON on stdout (layout),
// artifact files (render), a terminal browser (inspect) or an HTTP API (serve).
// Settings come from viper, layered as flags over ASTROWHEEL_* variables over
// .astrowheel.yaml.
//
// Diagnostics go to stderr through a single charmbracelet logger that rides in
// the command context; --verbose lowers it to debug and attaches the pipeline,
// cache and server hooks.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

const logTimeFormat = "15:04:05.00"

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
	})
}

// stopwatch logs one info line with a took=<duration> field when a step ends.
type stopwatch struct {
	logger *log.Logger
	begin  time.Time
}

func startStopwatch(l *log.Logger) stopwatch {
	return stopwatch{logger: l, begin: time.Now()}
}

func (s stopwatch) stop(msg string, keyvals ...any) {
	keyvals = append(keyvals, "took", time.Since(s.begin).Round(time.Millisecond))
	s.logger.Info(msg, keyvals...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the command logger, or log.Default() outside a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	l, ok := ctx.Value(loggerKey{}).(*log.Logger)
	if !ok {
		return log.Default()
	}
	return l
}
