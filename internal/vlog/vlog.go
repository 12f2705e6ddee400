// Package vlog is the structured-logging ambient stack for the CLI.
// Parse/Serialize and the streaming driver stay silent and return
// errors; only the CLI logs.
//
// Grounded on matzehuels-stacktower's internal/cli logger setup
// (cli.go, log.go): a charmbracelet/log logger with timestamp
// formatting, attached to a context.Context so commands deep in a
// call tree can log without threading a *Logger parameter through
// every function signature.
package vlog

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a logger writing to w at level, with the same
// "HH:MM:SS.hh" (hundredths of a second) timestamp format the teacher's
// CLI uses.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

type ctxKey int

const loggerKey ctxKey = 0

// WithContext attaches l to ctx.
func WithContext(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext retrieves the logger attached to ctx, or log.Default()
// if none was attached.
func FromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// Progress tracks an operation's start time and logs its completion
// with elapsed duration rounded to the millisecond, e.g. "parsed value
// graph (12ms)".
type Progress struct {
	logger *log.Logger
	start  time.Time
}

// NewProgress starts a progress tracker against l.
func NewProgress(l *log.Logger) *Progress {
	return &Progress{logger: l, start: time.Now()}
}

// Done logs msg with the elapsed time since the tracker started.
func (p *Progress) Done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
