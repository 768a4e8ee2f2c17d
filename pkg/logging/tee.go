package logging

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler writes records to the console handler at the configured level
// and to the log file handler at every level, so the file keeps debug detail
// a quiet console drops.
type teeHandler struct {
	console slog.Handler
	file    slog.Handler
}

func (h teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.console.Enabled(ctx, level) || h.file.Enabled(ctx, level)
}

// Handle writes r to both sides. A failing file write does not stop the
// console one; both errors are returned.
func (h teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var consoleErr, fileErr error
	if h.console.Enabled(ctx, r.Level) {
		consoleErr = h.console.Handle(ctx, r.Clone())
	}
	if h.file.Enabled(ctx, r.Level) {
		fileErr = h.file.Handle(ctx, r)
	}
	return errors.Join(consoleErr, fileErr)
}

func (h teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return teeHandler{console: h.console.WithAttrs(attrs), file: h.file.WithAttrs(attrs)}
}

func (h teeHandler) WithGroup(name string) slog.Handler {
	return teeHandler{console: h.console.WithGroup(name), file: h.file.WithGroup(name)}
}
