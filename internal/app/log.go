package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// queryHandler is a slog.Handler that formats log records as:
//
//	<timestamp>\t<level>\t<opID>\t<message>\t<key=value ...>
//
// Records below the handler's minimum level are dropped. Attrs set at
// construction carry the invocation's query context (country, time field)
// on every line, ahead of per-record attrs.
type queryHandler struct {
	w     io.Writer
	opID  string
	min   slog.Level
	attrs []slog.Attr
}

func (h *queryHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= h.min }

func (h *queryHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time.UTC().Format("2006-01-02T15:04:05Z")
	level := r.Level.String()

	_, err := fmt.Fprintf(h.w, "%s\t%s\t%s\t%s", ts, level, h.opID, r.Message)
	if err != nil {
		return err
	}

	// Write pre-set attrs.
	for _, a := range h.attrs {
		fmt.Fprintf(h.w, "\t%s=%v", a.Key, a.Value)
	}

	// Write per-record attrs.
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(h.w, "\t%s=%v", a.Key, a.Value)
		return true
	})

	_, err = fmt.Fprintln(h.w)
	return err
}

func (h *queryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &queryHandler{
		w:     h.w,
		opID:  h.opID,
		min:   h.min,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *queryHandler) WithGroup(string) slog.Handler { return h }

// parseLevel maps a configured level name onto slog's levels.
// Unknown names fall back to info.
func parseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger creates a structured logger that writes to both
// logDir/shakefetch.log and stderr, gated at the configured level. baseAttrs
// give every line its query context alongside the operation ID. It returns
// the slog.Logger, the open log file (for cleanup), and any error.
func newLogger(logDir, opID, level string, baseAttrs ...slog.Attr) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "shakefetch.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	w := io.MultiWriter(f, os.Stderr)
	handler := &queryHandler{w: w, opID: opID, min: parseLevel(level), attrs: baseAttrs}
	return slog.New(handler), f, nil
}

// slogAdapter wraps *slog.Logger to satisfy the eew.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }
