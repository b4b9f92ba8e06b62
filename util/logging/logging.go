// Package logging builds the service's *slog.Logger on top of zerolog.
//
// Controllers, services and workers take a *slog.Logger; the records are
// written by zerolog so output stays a single JSON stream (or console output
// in development).
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	Output io.Writer
}

// New returns a slog.Logger writing through zerolog.
func New(cfg Config) *slog.Logger {
	return slog.New(NewHandler(Zerolog(cfg)))
}

// Zerolog builds the underlying zerolog logger.
func Zerolog(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(out).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Handler implements slog.Handler with zerolog as the backend.
type Handler struct {
	logger zerolog.Logger
	attrs  []slog.Attr
	groups []string
}

func NewHandler(l zerolog.Logger) *Handler { return &Handler{logger: l} }

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.GetLevel() <= toZerolog(level)
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	ev := h.logger.WithLevel(toZerolog(r.Level))
	for _, a := range h.attrs {
		ev = addAttr(ev, a, nil)
	}
	r.Attrs(func(a slog.Attr) bool {
		ev = addAttr(ev, a, h.groups)
		return true
	})
	ev.Msg(r.Message)
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	// attrs are qualified with the groups open at this point, not later ones
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, a := range attrs {
		if len(h.groups) > 0 {
			a.Key = strings.Join(h.groups, ".") + "." + a.Key
		}
		merged = append(merged, a)
	}
	return &Handler{logger: h.logger, attrs: merged, groups: h.groups}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	groups = append(groups, name)
	return &Handler{logger: h.logger, attrs: h.attrs, groups: groups}
}

func addAttr(ev *zerolog.Event, a slog.Attr, groups []string) *zerolog.Event {
	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return ev.Str(key, v.String())
	case slog.KindInt64:
		return ev.Int64(key, v.Int64())
	case slog.KindUint64:
		return ev.Uint64(key, v.Uint64())
	case slog.KindFloat64:
		return ev.Float64(key, v.Float64())
	case slog.KindBool:
		return ev.Bool(key, v.Bool())
	case slog.KindDuration:
		return ev.Dur(key, v.Duration())
	case slog.KindTime:
		return ev.Time(key, v.Time())
	case slog.KindGroup:
		for _, ga := range v.Group() {
			ev = addAttr(ev, ga, append(groups, a.Key))
		}
		return ev
	default:
		if err, ok := v.Any().(error); ok {
			return ev.AnErr(key, err)
		}
		return ev.Interface(key, v.Any())
	}
}

func toZerolog(level slog.Level) zerolog.Level {
	switch {
	case level < slog.LevelInfo:
		return zerolog.DebugLevel
	case level < slog.LevelWarn:
		return zerolog.InfoLevel
	case level < slog.LevelError:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
