package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	debugColor     = color.New(color.FgHiBlack)
	infoColor      = color.New(color.FgWhite)
	warnColor      = color.New(color.FgHiYellow)
	errorColor     = color.New(color.FgHiRed)
	componentColor = color.New(color.FgHiMagenta)

	mu sync.Mutex
)

func init() {
	Init(os.Stdout, "info")
}

// Init replaces the default slog logger with a colored handler writing to w.
func Init(w io.Writer, level string) {
	mu.Lock()
	defer mu.Unlock()

	slog.SetDefault(slog.New(NewHandler(w, ParseLevel(level))))
}

// ParseLevel maps the LOG_LEVEL names to slog levels. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Debugf(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...))
}

func Infof(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...any) {
	slog.Warn(fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...any) {
	slog.Error(fmt.Sprintf(format, v...))
}

// Component returns a logger whose lines are tagged with name.
func Component(name string) *slog.Logger {
	return slog.Default().With(slog.String("component", name))
}

type Handler struct {
	w     io.Writer
	level slog.Leveler
	attrs []slog.Attr
	mu    *sync.Mutex
}

func NewHandler(w io.Writer, level slog.Leveler) *Handler {
	return &Handler{
		w:     w,
		level: level,
		mu:    &sync.Mutex{},
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var (
		levelStr   string
		levelColor *color.Color
	)
	switch {
	case r.Level >= slog.LevelError:
		levelStr, levelColor = "ERROR", errorColor
	case r.Level >= slog.LevelWarn:
		levelStr, levelColor = "WARN", warnColor
	case r.Level >= slog.LevelInfo:
		levelStr, levelColor = "INFO", infoColor
	default:
		levelStr, levelColor = "DEBUG", debugColor
	}

	component := ""
	extra := make([]string, 0, r.NumAttrs()+len(h.attrs))
	collect := func(a slog.Attr) bool {
		if a.Key == "component" {
			component = strings.ToUpper(a.Value.String())
			return true
		}
		extra = append(extra, fmt.Sprintf("%s=%v", a.Key, a.Value.Any()))
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	var b strings.Builder
	b.WriteString(time.Now().Format("15:04:05"))
	b.WriteByte(' ')
	b.WriteString(levelColor.Sprintf("[%s]", levelStr))
	if component != "" {
		b.WriteByte(' ')
		b.WriteString(componentColor.Sprintf("[%s]", component))
	}
	b.WriteByte(' ')
	b.WriteString(r.Message)
	if len(extra) > 0 {
		b.WriteByte(' ')
		b.WriteString(strings.Join(extra, " "))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &Handler{w: h.w, level: h.level, attrs: merged, mu: h.mu}
}

func (h *Handler) WithGroup(string) slog.Handler { return h }
