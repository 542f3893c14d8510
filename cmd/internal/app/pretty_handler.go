package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// prettyHandler writes one key=value line per record for local development.
// Request-log fields get short keys and optional ANSI color.
type prettyHandler struct {
	w     io.Writer
	mu    *sync.Mutex
	opts  slog.HandlerOptions
	color bool

	prefix    string // dotted group path, with trailing "."
	preformed []byte // attrs from WithAttrs, already rendered
}

// fieldStyle renders a known request-log field and the key it is printed under.
type fieldStyle struct {
	key    string
	render func(v slog.Value, color bool) string
}

var fieldStyles = map[string]fieldStyle{
	"method": {"method", func(v slog.Value, color bool) string {
		return colorizeHTTPMethod(strings.ToUpper(strings.TrimSpace(v.String())), color)
	}},
	"path":  {"path", renderRoute},
	"route": {"route", renderRoute},
	"status": {"status", func(v slog.Value, color bool) string {
		if n, ok := valueToInt64(v); ok {
			return colorizeStatusCode(int(n), color)
		}
		return formatValue(v)
	}},
	"status_class": {"class", func(v slog.Value, color bool) string {
		return colorizeStatusClass(strings.TrimSpace(v.String()), color)
	}},
	"duration_ms": {"duration", func(v slog.Value, color bool) string {
		if n, ok := valueToInt64(v); ok {
			return colorizeDurationMS(n, color)
		}
		return formatValue(v)
	}},
	"result": {"result", func(v slog.Value, color bool) string {
		return colorizeResult(strings.ToLower(strings.TrimSpace(v.String())), color)
	}},
}

func renderRoute(v slog.Value, color bool) string {
	return paint(quoteIfNeeded(strings.TrimSpace(v.String())), ansiCyan, color)
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions, color bool) slog.Handler {
	h := &prettyHandler{w: w, mu: &sync.Mutex{}, color: color}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.opts.Level == nil {
		return level >= slog.LevelInfo
	}
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	buf := make([]byte, 0, 256)
	buf = append(buf, "ts="...)
	buf = append(buf, paint(ts.Format("15:04:05.000"), ansiDim, h.color)...)
	buf = append(buf, " lvl="...)
	buf = append(buf, levelTag(r.Level, h.color)...)
	buf = append(buf, " msg="...)
	buf = append(buf, paint(r.Message, ansiBright, h.color)...)

	if h.opts.AddSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		if frame.File != "" {
			src := filepath.Base(frame.File) + ":" + strconv.Itoa(frame.Line)
			buf = append(buf, " src="...)
			buf = append(buf, paint(src, ansiDim, h.color)...)
		}
	}

	buf = append(buf, h.preformed...)
	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, h.prefix, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.preformed = append([]byte(nil), h.preformed...)
	for _, a := range attrs {
		cp.preformed = cp.appendAttr(cp.preformed, h.prefix, a)
	}
	return &cp
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	name = strings.TrimSpace(name)
	if name == "" {
		return h
	}
	cp := *h
	cp.prefix = h.prefix + name + "."
	return &cp
}

func (h *prettyHandler) appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	key := strings.TrimSpace(a.Key)

	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if key != "" {
			inner = prefix + key + "."
		}
		for _, ga := range a.Value.Group() {
			buf = h.appendAttr(buf, inner, ga)
		}
		return buf
	}
	if key == "" {
		return buf
	}

	full := prefix + key
	val := ""
	if style, ok := fieldStyles[full]; ok {
		full = style.key
		val = style.render(a.Value, h.color)
	} else {
		val = quoteIfNeeded(formatValue(a.Value))
	}

	buf = append(buf, ' ')
	buf = append(buf, full...)
	buf = append(buf, '=')
	return append(buf, val...)
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		// String, numbers, bools and durations format the same way slog's text handler does.
		return v.String()
	}
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, " \t\r\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

var levelColors = map[string]string{
	"ERROR": ansiRed,
	"WARN":  ansiYellow,
	"INFO":  ansiBlue,
	"DEBUG": ansiMagenta,
}

func levelTag(level slog.Level, color bool) string {
	name := "INFO"
	switch {
	case level >= slog.LevelError:
		name = "ERROR"
	case level >= slog.LevelWarn:
		name = "WARN"
	case level < slog.LevelInfo:
		name = "DEBUG"
	}
	return paint("["+name+"]", levelColors[name], color)
}
