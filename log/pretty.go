package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of colorized output. Styles render plainly when
// the output is not a terminal.
type palette struct {
	key, str, num, yes, no, when, null lipgloss.Style
	trace, debug, info, warn, err      lipgloss.Style
}

func makePalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		yes:   fg("2"),
		no:    fg("1"),
		when:  fg("4"),
		null:  fg("8"),
		trace: fg("5"),
		debug: fg("4"),
		info:  fg("2"),
		warn:  fg("3").Bold(true),
		err:   fg("1").Bold(true),
	}
}

func (p palette) level(level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return p.err
	case level >= slog.LevelWarn:
		return p.warn
	case level >= slog.LevelInfo:
		return p.info
	case level >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// prettyHandler writes colorized records, either as a single line of
// key=value pairs or as an indented JSON-like object.
type prettyHandler struct {
	opts   slog.HandlerOptions
	style  palette
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	prefix string
	format Format
}

func newPrettyHandler(
	w io.Writer,
	format Format,
	opts *slog.HandlerOptions,
) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		style:  makePalette(w),
		mu:     &sync.Mutex{},
		w:      w,
		format: format,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = slices.Concat(h.attrs, h.qualify(attrs))

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

// qualify prefixes the keys of attrs with the open groups and flattens
// group values.
func (h *prettyHandler) qualify(attrs []slog.Attr) []slog.Attr {
	var out []slog.Attr

	var walk func(prefix string, a slog.Attr)

	walk = func(prefix string, a slog.Attr) {
		a.Value = a.Value.Resolve()

		if a.Value.Kind() != slog.KindGroup {
			if a.Key != "" {
				out = append(out, slog.Attr{Key: prefix + a.Key, Value: a.Value})
			}

			return
		}

		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, g := range a.Value.Group() {
			walk(prefix, g)
		}
	}

	for _, a := range attrs {
		walk(h.prefix, a)
	}

	return out
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var fields []slog.Attr

	builtin := func(a slog.Attr) {
		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if a.Key != "" {
			fields = append(fields, a)
		}
	}

	if !r.Time.IsZero() {
		builtin(slog.Time(slog.TimeKey, r.Time))
	}

	builtin(slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			builtin(slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	builtin(slog.String(slog.MessageKey, r.Message))

	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, h.qualify([]slog.Attr{a})...)

		return true
	})

	var b strings.Builder

	if h.format == FormatJSON {
		b.WriteString("{\n")

		for i, a := range fields {
			if i > 0 {
				b.WriteString(",\n")
			}

			fmt.Fprintf(&b, "  %s: %s", h.style.key.Render(a.Key), h.value(a, r.Level))
		}

		b.WriteString("\n}\n")
	} else {
		for i, a := range fields {
			if i > 0 {
				b.WriteByte(' ')
			}

			fmt.Fprintf(&b, "%s=%s", h.style.key.Render(a.Key), h.value(a, r.Level))
		}

		b.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(h.w, b.String())

	return err
}

// value renders the value of a, coloring the level by severity.
func (h *prettyHandler) value(a slog.Attr, level slog.Level) string {
	v := a.Value.Resolve()

	if a.Key == slog.LevelKey {
		return h.style.level(level).Render(v.String())
	}

	switch v.Kind() {
	case slog.KindInt64:
		return h.style.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return h.style.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return h.style.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return h.style.yes.Render("true")
		}

		return h.style.no.Render("false")

	case slog.KindDuration:
		return h.style.when.Render(v.Duration().String())

	case slog.KindTime:
		return h.style.when.Render(v.Time().String())

	case slog.KindAny:
		if v.Any() == nil {
			return h.style.null.Render("null")
		}
	}

	return h.style.str.Render(v.String())
}
