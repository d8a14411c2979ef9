package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dusted-go/logging/prettylog"
)

// SimpleHandler is a minimal slog.Handler writing "key: value" pairs
// tab-separated on a single line per record, used for --progress=progress
// where structured output has to share a line with LogAggregator's
// per-stage buffering. groupPrefix/preAttrs accumulate WithGroup/
// WithAttrs state across a handler chain (e.g. slog.With("stage", name)),
// since each call must return a new handler value rather than mutate
// the original.
type SimpleHandler struct {
	opts        Options
	mu          *sync.Mutex
	out         io.Writer
	groupPrefix string
	preAttrs    []slog.Attr
}

type Options struct {
	Level slog.Leveler
}

func NewRootLog(logOpts slog.HandlerOptions) slog.Handler {
	return slog.NewTextHandler(os.Stdout, &logOpts)
}

func New(progress string, logOpts slog.HandlerOptions) slog.Handler {
	if progress == "progress" {
		return NewSimpleLog(NewLogAggregator(progress), logOpts.Level)
	}
	return NewPrettyLog(progress, logOpts)
}

func NewSimpleLog(out io.Writer, level slog.Leveler) slog.Handler {
	h := &SimpleHandler{out: out, mu: &sync.Mutex{}}
	h.opts.Level = level
	return h
}

func NewPrettyLog(progress string, logOpts slog.HandlerOptions) slog.Handler {
	h := prettylog.New(&logOpts, prettylog.WithDestinationWriter(NewLogAggregator(progress)))
	return h
}

func (h *SimpleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// WithGroup returns a handler that nests every subsequent attr's key
// under name, dot-joined with any group already open.
func (h *SimpleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groupPrefix = joinKey(h.groupPrefix, name)
	return &next
}

// WithAttrs returns a handler that prepends attrs (already qualified by
// the currently open group) to every record it handles.
func (h *SimpleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.preAttrs = append([]slog.Attr{}, h.preAttrs...)
	for _, a := range attrs {
		a.Key = joinKey(h.groupPrefix, a.Key)
		next.preAttrs = append(next.preAttrs, a)
	}
	return &next
}

func (h *SimpleHandler) Handle(ctx context.Context, r slog.Record) error {
	buf := make([]byte, 0, 1024)
	buf = fmt.Appendf(buf, "%s ", r.Message)
	for _, a := range h.preAttrs {
		buf = h.appendAttr(buf, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, h.groupPrefix, a)
		return true
	})
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf)
	return err
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	if key == "" {
		return prefix
	}
	return prefix + "." + key
}

func (h *SimpleHandler) appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}
	key := joinKey(prefix, a.Key)
	switch a.Value.Kind() {
	case slog.KindString:
		// Quote string values, to make them easy to parse.
		buf = fmt.Appendf(buf, "%s: %q\t", key, a.Value.String())
	case slog.KindTime:
		// Write times in a standard way, without the monotonic time.
		buf = fmt.Appendf(buf, "%s: %s\t", key, a.Value.Time().Format(time.RFC3339Nano))
	case slog.KindGroup:
		attrs := a.Value.Group()
		if len(attrs) == 0 {
			return buf
		}
		groupPrefix := joinKey(prefix, a.Key)
		for _, ga := range attrs {
			buf = h.appendAttr(buf, groupPrefix, ga)
		}
	default:
		buf = fmt.Appendf(buf, "%s:%s\t", key, a.Value)
	}
	return buf
}
