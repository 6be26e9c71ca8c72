// Package log provides structured logging (slog) adapted for the canister
// environment. Records are rendered guest-side and written through the
// debug_print system call.
package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"

	"github.com/reglet-dev/canister-sdk/go/domain/ports"
	"github.com/reglet-dev/canister-sdk/go/internal/wasmcontext"
)

// Format selects how records are rendered.
type Format string

const (
	// FormatText renders key=value pairs.
	FormatText Format = "text"
	// FormatJSON renders one LogMessageWire object per record.
	FormatJSON Format = "json"
)

// WasmLogHandler implements slog.Handler on top of debug_print.
type WasmLogHandler struct {
	sink   ports.DebugAPI
	attrs  []LogAttrWire
	groups []string
	opts   handlerConfig
}

// HandlerOption configures the WasmLogHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	sink      ports.DebugAPI
	format    Format
	level     slog.Level
	addSource bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level:  slog.LevelInfo,
		format: FormatText,
	}
}

// WithLevel sets the minimum log level to report.
// Records below this level will be filtered on the guest side.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithFormat selects text or JSON rendering.
func WithFormat(f Format) HandlerOption {
	return func(c *handlerConfig) {
		c.format = f
	}
}

// WithSink routes rendered records to sink instead of the default output.
func WithSink(sink ports.DebugAPI) HandlerOption {
	return func(c *handlerConfig) {
		c.sink = sink
	}
}

// NewHandler creates a new WasmLogHandler with the given options.
func NewHandler(opts ...HandlerOption) *WasmLogHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	sink := cfg.sink
	if sink == nil {
		sink = defaultSink()
	}
	return &WasmLogHandler{opts: cfg, sink: sink}
}

// Enabled reports whether the handler handles records at the given level.
func (h *WasmLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level
}

func (h *WasmLogHandler) clone() *WasmLogHandler {
	c := *h
	c.attrs = append([]LogAttrWire(nil), h.attrs...)
	c.groups = append([]string(nil), h.groups...)
	return &c
}

func (h *WasmLogHandler) prefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

// WithAttrs returns a new WasmLogHandler that includes the given attributes.
func (h *WasmLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := h.clone()
	for _, a := range attrs {
		c.attrs = appendAttr(c.attrs, h.prefix(), a)
	}
	return c
}

// WithGroup returns a new WasmLogHandler with the given group name.
func (h *WasmLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.groups = append(c.groups, name)
	return c
}

// Handle renders record and writes it to the sink.
func (h *WasmLogHandler) Handle(ctx context.Context, record slog.Record) error {
	logMsg := LogMessageWire{
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
		Attrs:     append([]LogAttrWire(nil), h.attrs...),
	}
	if s, ok := wasmcontext.ScopeFrom(ctx); ok {
		logMsg.Execution = &ExecutionWire{ID: s.ID, Kind: s.Kind.String()}
	}
	if h.opts.addSource && record.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{record.PC})
		f, _ := frames.Next()
		logMsg.Source = f.File + ":" + strconv.Itoa(f.Line)
	}

	prefix := h.prefix()
	record.Attrs(func(attr slog.Attr) bool {
		logMsg.Attrs = appendAttr(logMsg.Attrs, prefix, attr)
		return true // Continue iterating
	})

	var out []byte
	switch h.opts.format {
	case FormatJSON:
		data, err := json.Marshal(logMsg)
		if err != nil {
			return fmt.Errorf("marshal log record: %w", err)
		}
		out = data
	default:
		out = renderText(logMsg)
	}
	h.sink.DebugPrint(out)
	return nil
}

func renderText(m LogMessageWire) []byte {
	var b bytes.Buffer
	b.WriteString("level=")
	b.WriteString(m.Level)
	b.WriteString(" msg=")
	b.WriteString(quoteIfNeeded(m.Message))
	if m.Execution != nil {
		fmt.Fprintf(&b, " exec=%d kind=%s", m.Execution.ID, m.Execution.Kind)
	}
	if m.Source != "" {
		b.WriteString(" source=")
		b.WriteString(m.Source)
	}
	for _, a := range m.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteByte('=')
		b.WriteString(quoteIfNeeded(a.Value))
	}
	return b.Bytes()
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
