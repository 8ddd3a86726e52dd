package observability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// TimeLayout is the timestamp layout of every log record
const TimeLayout = "2006-01-02 15:04:05,000"

// LogOptions configures a log sink
type LogOptions struct {
	Writer io.Writer // defaults to os.Stderr
	Level  string    // debug, info, warn, error; defaults to info
}

// ParseLevel maps a level name to a slog.Level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether level is a known level name
func ValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// LogSetup is a log sink that can be configured exactly once. Loggers handed
// out before Configure write nowhere and start writing once it runs.
type LogSetup struct {
	once sync.Once
	out  *output
}

// NewLogSetup creates an unconfigured log sink
func NewLogSetup() *LogSetup {
	out := &output{w: io.Discard}
	out.level.Set(slog.LevelInfo)
	return &LogSetup{out: out}
}

// Configure sets the writer and level of the sink. Only the first call has an
// effect; it reports whether this call was the one that configured the sink.
func (s *LogSetup) Configure(opts LogOptions) bool {
	configured := false
	s.once.Do(func() {
		w := opts.Writer
		if w == nil {
			w = os.Stderr
		}
		s.out.mu.Lock()
		s.out.w = w
		s.out.mu.Unlock()
		s.out.level.Set(ParseLevel(opts.Level))
		configured = true
	})
	return configured
}

// Logger returns a logger named name backed by this sink
func (s *LogSetup) Logger(name string) *slog.Logger {
	return slog.New(&patternHandler{name: name, out: s.out})
}

var processLogs = NewLogSetup()

// Configure configures the process-wide log sink once. See LogSetup.Configure.
func Configure(opts LogOptions) bool {
	return processLogs.Configure(opts)
}

// Logger returns a named logger backed by the process-wide sink
func Logger(name string) *slog.Logger {
	return processLogs.Logger(name)
}

type output struct {
	mu    sync.Mutex
	w     io.Writer
	level slog.LevelVar
}

// patternHandler renders "timestamp - name - LEVEL - message" followed by
// key=value attributes.
type patternHandler struct {
	name   string
	out    *output
	attrs  []slog.Attr
	groups []string
}

func (h *patternHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.out.level.Level()
}

func (h *patternHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	fmt.Fprintf(&buf, "%s - %s - %s - %s", ts.Format(TimeLayout), h.name, levelName(r.Level), r.Message)

	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	for _, a := range h.attrs {
		writeAttr(&buf, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&buf, prefix, a)
		return true
	})
	buf.WriteByte('\n')

	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	_, err := h.out.w.Write(buf.Bytes())
	return err
}

func (h *patternHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	next := *h
	next.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, slog.Attr{Key: prefix + a.Key, Value: a.Value})
	}
	return &next
}

func (h *patternHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string{}, h.groups...), name)
	return &next
}

func writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		group := prefix
		if a.Key != "" {
			group = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(buf, group, ga)
		}
		return
	}
	fmt.Fprintf(buf, " %s%s=%v", prefix, a.Key, a.Value.Any())
}

func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARNING"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
