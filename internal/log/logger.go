package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger is the key/value logging interface used across cardgrid.
type Logger interface {
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(msg string, kv ...interface{})
	Debug(msg string, kv ...interface{})
}

// Level represents log verbosity.
type Level int

const (
	ErrorLevel Level = iota
	WarnLevel
	InfoLevel
	DebugLevel
)

// String returns canonical lower-case representation.
func (l Level) String() string {
	switch l {
	case ErrorLevel:
		return "error"
	case WarnLevel:
		return "warn"
	case InfoLevel:
		return "info"
	case DebugLevel:
		return "debug"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel parses a case-insensitive level name. An empty string means info.
func ParseLevel(s string) (Level, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "", "info":
		return InfoLevel, nil
	case "error", "err":
		return ErrorLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "debug", "dbg":
		return DebugLevel, nil
	default:
		return InfoLevel, errors.New("unknown log level: " + s)
	}
}

// Format selects a logging backend.
type Format string

const (
	TextFormat Format = "text"
	JSONFormat Format = "json"
)

// New builds a logger for the requested format writing to w.
func New(format Format, lvl Level, w io.Writer) (Logger, error) {
	switch Format(strings.ToLower(string(format))) {
	case "", TextFormat:
		return NewSimple(lvl).WithWriter(w), nil
	case JSONFormat:
		return NewZap(lvl, w), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// SimpleLogger writes one "ts [LEVEL] msg k=v" line per entry.
type SimpleLogger struct {
	mu    sync.Mutex
	lvl   Level
	out   io.Writer
	clock func() time.Time
}

// NewSimple creates a SimpleLogger writing to stdout with the given level.
func NewSimple(l Level) *SimpleLogger {
	return &SimpleLogger{lvl: l, out: os.Stdout, clock: time.Now}
}

// WithWriter redirects output (used in tests).
func (s *SimpleLogger) WithWriter(w io.Writer) *SimpleLogger {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = w
	return s
}

// SetLevel changes the logger verbosity at runtime.
func (s *SimpleLogger) SetLevel(l Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lvl = l
}

func (s *SimpleLogger) Info(msg string, kv ...interface{})  { s.log(InfoLevel, msg, kv) }
func (s *SimpleLogger) Warn(msg string, kv ...interface{})  { s.log(WarnLevel, msg, kv) }
func (s *SimpleLogger) Error(msg string, kv ...interface{}) { s.log(ErrorLevel, msg, kv) }
func (s *SimpleLogger) Debug(msg string, kv ...interface{}) { s.log(DebugLevel, msg, kv) }

func (s *SimpleLogger) log(level Level, msg string, kv []interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if level > s.lvl {
		return
	}
	var b strings.Builder
	b.WriteString(s.clock().Format(time.RFC3339Nano))
	b.WriteString(" [" + strings.ToUpper(level.String()) + "] ")
	b.WriteString(msg)
	for _, p := range pairs(kv) {
		fmt.Fprintf(&b, " %s=%v", p.key, p.value)
	}
	b.WriteString("\n")
	_, _ = io.WriteString(s.out, b.String())
}

type pair struct {
	key   string
	value interface{}
}

// pairs groups kv in call order; an odd trailing value gets the "_odd" key.
func pairs(kv []interface{}) []pair {
	out := make([]pair, 0, len(kv)/2+1)
	for i := 0; i < len(kv); i += 2 {
		if i+1 == len(kv) {
			out = append(out, pair{key: "_odd", value: kv[i]})
			break
		}
		out = append(out, pair{key: fmt.Sprint(kv[i]), value: kv[i+1]})
	}
	return out
}

var (
	globalMu     sync.RWMutex
	globalLogger Logger = NewSimple(InfoLevel)
)

// SetGlobal sets the process-wide logger.
func SetGlobal(l Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// Global returns the process-wide logger.
func Global() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}
