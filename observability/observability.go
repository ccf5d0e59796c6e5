package observability

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type Field interface {
	Key() string
	Value() interface{}
}

type stringField struct{ key, val string }

func (f stringField) Key() string        { return f.key }
func (f stringField) Value() interface{} { return f.val }

type intField struct {
	key string
	val int
}

func (f intField) Key() string        { return f.key }
func (f intField) Value() interface{} { return f.val }

type float64Field struct {
	key string
	val float64
}

func (f float64Field) Key() string        { return f.key }
func (f float64Field) Value() interface{} { return f.val }

type errorField struct {
	key string
	err error
}

func (f errorField) Key() string        { return f.key }
func (f errorField) Value() interface{} { return f.err }

func String(key, value string) Field          { return stringField{key, value} }
func Int(key string, value int) Field         { return intField{key, value} }
func Float64(key string, value float64) Field { return float64Field{key, value} }
func Error(key string, err error) Field       { return errorField{key, err} }

type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// ConsoleLogger writes human-readable progress lines, one per call. The
// output is meant for a person watching a batch run, not for machines.
type ConsoleLogger struct {
	mu   *sync.Mutex
	out  io.Writer
	base []Field
}

// NewConsoleLogger returns a logger writing to w. A nil w defaults to stderr.
func NewConsoleLogger(w io.Writer) *ConsoleLogger {
	if w == nil {
		w = os.Stderr
	}
	return &ConsoleLogger{mu: &sync.Mutex{}, out: w}
}

func (l *ConsoleLogger) Debug(msg string, fields ...Field) { l.emit("DEBUG", msg, fields) }
func (l *ConsoleLogger) Info(msg string, fields ...Field)  { l.emit("INFO", msg, fields) }
func (l *ConsoleLogger) Warn(msg string, fields ...Field)  { l.emit("WARN", msg, fields) }
func (l *ConsoleLogger) Error(msg string, fields ...Field) { l.emit("ERROR", msg, fields) }

func (l *ConsoleLogger) With(fields ...Field) Logger {
	base := make([]Field, 0, len(l.base)+len(fields))
	base = append(base, l.base...)
	base = append(base, fields...)
	return &ConsoleLogger{mu: l.mu, out: l.out, base: base}
}

func (l *ConsoleLogger) emit(level, msg string, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s %s", level, msg)
	for _, f := range l.base {
		fmt.Fprintf(l.out, " %s=%v", f.Key(), f.Value())
	}
	for _, f := range fields {
		fmt.Fprintf(l.out, " %s=%v", f.Key(), f.Value())
	}
	fmt.Fprintln(l.out)
}
