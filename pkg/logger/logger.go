package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"
)

// Level represents the severity level of log messages
type Level int

const (
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case TraceLevel:
		return "TRACE"
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a --log-level value to a Level. Unknown values fall back to
// InfoLevel and report ok=false.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return TraceLevel, true
	case "debug":
		return DebugLevel, true
	case "info", "":
		return InfoLevel, true
	case "warn", "warning":
		return WarnLevel, true
	case "error":
		return ErrorLevel, true
	default:
		return InfoLevel, false
	}
}

// Config holds the logger configuration
type Config struct {
	Level     Level
	UseColor  bool
	JSON      bool
	Component string
	NoOp      bool
	// Fields are attached to every entry (e.g. run_id).
	Fields []Field
}

// Logger writes leveled entries to a single writer
type Logger struct {
	config Config
	logger *log.Logger
}

var defaultLogger *Logger

// New creates a logger writing to w.
func New(config Config, w io.Writer) *Logger {
	if config.Component == "" {
		config.Component = "scansort"
	}
	return &Logger{config: config, logger: log.New(w, "", 0)}
}

// Initialize sets up the default logger on stderr
func Initialize(config Config) error {
	if config.Level < TraceLevel || config.Level > ErrorLevel {
		return fmt.Errorf("invalid log level %d", config.Level)
	}
	defaultLogger = New(config, os.Stderr)
	return nil
}

// Log writes a log message
func (l *Logger) Log(level Level, message string, fields ...Field) {
	if level < l.config.Level {
		return
	}

	entry := LogEntry{
		Time:      time.Now(),
		Level:     level.String(),
		Message:   message,
		Component: l.config.Component,
		Fields:    make(map[string]interface{}, len(fields)+len(l.config.Fields)),
	}

	if level <= DebugLevel {
		if _, file, line, ok := runtime.Caller(2); ok {
			entry.File = file
			entry.Line = line
		}
	}

	for _, field := range l.config.Fields {
		entry.Fields[field.Key] = field.Value
	}
	for _, field := range fields {
		entry.Fields[field.Key] = field.Value
	}

	var output string
	if l.config.JSON {
		jsonBytes, err := json.Marshal(entry)
		if err != nil {
			output = fmt.Sprintf(`{"level":"ERROR","message":"log marshal failed: %s"}`, err)
		} else {
			output = string(jsonBytes)
		}
	} else {
		output = l.formatPretty(entry)
	}

	l.logger.Print(output)
}

// formatPretty formats the log entry in a human-readable way
func (l *Logger) formatPretty(entry LogEntry) string {
	var builder strings.Builder

	builder.WriteString(entry.Time.Format("2006-01-02 15:04:05"))

	level := entry.Level
	if l.config.UseColor {
		switch entry.Level {
		case "TRACE":
			level = "\033[37mTRACE\033[0m"
		case "DEBUG":
			level = "\033[36mDEBUG\033[0m"
		case "INFO":
			level = "\033[32mINFO\033[0m"
		case "WARN":
			level = "\033[33mWARN\033[0m"
		case "ERROR":
			level = "\033[31mERROR\033[0m"
		}
	}
	fmt.Fprintf(&builder, " [%s]", level)

	if entry.Component != "" {
		fmt.Fprintf(&builder, " %s:", entry.Component)
	}

	if l.config.NoOp {
		if l.config.UseColor {
			builder.WriteString(" \033[35m[NO-OP]\033[0m")
		} else {
			builder.WriteString(" [NO-OP]")
		}
	}

	fmt.Fprintf(&builder, " %s", entry.Message)

	// Keys are sorted so the same entry always renders the same line.
	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		builder.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				builder.WriteString(", ")
			}
			fmt.Fprintf(&builder, "%s=%v", k, entry.Fields[k])
		}
		builder.WriteString("}")
	}

	if entry.File != "" {
		fmt.Fprintf(&builder, " (%s:%d)", entry.File, entry.Line)
	}

	return builder.String()
}

// Field represents a structured field in a log entry
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Ints creates an int slice field
func Ints(key string, value []int) Field {
	return Field{Key: key, Value: value}
}

// Strings creates a string slice field
func Strings(key string, value []string) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// LogEntry represents a log entry
type LogEntry struct {
	Time      time.Time              `json:"time"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Component string                 `json:"component,omitempty"`
	File      string                 `json:"file,omitempty"`
	Line      int                    `json:"line,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Convenience functions for default logger
func Trace(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(TraceLevel, message, fields...)
	}
}

func Debug(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(DebugLevel, message, fields...)
	}
}

func Info(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(InfoLevel, message, fields...)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[INFO] scansort: %s\n", message)
	}
}

func Warn(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(WarnLevel, message, fields...)
	}
}

func Error(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(ErrorLevel, message, fields...)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[ERROR] scansort: %s\n", message)
	}
}

// SetOutput sets the output writer for the logger
func SetOutput(w io.Writer) {
	if defaultLogger != nil {
		defaultLogger.logger.SetOutput(w)
	}
}
