// Package logger writes structured JSON log lines with email redaction.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// ParseLevel maps "debug", "info", "warn" or "error" to a Level. Unknown
// values fall back to INFO.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	}
	return INFO
}

type sink struct {
	mu        sync.Mutex
	out       io.Writer
	level     Level
	redactPII bool
}

// Logger writes entries tagged with a component name. Loggers created by New
// share the process-wide output and settings.
type Logger struct {
	component string
	sink      *sink
}

var std = &sink{out: os.Stderr, level: INFO, redactPII: true}

var defaultLogger = &Logger{sink: std}

// New returns a logger that adds "component" to every entry.
func New(component string) *Logger {
	return &Logger{component: component, sink: std}
}

// SetLevel sets the minimum log level.
func SetLevel(l Level) {
	std.mu.Lock()
	std.level = l
	std.mu.Unlock()
}

// SetRedactPII enables or disables email redaction.
func SetRedactPII(r bool) {
	std.mu.Lock()
	std.redactPII = r
	std.mu.Unlock()
}

// SetOutput redirects log output. Tests use it to capture entries.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	std.out = w
	std.mu.Unlock()
}

// Debug emits a DEBUG-level entry on the default logger.
func Debug(msg string, fields ...interface{}) { defaultLogger.log(DEBUG, msg, fields) }

// Info emits an INFO-level entry on the default logger.
func Info(msg string, fields ...interface{}) { defaultLogger.log(INFO, msg, fields) }

// Warn emits a WARN-level entry on the default logger.
func Warn(msg string, fields ...interface{}) { defaultLogger.log(WARN, msg, fields) }

// Error emits an ERROR-level entry on the default logger.
func Error(msg string, fields ...interface{}) { defaultLogger.log(ERROR, msg, fields) }

func (l *Logger) Debug(msg string, fields ...interface{}) { l.log(DEBUG, msg, fields) }
func (l *Logger) Info(msg string, fields ...interface{})  { l.log(INFO, msg, fields) }
func (l *Logger) Warn(msg string, fields ...interface{})  { l.log(WARN, msg, fields) }
func (l *Logger) Error(msg string, fields ...interface{}) { l.log(ERROR, msg, fields) }

func (l *Logger) log(level Level, msg string, fields []interface{}) {
	s := l.sink
	s.mu.Lock()
	defer s.mu.Unlock()

	if level < s.level {
		return
	}

	entry := map[string]interface{}{
		"time":  time.Now().UTC().Format(time.RFC3339),
		"level": levelNames[level],
		"msg":   msg,
	}
	if l.component != "" {
		entry["component"] = l.component
	}

	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		var val interface{}
		switch v := fields[i+1].(type) {
		case int, int64, float64, bool:
			val = v
		case error:
			val = v.Error()
		default:
			val = fmt.Sprintf("%v", v)
		}
		if str, ok := val.(string); ok && s.redactPII {
			val = redactPIIValue(key, str)
		}
		entry[key] = val
	}
	if len(fields)%2 == 1 {
		entry["!BADKEY"] = fmt.Sprintf("%v", fields[len(fields)-1])
	}

	data, _ := json.Marshal(entry)
	fmt.Fprintln(s.out, string(data))
}

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

func redactPIIValue(key, val string) string {
	key = strings.ToLower(key)
	if key == "to" || strings.Contains(key, "email") || strings.Contains(key, "recipient") {
		if strings.Contains(val, "@") && !strings.ContainsAny(val, " <") {
			return RedactEmail(val)
		}
	}
	return emailRegex.ReplaceAllStringFunc(val, RedactEmail)
}
