// Package logger provides structured logging for the noema-scan tooling.
// It uses a simple custom logger implementation to avoid external dependencies.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/armin976/noema-scan/internal/config"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func parseLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Logger is the main logger structure.
type Logger struct {
	mu         sync.Mutex
	level      LogLevel
	formatJSON bool
	outputs    []io.Writer
	fileWriter io.WriteCloser
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Default returns a process-wide stdout logger at INFO level.
func Default() *Logger {
	once.Do(func() {
		defaultLogger = &Logger{
			level:   INFO,
			outputs: []io.Writer{os.Stdout},
		}
	})
	return defaultLogger
}

// NewLogger creates a new logger from the given configuration.
func NewLogger(cfg *config.LogConfig) (*Logger, error) {
	l := &Logger{
		level:      parseLevel(cfg.Level),
		formatJSON: cfg.Format == "json",
	}

	switch strings.ToLower(cfg.Output) {
	case "file":
		if err := l.setupFileWriter(cfg.Directory); err != nil {
			return nil, err
		}
	case "both":
		l.outputs = append(l.outputs, os.Stdout)
		if err := l.setupFileWriter(cfg.Directory); err != nil {
			return nil, err
		}
	default:
		l.outputs = append(l.outputs, os.Stdout)
	}

	return l, nil
}

func (l *Logger) setupFileWriter(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	name := fmt.Sprintf("noema-scan-%s.log", time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	l.fileWriter = f
	l.outputs = append(l.outputs, f)
	return nil
}

// Close releases the file writer, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fileWriter != nil {
		err := l.fileWriter.Close()
		l.fileWriter = nil
		return err
	}
	return nil
}

// SetLevel changes the minimum level the logger emits.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) log(level LogLevel, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	var line string
	if l.formatJSON {
		entry := map[string]string{
			"time":  time.Now().Format(time.RFC3339),
			"level": level.String(),
			"msg":   msg,
		}
		b, err := json.Marshal(entry)
		if err != nil {
			return
		}
		line = string(b) + "\n"
	} else {
		line = fmt.Sprintf("%s [%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), level, msg)
	}

	for _, out := range l.outputs {
		fmt.Fprint(out, line)
	}
}

// Debugf logs a debug-level message.
func (l *Logger) Debugf(format string, args ...any) {
	l.log(DEBUG, fmt.Sprintf(format, args...))
}

// Infof logs an info-level message.
func (l *Logger) Infof(format string, args ...any) {
	l.log(INFO, fmt.Sprintf(format, args...))
}

// Warnf logs a warn-level message.
func (l *Logger) Warnf(format string, args ...any) {
	l.log(WARN, fmt.Sprintf(format, args...))
}

// Errorf logs an error-level message.
func (l *Logger) Errorf(format string, args ...any) {
	l.log(ERROR, fmt.Sprintf(format, args...))
}
