package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"

	"gundetect/internal/config"
)

// Level selects one of the per-level log files.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

var levels = []Level{LevelInfo, LevelWarning, LevelError}

// File returns the file name the level is written to.
func (l Level) File() string {
	return string(l) + ".log"
}

// ParseLevel maps "info", "warning" or "error" to a Level.
func ParseLevel(s string) (Level, bool) {
	for _, level := range levels {
		if string(level) == s {
			return level, true
		}
	}
	return "", false
}

// Logger writes info/warning/error entries to the console and to one file per level.
type Logger struct {
	loggers map[Level]*log.Logger
	logDir  string
	mu      sync.Mutex
}

// NewLogger creates a Logger and ensures the log directory exists.
func NewLogger(config *config.Config) *Logger {
	if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
		log.Fatalf("Failed to create log directory: %v", err)
	}

	l := &Logger{
		loggers: make(map[Level]*log.Logger, len(levels)),
		logDir:  config.LogDirectory,
	}

	prefixes := map[Level]string{LevelInfo: "INFO    ", LevelWarning: "WARNING ", LevelError: "ERROR   "}
	for _, level := range levels {
		var console io.Writer = os.Stdout
		if level == LevelError {
			console = os.Stderr
		}
		writer := io.MultiWriter(console, l.openLogFile(level))
		l.loggers[level] = log.New(writer, prefixes[level], log.Ldate|log.Ltime|log.Lshortfile)
	}

	return l
}

func (l *Logger) openLogFile(level Level) *os.File {
	path := filepath.Join(l.logDir, level.File())
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file %s: %v", path, err)
	}
	return file
}

// Path returns the full path of a level's log file.
func (l *Logger) Path(level Level) string {
	return filepath.Join(l.logDir, level.File())
}

func (l *Logger) output(level Level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	// Skip output and the exported level method so Lshortfile names the caller.
	l.loggers[level].Output(3, fmt.Sprintf(format, v...))
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.output(LevelInfo, format, v...)
}

func (l *Logger) Warning(format string, v ...interface{}) {
	l.output(LevelWarning, format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.output(LevelError, format, v...)
}

// ErrorStack writes an error entry followed by the current goroutine's stack.
func (l *Logger) ErrorStack(format string, v ...interface{}) {
	stack := debug.Stack()

	l.mu.Lock()
	defer l.mu.Unlock()
	errorLog := l.loggers[LevelError]
	errorLog.Output(2, fmt.Sprintf(format, v...))
	errorLog.Writer().Write(stack)
}

// CleanLogs truncates the log file of the given level.
func (l *Logger) CleanLogs(level Level) error {
	file, err := os.OpenFile(l.Path(level), os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		l.Error("Error opening log file: %v", err)
		return err
	}
	defer file.Close()

	l.Info("Log file %s has been cleared.", level.File())
	return nil
}
