package utils

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// maxBufferedEntries bounds the in-memory diagnostic buffer; the oldest
// entries are evicted first.
const maxBufferedEntries = 500

// LogEntry is one buffered diagnostic record
type LogEntry struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Logger writes to per-level log files and keeps a bounded rolling buffer of
// recent entries. One instance is constructed at startup; the package-level
// helpers delegate to it.
type Logger struct {
	info  *log.Logger
	err   *log.Logger
	debug *log.Logger

	mu     sync.Mutex
	buffer []LogEntry
}

var defaultLogger *Logger

// NewLogger creates a logger writing dated files under logsDir
func NewLogger(logsDir string) (*Logger, error) {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %v", err)
	}

	timestamp := time.Now().Format("2006-01-02")
	open := func(name string) (*os.File, error) {
		return os.OpenFile(
			filepath.Join(logsDir, fmt.Sprintf("%s-%s.log", name, timestamp)),
			os.O_APPEND|os.O_CREATE|os.O_WRONLY,
			0644,
		)
	}

	infoFile, err := open("info")
	if err != nil {
		return nil, fmt.Errorf("failed to open info log file: %v", err)
	}
	errorFile, err := open("error")
	if err != nil {
		return nil, fmt.Errorf("failed to open error log file: %v", err)
	}
	debugFile, err := open("debug")
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log file: %v", err)
	}

	return &Logger{
		info:  log.New(infoFile, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile),
		err:   log.New(errorFile, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile),
		debug: log.New(debugFile, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile),
	}, nil
}

// InitLogger constructs the process-wide logger instance
func InitLogger() error {
	logger, err := NewLogger("logs")
	if err != nil {
		return err
	}
	defaultLogger = logger
	return nil
}

func (l *Logger) record(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buffer = append(l.buffer, LogEntry{
		Level:   level,
		Message: fmt.Sprintf(format, v...),
		Time:    time.Now(),
	})
	if len(l.buffer) > maxBufferedEntries {
		l.buffer = l.buffer[len(l.buffer)-maxBufferedEntries:]
	}
}

// Info logs an informational message
func (l *Logger) Info(format string, v ...interface{}) {
	if l.info != nil {
		l.info.Printf(format, v...)
	}
	l.record("info", format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	if l.err != nil {
		l.err.Printf(format, v...)
	}
	l.record("error", format, v...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	if l.debug != nil {
		l.debug.Printf(format, v...)
	}
	l.record("debug", format, v...)
}

// Recent returns a copy of the buffered diagnostic entries, oldest first
func (l *Logger) Recent() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.buffer))
	copy(out, l.buffer)
	return out
}

// LogInfo logs an informational message
func LogInfo(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Info(format, v...)
	}
}

// LogError logs an error message
func LogError(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Error(format, v...)
	}
}

// LogDebug logs a debug message
func LogDebug(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Debug(format, v...)
	}
}

// RecentLogs returns the buffered diagnostic entries from the process logger
func RecentLogs() []LogEntry {
	if defaultLogger == nil {
		return nil
	}
	return defaultLogger.Recent()
}

// LogRequest logs HTTP request details
func LogRequest(method, path, ip string, status int, duration time.Duration) {
	LogInfo("Request: %s %s from %s - Status: %d - Duration: %v", method, path, ip, status, duration)
}

// LogErrorWithStack logs an error with stack trace
func LogErrorWithStack(err error, stack []byte) {
	LogError("Error: %v\nStack Trace:\n%s", err, stack)
}
