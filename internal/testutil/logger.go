package testutil

import (
	"sync"

	"tabtime/internal/tracker"
)

// LogEntry is one call made on a RecordingLogger.
type LogEntry struct {
	Level string
	Msg   string
	Args  []any
}

// RecordingLogger is a tracker.Logger that keeps every entry.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

var _ tracker.Logger = (*RecordingLogger)(nil)

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

// Find returns the first entry with msg.
func (l *RecordingLogger) Find(msg string) (LogEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.Msg == msg {
			return e, true
		}
	}
	return LogEntry{}, false
}

func (l *RecordingLogger) Debug(msg string, args ...any) { l.add("DEBUG", msg, args) }
func (l *RecordingLogger) Info(msg string, args ...any)  { l.add("INFO", msg, args) }
func (l *RecordingLogger) Warn(msg string, args ...any)  { l.add("WARN", msg, args) }
func (l *RecordingLogger) Error(msg string, args ...any) { l.add("ERROR", msg, args) }

func (l *RecordingLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, Args: args})
}
