package heartbeat

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StatusOK is the status column value for a successful probe run. Failures
// carry the probe's diagnostic code instead.
const StatusOK = "OK"

// Kind is the probe_type column: P for primary probes, C for confirmation
// probes, SYS for lifecycle records written by the supervisor.
type Kind string

const (
	KindPrimary      Kind = "P"
	KindConfirmation Kind = "C"
	KindSystem       Kind = "SYS"
)

// Logger appends one CSV line per probe execution to a flat file. Lines are
// never rewritten or deleted. A nil Logger (disabled heartbeat folder) is
// valid and drops every record.
type Logger struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
	now  func() time.Time
}

// FileName is the heartbeat log name inside the configured folder.
const FileName = "netwatch-heartbeat.csv"

// Open creates or opens the heartbeat log in dir, append-only. An empty dir
// disables logging and returns (nil, nil); callers treat a nil *Logger as a
// no-op sink.
func Open(dir string) (*Logger, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create heartbeat dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open heartbeat log: %w", err)
	}
	return &Logger{file: f, w: csv.NewWriter(f), now: time.Now}, nil
}

// Append writes one record: date,time,probe_id,probe_type,status. Records
// are flushed per call so the file stays consistent when the process dies.
func (l *Logger) Append(probeID string, kind Kind, status string) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now()
	rec := []string{
		ts.Format("2006-01-02"),
		ts.Format("15:04:05"),
		probeID,
		string(kind),
		status,
	}
	if err := l.w.Write(rec); err != nil {
		return fmt.Errorf("append heartbeat: %w", err)
	}
	l.w.Flush()
	return l.w.Error()
}

func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Flush()
	return l.file.Close()
}
