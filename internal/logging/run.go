package logging

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const maxErrorLen = 256

const (
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"
	StatusError     = "error"
)

// Event is written as a single JSON object per handled file.
type Event struct {
	Timestamp     time.Time `json:"ts"`
	Scope         string    `json:"scope"`
	Path          string    `json:"path"`
	Status        string    `json:"status"`
	Strategy      string    `json:"strategy,omitempty"`
	Mode          string    `json:"mode,omitempty"`
	Blocks        int       `json:"blocks,omitempty"`
	BlocksChanged int       `json:"blocks_changed,omitempty"`
	RulesIn       int       `json:"rules_in"`
	RulesOut      int       `json:"rules_out"`
	LintFindings  int       `json:"lint_findings,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	Error         string    `json:"error,omitempty"`
}

type RunLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func NewRunLogger(w io.Writer) *RunLogger {
	return &RunLogger{w: w}
}

func OpenRunLog(path string) (*RunLogger, func() error, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return NewRunLogger(file), file.Close, nil
}

// Write is a no-op on a nil logger.
func (l *RunLogger) Write(event Event) error {
	if l == nil || l.w == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if len(event.Error) > maxErrorLen {
		event.Error = event.Error[:maxErrorLen]
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = l.w.Write(append(data, '\n'))
	return err
}
