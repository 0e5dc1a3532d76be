package telemetry_test

import (
	"errors"
	"strings"
	"sync"
)

// recordingLogger is a simple test double for ports.Logger.
type recordingLogger struct {
	mu     sync.Mutex
	debugs []string
	errs   []error
}

func (l *recordingLogger) Debug(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugs = append(l.debugs, msg)
}

func (l *recordingLogger) Info(_ string) {}
func (l *recordingLogger) Warn(_ string) {}

func (l *recordingLogger) Error(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
}

func (l *recordingLogger) lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.debugs))
	copy(out, l.debugs)
	return out
}

func (l *recordingLogger) contains(substr string) bool {
	for _, line := range l.lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

var errTest = errors.New("test error")
