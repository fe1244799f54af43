package batch

import (
	"io"
	"log/slog"
	"sync"
	"time"
)

// Event is one structured occurrence recorded during a run.
type Event struct {
	Time  time.Time
	Name  string
	Attrs map[string]any
}

// RunContext carries the run-wide logger and collects structured events
// for later inspection. It replaces ambient global logging state; the
// orchestrator and commands thread it explicitly.
type RunContext struct {
	Log *slog.Logger

	mu     sync.Mutex
	events []Event
}

// NewRunContext wraps a logger; a nil logger discards output.
func NewRunContext(log *slog.Logger) *RunContext {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RunContext{Log: log}
}

// Event records a named event with attributes and logs it at debug
// level. Safe for concurrent use.
func (rc *RunContext) Event(name string, attrs map[string]any) {
	rc.mu.Lock()
	rc.events = append(rc.events, Event{Time: time.Now(), Name: name, Attrs: attrs})
	rc.mu.Unlock()

	args := make([]any, 0, len(attrs)*2)
	for k, v := range attrs {
		args = append(args, k, v)
	}
	rc.Log.Debug(name, args...)
}

// Events returns a copy of the recorded events.
func (rc *RunContext) Events() []Event {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]Event(nil), rc.events...)
}
