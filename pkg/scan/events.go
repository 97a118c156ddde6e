package scan

import (
	"sync"
	"time"

	"github.com/vigilante-ai/vigilante/pkg/vuln"
)

// EventType identifies a pipeline event.
type EventType string

const (
	// EventTypeStatus signals a persisted status transition.
	EventTypeStatus EventType = "status"
	// EventTypeProgress signals a progress update (0-100).
	EventTypeProgress EventType = "progress"
	// EventTypeLog carries one human-readable stage description.
	EventTypeLog EventType = "log"
)

// Event is a single pipeline event.
type Event struct {
	Type      EventType       `json:"type"`
	ScanID    string          `json:"scanId"`
	Timestamp time.Time       `json:"timestamp"`
	Status    vuln.ScanStatus `json:"status,omitempty"`
	Percent   int             `json:"percent,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// Sink receives pipeline events. Implementations must be fast or
// buffer internally; sinks are invoked inline on the pipeline path.
type Sink interface {
	OnEvent(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(e Event) { f(e) }

// Emitter owns the pipeline's observable state, tracked per scan: a
// monotonically increasing progress percentage and an ordered,
// append-only log of stage descriptions. An orchestrator runs many
// scans through one emitter, so state for one scan never bleeds into
// another. Consumers subscribe as pure observers; only the
// orchestrator mutates.
type Emitter struct {
	mu       sync.Mutex
	sinks    []Sink
	progress map[string]int
	logs     map[string][]string
	now      func() time.Time
}

// NewEmitter creates an emitter with no subscribers.
func NewEmitter() *Emitter {
	return &Emitter{
		progress: make(map[string]int),
		logs:     make(map[string][]string),
		now:      time.Now,
	}
}

// Subscribe registers a sink for all subsequent events.
func (e *Emitter) Subscribe(s Sink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sinks = append(e.sinks, s)
}

// Progress returns the current progress percentage for a scan.
func (e *Emitter) Progress(scanID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress[scanID]
}

// Logs returns a copy of a scan's append-only stage log.
func (e *Emitter) Logs(scanID string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.logs[scanID]))
	copy(out, e.logs[scanID])
	return out
}

func (e *Emitter) emit(ev Event) {
	ev.Timestamp = e.now()
	e.mu.Lock()
	sinks := make([]Sink, len(e.sinks))
	copy(sinks, e.sinks)
	e.mu.Unlock()
	for _, s := range sinks {
		s.OnEvent(ev)
	}
}

// EmitStatus publishes a status transition.
func (e *Emitter) EmitStatus(scanID string, status vuln.ScanStatus) {
	e.emit(Event{Type: EventTypeStatus, ScanID: scanID, Status: status})
}

// EmitProgress publishes a progress update. Progress never moves
// backwards within a scan: a lower or equal value is dropped.
func (e *Emitter) EmitProgress(scanID string, percent int) {
	if percent > 100 {
		percent = 100
	}
	e.mu.Lock()
	if percent <= e.progress[scanID] {
		e.mu.Unlock()
		return
	}
	e.progress[scanID] = percent
	e.mu.Unlock()
	e.emit(Event{Type: EventTypeProgress, ScanID: scanID, Percent: percent})
}

// EmitLog appends one stage description to a scan's log.
func (e *Emitter) EmitLog(scanID, message string) {
	e.mu.Lock()
	e.logs[scanID] = append(e.logs[scanID], message)
	e.mu.Unlock()
	e.emit(Event{Type: EventTypeLog, ScanID: scanID, Message: message})
}
