package bridge

import (
	"sync"
	"time"

	"github.com/nucleus/mesh-bridge/internal/engine"
)

// Collector implements engine.EventSink. It classifies every callback and
// buffers it per model id; plan-level events and unknown shapes land in
// dedicated buckets instead of being dropped. Buffering is the only side
// effect. Buffers are scoped to one run: Reset clears everything.
type Collector struct {
	mu      sync.Mutex
	order   []engine.Event
	byModel map[string][]engine.Event
	plan    []engine.Event
	unknown []engine.Event
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{byModel: make(map[string][]engine.Event)}
}

// Publish buffers one event. Never blocks on anything but the buffer lock.
func (c *Collector) Publish(ev engine.Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.order = append(c.order, ev)
	switch ev.Kind {
	case engine.EventPlanStart, engine.EventPlanEnd:
		c.plan = append(c.plan, ev)
	case engine.EventEvaluationStart, engine.EventEvaluationEnd, engine.EventAuditResult:
		if ev.ModelID == "" {
			c.unknown = append(c.unknown, ev)
			return
		}
		c.byModel[ev.ModelID] = append(c.byModel[ev.ModelID], ev)
	default:
		// Unrecognized kinds are preserved verbatim so upstream schema
		// drift stays observable.
		c.unknown = append(c.unknown, ev)
	}
}

// Reset discards all buffered events. Called at the start of each run; no
// event survives across runs.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.plan = nil
	c.unknown = nil
	c.byModel = make(map[string][]engine.Event)
}

// Events returns every buffered event in emission order.
func (c *Collector) Events() []engine.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]engine.Event(nil), c.order...)
}

// ModelEvents returns the buffered events for one model, in emission order.
func (c *Collector) ModelEvents(modelID string) []engine.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]engine.Event(nil), c.byModel[modelID]...)
}

// PlanEvents returns the buffered plan-level events.
func (c *Collector) PlanEvents() []engine.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]engine.Event(nil), c.plan...)
}

// UnknownEvents returns the catch-all bucket.
func (c *Collector) UnknownEvents() []engine.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]engine.Event(nil), c.unknown...)
}

// Evaluated reports whether the model has a matching start/end pair.
func (c *Collector) Evaluated(modelID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	var started, ended bool
	for _, ev := range c.byModel[modelID] {
		switch ev.Kind {
		case engine.EventEvaluationStart:
			started = true
		case engine.EventEvaluationEnd:
			ended = true
		}
	}
	return started && ended
}

// EvaluationError returns the engine's failure message from the model's
// evaluation_end event, if the evaluation failed.
func (c *Collector) EvaluationError(modelID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ev := range c.byModel[modelID] {
		if ev.Kind == engine.EventEvaluationEnd && ev.Err != "" {
			return ev.Err, true
		}
	}
	return "", false
}

// AuditResult returns the buffered audit payload for one (model, audit)
// pair. The last event wins if the engine reported the audit more than once.
func (c *Collector) AuditResult(modelID, audit string) (*engine.AuditResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var found *engine.AuditResult
	for _, ev := range c.byModel[modelID] {
		if ev.Kind == engine.EventAuditResult && ev.Audit != nil && ev.Audit.Name == audit {
			found = ev.Audit
		}
	}
	return found, found != nil
}
