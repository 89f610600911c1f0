package bridge

import (
	"testing"

	"github.com/nucleus/mesh-bridge/internal/engine"
)

func TestCollector_ClassifiesEvents(t *testing.T) {
	c := NewCollector()
	modelID := `"analytics"."staging"."customers"`

	c.Publish(engine.Event{Kind: engine.EventPlanStart})
	c.Publish(engine.Event{Kind: engine.EventEvaluationStart, ModelID: modelID})
	c.Publish(auditEvent(modelID, "not_null", true, 0, ""))
	c.Publish(engine.Event{Kind: engine.EventEvaluationEnd, ModelID: modelID})
	c.Publish(engine.Event{Kind: engine.EventPlanEnd})

	if got := len(c.PlanEvents()); got != 2 {
		t.Errorf("expected 2 plan events, got %d", got)
	}
	if got := len(c.ModelEvents(modelID)); got != 3 {
		t.Errorf("expected 3 model events, got %d", got)
	}
	if got := len(c.UnknownEvents()); got != 0 {
		t.Errorf("expected no unknown events, got %d", got)
	}
	if !c.Evaluated(modelID) {
		t.Error("expected model to be evaluated after start/end pair")
	}
}

func TestCollector_PreservesEmissionOrder(t *testing.T) {
	c := NewCollector()
	modelID := `"analytics"."staging"."orders"`

	kinds := []engine.EventKind{
		engine.EventPlanStart,
		engine.EventEvaluationStart,
		engine.EventEvaluationEnd,
		engine.EventPlanEnd,
	}
	for _, k := range kinds {
		c.Publish(engine.Event{Kind: k, ModelID: modelID})
	}

	events := c.Events()
	if len(events) != len(kinds) {
		t.Fatalf("expected %d events, got %d", len(kinds), len(events))
	}
	for i, ev := range events {
		if ev.Kind != kinds[i] {
			t.Errorf("event %d: expected kind %s, got %s", i, kinds[i], ev.Kind)
		}
	}
}

func TestCollector_UnknownShapesPreserved(t *testing.T) {
	c := NewCollector()

	c.Publish(engine.Event{Kind: "log_warning", Payload: map[string]any{"short_message": "drift"}})
	c.Publish(engine.Event{Kind: engine.EventAuditResult}) // no model id: unclassifiable

	unknown := c.UnknownEvents()
	if len(unknown) != 2 {
		t.Fatalf("expected 2 unknown events, got %d", len(unknown))
	}
	if unknown[0].Kind != "log_warning" {
		t.Errorf("expected original kind preserved, got %s", unknown[0].Kind)
	}
	if unknown[0].Payload["short_message"] != "drift" {
		t.Error("expected unknown payload preserved verbatim")
	}
}

func TestCollector_ResetClearsEverything(t *testing.T) {
	c := NewCollector()
	modelID := `"analytics"."staging"."customers"`

	c.Publish(engine.Event{Kind: engine.EventPlanStart})
	c.Publish(engine.Event{Kind: engine.EventEvaluationStart, ModelID: modelID})
	c.Publish(engine.Event{Kind: "mystery"})
	c.Reset()

	if len(c.Events()) != 0 || len(c.PlanEvents()) != 0 || len(c.UnknownEvents()) != 0 {
		t.Error("expected all buffers cleared after Reset")
	}
	if len(c.ModelEvents(modelID)) != 0 {
		t.Error("expected per-model buffer cleared after Reset")
	}
}

func TestCollector_EvaluationError(t *testing.T) {
	c := NewCollector()
	modelID := `"analytics"."marts"."summary"`

	c.Publish(engine.Event{Kind: engine.EventEvaluationStart, ModelID: modelID})
	c.Publish(engine.Event{Kind: engine.EventEvaluationEnd, ModelID: modelID, Err: "division by zero"})

	msg, failed := c.EvaluationError(modelID)
	if !failed {
		t.Fatal("expected evaluation failure to be reported")
	}
	if msg != "division by zero" {
		t.Errorf("expected engine message verbatim, got %q", msg)
	}
}

func TestCollector_AuditResultLastWins(t *testing.T) {
	c := NewCollector()
	modelID := `"analytics"."staging"."customers"`

	c.Publish(auditEvent(modelID, "not_null", false, 3, "3 null ids"))
	c.Publish(auditEvent(modelID, "not_null", true, 0, ""))

	res, ok := c.AuditResult(modelID, "not_null")
	if !ok {
		t.Fatal("expected audit result")
	}
	if !res.Passed {
		t.Error("expected the latest audit event to win")
	}
}
