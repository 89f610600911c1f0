package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/nucleus/mesh-bridge/internal/engine"
)

// =============================================================================
// FAKE ENGINE
// =============================================================================

// fakeEngine counts context constructions and hands out a scripted project.
type fakeEngine struct {
	mu      sync.Mutex
	opens   int
	delay   time.Duration
	openErr error
	project *fakeProject
}

func (f *fakeEngine) Open(ctx context.Context, cfg engine.Config) (engine.ProjectContext, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.opens++
	f.mu.Unlock()

	if f.openErr != nil {
		return nil, &engine.InitializationError{ProjectDir: cfg.ProjectDir, Gateway: cfg.Gateway, Environment: cfg.Environment, Err: f.openErr}
	}
	if f.project == nil {
		f.project = &fakeProject{}
	}
	return f.project, nil
}

func (f *fakeEngine) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

// fakeProject is a scripted engine.ProjectContext.
type fakeProject struct {
	models  []engine.ModelDescriptor
	plan    *engine.PlanSummary
	planErr error
	runFunc func(ctx context.Context, req engine.RunRequest, sink engine.EventSink) error
	closed  bool
}

func (p *fakeProject) Models(ctx context.Context) ([]engine.ModelDescriptor, error) {
	return append([]engine.ModelDescriptor(nil), p.models...), nil
}

func (p *fakeProject) Plan(ctx context.Context, modelIDs []string, sink engine.EventSink) (*engine.PlanSummary, error) {
	if p.planErr != nil {
		return nil, p.planErr
	}
	sink.Publish(engine.Event{Kind: engine.EventPlanStart})
	sink.Publish(engine.Event{Kind: engine.EventPlanEnd})
	if p.plan != nil {
		return p.plan, nil
	}
	return &engine.PlanSummary{PlanID: "plan-1", Snapshots: map[string]engine.Snapshot{}}, nil
}

func (p *fakeProject) Run(ctx context.Context, req engine.RunRequest, sink engine.EventSink) error {
	if p.runFunc != nil {
		return p.runFunc(ctx, req, sink)
	}
	for _, id := range req.ModelIDs {
		sink.Publish(engine.Event{Kind: engine.EventEvaluationStart, ModelID: id})
		sink.Publish(engine.Event{Kind: engine.EventEvaluationEnd, ModelID: id})
	}
	return nil
}

func (p *fakeProject) Close() error {
	p.closed = true
	return nil
}

// =============================================================================
// MODEL FIXTURES
// =============================================================================

func testModel(schema, name string, mutate ...func(*engine.ModelDescriptor)) engine.ModelDescriptor {
	m := engine.ModelDescriptor{
		ID:      `"analytics"."` + schema + `"."` + name + `"`,
		Catalog: "analytics",
		Schema:  schema,
		Name:    name,
		Kind:    "FULL",
		Dialect: "postgres",
	}
	for _, fn := range mutate {
		fn(&m)
	}
	return m
}

func withCron(expr string) func(*engine.ModelDescriptor) {
	return func(m *engine.ModelDescriptor) { m.Cron = expr }
}

func withAudit(name string, skip bool) func(*engine.ModelDescriptor) {
	return func(m *engine.ModelDescriptor) {
		m.Audits = append(m.Audits, engine.AuditSpec{Name: name, Skip: skip, Query: "SELECT 1"})
	}
}

func withDeps(ids ...string) func(*engine.ModelDescriptor) {
	return func(m *engine.ModelDescriptor) { m.DependsOn = append(m.DependsOn, ids...) }
}

func asExternal() func(*engine.ModelDescriptor) {
	return func(m *engine.ModelDescriptor) { m.Kind = engine.KindExternal }
}

func auditEvent(modelID, name string, passed bool, count int64, msg string) engine.Event {
	return engine.Event{
		Kind:    engine.EventAuditResult,
		ModelID: modelID,
		Audit:   &engine.AuditResult{Name: name, Passed: passed, Count: &count, Message: msg},
	}
}
