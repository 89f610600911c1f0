package bridge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nucleus/mesh-bridge/internal/engine"
)

// MaterializeStatus is the per-asset outcome of one run.
type MaterializeStatus string

const (
	MaterializeSucceeded MaterializeStatus = "success"
	MaterializeFailed    MaterializeStatus = "failed"
	// MaterializeSkipped covers models the engine never evaluated in the
	// run: aborted downstream of a failure, or gated out by their cadence.
	MaterializeSkipped MaterializeStatus = "skipped"
)

// MaterializeResult is the per-asset materialization outcome.
type MaterializeResult struct {
	Key      AssetKey
	ModelID  string
	Status   MaterializeStatus
	Version  string
	Metadata map[string]any
}

// CheckOutcome is the per-check outcome, keyed the same way as the published
// check specs.
type CheckOutcome struct {
	Asset   AssetKey
	Name    string
	State   AuditState
	Count   *int64
	Message string
}

// RunReport is the full result of one materialization run, in topological
// order of the selected assets.
type RunReport struct {
	RunID   string
	Results []MaterializeResult
	Checks  []CheckOutcome
}

// Service is the orchestrator-facing entrypoint. It combines the shared
// context, the translator and the event collector into definition-time
// specifications and run-time materialization results.
type Service struct {
	manager    *ContextManager
	translator *Translator
}

// NewService creates the bridge service.
func NewService(manager *ContextManager, translator *Translator) *Service {
	return &Service{manager: manager, translator: translator}
}

// Manager exposes the shared context manager.
func (s *Service) Manager() *ContextManager { return s.manager }

// Specs publishes the asset/check graph. Definition-time failures
// (initialization, translation) surface here, before anything is published.
func (s *Service) Specs(ctx context.Context) (*SpecSet, error) {
	models, err := s.models(ctx)
	if err != nil {
		return nil, err
	}
	return BuildSpecs(models, s.translator)
}

// Schedules derives the minimal schedule definitions for the project.
func (s *Service) Schedules(ctx context.Context) ([]ScheduleGroup, error) {
	models, err := s.models(ctx)
	if err != nil {
		return nil, err
	}
	table, err := s.translator.Table(models)
	if err != nil {
		return nil, err
	}
	return DeriveSchedules(models, table)
}

// Materialize runs the selected assets through the shared engine context and
// converts the buffered event stream into per-asset results and per-check
// outcomes. An empty selection materializes every managed model.
//
// Cancellation discards the run's buffers in full; partial results are never
// returned as authoritative.
func (s *Service) Materialize(ctx context.Context, selection []AssetKey) (*RunReport, error) {
	pctx, err := s.manager.Get(ctx)
	if err != nil {
		return nil, err
	}
	models, err := pctx.Models(ctx)
	if err != nil {
		return nil, err
	}
	table, err := s.translator.Table(models)
	if err != nil {
		return nil, err
	}

	selected, err := resolveSelection(selection, models, table)
	if err != nil {
		return nil, err
	}
	orderedIDs := topoOrder(selected)

	// Fresh buffers for this run; nothing carries over from a previous one.
	events := NewCollector()

	plan, err := pctx.Plan(ctx, orderedIDs, events)
	if err != nil {
		return nil, err
	}

	cfg := s.manager.Config()
	runErr := pctx.Run(ctx, engine.RunRequest{
		Environment:   cfg.Environment,
		ModelIDs:      orderedIDs,
		ExecutionTime: time.Now(),
		IgnoreCron:    cfg.IgnoreCron,
	}, events)

	if ctx.Err() != nil {
		events.Reset()
		return nil, fmt.Errorf("materialization interrupted: %w", ctx.Err())
	}

	// An evaluation failure aborts the run but the report stays
	// authoritative: the affected model is failed, earlier outcomes stand.
	// Anything else is an infrastructure failure and yields no report.
	var evalErr *engine.EvaluationError
	if runErr != nil && !errors.As(runErr, &evalErr) {
		events.Reset()
		return nil, runErr
	}

	byID := make(map[string]engine.ModelDescriptor, len(selected))
	for _, m := range selected {
		byID[m.ID] = m
	}

	report := &RunReport{RunID: uuid.NewString()}
	for _, id := range orderedIDs {
		key, _ := table.Key(id)
		res := MaterializeResult{Key: key, ModelID: id, Status: MaterializeSucceeded, Metadata: map[string]any{}}

		switch {
		case evalErr != nil && evalErr.ModelID == id:
			res.Status = MaterializeFailed
			res.Metadata["error"] = evalErr.Message
		default:
			if msg, failed := events.EvaluationError(id); failed {
				res.Status = MaterializeFailed
				res.Metadata["error"] = msg
			} else if !events.Evaluated(id) {
				res.Status = MaterializeSkipped
			}
		}

		if plan != nil {
			if snap, ok := plan.Snapshots[id]; ok {
				res.Version = snap.Version
				if !snap.CreatedAt.IsZero() {
					res.Metadata["snapshot_timestamp"] = snap.CreatedAt.UTC().Format("2006-01-02 15:04:05")
				}
				if m := byID[id]; m.Partition != nil && len(snap.Intervals) > 0 {
					res.Metadata["partitions"] = formatIntervals(m.Partition, snap.Intervals)
				}
			}
		}
		report.Results = append(report.Results, res)
	}

	for _, outcome := range ExtractAuditOutcomes(selected, events) {
		key, _ := table.Key(outcome.ModelID)
		report.Checks = append(report.Checks, CheckOutcome{
			Asset:   key,
			Name:    outcome.Audit,
			State:   outcome.State,
			Count:   outcome.Count,
			Message: outcome.Message,
		})
	}

	events.Reset()
	return report, nil
}

func (s *Service) models(ctx context.Context) ([]engine.ModelDescriptor, error) {
	pctx, err := s.manager.Get(ctx)
	if err != nil {
		return nil, err
	}
	return pctx.Models(ctx)
}

// resolveSelection maps asset keys back to model descriptors through the key
// table. Unknown keys and external placeholders are definition errors, not
// silent drops.
func resolveSelection(selection []AssetKey, models []engine.ModelDescriptor, table *KeyTable) ([]engine.ModelDescriptor, error) {
	byID := make(map[string]engine.ModelDescriptor, len(models))
	for _, m := range models {
		byID[m.ID] = m
	}

	if len(selection) == 0 {
		var all []engine.ModelDescriptor
		for _, m := range models {
			if !m.External() {
				all = append(all, m)
			}
		}
		return all, nil
	}

	selected := make([]engine.ModelDescriptor, 0, len(selection))
	seen := make(map[string]bool, len(selection))
	for _, key := range selection {
		id, ok := table.ModelID(key)
		if !ok {
			return nil, &TranslationError{Message: fmt.Sprintf("asset key %q resolves to no model", key)}
		}
		m := byID[id]
		if m.External() {
			return nil, &TranslationError{ModelID: id,
				Message: fmt.Sprintf("asset key %q is an external source and cannot be materialized", key)}
		}
		if !seen[id] {
			seen[id] = true
			selected = append(selected, m)
		}
	}
	return selected, nil
}

// topoOrder sorts the selected model ids so every model follows its selected
// upstreams. Deterministic: ties break on the id.
func topoOrder(selected []engine.ModelDescriptor) []string {
	inSelection := make(map[string]engine.ModelDescriptor, len(selected))
	for _, m := range selected {
		inSelection[m.ID] = m
	}

	indegree := make(map[string]int, len(selected))
	downstream := make(map[string][]string, len(selected))
	for _, m := range selected {
		indegree[m.ID] += 0
		for _, dep := range m.DependsOn {
			if _, ok := inSelection[dep]; ok {
				indegree[m.ID]++
				downstream[dep] = append(downstream[dep], m.ID)
			}
		}
	}

	var ready []string
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	ordered := make([]string, 0, len(selected))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		ordered = append(ordered, id)

		var unlocked []string
		for _, next := range downstream[id] {
			indegree[next]--
			if indegree[next] == 0 {
				unlocked = append(unlocked, next)
			}
		}
		sort.Strings(unlocked)
		ready = append(ready, unlocked...)
	}

	// Cycles cannot be ordered; append leftovers deterministically so the
	// run still addresses every selected model.
	if len(ordered) < len(selected) {
		var rest []string
		for id, deg := range indegree {
			if deg > 0 {
				rest = append(rest, id)
			}
		}
		sort.Strings(rest)
		ordered = append(ordered, rest...)
	}
	return ordered
}

func formatIntervals(p *engine.PartitionSpec, intervals []engine.Interval) []map[string]any {
	out := make([]map[string]any, 0, len(intervals))
	for _, iv := range intervals {
		out = append(out, map[string]any{
			"column": p.Column,
			"start":  iv.Start.UTC().Format("2006-01-02 15:04:05"),
			"end":    iv.End.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	return out
}
