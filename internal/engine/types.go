package engine

import (
	"strings"
	"time"
)

// KindExternal marks tables that are sourced outside the engine's project.
const KindExternal = "EXTERNAL"

// ModelDescriptor describes one declared transformation model.
type ModelDescriptor struct {
	// ID is the fully qualified model identifier, e.g. `"db"."staging"."customers"`.
	ID      string
	Catalog string
	Schema  string
	Name    string

	Kind    string // FULL, INCREMENTAL_BY_TIME_RANGE, VIEW, EXTERNAL, ...
	Dialect string
	Cron    string // empty when the model declares no cadence

	Audits    []AuditSpec
	DependsOn []string // upstream model ids
	Partition *PartitionSpec

	// DataHash fingerprints the model definition; used as code version.
	DataHash string
}

// External reports whether the model is an externally sourced table.
func (m ModelDescriptor) External() bool {
	return strings.EqualFold(m.Kind, KindExternal)
}

// AuditSpec is a data-quality check declared on a model.
type AuditSpec struct {
	Name     string
	Blocking bool
	Skip     bool
	Query    string
	Args     map[string]any
}

// PartitionSpec describes a model's incrementing partition column.
type PartitionSpec struct {
	Column string
	Grain  string
}

// PlanSummary is the metadata the bridge needs out of a computed plan.
type PlanSummary struct {
	PlanID    string
	Snapshots map[string]Snapshot // keyed by model id
}

// Snapshot captures the planned version of one model.
type Snapshot struct {
	ModelID   string
	Version   string
	CreatedAt time.Time
	Intervals []Interval
}

// Interval is a half-open partition interval planned for evaluation.
type Interval struct {
	Start time.Time
	End   time.Time
}

// EventKind classifies run-time events.
type EventKind string

const (
	EventPlanStart       EventKind = "plan_start"
	EventPlanEnd         EventKind = "plan_end"
	EventEvaluationStart EventKind = "evaluation_start"
	EventEvaluationEnd   EventKind = "evaluation_end"
	EventAuditResult     EventKind = "audit_result"
	EventUnknown         EventKind = "unknown"
)

// Event is the tagged variant streamed from the engine during a run.
// The engine's callback surface evolves; anything that does not fit a typed
// field travels in Payload and unknown kinds are preserved as-is so schema
// drift upstream stays observable.
type Event struct {
	Kind      EventKind
	ModelID   string
	Timestamp time.Time

	// Err carries the engine's native failure message on evaluation_end.
	Err string

	// Audit is set only for audit_result events.
	Audit *AuditResult

	// Payload holds callback arguments not covered by typed fields.
	Payload map[string]any
}

// AuditResult is the payload of an audit_result event.
type AuditResult struct {
	Name     string
	Passed   bool
	Skipped  bool
	Count    *int64
	Message  string
	Query    string
	Blocking bool
}
